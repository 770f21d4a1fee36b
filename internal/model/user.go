package model

// User is the identity snapshot the service trusts: resolved by the auth
// middleware, denormalized onto posts and comments at write time and never
// re-synced afterwards.
type User struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

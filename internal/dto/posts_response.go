package dto

type ToggleLikeResponse struct {
	HasLiked bool `json:"has_liked"`
}

package service

import "errors"

var (
	ErrInternal     = errors.New("internal server error")
	ErrPostNotFound = errors.New("post not found")
	ErrUserNotFound = errors.New("user not found")
	ErrForbidden    = errors.New("you do not have permission to perform this action")
)

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialwall/interaction-service/internal/dto"
	"github.com/socialwall/interaction-service/internal/service"
	"github.com/socialwall/interaction-service/internal/validation"
)

var (
	errNotAuthorized  = errors.New("user is not authorized")
	errLimitMustBeInt = errors.New("limit must be int")
	errInvalidPostID  = errors.New("invalid post ID")
	errInvalidUserID  = errors.New("invalid user ID")
)

// respondError maps the service error taxonomy onto HTTP statuses. Only the
// kind is distinguishable to callers; display wording is the UI's concern.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, validation.ErrEmptyContent),
		errors.Is(err, validation.ErrContentTooLong):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPostNotFound),
		errors.Is(err, service.ErrUserNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	}

	c.JSON(status, dto.NewBasicResponse(false, err.Error()))
}

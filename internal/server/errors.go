package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	demanddomain "github.com/opencitizen/notifstore/internal/demand/domain"
	demandtypedomain "github.com/opencitizen/notifstore/internal/demandtype/domain"
	eventdomain "github.com/opencitizen/notifstore/internal/event/domain"
	statusdomain "github.com/opencitizen/notifstore/internal/status/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrInternal       = errors.New("internal_error")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case errors.Is(err, demanddomain.ErrNotFound),
		errors.Is(err, statusdomain.ErrNotFound),
		errors.Is(err, demandtypedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, demandtypedomain.ErrDuplicate):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, demanddomain.ErrMissingDemandID),
		errors.Is(err, demanddomain.ErrMissingDemandType),
		errors.Is(err, demandtypedomain.ErrMissingTypeID),
		errors.Is(err, statusdomain.ErrEmptyLabel),
		errors.Is(err, statusdomain.ErrInvalidGenericStatus),
		errors.Is(err, eventdomain.ErrInvalidRetention):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

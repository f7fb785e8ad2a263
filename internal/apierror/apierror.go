// Package apierror translates the cross-cutting domain.ErrorKind
// vocabulary into the {"error","message","details"} envelope both
// control planes return, and the HTTP status code each kind maps to.
package apierror

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ottoassistant/otto/internal/domain"
)

// Envelope is the wire shape of every error response.
type Envelope struct {
	Error   string              `json:"error"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// Write inspects err and writes the matching status + envelope. Unknown
// errors are treated as internal_error and logged by the caller before
// this is invoked.
func Write(c *gin.Context, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, Envelope{
			Error:   string(domain.ErrKindInvalidRequest),
			Message: "request failed validation",
			Details: vErr.Details,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrJobNotFound),
		errors.Is(err, domain.ErrRunNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrSessionBindingNotFound):
		c.JSON(http.StatusNotFound, Envelope{Error: string(domain.ErrKindNotFound), Message: err.Error()})
	case errors.Is(err, domain.ErrForbiddenMutation):
		c.JSON(http.StatusForbidden, Envelope{Error: string(domain.ErrKindForbiddenMutation), Message: err.Error()})
	case errors.Is(err, domain.ErrStateConflict):
		c.JSON(http.StatusConflict, Envelope{Error: string(domain.ErrKindStateConflict), Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, Envelope{Error: string(domain.ErrKindInvalidRequest), Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, Envelope{Error: string(domain.ErrKindUnauthorized), Message: err.Error()})
	case errors.Is(err, domain.ErrServiceUnavailable):
		c.JSON(http.StatusServiceUnavailable, Envelope{Error: string(domain.ErrKindServiceUnavailable), Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Envelope{Error: string(domain.ErrKindInternal), Message: "internal error"})
	}
}

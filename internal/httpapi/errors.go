package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"haccpcore/internal/blob"
	"haccpcore/internal/templates"
	"haccpcore/pkg/domain"
)

// statusFor maps core errors onto HTTP status codes.
func statusFor(err error) int {
	var (
		rv domain.RuleViolationError
		ti templates.TemplateIndexError
	)
	switch {
	case domain.IsNotFound(err):
		return http.StatusNotFound
	case domain.IsReferentialViolation(err), errors.Is(err, blob.ErrExists):
		return http.StatusConflict
	case errors.As(err, &rv), errors.As(err, &ti):
		return http.StatusUnprocessableEntity
	case domain.IsInvalidInput(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}
	var rv domain.RuleViolationError
	if errors.As(err, &rv) {
		body["violations"] = rv.Result.Violations
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", "route", c.FullPath(), "error", err)
		body["error"] = "internal error"
	}
	c.AbortWithStatusJSON(status, body)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

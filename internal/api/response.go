package api

import (
	"errors"
	"log/slog"
	"net/http"

	"alcyxob/fitplanhub/internal/service"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An unexpected error occurred"

// Envelope is the body of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Count   *int              `json:"count,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func respondOK(c *gin.Context, status int, data any) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

// respondList writes data together with its element count.
func respondList(c *gin.Context, data any, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

func respondMessage(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Envelope{Success: false, Message: message})
}

func statusForKind(k service.Kind) int {
	switch k {
	case service.KindValidation, service.KindConflict:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError is the single place where service errors become HTTP responses.
// Internal errors are logged and reported, and their text never reaches the client.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) && svcErr.Kind != service.KindInternal {
		abortWithError(c, statusForKind(svcErr.Kind), svcErr.Message)
		return
	}

	slog.ErrorContext(c.Request.Context(), "request failed",
		"method", c.Request.Method,
		"path", c.FullPath(),
		"requestId", requestIDFromContext(c),
		"error", err,
	)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
}

// RecoveryHandler answers a recovered panic with the standard error envelope.
func RecoveryHandler(c *gin.Context, recovered any) {
	slog.ErrorContext(c.Request.Context(), "panic recovered",
		"path", c.Request.URL.Path,
		"requestId", requestIDFromContext(c),
		"panic", recovered,
	)
	abortWithError(c, http.StatusInternalServerError, internalErrorMessage)
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexanderramin/planpilot/internal/planning"
	"github.com/alexanderramin/planpilot/internal/repository"
	"github.com/alexanderramin/planpilot/internal/service"
)

type errorBody struct {
	Error   string `json:"error"`
	Payload string `json:"payload,omitempty"`
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, planning.ErrInvalidCommit):
		return http.StatusBadRequest
	case errors.Is(err, planning.ErrGenerationFailed), errors.Is(err, planning.ErrMalformedResponse):
		return http.StatusBadGateway
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// fail writes err as a JSON error. Internal errors are logged and hidden.
func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request.Context(), "http_request_failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		body.Error = "internal error"
	}
	var mErr *planning.MalformedResponseError
	if errors.As(err, &mErr) {
		body.Payload = mErr.Payload
	}
	c.JSON(status, body)
}

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, errorBody{Error: msg})
}

package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/airreservations/internal/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// statusFor maps the reservation error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicate), errors.Is(err, domain.ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotBooked):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrContention):
		return http.StatusServiceUnavailable
	case domain.IsCancellation(err):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, logger *zap.SugaredLogger, err error) {
	status := statusFor(err)
	resp := errorResponse{Error: err.Error()}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		resp.Field = verr.Field
		resp.Reason = verr.Reason
	case errors.Is(err, domain.ErrCapacityExceeded):
		resp.Reason = "capacity_exceeded"
	case errors.Is(err, domain.ErrDuplicate):
		resp.Reason = "duplicate"
	case status == http.StatusServiceUnavailable:
		resp.Error = "the system is busy, try again"
		c.Header("Retry-After", "1")
	case status == http.StatusGatewayTimeout:
		logger.Warnw("request timed out", "path", c.FullPath(), "request_id", requestID(c), "error", err)
		resp.Error = "request timed out"
	case status == http.StatusInternalServerError:
		logger.Errorw("request failed", "path", c.FullPath(), "request_id", requestID(c), "error", err)
		resp.Error = "internal error"
	}

	c.AbortWithStatusJSON(status, resp)
}

func badRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "malformed request body", Reason: err.Error()})
}

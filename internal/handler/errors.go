package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/service"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/tracker"
)

// respondError maps err onto a status and the JSON error body.
func (h *Handler) respondError(c *gin.Context, msg string, err error, fields ...zap.Field) {
	status, code := classify(err)

	fields = append(fields, zap.Error(err), zap.Int("status", status))
	if status >= http.StatusInternalServerError {
		h.log.Error(msg, fields...)
	} else {
		h.log.Warn(msg, fields...)
	}

	c.JSON(status, dto.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}

func classify(err error) (int, string) {
	var reqErr *tracker.RequestError

	switch {
	case errors.Is(err, service.ErrInvalidRequest), errors.Is(err, tracker.ErrEmptyID), errors.As(err, &reqErr):
		return http.StatusBadRequest, "validation_error"
	case tracker.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrReportsDisabled):
		return http.StatusServiceUnavailable, "reports_unavailable"
	case tracker.IsFetchError(err):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

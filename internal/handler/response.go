package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mohith182/turbine-ai/internal/auth"
	"github.com/mohith182/turbine-ai/internal/fleet"
	"github.com/mohith182/turbine-ai/internal/otp"
	"github.com/mohith182/turbine-ai/internal/ratelimit"
	"github.com/mohith182/turbine-ai/internal/rul"
)

type apiResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    any            `json:"data,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

func Ok(c *gin.Context, data any, meta map[string]any) {
	c.JSON(http.StatusOK, apiResponse{
		Code:    0,
		Message: "ok",
		Data:    data,
		Meta:    meta,
	})
}

func Error(c *gin.Context, status int, message string, meta map[string]any) {
	c.JSON(status, apiResponse{
		Code:    status,
		Message: message,
		Meta:    meta,
	})
}

// ErrorFrom maps domain errors onto status codes and stable messages.
func ErrorFrom(c *gin.Context, err error) {
	var limited *ratelimit.LimitedError
	switch {
	case errors.As(err, &limited):
		secs := int(math.Ceil(limited.RetryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		Error(c, http.StatusTooManyRequests, "Too many requests", map[string]any{"retry_after": secs})
	case errors.Is(err, rul.ErrModelNotReady):
		Error(c, http.StatusServiceUnavailable, "Model not trained yet", nil)
	case errors.Is(err, otp.ErrNotRequested):
		Error(c, http.StatusBadRequest, "OTP not requested", nil)
	case errors.Is(err, otp.ErrExpired):
		Error(c, http.StatusBadRequest, "OTP expired", nil)
	case errors.Is(err, otp.ErrTooManyAttempts):
		Error(c, http.StatusBadRequest, "Too many attempts", nil)
	case errors.Is(err, otp.ErrInvalidCode):
		Error(c, http.StatusBadRequest, "Invalid OTP", nil)
	case errors.Is(err, auth.ErrUnauthorized):
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
	case errors.Is(err, fleet.ErrMachineNotFound):
		Error(c, http.StatusNotFound, "Machine not found", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusServiceUnavailable, "request cancelled", nil)
	default:
		Error(c, http.StatusInternalServerError, "internal error", nil)
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}

func paginationMeta(limit, offset, count int) map[string]any {
	return map[string]any{
		"limit":  limit,
		"offset": offset,
		"count":  count,
	}
}

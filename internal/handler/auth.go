package handler

import (
	"context"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/auth"
	"github.com/mohith182/turbine-ai/internal/ratelimit"
)

type Authenticator interface {
	RequestOTP(ctx context.Context, email string) (time.Duration, error)
	VerifyOTP(ctx context.Context, email, code string) (auth.Session, error)
}

type AuthHandler struct {
	Auth    Authenticator
	Limiter *ratelimit.Limiter
	// PerIdentity and PerIP bound OTP requests; a zero Limit disables the rule.
	PerIdentity ratelimit.Rule
	PerIP       ratelimit.Rule
	Logger      *zap.Logger
}

type requestOTPBody struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPBody struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required"`
}

type otpSentResponse struct {
	Message   string `json:"message"`
	Email     string `json:"email"`
	ExpiresIn int    `json:"expires_in"`
}

func (h *AuthHandler) Register(r *gin.Engine, requireAuth gin.HandlerFunc) {
	group := r.Group("/api/auth")
	group.POST("/request-otp", h.requestOTP)
	group.POST("/verify-otp", h.verifyOTP)
	group.GET("/me", requireAuth, h.me)
}

// @Summary Request a login code
// @Tags auth
// @Accept json
// @Produce json
// @Param body body requestOTPBody true "email"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Failure 429 {object} apiResponse
// @Router /api/auth/request-otp [post]
func (h *AuthHandler) requestOTP(c *gin.Context) {
	var body requestOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	email, ok := normalizeEmail(body.Email)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid email", nil)
		return
	}
	ctx := c.Request.Context()
	if err := h.Limiter.AllowAll(ctx,
		ratelimit.Check{Rule: h.PerIdentity, Key: email},
		ratelimit.Check{Rule: h.PerIP, Key: c.ClientIP()},
	); err != nil {
		ErrorFrom(c, err)
		return
	}
	ttl, err := h.Auth.RequestOTP(ctx, email)
	if err != nil {
		h.logger().Error("request otp failed", zap.String("email", email), zap.Error(err))
		ErrorFrom(c, err)
		return
	}
	Ok(c, otpSentResponse{
		Message:   "OTP sent successfully",
		Email:     email,
		ExpiresIn: int(ttl / time.Second),
	}, nil)
}

// @Summary Exchange a login code for a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param body body verifyOTPBody true "email and code"
// @Success 200 {object} apiResponse
// @Failure 400 {object} apiResponse
// @Router /api/auth/verify-otp [post]
func (h *AuthHandler) verifyOTP(c *gin.Context) {
	var body verifyOTPBody
	if err := c.ShouldBindJSON(&body); err != nil {
		Error(c, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	email, ok := normalizeEmail(body.Email)
	if !ok {
		Error(c, http.StatusBadRequest, "invalid email", nil)
		return
	}
	session, err := h.Auth.VerifyOTP(c.Request.Context(), email, strings.TrimSpace(body.OTP))
	if err != nil {
		ErrorFrom(c, err)
		return
	}
	Ok(c, session, nil)
}

// @Summary Current identity
// @Tags auth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} apiResponse
// @Failure 401 {object} apiResponse
// @Router /api/auth/me [get]
func (h *AuthHandler) me(c *gin.Context) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		Error(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	Ok(c, p, nil)
}

func (h *AuthHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

// normalizeEmail accepts a bare address only, no display name.
func normalizeEmail(raw string) (string, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	addr, err := mail.ParseAddress(v)
	if err != nil || addr.Address != v {
		return "", false
	}
	return v, true
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/otp"
)

var ErrUnauthorized = errors.New("unauthorized")

// Principal is the authenticated caller recovered from a session token.
type Principal struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type Session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        Principal `json:"user"`
}

// Service ties the OTP state machine to the identity registry and the token
// issuer.
type Service struct {
	OTP        *otp.Service
	Identities *Directory
	Tokens     JWT
	Logger     *zap.Logger
}

// RequestOTP provisions the identity if needed and issues a fresh code.
func (s *Service) RequestOTP(ctx context.Context, email string) (time.Duration, error) {
	email = normalizeEmail(email)
	if _, err := s.Identities.Ensure(ctx, email); err != nil {
		return 0, fmt.Errorf("ensure identity: %w", err)
	}
	return s.OTP.Request(ctx, email)
}

// VerifyOTP consumes the code and mints a session token for the identity.
func (s *Service) VerifyOTP(ctx context.Context, email, code string) (Session, error) {
	email = normalizeEmail(email)
	if err := s.OTP.Verify(ctx, email, code); err != nil {
		return Session{}, err
	}
	name, err := s.Identities.DisplayName(ctx, email)
	if err != nil {
		return Session{}, fmt.Errorf("load identity: %w", err)
	}
	claims := Claims{Name: name}
	claims.Subject = email
	token, expiresAt, err := s.Tokens.Sign(claims)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	if err := s.Identities.Repo.TouchLogin(ctx, email, s.Tokens.now()); err != nil && s.Logger != nil {
		s.Logger.Warn("record login failed", zap.String("email", email), zap.Error(err))
	}
	return Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        Principal{Email: email, Name: name},
	}, nil
}

// Authenticate checks a presented bearer token by signature and expiry only.
func (s *Service) Authenticate(token string) (Principal, error) {
	return authenticate(s.Tokens, token)
}

func authenticate(tokens JWT, token string) (Principal, error) {
	if token == "" {
		return Principal{}, ErrUnauthorized
	}
	claims, err := tokens.Verify(token)
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return Principal{Email: claims.Subject, Name: claims.Name}, nil
}

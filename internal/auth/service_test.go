package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mohith182/turbine-ai/internal/config"
	"github.com/mohith182/turbine-ai/internal/otp"
	memoryrepository "github.com/mohith182/turbine-ai/internal/repository/memory"
)

type codeSink struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *codeSink) NotifyCode(_ context.Context, identity, code string, _ time.Duration) {
	s.mu.Lock()
	s.codes[identity] = code
	s.mu.Unlock()
}

func (s *codeSink) get(identity string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[identity]
}

func newAuthService(t *testing.T, now *time.Time) (*Service, *codeSink, *memoryrepository.Store) {
	t.Helper()
	repo := memoryrepository.New()
	sink := &codeSink{codes: map[string]string{}}
	dir := &Directory{Repo: repo}
	if err := dir.Seed(context.Background(), []config.SeedUser{
		{Email: "Admin@TurbineAI.com", Name: "Admin User"},
		{Email: "demo@example.com", Name: "Demo User"},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &Service{
		OTP:        otp.NewService(otp.NewMemoryStore(), sink, otp.Options{Now: clockAt(now)}),
		Identities: dir,
		Tokens:     JWT{Secret: []byte("0123456789abcdef-test"), TokenTTL: 24 * time.Hour, Issuer: "turbine-ai", Now: clockAt(now)},
	}, sink, repo
}

func TestLoginFlow_SeededUser(t *testing.T) {
	now := t0
	svc, sink, repo := newAuthService(t, &now)
	ctx := context.Background()

	ttl, err := svc.RequestOTP(ctx, " admin@turbineai.com ")
	if err != nil || ttl != 5*time.Minute {
		t.Fatalf("request ttl=%v err=%v", ttl, err)
	}
	sess, err := svc.VerifyOTP(ctx, "ADMIN@turbineai.com", sink.get("admin@turbineai.com"))
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sess.TokenType != "bearer" || sess.User.Email != "admin@turbineai.com" || sess.User.Name != "Admin User" {
		t.Fatalf("session=%+v", sess)
	}

	now = t0.Add(time.Hour)
	p, err := svc.Authenticate(sess.AccessToken)
	if err != nil || p.Email != "admin@turbineai.com" || p.Name != "Admin User" {
		t.Fatalf("principal=%+v err=%v", p, err)
	}
	now = t0.Add(25 * time.Hour)
	if _, err := svc.Authenticate(sess.AccessToken); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired token err=%v", err)
	}

	id, _ := repo.GetIdentity(ctx, "admin@turbineai.com")
	if id.LastLoginAt == nil || !id.LastLoginAt.Equal(t0) {
		t.Fatalf("last login=%v", id.LastLoginAt)
	}
}

func TestLoginFlow_ProvisionsUnknownIdentity(t *testing.T) {
	now := t0
	svc, sink, repo := newAuthService(t, &now)
	ctx := context.Background()

	if _, err := svc.RequestOTP(ctx, "jane.doe@plant.io"); err != nil {
		t.Fatalf("request: %v", err)
	}
	id, _ := repo.GetIdentity(ctx, "jane.doe@plant.io")
	if id == nil || id.DisplayName != "Jane.Doe" {
		t.Fatalf("identity=%+v", id)
	}
	sess, err := svc.VerifyOTP(ctx, "jane.doe@plant.io", sink.get("jane.doe@plant.io"))
	if err != nil || sess.User.Name != "Jane.Doe" {
		t.Fatalf("session=%+v err=%v", sess, err)
	}
}

func TestVerifyOTP_PropagatesStateMachineErrors(t *testing.T) {
	now := t0
	svc, _, _ := newAuthService(t, &now)
	if _, err := svc.VerifyOTP(context.Background(), "demo@example.com", "123456"); !errors.Is(err, otp.ErrNotRequested) {
		t.Fatalf("err=%v want ErrNotRequested", err)
	}
}

func TestDisplayNameFor(t *testing.T) {
	tests := map[string]string{
		"jane.doe@x.com": "Jane.Doe",
		"OPERATOR@x.com": "Operator",
		"bob_2smith@x":   "Bob_2Smith",
		"@x.com":         "User",
	}
	for in, want := range tests {
		if got := DisplayNameFor(in); got != want {
			t.Fatalf("DisplayNameFor(%q)=%q want %q", in, got, want)
		}
	}
}

func TestRequireBearer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := t0
	tokens := JWT{Secret: []byte("0123456789abcdef-test"), Issuer: "turbine-ai", Now: clockAt(&now)}
	r := gin.New()
	r.GET("/me", RequireBearer(tokens), func(c *gin.Context) {
		p, ok := PrincipalFrom(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, p.Email)
	})

	c := Claims{Name: "A"}
	c.Subject = "a@x.com"
	tok, _, _ := tokens.Sign(c)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + tok, "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
		{"header", "Bearer " + tok, "", http.StatusOK},
		{"lowercase scheme", "bearer " + tok, "", http.StatusOK},
		{"query", "", "?access_token=" + tok, http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
		if tt.header != "" {
			req.Header.Set("Authorization", tt.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Fatalf("%s: status=%d want %d body=%s", tt.name, rec.Code, tt.status, rec.Body.String())
		}
		if tt.status == http.StatusOK && rec.Body.String() != "a@x.com" {
			t.Fatalf("%s: body=%q", tt.name, rec.Body.String())
		}
	}
}

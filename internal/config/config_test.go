package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_EnvOnlyDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.OTP.TTL != 5*time.Minute {
		t.Fatalf("otp ttl=%s want=5m", cfg.OTP.TTL)
	}
	if cfg.OTP.MaxAttempts != 3 {
		t.Fatalf("max attempts=%d want=3", cfg.OTP.MaxAttempts)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("token ttl=%s want=24h", cfg.Auth.TokenTTL)
	}
	if cfg.Model.NEstimators != 100 || cfg.Model.MaxDepth != 10 {
		t.Fatalf("model=%+v", cfg.Model)
	}
	if len(cfg.Auth.SeedUsers) != 3 {
		t.Fatalf("seed users=%d want=3", len(cfg.Auth.SeedUsers))
	}
	if cfg.OTP.Store != "memory" {
		t.Fatalf("otp store=%q want memory", cfg.OTP.Store)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TURBINE_OTP_MAX_ATTEMPTS", "5")
	t.Setenv("TURBINE_OTP_STORE", " Redis ")
	t.Setenv("TURBINE_FRONTEND_URL", "https://dash.example.com")

	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.OTP.MaxAttempts != 5 {
		t.Fatalf("max attempts=%d want=5", cfg.OTP.MaxAttempts)
	}
	if cfg.OTP.Store != "redis" {
		t.Fatalf("otp store=%q want redis", cfg.OTP.Store)
	}
	last := cfg.Server.CORSOrigins[len(cfg.Server.CORSOrigins)-1]
	if last != "https://dash.example.com" {
		t.Fatalf("cors origins=%v", cfg.Server.CORSOrigins)
	}
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	t.Setenv("TURBINE_AUTH_JWT_SECRET", "short")
	if _, err := Load("", true); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := []byte("model:\n  n_estimators: 12\ndataset:\n  machines: 4\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if cfg.Model.NEstimators != 12 {
		t.Fatalf("n_estimators=%d want=12", cfg.Model.NEstimators)
	}
	if cfg.Dataset.Machines != 4 {
		t.Fatalf("machines=%d want=4", cfg.Dataset.Machines)
	}
	if cfg.Dataset.PointsPerMachine != 100 {
		t.Fatalf("points=%d want default 100", cfg.Dataset.PointsPerMachine)
	}
}

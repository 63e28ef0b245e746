package ctl

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Credentials struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Email     string `json:"email"`
}

// Dir holds credentials.json. TURBINE_DIR pins it directly; TURBINE_HOME
// replaces the home directory.
func Dir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TURBINE_DIR")); v != "" {
		return v, nil
	}
	if v := strings.TrimSpace(os.Getenv("TURBINE_HOME")); v != "" {
		return filepath.Join(v, ".turbine"), nil
	}
	h, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, ".turbine"), nil
}

func CredentialsPath() (string, error) {
	d, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "credentials.json"), nil
}

func LoadCredentials() (Credentials, error) {
	p, err := CredentialsPath()
	if err != nil {
		return Credentials{}, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return Credentials{}, err
	}
	var c Credentials
	if err := json.Unmarshal(b, &c); err != nil {
		return Credentials{}, fmt.Errorf("parse %s: %w", p, err)
	}
	return c, nil
}

func SaveCredentials(c Credentials) error {
	d, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(d, "credentials.json"), b, 0o600)
}

// Expired reports whether the stored token is past its expiry. Unknown
// expiry counts as valid; the server decides.
func (c Credentials) Expired(now time.Time) bool {
	v := strings.TrimSpace(c.ExpiresAt)
	if v == "" {
		return false
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return false
	}
	return now.After(t)
}

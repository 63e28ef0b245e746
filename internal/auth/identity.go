package auth

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/mohith182/turbine-ai/internal/config"
	"github.com/mohith182/turbine-ai/internal/models"
	"github.com/mohith182/turbine-ai/internal/repository"
)

// Directory is the open-enrollment identity registry.
type Directory struct {
	Repo   repository.IdentityRepository
	Logger *zap.Logger
}

// Seed inserts the configured users, leaving existing rows untouched.
func (d *Directory) Seed(ctx context.Context, users []config.SeedUser) error {
	for _, u := range users {
		email := normalizeEmail(u.Email)
		if email == "" {
			continue
		}
		name := strings.TrimSpace(u.Name)
		if name == "" {
			name = DisplayNameFor(email)
		}
		if _, err := d.Repo.EnsureIdentity(ctx, &models.Identity{Email: email, DisplayName: name}); err != nil {
			return err
		}
	}
	return nil
}

// Ensure returns the identity for email, provisioning it on first sight.
func (d *Directory) Ensure(ctx context.Context, email string) (*models.Identity, error) {
	email = normalizeEmail(email)
	if existing, err := d.Repo.GetIdentity(ctx, email); err != nil || existing != nil {
		return existing, err
	}
	item, err := d.Repo.EnsureIdentity(ctx, &models.Identity{Email: email, DisplayName: DisplayNameFor(email)})
	if err == nil && d.Logger != nil {
		d.Logger.Info("identity provisioned", zap.String("email", email))
	}
	return item, err
}

// DisplayName falls back to a name derived from the address when the
// identity is unknown.
func (d *Directory) DisplayName(ctx context.Context, email string) (string, error) {
	item, err := d.Repo.GetIdentity(ctx, normalizeEmail(email))
	if err != nil {
		return "", err
	}
	if item == nil || item.DisplayName == "" {
		return DisplayNameFor(email), nil
	}
	return item.DisplayName, nil
}

// DisplayNameFor title-cases the local part of an address: "jane.doe@x"
// becomes "Jane.Doe".
func DisplayNameFor(email string) string {
	local := email
	if i := strings.IndexByte(email, '@'); i >= 0 {
		local = email[:i]
	}
	if local == "" {
		return "User"
	}
	var b strings.Builder
	prevLetter := false
	for _, r := range local {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

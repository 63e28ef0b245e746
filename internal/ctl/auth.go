package ctl

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

type session struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	} `json:"user"`
}

func authCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("auth subcommand required: request|verify|me|logout")
	}
	switch args[0] {
	case "request":
		fs := flag.NewFlagSet("turbinectl auth request", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		email := fs.String("email", "", "Email address")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" {
			return errors.New("usage: turbinectl auth request --email <address>")
		}
		var resp any
		if err := ctx.client().call(ctx.context(), "POST", "/api/auth/request-otp", map[string]any{
			"email": strings.TrimSpace(*email),
		}, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	case "verify":
		fs := flag.NewFlagSet("turbinectl auth verify", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		email := fs.String("email", "", "Email address")
		code := fs.String("otp", "", "Code from the login mail")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if strings.TrimSpace(*email) == "" || strings.TrimSpace(*code) == "" {
			return errors.New("usage: turbinectl auth verify --email <address> --otp <code>")
		}
		var resp session
		if err := ctx.client().call(ctx.context(), "POST", "/api/auth/verify-otp", map[string]any{
			"email": strings.TrimSpace(*email),
			"otp":   strings.TrimSpace(*code),
		}, &resp); err != nil {
			return err
		}
		cred := Credentials{Token: resp.AccessToken, Email: resp.User.Email}
		if !resp.ExpiresAt.IsZero() {
			cred.ExpiresAt = resp.ExpiresAt.UTC().Format(time.RFC3339)
		}
		if err := SaveCredentials(cred); err != nil {
			return fmt.Errorf("save credentials: %w", err)
		}
		return ctx.write(resp)

	case "me":
		var resp any
		if err := ctx.client().call(ctx.context(), "GET", "/api/auth/me", nil, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	case "logout":
		if err := SaveCredentials(Credentials{}); err != nil {
			return err
		}
		return ctx.write(map[string]any{"logged_out": true})

	default:
		return fmt.Errorf("unknown auth subcommand: %s", args[0])
	}
}

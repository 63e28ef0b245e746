// Package ctl implements the turbinectl operator commands.
package ctl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

type Context struct {
	APIBase string
	Token   string
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
	Ctx    context.Context
}

func (c Context) client() *Client {
	return &Client{BaseURL: c.APIBase, Token: c.Token}
}

func (c Context) context() context.Context {
	if c.Ctx != nil {
		return c.Ctx
	}
	return context.Background()
}

func (c Context) write(v any) error {
	w := c.Stdout
	if w == nil {
		w = os.Stdout
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func Usage(w io.Writer) {
	fmt.Fprint(w, `turbinectl <command> <subcommand> [flags]

Global Flags:
  --api-base    API base URL (env: TURBINE_API_BASE, default http://localhost:8000)
  --token       Bearer token (env: TURBINE_TOKEN)

Commands:
  auth      request/verify/me/logout
  machines  list/get/history
  predict   --temperature --vibration --current
  alerts    list/history
  stats
  model     status
`)
}

func Dispatch(ctx Context, args []string) error {
	if len(args) == 0 {
		Usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "auth":
		return authCmd(ctx, args[1:])
	case "machines":
		return machinesCmd(ctx, args[1:])
	case "predict":
		return predictCmd(ctx, args[1:])
	case "alerts":
		return alertsCmd(ctx, args[1:])
	case "stats":
		return statsCmd(ctx)
	case "model":
		return modelCmd(ctx, args[1:])
	case "help", "-h", "--help":
		Usage(os.Stdout)
		return nil
	default:
		Usage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

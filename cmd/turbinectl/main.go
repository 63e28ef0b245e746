package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mohith182/turbine-ai/internal/ctl"
)

const defaultAPIBase = "http://localhost:8000"

func main() {
	var (
		apiBase = flag.String("api-base", "", "API base URL (env: TURBINE_API_BASE)")
		token   = flag.String("token", "", "Bearer token (env: TURBINE_TOKEN)")
	)
	flag.Usage = func() { ctl.Usage(os.Stderr) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		ctl.Usage(os.Stderr)
		os.Exit(2)
	}

	ctx := ctl.Context{APIBase: defaultAPIBase, Stdout: os.Stdout}
	if v := strings.TrimSpace(os.Getenv("TURBINE_API_BASE")); v != "" {
		ctx.APIBase = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(*apiBase); v != "" {
		ctx.APIBase = strings.TrimRight(v, "/")
	}

	// Token resolution order:
	// 1) flag --token
	// 2) env TURBINE_TOKEN
	// 3) credentials file
	if v := strings.TrimSpace(*token); v != "" {
		ctx.Token = v
	} else if v := strings.TrimSpace(os.Getenv("TURBINE_TOKEN")); v != "" {
		ctx.Token = v
	} else if cred, err := ctl.LoadCredentials(); err == nil {
		if cred.Expired(time.Now()) {
			fmt.Fprintln(os.Stderr, "stored session expired; run: turbinectl auth request --email <address>")
		} else {
			ctx.Token = strings.TrimSpace(cred.Token)
		}
	}

	if err := ctl.Dispatch(ctx, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

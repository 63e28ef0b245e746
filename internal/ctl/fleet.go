package ctl

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

func machinesCmd(ctx Context, args []string) error {
	if len(args) == 0 {
		return errors.New("machines subcommand required: list|get|history")
	}
	switch args[0] {
	case "list":
		var resp any
		if err := ctx.client().call(ctx.context(), "GET", "/api/machines", nil, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	case "get", "history":
		fs := flag.NewFlagSet("turbinectl machines "+args[0], flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		id := fs.String("id", "", "Machine id, e.g. M001")
		limit := fs.Int("limit", 0, "Readings to return (history only)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *id == "" && fs.NArg() > 0 {
			*id = fs.Arg(0)
		}
		if strings.TrimSpace(*id) == "" {
			return fmt.Errorf("usage: turbinectl machines %s --id <machine>", args[0])
		}
		path := "/api/machines/" + url.PathEscape(strings.TrimSpace(*id))
		if args[0] == "history" {
			path += "/history"
			if *limit > 0 {
				path += fmt.Sprintf("?limit=%d", *limit)
			}
		}
		var resp any
		if err := ctx.client().call(ctx.context(), "GET", path, nil, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	default:
		return fmt.Errorf("unknown machines subcommand: %s", args[0])
	}
}

func predictCmd(ctx Context, args []string) error {
	fs := flag.NewFlagSet("turbinectl predict", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	temperature := fs.String("temperature", "", "Temperature reading")
	vibration := fs.String("vibration", "", "Vibration reading")
	current := fs.String("current", "", "Current reading")
	if err := fs.Parse(args); err != nil {
		return err
	}
	body := map[string]any{}
	for name, raw := range map[string]string{"temperature": *temperature, "vibration": *vibration, "current": *current} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			return errors.New("usage: turbinectl predict --temperature <v> --vibration <v> --current <v>")
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", name, err)
		}
		body[name] = v
	}
	var resp any
	if err := ctx.client().call(ctx.context(), "POST", "/api/predict", body, &resp); err != nil {
		return err
	}
	return ctx.write(resp)
}

func alertsCmd(ctx Context, args []string) error {
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}
	switch sub {
	case "list":
		var resp any
		if err := ctx.client().call(ctx.context(), "GET", "/api/alerts", nil, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	case "history":
		fs := flag.NewFlagSet("turbinectl alerts history", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		machine := fs.String("machine", "", "Machine id")
		severity := fs.String("severity", "", "low|medium|high")
		since := fs.String("since", "", "RFC3339 lower bound")
		limit := fs.Int("limit", 0, "Page size")
		if err := fs.Parse(args); err != nil {
			return err
		}
		q := url.Values{}
		if v := strings.TrimSpace(*machine); v != "" {
			q.Set("machine_id", v)
		}
		if v := strings.TrimSpace(*severity); v != "" {
			q.Set("severity", v)
		}
		if v := strings.TrimSpace(*since); v != "" {
			q.Set("since", v)
		}
		if *limit > 0 {
			q.Set("limit", strconv.Itoa(*limit))
		}
		path := "/api/alerts/history"
		if enc := q.Encode(); enc != "" {
			path += "?" + enc
		}
		var resp any
		if err := ctx.client().call(ctx.context(), "GET", path, nil, &resp); err != nil {
			return err
		}
		return ctx.write(resp)

	default:
		return fmt.Errorf("unknown alerts subcommand: %s", sub)
	}
}

func statsCmd(ctx Context) error {
	var resp any
	if err := ctx.client().call(ctx.context(), "GET", "/api/dashboard/stats", nil, &resp); err != nil {
		return err
	}
	return ctx.write(resp)
}

func modelCmd(ctx Context, args []string) error {
	if len(args) == 0 || args[0] != "status" {
		return errors.New("model subcommand required: status")
	}
	var resp any
	if err := ctx.client().call(ctx.context(), "GET", "/api/model/status", nil, &resp); err != nil {
		return err
	}
	return ctx.write(resp)
}

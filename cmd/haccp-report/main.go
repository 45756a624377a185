// Command haccp-report renders the HACCP export for a period, archives it in
// the report store and optionally prints it. It can also mint API tokens for
// staff.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"haccpcore/internal/app"
	"haccpcore/internal/config"
	"haccpcore/internal/export"
	"haccpcore/internal/httpapi"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configDir string
	period    string
	formats   string
	print     bool
	archive   bool
	tokenFor  string
	tokenRole string
	tokenTTL  time.Duration
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("haccp-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var opts options
	fs.StringVar(&opts.configDir, "config", ".", "directory holding config.yaml and .env")
	fs.StringVar(&opts.period, "period", string(export.PeriodDay), "day, week, month or quarter")
	fs.StringVar(&opts.formats, "format", "text,csv", "comma separated formats: text, csv")
	fs.BoolVar(&opts.print, "print", false, "write the text report to stdout")
	fs.BoolVar(&opts.archive, "archive", true, "upload the report to the archive")
	fs.StringVar(&opts.tokenFor, "issue-token", "", "print a bearer token for this staff name and exit")
	fs.StringVar(&opts.tokenRole, "role", "staff", "role claim for -issue-token")
	fs.DurationVar(&opts.tokenTTL, "ttl", 12*time.Hour, "lifetime for -issue-token")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if err := run(context.Background(), opts, stdout, stderr); err != nil {
		_, _ = fmt.Fprintf(stderr, "haccp-report: %v\n", err)
		return 1
	}
	return 0
}

func parseFormats(v string) ([]export.Format, error) {
	var out []export.Format
	for _, part := range strings.Split(v, ",") {
		switch f := export.Format(strings.TrimSpace(part)); f {
		case "":
		case export.FormatText, export.FormatCSV:
			out = append(out, f)
		default:
			return nil, fmt.Errorf("unknown format %q", f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no formats selected")
	}
	return out, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := config.Load(opts.configDir)
	if err != nil {
		return err
	}

	if opts.tokenFor != "" {
		token, err := httpapi.IssueToken([]byte(cfg.JWT.Secret), cfg.JWT.Issuer, opts.tokenFor, opts.tokenRole, opts.tokenTTL, time.Now())
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(stdout, token)
		return err
	}

	formats, err := parseFormats(opts.formats)
	if err != nil {
		return err
	}
	period := export.Period(opts.period)
	window, err := export.WindowFor(period, time.Now().UTC())
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	if opts.print {
		if err := export.WriteText(stdout, export.Build(a.Service.Snapshot(), window)); err != nil {
			return err
		}
	}
	if !opts.archive {
		return nil
	}
	results, err := a.Exporter.Export(ctx, period, formats...)
	if err != nil {
		return err
	}
	for _, r := range results {
		if _, err := fmt.Fprintf(stderr, "archived %s report: %s (%d bytes)\n", r.Format, r.Info.Key, r.Info.Size); err != nil {
			return err
		}
	}
	return nil
}

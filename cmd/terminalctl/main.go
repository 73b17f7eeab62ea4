// Command terminalctl is the operator tool for an attendance terminal.
//
//	terminalctl token [-sub name] [-role viewer|operator] [-ttl 24h]
//	terminalctl queue [-sync]
//	terminalctl probe
//
// It reads the same environment as the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"attendterm/internal/auth"
	"attendterm/internal/config"
	"attendterm/internal/ingest"
	"attendterm/internal/network"
	"attendterm/internal/queue"
	"attendterm/internal/sensor"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	if err := run(os.Args[1:], config.Load(), os.Stdout, logger); err != nil {
		fmt.Fprintln(os.Stderr, "terminalctl:", err)
		os.Exit(1)
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: terminalctl token|queue|probe [flags]")
}

func run(args []string, cfg config.App, out io.Writer, logger *slog.Logger) error {
	if len(args) == 0 {
		usage(out)
		return fmt.Errorf("missing command")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch args[0] {
	case "token":
		return cmdToken(args[1:], cfg, out)
	case "queue":
		return cmdQueue(ctx, args[1:], cfg, out, logger)
	case "probe":
		return cmdProbe(ctx, cfg, out, logger)
	}
	usage(out)
	return fmt.Errorf("unknown command %q", args[0])
}

func cmdToken(args []string, cfg config.App, out io.Writer) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	sub := fs.String("sub", "operator", "token subject")
	role := fs.String("role", auth.RoleViewer, "viewer or operator")
	ttl := fs.Duration("ttl", cfg.AccessTTL, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *role != auth.RoleViewer && *role != auth.RoleOperator {
		return fmt.Errorf("unknown role %q", *role)
	}
	tok, err := auth.Issue(*sub, *role, cfg.JWTIssuer, cfg.JWTSigningKey, *ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tok.Value)
	fmt.Fprintf(out, "# expires %s\n", tok.ExpiresAt.UTC().Format(time.RFC3339))
	return nil
}

func cmdQueue(ctx context.Context, args []string, cfg config.App, out io.Writer, logger *slog.Logger) error {
	fs := flag.NewFlagSet("queue", flag.ContinueOnError)
	doSync := fs.Bool("sync", false, "run one sync pass after listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	backend, closeQueue, _, err := queue.Open(ctx, queue.Settings{
		Backend:     cfg.QueueBackend,
		Path:        cfg.QueuePath,
		SQLitePath:  cfg.QueueSQLitePath,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
		RedisKey:    cfg.QueueRedisKey,
	})
	if err != nil {
		return err
	}
	defer closeQueue()

	q := queue.New(backend, cfg.SyncDelay, logger)
	lines, err := q.Pending(ctx)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(out, l)
	}
	fmt.Fprintf(out, "# %d pending (%s)\n", len(lines), cfg.QueueBackend)
	if !*doSync {
		return nil
	}

	online := false
	if target, err := network.TargetFromURL(cfg.IngestURL); err == nil {
		online = network.NewMonitor(target, cfg.ConnectivityTTL, logger).Probe(ctx)
	}
	report, err := q.DrainAndSync(ctx, ingest.New(cfg.IngestURL, cfg.IngestAPIKey, cfg.IngestTimeout, logger), online)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# synced %d/%d, %d dropped, %d skipped\n", report.Sent, report.Total, report.Failed, report.Skipped)
	return nil
}

func cmdProbe(ctx context.Context, cfg config.App, out io.Writer, logger *slog.Logger) error {
	linked := sensor.NewBridge(cfg.SensorBridgeURL, 3*time.Second, logger).VerifyLink(ctx)
	fmt.Fprintf(out, "sensor  %s  %v\n", cfg.SensorBridgeURL, linked)

	online := false
	target, err := network.TargetFromURL(cfg.IngestURL)
	if err == nil {
		online = network.NewMonitor(target, cfg.ConnectivityTTL, logger).Probe(ctx)
	}
	fmt.Fprintf(out, "ingest  %s  %v\n", target, online)

	if !linked {
		return fmt.Errorf("sensor bridge not responding")
	}
	return nil
}

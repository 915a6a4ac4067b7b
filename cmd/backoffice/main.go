// Command backoffice logs in to the dashboard backend and inspects what the
// account may see.
//
//	backoffice [-config path] [-env .env] [-demo] menu
//	backoffice [-config path] [-env .env] [-demo] list <resource>
//	backoffice [-config path] [-env .env] [-demo] can <route>
//	backoffice [-config path] [-env .env] [-demo] overview
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jzx17/backoffice/internal/config"
	"github.com/jzx17/backoffice/internal/fakebackend"
	"github.com/jzx17/backoffice/internal/logging"
	"github.com/jzx17/backoffice/internal/metrics"
	"github.com/jzx17/backoffice/pkg/api"
	"github.com/jzx17/backoffice/pkg/model"
	"github.com/jzx17/backoffice/pkg/permission"
	"github.com/jzx17/backoffice/pkg/retry"
)

// Exit codes
const (
	exitOK     = 0
	exitDenied = 1
	exitError  = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("backoffice", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to configuration file")
	envPath := fs.String("env", ".env", "Path to .env file")
	demo := fs.Bool("demo", false, "Run against an in-process fake backend")
	if err := fs.Parse(args); err != nil {
		return exitError
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: backoffice [flags] menu | list <resource> | can <route> | overview")
		return exitError
	}

	if err := config.LoadDotEnv(*envPath); err != nil {
		fmt.Fprintln(stderr, "load env:", err)
		return exitError
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintln(stderr, "load config:", err)
			return exitError
		}
	}

	logger, err := logging.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintln(stderr, "logger:", err)
		return exitError
	}

	email, password := os.Getenv("BACKOFFICE_EMAIL"), os.Getenv("BACKOFFICE_PASSWORD")
	if *demo {
		backend := fakebackend.New()
		if err := seedDemo(backend); err != nil {
			logger.Error("Failed to seed demo backend", "error", err)
			return exitError
		}
		srv := httptest.NewServer(backend.Handler())
		defer srv.Close()
		cfg.API.BaseURL = srv.URL + "/api"
		if email == "" {
			email, password = fakebackend.AdminEmail, fakebackend.AdminPassword
		}
		logger.Info("Demo backend started", "url", cfg.API.BaseURL)
	}
	if cfg.API.BaseURL == "" {
		logger.Error("No backend configured", "hint", "set api.base_url or pass -demo")
		return exitError
	}

	executorOpts := []retry.ExecutorOption{retry.WithEventHandler(retry.NewLogEventHandler(logger))}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		executorOpts = append(executorOpts, retry.WithMetricsCollector(metrics.NewRetryCollector(reg)))

		metricsSrv := metrics.NewServer(cfg.Metrics.Addr, reg)
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = metricsSrv.Shutdown(shutdownCtx)
		}()
	}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithExecutor(retry.NewExecutor(cfg.RetryPolicy(), executorOpts...)),
		api.WithLogger(logger),
		api.WithRateLimit(cfg.API.RequestsPerSecond, cfg.API.Burst),
		api.WithUserAgent(cfg.API.UserAgent),
		api.WithSession(permission.NewSession(cfg.GateOptions()...)),
	)
	if err != nil {
		logger.Error("Failed to create client", "error", err)
		return exitError
	}

	if _, err := client.Login(ctx, email, password); err != nil {
		logger.Error("Login failed", "error", err)
		return exitError
	}
	defer func() {
		if err := client.Logout(context.WithoutCancel(ctx)); err != nil {
			logger.Warn("Logout failed", "error", err)
		}
	}()

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "menu":
		printMenu(stdout, client.Session())
		return exitOK
	case "list":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, "usage: backoffice list <resource>")
			return exitError
		}
		summary, err := client.List(ctx, rest[0], api.ListParams{})
		if err != nil {
			logger.Error("List failed", "resource", rest[0], "error", err)
			return exitError
		}
		if err := printSummary(stdout, summary); err != nil {
			logger.Error("Write failed", "error", err)
			return exitError
		}
		return exitOK
	case "can":
		if len(rest) != 1 {
			fmt.Fprintln(stderr, "usage: backoffice can <route>")
			return exitError
		}
		if client.Can(rest[0]) {
			fmt.Fprintln(stdout, "allowed")
			return exitOK
		}
		fmt.Fprintln(stdout, "denied")
		return exitDenied
	case "overview":
		counts, err := client.Overview(ctx)
		if err != nil {
			logger.Error("Overview failed", "error", err)
			return exitError
		}
		printOverview(stdout, counts)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		return exitError
	}
}

func printMenu(w io.Writer, s *permission.Session) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for section := range s.Menu() {
		fmt.Fprintf(tw, "%s\n", section.ModuleName)
		for _, item := range section.Items {
			fmt.Fprintf(tw, "  %s\t%s\n", item.Label, item.Route)
		}
	}
	tw.Flush()
}

func printOverview(w io.Writer, counts []api.Count) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, c := range counts {
		if c.Err != nil {
			fmt.Fprintf(tw, "%s\terror: %v\n", c.Resource, c.Err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\n", c.Resource, c.Total)
	}
	tw.Flush()
}

func printSummary(w io.Writer, s *api.Summary) error {
	enc := json.NewEncoder(w)
	for _, row := range s.Rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	p := s.Pagination
	_, err := fmt.Fprintf(w, "%s: page %d/%d, %d total\n", s.Resource, p.Page, max(p.TotalPages, 1), p.Total)
	return err
}

func seedDemo(b *fakebackend.Server) error {
	if _, err := b.Seed("clients",
		model.Client{Name: "Acme Ltd", Email: "billing@acme.example"},
		model.Client{Name: "Globex", Email: "ap@globex.example"},
	); err != nil {
		return err
	}
	if _, err := b.Seed("taxes",
		model.Tax{Name: "VAT", Percentage: 20, Active: true},
		model.Tax{Name: "Reduced", Percentage: 5, Active: true},
	); err != nil {
		return err
	}
	_, err := b.Seed("products", model.Product{Name: "Consulting hour", Price: 120, Active: true})
	return err
}

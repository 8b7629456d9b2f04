package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jessevdk/go-flags"

	"readingroundup/internal/config"
	"readingroundup/internal/logger"
	"readingroundup/internal/metrics"
	"readingroundup/internal/pipeline"
	"readingroundup/internal/schedule"
)

type options struct {
	Sources      string `short:"s" long:"sources" description:"Path to the publications YAML file"`
	Publications string `short:"p" long:"publications" description:"Comma-separated subset of publication names to collect"`
	Output       string `short:"o" long:"output" description:"Directory for digest outputs"`
	Quota        int    `short:"n" long:"quota" description:"Articles to keep per publication"`
	Once         bool   `long:"once" description:"Run a single collection even when a cron schedule is configured"`
}

func main() {
	logger.Init()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	applyOverrides(cfg, opts)

	var subset []string
	if opts.Publications != "" {
		for _, name := range strings.Split(opts.Publications, ",") {
			if name = strings.TrimSpace(name); name != "" {
				subset = append(subset, name)
			}
		}
	}

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := pipeline.New(cfg, subset)
	if err != nil {
		logger.Error("pipeline setup failed", "error", err)
		os.Exit(1)
	}

	if cfg.CronExpression != "" && !opts.Once {
		runScheduled(ctx, cfg.CronExpression, p)
		return
	}

	if _, err := p.Run(ctx); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func applyOverrides(cfg *config.Config, opts options) {
	if opts.Sources != "" {
		cfg.SourcesPath = opts.Sources
	}
	if opts.Output != "" {
		cfg.OutputDir = opts.Output
	}
	if opts.Quota > 0 {
		cfg.QuotaPerSource = opts.Quota
	}
}

func runScheduled(ctx context.Context, expr string, p *pipeline.Pipeline) {
	s, err := schedule.New(expr, func() {
		if _, err := p.Run(ctx); err != nil {
			logger.Error("scheduled run failed", "error", err)
		}
	})
	if err != nil {
		logger.Error("invalid cron expression", "expr", expr, "error", err)
		os.Exit(1)
	}
	logger.Info("running on schedule", "cron", expr)
	s.Run(ctx)
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	logger.Info("monitoring server listening", "port", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		logger.Error("monitoring server stopped", "error", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(metrics.Global.GetStats())
}

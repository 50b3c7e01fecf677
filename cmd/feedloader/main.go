package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bakkerme/feedloader/internal/config"
	"github.com/bakkerme/feedloader/internal/httpclient/impl"
	"github.com/bakkerme/feedloader/internal/logx"
	"github.com/bakkerme/feedloader/internal/metrics"
	"github.com/bakkerme/feedloader/internal/observability/otelx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code. Deferred cleanup, including the trace
// exporter flush, has finished by the time it returns.
func run() int {
	if err := config.LoadDotEnv("."); err != nil {
		log.Printf("failed to load env files: %v", err)
		return 1
	}
	env := config.LoadEnv()

	configPath := flag.String("config", env.ConfigPath, "path to feedloader document")
	feedURL := flag.String("url", env.FeedURL, "load this single feed url instead of the document feeds")
	format := flag.String("format", "json", "output format: json or yaml")
	interval := flag.Duration("interval", 0, "reload every interval until interrupted; 0 loads once")
	schedule := flag.String("schedule", "", "cron spec for reloads; overrides -interval")
	timezone := flag.String("timezone", "", "timezone for -schedule (default UTC)")
	logLevel := flag.String("log-level", env.LogLevel, "log level: debug, info, warn or error")
	metricsAddr := flag.String("metrics-addr", env.MetricsAddr, "serve prometheus metrics on this address")
	flag.Parse()

	if *format != formatJSON && *format != formatYAML {
		log.Printf("unsupported format %q", *format)
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logx.ParseLevel(*logLevel)}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logx.WithLogger(ctx, logger)

	feeds, httpCfg, err := resolveFeeds(*feedURL, *configPath, env.HTTP)
	if err != nil {
		logger.Error("failed to resolve feeds", slog.String("err", err.Error()))
		return 1
	}

	shutdown, err := otelx.Init(ctx, logger, env.OTel)
	if err != nil {
		logger.Error("failed to init otel", slog.String("err", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("otel shutdown failed", slog.String("err", err.Error()))
		}
	}()

	m, err := metrics.New(nil)
	if err != nil {
		logger.Error("failed to register metrics", slog.String("err", err.Error()))
		return 1
	}
	if *metricsAddr != "" {
		go serveMetrics(logger, *metricsAddr)
	}

	client := impl.NewClient(impl.NewNetSession(httpCfg.Timeout, httpCfg.UserAgent, httpCfg.MaxBodyBytes), m)
	loaders := newLoaders(client, feeds, m)
	defer closeLoaders(loaders)

	spec := reloadSpec(*schedule, *interval)
	if spec == "" {
		if err := runOnce(ctx, loaders, os.Stdout, *format); err != nil {
			logger.Error("load failed", slog.String("err", err.Error()))
			return 1
		}
		return 0
	}

	logger.Info("reloading feeds", slog.String("schedule", spec), slog.Int("feeds", len(loaders)))
	err = runScheduled(ctx, spec, *timezone, func(ctx context.Context) {
		if err := runOnce(ctx, loaders, os.Stdout, *format); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("load failed", slog.String("err", err.Error()))
		}
	})
	if err != nil {
		logger.Error("failed to schedule reloads", slog.String("err", err.Error()))
		return 1
	}
	return 0
}

func serveMetrics(logger *slog.Logger, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving metrics", slog.String("addr", addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", slog.String("err", err.Error()))
	}
}

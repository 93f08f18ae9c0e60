package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"news_alert/internal/bot"
	"news_alert/internal/config"
	"news_alert/internal/fetcher"
	"news_alert/internal/metrics"
	"news_alert/internal/rules"
	"news_alert/internal/scheduler"
	"news_alert/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	loc, err := cfg.Location()
	if err != nil {
		log.Error("trigger timezone", "error", err)
		os.Exit(1)
	}

	rs, err := rules.Load(cfg.TriggerConfig, loc)
	metrics.ObserveReload(err)
	if err != nil {
		log.Error("load triggers", "path", cfg.TriggerConfig, "error", err)
		os.Exit(1)
	}
	log.Info("triggers loaded", "path", cfg.TriggerConfig, "selected", len(rs.Current().Triggers), "zone", loc.String())

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	f := fetcher.New(http.DefaultClient)
	f.SetRetry(cfg.FetchRetries, 500*time.Millisecond)

	b, err := bot.New(cfg.TelegramBotToken, store, cfg, rs, f, log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	sched := scheduler.New(store, f, rs, loc, b, log)
	sched.SetTickInterval(cfg.PollInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if cfg.MetricsAddr != "" {
		go serveMetrics(ctx, cfg.MetricsAddr, log)
	}

	log.Info("starting bot", "poll_interval", cfg.PollInterval.String())

	go sched.Run(ctx)

	b.Run(ctx)

	log.Info("bot stopped")
}

func serveMetrics(ctx context.Context, addr string, log *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// Command profileinator runs the profile picture generation web server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mhpenta/profileinator"
	"github.com/mhpenta/profileinator/provider/gemini"
	"github.com/mhpenta/profileinator/ratelimiter"
	"github.com/mhpenta/profileinator/server"
	"github.com/robfig/cron/v3"
)

func main() {
	addr := flag.String("addr", "", "Listen address (overrides PORT)")
	verbose := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := server.Load()
	if *addr != "" {
		cfg.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var provider profileinator.Provider
	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, running in offline mode: all variants will be placeholders")
	} else {
		p, err := gemini.New(ctx, &gemini.Config{
			APIKey:        cfg.GeminiAPIKey,
			AnalysisModel: cfg.AnalysisModel,
			ImageModel:    cfg.ImageModel,
		})
		if err != nil {
			logger.Error("failed to create Gemini provider", "error", err.Error())
			os.Exit(1)
		}
		provider = p
	}

	opts := []profileinator.ServiceOption{
		profileinator.WithLogger(logger),
		profileinator.WithConcurrency(cfg.Concurrency),
		profileinator.WithRateLimiter(profileinator.OperationAnalyze,
			ratelimiter.New(cfg.AnalyzeTokensPerMinute, cfg.AnalyzeRequestsPerMinute)),
		profileinator.WithRateLimiter(profileinator.OperationGenerate,
			ratelimiter.New(cfg.GenerateTokensPerMinute, cfg.GenerateRequestsPerMinute)),
	}

	var scheduler *cron.Cron
	if cfg.ArchiveDir != "" {
		storage, err := profileinator.NewLocalStorage(cfg.ArchiveDir)
		if err != nil {
			logger.Error("failed to set up archive storage", "error", err.Error())
			os.Exit(1)
		}
		opts = append(opts, profileinator.WithStorage(storage))

		scheduler = cron.New()
		_, err = scheduler.AddFunc("@hourly", func() {
			removed, err := storage.Prune(cfg.ArchiveTTL)
			if err != nil {
				logger.Warn("archive prune failed", "error", err.Error())
				return
			}
			if removed > 0 {
				logger.Info("pruned archived variants", "removed", removed)
			}
		})
		if err != nil {
			logger.Error("failed to schedule archive pruning", "error", err.Error())
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("variant archiving enabled",
			"dir", cfg.ArchiveDir,
			"ttl", cfg.ArchiveTTL.String(),
		)
	}

	svc := profileinator.NewService(provider, opts...)
	defer func() {
		if err := svc.Close(); err != nil {
			logger.Warn("failed to close provider", "error", err.Error())
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           http.TimeoutHandler(server.New(svc, cfg, logger).Handler(), cfg.RequestTimeout, ""),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.Addr, "offline", svc.Offline())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err.Error())
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err.Error())
	}
	if scheduler != nil {
		<-scheduler.Stop().Done()
	}
	logger.Info("server stopped")
}

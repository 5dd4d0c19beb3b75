package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bibleapi/internal/ratelimit"
	"bibleapi/internal/util"
	"bibleapi/services/verse/internal/app"
	"bibleapi/services/verse/internal/config"
	"bibleapi/services/verse/internal/server"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	shutdownTimeout, err := config.ParseShutdownTimeout(cfg.ShutdownTimeout)
	if err != nil {
		log.Fatalf("failed to parse shutdown timeout: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxyCIDRs)
	if err != nil {
		log.Fatalf("failed to parse trusted proxies: %v", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RateLimit > 0 {
		window, err := config.ParseRateLimitWindow(cfg.RateLimitWindow)
		if err != nil {
			log.Fatalf("failed to parse rate limit window: %v", err)
		}
		limiter, err = ratelimit.NewRedisFixedWindowLimiter(ratelimit.Options{
			URL:      cfg.RedisURL,
			Password: cfg.RedisPassword,
			Limit:    cfg.RateLimit,
			Window:   window,
			FailOpen: cfg.RateLimitFailOpen,
		})
		if err != nil {
			log.Fatalf("failed to init rate limiter: %v", err)
		}
		defer limiter.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := limiter.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable at startup", "err", err, "fail_open", cfg.RateLimitFailOpen)
		}
		cancel()
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:        cfg.DatabaseURL,
		DefaultTranslation: cfg.DefaultTranslation,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}
	defer appCore.Close()

	httpServer, err := server.New(server.Config{
		App:            appCore,
		Limiter:        limiter,
		TrustedProxies: trusted,
		DisplayHost:    cfg.DisplayHost,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr, "default_translation", cfg.DefaultTranslation)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
		}
		return
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx := context.Background()
	if shutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}

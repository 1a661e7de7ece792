package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"racha/internal/ai"
	"racha/internal/cache"
	"racha/internal/config"
	apphttp "racha/internal/http"
	"racha/internal/log"
	"racha/internal/session"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := log.Setup(cfg.LogFormat, cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", log.FieldError, err)
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sessions := session.NewStore(cfg.SessionTTL)
	defer sessions.Stop()

	caches := cache.NewManager()
	defer caches.Stop()

	var gateway ai.Gateway
	if cfg.AIEnabled() {
		gemini, err := ai.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Error("Failed to initialize AI gateway", log.FieldError, err)
			return err
		}
		for _, c := range gemini.Caches() {
			caches.Register(c)
		}
		gateway = gemini
		logger.Info("AI gateway enabled", log.FieldModel, cfg.GeminiModel)
	} else {
		logger.Warn("GEMINI_API_KEY not set, AI features disabled")
	}
	caches.StartCleanup(5 * time.Minute)

	srv := apphttp.NewServer(":"+cfg.Port, sessions, gateway)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", log.FieldError, err)
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

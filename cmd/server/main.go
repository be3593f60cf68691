// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"harvin-platform/internal/api"
	"harvin-platform/internal/common/config"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/observability"
	"harvin-platform/internal/mail"
	"harvin-platform/internal/onboarding"
	"harvin-platform/internal/session"
	leadnotify "harvin-platform/internal/workers/communication/lead-notify"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting HarvinAI server...",
		zap.String("environment", cfg.App.Environment),
		zap.String("address", cfg.Server.Address))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	state, err := openClientState(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("client state store unavailable", zap.Error(err))
	}
	defer state.close()

	recorder, closeRecorder, err := openLeadRecorder(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("lead audit store unavailable", zap.Error(err))
	}
	defer closeRecorder()

	transport, err := mail.NewTransport(ctx, cfg)
	if err != nil {
		zapLog.Fatal("mail transport configuration invalid", zap.Error(err))
	}
	if transport == nil {
		zapLog.Warn("Mail transport not configured; lead notifications will be skipped")
	} else {
		zapLog.Info("Mail transport configured", zap.String("transport", transport.Name()))
	}

	notifier := leadnotify.NewService(leadnotify.ServiceDependencies{
		Transport: transport,
		Recorder:  recorder,
		Logger:    log.WithFields(map[string]interface{}{"component": "lead-notify"}),
	}, leadnotify.ConfigFromApp(cfg), obs)

	router := api.NewRouter(api.Options{
		Notifier:    notifier,
		Wizard:      onboarding.NewController(state.store, state.gate, log.WithFields(map[string]interface{}{"component": "onboarding"})),
		Sessions:    session.NewService(state.store, log.WithFields(map[string]interface{}{"component": "session"})),
		Pingers:     state.pingers,
		Logger:      log.WithFields(map[string]interface{}{"component": "http"}),
		Development: cfg.App.IsDevelopment(),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLog.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}
	zapLog.Info("Server stopped")
}

// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"harvin-platform/internal/common/camunda"
	"harvin-platform/internal/common/config"
	"harvin-platform/internal/common/database"
	"harvin-platform/internal/common/logger"
	"harvin-platform/internal/common/observability"
	"harvin-platform/internal/leads"
	"harvin-platform/internal/mail"
	leadnotify "harvin-platform/internal/workers/communication/lead-notify"
)

const healthAddress = ":9090"

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs, err := observability.New("worker-manager")
	if err != nil {
		zapLog.Warn("otel metrics disabled", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.NewClient(ctx, camunda.ClientConfigFromApp(cfg))
	if err != nil {
		zapLog.Fatal("zeebe client failed", zap.Error(err))
	}
	defer zeebe.Close()
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Lead audit (optional) ---
	var recorder leads.Recorder = leads.NoopRecorder{}
	if cfg.Database.Postgres.Enabled() {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			zapLog.Fatal("postgres configuration invalid", zap.Error(err))
		}
		defer pg.Close()

		repo := leads.NewRepository(pg.DB)
		err = retryWithBackoff(func() error {
			if err := pg.Ping(ctx); err != nil {
				return err
			}
			return repo.EnsureSchema(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		recorder = repo
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Mail ---
	transport, err := mail.NewTransport(ctx, cfg)
	if err != nil {
		zapLog.Fatal("mail transport configuration invalid", zap.Error(err))
	}
	if transport == nil {
		zapLog.Warn("Mail transport not configured; lead.notify.send jobs will complete as skipped")
	}

	// --- Workers ---
	var workers []*camunda.CamundaWorker

	handler, err := leadnotify.NewHandler(leadnotify.HandlerOptions{
		AppConfig:     cfg,
		Transport:     transport,
		Recorder:      recorder,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("failed to create lead-notify handler", zap.Error(err))
	}
	if wcfg := config.GetWorkerConfig(cfg, "lead-notify"); wcfg.Enabled {
		workers = append(workers, camunda.NewWorker(zeebe.GetClient(), camunda.WorkerOptions{
			TaskType:      leadnotify.TaskType,
			MaxJobsActive: wcfg.MaxJobsActive,
			Timeout:       config.GetDuration(wcfg.Timeout),
			WorkerName:    cfg.App.Name,
		}, handler, zapLog))
	} else {
		zapLog.Info("worker disabled", zap.String("taskType", leadnotify.TaskType))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		status, body := http.StatusOK, "ready"
		if err := zeebe.HealthCheck(r.Context()); err != nil {
			status, body = http.StatusServiceUnavailable, "zeebe unavailable"
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]string{
			"status": body,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: healthAddress, Handler: mux}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", healthAddress))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Health server shutdown failed", zap.Error(err))
	}
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("observability shutdown failed", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

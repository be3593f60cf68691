package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"harvin-platform/internal/api"
	"harvin-platform/internal/clientstate"
	"harvin-platform/internal/common/config"
	"harvin-platform/internal/common/database"
	"harvin-platform/internal/leads"
	"harvin-platform/internal/onboarding"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(ctx context.Context, operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		if err = operation(); err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

type clientState struct {
	store   clientstate.Store
	gate    onboarding.NavigationGate
	pingers map[string]api.Pinger
	close   func()
}

// openClientState uses Redis when an address is configured and process memory otherwise.
func openClientState(ctx context.Context, cfg *config.Config, log *zap.Logger) (*clientState, error) {
	lock := config.GetDuration(cfg.Onboarding.NavigationLock)

	if !cfg.Database.Redis.Enabled() {
		log.Warn("Redis not configured; client state is kept in memory and lost on restart")
		return &clientState{
			store:   clientstate.NewMemoryStore(),
			gate:    onboarding.NewMemoryGate(lock),
			pingers: map[string]api.Pinger{},
			close:   func() {},
		}, nil
	}

	rdb := database.NewRedis(cfg.Database.Redis)
	err := retryWithBackoff(ctx, func() error {
		return rdb.Ping(ctx)
	}, 10, 2*time.Second, log, "Redis connection")
	if err != nil {
		_ = rdb.Close()
		return nil, err
	}
	log.Info("Redis connected successfully", zap.String("address", cfg.Database.Redis.Address))

	prefix := cfg.Onboarding.KeyPrefix
	ttl := time.Duration(cfg.Onboarding.StateTTL) * time.Hour
	return &clientState{
		store:   clientstate.NewRedisStore(rdb.Client, prefix, ttl),
		gate:    onboarding.NewRedisGate(rdb.Client, prefix, lock),
		pingers: map[string]api.Pinger{rdb.Name(): rdb.Ping},
		close: func() {
			if err := rdb.Close(); err != nil {
				log.Error("redis close failed", zap.Error(err))
			}
		},
	}, nil
}

// openLeadRecorder returns a no-op recorder when Postgres is not configured.
func openLeadRecorder(ctx context.Context, cfg *config.Config, log *zap.Logger) (leads.Recorder, func(), error) {
	if !cfg.Database.Postgres.Enabled() {
		log.Info("Postgres not configured; lead audit disabled")
		return leads.NoopRecorder{}, func() {}, nil
	}

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}

	repo := leads.NewRepository(pg.DB)
	err = retryWithBackoff(ctx, func() error {
		if err := pg.Ping(ctx); err != nil {
			return err
		}
		return repo.EnsureSchema(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	log.Info("PostgreSQL connected successfully")

	return repo, func() {
		if err := pg.Close(); err != nil {
			log.Error("postgres close failed", zap.Error(err))
		}
	}, nil
}

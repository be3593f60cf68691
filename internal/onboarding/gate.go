package onboarding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// NavigationGate rate-limits Next and Back per client. Acquire reports false while a
// previous navigation for the same client is still inside its lock window.
type NavigationGate interface {
	Acquire(ctx context.Context, clientID string) (bool, error)
}

// MemoryGate is a process-local NavigationGate.
type MemoryGate struct {
	window time.Duration
	now    func() time.Time

	mu    sync.Mutex
	until map[string]time.Time
}

func NewMemoryGate(window time.Duration) *MemoryGate {
	return &MemoryGate{window: window, now: time.Now, until: make(map[string]time.Time)}
}

func (g *MemoryGate) Acquire(_ context.Context, clientID string) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if until, ok := g.until[clientID]; ok && now.Before(until) {
		return false, nil
	}
	g.until[clientID] = now.Add(g.window)

	for id, until := range g.until {
		if !now.Before(until) {
			delete(g.until, id)
		}
	}
	return true, nil
}

// RedisGate shares the lock window across server instances with SET NX PX.
type RedisGate struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
}

func NewRedisGate(client redis.UniversalClient, prefix string, window time.Duration) *RedisGate {
	return &RedisGate{client: client, prefix: prefix, window: window}
}

func (g *RedisGate) Acquire(ctx context.Context, clientID string) (bool, error) {
	if g.window <= 0 {
		return true, nil
	}
	key := fmt.Sprintf("%s:navlock:%s", g.prefix, clientID)
	ok, err := g.client.SetNX(ctx, key, 1, g.window).Result()
	if err != nil {
		return false, fmt.Errorf("acquire navigation lock: %w", err)
	}
	return ok, nil
}

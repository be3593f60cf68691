package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harvin-platform/internal/common/config"
)

func newRetryClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

// ==========================
// ExecuteWithRetry
// ==========================

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient errors then succeeds", func(t *testing.T) {
		c := newRetryClient(3)
		calls := 0
		result, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, stderrors.New("rpc error: code = Unavailable desc = connection refused")
			}
			return "ok", nil
		}, "topology")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		c := newRetryClient(2)
		calls := 0
		_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("context deadline exceeded")
		}, "complete")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.ErrorIs(t, err, ErrBrokerTimeout)
		assert.Contains(t, err.Error(), "after 3 attempts")
	})

	t.Run("does not retry permanent errors", func(t *testing.T) {
		c := newRetryClient(3)
		calls := 0
		cause := stderrors.New("rpc error: code = NotFound desc = job not found")
		_, err := c.ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, cause
		}, "fail")

		assert.Equal(t, 1, calls)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("stops when context is cancelled", func(t *testing.T) {
		c := newRetryClient(5)
		c.config.RetryConfig.BaseDelay = time.Hour
		c.config.RetryConfig.MaxDelay = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
			cancel()
			return nil, stderrors.New("connection reset by peer")
		}, "topology")

		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ==========================
// Error classification
// ==========================

func TestMapZeebeError(t *testing.T) {
	assert.ErrorIs(t, mapZeebeError(stderrors.New("connection refused"), "x", 0), ErrBrokerUnavailable)
	assert.ErrorIs(t, mapZeebeError(stderrors.New("Unavailable"), "x", 0), ErrBrokerUnavailable)
	assert.ErrorIs(t, mapZeebeError(stderrors.New("i/o timeout"), "x", 0), ErrBrokerTimeout)

	err := mapZeebeError(stderrors.New("permission denied"), "deploy", 0)
	assert.NotErrorIs(t, err, ErrBrokerUnavailable)
	assert.Equal(t, "zeebe operation 'deploy' failed: permission denied", err.Error())
}

func TestIsRetryableZeebeError(t *testing.T) {
	assert.True(t, isRetryableZeebeError(stderrors.New("write: broken pipe")))
	assert.True(t, isRetryableZeebeError(stderrors.New("host unreachable")))
	assert.False(t, isRetryableZeebeError(stderrors.New("invalid argument")))
}

// ==========================
// Config
// ==========================

func TestClientConfigFromApp(t *testing.T) {
	cfg := &config.Config{}
	cfg.Camunda.BrokerAddress = "localhost:26500"
	cfg.Camunda.Timeout = 5000

	c := ClientConfigFromApp(cfg)
	assert.True(t, c.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, c.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)

	cfg.Camunda.BrokerAddress = "zeebe.harvinai.com:443"
	assert.False(t, ClientConfigFromApp(cfg).UsePlaintextConnection)
}

func TestNewClient_RequiresAddress(t *testing.T) {
	_, err := NewClient(context.Background(), &ClientConfig{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway address is required")
}

package adapter

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/pkg/logger"
)

// RetryConfig holds the backoff policy of a RetryingProvider.
type RetryConfig struct {
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	Jitter            bool
}

// DefaultRetryConfig returns three attempts starting at 500ms.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:       3,
		InitialBackoff:    500 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            true,
	}
}

// Backoff returns the wait before retry number attempt (0-based).
func (c *RetryConfig) Backoff(attempt int) time.Duration {
	d := float64(c.InitialBackoff)
	for i := 0; i < attempt; i++ {
		d *= c.BackoffMultiplier
		if time.Duration(d) >= c.MaxBackoff {
			break
		}
	}
	backoff := time.Duration(d)
	if c.Jitter && backoff > 0 {
		// up to 25% extra
		backoff += time.Duration(rand.Int64N(int64(backoff)/4 + 1))
	}
	if c.MaxBackoff > 0 && backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// RetryingProvider retries chat calls whose failure reason is retryable.
type RetryingProvider struct {
	service.ChatProvider
	cfg *RetryConfig

	// sleep is replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryingProvider decorates p. A nil cfg uses DefaultRetryConfig.
func NewRetryingProvider(p service.ChatProvider, cfg *RetryConfig) *RetryingProvider {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &RetryingProvider{ChatProvider: p, cfg: cfg, sleep: sleepCtx}
}

// ManagesTools forwards to the wrapped provider.
func (r *RetryingProvider) ManagesTools() bool {
	mp, ok := r.ChatProvider.(service.ManagedProvider)
	return ok && mp.ManagesTools()
}

func (r *RetryingProvider) Chat(ctx context.Context, history []*entity.ChatMessage, tools []*entity.ToolDefinition) (*entity.Reply, error) {
	var lastErr error
	for attempt := 0; attempt < r.cfg.MaxAttempts; attempt++ {
		reply, err := r.ChatProvider.Chat(ctx, history, tools)
		if err == nil {
			return reply, nil
		}
		lastErr = err

		if !entity.ClassifyError(err).IsRetryable() || ctx.Err() != nil || attempt == r.cfg.MaxAttempts-1 {
			break
		}

		wait := r.cfg.Backoff(attempt)
		logger.Warn("[LLM] %s call failed (attempt %d/%d), retrying in %s: %v",
			r.Name(), attempt+1, r.cfg.MaxAttempts, wait, err)
		if err := r.sleep(ctx, wait); err != nil {
			break
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *RetryingProvider) Unwrap() service.ChatProvider { return r.ChatProvider }

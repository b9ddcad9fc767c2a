package adapter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

type scriptedProvider struct {
	errs  []error
	calls int
}

func (s *scriptedProvider) Name() string { return "scripted" }

func (s *scriptedProvider) Chat(context.Context, []*entity.ChatMessage, []*entity.ToolDefinition) (*entity.Reply, error) {
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return &entity.Reply{Text: "done"}, nil
}

func noSleep(context.Context, time.Duration) error { return nil }

func TestRetryingProvider(t *testing.T) {
	rateLimited := entity.NewProviderCallError(entity.FailureReason_RateLimit, "openai", "gpt-4o", "slow down")
	badKey := entity.NewProviderCallError(entity.FailureReason_Auth, "openai", "gpt-4o", "bad key")

	tests := []struct {
		name      string
		errs      []error
		wantCalls int
		wantErr   error
	}{
		{"success first try", nil, 1, nil},
		{"retryable then success", []error{rateLimited, rateLimited}, 3, nil},
		{"non-retryable stops", []error{badKey}, 1, badKey},
		{"attempts exhausted", []error{rateLimited, rateLimited, rateLimited, nil}, 3, rateLimited},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &scriptedProvider{errs: tt.errs}
			r := NewRetryingProvider(inner, &RetryConfig{MaxAttempts: 3, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond, BackoffMultiplier: 2})
			r.sleep = noSleep

			reply, err := r.Chat(context.Background(), nil, nil)
			if inner.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", inner.calls, tt.wantCalls)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil || reply.Text != "done" {
				t.Errorf("reply = %+v, err = %v", reply, err)
			}
		})
	}
}

func TestRetryingProviderHonorsContext(t *testing.T) {
	rateLimited := entity.NewProviderCallError(entity.FailureReason_RateLimit, "", "", "slow down")
	inner := &scriptedProvider{errs: []error{rateLimited, rateLimited, rateLimited}}
	r := NewRetryingProvider(inner, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Chat(ctx, nil, nil); err == nil {
		t.Fatal("expected an error")
	}
	if inner.calls != 1 {
		t.Errorf("calls = %d, want 1", inner.calls)
	}
}

func TestRetryBackoffIsCapped(t *testing.T) {
	cfg := &RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second, BackoffMultiplier: 2}
	want := []time.Duration{time.Second, 2 * time.Second, 3 * time.Second, 3 * time.Second}
	for i, w := range want {
		if got := cfg.Backoff(i); got != w {
			t.Errorf("Backoff(%d) = %s, want %s", i, got, w)
		}
	}
}

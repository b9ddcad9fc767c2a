package adapter

import (
	"context"
	"time"

	"github.com/kiosk404/warp/internal/pkg/metrics"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
)

// InstrumentedProvider records call counts and latency per provider.
type InstrumentedProvider struct {
	service.ChatProvider
}

func NewInstrumentedProvider(p service.ChatProvider) *InstrumentedProvider {
	return &InstrumentedProvider{ChatProvider: p}
}

func (i *InstrumentedProvider) ManagesTools() bool {
	mp, ok := i.ChatProvider.(service.ManagedProvider)
	return ok && mp.ManagesTools()
}

func (i *InstrumentedProvider) Chat(ctx context.Context, history []*entity.ChatMessage, tools []*entity.ToolDefinition) (*entity.Reply, error) {
	start := time.Now()
	reply, err := i.ChatProvider.Chat(ctx, history, tools)
	status := "ok"
	if err != nil {
		status = entity.ClassifyError(err).String()
	}
	metrics.RecordProviderCall(i.Name(), status, time.Since(start))
	return reply, err
}

func (i *InstrumentedProvider) Unwrap() service.ChatProvider { return i.ChatProvider }

// ToolListing returns the tool listing of an agent CLI provider, looking
// through decorators.
func ToolListing(p service.ChatProvider) (string, bool) {
	for p != nil {
		if l, ok := p.(interface{ ToolListing() string }); ok {
			return l.ToolListing(), true
		}
		u, ok := p.(interface{ Unwrap() service.ChatProvider })
		if !ok {
			return "", false
		}
		p = u.Unwrap()
	}
	return "", false
}

package service

import (
	"context"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service/runtime"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
)

// Manager runs one conversation session against one tool server.
//
// Connect is called once, ProcessQuery any number of times, and Cleanup
// exactly once at the end. Cleanup is safe after any failure and at any
// time, including while a query is running.
type Manager interface {
	Connect(ctx context.Context, cfg *mcp.ServerConfig) error

	// ProcessQuery never fails: errors are returned as the response text.
	ProcessQuery(ctx context.Context, query string) string

	Cleanup() error

	// Catalog returns the tools discovered at Connect, nil when the
	// provider manages its own tools.
	Catalog() *mcp.Catalog

	// Session returns the session transcript.
	Session() *entity.Session
}

// Connection is a live tool-server link.
type Connection interface {
	runtime.ToolCaller
	Name() string
	Catalog() *mcp.Catalog
	Close() error
}

// ConnectFunc opens a Connection.
type ConnectFunc func(ctx context.Context, cfg *mcp.ServerConfig) (Connection, error)

// Options are shared by both manager variants.
type Options struct {
	Verbose bool

	// DispatchConcurrency > 1 runs tool calls in parallel, keeping order.
	DispatchConcurrency int

	// QueryTimeout bounds a whole query. Zero means no bound.
	QueryTimeout time.Duration
}

func (o Options) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.QueryTimeout > 0 {
		return context.WithTimeout(ctx, o.QueryTimeout)
	}
	return ctx, func() {}
}

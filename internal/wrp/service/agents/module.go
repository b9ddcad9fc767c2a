package agents

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/repo"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service"
	boltdbStore "github.com/kiosk404/warp/internal/wrp/service/agents/store/boltdb"
	"github.com/kiosk404/warp/internal/wrp/service/agents/store/inmemory"
	llmService "github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
)

const (
	StoreInMemory = "inmemory"
	StoreBoltDB   = "boltdb"
)

// Config holds the configuration for the Agents module.
// Follows K8S-style: Config → Complete() → New(ctx, deps).
type Config struct {
	// Verbose adds the tool-call trace to responses.
	Verbose bool

	// DispatchConcurrency > 1 runs the tool calls of one reply in parallel.
	DispatchConcurrency int

	// QueryTimeout bounds a whole query. Zero means no bound.
	QueryTimeout time.Duration

	// StoreType selects the transcript backend: "inmemory" or "boltdb".
	// Default: "inmemory".
	StoreType string

	// BoltDBPath is the file path for BoltDB storage (when StoreType="boltdb").
	// Default: "data/wrp.db".
	BoltDBPath string
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.DispatchConcurrency <= 0 {
		c.DispatchConcurrency = 1
	}
	if c.StoreType == "" {
		c.StoreType = StoreInMemory
	}
	if c.BoltDBPath == "" {
		c.BoltDBPath = "data/wrp.db"
	}
	return CompletedConfig{c}
}

// Dependencies holds the modules the Agents module builds managers from.
type Dependencies struct {
	// MCP is required unless every provider manages its own tools.
	MCP *mcp.Module
}

// Module creates conversation managers and owns the transcript store.
type Module struct {
	Sessions repo.SessionRepository

	mcp    *mcp.Module
	opts   service.Options
	boltDB *boltdbStore.DB // nil when using inmemory store
}

// New creates and initializes the Agents module from a completed config.
func (c CompletedConfig) New(_ context.Context, deps Dependencies) (*Module, error) {
	m := &Module{
		mcp: deps.MCP,
		opts: service.Options{
			Verbose:             c.Verbose,
			DispatchConcurrency: c.DispatchConcurrency,
			QueryTimeout:        c.QueryTimeout,
		},
	}

	switch c.StoreType {
	case StoreBoltDB:
		db, err := boltdbStore.Open(c.BoltDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open boltdb at %s: %w", c.BoltDBPath, err)
		}
		m.boltDB = db
		m.Sessions = boltdbStore.NewSessionStore(db)
		logger.Info("[Agents] using BoltDB store at %s", c.BoltDBPath)
	case StoreInMemory:
		m.Sessions = inmemory.NewSessionStore()
		logger.Debug("[Agents] using in-memory store")
	default:
		return nil, fmt.Errorf("unknown store type %q (supported: %s, %s)", c.StoreType, StoreInMemory, StoreBoltDB)
	}
	return m, nil
}

// NewManager returns an ExternalManager when the provider manages its own
// tool servers and a WarpManager otherwise.
func (m *Module) NewManager(provider llmService.ChatProvider, managesTools bool) (service.Manager, error) {
	if managesTools {
		return service.NewExternalManager(provider, m.Sessions, m.opts), nil
	}
	if m.mcp == nil {
		return nil, fmt.Errorf("MCP module dependency is required for provider %s", provider.Name())
	}
	return service.NewWarpManager(provider, service.MCPConnect(m.mcp.Options()), m.Sessions, m.opts), nil
}

// Close releases resources held by the module (e.g., BoltDB handle).
func (m *Module) Close() error {
	if m.boltDB != nil {
		return m.boltDB.Close()
	}
	return nil
}

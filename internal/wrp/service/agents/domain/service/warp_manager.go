package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/kiosk404/warp/internal/pkg/metrics"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/repo"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service/runtime"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg/errno"
	llmService "github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
)

// WarpManager connects to a tool server itself and runs the tool-calling
// loop against a direct provider.
type WarpManager struct {
	provider llmService.ChatProvider
	connect  ConnectFunc
	sessions repo.SessionRepository
	opts     Options

	// mu serializes queries.
	mu      sync.Mutex
	session *entity.Session
	orch    *runtime.Orchestrator

	connMu  sync.RWMutex
	conn    Connection
	cleaned bool
}

var _ Manager = (*WarpManager)(nil)

// NewWarpManager creates a manager. sessions may be nil to skip persistence.
func NewWarpManager(provider llmService.ChatProvider, connect ConnectFunc, sessions repo.SessionRepository, opts Options) *WarpManager {
	return &WarpManager{
		provider: provider,
		connect:  connect,
		sessions: sessions,
		opts:     opts,
	}
}

func (m *WarpManager) Connect(ctx context.Context, cfg *mcp.ServerConfig) error {
	m.connMu.Lock()
	if m.cleaned {
		m.connMu.Unlock()
		return errno.ErrCleanedUp
	}
	if m.conn != nil {
		m.connMu.Unlock()
		return errno.ErrAlreadyConnected
	}
	m.connMu.Unlock()

	conn, err := m.connect(ctx, cfg)
	if err != nil {
		return err
	}

	m.connMu.Lock()
	if m.cleaned {
		m.connMu.Unlock()
		_ = conn.Close()
		return errno.ErrCleanedUp
	}
	m.conn = conn
	m.connMu.Unlock()
	metrics.ServerConnected()

	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = entity.NewSession(conn.Name(), m.provider.Name())
	dispatcher := runtime.NewDispatcher(conn, conn.Name(), m.opts.DispatchConcurrency)
	m.orch = runtime.NewOrchestrator(m.provider, dispatcher, conn.Catalog().Tools(), m.opts.Verbose)

	if m.sessions != nil {
		if err := m.sessions.Create(ctx, m.session); err != nil {
			logger.WarnX(pkg.ModuleName, "[Agents] failed to store session %s: %v", m.session.ID, err)
		}
	}
	logger.InfoX(pkg.ModuleName, "[Agents] session %s started with server %q", m.session.ID, conn.Name())
	return nil
}

func (m *WarpManager) ProcessQuery(ctx context.Context, query string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.orch == nil {
		return fmt.Sprintf("%s%v", initialFailurePrefix, errno.ErrNotConnected)
	}

	qctx, cancel := m.opts.queryContext(ctx)
	defer cancel()

	res := m.orch.ProcessQuery(qctx, m.session, query)
	m.persist(ctx)
	return res.Response
}

func (m *WarpManager) persist(ctx context.Context) {
	if m.sessions == nil || m.session == nil {
		return
	}
	if err := m.sessions.Update(context.WithoutCancel(ctx), m.session); err != nil {
		logger.WarnX(pkg.ModuleName, "[Agents] failed to store session %s: %v", m.session.ID, err)
	}
}

// Cleanup closes the tool server. It does not wait for a running query,
// whose in-flight tool calls resolve with a channel-closed error.
func (m *WarpManager) Cleanup() error {
	m.connMu.Lock()
	if m.cleaned {
		m.connMu.Unlock()
		return nil
	}
	m.cleaned = true
	conn := m.conn
	m.connMu.Unlock()

	if conn == nil {
		return nil
	}
	metrics.ServerDisconnected()
	logger.InfoX(pkg.ModuleName, "[Agents] closing server %q", conn.Name())
	return conn.Close()
}

func (m *WarpManager) Catalog() *mcp.Catalog {
	m.connMu.RLock()
	defer m.connMu.RUnlock()
	if m.conn == nil {
		return nil
	}
	return m.conn.Catalog()
}

func (m *WarpManager) Session() *entity.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.Clone()
}

// MCPConnect adapts mcp.Connect to a ConnectFunc.
func MCPConnect(opts mcp.Options) ConnectFunc {
	return func(ctx context.Context, cfg *mcp.ServerConfig) (Connection, error) {
		c, err := mcp.Connect(ctx, cfg, opts)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
}

package service

import (
	"context"
	"sync"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/repo"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg"
	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	llmService "github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
)

const (
	initialFailurePrefix  = "Error during initial LLM processing: "
	externalFailurePrefix = "Error during LLM processing: "
)

// ExternalManager serves providers that run their own tool servers. It
// never spawns anything and sends each query on its own.
type ExternalManager struct {
	provider llmService.ChatProvider
	sessions repo.SessionRepository
	opts     Options

	mu      sync.Mutex
	session *entity.Session
}

var _ Manager = (*ExternalManager)(nil)

func NewExternalManager(provider llmService.ChatProvider, sessions repo.SessionRepository, opts Options) *ExternalManager {
	return &ExternalManager{provider: provider, sessions: sessions, opts: opts}
}

// Connect only records the server name; the provider owns the server.
func (m *ExternalManager) Connect(ctx context.Context, cfg *mcp.ServerConfig) error {
	name := ""
	if cfg != nil {
		name = cfg.Name
	}
	if m.opts.Verbose {
		logger.InfoX(pkg.ModuleName, "[Agents] skipping connection to %q (managed by %s)", name, m.provider.Name())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.startSession(ctx, name)
	return nil
}

func (m *ExternalManager) startSession(ctx context.Context, server string) {
	m.session = entity.NewSession(server, m.provider.Name())
	if m.sessions != nil {
		if err := m.sessions.Create(ctx, m.session); err != nil {
			logger.WarnX(pkg.ModuleName, "[Agents] failed to store session %s: %v", m.session.ID, err)
		}
	}
}

func (m *ExternalManager) ProcessQuery(ctx context.Context, query string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		m.startSession(ctx, "")
	}

	qctx, cancel := m.opts.queryContext(ctx)
	defer cancel()

	m.session.AppendMessage(entity.NewUserMessage(query))
	reply, err := m.provider.Chat(qctx, []*llmEntity.ChatMessage{llmEntity.UserMessage(query)}, nil)
	if err != nil {
		return externalFailurePrefix + err.Error()
	}
	m.session.AppendMessage(entity.NewAssistantMessage(reply.Text))

	if m.sessions != nil {
		if err := m.sessions.Update(context.WithoutCancel(ctx), m.session); err != nil {
			logger.WarnX(pkg.ModuleName, "[Agents] failed to store session %s: %v", m.session.ID, err)
		}
	}
	return reply.Text
}

func (m *ExternalManager) Cleanup() error { return nil }

func (m *ExternalManager) Catalog() *mcp.Catalog { return nil }

func (m *ExternalManager) Session() *entity.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	return m.session.Clone()
}

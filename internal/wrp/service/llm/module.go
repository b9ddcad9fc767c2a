package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/kiosk404/warp/internal/wrp/service/llm/adapter"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/llm/prompt"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/pkg/logger"
)

// Config holds the configuration for the LLM module.
type Config struct {
	// Provider selects the backend, e.g. "openai", "claude", "claudecode".
	Provider string
	Model    string
	APIKey   string
	BaseURL  string

	// Timeout bounds one chat request. Default: 2m.
	Timeout time.Duration

	// MaxRetries is the number of extra attempts on retryable failures.
	MaxRetries int

	Params *entity.LLMParams

	// SystemPromptFile is watched and prepended to every direct request.
	SystemPromptFile string

	// ProviderConfigPath is handed to agent CLIs that need one (opencode).
	ProviderConfigPath string

	// OutOfTreeRegistry allows registering additional provider plugins
	// beyond the built-in ones.
	OutOfTreeRegistry *provider.Registry

	// Runner executes agent CLIs. Nil uses os/exec.
	Runner adapter.CommandRunner

	CacheSize int
	CacheTTL  time.Duration
}

// CompletedConfig is the validated and completed configuration.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Timeout <= 0 {
		c.Timeout = 2 * time.Minute
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.CacheSize <= 0 {
		c.CacheSize = 8
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = 30 * time.Minute
	}
	return CompletedConfig{c}
}

// Module owns the provider registry, the chat-model cache and the system
// prompt loader.
type Module struct {
	Registry *provider.Registry

	cfg    CompletedConfig
	cache  *expirable.LRU[string, model.BaseChatModel]
	prompt *prompt.FileLoader
}

// New creates the LLM module. No backend is contacted until Provider.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	if c.Provider == "" {
		return nil, fmt.Errorf("llm provider is required")
	}

	registry := provider.NewInTreeRegistry()
	if c.OutOfTreeRegistry != nil {
		if err := registry.Merge(c.OutOfTreeRegistry); err != nil {
			return nil, fmt.Errorf("failed to merge out-of-tree providers: %w", err)
		}
	}
	if !IsAgentCLI(c.Provider) && !registry.Has(c.Provider) {
		_, err := registry.Get(c.Provider)
		return nil, err
	}

	loader, err := prompt.NewFileLoader(c.SystemPromptFile)
	if err != nil {
		return nil, err
	}

	logger.Info("[LLM] module initialized: provider=%s, %d plugins", c.Provider, registry.Len())
	return &Module{
		Registry: registry,
		cfg:      c,
		cache:    expirable.NewLRU[string, model.BaseChatModel](c.CacheSize, nil, c.CacheTTL),
		prompt:   loader,
	}, nil
}

// IsAgentCLI reports whether name selects an externally-managed agent CLI.
func IsAgentCLI(name string) bool {
	switch strings.ToLower(name) {
	case adapter.AgentClaudeCode, adapter.AgentOpenCode:
		return true
	}
	return false
}

// ProviderName returns the configured provider key.
func (m *Module) ProviderName() string {
	return m.cfg.Provider
}

// ManagesTools reports whether the configured provider owns its tool servers.
func (m *Module) ManagesTools() bool {
	return IsAgentCLI(m.cfg.Provider)
}

// Spec returns the completed model spec of the configured direct provider.
func (m *Module) Spec() (*entity.ModelSpec, error) {
	factory, err := m.Registry.Get(m.cfg.Provider)
	if err != nil {
		return nil, err
	}
	plugin := factory()
	spec := &entity.ModelSpec{
		Provider: plugin.Name(),
		Model:    m.cfg.Model,
		APIKey:   m.cfg.APIKey,
		BaseURL:  m.cfg.BaseURL,
		Timeout:  m.cfg.Timeout,
	}
	return helper.CompleteSpec(spec, plugin.DefaultSpec()), nil
}

// ChatModel returns the cached Eino chat model for spec, building it on miss.
func (m *Module) ChatModel(ctx context.Context, spec *entity.ModelSpec) (model.BaseChatModel, error) {
	key := spec.CacheKey()
	if cm, ok := m.cache.Get(key); ok {
		return cm, nil
	}

	factory, err := m.Registry.Get(spec.Provider)
	if err != nil {
		return nil, err
	}
	cm, err := factory().BuildChatModel(ctx, spec, m.cfg.Params)
	if err != nil {
		return nil, fmt.Errorf("failed to build chat model %s: %w", key, err)
	}
	m.cache.Add(key, cm)
	logger.Debug("[LLM] built chat model %s", key)
	return cm, nil
}

// Provider builds the configured ChatProvider. servers are registered with
// agent CLIs; direct providers ignore them.
func (m *Module) Provider(ctx context.Context, servers []adapter.ServerLaunch) (service.ChatProvider, error) {
	var p service.ChatProvider

	if IsAgentCLI(m.cfg.Provider) {
		ap, err := adapter.NewAgentCLIProvider(ctx, adapter.AgentCLIConfig{
			Kind:               m.cfg.Provider,
			Model:              m.cfg.Model,
			ProviderConfigPath: m.cfg.ProviderConfigPath,
			Servers:            servers,
		}, m.cfg.Runner)
		if err != nil {
			return nil, err
		}
		p = ap
	} else {
		spec, err := m.Spec()
		if err != nil {
			return nil, err
		}
		cm, err := m.ChatModel(ctx, spec)
		if err != nil {
			return nil, err
		}
		var opts []adapter.DirectOption
		if m.prompt != nil {
			opts = append(opts, adapter.WithPromptSource(m.prompt))
		}
		p = adapter.NewDirectProvider(cm, spec, opts...)
	}

	if m.cfg.MaxRetries > 0 {
		cfg := adapter.DefaultRetryConfig()
		cfg.MaxAttempts = m.cfg.MaxRetries + 1
		p = adapter.NewRetryingProvider(p, cfg)
	}
	return adapter.NewInstrumentedProvider(p), nil
}

// Close stops the system prompt watcher.
func (m *Module) Close() {
	m.prompt.Close()
	m.cache.Purge()
}

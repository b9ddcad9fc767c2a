package util

import (
	"context"

	"github.com/kiosk404/warp/internal/wrp/options"
	"github.com/kiosk404/warp/internal/wrp/service/agents"
	"github.com/kiosk404/warp/internal/wrp/service/llm"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
	"github.com/spf13/pflag"
)

// Factory builds the configuration and the service modules a command needs.
// Every accessor is memoized, so commands can call them freely.
type Factory interface {
	// Options loads --conf, applies command-line overrides and initializes
	// logging. The result is not validated.
	Options() (*options.Options, error)

	LLM(ctx context.Context) (*llm.Module, error)
	MCP(ctx context.Context) (*mcp.Module, error)
	Agents(ctx context.Context) (*agents.Module, error)

	// Close releases every module built so far and flushes the log.
	Close()
}

type defaultFactory struct {
	configPath func() string
	flags      *pflag.FlagSet

	opts      *options.Options
	llmMod    *llm.Module
	mcpMod    *mcp.Module
	agentsMod *agents.Module
}

// NewFactory returns a Factory reading the config file named by configPath
// with overrides from flags.
func NewFactory(configPath func() string, flags *pflag.FlagSet) Factory {
	return &defaultFactory{configPath: configPath, flags: flags}
}

func (f *defaultFactory) Options() (*options.Options, error) {
	if f.opts != nil {
		return f.opts, nil
	}
	options.LoadDotEnv()
	opts, err := options.Load(f.configPath(), f.flags)
	if err != nil {
		return nil, err
	}
	if err := logger.InitLog(opts.LogOptions.File, opts.LogOptions.Level); err != nil {
		return nil, err
	}
	logger.Debug("[CLI] options: %s", opts)
	f.opts = opts
	return opts, nil
}

func (f *defaultFactory) LLM(ctx context.Context) (*llm.Module, error) {
	if f.llmMod != nil {
		return f.llmMod, nil
	}
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	cfg := &llm.Config{}
	if err := opts.LLMOptions.ApplyTo(cfg); err != nil {
		return nil, err
	}
	m, err := cfg.Complete().New(ctx)
	if err != nil {
		return nil, err
	}
	f.llmMod = m
	return m, nil
}

func (f *defaultFactory) MCP(ctx context.Context) (*mcp.Module, error) {
	if f.mcpMod != nil {
		return f.mcpMod, nil
	}
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	cfg := &mcp.Config{}
	if err := opts.MCPOptions.ApplyTo(cfg); err != nil {
		return nil, err
	}
	m, err := cfg.Complete().New(ctx)
	if err != nil {
		return nil, err
	}
	f.mcpMod = m
	return m, nil
}

func (f *defaultFactory) Agents(ctx context.Context) (*agents.Module, error) {
	if f.agentsMod != nil {
		return f.agentsMod, nil
	}
	opts, err := f.Options()
	if err != nil {
		return nil, err
	}
	mcpMod, err := f.MCP(ctx)
	if err != nil {
		return nil, err
	}
	cfg := &agents.Config{}
	if err := opts.ChatOptions.ApplyTo(cfg); err != nil {
		return nil, err
	}
	if err := opts.StoreOptions.ApplyTo(cfg); err != nil {
		return nil, err
	}
	m, err := cfg.Complete().New(ctx, agents.Dependencies{MCP: mcpMod})
	if err != nil {
		return nil, err
	}
	f.agentsMod = m
	return m, nil
}

func (f *defaultFactory) Close() {
	if f.agentsMod != nil {
		if err := f.agentsMod.Close(); err != nil {
			logger.Warn("[CLI] failed to close store: %v", err)
		}
	}
	if f.llmMod != nil {
		f.llmMod.Close()
	}
	logger.FlushLog()
}

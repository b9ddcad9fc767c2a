package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/kiosk404/warp/pkg/logger"
)

// Config is the configuration of the MCP module.
// Follows K8S-style: Config -> Complete() -> New(ctx).
type Config struct {
	// ConfigFile is an optional mcp.json with explicit server entries.
	ConfigFile string

	// SearchRoots are directories searched for <name>/server.py.
	SearchRoots []string

	// Python runs .py server scripts. Default: python3.
	Python string

	// HandshakeTimeout bounds initialize plus tools/list. Default: 30s.
	HandshakeTimeout time.Duration

	// CallTimeout bounds a single tools/call. Default: 2m.
	CallTimeout time.Duration
}

// CompletedConfig is the completed configuration for MCP.
type CompletedConfig struct {
	*Config
}

// Complete fills defaults.
func (c *Config) Complete() CompletedConfig {
	if c.Python == "" {
		c.Python = "python3"
	}
	if c.HandshakeTimeout <= 0 {
		c.HandshakeTimeout = 30 * time.Second
	}
	if c.CallTimeout <= 0 {
		c.CallTimeout = 2 * time.Minute
	}
	if len(c.SearchRoots) == 0 {
		c.SearchRoots = []string{"."}
	}
	return CompletedConfig{c}
}

// Module resolves server names and opens connections to them.
type Module struct {
	Locator *Locator
	opts    Options
}

// New creates the MCP module. No server is started until Connect.
func (c CompletedConfig) New(_ context.Context) (*Module, error) {
	fileCfg, err := LoadMCPConfig(c.ConfigFile)
	if err != nil {
		return nil, err
	}
	if errs := fileCfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid MCP config %q: %v", c.ConfigFile, errs)
	}

	logger.Info("[MCP] module initialized (%d file entries, search roots %v)", len(fileCfg.MCPServers), c.SearchRoots)
	return &Module{
		Locator: &Locator{
			Config:      fileCfg,
			SearchRoots: c.SearchRoots,
			Python:      c.Python,
		},
		opts: Options{
			HandshakeTimeout: c.HandshakeTimeout,
			CallTimeout:      c.CallTimeout,
		},
	}, nil
}

// Resolve returns the launch configuration for a server name or path.
func (m *Module) Resolve(name string) (*ServerConfig, error) {
	return m.Locator.Resolve(name)
}

// Connect starts and connects to the server described by cfg.
func (m *Module) Connect(ctx context.Context, cfg *ServerConfig) (*Connector, error) {
	return Connect(ctx, cfg, m.opts)
}

// Options returns the connection options used by Connect.
func (m *Module) Options() Options {
	return m.opts
}

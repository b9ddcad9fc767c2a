package mcp

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kiosk404/warp/pkg/utils/json"
)

// ServerConfig is everything needed to launch one stdio tool server.
type ServerConfig struct {
	// Name is the logical server name, e.g. "Adios".
	Name string `json:"name"`

	// Command is the executable to launch.
	Command string `json:"command"`

	// Args are the command-line arguments.
	Args []string `json:"args,omitempty"`

	// Env is added to the caller's environment, as KEY=VALUE pairs.
	Env []string `json:"env,omitempty"`
}

// CommandLine renders the launch command for display.
func (c *ServerConfig) CommandLine() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// Validate reports obvious configuration errors.
func (c *ServerConfig) Validate() error {
	if c == nil {
		return fmt.Errorf("server config is nil")
	}
	if c.Command == "" {
		return fmt.Errorf("server %q: command is required", c.Name)
	}
	for _, kv := range c.Env {
		if !strings.Contains(kv, "=") {
			return fmt.Errorf("server %q: env entry %q is not KEY=VALUE", c.Name, kv)
		}
	}
	return nil
}

// MCPConfig is the optional mcp.json server table, compatible with the
// Claude Desktop format:
//
//	{
//	  "mcpServers": {
//	    "hdf5": {
//	      "command": "uv",
//	      "args": ["--directory", "/opt/mcps/HDF5", "run", "hdf5-mcp"],
//	      "env": {"HDF5_ROOT": "/data"}
//	    }
//	  }
//	}
type MCPConfig struct {
	MCPServers map[string]*FileServerEntry `json:"mcpServers"`
}

// FileServerEntry is one entry of mcp.json.
type FileServerEntry struct {
	Command string            `json:"command"`
	Args    []string          `json:"args,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
}

// NewMCPConfig creates an empty configuration.
func NewMCPConfig() *MCPConfig {
	return &MCPConfig{
		MCPServers: make(map[string]*FileServerEntry),
	}
}

// LoadMCPConfig loads mcp.json from path. A missing file yields an empty
// configuration.
func LoadMCPConfig(path string) (*MCPConfig, error) {
	if path == "" {
		return NewMCPConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewMCPConfig(), nil
		}
		return nil, fmt.Errorf("failed to read MCP config file %q: %w", path, err)
	}

	cfg := &MCPConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse MCP config file %q: %w", path, err)
	}
	if cfg.MCPServers == nil {
		cfg.MCPServers = make(map[string]*FileServerEntry)
	}
	return cfg, nil
}

// Lookup returns the server entry for name, matching case-insensitively.
func (c *MCPConfig) Lookup(name string) (*ServerConfig, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.MCPServers[name]
	if !ok {
		for k, v := range c.MCPServers {
			if strings.EqualFold(k, name) {
				entry, ok = v, true
				break
			}
		}
	}
	if !ok || entry == nil {
		return nil, false
	}

	keys := make([]string, 0, len(entry.Env))
	for k := range entry.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	env := make([]string, 0, len(keys))
	for _, k := range keys {
		env = append(env, k+"="+entry.Env[k])
	}

	return &ServerConfig{
		Name:    name,
		Command: entry.Command,
		Args:    append([]string(nil), entry.Args...),
		Env:     env,
	}, true
}

// Validate checks every entry for a command.
func (c *MCPConfig) Validate() []error {
	var errs []error
	for name, srv := range c.MCPServers {
		if srv == nil || srv.Command == "" {
			errs = append(errs, fmt.Errorf("mcpServers.%s: command is required", name))
		}
	}
	return errs
}

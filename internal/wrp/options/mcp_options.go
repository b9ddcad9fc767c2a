package options

import (
	"errors"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/spf13/pflag"
)

// MCPOptions lists the tool servers of a run and how to find and start them.
type MCPOptions struct {
	// Servers are visited in order, one session each.
	Servers []string `json:"servers" mapstructure:"servers"`

	// SearchRoots are searched for <name>/server.py. Default: ".".
	SearchRoots []string `json:"search-roots" mapstructure:"search-roots"`

	// ConfigFile is an optional mcp.json with explicit launch commands.
	ConfigFile string `json:"config-file" mapstructure:"config-file"`

	Python           string        `json:"python" mapstructure:"python"`
	HandshakeTimeout time.Duration `json:"handshake-timeout" mapstructure:"handshake-timeout"`
	CallTimeout      time.Duration `json:"call-timeout" mapstructure:"call-timeout"`
}

func NewMCPOptions() *MCPOptions {
	return &MCPOptions{
		SearchRoots:      []string{"."},
		Python:           "python3",
		HandshakeTimeout: 30 * time.Second,
		CallTimeout:      2 * time.Minute,
	}
}

func (o *MCPOptions) Validate() []error {
	var errs []error
	if len(o.Servers) == 0 {
		errs = append(errs, errors.New("no MCP servers specified in the configuration file"))
	}
	for _, s := range o.Servers {
		if s == "" {
			errs = append(errs, errors.New("mcp.servers contains an empty name"))
			break
		}
	}
	return errs
}

func (o *MCPOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringSliceVar(&o.Servers, "mcp.servers", o.Servers, "Tool servers to connect to, by name, path or mcp.json entry.")
	fs.StringSliceVar(&o.SearchRoots, "mcp.search-roots", o.SearchRoots, "Directories searched for <name>/server.py.")
	fs.StringVar(&o.ConfigFile, "mcp.config-file", o.ConfigFile, "Path to an mcp.json with explicit server commands.")
	fs.StringVar(&o.Python, "mcp.python", o.Python, "Interpreter for server.py scripts.")
	fs.DurationVar(&o.HandshakeTimeout, "mcp.handshake-timeout", o.HandshakeTimeout, "Timeout of initialize plus tools/list.")
	fs.DurationVar(&o.CallTimeout, "mcp.call-timeout", o.CallTimeout, "Timeout of a single tool call.")
}

// ApplyTo copies the options into the MCP module config.
func (o *MCPOptions) ApplyTo(c *mcp.Config) error {
	c.ConfigFile = o.ConfigFile
	c.SearchRoots = o.SearchRoots
	c.Python = o.Python
	c.HandshakeTimeout = o.HandshakeTimeout
	c.CallTimeout = o.CallTimeout
	return nil
}

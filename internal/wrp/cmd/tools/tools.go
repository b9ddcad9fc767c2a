package tools

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/kiosk404/warp/internal/wrp/cmd/util"
	"github.com/kiosk404/warp/internal/wrp/service/llm/adapter"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/cli/genericclioptions"
	"github.com/mitchellh/go-wordwrap"
	"github.com/spf13/cobra"
)

const descriptionWidth = 60

var toolsExample = util.Examples(`
		# List the tools of every configured server
		wrp tools --conf wrp.yaml

		# List the tools of one server
		wrp tools --conf wrp.yaml hdf5`)

type ToolsOptions struct {
	factory util.Factory
	genericclioptions.IOStreams
}

func NewCmdTools(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := &ToolsOptions{factory: f, IOStreams: ioStreams}

	cmd := &cobra.Command{
		Use:                   "tools [server...]",
		DisableFlagsInUseLine: true,
		Short:                 "List the tools offered by the configured servers",
		Long: util.LongDesc(`
		Connect to each tool server, print its tool catalog and disconnect.

		For agent CLI providers the agent's own MCP tool listing is printed.`),
		Example: toolsExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}
	return cmd
}

func (o *ToolsOptions) Run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	defer o.factory.Close()

	opts, err := o.factory.Options()
	if err != nil {
		return err
	}
	names := args
	if len(names) == 0 {
		names = opts.MCPOptions.Servers
	}
	if len(names) == 0 {
		return fmt.Errorf("no MCP servers specified in the configuration file")
	}

	mcpMod, err := o.factory.MCP(ctx)
	if err != nil {
		return err
	}

	if opts.LLMOptions.Provider != "" {
		llmMod, err := o.factory.LLM(ctx)
		if err != nil {
			return err
		}
		if llmMod.ManagesTools() {
			var servers []adapter.ServerLaunch
			for _, name := range names {
				if cfg, err := mcpMod.Resolve(name); err == nil {
					servers = append(servers, adapter.ServerLaunch{Name: cfg.Name, Command: cfg.Command, Args: cfg.Args})
				}
			}
			p, err := llmMod.Provider(ctx, servers)
			if err != nil {
				return err
			}
			listing, _ := adapter.ToolListing(p)
			fmt.Fprintln(o.Out, listing)
			return nil
		}
	}

	for _, name := range names {
		if err := o.printServer(ctx, mcpMod, name); err != nil {
			fmt.Fprintf(o.ErrOut, "Error: %v\n", err)
		}
	}
	return nil
}

func (o *ToolsOptions) printServer(ctx context.Context, m *mcp.Module, name string) error {
	cfg, err := m.Resolve(name)
	if err != nil {
		return err
	}
	conn, err := m.Connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Fprintf(o.Out, "\n=== %s (%s) ===\n", name, cfg.CommandLine())
	PrintCatalog(o.Out, conn.Catalog())
	return nil
}

// PrintCatalog writes the catalog as a table. Required parameters carry a
// trailing "*".
func PrintCatalog(w io.Writer, c *mcp.Catalog) {
	table := uitable.New()
	table.Wrap = true
	table.MaxColWidth = descriptionWidth + 20
	table.AddRow("NAME", "DESCRIPTION", "PARAMETERS")
	for _, def := range c.Tools() {
		table.AddRow(def.Name, wordwrap.WrapString(def.Description, descriptionWidth), Parameters(def))
	}
	fmt.Fprintln(w, table)
}

// Parameters lists the schema properties of def in name order.
func Parameters(def *entity.ToolDefinition) string {
	props, _ := def.InputSchema["properties"].(map[string]any)
	if len(props) == 0 {
		return "-"
	}
	required := map[string]bool{}
	if list, ok := def.InputSchema["required"].([]any); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for i, name := range names {
		if required[name] {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}

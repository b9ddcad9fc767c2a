package chat

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kiosk404/warp/internal/pkg/metrics"
	"github.com/kiosk404/warp/internal/wrp/cmd/util"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service"
	"github.com/kiosk404/warp/pkg/cli/genericclioptions"
	"github.com/kiosk404/warp/pkg/logger"
	"github.com/spf13/cobra"
)

var chatExample = util.Examples(`
		# Interactive chat with every server listed in the config
		wrp chat --conf wrp.yaml

		# Single query, then exit
		wrp chat --conf wrp.yaml "list the hdf5 files under /data"

		# Show tool calls and their results
		wrp chat --conf wrp.yaml -v

		# Override the model from the command line
		wrp chat --conf wrp.yaml --llm.model=gpt-4o-mini`)

type ChatOptions struct {
	factory util.Factory
	genericclioptions.IOStreams
}

func NewChatOptions(f util.Factory, ioStreams genericclioptions.IOStreams) *ChatOptions {
	return &ChatOptions{factory: f, IOStreams: ioStreams}
}

func NewCmdChat(f util.Factory, ioStreams genericclioptions.IOStreams) *cobra.Command {
	o := NewChatOptions(f, ioStreams)

	cmd := &cobra.Command{
		Use:                   "chat [query]",
		DisableFlagsInUseLine: true,
		Short:                 "Chat with a model that can call MCP tools",
		Long: util.LongDesc(`
		Start a session with each tool server listed in the configuration, one after
		another, and answer queries with the configured backend.

		Without arguments an interactive loop reads queries until 'quit' or 'exit'.
		With a query argument it is answered once per server.`),
		Example: chatExample,
		Run: func(cmd *cobra.Command, args []string) {
			util.CheckErr(o.Run(cmd.Context(), args))
		},
	}
	return cmd
}

func (o *ChatOptions) Run(ctx context.Context, args []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer o.factory.Close()

	opts, err := o.factory.Options()
	if err != nil {
		return err
	}
	if err := opts.ValidationError(); err != nil {
		return err
	}
	if addr := opts.MetricsOptions.Addr; addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				logger.Warn("[Metrics] %v", err)
			}
		}()
	}
	if opts.ChatOptions.Verbose {
		fmt.Fprintln(o.Out, "\nVerbose mode is enabled")
	}

	llmMod, err := o.factory.LLM(ctx)
	if err != nil {
		return fmt.Errorf("Error initializing LLM provider: %w", err)
	}
	mcpMod, err := o.factory.MCP(ctx)
	if err != nil {
		return err
	}
	agentsMod, err := o.factory.Agents(ctx)
	if err != nil {
		return err
	}

	targets := resolveTargets(mcpMod.Resolve, opts.MCPOptions.Servers)
	provider, err := llmMod.Provider(ctx, launches(targets))
	if err != nil {
		return fmt.Errorf("Error initializing LLM provider: %w", err)
	}

	runner := &sessionRunner{
		newManager: func() (service.Manager, error) {
			return agentsMod.NewManager(provider, llmMod.ManagesTools())
		},
		provider: provider,
		verbose:  opts.ChatOptions.Verbose,
		query:    strings.TrimSpace(strings.Join(args, " ")),
		out:      o.Out,
		errOut:   o.ErrOut,
		render:   NewRenderer(o.Out).Render,
	}
	if runner.query == "" {
		runner.lines = NewLineReader(o.In)
		defer runner.lines.Stop()
	}

	for _, t := range targets {
		runner.run(ctx, t)
		if ctx.Err() != nil {
			fmt.Fprintln(o.Out, "\nClient interrupted. Exiting.")
			break
		}
	}
	return nil
}

package chat

import (
	"context"
	"fmt"
	"io"

	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/llm/adapter"
	llmService "github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
)

// serverTarget is a configured server name and its resolved launch config.
type serverTarget struct {
	name string
	cfg  *mcp.ServerConfig
	err  error
}

func resolveTargets(resolve func(string) (*mcp.ServerConfig, error), names []string) []serverTarget {
	targets := make([]serverTarget, 0, len(names))
	for _, name := range names {
		cfg, err := resolve(name)
		targets = append(targets, serverTarget{name: name, cfg: cfg, err: err})
	}
	return targets
}

func launches(targets []serverTarget) []adapter.ServerLaunch {
	var out []adapter.ServerLaunch
	for _, t := range targets {
		if t.err != nil {
			continue
		}
		out = append(out, adapter.ServerLaunch{Name: t.cfg.Name, Command: t.cfg.Command, Args: t.cfg.Args})
	}
	return out
}

// sessionRunner runs one session per server, in order.
type sessionRunner struct {
	newManager func() (service.Manager, error)
	provider   llmService.ChatProvider
	verbose    bool

	// query, when set, is answered once instead of starting the loop.
	query string
	lines *LineReader

	out    io.Writer
	errOut io.Writer
	render func(string) string
}

func (r *sessionRunner) run(ctx context.Context, t serverTarget) {
	fmt.Fprintf(r.out, "\n=== Connecting to %s ===\n", t.name)
	defer fmt.Fprintf(r.out, "Session with %s ended.\n", t.name)

	if t.err != nil {
		fmt.Fprintf(r.errOut, "Error: %v\n", t.err)
		return
	}

	m, err := r.newManager()
	if err != nil {
		fmt.Fprintf(r.errOut, "An unexpected error occurred with server %s: %v\n", t.name, err)
		return
	}
	defer func() {
		if err := m.Cleanup(); err != nil {
			logger.Warn("[CLI] cleanup of %s failed: %v", t.name, err)
		}
	}()

	if _, external := m.(*service.ExternalManager); r.verbose && !external {
		fmt.Fprintf(r.out, "Starting server with stdio: %s\n", t.cfg.CommandLine())
	}
	if err := m.Connect(ctx, t.cfg); err != nil {
		fmt.Fprintf(r.errOut, "An unexpected error occurred with server %s: %v\n", t.name, err)
		return
	}
	r.printTools(m)

	if r.query != "" {
		fmt.Fprintf(r.out, "\n%s\n", r.render(m.ProcessQuery(ctx, r.query)))
		return
	}
	RunLoop(ctx, m, r.lines, r.out, r.render)
}

func (r *sessionRunner) printTools(m service.Manager) {
	if catalog := m.Catalog(); catalog != nil {
		fmt.Fprint(r.out, "\nConnected. Tools available:\n\n")
		for _, def := range catalog.Tools() {
			fmt.Fprintf(r.out, " * %s: %s\n", def.Name, def.Description)
		}
		return
	}
	if listing, ok := adapter.ToolListing(r.provider); ok {
		fmt.Fprint(r.out, "\nConnected. Tools available:\n\n")
		fmt.Fprintln(r.out, listing)
	}
}

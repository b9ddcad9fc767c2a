package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/pkg/logger"
)

const (
	AgentClaudeCode = "claudecode"
	AgentOpenCode   = "opencode"

	defaultAgentTimeout = 60 * time.Second

	toolListingPrompt = "List all tools available to you, in an ESCAPED CODE BLOCK with the format\n" +
		"# tool header 1\ntool1 - desc1\n...\n# tool header 2\ntoolN - desc2\n..."
)

// CommandResult is the captured outcome of one agent CLI run.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner runs an external command. env is added to the process
// environment. A non-zero exit is reported in CommandResult, not as an error.
type CommandRunner interface {
	Run(ctx context.Context, env []string, name string, args ...string) (*CommandResult, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, env []string, name string, args ...string) (*CommandResult, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := &CommandResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return res, nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && ctx.Err() == nil {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}
	return res, err
}

// ServerLaunch is a tool server the agent should register.
type ServerLaunch struct {
	Name    string
	Command string
	Args    []string
}

// AgentCLIConfig configures an AgentCLIProvider.
type AgentCLIConfig struct {
	// Kind is AgentClaudeCode or AgentOpenCode.
	Kind string

	// Binary overrides the executable, "claude" or "opencode" by default.
	Binary string

	// Model is passed to opencode when listing tools.
	Model string

	// ProviderConfigPath is exported as OPENCODE_CONFIG. Required for opencode.
	ProviderConfigPath string

	Servers []ServerLaunch

	// Timeout bounds each agent run. Defaults to one minute.
	Timeout time.Duration
}

// AgentCLIProvider drives an agent CLI that manages its own tool servers.
// Each turn sends only the newest user message and continues the agent's
// previous session; the agent's stdout is the reply.
type AgentCLIProvider struct {
	cfg     AgentCLIConfig
	runner  CommandRunner
	env     []string
	listing string
}

// NewAgentCLIProvider validates cfg, registers the servers with the agent
// (claudecode only, best effort) and captures the agent's MCP tool listing.
func NewAgentCLIProvider(ctx context.Context, cfg AgentCLIConfig, runner CommandRunner) (*AgentCLIProvider, error) {
	cfg.Kind = strings.ToLower(cfg.Kind)
	switch cfg.Kind {
	case AgentClaudeCode:
		if cfg.Binary == "" {
			cfg.Binary = "claude"
		}
	case AgentOpenCode:
		if cfg.ProviderConfigPath == "" {
			return nil, fmt.Errorf("opencode requires llm.provider-config-path to point to an opencode config file")
		}
		if cfg.Binary == "" {
			cfg.Binary = "opencode"
		}
	default:
		return nil, fmt.Errorf("unknown agent CLI %q", cfg.Kind)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultAgentTimeout
	}
	if runner == nil {
		runner = ExecRunner{}
	}

	p := &AgentCLIProvider{cfg: cfg, runner: runner}
	if cfg.Kind == AgentOpenCode {
		p.env = []string{"OPENCODE_CONFIG=" + cfg.ProviderConfigPath}
	}

	p.registerServers(ctx)
	p.listing = p.listTools(ctx)
	return p, nil
}

func (p *AgentCLIProvider) registerServers(ctx context.Context) {
	if p.cfg.Kind != AgentClaudeCode {
		return
	}
	for _, srv := range p.cfg.Servers {
		args := append([]string{"mcp", "add", srv.Name, "--", srv.Command}, srv.Args...)
		res, err := p.run(ctx, args...)
		switch {
		case err != nil:
			logger.Warn("[AgentCLI] failed to register server %q: %v", srv.Name, err)
		case res.ExitCode != 0:
			logger.Warn("[AgentCLI] failed to register server %q: %s", srv.Name, strings.TrimSpace(res.Stderr))
		default:
			logger.Info("[AgentCLI] registered server %q with %s", srv.Name, p.cfg.Binary)
		}
	}
}

func (p *AgentCLIProvider) listTools(ctx context.Context) string {
	var args []string
	if p.cfg.Kind == AgentClaudeCode {
		args = []string{"-p", toolListingPrompt}
	} else {
		args = []string{"run", toolListingPrompt}
		if p.cfg.Model != "" {
			args = append(args, "--model="+p.cfg.Model)
		}
	}

	res, err := p.run(ctx, args...)
	if err != nil {
		logger.Warn("[AgentCLI] failed to list tools: %v", err)
		return ""
	}
	names := make([]string, 0, len(p.cfg.Servers))
	for _, srv := range p.cfg.Servers {
		names = append(names, srv.Name)
	}
	return ExtractMCPTools(res.Stdout, names)
}

func (p *AgentCLIProvider) run(ctx context.Context, args ...string) (*CommandResult, error) {
	rctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()
	res, err := p.runner.Run(rctx, p.env, p.cfg.Binary, args...)
	if err != nil && errors.Is(rctx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		err = fmt.Errorf("%s timed out after %s: %w", p.cfg.Binary, p.cfg.Timeout, context.DeadlineExceeded)
	}
	return res, err
}

func (p *AgentCLIProvider) Name() string {
	return p.cfg.Kind
}

// ManagesTools always reports true: the agent owns its tool servers.
func (p *AgentCLIProvider) ManagesTools() bool {
	return true
}

// ToolListing returns the filtered tool listing captured at construction.
func (p *AgentCLIProvider) ToolListing() string {
	return p.listing
}

// Chat ignores tools. It sends the newest non-system message with the
// continuation flag and returns the agent's stdout verbatim.
func (p *AgentCLIProvider) Chat(ctx context.Context, history []*entity.ChatMessage, _ []*entity.ToolDefinition) (*entity.Reply, error) {
	msg, ok := lastUserContent(history)
	if !ok {
		return nil, entity.NewProviderCallError(entity.FailureReason_Format, p.cfg.Kind, p.cfg.Model, "no user message to send")
	}

	var args []string
	if p.cfg.Kind == AgentClaudeCode {
		args = []string{"-p", msg, "-c"}
	} else {
		args = []string{"run", msg, "-c"}
	}

	start := time.Now()
	res, err := p.run(ctx, args...)
	if err != nil {
		return nil, entity.WrapProviderError(err, p.cfg.Kind, p.cfg.Model)
	}
	if res.ExitCode != 0 && strings.TrimSpace(res.Stdout) == "" {
		text := strings.TrimSpace(res.Stderr)
		if text == "" {
			text = fmt.Sprintf("%s exited with status %d", p.cfg.Binary, res.ExitCode)
		}
		return nil, entity.WrapProviderError(errors.New(text), p.cfg.Kind, p.cfg.Model)
	}

	logger.Debug("[AgentCLI] %s replied in %s", p.cfg.Binary, time.Since(start))
	return &entity.Reply{Text: res.Stdout}, nil
}

func lastUserContent(history []*entity.ChatMessage) (string, bool) {
	for i := len(history) - 1; i >= 0; i-- {
		if m := history[i]; m != nil && m.Role != entity.RoleSystem {
			return m.Content, true
		}
	}
	return "", false
}

package adapter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

type runCall struct {
	env  []string
	name string
	args []string
}

type fakeRunner struct {
	calls  []runCall
	handle func(args []string) (*CommandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, env []string, name string, args ...string) (*CommandResult, error) {
	f.calls = append(f.calls, runCall{env: env, name: name, args: args})
	if f.handle == nil {
		return &CommandResult{}, nil
	}
	return f.handle(args)
}

const agentListing = "```\n# Built-in\nbash - run\n# hdf5 tools\nlist_hdf5 - list files\n```"

func TestClaudeCodeRegistersServersAndListsTools(t *testing.T) {
	runner := &fakeRunner{handle: func(args []string) (*CommandResult, error) {
		switch {
		case args[0] == "mcp" && args[2] == "broken":
			return &CommandResult{Stderr: "already exists", ExitCode: 1}, nil
		case args[0] == "-p":
			return &CommandResult{Stdout: agentListing}, nil
		}
		return &CommandResult{}, nil
	}}

	p, err := NewAgentCLIProvider(context.Background(), AgentCLIConfig{
		Kind: "ClaudeCode",
		Servers: []ServerLaunch{
			{Name: "broken", Command: "python3", Args: []string{"a/server.py"}},
			{Name: "hdf5", Command: "python3", Args: []string{"b/server.py"}},
		},
	}, runner)
	if err != nil {
		t.Fatalf("NewAgentCLIProvider: %v", err)
	}

	if len(runner.calls) != 3 {
		t.Fatalf("calls = %d, want 2 registrations and 1 listing", len(runner.calls))
	}
	want := "claude mcp add hdf5 -- python3 b/server.py"
	if got := runner.calls[1].name + " " + strings.Join(runner.calls[1].args, " "); got != want {
		t.Errorf("second registration = %q, want %q", got, want)
	}
	if p.ToolListing() != "# hdf5 tools\nlist_hdf5 - list files" {
		t.Errorf("listing = %q", p.ToolListing())
	}
	if !p.ManagesTools() || p.Name() != AgentClaudeCode {
		t.Errorf("name = %q", p.Name())
	}
}

func TestAgentCLIChatSendsLatestMessage(t *testing.T) {
	runner := &fakeRunner{handle: func(args []string) (*CommandResult, error) {
		return &CommandResult{Stdout: "agent says hi\n"}, nil
	}}
	p, err := NewAgentCLIProvider(context.Background(), AgentCLIConfig{
		Kind:               AgentOpenCode,
		ProviderConfigPath: "/etc/opencode.json",
	}, runner)
	if err != nil {
		t.Fatalf("NewAgentCLIProvider: %v", err)
	}

	history := []*entity.ChatMessage{
		{Role: entity.RoleSystem, Content: "sys"},
		entity.UserMessage("first"),
		entity.AssistantMessage("answer"),
		entity.UserMessage("second"),
	}
	reply, err := p.Chat(context.Background(), history, []*entity.ToolDefinition{{Name: "ignored"}})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply.Text != "agent says hi\n" || reply.ToolCalls != nil {
		t.Errorf("reply = %+v", reply)
	}

	last := runner.calls[len(runner.calls)-1]
	if last.name != "opencode" || strings.Join(last.args, "|") != "run|second|-c" {
		t.Errorf("call = %+v", last)
	}
	if len(last.env) != 1 || last.env[0] != "OPENCODE_CONFIG=/etc/opencode.json" {
		t.Errorf("env = %v", last.env)
	}
}

func TestAgentCLIChatTimeout(t *testing.T) {
	runner := &fakeRunner{}
	p, err := NewAgentCLIProvider(context.Background(), AgentCLIConfig{Kind: AgentClaudeCode, Timeout: 20 * time.Millisecond}, runner)
	if err != nil {
		t.Fatalf("NewAgentCLIProvider: %v", err)
	}
	runner.handle = func([]string) (*CommandResult, error) {
		time.Sleep(50 * time.Millisecond)
		return &CommandResult{}, context.DeadlineExceeded
	}

	_, err = p.Chat(context.Background(), []*entity.ChatMessage{entity.UserMessage("q")}, nil)
	var pe *entity.ProviderCallError
	if !errors.As(err, &pe) || pe.Reason != entity.FailureReason_Timeout {
		t.Fatalf("err = %v, want timeout ProviderCallError", err)
	}
}

func TestAgentCLIChatFailureUsesStderr(t *testing.T) {
	runner := &fakeRunner{}
	p, _ := NewAgentCLIProvider(context.Background(), AgentCLIConfig{Kind: AgentClaudeCode}, runner)
	runner.handle = func([]string) (*CommandResult, error) {
		return &CommandResult{Stderr: "Invalid API key\n", ExitCode: 1}, nil
	}

	_, err := p.Chat(context.Background(), []*entity.ChatMessage{entity.UserMessage("q")}, nil)
	var pe *entity.ProviderCallError
	if !errors.As(err, &pe) || pe.Reason != entity.FailureReason_Auth || err.Error() != "Invalid API key" {
		t.Fatalf("err = %v", err)
	}
}

func TestNewAgentCLIProviderValidation(t *testing.T) {
	if _, err := NewAgentCLIProvider(context.Background(), AgentCLIConfig{Kind: AgentOpenCode}, &fakeRunner{}); err == nil {
		t.Error("opencode without provider config should fail")
	}
	if _, err := NewAgentCLIProvider(context.Background(), AgentCLIConfig{Kind: "cursor"}, &fakeRunner{}); err == nil {
		t.Error("unknown kind should fail")
	}
}

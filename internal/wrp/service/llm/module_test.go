package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/warp/internal/wrp/service/llm/adapter"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

type echoModel struct{}

func (echoModel) Generate(_ context.Context, in []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	return schema.AssistantMessage("echo: "+in[len(in)-1].Content, nil), nil
}

func (echoModel) Stream(context.Context, []*schema.Message, ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

type echoPlugin struct {
	helper.BasePlugin
	builds *int
}

func (p *echoPlugin) BuildChatModel(context.Context, *entity.ModelSpec, *entity.LLMParams) (einoModel.BaseChatModel, error) {
	*p.builds++
	return echoModel{}, nil
}

func newEchoRegistry(builds *int) *provider.Registry {
	r := provider.NewRegistry()
	r.MustRegister("echo", func() spi.ChatModelPlugin {
		return &echoPlugin{
			BasePlugin: helper.BasePlugin{PluginName: "echo", Defaults: entity.ModelSpec{Model: "echo-1"}},
			builds:     builds,
		}
	})
	return r
}

func TestModuleDirectProvider(t *testing.T) {
	builds := 0
	cfg := &Config{Provider: "ECHO", OutOfTreeRegistry: newEchoRegistry(&builds), MaxRetries: 1}
	m, err := cfg.Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	spec, err := m.Spec()
	if err != nil || spec.Model != "echo-1" || spec.Provider != "echo" {
		t.Fatalf("Spec() = %+v, %v", spec, err)
	}

	for i := 0; i < 2; i++ {
		p, err := m.Provider(context.Background(), nil)
		if err != nil {
			t.Fatalf("Provider: %v", err)
		}
		reply, err := p.Chat(context.Background(), []*entity.ChatMessage{entity.UserMessage("hi")}, nil)
		if err != nil || reply.Text != "echo: hi" {
			t.Fatalf("Chat = %+v, %v", reply, err)
		}
		if p.Name() != "echo" {
			t.Errorf("Name() = %q", p.Name())
		}
	}
	if builds != 1 {
		t.Errorf("chat model built %d times, want 1 (cached)", builds)
	}
	if m.ManagesTools() {
		t.Error("direct provider should not manage tools")
	}
}

func TestModuleUnknownProvider(t *testing.T) {
	_, err := (&Config{Provider: "nope"}).Complete().New(context.Background())
	if err == nil || !strings.Contains(err.Error(), "supported") {
		t.Fatalf("err = %v, want the supported provider list", err)
	}
	if _, err := (&Config{}).Complete().New(context.Background()); err == nil {
		t.Fatal("empty provider should fail")
	}
}

type listingRunner struct{}

func (listingRunner) Run(_ context.Context, _ []string, _ string, args ...string) (*adapter.CommandResult, error) {
	if args[0] == "-p" && len(args) == 2 {
		return &adapter.CommandResult{Stdout: "# hdf5 mcp\nlist_hdf5 - list"}, nil
	}
	return &adapter.CommandResult{Stdout: "ok"}, nil
}

func TestModuleAgentCLIProvider(t *testing.T) {
	m, err := (&Config{Provider: "claudecode", Runner: listingRunner{}}).Complete().New(context.Background())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	p, err := m.Provider(context.Background(), []adapter.ServerLaunch{{Name: "hdf5", Command: "python3"}})
	if err != nil {
		t.Fatalf("Provider: %v", err)
	}
	mp, ok := p.(service.ManagedProvider)
	if !ok || !mp.ManagesTools() || !m.ManagesTools() {
		t.Fatal("agent CLI provider should manage its tools")
	}
	if listing, ok := adapter.ToolListing(p); !ok || listing != "# hdf5 mcp\nlist_hdf5 - list" {
		t.Errorf("listing = %q, %v", listing, ok)
	}
}

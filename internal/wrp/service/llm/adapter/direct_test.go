package adapter

import (
	"context"
	"errors"
	"testing"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

type fakeRecord struct {
	msgs  []*schema.Message
	tools []*schema.ToolInfo
	binds int
}

type fakeChatModel struct {
	rec   *fakeRecord
	tools []*schema.ToolInfo
	reply *schema.Message
	err   error
}

func newFakeChatModel(reply *schema.Message, err error) *fakeChatModel {
	return &fakeChatModel{rec: &fakeRecord{}, reply: reply, err: err}
}

func (f *fakeChatModel) Generate(_ context.Context, in []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	f.rec.msgs = in
	f.rec.tools = f.tools
	return f.reply, f.err
}

func (f *fakeChatModel) Stream(context.Context, []*schema.Message, ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func (f *fakeChatModel) WithTools(tools []*schema.ToolInfo) (einoModel.ToolCallingChatModel, error) {
	f.rec.binds++
	cp := *f
	cp.tools = tools
	return &cp, nil
}

// plainChatModel cannot bind tools.
type plainChatModel struct{ reply *schema.Message }

func (p *plainChatModel) Generate(context.Context, []*schema.Message, ...einoModel.Option) (*schema.Message, error) {
	return p.reply, nil
}

func (p *plainChatModel) Stream(context.Context, []*schema.Message, ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

var testSpec = &entity.ModelSpec{Provider: "openai", Model: "gpt-4o"}

func hdf5Tool() *entity.ToolDefinition {
	return &entity.ToolDefinition{
		Name:        "list_hdf5",
		Description: "List HDF5 files",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"directory": map[string]any{"type": "string"},
			},
			"required": []any{"directory"},
		},
	}
}

func TestDirectProviderToolCalls(t *testing.T) {
	cm := newFakeChatModel(&schema.Message{
		Role:    schema.Assistant,
		Content: "Let me look.",
		ToolCalls: []schema.ToolCall{
			{ID: "c1", Function: schema.FunctionCall{Name: "list_hdf5", Arguments: `{"directory":"data"}`}},
			{ID: "c2", Function: schema.FunctionCall{Name: "list_hdf5", Arguments: ``}},
			{ID: "c3", Function: schema.FunctionCall{Name: "list_hdf5", Arguments: `not json`}},
		},
		ResponseMeta: &schema.ResponseMeta{Usage: &schema.TokenUsage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15}},
	}, nil)

	p := NewDirectProvider(cm, testSpec, WithPromptSource(StaticPrompt("be brief")))
	reply, err := p.Chat(context.Background(),
		[]*entity.ChatMessage{entity.UserMessage("list files")},
		[]*entity.ToolDefinition{hdf5Tool()})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}

	if cm.rec.binds != 1 || len(cm.rec.tools) != 1 || cm.rec.tools[0].Name != "list_hdf5" {
		t.Fatalf("bound tools = %+v (binds %d)", cm.rec.tools, cm.rec.binds)
	}
	if cm.rec.tools[0].ParamsOneOf == nil {
		t.Errorf("tool params not converted")
	}
	if len(cm.rec.msgs) != 2 || cm.rec.msgs[0].Role != schema.System || cm.rec.msgs[1].Content != "list files" {
		t.Errorf("messages = %+v", cm.rec.msgs)
	}

	if reply.Text != "Let me look." || len(reply.ToolCalls) != 3 {
		t.Fatalf("reply = %+v", reply)
	}
	if got := reply.ToolCalls[0].Args["directory"]; got != "data" {
		t.Errorf("args[directory] = %v", got)
	}
	if reply.ToolCalls[1].ArgsErr != nil || len(reply.ToolCalls[1].Args) != 0 {
		t.Errorf("empty arguments should decode to an empty object: %+v", reply.ToolCalls[1])
	}
	if reply.ToolCalls[2].ArgsErr == nil {
		t.Errorf("malformed arguments should set ArgsErr")
	}
	if reply.Usage == nil || reply.Usage.TotalTokens != 15 {
		t.Errorf("usage = %+v", reply.Usage)
	}
}

func TestDirectProviderWithoutToolsDoesNotBind(t *testing.T) {
	cm := newFakeChatModel(&schema.Message{Role: schema.Assistant, Content: "Hello!"}, nil)
	p := NewDirectProvider(cm, testSpec)

	reply, err := p.Chat(context.Background(), []*entity.ChatMessage{entity.UserMessage("hi")}, nil)
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if cm.rec.binds != 0 || cm.rec.tools != nil {
		t.Errorf("tools were bound: %+v", cm.rec.tools)
	}
	if reply.Text != "Hello!" || reply.HasToolCalls() {
		t.Errorf("reply = %+v", reply)
	}
	if len(cm.rec.msgs) != 1 {
		t.Errorf("no system prompt expected, got %d messages", len(cm.rec.msgs))
	}
}

func TestDirectProviderError(t *testing.T) {
	cm := newFakeChatModel(nil, errors.New("429 Too Many Requests: rate limit reached"))
	p := NewDirectProvider(cm, testSpec)

	_, err := p.Chat(context.Background(), []*entity.ChatMessage{entity.UserMessage("hi")}, nil)
	var pe *entity.ProviderCallError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %T %v, want *ProviderCallError", err, err)
	}
	if pe.Reason != entity.FailureReason_RateLimit || pe.Provider != "openai" || pe.Model != "gpt-4o" {
		t.Errorf("pe = %s", pe.Detail())
	}
	if err.Error() != "429 Too Many Requests: rate limit reached" {
		t.Errorf("message = %q, want the backend text", err.Error())
	}
}

func TestDirectProviderNotToolCapable(t *testing.T) {
	p := NewDirectProvider(&plainChatModel{reply: &schema.Message{Content: "ok"}}, testSpec)

	if _, err := p.Chat(context.Background(), nil, nil); err != nil {
		t.Fatalf("Chat without tools: %v", err)
	}
	_, err := p.Chat(context.Background(), nil, []*entity.ToolDefinition{hdf5Tool()})
	if !errors.Is(err, ErrModelNotToolCapable) {
		t.Fatalf("err = %v, want ErrModelNotToolCapable", err)
	}
}

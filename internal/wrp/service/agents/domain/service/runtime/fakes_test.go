package runtime

import (
	"context"
	"errors"
	"sync"

	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
)

type toolFunc func(args map[string]any) (*mcp.ToolResponse, error)

// fakeCaller serves tools from a table and records call order.
type fakeCaller struct {
	mu    sync.Mutex
	tools map[string]toolFunc
	order []string
}

func (f *fakeCaller) CallTool(_ context.Context, name string, args map[string]any) (*mcp.ToolResponse, error) {
	f.mu.Lock()
	f.order = append(f.order, name)
	fn, ok := f.tools[name]
	f.mu.Unlock()
	if !ok {
		return nil, &mcp.ToolInvocationError{Tool: name, Cause: mcp.ErrUnknownTool}
	}
	return fn(args)
}

func textResponse(text string) toolFunc {
	return func(map[string]any) (*mcp.ToolResponse, error) {
		return &mcp.ToolResponse{Content: []mcp.ContentBlock{{Type: "text", Text: text}}}, nil
	}
}

func failing(msg string) toolFunc {
	return func(map[string]any) (*mcp.ToolResponse, error) {
		return nil, errors.New(msg)
	}
}

type chatCall struct {
	history []*llmEntity.ChatMessage
	tools   []*llmEntity.ToolDefinition
}

// scriptedProvider replays replies and errors in order.
type scriptedProvider struct {
	replies []*llmEntity.Reply
	errs    []error
	calls   []chatCall
}

func (p *scriptedProvider) Name() string { return "scripted" }

func (p *scriptedProvider) Chat(_ context.Context, history []*llmEntity.ChatMessage, tools []*llmEntity.ToolDefinition) (*llmEntity.Reply, error) {
	i := len(p.calls)
	p.calls = append(p.calls, chatCall{history: history, tools: tools})
	if i < len(p.errs) && p.errs[i] != nil {
		return nil, p.errs[i]
	}
	if i < len(p.replies) {
		return p.replies[i], nil
	}
	return &llmEntity.Reply{}, nil
}

func call(name string, args map[string]any) *llmEntity.ToolCall {
	return &llmEntity.ToolCall{Name: name, Args: args}
}

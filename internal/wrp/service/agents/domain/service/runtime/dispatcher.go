package runtime

import (
	"context"
	"time"

	"github.com/kiosk404/warp/internal/pkg/metrics"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg"
	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/mcp"
	"github.com/kiosk404/warp/pkg/logger"
	"github.com/kiosk404/warp/pkg/utils/json"
	"golang.org/x/sync/errgroup"
)

const (
	noContentText   = "No content returned"
	toolFailureText = "Error: Incorrect filepath or argument passed."
)

// ToolCaller invokes tools on a connected server. *mcp.Connector
// implements it.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (*mcp.ToolResponse, error)
}

// Dispatcher turns tool calls into tool results with uniform error
// semantics. Results always come back in call order.
type Dispatcher struct {
	caller      ToolCaller
	server      string
	concurrency int
}

// NewDispatcher creates a dispatcher. concurrency <= 1 dispatches
// sequentially.
func NewDispatcher(caller ToolCaller, server string, concurrency int) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{caller: caller, server: server, concurrency: concurrency}
}

// Dispatch runs every call and returns one result per call, in order.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []*llmEntity.ToolCall) []*entity.ToolResult {
	results := make([]*entity.ToolResult, len(calls))
	if d.concurrency == 1 || len(calls) < 2 {
		for i, call := range calls {
			results[i] = d.Invoke(ctx, call)
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, call := range calls {
		g.Go(func() error {
			results[i] = d.Invoke(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// Invoke runs a single call. It never fails: every failure becomes an
// error result.
func (d *Dispatcher) Invoke(ctx context.Context, call *llmEntity.ToolCall) *entity.ToolResult {
	start := time.Now()
	res := d.invoke(ctx, call)

	status := "ok"
	switch {
	case res.Cause != nil:
		status = "failed"
	case res.IsError:
		status = "tool_error"
	}
	metrics.RecordToolCall(d.server, call.Name, status, time.Since(start))
	logger.DebugX(pkg.ModuleName, "[Dispatcher] %s/%s -> %s in %s", d.server, call.Name, status, time.Since(start))
	return res
}

func (d *Dispatcher) invoke(ctx context.Context, call *llmEntity.ToolCall) *entity.ToolResult {
	if call.ArgsErr != nil {
		return failedResult(call.Name, call.ArgsErr)
	}
	if d.caller == nil {
		return failedResult(call.Name, mcp.ErrChannelClosed)
	}

	resp, err := d.caller.CallTool(ctx, call.Name, call.Args)
	if err != nil {
		return failedResult(call.Name, err)
	}

	text, ok := resp.FirstText()
	if !ok {
		return &entity.ToolResult{Name: call.Name, RawText: noContentText, Output: noContentText}
	}
	if reportsError(text) {
		return &entity.ToolResult{Name: call.Name, RawText: toolFailureText, IsError: true, Output: text}
	}
	return &entity.ToolResult{Name: call.Name, RawText: text, Output: text}
}

func failedResult(name string, cause error) *entity.ToolResult {
	return &entity.ToolResult{
		Name:    name,
		RawText: "Error calling " + name + ": " + cause.Error(),
		IsError: true,
		Cause:   cause,
	}
}

// reportsError reports whether text is a JSON object carrying a truthy
// "isError" or any "error" key. Anything else is plain output.
func reportsError(text string) bool {
	var parsed any
	if err := json.UnmarshalString(text, &parsed); err != nil {
		return false
	}
	obj, ok := parsed.(map[string]any)
	if !ok {
		return false
	}
	if _, has := obj["error"]; has {
		return true
	}
	return truthy(obj["isError"])
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

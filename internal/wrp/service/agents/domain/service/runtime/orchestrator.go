package runtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kiosk404/warp/internal/pkg/metrics"
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/agents/pkg"
	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	llmService "github.com/kiosk404/warp/internal/wrp/service/llm/domain/service"
	"github.com/kiosk404/warp/pkg/logger"
	"github.com/kiosk404/warp/pkg/utils/json"
)

const (
	initialFailurePrefix   = "Error during initial LLM processing: "
	synthesisFailurePrefix = "Error during post-tool LLM processing: "
)

// QueryResult is the outcome of one query.
type QueryResult struct {
	// Response is the text shown to the user. It is set on every path.
	Response string

	// Path is "direct", "tools" or "error".
	Path string

	// Trace holds the verbose tool trace lines, in call order.
	Trace []string

	ToolResults []*entity.ToolResult
}

// Orchestrator drives one query through the first backend call, tool
// dispatch and the synthesis call.
type Orchestrator struct {
	provider   llmService.ChatProvider
	dispatcher *Dispatcher
	tools      []*llmEntity.ToolDefinition
	verbose    bool
}

// NewOrchestrator creates an orchestrator. tools is the catalog offered on
// the first call; dispatcher may be nil when no tools are offered.
func NewOrchestrator(provider llmService.ChatProvider, dispatcher *Dispatcher, tools []*llmEntity.ToolDefinition, verbose bool) *Orchestrator {
	return &Orchestrator{
		provider:   provider,
		dispatcher: dispatcher,
		tools:      tools,
		verbose:    verbose,
	}
}

// ProcessQuery answers query and records the exchange in session. It never
// fails: backend errors come back as the response text.
func (o *Orchestrator) ProcessQuery(ctx context.Context, session *entity.Session, query string) *QueryResult {
	start := time.Now()
	res := o.process(ctx, session, query)
	metrics.RecordQuery(res.Path, time.Since(start))
	return res
}

func (o *Orchestrator) process(ctx context.Context, session *entity.Session, query string) *QueryResult {
	sm := NewRunStateMachine(session.ID)
	_ = sm.Transition(entity.RunStateAwaitingFirstReply)

	session.AppendMessage(entity.NewUserMessage(query))

	first, err := o.provider.Chat(ctx, ToChatMessages(session.Messages), o.tools)
	if err != nil {
		sm.Reset()
		logger.WarnX(pkg.ModuleName, "[Orchestrator] initial call failed: %v", err)
		return &QueryResult{Response: initialFailurePrefix + err.Error(), Path: "error"}
	}
	o.addUsage(session, first)

	if !first.HasToolCalls() {
		session.AppendMessage(entity.NewAssistantMessage(first.Text))
		_ = sm.Transition(entity.RunStateIdle)
		return &QueryResult{Response: first.Text, Path: "direct"}
	}

	_ = sm.Transition(entity.RunStateDispatchingTools)
	logger.InfoX(pkg.ModuleName, "[Orchestrator] dispatching %d tool calls", len(first.ToolCalls))

	results := o.dispatch(ctx, first.ToolCalls)
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.RawText
	}
	allToolResults := strings.Join(texts, "\n")

	session.AppendMessage(entity.NewAssistantMessage(first.Text))
	session.AppendMessage(entity.NewAssistantMessage(allToolResults))

	_ = sm.Transition(entity.RunStateAwaitingSynthesis)
	fresh := []*llmEntity.ChatMessage{llmEntity.UserMessage(SynthesisPrompt(query, allToolResults))}

	final, err := o.provider.Chat(ctx, fresh, nil)
	if err != nil {
		sm.Reset()
		logger.WarnX(pkg.ModuleName, "[Orchestrator] synthesis call failed: %v", err)
		return &QueryResult{Response: synthesisFailurePrefix + err.Error(), Path: "error", ToolResults: results}
	}
	o.addUsage(session, final)
	session.AppendMessage(entity.NewAssistantMessage(final.Text))
	_ = sm.Transition(entity.RunStateIdle)

	res := &QueryResult{Response: final.Text, Path: "tools", ToolResults: results}
	if o.verbose {
		res.Trace = traceLines(first.ToolCalls, results)
		res.Response = strings.Join(res.Trace, "\n") + "\n" + final.Text
	}
	return res
}

func (o *Orchestrator) dispatch(ctx context.Context, calls []*llmEntity.ToolCall) []*entity.ToolResult {
	if o.dispatcher == nil {
		results := make([]*entity.ToolResult, len(calls))
		for i, c := range calls {
			results[i] = failedResult(c.Name, fmt.Errorf("no tool server connected"))
		}
		return results
	}
	return o.dispatcher.Dispatch(ctx, calls)
}

func (o *Orchestrator) addUsage(session *entity.Session, reply *llmEntity.Reply) {
	if reply.Usage != nil {
		session.AddUsage(reply.Usage.PromptTokens, reply.Usage.CompletionTokens, reply.Usage.TotalTokens)
	}
}

// SynthesisPrompt builds the single message of the synthesis call.
func SynthesisPrompt(query, toolResults string) string {
	return "Original query: " + query +
		"\n\nTool results: " + toolResults +
		"\n\nPlease provide a clear, natural language response to the original query based on these tool results."
}

func traceLines(calls []*llmEntity.ToolCall, results []*entity.ToolResult) []string {
	lines := make([]string, 0, 2*len(calls))
	for i, call := range calls {
		lines = append(lines, fmt.Sprintf("[Calling tool %s with args %s]", call.Name, formatArgs(call)))
		r := results[i]
		if r.Cause != nil {
			lines = append(lines, "["+r.RawText+"]")
		} else {
			lines = append(lines, fmt.Sprintf("[Called %s: %s]", call.Name, r.Output))
		}
	}
	return lines
}

func formatArgs(call *llmEntity.ToolCall) string {
	if call.ArgsErr != nil {
		return call.RawArgs
	}
	if len(call.Args) == 0 {
		return "{}"
	}
	s, err := json.MarshalString(call.Args)
	if err != nil {
		return fmt.Sprintf("%v", call.Args)
	}
	return s
}

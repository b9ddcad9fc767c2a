package adapter

import (
	"context"
	"errors"
	"time"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/pkg/logger"
)

// ErrModelNotToolCapable is returned when tools are offered to a chat model
// that cannot bind them.
var ErrModelNotToolCapable = errors.New("model not tool capable")

// PromptSource supplies the system prompt prepended to every request.
type PromptSource interface {
	SystemPrompt() string
}

// StaticPrompt is a PromptSource that never changes.
type StaticPrompt string

func (p StaticPrompt) SystemPrompt() string { return string(p) }

// DirectProvider talks to a backend's chat endpoint through an Eino chat
// model. Tools are bound per request and only when the caller offers some.
type DirectProvider struct {
	cm      einoModel.BaseChatModel
	spec    entity.ModelSpec
	prompt  PromptSource
	timeout time.Duration
}

// DirectOption configures a DirectProvider.
type DirectOption func(*DirectProvider)

// WithPromptSource sets the system prompt source.
func WithPromptSource(p PromptSource) DirectOption {
	return func(d *DirectProvider) { d.prompt = p }
}

// NewDirectProvider wraps cm. spec identifies the backend in errors and
// bounds each request with spec.Timeout.
func NewDirectProvider(cm einoModel.BaseChatModel, spec *entity.ModelSpec, opts ...DirectOption) *DirectProvider {
	d := &DirectProvider{cm: cm}
	if spec != nil {
		d.spec = *spec
		d.timeout = spec.Timeout
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DirectProvider) Name() string {
	return d.spec.Provider
}

// Model returns the model name requests are sent to.
func (d *DirectProvider) Model() string {
	return d.spec.Model
}

func (d *DirectProvider) Chat(ctx context.Context, history []*entity.ChatMessage, tools []*entity.ToolDefinition) (*entity.Reply, error) {
	cm := d.cm
	if len(tools) > 0 {
		bound, err := d.bindTools(tools)
		if err != nil {
			return nil, d.wrap(err)
		}
		cm = bound
	}

	systemPrompt := ""
	if d.prompt != nil {
		systemPrompt = d.prompt.SystemPrompt()
	}
	msgs := ToSchemaMessages(systemPrompt, history)

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := cm.Generate(ctx, msgs)
	if err != nil {
		logger.Debug("[LLM] %s/%s generate failed after %s: %v", d.spec.Provider, d.spec.Model, time.Since(start), err)
		return nil, d.wrap(err)
	}

	reply := FromSchemaMessage(out)
	logger.Debug("[LLM] %s/%s replied in %s with %d tool calls", d.spec.Provider, d.spec.Model, time.Since(start), len(reply.ToolCalls))
	return reply, nil
}

func (d *DirectProvider) bindTools(tools []*entity.ToolDefinition) (einoModel.BaseChatModel, error) {
	tcm, ok := d.cm.(einoModel.ToolCallingChatModel)
	if !ok {
		pe := entity.NewProviderCallError(entity.FailureReason_Format, d.spec.Provider, d.spec.Model, ErrModelNotToolCapable.Error())
		pe.Cause = ErrModelNotToolCapable
		return nil, pe
	}
	infos, err := ToToolInfos(tools)
	if err != nil {
		return nil, entity.NewProviderCallError(entity.FailureReason_Format, d.spec.Provider, d.spec.Model, err.Error())
	}
	bound, err := tcm.WithTools(infos)
	if err != nil {
		return nil, err
	}
	return bound, nil
}

func (d *DirectProvider) wrap(err error) error {
	return entity.WrapProviderError(err, d.spec.Provider, d.spec.Model)
}

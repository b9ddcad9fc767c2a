package qwen

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	einoQwen "github.com/cloudwego/eino-ext/components/model/qwen"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const Name = "qwen"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "https://dashscope.aliyuncs.com/compatible-mode/v1",
				APIKey:  "${DASHSCOPE_API_KEY}",
				Model:   "qwen-plus",
			},
		},
	}
}

// BuildChatModel uses the dedicated DashScope client.
func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", Name)
	}

	conf := &einoQwen.ChatModelConfig{
		APIKey:      spec.APIKey,
		Model:       spec.Model,
		BaseURL:     spec.BaseURL,
		Timeout:     spec.Timeout,
		Temperature: gptr.Of(float32(0.7)),
		ResponseFormat: &einoOpenAI.ChatCompletionResponseFormat{
			Type: einoOpenAI.ChatCompletionResponseFormatTypeText,
		},
	}

	applyParamsToQwenConfig(conf, params)

	return einoQwen.NewChatModel(ctx, conf)
}

func applyParamsToQwenConfig(conf *einoQwen.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	conf.TopP = params.TopP

	if params.Temperature != nil {
		conf.Temperature = gptr.Of(*params.Temperature)
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = gptr.Of(params.MaxTokens)
	}
	if params.FrequencyPenalty != 0 {
		conf.FrequencyPenalty = gptr.Of(params.FrequencyPenalty)
	}
	if params.PresencePenalty != 0 {
		conf.PresencePenalty = gptr.Of(params.PresencePenalty)
	}
	if params.EnableThinking != nil {
		conf.EnableThinking = params.EnableThinking
	}
}

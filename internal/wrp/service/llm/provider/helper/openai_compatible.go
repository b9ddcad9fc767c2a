package helper

import (
	"context"
	"fmt"

	"github.com/bytedance/gg/gptr"
	einoOpenAI "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

// NewOpenAICompatibleChatModel creates an Eino ChatModel against an
// OpenAI-compatible endpoint (OpenAI, GLM, Kimi and any self-hosted gateway).
func NewOpenAICompatibleChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", spec.Provider)
	}

	cfg := &einoOpenAI.ChatModelConfig{
		Model:     spec.Model,
		APIKey:    spec.APIKey,
		MaxTokens: gptr.Of(4096),
		Timeout:   spec.Timeout,
		ResponseFormat: &einoOpenAI.ChatCompletionResponseFormat{
			Type: einoOpenAI.ChatCompletionResponseFormatTypeText,
		},
	}

	if spec.BaseURL != "" {
		cfg.BaseURL = spec.BaseURL
	}

	applyParamsToOpenAIChatModelConfig(cfg, params)

	return einoOpenAI.NewChatModel(ctx, cfg)
}

func applyParamsToOpenAIChatModelConfig(cfg *einoOpenAI.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		cfg.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		cfg.MaxTokens = gptr.Of(params.MaxTokens)
	}
	if params.FrequencyPenalty != 0 {
		cfg.FrequencyPenalty = gptr.Of(params.FrequencyPenalty)
	}
	if params.PresencePenalty != 0 {
		cfg.PresencePenalty = gptr.Of(params.PresencePenalty)
	}
	cfg.TopP = params.TopP
}

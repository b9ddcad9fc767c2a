package deepseek

import (
	"context"
	"fmt"

	einoDeepseek "github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const Name = "deepseek"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "https://api.deepseek.com/",
				APIKey:  "${DEEPSEEK_API_KEY}",
				Model:   "deepseek-chat",
			},
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", Name)
	}

	conf := &einoDeepseek.ChatModelConfig{
		APIKey:             spec.APIKey,
		Model:              spec.Model,
		BaseURL:            spec.BaseURL,
		Timeout:            spec.Timeout,
		Temperature:        0.7,
		ResponseFormatType: einoDeepseek.ResponseFormatTypeText,
	}

	applyParamsToDeepseekConfig(conf, params)

	return einoDeepseek.NewChatModel(ctx, conf)
}

func applyParamsToDeepseekConfig(conf *einoDeepseek.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = *params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
	if params.FrequencyPenalty != 0 {
		conf.FrequencyPenalty = params.FrequencyPenalty
	}
	if params.PresencePenalty != 0 {
		conf.PresencePenalty = params.PresencePenalty
	}
}

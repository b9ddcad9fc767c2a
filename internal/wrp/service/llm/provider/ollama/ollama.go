package ollama

import (
	"context"
	"fmt"

	einoOllama "github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const Name = "ollama"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "http://127.0.0.1:11434",
				Model:   "llama3.1",
			},
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", Name)
	}

	conf := &einoOllama.ChatModelConfig{
		BaseURL: spec.BaseURL,
		Model:   spec.Model,
		Timeout: spec.Timeout,
		Options: &einoOllama.Options{},
	}

	applyParamsToOllamaConfig(conf, params)

	return einoOllama.NewChatModel(ctx, conf)
}

// applyParamsToOllamaConfig applies runtime LLM params to the Ollama config.
func applyParamsToOllamaConfig(conf *einoOllama.ChatModelConfig, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Options.Temperature = *params.Temperature
	}
	if params.TopP != nil {
		conf.Options.TopP = *params.TopP
	}
	if params.TopK != nil {
		conf.Options.TopK = int(*params.TopK)
	}
	if params.FrequencyPenalty != 0 {
		conf.Options.FrequencyPenalty = params.FrequencyPenalty
	}
	if params.PresencePenalty != 0 {
		conf.Options.PresencePenalty = params.PresencePenalty
	}
	if params.EnableThinking != nil {
		conf.Thinking = &einoOllama.ThinkValue{
			Value: params.EnableThinking,
		}
	}
}

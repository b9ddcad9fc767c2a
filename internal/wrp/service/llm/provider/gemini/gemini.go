package gemini

import (
	"context"
	"fmt"

	einoGemini "github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
	"google.golang.org/genai"
)

const Name = "gemini"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "https://generativelanguage.googleapis.com/",
				APIKey:  "${GOOGLE_API_KEY}",
				Model:   "gemini-2.5-flash",
			},
		},
	}
}

// BuildChatModel talks to Google's generative AI API through a genai client
// rather than the OpenAI-compatible path.
func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", Name)
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  spec.APIKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: spec.BaseURL,
		},
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client for %s: %w", spec.Model, err)
	}

	cfg := &einoGemini.Config{
		Client: client,
		Model:  spec.Model,
	}

	applyParamsToGeminiConfig(cfg, params)

	return einoGemini.NewChatModel(ctx, cfg)
}

func applyParamsToGeminiConfig(conf *einoGemini.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	conf.TopK = params.TopK
	conf.TopP = params.TopP

	if params.Temperature != nil {
		t := *params.Temperature
		conf.Temperature = &t
	}
	if params.MaxTokens != 0 {
		mt := params.MaxTokens
		conf.MaxTokens = &mt
	}
	if params.EnableThinking != nil {
		conf.ThinkingConfig = &genai.ThinkingConfig{
			IncludeThoughts: *params.EnableThinking,
		}
	}
}

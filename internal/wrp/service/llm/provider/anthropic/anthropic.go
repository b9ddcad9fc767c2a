package anthropic

import (
	"context"
	"fmt"

	einoClaude "github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const (
	Name  = "anthropic"
	Alias = "claude"
)

const defaultMaxTokens = 4096

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				APIKey: "${ANTHROPIC_API_KEY}",
				Model:  "claude-sonnet-4-5",
			},
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	if spec.Model == "" {
		return nil, fmt.Errorf("provider %s: model is required", Name)
	}

	cfg := &einoClaude.Config{
		APIKey:    spec.APIKey,
		Model:     spec.Model,
		MaxTokens: defaultMaxTokens,
	}

	if spec.BaseURL != "" {
		baseURL := spec.BaseURL
		cfg.BaseURL = &baseURL
	}

	applyParamsToClaudeConfig(cfg, params)

	return einoClaude.NewChatModel(ctx, cfg)
}

func applyParamsToClaudeConfig(conf *einoClaude.Config, params *entity.LLMParams) {
	if params == nil {
		return
	}

	if params.Temperature != nil {
		conf.Temperature = params.Temperature
	}
	if params.MaxTokens != 0 {
		conf.MaxTokens = params.MaxTokens
	}
	if params.TopP != nil {
		conf.TopP = params.TopP
	}
}

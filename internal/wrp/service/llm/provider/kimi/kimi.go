package kimi

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const Name = "kimi"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "https://api.moonshot.cn/v1",
				APIKey:  "${MOONSHOT_API_KEY}",
				Model:   "kimi-k2-0905-preview",
			},
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	return helper.NewOpenAICompatibleChatModel(ctx, spec, params)
}

package glm

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

const Name = "glm"

var _ spi.ChatModelPlugin = (*Plugin)(nil)

type Plugin struct {
	helper.BasePlugin
}

func New() spi.ChatModelPlugin {
	return &Plugin{
		BasePlugin: helper.BasePlugin{
			PluginName: Name,
			Defaults: entity.ModelSpec{
				BaseURL: "https://open.bigmodel.cn/api/paas/v4",
				APIKey:  "${ZHIPU_API_KEY}",
				Model:   "glm-4.6",
			},
		},
	}
}

func (p *Plugin) BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error) {
	return helper.NewOpenAICompatibleChatModel(ctx, spec, params)
}

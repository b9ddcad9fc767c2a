package spi

import (
	"context"

	"github.com/cloudwego/eino/components/model"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

// ChatModelPlugin builds Eino chat models for one backend family.
type ChatModelPlugin interface {
	// Name returns the registry key of the plugin.
	Name() string

	// DefaultSpec returns the endpoint, API key reference and model used when
	// the configuration leaves them empty.
	DefaultSpec() *entity.ModelSpec

	// BuildChatModel builds a chat model for spec. params may be nil, in which
	// case backend defaults are used. The returned model must support tool
	// binding to be usable with a tool catalog.
	BuildChatModel(ctx context.Context, spec *entity.ModelSpec, params *entity.LLMParams) (model.BaseChatModel, error)
}

// PluginFactory creates a ChatModelPlugin instance.
type PluginFactory func() ChatModelPlugin

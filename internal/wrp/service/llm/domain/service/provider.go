package service

import (
	"context"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

// ChatProvider sends a conversation to a language-model backend.
//
// An empty tools slice means tool use is not permitted for this turn. Every
// failure is returned as *entity.ProviderCallError.
type ChatProvider interface {
	Chat(ctx context.Context, history []*entity.ChatMessage, tools []*entity.ToolDefinition) (*entity.Reply, error)

	// Name identifies the provider in logs and metrics.
	Name() string
}

// ManagedProvider is implemented by providers that manage their own tool
// servers and therefore never return tool calls.
type ManagedProvider interface {
	ChatProvider
	ManagesTools() bool
}

package runtime

import (
	"github.com/kiosk404/warp/internal/wrp/service/agents/domain/entity"
	llmEntity "github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
)

// ToChatMessages converts session history to the provider-facing form.
func ToChatMessages(msgs []*entity.Message) []*llmEntity.ChatMessage {
	result := make([]*llmEntity.ChatMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg == nil {
			continue
		}
		result = append(result, ToChatMessage(msg))
	}
	return result
}

// ToChatMessage converts a single history entry.
func ToChatMessage(msg *entity.Message) *llmEntity.ChatMessage {
	return &llmEntity.ChatMessage{
		Role:    toChatRole(msg.Role),
		Content: msg.Content,
	}
}

func toChatRole(role entity.Role) llmEntity.Role {
	switch role {
	case entity.RoleAssistant:
		return llmEntity.RoleAssistant
	default:
		return llmEntity.RoleUser
	}
}

package adapter

import (
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/eino-contrib/jsonschema"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/pkg/utils/json"
)

// ToToolInfos converts tool definitions to Eino tool infos, keeping order.
func ToToolInfos(defs []*entity.ToolDefinition) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(defs))
	for _, def := range defs {
		info, err := ToToolInfo(def)
		if err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// ToToolInfo converts one tool definition. The input schema goes through a
// JSON round trip so any draft the server used is preserved.
func ToToolInfo(def *entity.ToolDefinition) (*schema.ToolInfo, error) {
	if def == nil {
		return nil, fmt.Errorf("nil tool definition")
	}
	info := &schema.ToolInfo{
		Name: def.Name,
		Desc: def.Description,
	}
	if len(def.InputSchema) == 0 {
		return info, nil
	}

	raw, err := json.Marshal(def.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("tool %q: marshal input schema: %w", def.Name, err)
	}
	js := &jsonschema.Schema{}
	if err := json.Unmarshal(raw, js); err != nil {
		return nil, fmt.Errorf("tool %q: invalid input schema: %w", def.Name, err)
	}
	info.ParamsOneOf = schema.NewParamsOneOfByJSONSchema(js)
	return info, nil
}

// ToSchemaMessages converts provider-facing history to Eino messages,
// prepending systemPrompt when it is not empty.
func ToSchemaMessages(systemPrompt string, history []*entity.ChatMessage) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	if systemPrompt != "" {
		msgs = append(msgs, schema.SystemMessage(systemPrompt))
	}
	for _, m := range history {
		if m == nil {
			continue
		}
		msgs = append(msgs, &schema.Message{
			Role:    toSchemaRole(m.Role),
			Content: m.Content,
		})
	}
	return msgs
}

func toSchemaRole(role entity.Role) schema.RoleType {
	switch role {
	case entity.RoleAssistant:
		return schema.Assistant
	case entity.RoleSystem:
		return schema.System
	default:
		return schema.User
	}
}

// FromSchemaMessage converts a generated Eino message to a Reply.
func FromSchemaMessage(msg *schema.Message) *entity.Reply {
	reply := &entity.Reply{}
	if msg == nil {
		return reply
	}
	reply.Text = msg.Content

	if len(msg.ToolCalls) > 0 {
		reply.ToolCalls = make([]*entity.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			reply.ToolCalls = append(reply.ToolCalls, toToolCall(tc))
		}
	}

	if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
		u := msg.ResponseMeta.Usage
		reply.Usage = &entity.TokenUsage{
			PromptTokens:     u.PromptTokens,
			CompletionTokens: u.CompletionTokens,
			TotalTokens:      u.TotalTokens,
		}
	}
	return reply
}

func toToolCall(tc schema.ToolCall) *entity.ToolCall {
	call := &entity.ToolCall{
		ID:      tc.ID,
		Name:    tc.Function.Name,
		RawArgs: tc.Function.Arguments,
		Args:    map[string]any{},
	}
	switch tc.Function.Arguments {
	case "", "{}", "null":
		return call
	}
	if err := json.UnmarshalString(tc.Function.Arguments, &call.Args); err != nil {
		call.Args = map[string]any{}
		call.ArgsErr = fmt.Errorf("arguments of %q are not a JSON object: %w", call.Name, err)
	}
	return call
}

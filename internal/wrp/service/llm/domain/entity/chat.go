package entity

// Role is the author of a ChatMessage.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is the provider-facing view of a conversation entry.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

func UserMessage(content string) *ChatMessage {
	return &ChatMessage{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) *ChatMessage {
	return &ChatMessage{Role: RoleAssistant, Content: content}
}

// ToolDefinition describes one tool exposed by the connected tool server.
// InputSchema is the JSON schema of the tool's arguments object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall is a backend request to invoke a named tool.
type ToolCall struct {
	ID   string         `json:"id,omitempty"`
	Name string         `json:"name"`
	Args map[string]any `json:"args"`

	// RawArgs keeps the arguments exactly as the backend sent them.
	RawArgs string `json:"raw_args,omitempty"`

	// ArgsErr is set when RawArgs could not be decoded into an object.
	ArgsErr error `json:"-"`
}

// Reply is the outcome of one backend chat turn. A nil ToolCalls means the
// backend answered directly.
type Reply struct {
	Text      string      `json:"text"`
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`
	Usage     *TokenUsage `json:"usage,omitempty"`
}

// HasToolCalls reports whether the backend requested any tool invocation.
func (r *Reply) HasToolCalls() bool {
	return r != nil && len(r.ToolCalls) > 0
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session is the conversation held with one tool server.
type Session struct {
	// ID is the unique session identifier.
	ID string `json:"id"`

	// Server is the logical name of the tool server, empty when the
	// provider manages its own tools.
	Server string `json:"server,omitempty"`

	// Provider is the backend the session talked to.
	Provider string `json:"provider"`

	// Messages is the ordered history of the session.
	Messages []*Message `json:"messages"`

	// Usage tracks cumulative token usage across queries.
	Usage *TokenUsage `json:"usage,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewSession creates an empty session with a fresh ID.
func NewSession(server, provider string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		Server:    server,
		Provider:  provider,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AppendMessage appends a message to the session history.
func (s *Session) AppendMessage(msg *Message) {
	s.Messages = append(s.Messages, msg)
	s.UpdatedAt = time.Now()
}

// History returns a copy of the message slice.
func (s *Session) History() []*Message {
	out := make([]*Message, len(s.Messages))
	copy(out, s.Messages)
	return out
}

// AddUsage accumulates token usage.
func (s *Session) AddUsage(prompt, completion, total int) {
	if s.Usage == nil {
		s.Usage = &TokenUsage{}
	}
	s.Usage.PromptTokens += prompt
	s.Usage.CompletionTokens += completion
	s.Usage.TotalTokens += total
}

// Clone returns a copy that shares the immutable messages but not the
// slice holding them.
func (s *Session) Clone() *Session {
	cp := *s
	cp.Messages = s.History()
	if s.Usage != nil {
		u := *s.Usage
		cp.Usage = &u
	}
	return &cp
}

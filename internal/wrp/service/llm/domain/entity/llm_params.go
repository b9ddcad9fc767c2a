package entity

import "time"

// LLMParams are per-request generation knobs. Zero values leave the
// backend's defaults in place.
type LLMParams struct {
	Temperature      *float32 `json:"temperature,omitempty"`
	FrequencyPenalty float32  `json:"frequency_penalty,omitempty"`
	PresencePenalty  float32  `json:"presence_penalty,omitempty"`
	MaxTokens        int      `json:"max_tokens,omitempty"`
	TopP             *float32 `json:"top_p,omitempty"`
	TopK             *int32   `json:"top_k,omitempty"`
	EnableThinking   *bool    `json:"enable_thinking,omitempty"`
}

// ModelSpec identifies the backend a provider plugin must build a chat model
// for.
type ModelSpec struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"-"`
	BaseURL  string `json:"base_url,omitempty"`

	// Timeout bounds a single chat request.
	Timeout time.Duration `json:"timeout,omitempty"`
}

// CacheKey identifies the chat model built from this spec.
func (s *ModelSpec) CacheKey() string {
	return s.Provider + "/" + s.Model + "@" + s.BaseURL
}

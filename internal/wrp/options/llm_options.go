package options

import (
	"fmt"
	"strings"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/llm"
	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/helper"
	"github.com/spf13/pflag"
)

// LLMOptions selects and configures the chat backend.
type LLMOptions struct {
	Provider string `json:"provider" mapstructure:"provider"`
	Model    string `json:"model" mapstructure:"model"`
	APIKey   string `json:"-" mapstructure:"api-key"`
	BaseURL  string `json:"base-url" mapstructure:"base-url"`

	SystemPromptFile   string `json:"system-prompt-file" mapstructure:"system-prompt-file"`
	ProviderConfigPath string `json:"provider-config-path" mapstructure:"provider-config-path"`

	Timeout    time.Duration `json:"timeout" mapstructure:"timeout"`
	MaxRetries int           `json:"max-retries" mapstructure:"max-retries"`

	Temperature *float32 `json:"temperature,omitempty" mapstructure:"temperature"`
	TopP        *float32 `json:"top-p,omitempty" mapstructure:"top-p"`
	MaxTokens   int      `json:"max-tokens" mapstructure:"max-tokens"`
}

func NewLLMOptions() *LLMOptions {
	return &LLMOptions{
		Timeout:    2 * time.Minute,
		MaxRetries: 2,
	}
}

// Complete normalizes the provider name and resolves "$ENV" references in
// every string setting.
func (o *LLMOptions) Complete() {
	o.Provider = strings.ToLower(strings.TrimSpace(o.Provider))
	for _, s := range []*string{&o.Model, &o.APIKey, &o.BaseURL, &o.SystemPromptFile, &o.ProviderConfigPath} {
		*s = helper.ResolveEnvValue(*s)
	}
}

func (o *LLMOptions) Validate() []error {
	var errs []error
	switch {
	case o.Provider == "":
		errs = append(errs, fmt.Errorf("llm.provider is required"))
	case !llm.IsAgentCLI(o.Provider) && !provider.NewInTreeRegistry().Has(o.Provider):
		errs = append(errs, fmt.Errorf("unknown llm.provider %q", o.Provider))
	}
	if o.Provider == "opencode" && o.ProviderConfigPath == "" {
		errs = append(errs, fmt.Errorf("llm.provider-config-path is required for opencode"))
	}
	if o.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max-retries must not be negative"))
	}
	if o.Temperature != nil && (*o.Temperature < 0 || *o.Temperature > 2) {
		errs = append(errs, fmt.Errorf("llm.temperature %v out of range [0, 2]", *o.Temperature))
	}
	return errs
}

func (o *LLMOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Provider, "llm.provider", o.Provider, "Chat backend: openai, claude, gemini, deepseek, qwen, ollama, glm, kimi, claudecode or opencode.")
	fs.StringVar(&o.Model, "llm.model", o.Model, "Model name. Empty uses the backend default.")
	fs.StringVar(&o.BaseURL, "llm.base-url", o.BaseURL, "Override the backend endpoint.")
	fs.StringVar(&o.SystemPromptFile, "llm.system-prompt-file", o.SystemPromptFile, "File prepended as system prompt, reloaded on change.")
	fs.StringVar(&o.ProviderConfigPath, "llm.provider-config-path", o.ProviderConfigPath, "Provider config file handed to opencode.")
	fs.DurationVar(&o.Timeout, "llm.timeout", o.Timeout, "Timeout of one backend request.")
	fs.IntVar(&o.MaxRetries, "llm.max-retries", o.MaxRetries, "Extra attempts on rate limits and transient backend errors.")
	fs.IntVar(&o.MaxTokens, "llm.max-tokens", o.MaxTokens, "Maximum tokens per reply. Zero keeps the backend default.")
}

// ApplyTo copies the options into the LLM module config.
func (o *LLMOptions) ApplyTo(c *llm.Config) error {
	c.Provider = o.Provider
	c.Model = o.Model
	c.APIKey = o.APIKey
	c.BaseURL = o.BaseURL
	c.SystemPromptFile = o.SystemPromptFile
	c.ProviderConfigPath = o.ProviderConfigPath
	c.Timeout = o.Timeout
	c.MaxRetries = o.MaxRetries
	c.Params = &entity.LLMParams{
		Temperature: o.Temperature,
		TopP:        o.TopP,
		MaxTokens:   o.MaxTokens,
	}
	return nil
}

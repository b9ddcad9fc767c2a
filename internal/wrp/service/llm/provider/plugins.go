package provider

import (
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/anthropic"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/deepseek"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/gemini"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/glm"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/kimi"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/ollama"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/openai"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/qwen"
	"github.com/kiosk404/warp/internal/wrp/service/llm/provider/spi"
)

// NewInTreeRegistry returns a registry holding every direct-API backend
// shipped with wrp.
func NewInTreeRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(anthropic.Name, func() spi.ChatModelPlugin { return anthropic.New() })
	r.MustRegister(anthropic.Alias, func() spi.ChatModelPlugin { return anthropic.New() })
	r.MustRegister(openai.Name, func() spi.ChatModelPlugin { return openai.New() })
	r.MustRegister(gemini.Name, func() spi.ChatModelPlugin { return gemini.New() })
	r.MustRegister(deepseek.Name, func() spi.ChatModelPlugin { return deepseek.New() })
	r.MustRegister(glm.Name, func() spi.ChatModelPlugin { return glm.New() })
	r.MustRegister(kimi.Name, func() spi.ChatModelPlugin { return kimi.New() })
	r.MustRegister(qwen.Name, func() spi.ChatModelPlugin { return qwen.New() })
	r.MustRegister(ollama.Name, func() spi.ChatModelPlugin { return ollama.New() })
	return r
}

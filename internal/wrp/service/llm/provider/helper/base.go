package helper

import (
	"os"
	"regexp"
	"strings"

	"github.com/kiosk404/warp/internal/wrp/service/llm/domain/entity"
	"github.com/kiosk404/warp/pkg/logger"
)

// BasePlugin carries the name and defaults shared by every plugin.
type BasePlugin struct {
	PluginName string
	Defaults   entity.ModelSpec
}

func (b *BasePlugin) Name() string {
	return b.PluginName
}

// DefaultSpec returns a copy of the plugin defaults.
func (b *BasePlugin) DefaultSpec() *entity.ModelSpec {
	spec := b.Defaults
	spec.Provider = b.PluginName
	return &spec
}

// CompleteSpec fills empty fields of spec from defaults and resolves env
// references in the API key. spec is modified in place and returned.
func CompleteSpec(spec *entity.ModelSpec, defaults *entity.ModelSpec) *entity.ModelSpec {
	if defaults != nil {
		if spec.Model == "" {
			spec.Model = defaults.Model
		}
		if spec.BaseURL == "" {
			spec.BaseURL = defaults.BaseURL
		}
		if spec.APIKey == "" {
			spec.APIKey = defaults.APIKey
		}
	}
	spec.APIKey = ResolveEnvValue(spec.APIKey)
	return spec
}

var envRefPattern = regexp.MustCompile(`^\$\{?([A-Za-z_][A-Za-z0-9_]*)\}?$`)

// ResolveEnvValue resolves a whole-string "${ENV_VAR}" or "$ENV_VAR"
// reference. Other strings are returned untouched. An unset variable resolves
// to the empty string and is logged.
func ResolveEnvValue(s string) string {
	trimmed := strings.TrimSpace(s)
	m := envRefPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return s
	}
	// "${FOO" or "$FOO}" are not references.
	if strings.HasPrefix(trimmed, "${") != strings.HasSuffix(trimmed, "}") {
		return s
	}
	v, ok := os.LookupEnv(m[1])
	if !ok {
		logger.Warn("[LLM] environment variable %s is not set", m[1])
	}
	return v
}

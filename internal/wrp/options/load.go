package options

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kiosk404/warp/pkg/logger"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// llmKeyAliases maps the older flat LLM keys onto their current names.
var llmKeyAliases = map[string]string{
	"model-name": "model",
	"host":       "base-url",
}

// LoadDotEnv loads .env from the working directory when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("[CLI] failed to load .env: %v", err)
	}
}

// Load reads the YAML file at path into a fresh Options. Flags in flags that
// were set on the command line win over file values. An empty path yields
// defaults plus flags.
//
// Besides the sectioned layout, the older one is accepted: "MCP" as a plain
// list of servers, a top-level "Verbose", and snake_case LLM keys.
func Load(path string, flags *pflag.FlagSet) (*Options, error) {
	settings := map[string]any{}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("configuration file not found at: %s", path)
		}
		file := viper.New()
		file.SetConfigFile(path)
		if err := file.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read configuration %s: %w", path, err)
		}
		settings = normalizeSettings(file.AllSettings())
	}

	v := viper.New()
	if err := v.MergeConfigMap(settings); err != nil {
		return nil, fmt.Errorf("failed to merge configuration: %w", err)
	}
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	opts := NewOptions()
	if err := v.Unmarshal(opts); err != nil {
		return nil, fmt.Errorf("failed to decode configuration %s: %w", path, err)
	}
	if err := opts.Complete(); err != nil {
		return nil, err
	}
	return opts, nil
}

func normalizeSettings(settings map[string]any) map[string]any {
	switch raw := settings["mcp"].(type) {
	case []any:
		settings["mcp"] = map[string]any{"servers": serverNames(raw)}
	case map[string]any:
		if list, ok := raw["servers"].([]any); ok {
			raw["servers"] = serverNames(list)
		}
	}

	if verbose, ok := settings["verbose"]; ok {
		chat, _ := settings["chat"].(map[string]any)
		if chat == nil {
			chat = map[string]any{}
			settings["chat"] = chat
		}
		if _, set := chat["verbose"]; !set {
			chat["verbose"] = verbose
		}
		delete(settings, "verbose")
	}

	if llm, ok := settings["llm"].(map[string]any); ok {
		settings["llm"] = normalizeKeys(llm, llmKeyAliases)
	}
	for _, section := range []string{"mcp", "chat", "store", "log", "metrics"} {
		if m, ok := settings[section].(map[string]any); ok {
			settings[section] = normalizeKeys(m, nil)
		}
	}
	return settings
}

func normalizeKeys(m map[string]any, aliases map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if alias, ok := aliases[key]; ok {
			key = alias
		}
		if _, taken := out[key]; taken && key != k {
			continue
		}
		out[key] = v
	}
	return out
}

// serverNames flattens a server list whose entries are names or single-key
// maps of name to settings.
func serverNames(list []any) []string {
	names := make([]string, 0, len(list))
	for _, item := range list {
		switch s := item.(type) {
		case string:
			names = append(names, s)
		case map[string]any:
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			if len(keys) == 0 {
				continue
			}
			sort.Strings(keys)
			names = append(names, keys[0])
		default:
			names = append(names, fmt.Sprint(s))
		}
	}
	return names
}

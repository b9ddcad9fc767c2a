package options

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wrp.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSectionedConfig(t *testing.T) {
	t.Setenv("WRP_TEST_KEY", "sk-1")
	path := writeConfig(t, `
llm:
  provider: OpenAI
  model: gpt-4o-mini
  api-key: ${WRP_TEST_KEY}
  timeout: 90s
  temperature: 0.2
mcp:
  servers: [hdf5, arxiv]
chat:
  dispatch-concurrency: 4
store:
  type: boltdb
`)

	opts, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if errs := opts.Validate(); len(errs) != 0 {
		t.Fatalf("Validate: %v", errs)
	}

	llm := opts.LLMOptions
	if llm.Provider != "openai" || llm.Model != "gpt-4o-mini" || llm.APIKey != "sk-1" {
		t.Errorf("llm = %+v", llm)
	}
	if llm.Timeout != 90*time.Second {
		t.Errorf("timeout = %v", llm.Timeout)
	}
	if llm.Temperature == nil || *llm.Temperature != float32(0.2) {
		t.Errorf("temperature = %v", llm.Temperature)
	}
	if !reflect.DeepEqual(opts.MCPOptions.Servers, []string{"hdf5", "arxiv"}) {
		t.Errorf("servers = %v", opts.MCPOptions.Servers)
	}
	if opts.MCPOptions.Python != "python3" || opts.MCPOptions.CallTimeout != 2*time.Minute {
		t.Errorf("mcp defaults lost: %+v", opts.MCPOptions)
	}
	if opts.ChatOptions.DispatchConcurrency != 4 || opts.StoreOptions.Type != "boltdb" {
		t.Errorf("chat = %+v, store = %+v", opts.ChatOptions, opts.StoreOptions)
	}
	if opts.LogOptions.Level != "warn" {
		t.Errorf("log level = %q", opts.LogOptions.Level)
	}
	if strings.Contains(opts.String(), "sk-1") {
		t.Error("String() leaks the api key")
	}
}

func TestLoadFlatConfig(t *testing.T) {
	path := writeConfig(t, `
LLM:
  Provider: claudecode
  model_name: sonnet
  Provider_Config_Path: /tmp/oc.json
MCP:
  - hdf5
  - arxiv:
      python: python3.11
Verbose: true
`)

	opts, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.LLMOptions.Provider != "claudecode" || opts.LLMOptions.Model != "sonnet" {
		t.Errorf("llm = %+v", opts.LLMOptions)
	}
	if opts.LLMOptions.ProviderConfigPath != "/tmp/oc.json" {
		t.Errorf("provider config path = %q", opts.LLMOptions.ProviderConfigPath)
	}
	if !reflect.DeepEqual(opts.MCPOptions.Servers, []string{"hdf5", "arxiv"}) {
		t.Errorf("servers = %v", opts.MCPOptions.Servers)
	}
	if !opts.ChatOptions.Verbose || opts.LogOptions.Level != "debug" {
		t.Errorf("verbose = %v, log level = %q", opts.ChatOptions.Verbose, opts.LogOptions.Level)
	}
}

func TestLoadFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
llm:
  provider: ollama
  model: llama3
mcp:
  servers: [hdf5]
`)
	fs := pflag.NewFlagSet("wrp", pflag.ContinueOnError)
	fss := NewOptions().Flags()
	fss.AddTo(fs)
	if err := fs.Parse([]string{"--llm.model=qwen3", "--chat.dispatch-concurrency=2"}); err != nil {
		t.Fatal(err)
	}

	opts, err := Load(path, fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if opts.LLMOptions.Provider != "ollama" || opts.LLMOptions.Model != "qwen3" {
		t.Errorf("llm = %+v", opts.LLMOptions)
	}
	if opts.ChatOptions.DispatchConcurrency != 2 {
		t.Errorf("dispatch concurrency = %d", opts.ChatOptions.DispatchConcurrency)
	}
	if !reflect.DeepEqual(opts.MCPOptions.Servers, []string{"hdf5"}) {
		t.Errorf("servers = %v", opts.MCPOptions.Servers)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr string
	}{
		{"missing provider", func(o *Options) { o.LLMOptions.Provider = "" }, "llm.provider is required"},
		{"unknown provider", func(o *Options) { o.LLMOptions.Provider = "watson" }, `unknown llm.provider "watson"`},
		{"no servers", func(o *Options) { o.MCPOptions.Servers = nil }, "no MCP servers"},
		{"opencode without config", func(o *Options) { o.LLMOptions.Provider = "opencode" }, "provider-config-path"},
		{"bad store", func(o *Options) { o.StoreOptions.Type = "sqlite" }, "store.type"},
		{"bad concurrency", func(o *Options) { o.ChatOptions.DispatchConcurrency = 0 }, "dispatch-concurrency"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			o := NewOptions()
			o.LLMOptions.Provider = "openai"
			o.MCPOptions.Servers = []string{"hdf5"}
			tc.mutate(o)
			err := o.ValidationError()
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("err = %v, want it to mention %q", err, tc.wantErr)
			}
		})
	}

	o := NewOptions()
	o.LLMOptions.Provider = "openai"
	o.MCPOptions.Servers = []string{"hdf5"}
	if err := o.ValidationError(); err != nil {
		t.Errorf("valid options rejected: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	if err == nil || !strings.Contains(err.Error(), "configuration file not found") {
		t.Errorf("err = %v", err)
	}
}

package options

import (
	"errors"

	genericoptions "github.com/kiosk404/warp/internal/pkg/options"
	"github.com/kiosk404/warp/pkg/utils/cliflag"
	"github.com/kiosk404/warp/pkg/utils/json"
)

// Options is the whole wrp configuration, one field per YAML section.
type Options struct {
	LLMOptions     *LLMOptions                    `json:"llm"     mapstructure:"llm"`
	MCPOptions     *MCPOptions                    `json:"mcp"     mapstructure:"mcp"`
	ChatOptions    *ChatOptions                   `json:"chat"    mapstructure:"chat"`
	StoreOptions   *StoreOptions                  `json:"store"   mapstructure:"store"`
	LogOptions     *genericoptions.LogOptions     `json:"log"     mapstructure:"log"`
	MetricsOptions *genericoptions.MetricsOptions `json:"metrics" mapstructure:"metrics"`
}

func NewOptions() *Options {
	return &Options{
		LLMOptions:     NewLLMOptions(),
		MCPOptions:     NewMCPOptions(),
		ChatOptions:    NewChatOptions(),
		StoreOptions:   NewStoreOptions(),
		LogOptions:     genericoptions.NewLogOptions(),
		MetricsOptions: genericoptions.NewMetricsOptions(),
	}
}

func (o *Options) Flags() (fss cliflag.NamedFlagSets) {
	o.LLMOptions.AddFlags(fss.FlagSet("llm"))
	o.MCPOptions.AddFlags(fss.FlagSet("mcp"))
	o.ChatOptions.AddFlags(fss.FlagSet("chat"))
	o.StoreOptions.AddFlags(fss.FlagSet("store"))
	o.LogOptions.AddFlags(fss.FlagSet("log"))
	o.MetricsOptions.AddFlags(fss.FlagSet("metrics"))
	return fss
}

// Complete set default Options.
func (o *Options) Complete() error {
	o.LLMOptions.Complete()
	if o.ChatOptions.Verbose && o.LogOptions.Level == genericoptions.NewLogOptions().Level {
		o.LogOptions.Level = "debug"
	}
	return nil
}

// Validate checks every section and returns all problems found.
func (o *Options) Validate() []error {
	var errs []error
	errs = append(errs, o.LLMOptions.Validate()...)
	errs = append(errs, o.MCPOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.StoreOptions.Validate()...)
	errs = append(errs, o.LogOptions.Validate()...)
	errs = append(errs, o.MetricsOptions.Validate()...)
	return errs
}

// ValidationError joins the result of Validate into one error, or nil.
func (o *Options) ValidationError() error {
	return errors.Join(o.Validate()...)
}

func (o *Options) String() string {
	data, _ := json.Marshal(o)

	return string(data)
}

package options

import (
	"fmt"
	"time"

	"github.com/kiosk404/warp/internal/wrp/service/agents"
	"github.com/spf13/pflag"
)

// ChatOptions tune the query loop.
type ChatOptions struct {
	Verbose             bool          `json:"verbose" mapstructure:"verbose"`
	DispatchConcurrency int           `json:"dispatch-concurrency" mapstructure:"dispatch-concurrency"`
	QueryTimeout        time.Duration `json:"query-timeout" mapstructure:"query-timeout"`
}

func NewChatOptions() *ChatOptions {
	return &ChatOptions{DispatchConcurrency: 1}
}

func (o *ChatOptions) Validate() []error {
	var errs []error
	if o.DispatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("chat.dispatch-concurrency must be at least 1"))
	}
	if o.QueryTimeout < 0 {
		errs = append(errs, fmt.Errorf("chat.query-timeout must not be negative"))
	}
	return errs
}

func (o *ChatOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVarP(&o.Verbose, "chat.verbose", "v", o.Verbose, "Show tool calls and their results in responses.")
	fs.IntVar(&o.DispatchConcurrency, "chat.dispatch-concurrency", o.DispatchConcurrency, "Run up to this many tool calls of one reply in parallel.")
	fs.DurationVar(&o.QueryTimeout, "chat.query-timeout", o.QueryTimeout, "Timeout of a whole query. Zero means none.")
}

func (o *ChatOptions) ApplyTo(c *agents.Config) error {
	c.Verbose = o.Verbose
	c.DispatchConcurrency = o.DispatchConcurrency
	c.QueryTimeout = o.QueryTimeout
	return nil
}

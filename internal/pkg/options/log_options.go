package options

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

// LogOptions configures the process logger.
type LogOptions struct {
	// Level is one of trace, debug, info, warn, error. Default: warn.
	Level string `json:"level" mapstructure:"level"`
	// File receives log lines instead of stderr when set.
	File string `json:"file" mapstructure:"file"`
}

func NewLogOptions() *LogOptions {
	return &LogOptions{Level: "warn"}
}

func (o *LogOptions) Validate() []error {
	var errs []error
	if _, err := logrus.ParseLevel(o.Level); err != nil {
		errs = append(errs, fmt.Errorf("invalid log level %q", o.Level))
	}
	return errs
}

func (o *LogOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Level, "log.level", o.Level, "Log level: trace, debug, info, warn or error.")
	fs.StringVar(&o.File, "log.file", o.File, "Write logs to this file instead of stderr.")
}

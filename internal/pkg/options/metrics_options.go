package options

import (
	"fmt"
	"net"

	"github.com/spf13/pflag"
)

// MetricsOptions configures the Prometheus endpoint.
type MetricsOptions struct {
	// Addr is the listen address of /metrics. Empty disables the endpoint.
	Addr string `json:"addr" mapstructure:"addr"`
}

func NewMetricsOptions() *MetricsOptions {
	return &MetricsOptions{}
}

func (o *MetricsOptions) Validate() []error {
	if o.Addr == "" {
		return nil
	}
	if _, _, err := net.SplitHostPort(o.Addr); err != nil {
		return []error{fmt.Errorf("invalid metrics address %q: %w", o.Addr, err)}
	}
	return nil
}

func (o *MetricsOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Addr, "metrics.addr", o.Addr, "Serve Prometheus metrics on this address, e.g. :9090.")
}

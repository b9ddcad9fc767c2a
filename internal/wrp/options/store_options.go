package options

import (
	"fmt"

	"github.com/kiosk404/warp/internal/wrp/service/agents"
	"github.com/spf13/pflag"
)

// StoreOptions select where session transcripts are kept.
type StoreOptions struct {
	Type       string `json:"type" mapstructure:"type"`
	BoltDBPath string `json:"boltdb-path" mapstructure:"boltdb-path"`
}

func NewStoreOptions() *StoreOptions {
	return &StoreOptions{
		Type:       agents.StoreInMemory,
		BoltDBPath: "data/wrp.db",
	}
}

func (o *StoreOptions) Validate() []error {
	switch o.Type {
	case agents.StoreInMemory, agents.StoreBoltDB:
		return nil
	}
	return []error{fmt.Errorf("invalid store.type %q, must be %q or %q", o.Type, agents.StoreInMemory, agents.StoreBoltDB)}
}

func (o *StoreOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.Type, "store.type", o.Type, "Transcript store: inmemory or boltdb.")
	fs.StringVar(&o.BoltDBPath, "store.boltdb-path", o.BoltDBPath, "BoltDB file used when store.type is boltdb.")
}

func (o *StoreOptions) ApplyTo(c *agents.Config) error {
	c.StoreType = o.Type
	c.BoltDBPath = o.BoltDBPath
	return nil
}

package see

import (
	"flag"
	"io"
	"os"

	"github.com/robotalks/courier/pkg/sim"
)

// Config represents configuration for see.
type Config struct {
	// Enabled streams the world to Out.
	Enabled bool `yaml:"enabled" env:"COURIER_SEE"`
	// Out receives one JSON array of messages per change, stdout if nil.
	Out io.Writer `yaml:"-"`
}

var defaultConfig = Config{}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.BoolVar(&defaultConfig.Enabled, "see", defaultConfig.Enabled, "Stream the simulated world for github.com/robotalks/see on stdout.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a default config.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewAdapter creates adapter from config.
func (c *Config) NewAdapter(world sim.World) *Adapter {
	out := c.Out
	if out == nil {
		out = os.Stdout
	}
	return NewAdapter(world, out)
}

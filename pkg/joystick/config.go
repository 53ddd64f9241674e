package joystick

import (
	"flag"
	"time"
)

// Config defines the configurations for the remote.
type Config struct {
	DeviceIndex int
	Verbose     bool
	// Heartbeat is the interval of heartbeats while the vehicle moves.
	Heartbeat time.Duration
	Deadzone  int
}

// DefaultHeartbeat keeps a moving vehicle well within the link timeout.
const DefaultHeartbeat = 500 * time.Millisecond

var defaultConfig = Config{
	DeviceIndex: -1,
	Heartbeat:   DefaultHeartbeat,
	Deadzone:    DefaultDeadzone,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.DeviceIndex, "device", defaultConfig.DeviceIndex, "Device index, -1 for auto detection.")
	flag.BoolVar(&defaultConfig.Verbose, "verbose", defaultConfig.Verbose, "Print Joystick events.")
	flag.DurationVar(&defaultConfig.Heartbeat, "heartbeat", defaultConfig.Heartbeat, "Heartbeat interval while moving, 0 to disable.")
	flag.IntVar(&defaultConfig.Deadzone, "deadzone", defaultConfig.Deadzone, "Absolute axis value considered centered.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewController creates a controller sending tokens with sender.
func (c *Config) NewController(sender Sender) *Controller {
	ctl := NewController(sender)
	ctl.DeviceIndex = c.DeviceIndex
	ctl.Verbose = c.Verbose
	ctl.Heartbeat = c.Heartbeat
	ctl.Mapper.Deadzone = c.Deadzone
	return ctl
}

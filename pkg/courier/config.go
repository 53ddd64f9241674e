package courier

import (
	"flag"
	"time"
)

// Config defines the configuration of the navigation controller.
type Config struct {
	HistoryCapacity   int            `yaml:"history_capacity" env:"COURIER_HISTORY_CAPACITY"`
	Overflow          OverflowPolicy `yaml:"history_overflow" env:"COURIER_HISTORY_OVERFLOW"`
	WatchdogTimeout   time.Duration  `yaml:"watchdog_timeout" env:"COURIER_WATCHDOG_TIMEOUT"`
	ObstacleThreshold uint           `yaml:"obstacle_threshold_cm" env:"COURIER_OBSTACLE_THRESHOLD_CM"`
	// ExcludePausedTime subtracts obstacle pauses from recorded segments.
	ExcludePausedTime bool `yaml:"exclude_paused_time" env:"COURIER_EXCLUDE_PAUSED_TIME"`
}

// Defaults
const (
	DefaultHistoryCapacity   = 300
	DefaultWatchdogTimeout   = 5 * time.Second
	DefaultObstacleThreshold = 10
)

var defaultConfig = Config{
	HistoryCapacity:   DefaultHistoryCapacity,
	Overflow:          OverflowDrop,
	WatchdogTimeout:   DefaultWatchdogTimeout,
	ObstacleThreshold: DefaultObstacleThreshold,
	ExcludePausedTime: true,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.IntVar(&defaultConfig.HistoryCapacity, "history", defaultConfig.HistoryCapacity, "Maximum number of recorded moves.")
	flag.Var(&defaultConfig.Overflow, "history-overflow", "What to do when move history is full: drop, evict-oldest.")
	flag.DurationVar(&defaultConfig.WatchdogTimeout, "link-timeout", defaultConfig.WatchdogTimeout, "Silence on the command link before driving back.")
	flag.UintVar(&defaultConfig.ObstacleThreshold, "obstacle-cm", defaultConfig.ObstacleThreshold, "Distance (cm) under which motion pauses.")
	flag.BoolVar(&defaultConfig.ExcludePausedTime, "exclude-paused-time", defaultConfig.ExcludePausedTime, "Exclude obstacle pauses from recorded move durations.")
}

// Set implements flag.Value.
func (p *OverflowPolicy) Set(s string) error {
	return p.UnmarshalText([]byte(s))
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

// NewController creates a Controller using the config.
func (c *Config) NewController(ticks TickSource, motion MotionActuator, ranger RangeSensor, restarter Restarter) *Controller {
	return NewController(*c, ticks, motion, ranger, restarter)
}

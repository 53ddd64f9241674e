package car

import (
	"flag"

	"github.com/robotalks/courier/pkg/sim"
)

// Config defines the simulated vehicle and its arena.
type Config struct {
	// Size (mm) of the square chassis.
	Size float64 `yaml:"size" env:"COURIER_SIM_CAR_SIZE"`
	// DriveSpeedMax (mm/s) at the top gear.
	DriveSpeedMax float64 `yaml:"drive_speed_max" env:"COURIER_SIM_DRIVE_SPEED_MAX"`
	// TurnSpeedMax (degrees/s) at the top gear.
	TurnSpeedMax float64 `yaml:"turn_speed_max" env:"COURIER_SIM_TURN_SPEED_MAX"`
	// Accel (mm/s^2), 0 changes speed immediately.
	Accel      float64    `yaml:"accel" env:"COURIER_SIM_ACCEL"`
	RangeMaxCm uint16     `yaml:"range_max_cm" env:"COURIER_SIM_RANGE_MAX_CM"`
	ArenaW     float64    `yaml:"arena_w" env:"COURIER_SIM_ARENA_W"`
	ArenaH     float64    `yaml:"arena_h" env:"COURIER_SIM_ARENA_H"`
	Obstacles  []sim.Rect `yaml:"obstacles"`
}

// Defaults
const (
	DefaultSize          float64 = 150
	DefaultDriveSpeedMax float64 = 500
	DefaultTurnSpeedMax  float64 = 180
	DefaultRangeMaxCm    uint16  = 400
	DefaultArenaSize     float64 = 5000
)

var defaultConfig = Config{
	Size:          DefaultSize,
	DriveSpeedMax: DefaultDriveSpeedMax,
	TurnSpeedMax:  DefaultTurnSpeedMax,
	RangeMaxCm:    DefaultRangeMaxCm,
	ArenaW:        DefaultArenaSize,
	ArenaH:        DefaultArenaSize,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Size, "car-size", defaultConfig.Size, "Size (mm) of the car, it's square.")
	flag.Float64Var(&defaultConfig.DriveSpeedMax, "drive-speed-max", defaultConfig.DriveSpeedMax, "Drive speed (mm/s) at the top gear.")
	flag.Float64Var(&defaultConfig.TurnSpeedMax, "turn-speed-max", defaultConfig.TurnSpeedMax, "Turn speed (degrees/s) at the top gear.")
	flag.Float64Var(&defaultConfig.Accel, "accel", defaultConfig.Accel, "Acceleration (mm/s^2), 0 for immediate.")
	flag.Float64Var(&defaultConfig.ArenaW, "arena-w", defaultConfig.ArenaW, "Width (mm) of the arena.")
	flag.Float64Var(&defaultConfig.ArenaH, "arena-h", defaultConfig.ArenaH, "Height (mm) of the arena.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates the default configuration.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewChassis creates the Chassis.
func (c *Config) NewChassis(name string) *Chassis {
	return NewChassis(name, *c)
}

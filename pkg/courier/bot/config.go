package bot

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v2"

	"github.com/robotalks/courier/pkg/courier"
	"github.com/robotalks/courier/pkg/l1/env/controller"
	"github.com/robotalks/courier/pkg/link"
	"github.com/robotalks/courier/pkg/sim/car"
	"github.com/robotalks/courier/pkg/sim/visualization/see"
	"github.com/robotalks/courier/pkg/supervisor"
	"github.com/robotalks/courier/pkg/timing"
)

// ConfigEnv names the environment variable of the config file.
const ConfigEnv = "COURIER_CONFIG"

// Config aggregates the configurations of all components of the vehicle.
// The sections point to the package defaults so flags registered by each
// package share the same values.
type Config struct {
	Courier    *courier.Config    `yaml:"courier"`
	Timing     *timing.Config     `yaml:"timing"`
	Link       *link.Config       `yaml:"link"`
	Car        *car.Config        `yaml:"sim"`
	L1         *controller.Config `yaml:"l1"`
	Supervisor *supervisor.Config `yaml:"supervisor"`
	See        *see.Config        `yaml:"see"`

	LoopInterval time.Duration `yaml:"loop_interval" env:"COURIER_LOOP_INTERVAL"`
}

// DefaultLoopInterval is the period of the main loop when idle.
const DefaultLoopInterval = 50 * time.Millisecond

var (
	defaultConfig = Config{
		Courier:      courier.Default(),
		Timing:       timing.Default(),
		Link:         link.Default(),
		Car:          car.Default(),
		L1:           controller.Default(),
		Supervisor:   supervisor.Default(),
		See:          see.Default(),
		LoopInterval: DefaultLoopInterval,
	}

	configFile string
)

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetupFlags sets command line flags of all components. Call LoadDefaults
// first so the flags default to the loaded values.
func SetupFlags() {
	courier.SetupFlags()
	timing.SetupFlags()
	link.SetupFlags()
	car.SetupFlags()
	controller.SetupFlags()
	supervisor.SetupFlags()
	see.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "YAML config file, also "+ConfigEnv+".")
	flag.DurationVar(&defaultConfig.LoopInterval, "loop-interval", defaultConfig.LoopInterval, "Period of the main loop.")
}

// LoadDefaults loads the config file and then the environment into the
// default configurations. The file is named by -config in args or by
// COURIER_CONFIG.
func LoadDefaults(args []string) error {
	configFile = os.Getenv(ConfigEnv)
	if fn := configArg(args); fn != "" {
		configFile = fn
	}
	return defaultConfig.Load(configFile)
}

// Load reads the YAML file if fn isn't empty and then the environment.
func (c *Config) Load(fn string) error {
	if fn != "" {
		data, err := ioutil.ReadFile(fn)
		if err != nil {
			return err
		}
		if err := yaml.UnmarshalStrict(data, c); err != nil {
			return fmt.Errorf("config %s: %w", fn, err)
		}
	}
	if err := env.Parse(c); err != nil {
		return fmt.Errorf("config from env: %w", err)
	}
	return nil
}

// configArg finds -config before flags are parsed.
func configArg(args []string) string {
	for n, arg := range args {
		if arg == "--" {
			break
		}
		name := strings.TrimLeft(arg, "-")
		if name == arg {
			continue
		}
		if strings.HasPrefix(name, "config=") {
			return name[len("config="):]
		}
		if name == "config" && n+1 < len(args) {
			return args[n+1]
		}
	}
	return ""
}

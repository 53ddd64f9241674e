package supervisor

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
)

// Mode selects how a restart is carried out.
type Mode string

// Restart modes
const (
	// ModeReboot cancels the running system and boots it again in-process.
	ModeReboot Mode = "reboot"
	// ModeExec replaces the process image with a fresh one.
	ModeExec Mode = "exec"
	// ModeExit stops supervising and returns ErrRestartExit.
	ModeExit Mode = "exit"
)

// Set implements flag.Value.
func (m *Mode) Set(s string) error {
	switch Mode(s) {
	case ModeReboot, ModeExec, ModeExit:
		*m = Mode(s)
		return nil
	}
	return fmt.Errorf("unknown restart mode %q", s)
}

func (m Mode) String() string {
	return string(m)
}

// ErrRestartExit is returned by Run when a restart is requested in ModeExit.
var ErrRestartExit = errors.New("restart requested")

// BootFunc boots the system and runs it until ctx is canceled. The
// Restarter is valid for this boot only.
type BootFunc func(ctx context.Context, restarter courier.Restarter) error

// Config defines the supervisor configuration.
type Config struct {
	Mode Mode `yaml:"restart_mode" env:"COURIER_RESTART_MODE"`
	// Delay is the pause between shutdown and the next boot.
	Delay time.Duration `yaml:"restart_delay" env:"COURIER_RESTART_DELAY"`
	// MaxRestarts limits reboots, 0 is unlimited.
	MaxRestarts int `yaml:"max_restarts" env:"COURIER_MAX_RESTARTS"`
}

var defaultConfig = Config{
	Mode:  ModeReboot,
	Delay: time.Second,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Var(&defaultConfig.Mode, "restart", "How to restart after retracing: reboot, exec, exit.")
	flag.DurationVar(&defaultConfig.Delay, "restart-delay", defaultConfig.Delay, "Delay before booting again.")
	flag.IntVar(&defaultConfig.MaxRestarts, "max-restarts", defaultConfig.MaxRestarts, "Maximum number of reboots, 0 for unlimited.")
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

// Supervisor plays the role of the reset line: it boots the system and
// boots it again when asked to.
type Supervisor struct {
	Config Config

	lock     sync.Mutex
	gen      int
	restarts int
	exec     func(argv0 string, argv []string, envv []string) error
}

// New creates a Supervisor.
func New(conf Config) *Supervisor {
	if conf.Mode == "" {
		conf.Mode = ModeReboot
	}
	return &Supervisor{Config: conf, exec: syscall.Exec}
}

// NewSupervisor creates a Supervisor using the config.
func (c *Config) NewSupervisor() *Supervisor {
	return New(*c)
}

// Restarts returns the number of completed reboots.
func (s *Supervisor) Restarts() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.restarts
}

// restarter requests a restart of one boot. Requests from a previous boot
// go nowhere.
type restarter struct {
	reqCh chan struct{}
}

// Restart implements courier.Restarter. It never blocks.
func (r *restarter) Restart() {
	select {
	case r.reqCh <- struct{}{}:
	default:
	}
}

// Run boots the system and supervises it until ctx is canceled, the system
// fails or a restart can't be carried out.
func (s *Supervisor) Run(ctx context.Context, boot BootFunc) error {
	for {
		s.lock.Lock()
		s.gen++
		gen := s.gen
		s.lock.Unlock()

		glog.Infof("boot #%d", gen)
		bootCtx, cancel := context.WithCancel(ctx)
		errCh := make(chan error, 1)
		r := &restarter{reqCh: make(chan struct{}, 1)}
		go func() {
			errCh <- boot(bootCtx, r)
		}()

		select {
		case err := <-errCh:
			cancel()
			if err == context.Canceled && ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		case <-ctx.Done():
			cancel()
			<-errCh
			return ctx.Err()
		case <-r.reqCh:
		}

		glog.Infof("restart requested by boot #%d, shutting down", gen)
		cancel()
		if err := <-errCh; err != nil && err != context.Canceled {
			glog.Warningf("shutdown: %v", err)
		}
		if err := s.restart(ctx); err != nil {
			return err
		}
	}
}

func (s *Supervisor) restart(ctx context.Context) error {
	switch s.Config.Mode {
	case ModeExit:
		return ErrRestartExit
	case ModeExec:
		exe, err := os.Executable()
		if err != nil {
			return fmt.Errorf("restart: %w", err)
		}
		glog.Infof("exec %s", exe)
		glog.Flush()
		return s.exec(exe, os.Args, os.Environ())
	}
	s.lock.Lock()
	s.restarts++
	restarts := s.restarts
	s.lock.Unlock()
	if max := s.Config.MaxRestarts; max > 0 && restarts > max {
		return fmt.Errorf("restarted %d times, giving up", max)
	}
	if s.Config.Delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.Config.Delay):
		}
	}
	return nil
}

package timing

import (
	"context"
	"flag"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
)

// DefaultInterval matches an 8-bit timer overflow at 8MHz with a /256
// prescaler.
const DefaultInterval = 8192 * time.Microsecond

// Config defines the software timer.
type Config struct {
	Interval time.Duration `yaml:"tick" env:"COURIER_TICK"`
}

var defaultConfig = Config{Interval: DefaultInterval}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.DurationVar(&defaultConfig.Interval, "tick", defaultConfig.Interval, "Tick interval of the navigation timer.")
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

// NewSource creates a Source using the config.
func (c *Config) NewSource() *Source {
	return NewSource(c.Interval)
}

// Source is a software courier.TickSource. Ticks are fired by Run.
type Source struct {
	Interval time.Duration

	lock      sync.Mutex
	handler   courier.TickHandler
	enabled   bool
	due       time.Time
	remaining time.Duration
	epoch     time.Time
	fired     uint64
	wakeCh    chan struct{}
	now       func() time.Time
}

// NewSource creates a disabled Source. Zero interval uses the default.
func NewSource(interval time.Duration) *Source {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Source{
		Interval:  interval,
		remaining: interval,
		wakeCh:    make(chan struct{}, 1),
		now:       time.Now,
	}
	s.epoch = s.now()
	return s
}

// SetHandler implements courier.TickSource.
func (s *Source) SetHandler(h courier.TickHandler) {
	s.lock.Lock()
	s.handler = h
	s.lock.Unlock()
}

// Preload implements courier.TickSource.
func (s *Source) Preload(subTicks uint32) {
	subTicks %= courier.SubTicksPerTick
	d := s.Interval * time.Duration(courier.SubTicksPerTick-subTicks) / time.Duration(courier.SubTicksPerTick)
	s.lock.Lock()
	if s.enabled {
		s.due = s.now().Add(d)
	} else {
		s.remaining = d
	}
	s.lock.Unlock()
	s.wakeUp()
}

// Enable implements courier.TickSource.
func (s *Source) Enable() {
	s.lock.Lock()
	if !s.enabled {
		s.enabled = true
		s.due = s.now().Add(s.remaining)
	}
	s.lock.Unlock()
	s.wakeUp()
}

// Disable implements courier.TickSource. The time left until the next tick
// is kept for Enable.
func (s *Source) Disable() {
	s.lock.Lock()
	if s.enabled {
		s.enabled = false
		s.remaining = s.due.Sub(s.now())
		if s.remaining < 0 {
			s.remaining = 0
		}
	}
	s.lock.Unlock()
	s.wakeUp()
}

// Elapsed implements courier.TickSource.
func (s *Source) Elapsed() courier.Elapsed {
	s.lock.Lock()
	d := s.now().Sub(s.epoch)
	s.lock.Unlock()
	if d < 0 {
		d = 0
	}
	return courier.ElapsedOf(uint64(d) * uint64(courier.SubTicksPerTick) / uint64(s.Interval))
}

// ResetElapsed implements courier.TickSource.
func (s *Source) ResetElapsed() {
	s.lock.Lock()
	s.epoch = s.now()
	s.lock.Unlock()
}

// Resolution implements courier.TickSource.
func (s *Source) Resolution() time.Duration {
	return s.Interval
}

// Fired returns the number of ticks delivered to the handler.
func (s *Source) Fired() uint64 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.fired
}

// Run implements framework.Runnable. The handler is invoked from this
// goroutine without holding any lock of the Source, so it may call back.
func (s *Source) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		s.lock.Lock()
		enabled, due := s.enabled, s.due
		s.lock.Unlock()

		var timeCh <-chan time.Time
		if enabled {
			resetTimer(timer, due.Sub(s.now()))
			timeCh = timer.C
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.wakeCh:
		case <-timeCh:
			if h := s.fire(); h != nil {
				h.Tick()
			}
		}
	}
}

// fire advances the schedule if a tick is due and returns the handler.
func (s *Source) fire() courier.TickHandler {
	s.lock.Lock()
	defer s.lock.Unlock()
	now := s.now()
	if !s.enabled || now.Before(s.due) {
		return nil
	}
	s.due = s.due.Add(s.Interval)
	if behind := now.Sub(s.due); behind > s.Interval {
		// never burst to catch up after a stall.
		glog.V(3).Infof("tick source %s behind", behind)
		s.due = now.Add(s.Interval)
	}
	s.fired++
	return s.handler
}

func (s *Source) wakeUp() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	if d < 0 {
		d = 0
	}
	t.Reset(d)
}

package courier

import (
	"fmt"
	"time"
)

// Mode is the drive direction of the chassis.
type Mode uint8

// Modes
const (
	// ModeStop is also the no-op mode: nothing to reverse.
	ModeStop Mode = iota
	ModeForward
	ModeBackward
	ModeSteerRight
	ModeSteerLeft
)

// Inverse returns the mode which undoes m.
func (m Mode) Inverse() Mode {
	switch m {
	case ModeForward:
		return ModeBackward
	case ModeBackward:
		return ModeForward
	case ModeSteerRight:
		return ModeSteerLeft
	case ModeSteerLeft:
		return ModeSteerRight
	}
	return ModeStop
}

func (m Mode) String() string {
	switch m {
	case ModeStop:
		return "STOP"
	case ModeForward:
		return "FORWARD"
	case ModeBackward:
		return "BACKWARD"
	case ModeSteerRight:
		return "STEER_RIGHT"
	case ModeSteerLeft:
		return "STEER_LEFT"
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Gear is a discrete speed level.
type Gear uint8

// Gear limits
const (
	MinGear Gear = 1
	MaxGear Gear = 5
)

// IsValid checks the gear is within [MinGear, MaxGear].
func (g Gear) IsValid() bool {
	return g >= MinGear && g <= MaxGear
}

// SubTicksPerTick is the resolution of the sub-tick counter.
const SubTicksPerTick uint32 = 256

// Elapsed is a duration measured in ticks plus a sub-tick remainder.
type Elapsed struct {
	Ticks    uint32
	SubTicks uint32
}

// ElapsedOf normalizes a sub-tick count into Elapsed.
func ElapsedOf(subTicks uint64) Elapsed {
	return Elapsed{
		Ticks:    uint32(subTicks / uint64(SubTicksPerTick)),
		SubTicks: uint32(subTicks % uint64(SubTicksPerTick)),
	}
}

// InSubTicks returns the total number of sub-ticks.
func (e Elapsed) InSubTicks() uint64 {
	return uint64(e.Ticks)*uint64(SubTicksPerTick) + uint64(e.SubTicks)
}

// Sub subtracts d and saturates at zero.
func (e Elapsed) Sub(d Elapsed) Elapsed {
	a, b := e.InSubTicks(), d.InSubTicks()
	if b >= a {
		return Elapsed{}
	}
	return ElapsedOf(a - b)
}

// Add adds d.
func (e Elapsed) Add(d Elapsed) Elapsed {
	return ElapsedOf(e.InSubTicks() + d.InSubTicks())
}

// Period converts the Elapsed into a tick count and a sub-tick preload so
// that Ticks firings after preloading the counter cover exactly e.
func (e Elapsed) Period() Period {
	if e.SubTicks == 0 {
		return Period{Ticks: e.Ticks}
	}
	return Period{Ticks: e.Ticks + 1, Preload: SubTicksPerTick - e.SubTicks}
}

// Duration converts to time.Duration given the tick resolution.
func (e Elapsed) Duration(tick time.Duration) time.Duration {
	return time.Duration(e.InSubTicks()) * tick / time.Duration(SubTicksPerTick)
}

func (e Elapsed) String() string {
	return fmt.Sprintf("%d+%d/%d", e.Ticks, e.SubTicks, SubTicksPerTick)
}

// Period is a tick threshold with the sub-tick preload applied before the
// first tick.
type Period struct {
	Ticks   uint32
	Preload uint32
}

// PeriodOf computes the Period covering d with the given tick resolution.
// Fractional ticks are rounded up and compensated with the preload.
func PeriodOf(d, tick time.Duration) Period {
	if tick <= 0 {
		return Period{}
	}
	subTicks := uint64(d) * uint64(SubTicksPerTick) / uint64(tick)
	return ElapsedOf(subTicks).Period()
}

// MoveRecord is one recorded driving segment. Mode is the reverse of the
// executed action.
type MoveRecord struct {
	Mode    Mode
	Gear    Gear
	Elapsed Elapsed
}

func (r MoveRecord) String() string {
	return fmt.Sprintf("%s@%d for %s", r.Mode, r.Gear, r.Elapsed)
}

// NavigationState is the state of the navigation controller.
type NavigationState int

// Navigation states
const (
	Driving NavigationState = iota
	Reversing
	Idle
)

func (s NavigationState) String() string {
	switch s {
	case Driving:
		return "DRIVING"
	case Reversing:
		return "REVERSING"
	case Idle:
		return "IDLE"
	}
	return fmt.Sprintf("NavigationState(%d)", int(s))
}

// ConnectionState reflects the liveness of the command link.
type ConnectionState int

// Connection states
const (
	Connected ConnectionState = iota
	Lost
)

func (s ConnectionState) String() string {
	if s == Lost {
		return "LOST"
	}
	return "CONNECTED"
}

// ActiveHandler selects which component consumes ticks.
type ActiveHandler int

// Tick handlers
const (
	HandlerWatchdog ActiveHandler = iota
	HandlerPlayback
	HandlerNone
)

func (h ActiveHandler) String() string {
	switch h {
	case HandlerWatchdog:
		return "watchdog"
	case HandlerPlayback:
		return "playback"
	}
	return "none"
}

// TickHandler is invoked once per tick.
type TickHandler interface {
	Tick()
}

// TickFunc is the func form of TickHandler.
type TickFunc func()

// Tick implements TickHandler.
func (f TickFunc) Tick() { f() }

// TickSource is the periodic tick source. Handler is invoked once per tick
// while enabled. The elapsed clock keeps running while disabled.
type TickSource interface {
	// SetHandler installs the handler invoked on each tick.
	SetHandler(TickHandler)
	// Preload advances the sub-tick counter so the next tick fires after
	// SubTicksPerTick-subTicks sub-ticks.
	Preload(subTicks uint32)
	// Enable resumes ticking where Disable paused it.
	Enable()
	// Disable pauses ticking.
	Disable()
	// Elapsed returns the time since the last ResetElapsed.
	Elapsed() Elapsed
	// ResetElapsed restarts the elapsed clock.
	ResetElapsed()
	// Resolution is the duration of one tick.
	Resolution() time.Duration
}

// MotionActuator drives a differential two-motor chassis.
type MotionActuator interface {
	Forward()
	Backward()
	Stop()
	TurnLeft()
	TurnRight()
	SetGear(Gear)
}

// RangeSensor reads obstacle distances synchronously.
type RangeSensor interface {
	ReadFrontCm() (uint16, error)
	ReadBackCm() (uint16, error)
}

// Restarter returns the system to its boot sequence.
type Restarter interface {
	Restart()
}

// RestartFunc is the func form of Restarter.
type RestartFunc func()

// Restart implements Restarter.
func (f RestartFunc) Restart() { f() }

// Display shows text received over the link.
type Display interface {
	Clear()
	Print(string)
}

// Buzzer is switched on/off over the link.
type Buzzer interface {
	SetBuzzer(on bool)
}

// Drive applies mode to the actuator.
func Drive(a MotionActuator, mode Mode) {
	switch mode {
	case ModeForward:
		a.Forward()
	case ModeBackward:
		a.Backward()
	case ModeSteerRight:
		a.TurnRight()
	case ModeSteerLeft:
		a.TurnLeft()
	default:
		a.Stop()
	}
}

package courier

import (
	"sync"

	"github.com/golang/glog"
)

// Controller is the navigation controller of the vehicle. It records the
// moves commanded over the link, replays them in reverse on request or when
// the link is lost, and pauses motion in front of obstacles.
//
// HandleCommand and PollObstacles run in the main loop, Tick runs in the
// tick source context. All of them are serialized by the controller.
type Controller struct {
	Config    Config
	Ticks     TickSource
	Motion    MotionActuator
	Ranger    RangeSensor
	Restarter Restarter
	Display   Display
	Buzzer    Buzzer

	lock     sync.Mutex
	nav      NavigationState
	conn     ConnectionState
	active   ActiveHandler
	inbound  bool
	history  *History
	drive    driveState
	recorder recorder
	playback playback
	watchdog watchdog
	gate     obstacleGate
	changed  bool
}

// driveState is what the actuator is commanded to do.
type driveState struct {
	mode Mode
	gear Gear
}

// Status is a snapshot of the controller.
type Status struct {
	Navigation NavigationState
	Connection ConnectionState
	Handler    ActiveHandler
	Mode       Mode
	Gear       Gear
	History    int
	Capacity   int
	Dropped    int
	Paused     bool
	Inbound    bool
}

// NewController creates a Controller in Driving state.
func NewController(conf Config, ticks TickSource, motion MotionActuator, ranger RangeSensor, restarter Restarter) *Controller {
	if conf.ObstacleThreshold == 0 {
		conf.ObstacleThreshold = DefaultObstacleThreshold
	}
	c := &Controller{
		Config:    conf,
		Ticks:     ticks,
		Motion:    motion,
		Ranger:    ranger,
		Restarter: restarter,
		nav:       Driving,
		conn:      Connected,
		active:    HandlerWatchdog,
		inbound:   true,
		history:   NewHistory(conf.HistoryCapacity, conf.Overflow),
		drive:     driveState{mode: ModeStop, gear: MinGear},
		changed:   true,
	}
	c.recorder.pending = ModeStop
	c.watchdog.init(PeriodOf(conf.WatchdogTimeout, ticks.Resolution()))
	return c
}

// Start puts the actuator in a known state and starts consuming ticks.
func (c *Controller) Start() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Motion.SetGear(c.drive.gear)
	c.Motion.Stop()
	c.Ticks.SetHandler(c)
	c.Ticks.ResetElapsed()
	c.Ticks.Preload(c.watchdog.period.Preload)
	c.Ticks.Enable()
	glog.Infof("navigation started: watchdog every %d ticks, history capacity %d",
		c.watchdog.period.Ticks, c.history.Cap())
}

// Tick implements TickHandler and dispatches to the active handler.
func (c *Controller) Tick() {
	c.lock.Lock()
	defer c.lock.Unlock()
	switch c.active {
	case HandlerWatchdog:
		c.watchdogTick()
	case HandlerPlayback:
		c.playbackTick()
	}
}

// Status returns the current status.
func (c *Controller) Status() Status {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.status()
}

// StatusChange returns the status if it changed since last call.
func (c *Controller) StatusChange() (Status, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	changed := c.changed
	c.changed = false
	return c.status(), changed
}

// Records returns the recorded moves from the oldest to the newest.
func (c *Controller) Records() []MoveRecord {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.history.Records()
}

func (c *Controller) status() Status {
	return Status{
		Navigation: c.nav,
		Connection: c.conn,
		Handler:    c.active,
		Mode:       c.drive.mode,
		Gear:       c.drive.gear,
		History:    c.history.Len(),
		Capacity:   c.history.Cap(),
		Dropped:    c.history.Dropped(),
		Paused:     c.gate.paused,
		Inbound:    c.inbound,
	}
}

// apply commands the actuator with the current drive state, unless the
// obstacle gate holds the vehicle in that direction.
func (c *Controller) apply() {
	if c.gate.paused && c.gate.blocks(c.drive.mode, c.Config.ObstacleThreshold) {
		c.Motion.Stop()
		return
	}
	Drive(c.Motion, c.drive.mode)
}

func (c *Controller) setMode(mode Mode) {
	if c.drive.mode != mode {
		c.drive.mode = mode
		c.changed = true
	}
	c.apply()
}

func (c *Controller) setGear(gear Gear) {
	if c.drive.gear != gear {
		c.drive.gear = gear
		c.changed = true
	}
	c.Motion.SetGear(gear)
}

// enterReverse hands the history over to playback. Inbound commands are
// disabled and the history sealed before the playback handler is activated.
func (c *Controller) enterReverse(reason string) {
	if c.nav != Driving {
		return
	}
	c.save()
	c.inbound = false
	c.history.Seal()
	c.nav = Reversing
	c.changed = true
	c.setMode(ModeStop)
	if c.gate.paused {
		// playback re-evaluates obstacles for its own directions.
		c.gate.paused = false
		c.Ticks.Enable()
	}
	c.playback.reset()
	c.active = HandlerPlayback
	c.Ticks.Preload(SubTicksPerTick - 1)
	glog.Infof("reversing %d moves: %s", c.history.Len(), reason)
}

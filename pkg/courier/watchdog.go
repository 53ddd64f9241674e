package courier

import "github.com/golang/glog"

// watchdog declares the link lost after a full period without commands.
type watchdog struct {
	period  Period
	counter uint32
	// alive is set by every inbound command.
	alive bool
	// last is the most recent command.
	last Command
}

func (w *watchdog) init(period Period) {
	w.period = period
	w.alive = true
	// the vehicle boots stopped, waiting for the first command.
	w.last = CmdStop
}

func (w *watchdog) seen(cmd Command) {
	w.alive, w.last = true, cmd
}

func (c *Controller) watchdogTick() {
	w := &c.watchdog
	if w.period.Ticks == 0 {
		return
	}
	w.counter++
	if w.counter < w.period.Ticks {
		return
	}
	w.counter = 0
	c.Ticks.Preload(w.period.Preload)
	switch {
	case !w.alive:
		c.conn = Lost
		c.changed = true
		glog.Warningf("command link lost after %s", c.Config.WatchdogTimeout)
		c.enterReverse("link lost")
	case w.last.KeepsAlive():
		// stopped or showing a message: silence is expected.
	default:
		w.alive = false
	}
}

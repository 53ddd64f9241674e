package courier

import "github.com/golang/glog"

// recorder measures driving segments and pushes their reverse.
type recorder struct {
	// pending is the inverse of the action currently executed.
	pending Mode
	// paused accumulates obstacle pauses within the current segment.
	paused Elapsed
}

// save records the segment which just completed and restarts the elapsed
// clock, whether or not anything is pushed.
func (c *Controller) save() {
	elapsed := c.Ticks.Elapsed()
	if c.Config.ExcludePausedTime {
		paused := c.recorder.paused
		if c.gate.paused {
			paused = paused.Add(elapsed.Sub(c.gate.pausedAt))
		}
		elapsed = elapsed.Sub(paused)
	}
	if c.recorder.pending != ModeStop {
		rec := MoveRecord{Mode: c.recorder.pending, Gear: c.drive.gear, Elapsed: elapsed}
		switch err := c.history.Push(rec); err {
		case nil:
			c.changed = true
			glog.V(3).Infof("recorded %s", rec)
		case ErrHistoryFull:
			c.changed = true
			glog.Warningf("move history full (%d), dropped %s", c.history.Cap(), rec)
		default:
			glog.Warningf("record %s: %v", rec, err)
		}
	}
	c.Ticks.ResetElapsed()
	c.recorder.paused = Elapsed{}
	if c.gate.paused {
		c.gate.pausedAt = Elapsed{}
	}
}

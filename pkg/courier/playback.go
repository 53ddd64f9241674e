package courier

import "github.com/golang/glog"

// playback replays the sealed history, one record per recorded duration.
type playback struct {
	counter uint32
	// target is the tick count of the segment being replayed.
	target uint32
}

func (p *playback) reset() {
	p.counter, p.target = 0, 0
}

func (c *Controller) playbackTick() {
	p := &c.playback
	p.counter++
	if p.counter < p.target {
		return
	}
	p.counter = 0
	var rec MoveRecord
	for {
		r, ok, err := c.history.Pop()
		if err != nil {
			glog.Errorf("playback: %v", err)
			return
		}
		if !ok {
			c.finishPlayback()
			return
		}
		// records of zero length take no time to replay.
		if r.Elapsed.InSubTicks() > 0 {
			rec = r
			break
		}
		glog.V(2).Infof("skipped empty %s", r)
	}
	period := rec.Elapsed.Period()
	p.target = period.Ticks
	c.Ticks.Preload(period.Preload)
	c.setGear(rec.Gear)
	c.setMode(rec.Mode)
	c.changed = true
	glog.V(2).Infof("replaying %s, %d left", rec, c.history.Len())
}

// finishPlayback stops the vehicle and restarts the system. It's reached
// once: the handler is switched off before restarting.
func (c *Controller) finishPlayback() {
	c.setMode(ModeStop)
	c.nav = Idle
	c.active = HandlerNone
	c.changed = true
	c.Ticks.Disable()
	glog.Info("path retraced, restarting")
	if c.Restarter != nil {
		c.Restarter.Restart()
	}
}

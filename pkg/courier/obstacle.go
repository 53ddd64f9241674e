package courier

import "github.com/golang/glog"

// obstacleGate pauses motion while the commanded direction is blocked.
type obstacleGate struct {
	front, back           uint16
	frontValid, backValid bool

	paused bool
	// pausedAt is the elapsed clock reading when the pause started.
	pausedAt Elapsed
}

func (g *obstacleGate) blocks(mode Mode, threshold uint) bool {
	switch mode {
	case ModeForward:
		return g.frontValid && uint(g.front) < threshold
	case ModeBackward:
		return g.backValid && uint(g.back) < threshold
	}
	return false
}

// PollObstacles reads the range sensors and pauses or resumes motion. It's
// called from the main loop. Pausing affects the tick source and the
// actuator only; the history and the elapsed clock are untouched.
func (c *Controller) PollObstacles() {
	if c.Ranger == nil {
		return
	}
	front, frontErr := c.Ranger.ReadFrontCm()
	back, backErr := c.Ranger.ReadBackCm()

	c.lock.Lock()
	defer c.lock.Unlock()
	if c.nav == Idle {
		return
	}
	g := &c.gate
	if frontErr != nil {
		glog.V(2).Infof("front range: %v", frontErr)
	} else {
		g.front, g.frontValid = front, true
	}
	if backErr != nil {
		glog.V(2).Infof("back range: %v", backErr)
	} else {
		g.back, g.backValid = back, true
	}

	blocked := g.blocks(c.drive.mode, c.Config.ObstacleThreshold)
	switch {
	case blocked && !g.paused:
		c.Motion.Stop()
		c.Ticks.Disable()
		g.paused, g.pausedAt = true, c.Ticks.Elapsed()
		c.changed = true
		glog.Infof("obstacle ahead of %s (front %dcm, back %dcm), paused", c.drive.mode, g.front, g.back)
	case !blocked && g.paused:
		c.recorder.paused = c.recorder.paused.Add(c.Ticks.Elapsed().Sub(g.pausedAt))
		g.paused = false
		c.Ticks.Enable()
		Drive(c.Motion, c.drive.mode)
		c.changed = true
		glog.Infof("obstacle cleared, resuming %s", c.drive.mode)
	}
}

package courier

import "github.com/golang/glog"

// HandleCommand dispatches one inbound token. It's called from the main
// loop. Tokens are dropped once reverse playback has taken over.
func (c *Controller) HandleCommand(tok Token) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if !c.inbound {
		glog.V(2).Infof("inbound disabled, dropped %s", tok)
		return
	}
	c.watchdog.seen(tok.Command)
	glog.V(2).Infof("command %s", tok)

	switch cmd := tok.Command; cmd {
	case CmdForward, CmdBackward, CmdStop, CmdSteerRight, CmdSteerLeft:
		mode, _ := cmd.Mode()
		c.setMode(mode)
		c.save()
		c.recorder.pending = mode.Inverse()
	case CmdGearUp:
		c.shiftGear(1)
	case CmdGearDown:
		c.shiftGear(-1)
	case CmdReverse:
		c.enterReverse("reverse requested")
	case CmdClearScreen:
		if c.Display != nil {
			c.Display.Clear()
		}
	case CmdDisplayText:
		if c.Display != nil {
			c.Display.Clear()
			c.Display.Print(tok.Text)
		}
	case CmdBuzzerOn, CmdBuzzerOff:
		if c.Buzzer != nil {
			c.Buzzer.SetBuzzer(cmd == CmdBuzzerOn)
		}
	case CmdHeartbeat:
	default:
		glog.V(2).Infof("ignored unknown command %s", cmd)
	}
}

// shiftGear records the segment driven with the current gear and changes
// gear. Shifting beyond the limits is ignored.
func (c *Controller) shiftGear(delta int) {
	gear := int(c.drive.gear) + delta
	if gear < int(MinGear) || gear > int(MaxGear) {
		return
	}
	c.save()
	c.setGear(Gear(gear))
}

package joystick

import (
	"github.com/robotalks/courier/pkg/courier"
	"github.com/robotalks/courier/pkg/joystick/device"
)

// ButtonAction defines the commands sent when a button is pressed and
// released. Zero means nothing.
type ButtonAction struct {
	Press   courier.Command
	Release courier.Command
}

// Mapper translates joystick events into courier tokens. The drive axis
// takes precedence over the steer axis, and only mode changes are sent.
type Mapper struct {
	// DriveAxes are pushed forward with negative values.
	DriveAxes []int
	SteerAxes []int
	// Deadzone is the absolute axis value considered centered.
	Deadzone int
	Buttons  map[int]ButtonAction

	drive, steer int
	mode         courier.Mode
}

// DefaultDeadzone is a quarter of the axis range.
const DefaultDeadzone = device.AxisValueMax / 4

// NewMapper creates a Mapper with the left stick and the hat driving, and
// buttons 0-4 for gears, reverse, buzzer and clear screen.
func NewMapper() *Mapper {
	return &Mapper{
		DriveAxes: []int{1, 7},
		SteerAxes: []int{0, 6},
		Deadzone:  DefaultDeadzone,
		Buttons: map[int]ButtonAction{
			0: {Press: courier.CmdGearUp},
			1: {Press: courier.CmdGearDown},
			2: {Press: courier.CmdReverse},
			3: {Press: courier.CmdBuzzerOn, Release: courier.CmdBuzzerOff},
			4: {Press: courier.CmdClearScreen},
		},
	}
}

// Mode returns the drive mode last sent.
func (m *Mapper) Mode() courier.Mode {
	return m.mode
}

// Map translates an event. Init events only update the axis state.
func (m *Mapper) Map(ev device.Event) []courier.Token {
	switch e := ev.(type) {
	case device.AxisEvent:
		switch {
		case containsIndex(m.DriveAxes, e.Index()):
			m.drive = m.direction(-e.Value())
		case containsIndex(m.SteerAxes, e.Index()):
			m.steer = m.direction(e.Value())
		default:
			return nil
		}
		if e.IsInit() {
			return nil
		}
		return m.setMode(m.axisMode())
	case device.ButtonEvent:
		if e.IsInit() {
			return nil
		}
		action := m.Buttons[e.Index()]
		cmd := action.Release
		if e.Pressed() {
			cmd = action.Press
		}
		if cmd == 0 {
			return nil
		}
		return []courier.Token{{Command: cmd}}
	}
	return nil
}

// Reset centers the axes and stops the vehicle if it's moving.
func (m *Mapper) Reset() []courier.Token {
	m.drive, m.steer = 0, 0
	return m.setMode(courier.ModeStop)
}

func (m *Mapper) axisMode() courier.Mode {
	switch {
	case m.drive > 0:
		return courier.ModeForward
	case m.drive < 0:
		return courier.ModeBackward
	case m.steer > 0:
		return courier.ModeSteerRight
	case m.steer < 0:
		return courier.ModeSteerLeft
	}
	return courier.ModeStop
}

func (m *Mapper) setMode(mode courier.Mode) []courier.Token {
	if mode == m.mode {
		return nil
	}
	m.mode = mode
	return []courier.Token{{Command: modeCommands[mode]}}
}

func (m *Mapper) direction(val int) int {
	switch {
	case val > m.Deadzone:
		return 1
	case val < -m.Deadzone:
		return -1
	}
	return 0
}

var modeCommands = map[courier.Mode]courier.Command{
	courier.ModeStop:       courier.CmdStop,
	courier.ModeForward:    courier.CmdForward,
	courier.ModeBackward:   courier.CmdBackward,
	courier.ModeSteerRight: courier.CmdSteerRight,
	courier.ModeSteerLeft:  courier.CmdSteerLeft,
}

func containsIndex(indices []int, index int) bool {
	for _, i := range indices {
		if i == index {
			return true
		}
	}
	return false
}

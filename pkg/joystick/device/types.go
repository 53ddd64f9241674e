// Package device reads the Linux joystick API (/dev/input/jsN).
package device

import (
	"errors"
	"fmt"
	"io"
)

// ErrNotSupported is returned by Open on platforms without joystick API.
var ErrNotSupported = errors.New("joystick not supported on this platform")

// Event defines the base event interface.
type Event interface {
	// IsInit indicates this is the init state.
	IsInit() bool
	// Index returns either Axis or Button index.
	Index() int
}

// AxisEvent represents the change on an axis.
type AxisEvent interface {
	Event
	Value() int
}

// ButtonEvent represents the change on a button.
type ButtonEvent interface {
	Event
	Pressed() bool
}

// AxisValueMax is the absolute value of a fully deflected axis.
const AxisValueMax = 32767

// Device represents an opened joystick.
type Device interface {
	io.Closer
	// Index returns the index of the device on the system.
	Index() int
	// Name returns the name of the device.
	Name() string
	// AxisCount returns the number of Axis on the device.
	AxisCount() int
	// ButtonCount returns the number of buttons on the device.
	ButtonCount() int
	// ReadEvent reads one event from the device.
	ReadEvent() (Event, error)
}

// Path returns the device file of the joystick at index.
func Path(index int) string {
	return fmt.Sprintf("/dev/input/js%d", index)
}

// event is the js_event structure from linux/joystick.h.
type event struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

const (
	evBTN  uint8 = 0x01
	evAXIS uint8 = 0x02
	evINIT uint8 = 0x80
)

func (e *event) IsInit() bool {
	return e.Type&evINIT != 0
}

func (e *event) Index() int {
	return int(e.Number)
}

func (e *event) typed() Event {
	switch e.Type &^ evINIT {
	case evBTN:
		return &buttonEvent{event: *e}
	case evAXIS:
		return &axisEvent{event: *e}
	}
	return e
}

type axisEvent struct {
	event
}

func (e *axisEvent) Value() int {
	return int(e.event.Value)
}

type buttonEvent struct {
	event
}

func (e *buttonEvent) Pressed() bool {
	return e.event.Value != 0
}

// Axis creates an AxisEvent, for replaying recorded input.
func Axis(index, value int) AxisEvent {
	return &axisEvent{event: event{Type: evAXIS, Number: uint8(index), Value: int16(value)}}
}

// Button creates a ButtonEvent, for replaying recorded input.
func Button(index int, pressed bool) ButtonEvent {
	ev := &buttonEvent{event: event{Type: evBTN, Number: uint8(index)}}
	if pressed {
		ev.event.Value = 1
	}
	return ev
}

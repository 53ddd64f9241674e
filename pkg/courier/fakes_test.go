package courier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const testTick = 8192 * time.Microsecond

// testTicks is a TickSource driven by Advance, one sub-tick at a time.
type testTicks struct {
	handler TickHandler
	enabled bool
	sub     uint32
	elapsed uint64
	now     uint64
}

func (s *testTicks) SetHandler(h TickHandler) { s.handler = h }
func (s *testTicks) Preload(subTicks uint32)  { s.sub = subTicks % SubTicksPerTick }
func (s *testTicks) Enable()                  { s.enabled = true }
func (s *testTicks) Disable()                 { s.enabled = false }
func (s *testTicks) Elapsed() Elapsed         { return ElapsedOf(s.elapsed) }
func (s *testTicks) ResetElapsed()            { s.elapsed = 0 }

func (s *testTicks) Resolution() time.Duration { return testTick }

func (s *testTicks) Advance(subTicks uint64) {
	for i := uint64(0); i < subTicks; i++ {
		s.now++
		s.elapsed++
		if !s.enabled {
			continue
		}
		s.sub++
		if s.sub >= SubTicksPerTick {
			s.sub = 0
			if s.handler != nil {
				s.handler.Tick()
			}
		}
	}
}

func (s *testTicks) AdvanceTicks(ticks uint64) {
	s.Advance(ticks * uint64(SubTicksPerTick))
}

type motionEvent struct {
	mode Mode
	gear Gear
	at   uint64
}

type testMotion struct {
	clock  *testTicks
	gear   Gear
	events []motionEvent
}

func (m *testMotion) drive(mode Mode) {
	m.events = append(m.events, motionEvent{mode: mode, gear: m.gear, at: m.clock.now})
}

func (m *testMotion) Forward()          { m.drive(ModeForward) }
func (m *testMotion) Backward()         { m.drive(ModeBackward) }
func (m *testMotion) Stop()             { m.drive(ModeStop) }
func (m *testMotion) TurnLeft()         { m.drive(ModeSteerLeft) }
func (m *testMotion) TurnRight()        { m.drive(ModeSteerRight) }
func (m *testMotion) SetGear(g Gear)    { m.gear = g }
func (m *testMotion) last() motionEvent { return m.events[len(m.events)-1] }

var errNoEcho = errors.New("no echo")

type testRanger struct {
	front, back uint16
	err         error
}

func (r *testRanger) ReadFrontCm() (uint16, error) { return r.front, r.err }
func (r *testRanger) ReadBackCm() (uint16, error)  { return r.back, r.err }

type testRestarter struct {
	count int
}

func (r *testRestarter) Restart() { r.count++ }

type testDisplay struct {
	text    string
	cleared int
}

func (d *testDisplay) Clear()         { d.text = ""; d.cleared++ }
func (d *testDisplay) Print(s string) { d.text += s }

type testRig struct {
	*Controller
	ticks     *testTicks
	motion    *testMotion
	ranger    *testRanger
	restarter *testRestarter
}

func newTestRig(t *testing.T, conf *Config) *testRig {
	if conf == nil {
		conf = NewConfig()
	}
	r := &testRig{
		ticks:     &testTicks{},
		ranger:    &testRanger{front: 100, back: 100},
		restarter: &testRestarter{},
	}
	r.motion = &testMotion{clock: r.ticks}
	r.Controller = conf.NewController(r.ticks, r.motion, r.ranger, r.restarter)
	r.Start()
	require.Equal(t, ModeStop, r.motion.last().mode)
	require.True(t, r.ticks.enabled)
	return r
}

func (r *testRig) send(cmds ...Command) {
	for _, cmd := range cmds {
		r.HandleCommand(Token{Command: cmd})
	}
}

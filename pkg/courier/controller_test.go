package courier

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReverseRetracesPath(t *testing.T) {
	r := newTestRig(t, nil)

	r.send(CmdForward)
	r.ticks.Advance(1000)
	r.send(CmdGearUp)
	r.ticks.Advance(700)
	r.send(CmdSteerRight)
	r.ticks.Advance(300)
	r.send(CmdStop)

	require.Equal(t, []MoveRecord{
		{Mode: ModeBackward, Gear: 1, Elapsed: ElapsedOf(1000)},
		{Mode: ModeBackward, Gear: 2, Elapsed: ElapsedOf(700)},
		{Mode: ModeSteerLeft, Gear: 2, Elapsed: ElapsedOf(300)},
	}, r.Records())

	r.send(CmdReverse)
	st := r.Status()
	require.Equal(t, Reversing, st.Navigation)
	require.Equal(t, HandlerPlayback, st.Handler)
	require.False(t, st.Inbound)
	require.Equal(t, ModeStop, st.Mode)

	r.ticks.Advance(1)
	st = r.Status()
	assert.Equal(t, ModeSteerLeft, st.Mode)
	assert.Equal(t, Gear(2), st.Gear)
	assert.Equal(t, 2, st.History)

	r.ticks.Advance(299)
	assert.Equal(t, ModeSteerLeft, r.Status().Mode)
	r.ticks.Advance(1)
	st = r.Status()
	assert.Equal(t, ModeBackward, st.Mode)
	assert.Equal(t, Gear(2), st.Gear)

	r.ticks.Advance(699)
	assert.Equal(t, Gear(2), r.Status().Gear)
	r.ticks.Advance(1)
	st = r.Status()
	assert.Equal(t, ModeBackward, st.Mode)
	assert.Equal(t, Gear(1), st.Gear)

	r.ticks.Advance(999)
	require.Equal(t, 0, r.restarter.count)
	r.ticks.Advance(1)
	st = r.Status()
	assert.Equal(t, Idle, st.Navigation)
	assert.Equal(t, HandlerNone, st.Handler)
	assert.Equal(t, ModeStop, st.Mode)
	assert.Equal(t, ModeStop, r.motion.last().mode)
	require.Equal(t, 1, r.restarter.count)

	r.ticks.AdvanceTicks(1000)
	require.Equal(t, 1, r.restarter.count)
}

func TestReverseMirrorsRandomDrive(t *testing.T) {
	cmds := []Command{CmdForward, CmdBackward, CmdStop, CmdSteerLeft, CmdSteerRight, CmdGearUp, CmdGearDown}
	rnd := rand.New(rand.NewSource(42))
	r := newTestRig(t, nil)

	var expected []MoveRecord
	pending, gear, since, total := ModeStop, MinGear, uint64(0), uint64(0)
	save := func() {
		if pending != ModeStop {
			expected = append(expected, MoveRecord{Mode: pending, Gear: gear, Elapsed: ElapsedOf(since)})
		}
		since = 0
	}
	for i := 0; i < 299; i++ {
		cmd := cmds[rnd.Intn(len(cmds))]
		r.send(cmd)
		switch cmd {
		case CmdGearUp:
			if gear < MaxGear {
				save()
				gear++
			}
		case CmdGearDown:
			if gear > MinGear {
				save()
				gear--
			}
		default:
			mode, _ := cmd.Mode()
			save()
			pending = mode.Inverse()
		}
		d := uint64(1 + rnd.Intn(2000))
		r.ticks.Advance(d)
		since += d
		total += d
	}
	r.send(CmdReverse)
	save()
	require.True(t, len(expected) <= DefaultHistoryCapacity)
	require.Equal(t, expected, r.Records())

	start := len(r.motion.events)
	r.ticks.Advance(total + 1)
	require.Equal(t, 1, r.restarter.count)

	replayed := r.motion.events[start:]
	require.Len(t, replayed, len(expected)+1)
	for i, ev := range replayed[:len(expected)] {
		rec := expected[len(expected)-1-i]
		assert.Equal(t, rec.Mode, ev.mode, "segment %d", i)
		assert.Equal(t, rec.Gear, ev.gear, "segment %d", i)
		assert.Equal(t, rec.Elapsed.InSubTicks(), replayed[i+1].at-ev.at, "segment %d", i)
	}
	assert.Equal(t, ModeStop, replayed[len(expected)].mode)
}

func TestHistoryOverflowInController(t *testing.T) {
	testCases := []struct {
		name    string
		policy  OverflowPolicy
		expect  []Mode
		dropped int
	}{
		{
			name:    "drop",
			policy:  OverflowDrop,
			expect:  []Mode{ModeBackward, ModeSteerLeft},
			dropped: 1,
		},
		{
			name:    "evict oldest",
			policy:  OverflowEvictOldest,
			expect:  []Mode{ModeSteerLeft, ModeForward},
			dropped: 1,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.HistoryCapacity = 2
			conf.Overflow = tc.policy
			r := newTestRig(t, conf)
			r.send(CmdForward)
			r.ticks.Advance(10)
			r.send(CmdSteerRight)
			r.ticks.Advance(10)
			r.send(CmdBackward)
			r.ticks.Advance(10)
			r.send(CmdStop)

			var modes []Mode
			for _, rec := range r.Records() {
				modes = append(modes, rec.Mode)
			}
			require.Equal(t, tc.expect, modes)
			st := r.Status()
			require.Equal(t, tc.dropped, st.Dropped)
			require.Equal(t, 2, st.Capacity)
		})
	}
}

func TestGearLimits(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdForward, CmdGearDown)
	require.Equal(t, MinGear, r.Status().Gear)
	require.Empty(t, r.Records())
	for i := 0; i < 10; i++ {
		r.send(CmdGearUp)
	}
	require.Equal(t, MaxGear, r.Status().Gear)
	require.Equal(t, MaxGear, r.motion.gear)
	require.Len(t, r.Records(), int(MaxGear-MinGear))
}

func TestStopRecordsNothingAfterStop(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdStop)
	r.ticks.Advance(100)
	r.send(CmdStop, CmdGearUp, CmdGearDown)
	require.Empty(t, r.Records())
}

func TestLinkLostDrivesBack(t *testing.T) {
	conf := NewConfig()
	conf.WatchdogTimeout = 10 * testTick
	r := newTestRig(t, conf)

	r.send(CmdForward)
	r.ticks.AdvanceTicks(10)
	st := r.Status()
	require.Equal(t, Connected, st.Connection)
	require.Equal(t, Driving, st.Navigation)

	r.ticks.AdvanceTicks(10)
	st = r.Status()
	require.Equal(t, Lost, st.Connection)
	require.Equal(t, Reversing, st.Navigation)
	require.Equal(t, []MoveRecord{{Mode: ModeBackward, Gear: MinGear, Elapsed: Elapsed{Ticks: 20}}}, r.Records())

	r.send(CmdForward)
	require.Equal(t, ModeStop, r.Status().Mode)

	r.ticks.Advance(1)
	require.Equal(t, ModeBackward, r.Status().Mode)
	r.ticks.AdvanceTicks(20)
	st = r.Status()
	require.Equal(t, Idle, st.Navigation)
	require.Equal(t, 1, r.restarter.count)
	r.ticks.AdvanceTicks(100)
	require.Equal(t, 1, r.restarter.count)
}

func TestWatchdogKeepAlive(t *testing.T) {
	testCases := []struct {
		name string
		tok  *Token
		lost bool
	}{
		{name: "boot"},
		{name: "stopped", tok: &Token{Command: CmdStop}},
		{name: "display text", tok: &Token{Command: CmdDisplayText, Text: "hello"}},
		{name: "steering", tok: &Token{Command: CmdSteerLeft}, lost: true},
		{name: "heartbeat", tok: &Token{Command: CmdHeartbeat}, lost: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.WatchdogTimeout = 10 * testTick
			r := newTestRig(t, conf)
			if tc.tok != nil {
				r.HandleCommand(*tc.tok)
			}
			r.ticks.AdvanceTicks(100)
			if tc.lost {
				require.Equal(t, Lost, r.Status().Connection)
				require.Equal(t, 1, r.restarter.count)
			} else {
				st := r.Status()
				require.Equal(t, Connected, st.Connection)
				require.Equal(t, Driving, st.Navigation)
				require.Zero(t, r.restarter.count)
			}
		})
	}
}

func TestHeartbeatKeepsLinkAlive(t *testing.T) {
	conf := NewConfig()
	conf.WatchdogTimeout = 10 * testTick
	r := newTestRig(t, conf)
	r.send(CmdForward)
	for i := 0; i < 20; i++ {
		r.ticks.AdvanceTicks(5)
		r.send(CmdHeartbeat)
	}
	st := r.Status()
	require.Equal(t, Connected, st.Connection)
	require.Equal(t, ModeForward, st.Mode)
}

func TestObstaclePause(t *testing.T) {
	testCases := []struct {
		name    string
		exclude bool
		expect  uint64
	}{
		{name: "exclude paused time", exclude: true, expect: 1000},
		{name: "include paused time", exclude: false, expect: 2000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			conf := NewConfig()
			conf.ExcludePausedTime = tc.exclude
			r := newTestRig(t, conf)

			r.send(CmdForward)
			r.ticks.Advance(500)
			r.ranger.back = 2
			r.PollObstacles()
			require.False(t, r.Status().Paused)

			r.ranger.front = 5
			r.PollObstacles()
			st := r.Status()
			require.True(t, st.Paused)
			require.Equal(t, ModeForward, st.Mode)
			require.Equal(t, ModeStop, r.motion.last().mode)
			require.False(t, r.ticks.enabled)

			r.ticks.Advance(1000)
			require.Empty(t, r.Records())

			r.ranger.front = 50
			r.PollObstacles()
			require.False(t, r.Status().Paused)
			require.Equal(t, ModeForward, r.motion.last().mode)
			require.True(t, r.ticks.enabled)

			r.ticks.Advance(500)
			r.send(CmdStop)
			require.Equal(t, []MoveRecord{{Mode: ModeBackward, Gear: MinGear, Elapsed: ElapsedOf(tc.expect)}}, r.Records())
		})
	}
}

func TestObstacleSteeringAndStopWhilePaused(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdForward)
	r.ranger.front = 3
	r.PollObstacles()
	require.True(t, r.Status().Paused)

	// steering isn't blocked by the front obstacle.
	r.send(CmdSteerLeft)
	require.Equal(t, ModeSteerLeft, r.motion.last().mode)
	r.send(CmdForward)
	require.Equal(t, ModeStop, r.motion.last().mode)

	r.ranger.err = errNoEcho
	r.PollObstacles()
	require.True(t, r.Status().Paused)

	r.ranger.err = nil
	r.send(CmdStop)
	r.PollObstacles()
	require.False(t, r.Status().Paused)
	require.True(t, r.ticks.enabled)
}

func TestReverseWhilePaused(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdForward)
	r.ticks.Advance(600)
	r.ranger.front = 3
	r.PollObstacles()
	r.send(CmdReverse)
	st := r.Status()
	require.Equal(t, Reversing, st.Navigation)
	require.False(t, st.Paused)
	require.True(t, r.ticks.enabled)

	r.ticks.Advance(1)
	require.Equal(t, ModeBackward, r.motion.last().mode)
	r.ticks.Advance(600)
	require.Equal(t, 1, r.restarter.count)
}

func TestObstaclePausesPlayback(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdSteerLeft)
	r.ticks.Advance(300)
	r.send(CmdForward)
	r.ticks.Advance(1000)
	r.send(CmdStop, CmdReverse)

	r.ticks.Advance(1)
	require.Equal(t, ModeBackward, r.motion.last().mode)
	require.Equal(t, 1, r.Status().History)
	r.ticks.Advance(400)

	r.ranger.back = 3
	r.PollObstacles()
	st := r.Status()
	require.True(t, st.Paused)
	require.Equal(t, ModeBackward, st.Mode)
	require.Equal(t, ModeStop, r.motion.last().mode)
	require.False(t, r.ticks.enabled)

	r.ticks.Advance(5000)
	st = r.Status()
	require.Equal(t, Reversing, st.Navigation)
	require.Equal(t, 1, st.History)
	require.Zero(t, r.restarter.count)

	r.ranger.back = 100
	r.PollObstacles()
	require.False(t, r.Status().Paused)
	require.Equal(t, ModeBackward, r.motion.last().mode)
	require.True(t, r.ticks.enabled)

	r.ticks.Advance(599)
	require.Equal(t, ModeBackward, r.Status().Mode)
	require.Equal(t, 1, r.Status().History)
	r.ticks.Advance(1)
	st = r.Status()
	require.Equal(t, ModeSteerRight, st.Mode)
	require.Equal(t, 0, st.History)

	r.ticks.Advance(299)
	require.Zero(t, r.restarter.count)
	r.ticks.Advance(1)
	require.Equal(t, 1, r.restarter.count)
}

func TestPlaybackSkipsEmptyRecords(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdForward, CmdSteerRight)
	r.ticks.Advance(300)
	r.send(CmdStop)
	require.Equal(t, []MoveRecord{
		{Mode: ModeBackward, Gear: MinGear},
		{Mode: ModeSteerLeft, Gear: MinGear, Elapsed: ElapsedOf(300)},
	}, r.Records())

	r.send(CmdReverse)
	start := len(r.motion.events)
	r.ticks.Advance(300)
	require.Zero(t, r.restarter.count)
	r.ticks.Advance(1)
	require.Equal(t, 1, r.restarter.count)
	for _, ev := range r.motion.events[start:] {
		require.NotEqual(t, ModeBackward, ev.mode)
	}
	require.Equal(t, ModeStop, r.motion.last().mode)
}

func TestIdleIgnoresObstacles(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdReverse)
	r.ticks.Advance(1)
	require.Equal(t, Idle, r.Status().Navigation)
	r.ranger.front, r.ranger.back = 1, 1
	r.PollObstacles()
	require.False(t, r.Status().Paused)
}

func TestReverseOnlyOnce(t *testing.T) {
	r := newTestRig(t, nil)
	r.send(CmdBackward)
	r.ticks.Advance(300)
	r.send(CmdReverse, CmdReverse)
	require.Len(t, r.Records(), 1)
	r.ticks.Advance(301)
	require.Equal(t, 1, r.restarter.count)
	r.send(CmdReverse)
	r.ticks.AdvanceTicks(10)
	require.Equal(t, 1, r.restarter.count)
}

func TestDisplayAndStatusChange(t *testing.T) {
	r := newTestRig(t, nil)
	d := &testDisplay{}
	r.Display = d
	_, changed := r.StatusChange()
	require.True(t, changed)
	_, changed = r.StatusChange()
	require.False(t, changed)

	r.HandleCommand(Token{Command: CmdDisplayText, Text: "hi"})
	require.Equal(t, "hi", d.text)
	r.send(CmdClearScreen)
	require.Empty(t, d.text)
	require.Equal(t, 2, d.cleared)
	_, changed = r.StatusChange()
	require.False(t, changed)

	r.send(CmdGearUp)
	st, changed := r.StatusChange()
	require.True(t, changed)
	require.Equal(t, Gear(2), st.Gear)
}

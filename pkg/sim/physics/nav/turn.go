package nav

import (
	"time"

	"github.com/robotalks/courier/pkg/sim"
)

// turnState rotates in place at a constant rate (radians/s), positive is
// counter-clockwise.
type turnState struct {
	start sim.Pose2D
	at    time.Time
	rate  float64
}

func newTurnState(pose sim.Pose2D, now time.Time, rate float64) state {
	if rate == 0 {
		return nil
	}
	return &turnState{start: pose, at: now, rate: rate}
}

func (s *turnState) estimate(now time.Time) (sim.Pose2D, state) {
	pose := s.start
	pose.Orientation = pose.Orientation.AddRadians(now.Sub(s.at).Seconds() * s.rate)
	return pose, s
}

package nav

import (
	"math"
	"time"

	"github.com/robotalks/courier/pkg/sim"
)

// driveState moves along the start orientation. The speed ramps linearly
// from speed0 to speed during ramp and stays there afterwards.
type driveState struct {
	start  sim.Pose2D
	at     time.Time
	speed0 float64
	speed  float64
	ramp   time.Duration
}

// newDriveState starts driving towards speed from the current speed of old,
// if it was driving. It's nil when the object comes to rest immediately.
func newDriveState(old state, pose sim.Pose2D, now time.Time, speed, accel float64) state {
	s := &driveState{start: pose, at: now, speed: speed}
	if ds, ok := old.(*driveState); ok && ds != nil {
		s.speed0 = ds.speedAt(now)
	}
	if accel = math.Abs(accel); accel == 0 {
		s.speed0 = speed
	} else {
		s.ramp = time.Duration(math.Abs(speed-s.speed0) / accel * float64(time.Second))
	}
	if s.speed0 == 0 && s.speed == 0 {
		return nil
	}
	return s
}

func (s *driveState) elapsed(now time.Time) time.Duration {
	if d := now.Sub(s.at); d > 0 {
		return d
	}
	return 0
}

func (s *driveState) speedAt(now time.Time) float64 {
	d := s.elapsed(now)
	if d >= s.ramp {
		return s.speed
	}
	return s.speed0 + (s.speed-s.speed0)*d.Seconds()/s.ramp.Seconds()
}

// distance travelled from the start until now.
func (s *driveState) distance(now time.Time) float64 {
	secs, ramp := s.elapsed(now).Seconds(), s.ramp.Seconds()
	if secs <= ramp {
		if ramp == 0 {
			return 0
		}
		return secs*s.speed0 + (s.speed-s.speed0)/ramp*secs*secs/2
	}
	return (s.speed0+s.speed)/2*ramp + (secs-ramp)*s.speed
}

func (s *driveState) estimate(now time.Time) (sim.Pose2D, state) {
	pose := s.start
	pose.Pos2D.OffsetBy(pose.Orientation.Project(s.distance(now)))
	if s.speed == 0 && s.elapsed(now) >= s.ramp {
		return pose, nil
	}
	return pose, s
}

package nav

import (
	"math"
	"time"

	"github.com/robotalks/courier/pkg/sim"
	"github.com/robotalks/courier/pkg/sim/physics"
)

// Limits caps the motion of the Engine. Zero means unlimited.
type Limits struct {
	// DriveSpeedMax in mm/s.
	DriveSpeedMax float64
	// TurnSpeedMax in radians/s.
	TurnSpeedMax float64
}

// Engine implements physics.Nav2D. It's not safe for concurrent use.
type Engine struct {
	Object sim.Placeable2D
	Limits Limits

	state state
}

type state interface {
	estimate(now time.Time) (sim.Pose2D, state)
}

// New creates the engine.
func New(obj sim.Placeable2D) *Engine {
	return &Engine{Object: obj}
}

// Drive implements physics.Nav2D.
func (e *Engine) Drive(ctx physics.Context, speed, accel float64) {
	speed = limit(speed, e.Limits.DriveSpeedMax)
	e.state = newDriveState(e.state, e.estimatePose(ctx), ctx.Time(), speed, accel)
}

// Turn implements physics.Nav2D.
func (e *Engine) Turn(ctx physics.Context, speed float64) {
	speed = limit(speed, e.Limits.TurnSpeedMax)
	e.state = newTurnState(e.estimatePose(ctx), ctx.Time(), speed)
}

// Stop implements physics.Nav2D.
func (e *Engine) Stop(ctx physics.Context) {
	e.estimatePose(ctx)
	e.state = nil
}

// Moving indicates the object is in motion.
func (e *Engine) Moving() bool {
	return e.state != nil
}

// Execute moves the object to where it is at ctx.Time().
func (e *Engine) Execute(ctx physics.Context) {
	if s := e.state; s != nil {
		var pose sim.Pose2D
		pose, e.state = s.estimate(ctx.Time())
		e.Object.SetPose2D(pose)
	}
}

func (e *Engine) estimatePose(ctx physics.Context) (pose sim.Pose2D) {
	if s := e.state; s != nil {
		pose, e.state = s.estimate(ctx.Time())
		pose = e.Object.SetPose2D(pose)
	} else {
		pose = e.Object.Position2D()
	}
	return
}

func limit(v, max float64) float64 {
	if max > 0 && math.Abs(v) > max {
		return math.Copysign(max, v)
	}
	return v
}

package physics

import (
	"context"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Context provides the simulation context.
type Context interface {
	fx.TimeSource
	Context() context.Context
}

// Nav2D simulates a differential drive on a 2D plane.
type Nav2D interface {
	// Drive moves along the orientation, speed in mm/s, accel in mm/s^2.
	// Zero accel changes speed immediately.
	Drive(ctx Context, speed, accel float64)
	// Turn rotates in place, speed in radians/s.
	Turn(ctx Context, speed float64)
	// Stop halts immediately.
	Stop(ctx Context)
}

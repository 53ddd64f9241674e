package physics

import (
	"context"
	"time"
)

// timedContext freezes the time for one simulation step so every object
// moved in the step sees the same instant.
type timedContext struct {
	ctx context.Context
	at  time.Time
}

// At creates a Context at the given time.
func At(ctx context.Context, at time.Time) Context {
	return &timedContext{ctx: ctx, at: at}
}

// Time implements TimeSource.
func (c *timedContext) Time() time.Time {
	return c.at
}

// Context implements Context.
func (c *timedContext) Context() context.Context {
	return c.ctx
}

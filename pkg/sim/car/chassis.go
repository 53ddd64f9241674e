// Package car simulates the courier vehicle: a differential drive chassis
// with front and back ultrasonic rangers in a walled arena.
package car

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/sim"
	"github.com/robotalks/courier/pkg/sim/physics"
	"github.com/robotalks/courier/pkg/sim/physics/nav"
)

// Chassis implements courier.MotionActuator and courier.RangeSensor on a
// simulated body. It's safe for concurrent use.
type Chassis struct {
	sim.ObjectsChangeCaster

	name  string
	world sim.World
	conf  Config

	lock   sync.Mutex
	body   body
	engine *nav.Engine
	mode   courier.Mode
	gear   courier.Gear
	now    func() time.Time
}

// body is the Placeable2D moved by the engine, guarded by the Chassis.
type body struct {
	arena   sim.Rect
	size    float64
	pose    sim.Pose2D
	changed bool
}

func (b *body) Position2D() sim.Pose2D {
	return b.pose
}

// SetPose2D keeps the body inside the arena.
func (b *body) SetPose2D(pose sim.Pose2D) sim.Pose2D {
	half := b.size / 2
	max := b.arena.Max()
	pose.X = math.Max(b.arena.X+half, math.Min(max.X-half, pose.X))
	pose.Y = math.Max(b.arena.Y+half, math.Min(max.Y-half, pose.Y))
	if pose != b.pose {
		b.pose, b.changed = pose, true
	}
	return b.pose
}

// NewChassis creates a Chassis at the center of the arena facing +X.
func NewChassis(name string, conf Config) *Chassis {
	c := &Chassis{
		name:  name,
		conf:  conf,
		world: sim.World{Arena: sim.CenteredRect(conf.ArenaW, conf.ArenaH), Obstacles: conf.Obstacles},
		gear:  courier.MinGear,
		now:   time.Now,
	}
	c.body = body{arena: c.world.Arena, size: conf.Size, changed: true}
	c.engine = nav.New(&c.body)
	c.engine.Limits = nav.Limits{
		DriveSpeedMax: conf.DriveSpeedMax,
		TurnSpeedMax:  sim.AngleFromDegrees(conf.TurnSpeedMax).Radians(),
	}
	return c
}

// Name implements Named.
func (c *Chassis) Name() string {
	return c.name
}

// World returns the arena and obstacles.
func (c *Chassis) World() sim.World {
	return c.world
}

// OutlineRect implements Rectangular.
func (c *Chassis) OutlineRect() sim.Rect {
	return sim.CenteredRect(c.conf.Size, c.conf.Size)
}

// Position2D implements Positionable2D.
func (c *Chassis) Position2D() sim.Pose2D {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.engine.Execute(c.ctx())
	return c.body.pose
}

// Place moves the chassis to pose and stops it.
func (c *Chassis) Place(pose sim.Pose2D) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.engine.Stop(c.ctx())
	c.body.SetPose2D(pose)
	c.mode = courier.ModeStop
}

// Mode returns the current drive mode.
func (c *Chassis) Mode() courier.Mode {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.mode
}

// Label shows the drive mode and gear in visualization.
func (c *Chassis) Label() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	return fmt.Sprintf("%s G%d", c.mode, c.gear)
}

// Forward implements courier.MotionActuator.
func (c *Chassis) Forward() { c.drive(courier.ModeForward) }

// Backward implements courier.MotionActuator.
func (c *Chassis) Backward() { c.drive(courier.ModeBackward) }

// Stop implements courier.MotionActuator.
func (c *Chassis) Stop() { c.drive(courier.ModeStop) }

// TurnLeft implements courier.MotionActuator.
func (c *Chassis) TurnLeft() { c.drive(courier.ModeSteerLeft) }

// TurnRight implements courier.MotionActuator.
func (c *Chassis) TurnRight() { c.drive(courier.ModeSteerRight) }

// SetGear implements courier.MotionActuator. The speed of the current
// motion changes immediately.
func (c *Chassis) SetGear(gear courier.Gear) {
	if !gear.IsValid() {
		glog.Warningf("%s: invalid gear %d", c.name, gear)
		return
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.gear != gear {
		c.gear = gear
		c.apply()
	}
}

func (c *Chassis) drive(mode courier.Mode) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.mode != mode {
		c.mode = mode
		c.apply()
	}
}

func (c *Chassis) apply() {
	ctx := c.ctx()
	// speed is proportional to the PWM duty cycle selected by the gear.
	ratio := float64(c.gear) / float64(courier.MaxGear)
	drive, turn := c.conf.DriveSpeedMax*ratio, sim.AngleFromDegrees(c.conf.TurnSpeedMax).Radians()*ratio
	switch c.mode {
	case courier.ModeForward:
		c.engine.Drive(ctx, drive, c.conf.Accel)
	case courier.ModeBackward:
		c.engine.Drive(ctx, -drive, c.conf.Accel)
	case courier.ModeSteerLeft:
		c.engine.Turn(ctx, turn)
	case courier.ModeSteerRight:
		c.engine.Turn(ctx, -turn)
	default:
		c.engine.Stop(ctx)
	}
	glog.V(3).Infof("%s: %s at gear %d", c.name, c.mode, c.gear)
}

// ReadFrontCm implements courier.RangeSensor.
func (c *Chassis) ReadFrontCm() (uint16, error) {
	return c.rangeCm(false), nil
}

// ReadBackCm implements courier.RangeSensor.
func (c *Chassis) ReadBackCm() (uint16, error) {
	return c.rangeCm(true), nil
}

func (c *Chassis) rangeCm(back bool) uint16 {
	c.lock.Lock()
	c.engine.Execute(c.ctx())
	pose := c.body.pose
	c.lock.Unlock()

	dir := pose.Orientation
	if back {
		dir = dir.Opposite()
	}
	from := pose.Pos2D.Add(dir.Project(c.conf.Size / 2))
	cm := c.world.Distance(from, dir) / 10
	if max := float64(c.conf.RangeMaxCm); max > 0 && cm > max {
		cm = max
	}
	return uint16(cm)
}

// AddToLoop implements LoopAdder.
func (c *Chassis) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvActuate, fx.ControlFunc(c.Execute))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(c.NotifyChanges))
}

// Execute is a controller moving the body.
func (c *Chassis) Execute(cc fx.ControlContext) error {
	c.lock.Lock()
	c.engine.Execute(physics.At(cc.Context(), c.now()))
	c.lock.Unlock()
	return nil
}

// NotifyChanges notifies object changes.
func (c *Chassis) NotifyChanges(cc fx.ControlContext) error {
	c.lock.Lock()
	changed := c.body.changed
	c.body.changed = false
	c.lock.Unlock()
	if changed {
		c.ObjectsChanged(cc, c)
	}
	return nil
}

func (c *Chassis) ctx() physics.Context {
	return physics.At(context.Background(), c.now())
}

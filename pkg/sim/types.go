// Package sim provides the 2D world the simulated vehicle drives in.
// Lengths are in millimeters.
package sim

import (
	"math"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Size2D defines the rectangular size in 2D.
type Size2D struct {
	CX, CY float64
}

// Pos2D defines the position in 2D.
type Pos2D struct {
	X, Y float64
}

// Rect defines a rectangle in 2D. Pos2D is the minimum corner.
type Rect struct {
	Pos2D  `yaml:",inline"`
	Size2D `yaml:",inline"`
}

// Pose2D defines the pose in 2D.
type Pose2D struct {
	Pos2D
	Orientation Angle
}

// Rectangular object provides an rectangluar outline dimension.
type Rectangular interface {
	OutlineRect() Rect
}

// Positionable2D object maintains a 2D position.
type Positionable2D interface {
	Position2D() Pose2D
}

// Placeable2D object can be moved with a new pose on a 2D plane.
type Placeable2D interface {
	Positionable2D
	SetPose2D(Pose2D) Pose2D
}

// Object represents an object in the world.
type Object interface {
	fx.Named
}

// ObjectsChangeListener listens for object changes.
type ObjectsChangeListener interface {
	ObjectsChanged(fx.ControlContext, ...Object)
	ObjectsRemoved(fx.ControlContext, ...Object)
}

// ObjectsChangeSubscriber subscribes objects change notifications.
type ObjectsChangeSubscriber interface {
	SubscribeObjectsChange(ObjectsChangeListener)
}

// Add is a helper to add Pos2D.
func (p Pos2D) Add(p1 Pos2D) Pos2D {
	return Pos2D{X: p.X + p1.X, Y: p.Y + p1.Y}
}

// OffsetBy performs Add in-place.
func (p *Pos2D) OffsetBy(p1 Pos2D) *Pos2D {
	p.X += p1.X
	p.Y += p1.Y
	return p
}

// CenteredRect creates a Rect of size centered at the origin.
func CenteredRect(cx, cy float64) Rect {
	return Rect{Pos2D: Pos2D{X: -cx / 2, Y: -cy / 2}, Size2D: Size2D{CX: cx, CY: cy}}
}

// Max returns the maximum corner.
func (r Rect) Max() Pos2D {
	return Pos2D{X: r.X + r.CX, Y: r.Y + r.CY}
}

// Contains indicates p is inside r, borders included.
func (r Rect) Contains(p Pos2D) bool {
	max := r.Max()
	return p.X >= r.X && p.X <= max.X && p.Y >= r.Y && p.Y <= max.Y
}

// RayDistance returns the distance from p along dir to the first border of
// r hit by the ray. It's false when the ray misses r.
func (r Rect) RayDistance(p Pos2D, dir Angle) (float64, bool) {
	max := r.Max()
	x1, x2, okX := slab(p.X, dir.Cos(), r.X, max.X)
	y1, y2, okY := slab(p.Y, dir.Sin(), r.Y, max.Y)
	if !okX || !okY {
		return 0, false
	}
	tmin, tmax := math.Max(x1, y1), math.Min(x2, y2)
	if tmin > tmax || tmax < 0 {
		return 0, false
	}
	if tmin >= 0 {
		return tmin, true
	}
	// p is inside r.
	return tmax, true
}

// slab intersects a ray with the interval [lo, hi] on one axis.
func slab(o, d, lo, hi float64) (float64, float64, bool) {
	if math.Abs(d) < 1e-12 {
		return math.Inf(-1), math.Inf(1), o >= lo && o <= hi
	}
	t1, t2 := (lo-o)/d, (hi-o)/d
	if t1 > t2 {
		t1, t2 = t2, t1
	}
	return t1, t2, true
}

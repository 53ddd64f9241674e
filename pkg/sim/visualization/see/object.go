package see

import (
	"strings"

	"github.com/robotalks/courier/pkg/sim"
)

// VisibleObject is a simulated object drawn as a shape.
type VisibleObject interface {
	sim.Object
	sim.Rectangular
	sim.Positionable2D
}

// Labeled objects show a text next to the shape.
type Labeled interface {
	Label() string
}

// Object is one drawable in the see data model, a free-form property map.
type Object map[string]interface{}

// Rect is an axis aligned area.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Pos is a position.
type Pos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObjectMapper turns a simulated object into drawables. Returned nil
// entries are skipped.
type ObjectMapper interface {
	MapObject(VisibleObject) []Object
}

// MapObjectFunc is the func form of ObjectMapper.
type MapObjectFunc func(VisibleObject) []Object

// MapObject implements ObjectMapper.
func (f MapObjectFunc) MapObject(obj VisibleObject) []Object {
	return f(obj)
}

// Message is one update in the stream.
type Message struct {
	Action   string `json:"action"`
	Object   Object `json:"object,omitempty"`
	RemoveID string `json:"id,omitempty"`
}

// Actions
const (
	ActionReset  = "reset"
	ActionObject = "object"
	ActionRemove = "remove"
)

// Properties
const (
	PropID     = "id"
	PropType   = "type"
	PropRect   = "rect"
	PropOrigin = "origin"
	PropRadius = "radius"
	PropRotate = "rotate"
	PropLabel  = "label"
	PropStyle  = "style"
)

// ObjectID converts an object name (slash separated) to a see ID.
func ObjectID(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

// NewObject creates Object.
func NewObject(typ, id string) Object {
	return Object{PropID: id, PropType: typ}
}

// ObjectFrom places a round shape of typ at the object's pose, large
// enough to cover its outline.
func ObjectFrom(typ string, vo VisibleObject) Object {
	rc, pose := vo.OutlineRect(), vo.Position2D()
	obj := NewObject(typ, ObjectID(vo.Name())).
		At(pose.X, pose.Y).
		Radius(maxf(rc.CX, rc.CY)).
		Rotate(pose.Orientation.Degrees())
	if l, ok := vo.(Labeled); ok {
		obj.With(PropLabel, l.Label())
	}
	return obj
}

// MapCar draws the courier vehicle, labeled with its drive state.
func MapCar(vo VisibleObject) []Object {
	return []Object{ObjectFrom("car", vo)}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Rc sets rect.
func (o Object) Rc(rc sim.Rect) Object {
	o[PropRect] = &Rect{X: rc.X, Y: rc.Y, W: rc.CX, H: rc.CY}
	return o
}

// At sets origin.
func (o Object) At(x, y float64) Object {
	o[PropOrigin] = &Pos{X: x, Y: y}
	return o
}

// Radius sets radius.
func (o Object) Radius(r float64) Object {
	o[PropRadius] = r
	return o
}

// Rotate sets the rotation in degrees.
func (o Object) Rotate(deg float64) Object {
	o[PropRotate] = deg
	return o
}

// With sets a custom property.
func (o Object) With(key string, val interface{}) Object {
	o[key] = val
	return o
}

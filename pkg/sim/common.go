package sim

import (
	fx "github.com/robotalks/courier/pkg/framework"
)

// ObjectsChangeCaster provides a subscriber and implements
// listener to cast notifcations.
type ObjectsChangeCaster struct {
	listeners []ObjectsChangeListener
}

// SubscribeObjectsChange implements ObjectsChangeSubscriber.
func (c *ObjectsChangeCaster) SubscribeObjectsChange(ln ObjectsChangeListener) {
	c.listeners = append(c.listeners, ln)
}

// ObjectsChanged implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	for _, ln := range c.listeners {
		ln.ObjectsChanged(cc, objs...)
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	for _, ln := range c.listeners {
		ln.ObjectsRemoved(cc, objs...)
	}
}

// World is the arena with static obstacles.
type World struct {
	Arena     Rect
	Obstacles []Rect
}

// Distance returns the distance from p along dir to the nearest obstacle or
// arena wall.
func (w *World) Distance(p Pos2D, dir Angle) float64 {
	dist, _ := w.Arena.RayDistance(p, dir)
	for _, rc := range w.Obstacles {
		if rc.Contains(p) {
			return 0
		}
		if d, ok := rc.RayDistance(p, dir); ok && d < dist {
			dist = d
		}
	}
	return dist
}

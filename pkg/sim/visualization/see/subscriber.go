// Package see is the adapter to visualize a 2D world in
// github.com/robotalks/see.
package see

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/sim"
)

// Adapter is the visualization adapter to visualize using
// github.com/robotalks/see.
type Adapter struct {
	World  sim.World
	Mapper ObjectMapper

	out        io.Writer
	initial    bool
	updated    map[string]sim.Object
	removedIDs map[string]bool
}

// NewAdapter creates the adapter.
func NewAdapter(world sim.World, out io.Writer) *Adapter {
	return &Adapter{
		World:   world,
		Mapper:  MapObjectFunc(MapCar),
		out:     out,
		initial: true,
	}
}

// Subscribe is a helper to subscribe object changes.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	if a.updated == nil {
		a.updated = make(map[string]sim.Object)
	}
	for _, obj := range objs {
		a.updated[obj.Name()] = obj
		if a.removedIDs != nil {
			delete(a.removedIDs, obj.Name())
		}
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (a *Adapter) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {
	if a.removedIDs == nil {
		a.removedIDs = make(map[string]bool)
	}
	for _, obj := range objs {
		a.removedIDs[obj.Name()] = true
		if a.updated != nil {
			delete(a.updated, obj.Name())
		}
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges is a controller to report changes.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	var msgs []Message
	if a.initial {
		msgs = a.worldMessages()
		a.initial = false
		a.removedIDs = nil
	}

	names := make([]string, 0, len(a.updated))
	for name := range a.updated {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		obj := a.updated[name]
		if vo, ok := obj.(VisibleObject); ok {
			for _, mapped := range a.Mapper.MapObject(vo) {
				if mapped == nil {
					continue
				}
				msgs = append(msgs, Message{
					Action: ActionObject,
					Object: mapped,
				})
			}
		}
	}

	for id := range a.removedIDs {
		msgs = append(msgs, Message{
			Action:   ActionRemove,
			RemoveID: id,
		})
	}

	a.updated, a.removedIDs = nil, nil
	if len(msgs) > 0 {
		encoded, err := json.Marshal(msgs)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(a.out, string(encoded)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) worldMessages() []Message {
	arena, max := a.World.Arena, a.World.Arena.Max()
	corners := []struct {
		loc  string
		x, y float64
	}{
		{"lt", arena.X, arena.Y},
		{"lb", arena.X, max.Y},
		{"rt", max.X, arena.Y},
		{"rb", max.X, max.Y},
	}
	msgs := []Message{{Action: ActionReset}}
	for _, c := range corners {
		msgs = append(msgs, Message{
			Action: ActionObject,
			Object: NewObject("corner", "corner-"+c.loc).With("loc", c.loc).At(c.x, c.y).Radius(1),
		})
	}
	for n, rc := range a.World.Obstacles {
		msgs = append(msgs, Message{
			Action: ActionObject,
			Object: NewObject("obstacle", fmt.Sprintf("obstacle-%d", n)).Rc(rc),
		})
	}
	return msgs
}

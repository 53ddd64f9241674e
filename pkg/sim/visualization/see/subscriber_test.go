package see

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/sim"
)

type testObject struct {
	name string
	pose sim.Pose2D
}

func (o *testObject) Name() string           { return o.name }
func (o *testObject) OutlineRect() sim.Rect  { return sim.CenteredRect(100, 150) }
func (o *testObject) Position2D() sim.Pose2D { return o.pose }
func (o *testObject) Label() string          { return "Forward G3" }

func decodeLine(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	line, err := buf.ReadBytes('\n')
	require.NoError(t, err)
	var msgs []map[string]interface{}
	require.NoError(t, json.Unmarshal(line, &msgs))
	return msgs
}

func TestReportChanges(t *testing.T) {
	var buf bytes.Buffer
	world := sim.World{
		Arena:     sim.CenteredRect(1000, 1000),
		Obstacles: []sim.Rect{{Pos2D: sim.Pos2D{X: 100, Y: 100}, Size2D: sim.Size2D{CX: 10, CY: 20}}},
	}
	a := NewAdapter(world, &buf)
	car := &testObject{name: "sim/car", pose: sim.Pose2D{Pos2D: sim.Pos2D{X: 10, Y: 20}, Orientation: sim.AngleFromDegrees(90)}}
	a.ObjectsChanged(nil, car)
	require.NoError(t, a.ReportChanges(nil))

	msgs := decodeLine(t, &buf)
	require.Len(t, msgs, 7)
	require.Equal(t, ActionReset, msgs[0]["action"])
	corner := msgs[1]["object"].(map[string]interface{})
	require.Equal(t, "corner-lt", corner[PropID])
	require.Equal(t, map[string]interface{}{"x": -500.0, "y": -500.0}, corner[PropOrigin])
	obstacle := msgs[5]["object"].(map[string]interface{})
	require.Equal(t, "obstacle", obstacle[PropType])
	require.Equal(t, map[string]interface{}{"x": 100.0, "y": 100.0, "w": 10.0, "h": 20.0}, obstacle[PropRect])
	obj := msgs[6]["object"].(map[string]interface{})
	require.Equal(t, "sim.car", obj[PropID])
	require.Equal(t, "car", obj[PropType])
	require.Equal(t, 150.0, obj[PropRadius])
	require.InDelta(t, 90.0, obj[PropRotate], 1e-9)
	require.Equal(t, "Forward G3", obj[PropLabel])

	require.NoError(t, a.ReportChanges(nil))
	require.Zero(t, buf.Len())

	a.ObjectsRemoved(nil, car)
	require.NoError(t, a.ReportChanges(nil))
	msgs = decodeLine(t, &buf)
	require.Len(t, msgs, 1)
	require.Equal(t, ActionRemove, msgs[0]["action"])
	require.Equal(t, "sim/car", msgs[0]["id"])
}

package device

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEventDecode(t *testing.T) {
	raw := []event{
		{Type: evAXIS | evINIT, Number: 1, Value: -32767},
		{Type: evBTN, Number: 3, Value: 1},
		{Type: 0x10, Number: 2},
	}
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, raw))
	require.Equal(t, 8*len(raw), buf.Len())

	var ev event
	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &ev))
	axis, ok := ev.typed().(AxisEvent)
	require.True(t, ok)
	require.True(t, axis.IsInit())
	require.Equal(t, 1, axis.Index())
	require.Equal(t, -AxisValueMax, axis.Value())

	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &ev))
	btn, ok := ev.typed().(ButtonEvent)
	require.True(t, ok)
	require.False(t, btn.IsInit())
	require.True(t, btn.Pressed())

	require.NoError(t, binary.Read(&buf, binary.LittleEndian, &ev))
	_, ok = ev.typed().(AxisEvent)
	require.False(t, ok)
	_, ok = ev.typed().(ButtonEvent)
	require.False(t, ok)
}

func TestReplayEvents(t *testing.T) {
	require.Equal(t, 100, Axis(0, 100).Value())
	require.True(t, Button(2, true).Pressed())
	require.False(t, Button(2, false).Pressed())
	require.Equal(t, 2, Button(2, false).Index())
}

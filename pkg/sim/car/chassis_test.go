package car

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/courier"
	"github.com/robotalks/courier/pkg/sim"
)

func newTestChassis(conf Config) (*Chassis, func(time.Duration)) {
	now := time.Unix(100, 0)
	c := NewChassis("car", conf)
	c.now = func() time.Time { return now }
	return c, func(d time.Duration) { now = now.Add(d) }
}

func testConfig() Config {
	return Config{
		Size:          150,
		DriveSpeedMax: 500,
		TurnSpeedMax:  180,
		RangeMaxCm:    400,
		ArenaW:        5000,
		ArenaH:        5000,
	}
}

func TestChassisDrive(t *testing.T) {
	c, advance := newTestChassis(testConfig())
	c.SetGear(courier.MaxGear)
	c.Forward()
	advance(2 * time.Second)
	require.InDelta(t, 1000, c.Position2D().X, 1e-6)

	c.SetGear(courier.MinGear)
	advance(time.Second)
	require.InDelta(t, 1100, c.Position2D().X, 1e-6)

	c.Backward()
	advance(time.Second)
	require.InDelta(t, 1000, c.Position2D().X, 1e-6)

	c.Stop()
	advance(time.Second)
	require.InDelta(t, 1000, c.Position2D().X, 1e-6)
	require.Equal(t, courier.ModeStop, c.Mode())
	require.Equal(t, fmt.Sprintf("%s G%d", courier.ModeStop, courier.MinGear), c.Label())
}

func TestChassisTurn(t *testing.T) {
	c, advance := newTestChassis(testConfig())
	c.SetGear(courier.MaxGear)
	c.TurnLeft()
	advance(500 * time.Millisecond)
	require.InDelta(t, 90, c.Position2D().Orientation.Degrees(), 1e-6)

	c.TurnRight()
	advance(time.Second)
	require.InDelta(t, -90, c.Position2D().Orientation.Degrees(), 1e-6)
	pose := c.Position2D()
	require.InDelta(t, 0, pose.X, 1e-6)
	require.InDelta(t, 0, pose.Y, 1e-6)
}

func TestChassisRanges(t *testing.T) {
	c, advance := newTestChassis(testConfig())
	front, err := c.ReadFrontCm()
	require.NoError(t, err)
	require.Equal(t, uint16(242), front)
	back, err := c.ReadBackCm()
	require.NoError(t, err)
	require.Equal(t, uint16(242), back)

	c.SetGear(courier.MaxGear)
	c.Forward()
	advance(2 * time.Second)
	front, _ = c.ReadFrontCm()
	back, _ = c.ReadBackCm()
	require.Equal(t, uint16(142), front)
	require.Equal(t, uint16(342), back)
}

func TestChassisObstacle(t *testing.T) {
	conf := testConfig()
	conf.Obstacles = []sim.Rect{
		{Pos2D: sim.Pos2D{X: 500, Y: -100}, Size2D: sim.Size2D{CX: 100, CY: 200}},
	}
	c, _ := newTestChassis(conf)
	front, _ := c.ReadFrontCm()
	require.Equal(t, uint16(42), front)

	c.Place(sim.Pose2D{Orientation: sim.AngleFromRadians(math.Pi / 2)})
	front, _ = c.ReadFrontCm()
	require.Equal(t, uint16(242), front)
}

func TestChassisStaysInArena(t *testing.T) {
	conf := testConfig()
	conf.RangeMaxCm = 100
	c, advance := newTestChassis(conf)
	back, _ := c.ReadBackCm()
	require.Equal(t, uint16(100), back)

	c.SetGear(courier.MaxGear)
	c.Forward()
	advance(10 * time.Second)
	require.InDelta(t, 2425, c.Position2D().X, 1e-6)
	front, _ := c.ReadFrontCm()
	require.Equal(t, uint16(0), front)
}

func TestPanel(t *testing.T) {
	var p Panel
	p.Print("hello")
	p.Print(" world")
	require.Equal(t, "hello world", p.Text())
	p.Clear()
	require.Empty(t, p.Text())
	p.SetBuzzer(true)
	require.True(t, p.Buzzing())
}

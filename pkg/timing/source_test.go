package timing

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/courier"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeSource() (*Source, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	s := NewSource(DefaultInterval)
	s.now = clock.now
	s.epoch = clock.now()
	return s, clock
}

func TestElapsed(t *testing.T) {
	s, clock := newFakeSource()
	clock.advance(DefaultInterval * 3)
	clock.advance(DefaultInterval / 2)
	require.Equal(t, courier.Elapsed{Ticks: 3, SubTicks: 128}, s.Elapsed())

	s.ResetElapsed()
	require.Equal(t, courier.Elapsed{}, s.Elapsed())
	clock.advance(5 * time.Second)
	require.Equal(t, courier.ElapsedOf(156250), s.Elapsed())
}

func TestPreloadAndPause(t *testing.T) {
	s, clock := newFakeSource()
	s.Enable()
	require.Equal(t, clock.t.Add(DefaultInterval), s.due)

	s.Preload(192)
	require.Equal(t, clock.t.Add(DefaultInterval/4), s.due)

	clock.advance(DefaultInterval / 8)
	s.Disable()
	require.Equal(t, DefaultInterval/8, s.remaining)
	require.Nil(t, s.fire())

	clock.advance(time.Second)
	s.Enable()
	require.Equal(t, clock.t.Add(DefaultInterval/8), s.due)

	clock.advance(DefaultInterval / 8)
	h := courier.TickFunc(func() {})
	s.SetHandler(h)
	require.NotNil(t, s.fire())
	require.Equal(t, uint64(1), s.Fired())
	require.Equal(t, clock.t.Add(DefaultInterval), s.due)
	require.Nil(t, s.fire())
}

func TestCatchUpAfterStall(t *testing.T) {
	s, clock := newFakeSource()
	s.SetHandler(courier.TickFunc(func() {}))
	s.Enable()
	clock.advance(10 * DefaultInterval)
	require.NotNil(t, s.fire())
	require.Equal(t, clock.t.Add(DefaultInterval), s.due)
}

type reentrantHandler struct {
	s     *Source
	count int32
}

func (h *reentrantHandler) Tick() {
	if atomic.AddInt32(&h.count, 1) == 5 {
		h.s.Disable()
	}
	h.s.Preload(0)
}

func TestRun(t *testing.T) {
	s := NewSource(time.Millisecond)
	h := &reentrantHandler{s: s}
	s.SetHandler(h)
	s.Enable()

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&h.count) >= 5
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, int32(5), atomic.LoadInt32(&h.count))

	s.Enable()
	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&h.count) > 5
	}, time.Second, time.Millisecond)

	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

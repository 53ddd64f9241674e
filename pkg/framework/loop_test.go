package framework

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type testMsg struct {
	val int
}

func (m *testMsg) NewMessage() Message { return &testMsg{} }

type otherMsg struct{}

func (m *otherMsg) NewMessage() Message { return &otherMsg{} }

func TestLoopMessages(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Hour

	var lock sync.Mutex
	var order []string
	var vals []int
	record := func(s string) {
		lock.Lock()
		order = append(order, s)
		lock.Unlock()
	}
	l.AddController(PrLvActuate, ControlFunc(func(cc ControlContext) error {
		record("actuate")
		return nil
	}))
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		record("control")
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			if msg, ok := mc.CurrentMessage().(*testMsg); ok {
				mc.MessageTaken()
				lock.Lock()
				vals = append(vals, msg.val)
				lock.Unlock()
			}
		}))
		return nil
	}))
	l.AddController(PrLvPostProc, ControlFunc(func(cc ControlContext) error {
		if cc.Messages().Len() > 0 {
			record("remains")
		}
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	l.AddRunnable(RunnableFunc(func(ctx context.Context) error {
		lc := LoopCtlFrom(ctx)
		lc.PostMessage(&testMsg{val: 1})
		lc.PostMessage(&otherMsg{})
		lc.PostMessage(&testMsg{val: 2})
		lc.TriggerNext()
		return waitCancel(ctx)
	}))
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	require.Eventually(t, func() bool {
		lock.Lock()
		defer lock.Unlock()
		return len(vals) == 2
	}, time.Second, time.Millisecond)
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
	require.Equal(t, []int{1, 2}, vals)
	require.Equal(t, []string{"control", "actuate", "remains"}, order[:3])
}

func TestLoopStopsOnRunnableFailure(t *testing.T) {
	l := NewLoop()
	errBroken := errors.New("link broken")
	l.AddRunnable(RunnableFunc(waitCancel), RunnableFunc(func(context.Context) error {
		return errBroken
	}))
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()
	select {
	case err := <-errCh:
		require.Equal(t, errBroken, err)
	case <-time.After(time.Second):
		require.FailNow(t, "loop not stopped")
	}
}

func TestLoopDropsUntakenMessages(t *testing.T) {
	l := NewLoop()
	var seen []int
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			seen = append(seen, mc.CurrentMessage().(*testMsg).val)
		}))
		return nil
	}))
	l.PostMessage(&testMsg{val: 1})
	l.iterate(context.Background(), time.Now())
	l.iterate(context.Background(), time.Now())
	require.Equal(t, []int{1}, seen)
}

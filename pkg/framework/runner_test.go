package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitCancel(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRunnerWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRunnerWith(ctx).Go(RunnableFunc(waitCancel), RunnableFunc(waitCancel))
	cancel()
	require.NoError(t, r.Wait())
}

func TestRunnerStopOnError(t *testing.T) {
	errBroken := errors.New("broken")
	r := NewRunner().StopOnError()
	r.Go(NamedRun("waiter", RunnableFunc(waitCancel)), RunnableFunc(func(context.Context) error {
		return errBroken
	}))
	select {
	case <-r.Failed():
	case <-time.After(time.Second):
		require.FailNow(t, "runner not failed")
	}
	require.Equal(t, errBroken, r.Err())
	err := r.Wait()
	require.True(t, errors.Is(err, errBroken))
}

type testCloser struct {
	closed int
	ch     chan struct{}
}

func (c *testCloser) Close() error {
	c.closed++
	close(c.ch)
	return nil
}

func TestRunWithContextCloser(t *testing.T) {
	t.Run("cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		closer := &testCloser{ch: make(chan struct{})}
		go cancel()
		err := RunWithContextCloser(ctx, closer, func() error {
			<-closer.ch
			return errors.New("closed")
		})
		require.Equal(t, context.Canceled, err)
		require.Equal(t, 1, closer.closed)
	})
	t.Run("exit", func(t *testing.T) {
		closer := &testCloser{ch: make(chan struct{})}
		errDone := errors.New("done")
		err := RunWithContextCloser(context.Background(), closer, func() error {
			return errDone
		})
		require.Equal(t, errDone, err)
		require.Equal(t, 1, closer.closed)
	})
}

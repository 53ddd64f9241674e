package framework

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/golang/glog"
)

// ErrForcedExit is returned by Runner.Wait when a second stop signal
// arrives before all Runnables stop.
var ErrForcedExit = errors.New("forced exit")

type namedRunnable struct {
	Runnable
	name string
}

func (r *namedRunnable) Name() string {
	return r.name
}

// NamedRun wraps a Runnable with a name used in logs.
func NamedRun(name string, runnable Runnable) Runnable {
	return &namedRunnable{name: name, Runnable: runnable}
}

// Runner runs Runnables in goroutines and collects their errors.
// context.Canceled is not considered an error.
type Runner struct {
	Context context.Context
	Runners []Runnable

	wg     sync.WaitGroup
	lock   sync.Mutex
	errs   AggregatedError
	first  error
	failed chan struct{}
	cancel context.CancelFunc
	forced chan struct{}
}

// NewRunner creates a runner with a default background context.
func NewRunner() *Runner {
	return NewRunnerWith(context.Background())
}

// NewRunnerWith creates a runner with a specified context.
func NewRunnerWith(ctx context.Context) *Runner {
	return &Runner{
		Context: ctx,
		failed:  make(chan struct{}),
		forced:  make(chan struct{}),
	}
}

// StopOnError cancels all Runnables once any of them fails. Must be called
// before Go.
func (r *Runner) StopOnError() *Runner {
	r.Context, r.cancel = context.WithCancel(r.Context)
	return r
}

// HandleSignals cancels the context on SIGINT or SIGTERM. A second signal
// makes Wait return ErrForcedExit immediately.
func (r *Runner) HandleSignals() *Runner {
	var cancel context.CancelFunc
	r.Context, cancel = context.WithCancel(r.Context)
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		glog.Infof("%v: stopping", sig)
		cancel()
		<-sigCh
		glog.Error("stop requested again, force exit")
		close(r.forced)
	}()
	return r
}

// Failed is closed when the first Runnable fails.
func (r *Runner) Failed() <-chan struct{} {
	return r.failed
}

// Err returns the error of the first failed Runnable.
func (r *Runner) Err() error {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.first
}

// Go spawns Runnables with the Runner's context.
func (r *Runner) Go(runners ...Runnable) *Runner {
	return r.GoWith(r.Context, runners...)
}

// GoWith spawns Runnables with a specified context.
func (r *Runner) GoWith(ctx context.Context, runners ...Runnable) *Runner {
	for _, runner := range runners {
		name := fmt.Sprintf("#%d", len(r.Runners))
		if named, ok := runner.(Named); ok {
			name = named.Name()
		}
		r.Runners = append(r.Runners, runner)
		r.wg.Add(1)
		go r.run(ctx, name, runner)
	}
	return r
}

func (r *Runner) run(ctx context.Context, name string, runner Runnable) {
	defer r.wg.Done()
	glog.V(4).Infof("Runner[%s] started", name)
	err := runner.Run(ctx)
	glog.V(4).Infof("Runner[%s] stopped: %v", name, err)
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.errs.Add(err)
	if r.first != nil {
		return
	}
	glog.Errorf("Runner[%s] failed: %v", name, err)
	r.first = err
	close(r.failed)
	if r.cancel != nil {
		r.cancel()
	}
}

// Wait waits until all Runnables stop and returns the aggregated errors.
func (r *Runner) Wait() error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()
	select {
	case <-r.forced:
		return ErrForcedExit
	case <-done:
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.errs.Aggregate()
}

// RunWithContextCancel runs fn which doesn't accept a context. onCancel
// is called when ctx is done to make fn return, and the result is
// context.Canceled.
func RunWithContextCancel(ctx context.Context, onCancel func(), fn func() error) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- fn()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	if onCancel != nil {
		onCancel()
	}
	<-errCh
	return context.Canceled
}

// RunWithContextCloser is RunWithContextCancel using closer to stop fn.
// closer is closed exactly once either way.
func RunWithContextCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	var once sync.Once
	closeOnce := func() { once.Do(func() { closer.Close() }) }
	defer closeOnce()
	return RunWithContextCancel(ctx, closeOnce, fn)
}

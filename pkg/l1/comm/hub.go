package comm

import (
	"context"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Hub is a Registrar serving any number of connections. Commands from all
// connections are posted into the loop and events are broadcasted.
type Hub struct {
	lock    sync.Mutex
	ctx     context.Context
	pipes   map[*Pipe]struct{}
	readyCh chan struct{}
}

// NewHub creates a Hub.
func NewHub() *Hub {
	return &Hub{
		pipes:   make(map[*Pipe]struct{}),
		readyCh: make(chan struct{}),
	}
}

// Serve runs a connection until it's closed or the Hub stops. It waits
// until the Hub is running in a loop.
func (h *Hub) Serve(name string, rw PacketReadWriter) error {
	<-h.readyCh
	ctx := h.ctx
	pipe := NewPipe(name, rw)
	pipe.Handler = postToLoop(pipe)

	h.lock.Lock()
	h.pipes[pipe] = struct{}{}
	count := len(h.pipes)
	h.lock.Unlock()
	glog.V(1).Infof("hub: %s connected, %d active", name, count)

	defer func() {
		h.lock.Lock()
		delete(h.pipes, pipe)
		count := len(h.pipes)
		h.lock.Unlock()
		glog.V(1).Infof("hub: %s disconnected, %d active", name, count)
	}()
	return fx.RunWithContextCloser(ctx, pipe, func() error {
		return pipe.Run(ctx)
	})
}

// Connections returns the number of active connections.
func (h *Hub) Connections() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.pipes)
}

// SendEvent implements Registrar.
func (h *Hub) SendEvent(ctx context.Context, msg fx.Message) error {
	h.lock.Lock()
	pipes := make([]*Pipe, 0, len(h.pipes))
	for pipe := range h.pipes {
		pipes = append(pipes, pipe)
	}
	h.lock.Unlock()

	var errs fx.AggregatedError
	for _, pipe := range pipes {
		if err := pipe.SendEvent(msg); err != nil {
			// the reading side of the pipe removes it.
			pipe.Close()
			errs.Add(err)
		}
	}
	return errs.Aggregate()
}

// Run implements Runnable.
func (h *Hub) Run(ctx context.Context) error {
	h.ctx = ctx
	close(h.readyCh)
	<-ctx.Done()
	return ctx.Err()
}

// AddToLoop implements LoopAdder.
func (h *Hub) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(h)
}

package stream

import (
	"context"
	"net"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// Listener accepts TCP connections and serves them with a Hub.
type Listener struct {
	Address string
	Hub     *comm.Hub

	addrCh chan net.Addr
}

// NewListener creates a Listener.
func NewListener(address string, hub *comm.Hub) *Listener {
	return &Listener{Address: address, Hub: hub, addrCh: make(chan net.Addr, 1)}
}

// Addr returns the listening address once the Listener is running.
func (l *Listener) Addr() <-chan net.Addr {
	return l.addrCh
}

// Run implements Runnable.
func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.Address)
	if err != nil {
		return err
	}
	glog.Infof("L1 stream listening on %s", ln.Addr())
	l.addrCh <- ln.Addr()
	return fx.RunWithContextCloser(ctx, ln, func() error {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return err
			}
			glog.V(1).Infof("L1 stream accepted %s", conn.RemoteAddr())
			go func() {
				err := l.Hub.Serve("tcp:"+conn.RemoteAddr().String(), New(conn))
				glog.V(1).Infof("L1 stream %s closed: %v", conn.RemoteAddr(), err)
			}()
		}
	})
}

// AddToLoop implements LoopAdder.
func (l *Listener) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

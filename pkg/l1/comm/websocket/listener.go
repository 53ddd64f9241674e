package websocket

import (
	"context"
	"net"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// DefaultPath is the HTTP path accepting websocket connections.
const DefaultPath = "/l1"

// Listener serves websocket connections with a Hub.
type Listener struct {
	Address string
	Path    string
	Hub     *comm.Hub

	addrCh chan net.Addr
}

// NewListener creates a Listener.
func NewListener(address string, hub *comm.Hub) *Listener {
	return &Listener{Address: address, Path: DefaultPath, Hub: hub, addrCh: make(chan net.Addr, 1)}
}

// Addr returns the listening address once the Listener is running.
func (l *Listener) Addr() <-chan net.Addr {
	return l.addrCh
}

// Handler serves a single websocket connection.
func (l *Listener) Handler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		err := l.Hub.Serve("ws:"+conn.Request().RemoteAddr, New(conn))
		glog.V(1).Infof("L1 websocket %s closed: %v", conn.Request().RemoteAddr, err)
	})
}

// Run implements Runnable.
func (l *Listener) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", l.Address)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(l.Path, l.Handler())
	server := &http.Server{Handler: mux}
	glog.Infof("L1 websocket listening on %s%s", ln.Addr(), l.Path)
	l.addrCh <- ln.Addr()
	err = fx.RunWithContextCancel(ctx, func() { server.Close() }, func() error {
		return server.Serve(ln)
	})
	if err == http.ErrServerClosed {
		err = nil
	}
	return err
}

// AddToLoop implements LoopAdder.
func (l *Listener) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

package stream

import (
	"bytes"
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	cmsgs "github.com/robotalks/courier/pkg/courier/msgs"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

func TestReadWriter(t *testing.T) {
	var buf bytes.Buffer
	rw := New(&buf)
	require.NoError(t, rw.WritePacket([]byte("hello")))
	require.NoError(t, rw.WritePacket(nil))
	require.Equal(t, []byte{5, 0, 0, 0, 'h', 'e', 'l', 'l', 'o', 0, 0, 0, 0}, buf.Bytes())

	pkt, err := rw.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), pkt)
	pkt, err = rw.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = rw.ReadPacket()
	require.Equal(t, io.EOF, err)
	require.NoError(t, rw.Close())
}

type eventSink struct {
	lock   sync.Mutex
	events []fx.Message
}

func (s *eventSink) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if st, ok := mc.CurrentMessage().(*cmsgs.NavStatus); ok {
			mc.MessageTaken()
			s.lock.Lock()
			s.events = append(s.events, st)
			s.lock.Unlock()
		}
	}))
	return nil
}

func (s *eventSink) count() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.events)
}

func TestHubOverTCP(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := comm.NewHub()
	ln := NewListener("127.0.0.1:0", hub)
	server := fx.NewLoop()
	server.Add(hub, ln)
	server.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			cmdMsg, ok := mc.CurrentMessage().(*l1.CommandMsg)
			if !ok {
				return
			}
			if _, ok := cmdMsg.Command.Msg().(*cmsgs.NavStatusQuery); ok {
				mc.MessageTaken()
				cmdMsg.Command.Done(&cmsgs.NavStatusReply{Status: &cmsgs.NavStatus{Mode: "Forward", Gear: 3}})
			}
		}))
		return nil
	}))
	server.Add(&comm.UnsupportedCommands{})
	go server.Run(ctx)

	var addr net.Addr
	select {
	case addr = <-ln.Addr():
	case <-time.After(time.Second):
		require.FailNow(t, "listener not started")
	}

	connector := NewConnector(addr.String(), l1.ControllerRef{Type: "courier", ID: "test"})
	infos, err := connector.Discover(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	conn, err := connector.Connect(ctx, infos[0].Ref)
	require.NoError(t, err)
	sink := &eventSink{}
	client := fx.NewLoop()
	client.Add(conn.(fx.LoopAdder))
	client.AddController(fx.PrLvControl, sink)
	go client.Run(ctx)

	res := <-conn.DoCommand(&cmsgs.NavStatusQuery{}).ResultChan()
	require.NoError(t, res.Err)
	reply, ok := res.Msg.(*cmsgs.NavStatusReply)
	require.True(t, ok)
	require.Equal(t, "Forward", reply.Status.Mode)
	require.Equal(t, uint32(3), reply.Status.Gear)

	res = <-conn.DoCommand(&cmsgs.HistoryQuery{}).ResultChan()
	require.Error(t, res.Err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())

	require.Equal(t, 1, hub.Connections())
	require.NoError(t, hub.SendEvent(ctx, &cmsgs.NavStatus{Navigation: "Driving"}))
	require.Eventually(t, func() bool { return sink.count() == 1 }, time.Second, 10*time.Millisecond)
}

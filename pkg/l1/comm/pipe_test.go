package comm

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

const (
	testPingTypeID  = msgs.GroupCustom | 0x00fe0000 | 0x0001
	testTickTypeID  = msgs.TypeIDKindEvent | msgs.GroupCustom | 0x00fe0000 | 0x0002
	testNoopTypeID  = msgs.GroupCustom | 0x00fe0000 | 0x0003
	testUnknownType = msgs.GroupCustom | 0x00fe0000 | 0x00ff
)

type testPing struct {
	Text string `protobuf:"bytes,1,opt,name=text,proto3" json:"text,omitempty"`
}

func (m *testPing) NewMessage() fx.Message      { return &testPing{} }
func (m *testPing) TypeID() uint32              { return testPingTypeID }
func (m *testPing) Serializable() proto.Message { return m }
func (m *testPing) ProtoMessage()               {}
func (m *testPing) Reset()                      { *m = testPing{} }
func (m *testPing) String() string              { return proto.CompactTextString(m) }

type testTick struct {
	Count uint32 `protobuf:"varint,1,opt,name=count,proto3" json:"count,omitempty"`
}

func (m *testTick) NewMessage() fx.Message      { return &testTick{} }
func (m *testTick) TypeID() uint32              { return testTickTypeID }
func (m *testTick) Serializable() proto.Message { return m }
func (m *testTick) ProtoMessage()               {}
func (m *testTick) Reset()                      { *m = testTick{} }
func (m *testTick) String() string              { return proto.CompactTextString(m) }

type testNoop struct{}

func (m *testNoop) NewMessage() fx.Message      { return &testNoop{} }
func (m *testNoop) TypeID() uint32              { return testNoopTypeID }
func (m *testNoop) Serializable() proto.Message { return m }
func (m *testNoop) ProtoMessage()               {}
func (m *testNoop) Reset()                      {}
func (m *testNoop) String() string              { return "noop" }

func init() {
	msgs.Register((*testPing)(nil), (*testTick)(nil), (*testNoop)(nil))
}

// memEnd is one end of an in-memory packet transport.
type memEnd struct {
	in     <-chan []byte
	out    chan<- []byte
	closed chan struct{}
	once   *sync.Once
}

func memPair() (*memEnd, *memEnd) {
	a2b, b2a := make(chan []byte, 16), make(chan []byte, 16)
	closed, once := make(chan struct{}), &sync.Once{}
	return &memEnd{in: b2a, out: a2b, closed: closed, once: once},
		&memEnd{in: a2b, out: b2a, closed: closed, once: once}
}

func (e *memEnd) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-e.in:
		return pkt, nil
	case <-e.closed:
		return nil, io.EOF
	}
}

func (e *memEnd) WritePacket(pkt []byte) error {
	select {
	case e.out <- pkt:
		return nil
	case <-e.closed:
		return io.ErrClosedPipe
	}
}

func (e *memEnd) Close() error {
	e.once.Do(func() { close(e.closed) })
	return nil
}

type tickSink struct {
	lock   sync.Mutex
	counts []uint32
}

func (s *tickSink) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		if tick, ok := mc.CurrentMessage().(*testTick); ok {
			mc.MessageTaken()
			s.lock.Lock()
			s.counts = append(s.counts, tick.Count)
			s.lock.Unlock()
		}
	}))
	return nil
}

func (s *tickSink) get() []uint32 {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append([]uint32(nil), s.counts...)
}

func startPair(ctx context.Context) (*Registrar, *ControllerConn, *tickSink) {
	a, b := memPair()
	reg := &Registrar{}
	reg.Init(a)
	server := fx.NewLoop()
	server.Interval = 5 * time.Millisecond
	server.Add(reg)
	server.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			cmdMsg, ok := mc.CurrentMessage().(*l1.CommandMsg)
			if !ok {
				return
			}
			if ping, ok := cmdMsg.Command.Msg().(*testPing); ok {
				mc.MessageTaken()
				cmdMsg.Command.Done(msgs.NewCommandErr(errors.New("pong " + ping.Text)))
			}
		}))
		return nil
	}))
	server.Add(&UnsupportedCommands{})
	go server.Run(ctx)

	conn := &ControllerConn{}
	conn.Init(b)
	sink := &tickSink{}
	client := fx.NewLoop()
	client.Interval = 5 * time.Millisecond
	client.Add(conn)
	client.AddController(fx.PrLvControl, sink)
	go client.Run(ctx)
	return reg, conn, sink
}

func TestCommandRoundTrip(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, conn, _ := startPair(ctx)

	res := <-conn.DoCommand(&testPing{Text: "hi"}).ResultChan()
	require.Error(t, res.Err)
	require.Equal(t, "pong hi", res.Err.Error())
	require.Equal(t, 0, conn.Pending())

	res = <-conn.DoCommand(&testNoop{}).ResultChan()
	require.Error(t, res.Err)
	require.Equal(t, msgs.ErrUnsupportedCommand.Error(), res.Err.Error())
}

func TestEventsPostedToLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg, _, sink := startPair(ctx)

	require.NoError(t, reg.SendEvent(ctx, &testTick{Count: 1}))
	require.NoError(t, reg.SendEvent(ctx, &testTick{Count: 2}))
	require.Eventually(t, func() bool { return len(sink.get()) == 2 }, time.Second, time.Millisecond)
	require.Equal(t, []uint32{1, 2}, sink.get())

	require.Equal(t, ErrNotEvent, reg.SendEvent(ctx, &testPing{}))
	require.Equal(t, msgs.ErrNotSerializable, reg.SendEvent(ctx, &l1.CommandMsg{}))
}

func TestUnknownCommandReplied(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, b := memPair()
	pipe := NewPipe("test", a)
	go pipe.Run(ctx)

	require.NoError(t, (&Pipe{ReadWriter: b}).Send(&msgs.Typed{TypeId: testUnknownType, Sequence: 7}))
	pkt, err := b.ReadPacket()
	require.NoError(t, err)
	typed, err := msgs.DecodeTyped(pkt)
	require.NoError(t, err)
	require.Equal(t, msgs.CommandErrTypeID, typed.TypeId)
	require.Equal(t, uint32(7), typed.Sequence)
	msg, err := typed.Decode()
	require.NoError(t, err)
	require.Contains(t, msg.(*msgs.CommandErr).Error(), "unknown type")
	b.Close()
}

func TestCommandTimeout(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	a, b := memPair()
	defer a.Close()
	go func() {
		for {
			if _, err := a.ReadPacket(); err != nil {
				return
			}
		}
	}()

	conn := &ControllerConn{}
	conn.Init(b)
	conn.Expiration = 20 * time.Millisecond
	client := fx.NewLoop()
	client.Interval = 5 * time.Millisecond
	client.Add(conn)
	go client.Run(ctx)

	f := conn.DoCommand(&testPing{})
	require.Equal(t, 1, conn.Pending())
	select {
	case res := <-f.ResultChan():
		require.Equal(t, ErrCommandTimeout, res.Err)
		require.True(t, errors.Is(res.Err, context.DeadlineExceeded))
	case <-time.After(time.Second):
		require.FailNow(t, "command not expired")
	}
	require.Equal(t, 0, conn.Pending())
}

package comm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

// DefaultCommandExpiration is the default expiration expecting a result.
const DefaultCommandExpiration = 1 * time.Second

// ErrCommandTimeout is the result of a command not replied before it
// expires. It wraps context.DeadlineExceeded.
var ErrCommandTimeout = fmt.Errorf("command timeout: %w", context.DeadlineExceeded)

// ControllerConn implements l1.ControllerConn over a Pipe. Replies are
// matched to commands by sequence number. Events are posted into the loop.
type ControllerConn struct {
	Expiration time.Duration

	pipe    Pipe
	lock    sync.Mutex
	seq     uint32
	pending map[uint32]*commandFuture
	// expiring keeps pending futures in the order they were sent, which
	// is also the order they expire.
	expiring []*commandFuture
}

// Init initializes ControllerConn with defaults.
func (c *ControllerConn) Init(rw PacketReadWriter) {
	c.Expiration = DefaultCommandExpiration
	c.pipe.Name = "conn"
	c.pipe.ReadWriter = rw
	c.pipe.Handler = msgs.HandleTypedMsgFunc(c.handleTypedMsg)
	c.pending = make(map[uint32]*commandFuture)
}

// DoCommand implements ControllerConn. Sequence 0 is never used.
func (c *ControllerConn) DoCommand(msg fx.Message) l1.CommandFuture {
	c.lock.Lock()
	defer c.lock.Unlock()
	if c.seq++; c.seq == 0 {
		c.seq = 1
	}
	f := &commandFuture{
		seq:      c.seq,
		expireAt: time.Now().Add(c.Expiration),
		result:   make(chan l1.Result, 1),
	}
	if err := c.pipe.SendCommand(msg, f.seq); err != nil {
		f.resolve(l1.Result{Err: err})
		return f
	}
	c.pending[f.seq] = f
	c.expiring = append(c.expiring, f)
	return f
}

// Pending returns the number of commands waiting for replies.
func (c *ControllerConn) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.pending)
}

// AddToLoop implements LoopAdder.
func (c *ControllerConn) AddToLoop(l *fx.Loop) {
	l.Add(&c.pipe)
	l.AddController(fx.PrLvIdle, fx.ControlFunc(c.expire))
}

func (c *ControllerConn) handleTypedMsg(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
	if typed.IsEvent() {
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(msg)
		loopCtl.TriggerNext()
		return nil
	}
	if !typed.IsReply() {
		glog.V(2).Infof("conn: ignore command %08x from controller", typed.TypeId)
		return nil
	}
	c.lock.Lock()
	f := c.pending[typed.Sequence]
	delete(c.pending, typed.Sequence)
	c.lock.Unlock()
	if f == nil {
		glog.V(2).Infof("conn: reply %08x to unknown sequence %d", typed.TypeId, typed.Sequence)
		return nil
	}
	f.resolve(l1.Result{Msg: msg, Err: msgs.ReplyError(msg)})
	return nil
}

func (c *ControllerConn) expire(cc fx.ControlContext) error {
	now := time.Now()
	c.lock.Lock()
	defer c.lock.Unlock()
	n := 0
	for _, f := range c.expiring {
		if _, ok := c.pending[f.seq]; !ok {
			n++
			continue
		}
		if f.expireAt.After(now) {
			break
		}
		delete(c.pending, f.seq)
		f.resolve(l1.Result{Err: ErrCommandTimeout})
		n++
	}
	c.expiring = c.expiring[n:]
	return nil
}

type commandFuture struct {
	seq      uint32
	expireAt time.Time
	result   chan l1.Result
	once     sync.Once
}

func (f *commandFuture) resolve(r l1.Result) {
	f.once.Do(func() {
		f.result <- r
		close(f.result)
	})
}

func (f *commandFuture) ResultChan() <-chan l1.Result {
	return f.result
}

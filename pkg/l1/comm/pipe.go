package comm

import (
	"context"
	"io"
	"sync"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

// Pipe exchanges Typed messages over a PacketReadWriter.
type Pipe struct {
	Name       string
	ReadWriter PacketReadWriter
	Handler    msgs.TypedMsgHandler

	writeLock sync.Mutex
}

// NewPipe creates a Pipe with given PacketReadWriter.
func NewPipe(name string, rw PacketReadWriter) *Pipe {
	return &Pipe{Name: name, ReadWriter: rw}
}

// SendCommand sends a command, or a reply to a command, with the
// sequence number.
func (p *Pipe) SendCommand(msg fx.Message, seq uint32) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsCommand() {
		return ErrNotCommand
	}
	typed.Sequence = seq
	return p.Send(typed)
}

// SendEvent sends an event.
func (p *Pipe) SendEvent(msg fx.Message) error {
	typed, err := msgs.TypedFrom(msg)
	if err != nil {
		return err
	}
	if !typed.IsEvent() {
		return ErrNotEvent
	}
	return p.Send(typed)
}

// Send writes the envelope as one packet.
func (p *Pipe) Send(typed *msgs.Typed) error {
	pkt, err := typed.Encode()
	if err != nil {
		return err
	}
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	return p.ReadWriter.WritePacket(pkt)
}

// Run reads packets until the transport fails and dispatches decoded
// messages to Handler. A command of unknown type is replied with a
// CommandErr, other undecodable packets are dropped.
func (p *Pipe) Run(ctx context.Context) error {
	defer p.Close()
	for {
		pkt, err := p.ReadWriter.ReadPacket()
		if err != nil {
			return err
		}
		typed, err := msgs.DecodeTyped(pkt)
		if err != nil {
			glog.Warningf("%s: drop malformed packet (%d bytes): %v", p.Name, len(pkt), err)
			continue
		}
		msg, err := typed.Decode()
		if err != nil {
			if typed.IsCommand() && !typed.IsReply() {
				if err := p.SendCommand(msgs.NewCommandErr(err), typed.Sequence); err != nil {
					return err
				}
			} else {
				glog.V(2).Infof("%s: drop %08x: %v", p.Name, typed.TypeId, err)
			}
			continue
		}
		if p.Handler == nil {
			continue
		}
		if err := p.Handler.HandleTypedMsg(ctx, msg, typed); err != nil {
			return err
		}
	}
}

// Close closes the transport if it's closable.
func (p *Pipe) Close() error {
	if closer, ok := p.ReadWriter.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// AddToLoop implements LoopAdder.
func (p *Pipe) AddToLoop(loop *fx.Loop) {
	switch rw := p.ReadWriter.(type) {
	case fx.LoopAdder:
		loop.Add(rw)
	case fx.Runnable:
		loop.AddRunnable(rw)
	}
	loop.AddRunnable(p)
}

package comm

import (
	"context"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

// Registrar implements l1.Registrar over a single Pipe.
type Registrar struct {
	pipe Pipe
}

// Init sets up the Registrar on the transport.
func (r *Registrar) Init(rw PacketReadWriter) {
	r.pipe = Pipe{Name: "registrar", ReadWriter: rw}
	r.pipe.Handler = postToLoop(&r.pipe)
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.pipe.SendEvent(msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.pipe)
}

// postToLoop posts commands received on pipe as l1.CommandMsg, replied on
// the same pipe, and events as they are.
func postToLoop(pipe *Pipe) msgs.TypedMsgHandler {
	return msgs.HandleTypedMsgFunc(func(ctx context.Context, msg fx.Message, typed *msgs.Typed) error {
		var posted fx.Message
		switch typed.Kind() {
		case msgs.KindCommand:
			posted = &l1.CommandMsg{Command: &receivedCommand{seq: typed.Sequence, msg: msg, pipe: pipe}}
		case msgs.KindEvent:
			posted = msg
		default:
			glog.V(2).Infof("%s: unexpected reply %08x", pipe.Name, typed.TypeId)
			return nil
		}
		loopCtl := fx.LoopCtlFrom(ctx)
		loopCtl.PostMessage(posted)
		loopCtl.TriggerNext()
		return nil
	})
}

// receivedCommand implements l1.Command.
type receivedCommand struct {
	seq  uint32
	msg  fx.Message
	pipe *Pipe
}

func (c *receivedCommand) Msg() fx.Message {
	return c.msg
}

func (c *receivedCommand) Done(reply fx.Message) error {
	return c.pipe.SendCommand(reply, c.seq)
}

// RegistrarMux publishes the controller through multiple Registrars,
// events are sent to all of them.
type RegistrarMux struct {
	Registrars []l1.Registrar
}

// Add adds more registrars.
func (r *RegistrarMux) Add(regs ...l1.Registrar) {
	r.Registrars = append(r.Registrars, regs...)
}

// SendEvent implements Registrar.
func (r *RegistrarMux) SendEvent(ctx context.Context, msg fx.Message) error {
	var errs fx.AggregatedError
	for _, reg := range r.Registrars {
		errs.Add(reg.SendEvent(ctx, msg))
	}
	return errs.Aggregate()
}

// AddToLoop implements LoopAdder.
func (r *RegistrarMux) AddToLoop(l *fx.Loop) {
	for _, reg := range r.Registrars {
		if adder, ok := reg.(fx.LoopAdder); ok {
			l.Add(adder)
		}
	}
}

// UnsupportedCommands replies commands nobody took with
// msgs.ErrUnsupportedCommand. It runs at the lowest priority.
type UnsupportedCommands struct{}

// Control implements Controller.
func (c *UnsupportedCommands) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		cmdMsg, ok := mc.CurrentMessage().(*l1.CommandMsg)
		if !ok {
			return
		}
		mc.MessageTaken()
		if err := cmdMsg.Command.Done(msgs.NewCommandErr(msgs.ErrUnsupportedCommand)); err != nil {
			glog.Warningf("reply unsupported command: %v", err)
		}
	}))
	return nil
}

// AddToLoop implements LoopAdder.
func (c *UnsupportedCommands) AddToLoop(loop *fx.Loop) {
	loop.AddController(fx.PrLvIdle, c)
}

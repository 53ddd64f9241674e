// Package bot runs the courier navigation controller in a control loop:
// commands arrive from the serial link and L1 registrars, the obstacle gate
// is polled every iteration and status changes are published as events.
package bot

import (
	"errors"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
	cmsgs "github.com/robotalks/courier/pkg/courier/msgs"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/env/controller"
	"github.com/robotalks/courier/pkg/l1/msgs"
	"github.com/robotalks/courier/pkg/link"
)

// ControllerType is the L1 controller type of the vehicle.
const ControllerType = "courier"

// ErrInboundDisabled is replied to drive commands while reversing.
var ErrInboundDisabled = errors.New("reversing, command ignored")

func init() {
	controller.SetControllerType(ControllerType, l1.ControllerMeta{
		Description: "courier vehicle with path reversal",
	})
}

// Bot connects a courier.Controller to the loop.
type Bot struct {
	Controller *courier.Controller
	Registrar  l1.Registrar
}

// New creates a Bot. registrar may be nil.
func New(ctl *courier.Controller, registrar l1.Registrar) *Bot {
	return &Bot{Controller: ctl, Registrar: registrar}
}

// AddToLoop implements LoopAdder.
func (b *Bot) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvSense, fx.ControlFunc(b.Sense))
	l.AddController(fx.PrLvControl, fx.ControlFunc(b.Dispatch))
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(b.Report))
}

// Sense polls the obstacle sensors.
func (b *Bot) Sense(cc fx.ControlContext) error {
	b.Controller.PollObstacles()
	return nil
}

// Dispatch handles link tokens and L1 commands.
func (b *Bot) Dispatch(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		switch msg := mc.CurrentMessage().(type) {
		case *link.TokenMsg:
			mc.MessageTaken()
			b.Controller.HandleCommand(msg.Token)
		case *l1.CommandMsg:
			reply := b.doCommand(msg.Command.Msg())
			if reply == nil {
				return
			}
			mc.MessageTaken()
			if err := msg.Command.Done(reply); err != nil {
				glog.Warningf("reply %T: %v", reply, err)
			}
		}
	}))
	return nil
}

func (b *Bot) doCommand(msg fx.Message) fx.Message {
	switch m := msg.(type) {
	case *cmsgs.DriveCommand:
		tok, err := m.CourierToken()
		if err != nil && !m.IsByte() {
			return msgs.NewCommandErr(err)
		}
		if !b.Controller.Status().Inbound {
			return msgs.NewCommandErr(ErrInboundDisabled)
		}
		// an unknown byte keeps the link alive like on the serial link.
		b.Controller.HandleCommand(tok)
		if err != nil {
			return msgs.NewCommandErr(err)
		}
		return msgs.NewCommandOK()
	case *cmsgs.NavStatusQuery:
		return &cmsgs.NavStatusReply{Status: cmsgs.NewNavStatus(b.Controller.Status())}
	case *cmsgs.HistoryQuery:
		return cmsgs.NewHistoryReply(b.Controller.Records())
	}
	return nil
}

// Report publishes the status when it changes.
func (b *Bot) Report(cc fx.ControlContext) error {
	st, changed := b.Controller.StatusChange()
	if !changed {
		return nil
	}
	glog.V(1).Infof("status: %s/%s handler=%s mode=%s gear=%d history=%d/%d paused=%v",
		st.Navigation, st.Connection, st.Handler, st.Mode, st.Gear, st.History, st.Capacity, st.Paused)
	if b.Registrar == nil {
		return nil
	}
	return b.Registrar.SendEvent(cc.Context(), cmsgs.NewNavStatus(st))
}

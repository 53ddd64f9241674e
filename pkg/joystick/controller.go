// Package joystick drives a courier vehicle with a joystick.
package joystick

import (
	"context"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
	"github.com/robotalks/courier/pkg/courier/msgs"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/joystick/device"
	"github.com/robotalks/courier/pkg/l1"
)

// Sender delivers tokens to a courier.
type Sender interface {
	Send(courier.Token) error
}

// connSender sends tokens as DriveCommands on an L1 connection.
type connSender struct {
	conn l1.ControllerConn
}

// ConnSender creates a Sender over an L1 connection. Send doesn't wait for
// the result, failed commands are logged.
func ConnSender(conn l1.ControllerConn) Sender {
	return &connSender{conn: conn}
}

func (s *connSender) Send(tok courier.Token) error {
	f := s.conn.DoCommand(msgs.NewDriveCommand(tok))
	go func() {
		if res := <-f.ResultChan(); res.Err != nil {
			glog.Warningf("%s: %v", tok, res.Err)
		}
	}()
	return nil
}

// Controller is an L2 controller which sends the tokens mapped from
// joystick events to a courier.
type Controller struct {
	Sender      Sender
	DeviceIndex int
	Verbose     bool
	Heartbeat   time.Duration
	Mapper      *Mapper

	// Open opens the joystick, defaults to device.Open or
	// device.DetectAndOpen per DeviceIndex.
	Open func() (device.Device, error)

	eventCh     chan device.Event
	device      device.Device
	deviceTimer <-chan time.Time
	lastSent    time.Time
}

// NewController creates a Controller.
func NewController(sender Sender) *Controller {
	return &Controller{
		Sender:      sender,
		DeviceIndex: defaultConfig.DeviceIndex,
		Heartbeat:   defaultConfig.Heartbeat,
		Mapper:      NewMapper(),
	}
}

// AddToLoop implements LoopAdder.
func (c *Controller) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(c)
	loop.AddController(fx.PrLvControl, c)
}

func (c *Controller) open() (device.Device, error) {
	if c.Open != nil {
		return c.Open()
	}
	if c.DeviceIndex >= 0 {
		return device.Open(c.DeviceIndex)
	}
	return device.DetectAndOpen(0)
}

// Run implements Runnable.
func (c *Controller) Run(ctx context.Context) error {
	defer func() {
		if c.device != nil {
			c.device.Close()
		}
	}()
	loopCtl := fx.LoopCtlFrom(ctx)
	var heartbeatCh <-chan time.Time
	if c.Heartbeat > 0 {
		ticker := time.NewTicker(c.Heartbeat)
		defer ticker.Stop()
		heartbeatCh = ticker.C
	}
	c.deviceTimer = time.After(0)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.deviceTimer:
			c.deviceTimer = nil
			js, err := c.open()
			switch {
			case err != nil:
				glog.Warningf("open joystick: %v", err)
			case js == nil:
				glog.V(2).Info("no joystick detected")
			default:
				glog.Infof("joystick %d %q opened, %d axes, %d buttons",
					js.Index(), js.Name(), js.AxisCount(), js.ButtonCount())
				c.device, c.eventCh = js, make(chan device.Event, 1)
				go c.pollJoystick(ctx, c.device, c.eventCh)
			}
			if c.device == nil {
				c.deviceTimer = time.After(time.Second)
			}
		case ev, ok := <-c.eventCh:
			if ok {
				loopCtl.PostMessage(&eventMsg{event: ev})
			} else {
				loopCtl.PostMessage(&eventMsg{lost: true})
				c.device.Close()
				c.device, c.eventCh = nil, nil
				c.deviceTimer = time.After(time.Second)
			}
			loopCtl.TriggerNext()
		case <-heartbeatCh:
			loopCtl.PostMessage(&heartbeatMsg{})
			loopCtl.TriggerNext()
		}
	}
}

// Control implements Controller.
func (c *Controller) Control(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mctx fx.MessageProcessingContext) {
		switch msg := mctx.CurrentMessage().(type) {
		case *eventMsg:
			mctx.MessageTaken()
			if msg.lost {
				c.send(c.Mapper.Reset()...)
			} else {
				c.send(c.Mapper.Map(msg.event)...)
			}
		case *heartbeatMsg:
			mctx.MessageTaken()
			if c.Mapper.Mode() != courier.ModeStop && time.Since(c.lastSent) >= c.Heartbeat {
				c.send(courier.Token{Command: courier.CmdHeartbeat})
			}
		}
	}))
	return nil
}

func (c *Controller) send(toks ...courier.Token) {
	for _, tok := range toks {
		glog.V(2).Infof("send %s", tok)
		if err := c.Sender.Send(tok); err != nil {
			glog.Errorf("send %s: %v", tok, err)
			continue
		}
		c.lastSent = time.Now()
	}
}

func (c *Controller) pollJoystick(ctx context.Context, dev device.Device, ch chan<- device.Event) {
	defer close(ch)
	for {
		ev, err := dev.ReadEvent()
		if err != nil {
			glog.Warningf("joystick read error: %v", err)
			return
		}
		if c.Verbose {
			var prefix string
			if ev.IsInit() {
				prefix = "[INIT] "
			}
			switch evt := ev.(type) {
			case device.AxisEvent:
				glog.Infof(prefix+"axis %d: %d", evt.Index(), evt.Value())
			case device.ButtonEvent:
				glog.Infof(prefix+"button %d: %v", evt.Index(), evt.Pressed())
			}
		}
		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

type eventMsg struct {
	event device.Event
	lost  bool
}

func (m *eventMsg) NewMessage() fx.Message { return &eventMsg{} }

type heartbeatMsg struct{}

func (m *heartbeatMsg) NewMessage() fx.Message { return &heartbeatMsg{} }

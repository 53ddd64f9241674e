package mqtt

import (
	"context"
	"encoding/json"
	"time"

	"github.com/golang/glog"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// DefaultConnectRetry is the interval between attempts of connecting
// the broker the first time. Reconnects are handled by the client.
const DefaultConnectRetry = 3 * time.Second

// Registrar implements l1.Registrar using MQTT. The meta topic is retained
// while the controller is online and cleared by the will otherwise.
type Registrar struct {
	Queue        *Queue
	Info         l1.ControllerInfo
	ConnectRetry time.Duration

	meta      []byte
	registrar comm.Registrar
}

// NewRegistrar creates a Registrar.
func NewRegistrar(brokerURL string, info l1.ControllerInfo) (*Registrar, error) {
	meta, err := json.Marshal(&info.Meta)
	if err != nil {
		return nil, err
	}
	ep, err := ParseURL(brokerURL)
	if err != nil {
		return nil, err
	}
	ep.Options.SetBinaryWill(ep.TopicPrefix+metaTopic(info.Ref), nil, 1, true)
	if ep.Options.ClientID == "" {
		ep.Options.SetClientID("courier:" + info.Ref.Name())
	}
	r := &Registrar{
		Queue:        ep.NewQueue(),
		Info:         info,
		ConnectRetry: DefaultConnectRetry,
		meta:         meta,
	}
	r.Queue.OnConnect = r.publishMeta
	r.registrar.Init(NewPacketReadWriter(r.Queue).ForController(info.Ref))
	return r, nil
}

func metaTopic(ref l1.ControllerRef) string {
	return ref.Name() + "/" + TopicMeta
}

// SendEvent implements Registrar.
func (r *Registrar) SendEvent(ctx context.Context, msg fx.Message) error {
	return r.registrar.SendEvent(ctx, msg)
}

// AddToLoop implements LoopAdder.
func (r *Registrar) AddToLoop(loop *fx.Loop) {
	loop.Add(&r.registrar)
	loop.AddRunnable(r)
}

// Run connects the broker, retrying until it succeeds, and goes offline
// when ctx is done.
func (r *Registrar) Run(ctx context.Context) error {
	for {
		token := r.Queue.Connect()
		token.Wait()
		err := token.Error()
		if err == nil {
			break
		}
		glog.Warningf("%s: connect broker: %v", r.Info.Ref.Name(), err)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(r.ConnectRetry):
		}
	}
	<-ctx.Done()
	r.Queue.PubWith(metaTopic(r.Info.Ref), nil, 1, true).WaitTimeout(time.Second)
	r.Queue.Close()
	return nil
}

func (r *Registrar) publishMeta(q *Queue) {
	q.PubWith(metaTopic(r.Info.Ref), r.meta, 1, true)
}

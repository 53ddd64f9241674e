package mqtt

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// Connector implements l1.Connector using MQTT.
type Connector struct {
	DiscoverTimeout time.Duration

	endpoint *Endpoint
}

// DefaultDiscoverTimeout defines the default timeout value of discovery.
const DefaultDiscoverTimeout = 500 * time.Millisecond

// NewConnector creates a Connector.
func NewConnector(brokerURL string) (*Connector, error) {
	ep, err := ParseURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return &Connector{DiscoverTimeout: DefaultDiscoverTimeout, endpoint: ep}, nil
}

// Discover implements Connector. It collects the retained meta of every
// online controller until DiscoverTimeout. Results are sorted by reference.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	q := c.endpoint.NewQueue()
	defer q.Close()
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}

	var lock sync.Mutex
	found := make(map[string]l1.ControllerInfo)
	q.Sub("+/+/"+TopicMeta, Handler(func(topic string, payload []byte) {
		info, online := parseMeta(topic, payload)
		if info.Ref.Type == "" {
			return
		}
		lock.Lock()
		defer lock.Unlock()
		if online {
			found[info.Ref.String()] = info
		} else {
			delete(found, info.Ref.String())
		}
	}))

	dur := c.DiscoverTimeout
	if dur == 0 {
		dur = DefaultDiscoverTimeout
	}
	select {
	case <-time.After(dur):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	lock.Lock()
	defer lock.Unlock()
	res := make([]l1.ControllerInfo, 0, len(found))
	for _, info := range found {
		res = append(res, info)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].Ref.String() < res[j].Ref.String()
	})
	return res, nil
}

// parseMeta decodes a retained meta message. The Ref is left empty for
// topics other than TYPE/ID/meta. An empty payload is the will of a
// controller gone offline.
func parseMeta(topic string, payload []byte) (info l1.ControllerInfo, online bool) {
	items := strings.Split(topic, "/")
	if len(items) != 3 || items[2] != TopicMeta {
		return info, false
	}
	info.Ref = l1.ControllerRef{Type: items[0], ID: items[1]}
	if len(payload) == 0 {
		return info, false
	}
	if err := json.Unmarshal(payload, &info.Meta); err != nil {
		glog.Warningf("%s: invalid meta: %v", topic, err)
	}
	return info, true
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	conn := &ControllerConn{
		Queue: c.endpoint.NewQueue(),
	}
	conn.Init(NewPacketReadWriter(conn.Queue).ForConnector(ref))
	if token := conn.Queue.Connect(); token.Wait() && token.Error() != nil {
		conn.Queue.Close()
		return nil, token.Error()
	}
	glog.V(1).Infof("mqtt: connected to %s", ref)
	return conn, nil
}

// ControllerConn is a comm.ControllerConn over its own MQTT client.
type ControllerConn struct {
	comm.ControllerConn
	Queue *Queue
}

// Close disconnects from the broker.
func (c *ControllerConn) Close() error {
	return c.Queue.Close()
}

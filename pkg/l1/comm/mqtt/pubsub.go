// Package mqtt carries L1 messages over an MQTT broker. A controller
// TYPE/ID subscribes to TYPE/ID/cmd, publishes on TYPE/ID/msg and keeps a
// retained TYPE/ID/meta for discovery. All topics are under the path of
// the broker URL.
package mqtt

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang/glog"
)

// Handler is the callback when a message is received.
type Handler func(topic string, payload []byte)

// ConnectHandler is to handle connect/disconnect events.
type ConnectHandler func(*Queue)

// Endpoint is a parsed broker URL:
//
//   mqtt://[user[:password]@]host[:port]/topic/prefix/?client-id=&keepalive=&connect-timeout=&qos=
type Endpoint struct {
	Options     *paho.ClientOptions
	TopicPrefix string
	QoS         byte
}

// ParseURL parses the broker URL. Scheme mqtt is plain TCP, other schemes
// (ssl, ws, wss) are passed to the client as is.
func ParseURL(brokerURL string) (*Endpoint, error) {
	u, err := url.Parse(brokerURL)
	if err != nil {
		return nil, err
	}
	scheme := u.Scheme
	if scheme == "" || scheme == "mqtt" {
		scheme = "tcp"
	}
	ep := &Endpoint{
		Options:     paho.NewClientOptions(),
		TopicPrefix: strings.TrimPrefix(u.Path, "/"),
	}
	ep.Options.AddBroker(scheme + "://" + u.Host).
		SetAutoReconnect(true).
		SetCleanSession(true)
	if u.User != nil {
		ep.Options.SetUsername(u.User.Username())
		if pwd, ok := u.User.Password(); ok {
			ep.Options.SetPassword(pwd)
		}
	}

	query := u.Query()
	if clientID := query.Get("client-id"); clientID != "" {
		ep.Options.SetClientID(clientID)
	}
	durations := []struct {
		key string
		set func(time.Duration) *paho.ClientOptions
	}{
		{"keepalive", ep.Options.SetKeepAlive},
		{"connect-timeout", ep.Options.SetConnectTimeout},
	}
	for _, d := range durations {
		if val := query.Get(d.key); val != "" {
			dur, err := time.ParseDuration(val)
			if err != nil {
				return nil, fmt.Errorf("invalid %s %q: %w", d.key, val, err)
			}
			d.set(dur)
		}
	}
	if val := query.Get("qos"); val != "" {
		qos, err := strconv.ParseUint(val, 10, 8)
		if err != nil || qos > 2 {
			return nil, fmt.Errorf("invalid qos %q", val)
		}
		ep.QoS = byte(qos)
	}
	return ep, nil
}

// NewQueue creates a Queue on the endpoint. It's not connected.
func (ep *Endpoint) NewQueue() *Queue {
	q := &Queue{TopicPrefix: ep.TopicPrefix, QoS: ep.QoS}
	opts := *ep.Options
	opts.SetOnConnectHandler(q.onConnect)
	opts.SetConnectionLostHandler(q.onConnectionLost)
	q.Client = paho.NewClient(&opts)
	return q
}

// Queue wraps an MQTT client and dispatches received messages to
// subscribers by topic relative to TopicPrefix.
type Queue struct {
	Client       paho.Client
	TopicPrefix  string
	QoS          byte
	OnConnect    ConnectHandler
	OnDisconnect ConnectHandler

	lock sync.RWMutex
	subs map[string]*topicSubs
}

type topicSubs struct {
	wildcard bool
	subs     []*Subscription
}

// Subscription is a handler on a topic, possibly with wildcards.
type Subscription struct {
	Token paho.Token

	queue   *Queue
	topic   string
	handler Handler
}

// NewQueueFromURL parses the URL and creates Queue.
func NewQueueFromURL(brokerURL string) (*Queue, error) {
	ep, err := ParseURL(brokerURL)
	if err != nil {
		return nil, err
	}
	return ep.NewQueue(), nil
}

// MatchTopic matches topic with pattern.
func MatchTopic(topic, pattern string) bool {
	tokensT, tokensP := strings.Split(topic, "/"), strings.Split(pattern, "/")
	for i, token := range tokensP {
		if token == "#" && i+1 == len(tokensP) {
			return true
		}
		if i >= len(tokensT) || (token != "+" && token != tokensT[i]) {
			return false
		}
	}
	return len(tokensP) == len(tokensT)
}

func isWildcard(topic string) bool {
	return strings.Contains(topic, "+") || strings.HasSuffix(topic, "#")
}

// Connect connects the client.
func (q *Queue) Connect() paho.Token {
	return q.Client.Connect()
}

// Close implements io.Closer.
func (q *Queue) Close() error {
	q.Client.Disconnect(0)
	return nil
}

// Sub subscribes a topic. The broker is only asked for the first
// subscription of a topic.
func (q *Queue) Sub(topic string, handler Handler) *Subscription {
	sub := &Subscription{queue: q, topic: topic, handler: handler}
	q.lock.Lock()
	if q.subs == nil {
		q.subs = make(map[string]*topicSubs)
	}
	ts := q.subs[topic]
	first := ts == nil
	if first {
		ts = &topicSubs{wildcard: isWildcard(topic)}
		q.subs[topic] = ts
	}
	ts.subs = append(ts.subs, sub)
	q.lock.Unlock()

	if first {
		glog.V(2).Infof("SUB %q", q.TopicPrefix+topic)
		sub.Token = q.Client.Subscribe(q.TopicPrefix+topic, q.QoS, q.dispatch)
	} else {
		sub.Token = &paho.DummyToken{}
	}
	return sub
}

// Pub publishes to a topic with the QoS of the Queue.
func (q *Queue) Pub(topic string, payload []byte) paho.Token {
	return q.PubWith(topic, payload, q.QoS, false)
}

// PubWith publishes with QoS and retain settings.
func (q *Queue) PubWith(topic string, payload []byte, qos byte, retain bool) paho.Token {
	return q.Client.Publish(q.TopicPrefix+topic, qos, retain, payload)
}

// Resubscribe subscribes all existing topics. Sessions are clean so it's
// done on every connect.
func (q *Queue) Resubscribe() paho.Token {
	q.lock.RLock()
	filters := make(map[string]byte, len(q.subs))
	for topic := range q.subs {
		filters[q.TopicPrefix+topic] = q.QoS
	}
	q.lock.RUnlock()
	if len(filters) == 0 {
		return &paho.DummyToken{}
	}
	glog.V(2).Infof("SUB %d topics", len(filters))
	return q.Client.SubscribeMultiple(filters, q.dispatch)
}

func (q *Queue) onConnect(paho.Client) {
	glog.Info("mqtt connected")
	q.Resubscribe()
	if h := q.OnConnect; h != nil {
		h(q)
	}
}

func (q *Queue) onConnectionLost(_ paho.Client, err error) {
	glog.Warningf("mqtt connection lost: %v", err)
	if h := q.OnDisconnect; h != nil {
		h(q)
	}
}

// handlers collects the handlers matching topic.
func (q *Queue) handlers(topic string) (handlers []Handler) {
	q.lock.RLock()
	defer q.lock.RUnlock()
	for pattern, ts := range q.subs {
		if pattern == topic || (ts.wildcard && MatchTopic(topic, pattern)) {
			for _, sub := range ts.subs {
				handlers = append(handlers, sub.handler)
			}
		}
	}
	return
}

func (q *Queue) dispatch(_ paho.Client, msg paho.Message) {
	topic := msg.Topic()
	if !strings.HasPrefix(topic, q.TopicPrefix) {
		return
	}
	topic = topic[len(q.TopicPrefix):]
	glog.V(3).Infof("RCV %q %d bytes", topic, len(msg.Payload()))
	for _, h := range q.handlers(topic) {
		h(topic, msg.Payload())
	}
}

// Close removes the handler, and unsubscribes the topic from the broker
// when it's the last one.
func (s *Subscription) Close() error {
	q := s.queue
	q.lock.Lock()
	ts := q.subs[s.topic]
	last := false
	if ts != nil {
		for i, sub := range ts.subs {
			if sub == s {
				ts.subs = append(ts.subs[:i], ts.subs[i+1:]...)
				break
			}
		}
		if last = len(ts.subs) == 0; last {
			delete(q.subs, s.topic)
		}
	}
	q.lock.Unlock()
	if !last {
		return nil
	}
	glog.V(2).Infof("UNSUB %q", q.TopicPrefix+s.topic)
	token := q.Client.Unsubscribe(q.TopicPrefix + s.topic)
	token.Wait()
	return token.Error()
}

package mqtt

import (
	"context"
	"io"

	"github.com/robotalks/courier/pkg/l1"
)

// Topic suffixes under TYPE/ID.
const (
	TopicCommands = "cmd"
	TopicMessages = "msg"
	TopicMeta     = "meta"
)

// packetBacklog is the number of received packets buffered before the
// subscription handler blocks.
const packetBacklog = 16

// ReadWriter implements comm.PacketReadWriter, one packet per MQTT
// message. It must run (it's a Runnable) to receive.
type ReadWriter struct {
	Queue    *Queue
	SubTopic string
	PubTopic string

	incoming chan []byte
	done     chan struct{}
}

// NewPacketReadWriter creates the ReadWriter without topics.
func NewPacketReadWriter(q *Queue) *ReadWriter {
	return &ReadWriter{
		Queue:    q,
		incoming: make(chan []byte, packetBacklog),
		done:     make(chan struct{}),
	}
}

// WithTopics specifies the topics.
func (p *ReadWriter) WithTopics(sub, pub string) *ReadWriter {
	p.SubTopic, p.PubTopic = sub, pub
	return p
}

// ForConnector receives from TYPE/ID/msg and sends to TYPE/ID/cmd.
func (p *ReadWriter) ForConnector(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/"+TopicMessages, ref.Name()+"/"+TopicCommands)
}

// ForController receives from TYPE/ID/cmd and sends to TYPE/ID/msg.
func (p *ReadWriter) ForController(ref l1.ControllerRef) *ReadWriter {
	return p.WithTopics(ref.Name()+"/"+TopicCommands, ref.Name()+"/"+TopicMessages)
}

// ReadPacket implements PacketReader. It returns io.EOF after Run stops.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	select {
	case pkt := <-p.incoming:
		return pkt, nil
	case <-p.done:
		return nil, io.EOF
	}
}

// WritePacket implements PacketWriter, it waits for the publish to
// complete according to the QoS.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	token := p.Queue.Pub(p.PubTopic, pkt)
	token.Wait()
	return token.Error()
}

// Run subscribes SubTopic until ctx is done.
func (p *ReadWriter) Run(ctx context.Context) error {
	sub := p.Queue.Sub(p.SubTopic, p.receive)
	defer sub.Close()
	defer close(p.done)
	<-ctx.Done()
	return ctx.Err()
}

func (p *ReadWriter) receive(_ string, payload []byte) {
	select {
	case p.incoming <- payload:
	case <-p.done:
	}
}

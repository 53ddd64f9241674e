// Package websocket carries L1 packets as binary websocket messages, so
// browsers can talk to the controller directly.
package websocket

import "golang.org/x/net/websocket"

// MaxPayloadBytes limits a received message.
const MaxPayloadBytes = 1 << 20

// ReadWriter implements comm.PacketReadWriter, one packet per message.
type ReadWriter struct {
	Conn *websocket.Conn
}

// New wraps websocket.Conn.
func New(conn *websocket.Conn) *ReadWriter {
	conn.MaxPayloadBytes = MaxPayloadBytes
	conn.PayloadType = websocket.BinaryFrame
	return &ReadWriter{Conn: conn}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var pkt []byte
	err := websocket.Message.Receive(p.Conn, &pkt)
	return pkt, err
}

// WritePacket implements PacketWriter.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	return websocket.Message.Send(p.Conn, pkt)
}

// Close implements io.Closer.
func (p *ReadWriter) Close() error {
	return p.Conn.Close()
}

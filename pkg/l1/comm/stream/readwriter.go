// Package stream carries L1 packets over a byte stream, usually TCP. Each
// packet is prefixed with its length as a 4-byte little-endian integer.
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
)

// MaxPacketSize limits the length a peer can announce.
const MaxPacketSize = 1 << 20

const headerSize = 4

// ReadWriter implements comm.PacketReadWriter on a stream.
type ReadWriter struct {
	Stream io.ReadWriter
}

// New creates a ReadWriter on the stream.
func New(s io.ReadWriter) *ReadWriter {
	return &ReadWriter{Stream: s}
}

// ReadPacket implements PacketReader.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var header [headerSize]byte
	if _, err := io.ReadFull(p.Stream, header[:]); err != nil {
		return nil, err
	}
	size := binary.LittleEndian.Uint32(header[:])
	if size > MaxPacketSize {
		return nil, fmt.Errorf("packet too large: %d bytes", size)
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.Stream, pkt); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements PacketWriter. Header and payload are written
// in one call.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	if len(pkt) > MaxPacketSize {
		return fmt.Errorf("packet too large: %d bytes", len(pkt))
	}
	buf := make([]byte, headerSize+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[headerSize:], pkt)
	_, err := p.Stream.Write(buf)
	return err
}

// Close implements io.Closer if the underlying stream does.
func (p *ReadWriter) Close() error {
	if closer, ok := p.Stream.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

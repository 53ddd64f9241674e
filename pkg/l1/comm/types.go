// Package comm implements the L1 messaging over any packet transport:
// the controller side (Registrar, Hub) and the connecting side
// (ControllerConn). Transports live in the sub-packages.
package comm

import "errors"

// PacketReader reads one whole packet per call.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes one whole packet per call.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter is what a transport provides. It may also implement
// io.Closer, fx.Runnable or fx.LoopAdder.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

var (
	// ErrNotCommand is returned when sending a non-command as a command
	// or a reply.
	ErrNotCommand = errors.New("not a command")
	// ErrNotEvent is returned when sending a non-event as an event.
	ErrNotEvent = errors.New("not an event")
)

package msgs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Type ID layout: bit 31 is the kind (0 command, 1 event), bits 16-30
// the group, bits 0-15 the ID in the group where bit 15 marks a reply.
const (
	TypeIDMaskKind  uint32 = 0x80000000
	TypeIDMaskGroup uint32 = 0x7fff0000
	TypeIDMaskID    uint32 = 0x0000ffff
	TypeIDMaskReply uint32 = 0x00008000
)

// Kinds in bit 31.
const (
	TypeIDKindCommand uint32 = 0x00000000
	TypeIDKindEvent   uint32 = 0x80000000
)

// Kind classifies a message by its type ID.
type Kind int

// Kinds
const (
	KindCommand Kind = iota
	KindReply
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindReply:
		return "reply"
	case KindEvent:
		return "event"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// KindOf classifies a type ID.
func KindOf(typeID uint32) Kind {
	switch {
	case typeID&TypeIDMaskKind == TypeIDKindEvent:
		return KindEvent
	case typeID&TypeIDMaskReply != 0:
		return KindReply
	}
	return KindCommand
}

// Typed is the envelope of every message on the wire.
type Typed struct {
	TypeId   uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Sequence uint32 `protobuf:"varint,2,opt,name=sequence,proto3" json:"sequence,omitempty"`
	Message  []byte `protobuf:"bytes,3,opt,name=message,proto3" json:"message,omitempty"`
}

// ProtoMessage implements proto.Message.
func (p *Typed) ProtoMessage() {}

// Reset implements proto.Message.
func (p *Typed) Reset() { *p = Typed{} }

// String implements proto.Message.
func (p *Typed) String() string { return proto.CompactTextString(p) }

// Kind of the enclosed message.
func (p *Typed) Kind() Kind { return KindOf(p.TypeId) }

// IsCommand indicates a command or a reply, both carry a sequence.
func (p *Typed) IsCommand() bool { return p.Kind() != KindEvent }

// IsReply indicates a reply to a command.
func (p *Typed) IsReply() bool { return p.Kind() == KindReply }

// IsEvent indicates an event.
func (p *Typed) IsEvent() bool { return p.Kind() == KindEvent }

// TypedMsgHandler handles a decoded message with its envelope.
type TypedMsgHandler interface {
	HandleTypedMsg(context.Context, fx.Message, *Typed) error
}

// HandleTypedMsgFunc is func form of TypedMsgHandler.
type HandleTypedMsgFunc func(context.Context, fx.Message, *Typed) error

// HandleTypedMsg implements TypedMsgHandler.
func (f HandleTypedMsgFunc) HandleTypedMsg(ctx context.Context, msg fx.Message, typed *Typed) error {
	return f(ctx, msg, typed)
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %08x", e.TypeID)
}

var (
	// ErrNotSerializable indicates the message is not serializable.
	ErrNotSerializable = errors.New("not serializable message")
	// ErrUnsupportedCommand indicates the command is unsupported.
	ErrUnsupportedCommand = errors.New("unsupported command")
)

// SerializableMessage can be serialized over the wire.
type SerializableMessage interface {
	fx.Message
	TypeID() uint32
	Serializable() proto.Message
}

var (
	registryLock sync.RWMutex
	registry     = make(map[uint32]SerializableMessage)
)

// Register makes messages decodable by their type IDs, usually called
// with nil pointers from init. It panics on a conflicting type ID.
func Register(msgs ...SerializableMessage) {
	registryLock.Lock()
	defer registryLock.Unlock()
	for _, msg := range msgs {
		typeID := msg.TypeID()
		if existing, ok := registry[typeID]; ok {
			panic(fmt.Sprintf("type %08x registered by %T and %T", typeID, existing, msg))
		}
		registry[typeID] = msg
	}
}

// Lookup finds the registered message of type ID.
func Lookup(typeID uint32) (SerializableMessage, bool) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	msg, ok := registry[typeID]
	return msg, ok
}

// TypedFrom encodes a serializable message into the envelope.
func TypedFrom(msg fx.Message) (*Typed, error) {
	s, ok := msg.(SerializableMessage)
	if !ok {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(s.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{TypeId: s.TypeID(), Message: data}, nil
}

// Decode decodes the enclosed message by its registered type.
func (p *Typed) Decode() (fx.Message, error) {
	msgType, ok := Lookup(p.TypeId)
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.(SerializableMessage).Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the Typed to bytes.
func (p *Typed) Encode() ([]byte, error) {
	return proto.Marshal(p)
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

func init() {
	Register((*CommandOK)(nil), (*CommandErr)(nil))
}

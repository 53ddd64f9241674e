package msgs

import (
	"errors"

	"github.com/golang/protobuf/proto"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Groups partition the type ID space. Bits 16..30 select the group.
const (
	GroupCommand uint32 = 0x00000000
	// GroupCustom is the first group of application messages.
	GroupCustom uint32 = 0x7f000000
)

// Generic replies.
const (
	CommandOKTypeID  = GroupCommand | TypeIDMaskReply
	CommandErrTypeID = CommandOKTypeID | 0x0001
)

// ErrUnknownCommand indicates the command is unknown.
var ErrUnknownCommand = errors.New("unknown command")

// CommandOK replies a command which succeeded without a specific reply.
type CommandOK struct{}

// NewCommandOK creates a CommandOK.
func NewCommandOK() *CommandOK {
	return &CommandOK{}
}

// NewMessage implements Message.
func (m *CommandOK) NewMessage() fx.Message      { return &CommandOK{} }
func (m *CommandOK) TypeID() uint32              { return CommandOKTypeID }
func (m *CommandOK) Serializable() proto.Message { return m }
func (m *CommandOK) ProtoMessage()               {}
func (m *CommandOK) Reset()                      { *m = CommandOK{} }
func (m *CommandOK) String() string              { return proto.CompactTextString(m) }

// CommandErr replies a failed command. It's also an error.
type CommandErr struct {
	Message string `protobuf:"bytes,1,opt,name=message,proto3" json:"message,omitempty"`
}

// NewCommandErr creates a CommandErr from err.
func NewCommandErr(err error) *CommandErr {
	return &CommandErr{Message: err.Error()}
}

// NewCommandErrFromMsg creates a CommandErr with a message.
func NewCommandErrFromMsg(message string) *CommandErr {
	return &CommandErr{Message: message}
}

// NewMessage implements Message.
func (m *CommandErr) NewMessage() fx.Message      { return &CommandErr{} }
func (m *CommandErr) TypeID() uint32              { return CommandErrTypeID }
func (m *CommandErr) Serializable() proto.Message { return m }
func (m *CommandErr) ProtoMessage()               {}
func (m *CommandErr) Reset()                      { *m = CommandErr{} }
func (m *CommandErr) String() string              { return proto.CompactTextString(m) }
func (m *CommandErr) Error() string               { return m.Message }

// ReplyError extracts the error carried by a reply, nil unless reply is a
// CommandErr.
func ReplyError(reply fx.Message) error {
	if cmdErr, ok := reply.(*CommandErr); ok {
		return cmdErr
	}
	return nil
}

// Package msgs defines the L1 messages of the courier vehicle.
package msgs

import (
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/courier/pkg/courier"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

// DriveCommand sends one link token to the vehicle.
type DriveCommand struct {
	Token uint32 `protobuf:"varint,1,opt,name=token,proto3" json:"token,omitempty"`
	Text  string `protobuf:"bytes,2,opt,name=text,proto3" json:"text,omitempty"`
}

// NewDriveCommand creates a DriveCommand from a token.
func NewDriveCommand(tok courier.Token) *DriveCommand {
	return &DriveCommand{Token: uint32(tok.Command), Text: tok.Text}
}

// CourierToken converts to courier.Token.
func (m *DriveCommand) CourierToken() (courier.Token, error) {
	tok := courier.Token{Command: courier.Command(m.Token), Text: m.Text}
	if !m.IsByte() || !tok.Command.IsKnown() {
		return tok, fmt.Errorf("%w: token %#x", msgs.ErrUnknownCommand, m.Token)
	}
	return tok, nil
}

// IsByte indicates Token fits in a single link byte.
func (m *DriveCommand) IsByte() bool {
	return m.Token <= 0xff
}

// NewMessage implements Message.
func (m *DriveCommand) NewMessage() fx.Message { return &DriveCommand{} }

// TypeID implements SerializableMessage.
func (m *DriveCommand) TypeID() uint32 { return DriveCommandTypeID }

// Serializable implements SerializableMessage.
func (m *DriveCommand) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *DriveCommand) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DriveCommand) Reset() { *m = DriveCommand{} }

// String implements proto.Message.
func (m *DriveCommand) String() string { return proto.CompactTextString(m) }

// NavStatusQuery queries the navigation status.
type NavStatusQuery struct {
}

// NewMessage implements Message.
func (m *NavStatusQuery) NewMessage() fx.Message { return &NavStatusQuery{} }

// TypeID implements SerializableMessage.
func (m *NavStatusQuery) TypeID() uint32 { return NavStatusQueryTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatusQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatusQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatusQuery) Reset() { *m = NavStatusQuery{} }

// String implements proto.Message.
func (m *NavStatusQuery) String() string { return proto.CompactTextString(m) }

// NavStatusReply is the response for NavStatusQuery.
type NavStatusReply struct {
	Status *NavStatus `protobuf:"bytes,1,opt,name=status,proto3" json:"status,omitempty"`
}

// NewMessage implements Message.
func (m *NavStatusReply) NewMessage() fx.Message { return &NavStatusReply{} }

// TypeID implements SerializableMessage.
func (m *NavStatusReply) TypeID() uint32 { return NavStatusReplyTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatusReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatusReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatusReply) Reset() { *m = NavStatusReply{} }

// String implements proto.Message.
func (m *NavStatusReply) String() string { return proto.CompactTextString(m) }

// NavStatus is an Event message reflecting the navigation status.
type NavStatus struct {
	Navigation string `protobuf:"bytes,1,opt,name=navigation,proto3" json:"navigation,omitempty"`
	Connection string `protobuf:"bytes,2,opt,name=connection,proto3" json:"connection,omitempty"`
	Handler    string `protobuf:"bytes,3,opt,name=handler,proto3" json:"handler,omitempty"`
	Mode       string `protobuf:"bytes,4,opt,name=mode,proto3" json:"mode,omitempty"`
	Gear       uint32 `protobuf:"varint,5,opt,name=gear,proto3" json:"gear,omitempty"`
	History    uint32 `protobuf:"varint,6,opt,name=history,proto3" json:"history,omitempty"`
	Capacity   uint32 `protobuf:"varint,7,opt,name=capacity,proto3" json:"capacity,omitempty"`
	Dropped    uint32 `protobuf:"varint,8,opt,name=dropped,proto3" json:"dropped,omitempty"`
	Paused     bool   `protobuf:"varint,9,opt,name=paused,proto3" json:"paused,omitempty"`
	Inbound    bool   `protobuf:"varint,10,opt,name=inbound,proto3" json:"inbound,omitempty"`
}

// NewNavStatus converts courier.Status.
func NewNavStatus(st courier.Status) *NavStatus {
	return &NavStatus{
		Navigation: st.Navigation.String(),
		Connection: st.Connection.String(),
		Handler:    st.Handler.String(),
		Mode:       st.Mode.String(),
		Gear:       uint32(st.Gear),
		History:    uint32(st.History),
		Capacity:   uint32(st.Capacity),
		Dropped:    uint32(st.Dropped),
		Paused:     st.Paused,
		Inbound:    st.Inbound,
	}
}

// NewMessage implements Message.
func (m *NavStatus) NewMessage() fx.Message { return &NavStatus{} }

// TypeID implements SerializableMessage.
func (m *NavStatus) TypeID() uint32 { return NavStatusEventTypeID }

// Serializable implements SerializableMessage.
func (m *NavStatus) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *NavStatus) ProtoMessage() {}

// Reset implements proto.Message.
func (m *NavStatus) Reset() { *m = NavStatus{} }

// String implements proto.Message.
func (m *NavStatus) String() string { return proto.CompactTextString(m) }

// HistoryQuery lists the recorded moves.
type HistoryQuery struct {
}

// NewMessage implements Message.
func (m *HistoryQuery) NewMessage() fx.Message { return &HistoryQuery{} }

// TypeID implements SerializableMessage.
func (m *HistoryQuery) TypeID() uint32 { return HistoryQueryTypeID }

// Serializable implements SerializableMessage.
func (m *HistoryQuery) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *HistoryQuery) ProtoMessage() {}

// Reset implements proto.Message.
func (m *HistoryQuery) Reset() { *m = HistoryQuery{} }

// String implements proto.Message.
func (m *HistoryQuery) String() string { return proto.CompactTextString(m) }

// HistoryReply lists recorded moves from the oldest to the newest.
type HistoryReply struct {
	Records []*MoveRecord `protobuf:"bytes,1,rep,name=records,proto3" json:"records,omitempty"`
}

// NewHistoryReply converts recorded moves.
func NewHistoryReply(records []courier.MoveRecord) *HistoryReply {
	m := &HistoryReply{Records: make([]*MoveRecord, len(records))}
	for n, r := range records {
		m.Records[n] = &MoveRecord{
			Mode:     r.Mode.String(),
			Gear:     uint32(r.Gear),
			Ticks:    r.Elapsed.Ticks,
			SubTicks: r.Elapsed.SubTicks,
		}
	}
	return m
}

// NewMessage implements Message.
func (m *HistoryReply) NewMessage() fx.Message { return &HistoryReply{} }

// TypeID implements SerializableMessage.
func (m *HistoryReply) TypeID() uint32 { return HistoryReplyTypeID }

// Serializable implements SerializableMessage.
func (m *HistoryReply) Serializable() proto.Message { return m }

// ProtoMessage implements proto.Message.
func (m *HistoryReply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *HistoryReply) Reset() { *m = HistoryReply{} }

// String implements proto.Message.
func (m *HistoryReply) String() string { return proto.CompactTextString(m) }

// MoveRecord is one recorded move.
type MoveRecord struct {
	Mode     string `protobuf:"bytes,1,opt,name=mode,proto3" json:"mode,omitempty"`
	Gear     uint32 `protobuf:"varint,2,opt,name=gear,proto3" json:"gear,omitempty"`
	Ticks    uint32 `protobuf:"varint,3,opt,name=ticks,proto3" json:"ticks,omitempty"`
	SubTicks uint32 `protobuf:"varint,4,opt,name=sub_ticks,json=subTicks,proto3" json:"sub_ticks,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *MoveRecord) ProtoMessage() {}

// Reset implements proto.Message.
func (m *MoveRecord) Reset() { *m = MoveRecord{} }

// String implements proto.Message.
func (m *MoveRecord) String() string { return proto.CompactTextString(m) }

// GroupCourier defines the custom group.
const GroupCourier = msgs.GroupCustom | 0x00010000

// TypeIDs
const (
	NavStatusEventTypeID uint32 = GroupCourier | msgs.TypeIDKindEvent | 0x0000
	DriveCommandTypeID   uint32 = GroupCourier | 0x0000
	NavStatusQueryTypeID uint32 = GroupCourier | 0x0001
	NavStatusReplyTypeID uint32 = NavStatusQueryTypeID | msgs.TypeIDMaskReply
	HistoryQueryTypeID   uint32 = GroupCourier | 0x0002
	HistoryReplyTypeID   uint32 = HistoryQueryTypeID | msgs.TypeIDMaskReply
)

func init() {
	msgs.Register(
		(*NavStatus)(nil),
		(*DriveCommand)(nil),
		(*NavStatusQuery)(nil),
		(*NavStatusReply)(nil),
		(*HistoryQuery)(nil),
		(*HistoryReply)(nil),
	)
}

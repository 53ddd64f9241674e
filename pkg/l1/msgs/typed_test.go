package msgs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		typeID uint32
		kind   Kind
	}{
		{GroupCustom | 0x0001, KindCommand},
		{CommandOKTypeID, KindReply},
		{CommandErrTypeID, KindReply},
		{TypeIDKindEvent | GroupCustom | 0x0001, KindEvent},
		{TypeIDKindEvent | GroupCustom | TypeIDMaskReply, KindEvent},
	}
	for _, test := range tests {
		require.Equal(t, test.kind, KindOf(test.typeID), "%08x", test.typeID)
	}
	require.Equal(t, "reply", KindReply.String())
}

func TestTypedRoundTrip(t *testing.T) {
	typed, err := TypedFrom(NewCommandErrFromMsg("stuck"))
	require.NoError(t, err)
	typed.Sequence = 42
	require.True(t, typed.IsCommand())
	require.True(t, typed.IsReply())

	data, err := typed.Encode()
	require.NoError(t, err)
	decoded, err := DecodeTyped(data)
	require.NoError(t, err)
	require.Equal(t, uint32(42), decoded.Sequence)
	msg, err := decoded.Decode()
	require.NoError(t, err)
	require.Equal(t, "stuck", msg.(*CommandErr).Message)

	_, err = (&Typed{TypeId: GroupCustom | 0x7fff}).Decode()
	require.IsType(t, &ErrUnknownType{}, err)
}

func TestRegisterConflict(t *testing.T) {
	require.Panics(t, func() { Register((*CommandOK)(nil)) })
	msg, ok := Lookup(CommandOKTypeID)
	require.True(t, ok)
	require.IsType(t, (*CommandOK)(nil), msg)
}

func TestReplyError(t *testing.T) {
	require.NoError(t, ReplyError(NewCommandOK()))
	err := ReplyError(NewCommandErr(ErrUnknownCommand))
	require.EqualError(t, err, "unknown command")
	require.IsType(t, (*CommandErr)(nil), err)
}

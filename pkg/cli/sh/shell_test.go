package sh

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

func TestParseConnectArgs(t *testing.T) {
	tests := []struct {
		args []string
		ref  *l1.ControllerRef
		typ  string
		ok   bool
	}{
		{nil, nil, "", true},
		{[]string{"courier"}, nil, "courier", true},
		{[]string{"courier/car1"}, &l1.ControllerRef{Type: "courier", ID: "car1"}, "", true},
		{[]string{"courier", "car1"}, &l1.ControllerRef{Type: "courier", ID: "car1"}, "", true},
		{[]string{"courier/"}, nil, "", false},
		{[]string{"courier", ""}, nil, "", false},
		{[]string{"a", "b", "c"}, nil, "", false},
	}
	for _, test := range tests {
		ref, typ, err := parseConnectArgs(test.args)
		if !test.ok {
			require.Error(t, err, "%v", test.args)
			continue
		}
		require.NoError(t, err, "%v", test.args)
		require.Equal(t, test.ref, ref)
		require.Equal(t, test.typ, typ)
	}
}

func TestFormatMessage(t *testing.T) {
	out, err := FormatMessage(&msgs.CommandOK{}, false)
	require.NoError(t, err)
	require.Equal(t, "OK", out)

	out, err = FormatMessage(msgs.NewCommandErrFromMsg("jammed"), true)
	require.NoError(t, err)
	require.Equal(t, `{"message":"jammed"}`, out)

	_, err = FormatMessage(&l1.CommandMsg{}, false)
	require.Equal(t, msgs.ErrNotSerializable, err)
}

func TestFormatInfo(t *testing.T) {
	info := l1.ControllerInfo{Ref: l1.ControllerRef{Type: "courier", ID: "car1"}}
	require.Equal(t, "courier/car1", FormatInfo(info))
	info.Meta.Description = "warehouse"
	require.Equal(t, "courier/car1: warehouse", FormatInfo(info))
}

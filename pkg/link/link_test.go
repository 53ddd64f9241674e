package link

import (
	"bytes"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/courier/pkg/courier"
	fx "github.com/robotalks/courier/pkg/framework"
)

func TestDecode(t *testing.T) {
	testCases := []struct {
		name   string
		in     string
		expect []courier.Token
		err    error
	}{
		{
			name: "commands",
			in:   "13;",
			expect: []courier.Token{
				{Command: courier.CmdForward},
				{Command: courier.CmdStop},
				{Command: courier.CmdReverse},
			},
		},
		{
			name: "text",
			in:   "9hello:0",
			expect: []courier.Token{
				{Command: courier.CmdDisplayText, Text: "hello"},
				{Command: courier.CmdHeartbeat},
			},
		},
		{
			name: "text at max length",
			in:   "9" + string(bytes.Repeat([]byte{'a'}, MaxTextLen)) + "3",
			expect: []courier.Token{
				{Command: courier.CmdDisplayText, Text: string(bytes.Repeat([]byte{'a'}, MaxTextLen))},
				{Command: courier.CmdStop},
			},
		},
		{
			name: "unknown byte",
			in:   "x",
			expect: []courier.Token{
				{Command: courier.Command('x')},
			},
		},
		{
			name: "truncated text",
			in:   "9abc",
			err:  io.ErrUnexpectedEOF,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dec := NewDecoder(bytes.NewBufferString(tc.in))
			var toks []courier.Token
			var err error
			for {
				var tok courier.Token
				if tok, err = dec.Decode(); err != nil {
					break
				}
				toks = append(toks, tok)
			}
			require.Equal(t, tc.expect, toks)
			if tc.err != nil {
				require.Equal(t, tc.err, err)
			} else {
				require.Equal(t, io.EOF, err)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	require.NoError(t, enc.Encode(courier.Token{Command: courier.CmdGearUp}))
	require.NoError(t, enc.Encode(courier.Token{Command: courier.CmdDisplayText, Text: "hi"}))
	require.Equal(t, "69hi:", buf.String())

	require.Error(t, enc.Encode(courier.Token{Command: courier.CmdDisplayText, Text: "a:b"}))
	require.Error(t, enc.Encode(courier.Token{
		Command: courier.CmdDisplayText,
		Text:    string(bytes.Repeat([]byte{'a'}, MaxTextLen+1)),
	}))
}

func TestLinkPostsTokens(t *testing.T) {
	local, remote := net.Pipe()
	defer remote.Close()

	tokCh := make(chan courier.Token, 4)
	loop := fx.NewLoop()
	loop.Add(New("test", local))
	loop.AddController(fx.PrLvControl, fx.ControlFunc(func(cc fx.ControlContext) error {
		cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
			if msg, ok := mc.CurrentMessage().(*TokenMsg); ok {
				mc.MessageTaken()
				tokCh <- msg.Token
			}
		}))
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- loop.Run(ctx) }()

	_, err := remote.Write([]byte("29go:"))
	require.NoError(t, err)
	for _, expect := range []courier.Token{
		{Command: courier.CmdBackward},
		{Command: courier.CmdDisplayText, Text: "go"},
	} {
		select {
		case tok := <-tokCh:
			require.Equal(t, expect, tok)
		case <-time.After(time.Second):
			t.Fatal("token not received")
		}
	}
	cancel()
	require.Equal(t, context.Canceled, <-errCh)
}

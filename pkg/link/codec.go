// Package link implements the single-token command link of the vehicle.
//
// Each command is one byte. CmdDisplayText is followed by up to MaxTextLen
// bytes of text terminated by TextTerminator.
package link

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/robotalks/courier/pkg/courier"
)

// Text framing
const (
	MaxTextLen     = 34
	TextTerminator = ':'
)

// Decoder reads tokens from a byte stream.
type Decoder struct {
	r *bufio.Reader
}

// NewDecoder creates a Decoder.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Decode reads the next token. Unknown bytes are returned as tokens too.
func (d *Decoder) Decode() (tok courier.Token, err error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return tok, err
	}
	tok.Command = courier.Command(b)
	if tok.Command != courier.CmdDisplayText {
		return tok, nil
	}
	var text bytes.Buffer
	for text.Len() < MaxTextLen {
		if b, err = d.r.ReadByte(); err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return tok, err
		}
		if b == TextTerminator {
			break
		}
		text.WriteByte(b)
	}
	tok.Text = text.String()
	return tok, nil
}

// AppendToken appends the wire form of tok.
func AppendToken(buf []byte, tok courier.Token) ([]byte, error) {
	buf = append(buf, byte(tok.Command))
	if tok.Command != courier.CmdDisplayText {
		return buf, nil
	}
	if len(tok.Text) > MaxTextLen {
		return buf, fmt.Errorf("text exceeds %d bytes", MaxTextLen)
	}
	if bytes.IndexByte([]byte(tok.Text), TextTerminator) >= 0 {
		return buf, fmt.Errorf("text contains %q", TextTerminator)
	}
	buf = append(buf, tok.Text...)
	return append(buf, TextTerminator), nil
}

// Encoder writes tokens to a byte stream.
type Encoder struct {
	w io.Writer
}

// NewEncoder creates an Encoder.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: w}
}

// Encode writes one token.
func (e *Encoder) Encode(tok courier.Token) error {
	buf, err := AppendToken(nil, tok)
	if err != nil {
		return err
	}
	_, err = e.w.Write(buf)
	return err
}

package link

import (
	"context"
	"flag"
	"fmt"
	"io"

	"github.com/golang/glog"
	"github.com/tarm/serial"

	"github.com/robotalks/courier/pkg/courier"
	fx "github.com/robotalks/courier/pkg/framework"
)

// TokenMsg carries a token received on a link into the loop.
type TokenMsg struct {
	Token courier.Token
	// Source names the link.
	Source string
}

// NewMessage implements Message.
func (m *TokenMsg) NewMessage() fx.Message { return &TokenMsg{} }

// Config defines the serial link configuration.
type Config struct {
	Device string `yaml:"serial_device" env:"COURIER_SERIAL_DEVICE"`
	Baud   int    `yaml:"serial_baud" env:"COURIER_SERIAL_BAUD"`
}

var defaultConfig = Config{
	Baud: 9600,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Device, "serial", defaultConfig.Device, "Serial device of the remote control link, e.g. /dev/rfcomm0.")
	flag.IntVar(&defaultConfig.Baud, "serial-baud", defaultConfig.Baud, "Baud rate of the serial link.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// Open opens the serial link. It's nil without error when no device is
// configured.
func (c *Config) Open() (*Link, error) {
	if c.Device == "" {
		return nil, nil
	}
	port, err := serial.OpenPort(&serial.Config{Name: c.Device, Baud: c.Baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", c.Device, err)
	}
	glog.Infof("serial link %s at %d baud", c.Device, c.Baud)
	return New(c.Device, port), nil
}

// Link reads tokens from a byte stream and posts them to the loop.
type Link struct {
	name string
	port io.ReadWriteCloser
	dec  *Decoder
	enc  *Encoder
}

// New creates a Link over port.
func New(name string, port io.ReadWriteCloser) *Link {
	return &Link{name: name, port: port, dec: NewDecoder(port), enc: NewEncoder(port)}
}

// Name implements Named.
func (l *Link) Name() string {
	return "link:" + l.name
}

// Send writes a token back to the remote.
func (l *Link) Send(tok courier.Token) error {
	return l.enc.Encode(tok)
}

// Run implements Runnable.
func (l *Link) Run(ctx context.Context) error {
	loopCtl := fx.LoopCtlFrom(ctx)
	return fx.RunWithContextCloser(ctx, l.port, func() error {
		for {
			tok, err := l.dec.Decode()
			if err != nil {
				if err == io.EOF {
					glog.Infof("%s closed", l.Name())
					return nil
				}
				return err
			}
			glog.V(3).Infof("%s: %s", l.Name(), tok)
			loopCtl.PostMessage(&TokenMsg{Token: tok, Source: l.name})
			loopCtl.TriggerNext()
		}
	})
}

// AddToLoop implements LoopAdder.
func (l *Link) AddToLoop(loop *fx.Loop) {
	loop.AddRunnable(l)
}

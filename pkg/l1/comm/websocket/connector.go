package websocket

import (
	"context"
	"net/url"

	"golang.org/x/net/websocket"

	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// Connector connects to a single L1 controller over websocket.
type Connector struct {
	URL  string
	Info l1.ControllerInfo
}

// NewConnector creates a Connector. ref identifies the controller at rawURL.
func NewConnector(rawURL string, ref l1.ControllerRef) *Connector {
	return &Connector{URL: rawURL, Info: l1.ControllerInfo{Ref: ref}}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{c.Info}, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return nil, err
	}
	if u.Path == "" {
		u.Path = DefaultPath
	}
	origin := &url.URL{Scheme: "http", Host: u.Host}
	config, err := websocket.NewConfig(u.String(), origin.String())
	if err != nil {
		return nil, err
	}
	conn, err := websocket.DialConfig(config)
	if err != nil {
		return nil, err
	}
	cc := &comm.ControllerConn{}
	cc.Init(New(conn))
	return cc, nil
}

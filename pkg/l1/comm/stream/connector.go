package stream

import (
	"context"
	"net"

	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
)

// Connector connects to a single L1 controller listening on a TCP address.
type Connector struct {
	Address string
	Info    l1.ControllerInfo
}

// NewConnector creates a Connector. ref identifies the controller at address.
func NewConnector(address string, ref l1.ControllerRef) *Connector {
	return &Connector{Address: address, Info: l1.ControllerInfo{Ref: ref}}
}

// Discover implements Connector.
func (c *Connector) Discover(ctx context.Context) ([]l1.ControllerInfo, error) {
	return []l1.ControllerInfo{c.Info}, nil
}

// Connect implements Connector.
func (c *Connector) Connect(ctx context.Context, ref l1.ControllerRef) (l1.ControllerConn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return nil, err
	}
	cc := &comm.ControllerConn{}
	cc.Init(New(conn))
	return cc, nil
}

package connector

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"

	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm/mqtt"
	"github.com/robotalks/courier/pkg/l1/comm/stream"
	"github.com/robotalks/courier/pkg/l1/comm/websocket"
)

// Config provides common options to setup Connectors.
type Config struct {
	Ref l1.ControllerRef

	// RegistryURL specifies the URL of controller registry or a single
	// controller, e.g.
	//   mqtt://host:port/topic-prefix
	//   tcp://host:port
	//   ws://host:port/l1
	RegistryURL string
}

// DefaultType is the controller type of the courier vehicle.
const DefaultType = "courier"

var defaultConfig = Config{
	Ref:         l1.ControllerRef{Type: DefaultType},
	RegistryURL: "mqtt://localhost:1883/courier/",
}

func init() {
	if val := os.Getenv("COURIER_TYPE"); val != "" {
		defaultConfig.Ref.Type = val
	}
	if val := os.Getenv("COURIER_ID"); val != "" {
		defaultConfig.Ref.ID = val
	}
	if val := os.Getenv("COURIER_REGISTRY_URL"); val != "" {
		defaultConfig.RegistryURL = val
	}
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.Ref.Type, "courier-type", defaultConfig.Ref.Type, "Controller type to connect.")
	flag.StringVar(&defaultConfig.Ref.ID, "courier-id", defaultConfig.Ref.ID, "Controller ID to connect.")
	flag.StringVar(&defaultConfig.RegistryURL, "registry", defaultConfig.RegistryURL, "Registry URL: mqtt://, tcp:// or ws://")
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewConnector creates a Connector using current config.
func (c *Config) NewConnector() (l1.Connector, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	ref := c.resolveRef(parsedURL)
	switch parsedURL.Scheme {
	case "mqtt":
		return mqtt.NewConnector(c.RegistryURL)
	case "tcp":
		return stream.NewConnector(parsedURL.Host, ref), nil
	case "ws":
		return websocket.NewConnector(c.RegistryURL, ref), nil
	default:
		return nil, fmt.Errorf("unknown registry URL scheme: %q", parsedURL.Scheme)
	}
}

// ResolvedRef returns Ref with the ID of a direct connection filled from
// the registry URL.
func (c *Config) ResolvedRef() l1.ControllerRef {
	if u, err := url.Parse(c.RegistryURL); err == nil {
		return c.resolveRef(u)
	}
	return c.Ref
}

// resolveRef fills the ID of a direct connection which reaches exactly
// one controller.
func (c *Config) resolveRef(u *url.URL) l1.ControllerRef {
	ref := c.Ref
	if ref.ID == "" && u.Scheme != "mqtt" {
		ref.ID = u.Host
	}
	return ref
}

// MustNewConnector creates a Connector and fails on error.
func (c *Config) MustNewConnector() l1.Connector {
	conn, err := c.NewConnector()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

// Connect directly connects to L1 controller.
func (c *Config) Connect() (l1.ControllerConn, error) {
	parsedURL, err := url.Parse(c.RegistryURL)
	if err != nil {
		return nil, fmt.Errorf("invalid registry URL: %v", err)
	}
	ref := c.resolveRef(parsedURL)
	if !ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	connector, err := c.NewConnector()
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.TODO(), ref)
}

// MustConnect connects to L1 controller for fail.
func (c *Config) MustConnect() l1.ControllerConn {
	conn, err := c.Connect()
	if err != nil {
		log.Fatalln(err)
	}
	return conn
}

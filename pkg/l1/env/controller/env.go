package controller

import (
	"flag"
	"fmt"
	"log"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	"github.com/robotalks/courier/pkg/l1/comm"
	"github.com/robotalks/courier/pkg/l1/comm/mqtt"
	"github.com/robotalks/courier/pkg/l1/comm/stream"
	"github.com/robotalks/courier/pkg/l1/comm/websocket"
	"github.com/robotalks/courier/pkg/l1/env"
)

// Config provides common options to setup an env for L1 controllers.
// Every transport is optional.
type Config struct {
	Info l1.ControllerInfo `yaml:"-"`

	// ID overrides the machine ID as the controller ID.
	ID string `yaml:"id" env:"COURIER_ID"`

	// MQTTBrokerURL specifies the MQTT broker to use.
	// e.g. mqtt://host:port/topic-prefix
	MQTTBrokerURL string `yaml:"mqtt" env:"COURIER_MQTT_URL"`

	// StreamAddress is the TCP address accepting length-prefixed packets.
	StreamAddress string `yaml:"listen_tcp" env:"COURIER_LISTEN_TCP"`

	// WebsocketAddress is the HTTP address accepting websocket connections.
	WebsocketAddress string `yaml:"listen_ws" env:"COURIER_LISTEN_WS"`
}

var defaultConfig = Config{}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Controller ID, machine ID if not specified.")
	flag.StringVar(&defaultConfig.MQTTBrokerURL, "mqtt", defaultConfig.MQTTBrokerURL, "MQTT broker URL, e.g. mqtt://localhost:1883/courier/")
	flag.StringVar(&defaultConfig.StreamAddress, "listen-tcp", defaultConfig.StreamAddress, "TCP address to accept L2 connections, e.g. :7301")
	flag.StringVar(&defaultConfig.WebsocketAddress, "listen-ws", defaultConfig.WebsocketAddress, "HTTP address to accept L2 websocket connections, e.g. :7302")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// SetControllerType should be called in init with basic info about the controller.
func SetControllerType(typ string, meta l1.ControllerMeta) {
	defaultConfig.Info.Ref.Type = typ
	defaultConfig.Info.Meta = meta
}

// Env is the env for L1 controllers.
type Env struct {
	Config       *Config
	RegistryURLs []string
	Registrar    *comm.RegistrarMux
	Hub          *comm.Hub

	listeners []fx.LoopAdder
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewEnv creates Env from config.
func (c *Config) NewEnv() (*Env, error) {
	if c.ID != "" {
		c.Info.Ref.ID = c.ID
	}
	if c.Info.Ref.ID == "" {
		id, err := env.MachineID()
		if err != nil {
			return nil, fmt.Errorf("machine ID unavailable, specify the controller ID: %w", err)
		}
		c.Info.Ref.ID = id
	}
	if !c.Info.Ref.IsValid() {
		return nil, fmt.Errorf("controller type and id must be specified")
	}
	e := &Env{
		Config:    c,
		Registrar: &comm.RegistrarMux{},
	}
	if c.MQTTBrokerURL != "" {
		reg, err := mqtt.NewRegistrar(c.MQTTBrokerURL, c.Info)
		if err != nil {
			return nil, fmt.Errorf("create MQTT registrar error: %w", err)
		}
		e.Registrar.Add(reg)
		e.RegistryURLs = append(e.RegistryURLs, c.MQTTBrokerURL)
	}
	if c.StreamAddress != "" || c.WebsocketAddress != "" {
		e.Hub = comm.NewHub()
		e.Registrar.Add(e.Hub)
	}
	if c.StreamAddress != "" {
		e.listeners = append(e.listeners, stream.NewListener(c.StreamAddress, e.Hub))
		e.RegistryURLs = append(e.RegistryURLs, "tcp://"+c.StreamAddress)
	}
	if c.WebsocketAddress != "" {
		e.listeners = append(e.listeners, websocket.NewListener(c.WebsocketAddress, e.Hub))
		e.RegistryURLs = append(e.RegistryURLs, "ws://"+c.WebsocketAddress+websocket.DefaultPath)
	}
	return e, nil
}

// MustNewEnv creates Env and fails on error.
func (c *Config) MustNewEnv() *Env {
	env, err := c.NewEnv()
	if err != nil {
		log.Fatalln(err)
	}
	return env
}

// AddToLoop adds controllers/runners to loop.
func (e *Env) AddToLoop(loop *fx.Loop) {
	loop.Add(e.Registrar)
	loop.Add(e.listeners...)
	loop.Add(&comm.UnsupportedCommands{})
}

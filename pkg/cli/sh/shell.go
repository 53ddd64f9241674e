// Package sh is the interactive shell of couriercli. Commands are
// registered by packages under cli/cmds from their init funcs.
package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/abiosoft/ishell"

	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/l1"
	env "github.com/robotalks/courier/pkg/l1/env/connector"
	"github.com/robotalks/courier/pkg/l1/msgs"
)

// Shell wraps ishell with the connection to one controller.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoConnect bool
	Timeout     time.Duration

	Shell  *ishell.Shell
	Config *env.Config
	Loop   *ConnLoop
}

// ConnLoop is a running loop with a controller connection. Events
// received are kept in Events, the oldest are dropped when it's full.
type ConnLoop struct {
	Ctx    context.Context
	Cancel func()
	Ref    l1.ControllerRef
	Loop   *fx.Loop
	Conn   l1.ControllerConn
	Events chan fx.Message
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
	eventBacklog      = 64
)

var (
	// ErrNotConnected is returned by commands requiring a connection.
	ErrNotConnected = errors.New("not connected")
	// ErrTimeout is returned when a command is not replied in time.
	ErrTimeout = errors.New("command timeout")

	evalOnly       bool
	outputJSON     bool
	commandTimeout = time.Second

	commands = []*ishell.Cmd{
		&DiscoverCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&WatchCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.DurationVar(&commandTimeout, "timeout", commandTimeout, "Timeout waiting for a command result.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		Timeout:     commandTimeout,
		Shell:       ishell.New(),
		Config:      conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Loop == nil {
			c.Err(ErrNotConnected)
			return
		}
		fn(c)
	}
}

// FormatMessage formats a reply or an event for display.
func FormatMessage(msg fx.Message, asJSON bool) (string, error) {
	serializable, ok := msg.(msgs.SerializableMessage)
	if !ok {
		return "", msgs.ErrNotSerializable
	}
	if asJSON {
		out, err := json.Marshal(serializable.Serializable())
		return string(out), err
	}
	if _, ok := msg.(*msgs.CommandOK); ok {
		return "OK", nil
	}
	name := reflect.Indirect(reflect.ValueOf(msg)).Type().Name()
	return name + " " + serializable.Serializable().String(), nil
}

// DoCommand runs a command on the connected controller and prints the
// reply.
func DoCommand(c *ishell.Context, msg fx.Message) error {
	err := ShellFrom(c).doCommand(c, msg)
	if err != nil {
		c.Err(err)
	}
	return err
}

func (s *Shell) doCommand(c *ishell.Context, msg fx.Message) error {
	if s.Loop == nil {
		return ErrNotConnected
	}
	select {
	case res := <-s.Loop.Conn.DoCommand(msg).ResultChan():
		if res.Err != nil {
			return res.Err
		}
		out, err := FormatMessage(res.Msg, s.OutputJSON)
		if err != nil {
			return err
		}
		c.Println(out)
		return nil
	case <-time.After(s.Timeout):
		return ErrTimeout
	}
}

// DiscoverControllers discovers controllers accepted by filter.
func (s *Shell) DiscoverControllers(filter func(l1.ControllerInfo) bool) ([]l1.ControllerInfo, error) {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return nil, err
	}
	infoList, err := connector.Discover(context.Background())
	if err != nil || filter == nil {
		return infoList, err
	}
	selected := infoList[:0]
	for _, info := range infoList {
		if filter(info) {
			selected = append(selected, info)
		}
	}
	return selected, nil
}

// SelectController discovers controllers and asks for a choice if there
// are more than one. It returns nil if nothing is discovered.
func (s *Shell) SelectController(filter func(l1.ControllerInfo) bool) (*l1.ControllerInfo, error) {
	infoList, err := s.DiscoverControllers(filter)
	if err != nil || len(infoList) == 0 {
		return nil, err
	}
	if len(infoList) == 1 {
		return &infoList[0], nil
	}
	if !s.Interactive {
		return nil, fmt.Errorf("%d controllers discovered in non-interactive mode", len(infoList))
	}
	items := make([]string, len(infoList))
	for n, info := range infoList {
		items[n] = FormatInfo(info)
	}
	return &infoList[s.Shell.MultiChoice(items, "Which one to connect?")], nil
}

// Connect connects controller with ref, replacing the current
// connection.
func (s *Shell) Connect(ref l1.ControllerRef) error {
	connector, err := s.Config.NewConnector()
	if err != nil {
		return err
	}
	cl := &ConnLoop{Ref: ref, Loop: fx.NewLoop(), Events: make(chan fx.Message, eventBacklog)}
	cl.Ctx, cl.Cancel = context.WithCancel(context.Background())
	if cl.Conn, err = connector.Connect(cl.Ctx, ref); err != nil {
		cl.Cancel()
		return err
	}
	if adder, ok := cl.Conn.(fx.LoopAdder); ok {
		cl.Loop.Add(adder)
	}
	cl.Loop.AddController(fx.PrLvPostProc, fx.ControlFunc(cl.collectEvents))
	s.Disconnect()
	s.Loop = cl
	go cl.Loop.Run(cl.Ctx)
	s.Shell.SetPrompt(ref.Name() + " > ")
	return nil
}

// collectEvents keeps the latest events for watch.
func (l *ConnLoop) collectEvents(cc fx.ControlContext) error {
	cc.Messages().ProcessMessages(fx.ProcessMessageFunc(func(mc fx.MessageProcessingContext) {
		msg := mc.CurrentMessage()
		if _, ok := msg.(msgs.SerializableMessage); !ok {
			return
		}
		mc.MessageTaken()
		for {
			select {
			case l.Events <- msg:
				return
			default:
			}
			select {
			case <-l.Events:
			default:
			}
		}
	}))
	return nil
}

// Disconnect disconnects current controller.
func (s *Shell) Disconnect() {
	if s.Loop != nil {
		s.Loop.Cancel()
		s.Loop = nil
		s.Shell.SetPrompt(unconnectedPrompt)
	}
}

// Run connects the configured controller if AutoConnect, then either
// evaluates args as a single command or runs interactively.
func (s *Shell) Run(args ...string) {
	if ref := s.Config.ResolvedRef(); s.AutoConnect && ref.IsValid() {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", ref)
		}
		if err := s.Connect(ref); err != nil {
			log.Fatalf("connect %s failed: %v", ref, err)
		}
	}

	switch {
	case len(args) > 0:
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
	case s.Interactive:
		s.Shell.Run()
	default:
		log.Fatalln("command expected")
	}
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	New(env.NewConfig()).WithAutoConnect(true).Run(flag.Args()...)
}

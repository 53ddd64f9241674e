// Package l1 defines the contract between an L1 controller, the program
// driving the hardware, and the L2 components talking to it: commands with
// replies flow in, events flow out.
package l1

import (
	"context"
	"fmt"
	"strings"

	fx "github.com/robotalks/courier/pkg/framework"
)

// Registrar publishes an L1 controller. Received commands are posted into
// the loop as CommandMsg.
type Registrar interface {
	// SendEvent sends an event to all connected L2 components.
	SendEvent(context.Context, fx.Message) error
}

// Command is a received command. Done must be called once with the reply.
type Command interface {
	Msg() fx.Message
	Done(reply fx.Message) error
}

// CommandMsg wraps a Command as a Message.
type CommandMsg struct {
	Command Command
}

// NewMessage implements Message.
func (m *CommandMsg) NewMessage() fx.Message { return &CommandMsg{} }

// ControllerRef identifies an L1 controller as TYPE/ID.
type ControllerRef struct {
	Type string
	ID   string
}

// ParseControllerRef parses TYPE/ID.
func ParseControllerRef(s string) (ControllerRef, error) {
	items := strings.Split(s, "/")
	if len(items) != 2 {
		return ControllerRef{}, fmt.Errorf("invalid controller %q, expect TYPE/ID", s)
	}
	ref := ControllerRef{Type: items[0], ID: items[1]}
	if !ref.IsValid() {
		return ref, fmt.Errorf("invalid controller %q, empty TYPE or ID", s)
	}
	return ref, nil
}

// Name is TYPE/ID, also used as the topic prefix.
func (r ControllerRef) Name() string {
	return r.Type + "/" + r.ID
}

// String implements fmt.Stringer.
func (r ControllerRef) String() string {
	return r.Name()
}

// IsValid indicates both Type and ID are present.
func (r ControllerRef) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// ControllerMeta is published for discovery.
type ControllerMeta struct {
	Description string            `json:"description,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// ControllerInfo is a discovered controller.
type ControllerInfo struct {
	Ref  ControllerRef
	Meta ControllerMeta
}

// Connector is used by L2 components to find and connect L1 controllers.
type Connector interface {
	Discover(context.Context) ([]ControllerInfo, error)
	Connect(context.Context, ControllerRef) (ControllerConn, error)
}

// ControllerConn is the connection to a controller.
type ControllerConn interface {
	// DoCommand sends the command without blocking. The reply, or the
	// failure, is delivered through the future.
	DoCommand(fx.Message) CommandFuture
}

// Result of a command. Err is set when the controller replied with an
// error or the command failed to be delivered or replied.
type Result struct {
	Msg fx.Message
	Err error
}

// CommandFuture delivers exactly one Result.
type CommandFuture interface {
	ResultChan() <-chan Result
}

package sh

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/courier/pkg/l1"
)

// defaultWatchTime is how long watch prints events without an argument.
const defaultWatchTime = 5 * time.Second

// FormatInfo prints ControllerInfo into friendly string for display.
func FormatInfo(info l1.ControllerInfo) string {
	if info.Meta.Description == "" {
		return info.Ref.Name()
	}
	return info.Ref.Name() + ": " + info.Meta.Description
}

// parseConnectArgs accepts TYPE/ID, TYPE ID or TYPE. The result is nil
// when the controller should be discovered, with the type filter if
// given.
func parseConnectArgs(args []string) (*l1.ControllerRef, string, error) {
	switch {
	case len(args) == 0:
		return nil, "", nil
	case len(args) == 1 && strings.Contains(args[0], "/"):
		ref, err := l1.ParseControllerRef(args[0])
		if err != nil {
			return nil, "", err
		}
		return &ref, "", nil
	case len(args) == 1:
		return nil, args[0], nil
	case len(args) == 2:
		ref := l1.ControllerRef{Type: args[0], ID: args[1]}
		if !ref.IsValid() {
			return nil, "", fmt.Errorf("empty TYPE or ID")
		}
		return &ref, "", nil
	default:
		return nil, "", fmt.Errorf("too many arguments")
	}
}

var (
	// DiscoverCmd discovers controllers.
	DiscoverCmd = ishell.Cmd{
		Name:    "discover",
		Aliases: []string{"list", "l"},
		Help:    "list registered controllers",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			infoList, err := s.DiscoverControllers(nil)
			if err != nil {
				c.Err(err)
				return
			}
			if s.OutputJSON {
				if infoList == nil {
					infoList = []l1.ControllerInfo{}
				}
				out, err := json.Marshal(infoList)
				if err != nil {
					c.Err(err)
					return
				}
				c.Println(string(out))
				return
			}
			if len(infoList) == 0 {
				c.Println("No controllers found")
			}
			for _, info := range infoList {
				c.Println(FormatInfo(info))
			}
		},
	}

	// ConnectCmd connects a controller.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[TYPE/ID | TYPE ID | TYPE]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			ref, typ, err := parseConnectArgs(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			if ref == nil {
				var filter func(l1.ControllerInfo) bool
				if typ != "" {
					filter = func(info l1.ControllerInfo) bool { return info.Ref.Type == typ }
				}
				info, err := s.SelectController(filter)
				if err != nil {
					c.Err(err)
					return
				}
				if info == nil {
					c.Err(fmt.Errorf("no controller discovered"))
					return
				}
				ref = &info.Ref
			}
			if err := s.Connect(*ref); err != nil {
				c.Err(err)
			}
		},
	}

	// DisconnectCmd disconnects current controller.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the current connection",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// WatchCmd prints events from the connected controller.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[DURATION] print events, default 5s",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			dur := defaultWatchTime
			if len(c.Args) > 0 {
				var err error
				if dur, err = time.ParseDuration(c.Args[0]); err != nil {
					c.Err(err)
					return
				}
			}
			timeout := time.After(dur)
			for {
				select {
				case msg := <-s.Loop.Events:
					out, err := FormatMessage(msg, s.OutputJSON)
					if err != nil {
						c.Err(err)
						continue
					}
					c.Println(out)
				case <-timeout:
					return
				case <-s.Loop.Ctx.Done():
					return
				}
			}
		}),
	}
)

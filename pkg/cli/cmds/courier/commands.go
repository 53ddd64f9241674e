// Package courier exposes the courier vehicle commands in the shell.
package courier

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/courier/pkg/cli/sh"
	"github.com/robotalks/courier/pkg/courier"
	"github.com/robotalks/courier/pkg/courier/msgs"
)

func sendToken(tok courier.Token) func(c *ishell.Context) {
	return sh.MustBeConnected(func(c *ishell.Context) {
		sh.DoCommand(c, msgs.NewDriveCommand(tok))
	})
}

func tokenCmd(name string, aliases []string, cmd courier.Command) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    name,
		Aliases: aliases,
		Help:    "sends " + cmd.String(),
		Func:    sendToken(courier.Token{Command: cmd}),
	}
}

// ParseToken parses shell arguments into a token: the command name or
// token character, followed by the text for SEND_LCD.
func ParseToken(args []string) (courier.Token, error) {
	if len(args) == 0 {
		return courier.Token{}, fmt.Errorf("command expected")
	}
	cmd, err := courier.ParseCommand(args[0])
	if err != nil {
		return courier.Token{}, err
	}
	tok := courier.Token{Command: cmd}
	if cmd == courier.CmdDisplayText {
		tok.Text = strings.Join(args[1:], " ")
	}
	return tok, nil
}

var (
	// DriveCmd sends any token by name or character.
	DriveCmd = ishell.Cmd{
		Name:    "drive",
		Aliases: []string{"send"},
		Help:    "COMMAND [TEXT...]",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			tok, err := ParseToken(c.Args)
			if err != nil {
				c.Err(err)
				return
			}
			sh.DoCommand(c, msgs.NewDriveCommand(tok))
		}),
	}

	// LCDCmd prints text on the LCD.
	LCDCmd = ishell.Cmd{
		Name:    "lcd",
		Aliases: []string{"print"},
		Help:    "TEXT...",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			tok := courier.Token{Command: courier.CmdDisplayText, Text: strings.Join(c.Args, " ")}
			sh.DoCommand(c, msgs.NewDriveCommand(tok))
		}),
	}

	// BuzzerCmd turns the buzzer on or off.
	BuzzerCmd = ishell.Cmd{
		Name:    "buzzer",
		Aliases: []string{"bz"},
		Help:    "on|off",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			tok := courier.Token{Command: courier.CmdBuzzerOff}
			if len(c.Args) > 0 {
				switch strings.ToLower(c.Args[0]) {
				case "on", "1", "true":
					tok.Command = courier.CmdBuzzerOn
				case "off", "0", "false":
				default:
					c.Err(fmt.Errorf("invalid buzzer state %q", c.Args[0]))
					return
				}
			}
			sh.DoCommand(c, msgs.NewDriveCommand(tok))
		}),
	}

	// StatusCmd queries the navigation status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.NavStatusQuery{})
		}),
	}

	// HistoryCmd queries the recorded movements.
	HistoryCmd = ishell.Cmd{
		Name:    "history",
		Aliases: []string{"hist"},
		Help:    "",
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			sh.DoCommand(c, &msgs.HistoryQuery{})
		}),
	}
)

func init() {
	sh.AddCmds(
		&DriveCmd,
		&LCDCmd,
		&BuzzerCmd,
		&StatusCmd,
		&HistoryCmd,
		tokenCmd("forward", []string{"fw"}, courier.CmdForward),
		tokenCmd("backward", []string{"bw"}, courier.CmdBackward),
		tokenCmd("stop", []string{"s"}, courier.CmdStop),
		tokenCmd("left", nil, courier.CmdSteerLeft),
		tokenCmd("right", nil, courier.CmdSteerRight),
		tokenCmd("gear.up", []string{"gu"}, courier.CmdGearUp),
		tokenCmd("gear.down", []string{"gd"}, courier.CmdGearDown),
		tokenCmd("reverse", []string{"rev"}, courier.CmdReverse),
		tokenCmd("lcd.clear", []string{"cls"}, courier.CmdClearScreen),
		tokenCmd("heartbeat", []string{"hb"}, courier.CmdHeartbeat),
	)
}

package courier

import (
	"fmt"
	"strings"
)

// Command is a single-byte token received from the remote.
type Command byte

// Command tokens.
const (
	CmdHeartbeat   Command = '0'
	CmdForward     Command = '1'
	CmdBackward    Command = '2'
	CmdStop        Command = '3'
	CmdSteerRight  Command = '4'
	CmdSteerLeft   Command = '5'
	CmdGearUp      Command = '6'
	CmdGearDown    Command = '7'
	CmdClearScreen Command = '8'
	CmdDisplayText Command = '9'
	CmdReverse     Command = ';'
	CmdBuzzerOn    Command = 'o'
	CmdBuzzerOff   Command = 'f'
)

var commandNames = map[Command]string{
	CmdHeartbeat:   "HEARTBEAT",
	CmdForward:     "FORWARD",
	CmdBackward:    "BACKWARD",
	CmdStop:        "STOP",
	CmdSteerRight:  "STEER_RIGHT",
	CmdSteerLeft:   "STEER_LEFT",
	CmdGearUp:      "GEARUP",
	CmdGearDown:    "GEARDOWN",
	CmdClearScreen: "CLR_SCREEN",
	CmdDisplayText: "SEND_LCD",
	CmdReverse:     "REVERSE",
	CmdBuzzerOn:    "BUZZER_ON",
	CmdBuzzerOff:   "BUZZER_OFF",
}

func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(%q)", byte(c))
}

// IsKnown indicates c is a recognized token.
func (c Command) IsKnown() bool {
	_, ok := commandNames[c]
	return ok
}

// Mode returns the drive mode a movement command actuates.
func (c Command) Mode() (Mode, bool) {
	switch c {
	case CmdForward:
		return ModeForward, true
	case CmdBackward:
		return ModeBackward, true
	case CmdStop:
		return ModeStop, true
	case CmdSteerRight:
		return ModeSteerRight, true
	case CmdSteerLeft:
		return ModeSteerLeft, true
	}
	return ModeStop, false
}

// KeepsAlive indicates silence after c is not treated as a lost link.
func (c Command) KeepsAlive() bool {
	return c == CmdStop || c == CmdDisplayText
}

// ParseCommand parses a command by name or by its token character.
func ParseCommand(s string) (Command, error) {
	if len(s) == 1 {
		if c := Command(s[0]); c.IsKnown() {
			return c, nil
		}
	}
	name := strings.ToUpper(s)
	for c, n := range commandNames {
		if n == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown command %q", s)
}

// Token is one inbound command. Text is set for CmdDisplayText.
type Token struct {
	Command Command
	Text    string
}

func (t Token) String() string {
	if t.Command == CmdDisplayText {
		return fmt.Sprintf("%s %q", t.Command, t.Text)
	}
	return t.Command.String()
}

package engine

import (
	"strings"
)

// Command is a single robot instruction
type Command string

const (
	CommandForward   Command = "forward"
	CommandBackward  Command = "backward"
	CommandTurnRight Command = "turn_right"
	CommandTurnLeft  Command = "turn_left"
	CommandAttack    Command = "attack"
)

// Commands lists every command in legacy code order (0 forward ... 4 attack)
var Commands = []Command{CommandForward, CommandBackward, CommandTurnRight, CommandTurnLeft, CommandAttack}

var commandAliases = map[string]Command{
	"0":           CommandForward,
	"forward":     CommandForward,
	"moveforward": CommandForward,
	"f":           CommandForward,

	"1":            CommandBackward,
	"backward":     CommandBackward,
	"back":         CommandBackward,
	"movebackward": CommandBackward,
	"b":            CommandBackward,

	"2":         CommandTurnRight,
	"turnright": CommandTurnRight,
	"right":     CommandTurnRight,
	"r":         CommandTurnRight,

	"3":        CommandTurnLeft,
	"turnleft": CommandTurnLeft,
	"left":     CommandTurnLeft,
	"l":        CommandTurnLeft,

	"4":      CommandAttack,
	"attack": CommandAttack,
	"a":      CommandAttack,
}

// ParseCommand normalizes the many accepted spellings of a command:
// "turn_right", "turn right", "turnRight", "right" and the legacy code "2"
// all yield CommandTurnRight.
func ParseCommand(s string) (Command, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)

	if cmd, ok := commandAliases[key]; ok {
		return cmd, nil
	}
	return "", &Error{Kind: ErrUnsupportedCommand, Op: "parse command", Detail: s}
}

package combat

import "strings"

// CommandKind identifies a turn command.
// The zero value (CommandUnknown) is intentionally invalid.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandAttack
	CommandFlee
	CommandStats
	CommandCast
)

// String returns the command keyword.
func (k CommandKind) String() string {
	switch k {
	case CommandAttack:
		return "attack"
	case CommandFlee:
		return "flee"
	case CommandStats:
		return "stats"
	case CommandCast:
		return "cast"
	default:
		return "unknown"
	}
}

// ConsumesTurn reports whether the command ends the character's turn.
func (k CommandKind) ConsumesTurn() bool {
	return k == CommandAttack || k == CommandFlee || k == CommandCast
}

// Command is one parsed line of player input.
type Command struct {
	Kind CommandKind
	// Spell is the spell name for CommandCast.
	Spell string
	// Raw is the trimmed input line.
	Raw string
}

// ParseCommand interprets one line of input. Keywords are case-insensitive;
// "print stats" and "stats" both inspect, and "cast" requires a spell name.
//
// Postcondition: never fails; unrecognised input yields CommandUnknown.
func ParseCommand(line string) Command {
	raw := strings.TrimSpace(line)
	fields := strings.Fields(strings.ToLower(raw))
	cmd := Command{Raw: raw}
	if len(fields) == 0 {
		return cmd
	}
	switch fields[0] {
	case "attack", "a":
		if len(fields) == 1 {
			cmd.Kind = CommandAttack
		}
	case "flee", "run":
		if len(fields) == 1 {
			cmd.Kind = CommandFlee
		}
	case "stats":
		if len(fields) == 1 {
			cmd.Kind = CommandStats
		}
	case "print":
		if len(fields) == 2 && fields[1] == "stats" {
			cmd.Kind = CommandStats
		}
	case "cast":
		if len(fields) > 1 {
			cmd.Kind = CommandCast
			cmd.Spell = strings.TrimSpace(raw[len(strings.Fields(raw)[0]):])
		}
	}
	return cmd
}

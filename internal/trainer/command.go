package trainer

import (
	"time"

	"github.com/san-kum/pedaltrainer/internal/input"
)

// DebounceDelay is how long the loop waits before the next poll after a
// tuning command, so one key press is not read as many.
const DebounceDelay = 64 * time.Millisecond

// Command is a logical action triggered by a held key.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdToggleAxis
	CmdIncreaseTolerance
	CmdDecreaseTolerance
	CmdIncreaseHoldTime
	CmdDecreaseHoldTime
)

var commandNames = map[Command]string{
	CmdNone:              "none",
	CmdQuit:              "quit",
	CmdToggleAxis:        "toggle_axis",
	CmdIncreaseTolerance: "tolerance_up",
	CmdDecreaseTolerance: "tolerance_down",
	CmdIncreaseHoldTime:  "hold_up",
	CmdDecreaseHoldTime:  "hold_down",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "unknown"
}

// Debounces reports whether the command delays the next poll.
func (c Command) Debounces() bool {
	return c != CmdNone && c != CmdQuit
}

// Binding maps a key to a command.
type Binding struct {
	Key     input.Key
	Command Command
}

// Bindings is ordered by priority: when several bound keys are held in one
// frame, the first match wins.
type Bindings []Binding

// DefaultBindings: Esc quits, Tab switches pedal, left/right widen and narrow
// the band, up/down lengthen and shorten the hold.
func DefaultBindings() Bindings {
	return Bindings{
		{input.KeyEscape, CmdQuit},
		{input.KeyTab, CmdToggleAxis},
		{input.KeyLeft, CmdIncreaseTolerance},
		{input.KeyRight, CmdDecreaseTolerance},
		{input.KeyUp, CmdIncreaseHoldTime},
		{input.KeyDown, CmdDecreaseHoldTime},
	}
}

// Dispatch picks the command for the keys held in this frame.
func Dispatch(keys input.KeySet, bindings Bindings) (Command, bool) {
	if keys.Empty() {
		return CmdNone, false
	}
	for _, b := range bindings {
		if keys.Has(b.Key) {
			return b.Command, true
		}
	}
	return CmdNone, false
}

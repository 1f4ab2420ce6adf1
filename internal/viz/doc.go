// Package viz drives the practice loop and draws it in the terminal.
//
// The package implements the trainer TUI using the Bubble Tea framework:
//
//   - [Model]: owns the session, polls the input source on a fixed tick and
//     debounces after tuning commands
//   - [Render]: pure function drawing one [Frame] with lipgloss styles
//   - Theme selection with 3 built-in color schemes
//
// # Key Bindings
//
//	Esc/Q  - Quit
//	Tab    - Switch between brake and throttle
//	← →    - Widen / narrow the tolerance band
//	↑ ↓    - Lengthen / shorten the hold time
//	T      - Cycle color themes
//	?      - Show full help
package viz

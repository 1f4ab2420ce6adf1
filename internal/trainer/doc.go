// Package trainer implements the pedal practice state machine.
//
// The package holds everything the practice loop mutates:
//
//   - [Difficulty]: tolerance band width and hold time, clamped on every change
//   - [Machine]: the current target and the dwell time accumulated inside the band
//   - [Command] and [Dispatch]: keys held in a frame mapped to at most one command
//   - [Session]: the single context owning all of the above plus the run flag
//
// # Example
//
//	s := trainer.NewSession(trainer.DefaultDifficulty(), pedal.Brake, rng)
//	res := s.Step(raw, ok, keys, elapsed)
//	if res.Debounce {
//		// wait DebounceDelay before the next poll
//	}
//
// # Thread Safety
//
// Session is owned by one loop and is NOT safe for concurrent use.
package trainer

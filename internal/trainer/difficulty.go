package trainer

import "time"

const (
	MinTolerance     = 1
	MaxTolerance     = 100
	DefaultTolerance = 5

	// Hold time is counted in hundredths of a second.
	MinHoldTime     = 10
	MaxHoldTime     = 1000
	DefaultHoldTime = 100

	holdTimeUnit = 10 * time.Millisecond
)

// Difficulty holds the two live-tunable parameters.
type Difficulty struct {
	tolerance int
	holdTime  int
}

// NewDifficulty clamps both values into range.
func NewDifficulty(tolerancePercent, holdTime int) Difficulty {
	return Difficulty{
		tolerance: clamp(tolerancePercent, MinTolerance, MaxTolerance),
		holdTime:  clamp(holdTime, MinHoldTime, MaxHoldTime),
	}
}

func DefaultDifficulty() Difficulty {
	return NewDifficulty(DefaultTolerance, DefaultHoldTime)
}

func (d Difficulty) TolerancePercent() int { return d.tolerance }
func (d Difficulty) HoldTime() int         { return d.holdTime }

func (d *Difficulty) IncreaseTolerance() {
	if d.tolerance < MaxTolerance {
		d.tolerance++
	}
}

func (d *Difficulty) DecreaseTolerance() {
	if d.tolerance > MinTolerance {
		d.tolerance--
	}
}

func (d *Difficulty) IncreaseHoldTime() {
	if d.holdTime < MaxHoldTime {
		d.holdTime++
	}
}

func (d *Difficulty) DecreaseHoldTime() {
	if d.holdTime > MinHoldTime {
		d.holdTime--
	}
}

// ToleranceFraction is the half-width of the band around the target. The
// whole band spans tolerance percent, so each side gets half of it.
func (d Difficulty) ToleranceFraction() float64 {
	return float64(d.tolerance) / 200.0
}

func (d Difficulty) HoldThresholdSeconds() float64 {
	return float64(d.holdTime) / 100.0
}

// HoldThreshold is HoldThresholdSeconds as an exact duration.
func (d Difficulty) HoldThreshold() time.Duration {
	return time.Duration(d.holdTime) * holdTimeUnit
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

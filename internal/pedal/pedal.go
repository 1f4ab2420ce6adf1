// Package pedal defines raw pedal samples and their normalization.
//
// Raw samples use the 16-bit joystick domain 0..65535 where 0 means the pedal
// is fully pressed and 65535 means fully released. [Normalize] turns a raw
// value into a fraction where 1.0 is fully pressed.
package pedal

// RawMax is the largest raw value a device reports for a released pedal.
const RawMax = 65535

// rawSpan is the divisor used by Normalize.
const rawSpan = 65536.0

// Axis selects one of the two pedals.
type Axis int

const (
	Throttle Axis = iota
	Brake
)

func (a Axis) String() string {
	switch a {
	case Throttle:
		return "throttle"
	case Brake:
		return "brake"
	default:
		return "unknown"
	}
}

// Toggle returns the other pedal.
func (a Axis) Toggle() Axis {
	if a == Brake {
		return Throttle
	}
	return Brake
}

// Raw is one poll worth of raw axis values.
type Raw struct {
	Throttle int
	Brake    int
}

// Released is the sample reported before the device has produced any data.
var Released = Raw{Throttle: RawMax, Brake: RawMax}

// Axis returns the raw value of the selected pedal.
func (r Raw) Axis(a Axis) int {
	if a == Brake {
		return r.Brake
	}
	return r.Throttle
}

// Normalize converts a raw sample to how far the pedal is pressed.
// Values outside 0..65535 are not clamped, so the result can overshoot [0,1]
// slightly on a noisy device.
func Normalize(raw int) float64 {
	return (rawSpan - float64(raw)) / rawSpan
}

// Normalized returns both pedals normalized.
func (r Raw) Normalized() (throttle, brake float64) {
	return Normalize(r.Throttle), Normalize(r.Brake)
}

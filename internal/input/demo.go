package input

import (
	"math"
	"time"

	"github.com/san-kum/pedaltrainer/internal/pedal"
)

// DemoSource synthesizes slow pedal sweeps so the trainer can run without
// hardware attached.
type DemoSource struct {
	start time.Time
	now   func() time.Time
}

// NewDemoSource creates a demo source starting now.
func NewDemoSource() *DemoSource {
	return newDemoSource(time.Now)
}

func newDemoSource(now func() time.Time) *DemoSource {
	return &DemoSource{start: now(), now: now}
}

func (d *DemoSource) Name() string { return "demo pedals" }

func (d *DemoSource) Poll() (pedal.Raw, bool) {
	t := d.now().Sub(d.start).Seconds()
	throttle := 0.5 + 0.5*math.Sin(t*0.9)
	brake := 0.5 + 0.45*math.Sin(t*0.37+1.3) + 0.05*math.Sin(t*3.1)
	return pedal.Raw{
		Throttle: pressedToRaw(throttle),
		Brake:    pressedToRaw(brake),
	}, true
}

func (d *DemoSource) Close() error { return nil }

// pressedToRaw is the inverse of pedal.Normalize for fractions in [0,1].
func pressedToRaw(p float64) int {
	raw := int(math.Round((1 - p) * 65536))
	if raw > pedal.RawMax {
		raw = pedal.RawMax
	}
	if raw < 0 {
		raw = 0
	}
	return raw
}

// StaticKeys is a KeySource that always reports the same set.
type StaticKeys KeySet

func (s StaticKeys) Keys() KeySet { return KeySet(s) }
func (s StaticKeys) Close() error { return nil }

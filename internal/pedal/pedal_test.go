package pedal

import (
	"math"
	"testing"
)

func TestNormalizeEndpoints(t *testing.T) {
	if got := Normalize(0); got != 1.0 {
		t.Errorf("expected 1.0 for raw 0, got %f", got)
	}

	got := Normalize(RawMax)
	expected := 1.0 / 65536.0
	if math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected %.10f for raw %d, got %.10f", expected, RawMax, got)
	}
}

func TestNormalizeRange(t *testing.T) {
	for raw := 0; raw <= RawMax; raw += 257 {
		v := Normalize(raw)
		if v < 0 || v > 1 {
			t.Fatalf("raw %d normalized to %f, outside [0,1]", raw, v)
		}
	}
}

func TestNormalizeMonotonic(t *testing.T) {
	prev := Normalize(0)
	for raw := 1; raw <= RawMax; raw += 1000 {
		v := Normalize(raw)
		if v >= prev {
			t.Fatalf("expected decreasing output, raw %d gave %f after %f", raw, v, prev)
		}
		prev = v
	}
}

func TestNormalizeOutOfDomain(t *testing.T) {
	if v := Normalize(-100); v <= 1.0 {
		t.Errorf("expected overshoot above 1 for negative raw, got %f", v)
	}
	if v := Normalize(70000); v >= 0 {
		t.Errorf("expected overshoot below 0 for raw above domain, got %f", v)
	}
}

func TestAxis(t *testing.T) {
	r := Raw{Throttle: 100, Brake: 200}
	if r.Axis(Throttle) != 100 {
		t.Errorf("expected throttle 100, got %d", r.Axis(Throttle))
	}
	if r.Axis(Brake) != 200 {
		t.Errorf("expected brake 200, got %d", r.Axis(Brake))
	}

	if Brake.Toggle() != Throttle || Throttle.Toggle() != Brake {
		t.Error("toggle should swap pedals")
	}
	if Brake.String() != "brake" || Throttle.String() != "throttle" {
		t.Errorf("unexpected names %q %q", Throttle, Brake)
	}
}

func TestReleasedNormalizesNearZero(t *testing.T) {
	th, br := Released.Normalized()
	if th > 0.001 || br > 0.001 {
		t.Errorf("released pedals should read near zero, got %f %f", th, br)
	}
}

// Package input provides pedal and keyboard sources for the trainer.
//
// A [Source] yields the latest raw pedal pair without blocking; a [KeySource]
// reports which logical keys are held. Linux evdev nodes back the real
// implementations and [DemoSource] synthesizes pedal motion for use without
// hardware.
package input

import (
	"errors"

	"github.com/san-kum/pedaltrainer/internal/pedal"
)

var (
	// ErrNoDevice indicates that discovery found no usable pedal device.
	ErrNoDevice = errors.New("input: no pedal device found")

	// ErrAcquire indicates the chosen device could not be opened.
	ErrAcquire = errors.New("input: failed to acquire device")

	// ErrClosed is returned by operations on a closed source.
	ErrClosed = errors.New("input: source closed")
)

// Source provides raw pedal samples.
type Source interface {
	Name() string
	// Poll returns the latest sample. ok is false when the device had a
	// transient failure; the caller keeps its previous sample.
	Poll() (raw pedal.Raw, ok bool)
	Close() error
}

// KeySource reports the keys held at poll time.
type KeySource interface {
	Keys() KeySet
	Close() error
}

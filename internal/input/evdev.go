package input

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	evdev "github.com/gvalkov/golang-evdev"
	"github.com/san-kum/pedaltrainer/internal/pedal"
)

// AxisConfig describes one ABS axis of an evdev device.
type AxisConfig struct {
	Code int
	Min  int
	Max  int
	// ReleasedHigh is set when the device already reports its maximum for a
	// released pedal. Most Linux pedal drivers report the opposite.
	ReleasedHigh bool
}

// AxisMap binds the two pedals to device axes.
type AxisMap struct {
	Throttle AxisConfig
	Brake    AxisConfig
}

// DefaultAxisMap reads throttle from ABS_Y and brake from ABS_RZ over a
// 16-bit range, the layout most wheel bases expose.
func DefaultAxisMap() AxisMap {
	return AxisMap{
		Throttle: AxisConfig{Code: evdev.ABS_Y, Min: 0, Max: pedal.RawMax},
		Brake:    AxisConfig{Code: evdev.ABS_RZ, Min: 0, Max: pedal.RawMax},
	}
}

// Scale maps a device value into the raw 16-bit domain. No clamping is
// applied; noise beyond Min/Max carries through.
func (a AxisConfig) Scale(v int32) int {
	span := a.Max - a.Min
	if span <= 0 {
		return pedal.RawMax
	}
	frac := float64(int(v)-a.Min) / float64(span)
	if !a.ReleasedHigh {
		frac = 1 - frac
	}
	return int(math.Round(frac * pedal.RawMax))
}

// EvdevSource reads pedal axes from a Linux input event node. A reader
// goroutine keeps the latest values so Poll never blocks.
//
// The kernel only sends ABS events when a value changes, so both pedals read
// as released until they first move. A pedal already resting down when the
// node is opened shows as released until it is touched.
type EvdevSource struct {
	path   string
	axes   AxisMap
	logger *slog.Logger

	mu     sync.Mutex
	dev    *evdev.InputDevice
	name   string
	raw    pedal.Raw
	err    error
	closed bool
}

// OpenEvdev opens the event node at path.
func OpenEvdev(path string, axes AxisMap, logger *slog.Logger) (*EvdevSource, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAcquire, path, err)
	}
	s := newEvdevSource(path, axes, logger)
	s.dev = dev
	s.name = dev.Name
	go s.read(dev)
	logger.Info("pedal device opened", "path", path, "name", dev.Name)
	return s, nil
}

func newEvdevSource(path string, axes AxisMap, logger *slog.Logger) *EvdevSource {
	return &EvdevSource{
		path:   path,
		axes:   axes,
		logger: logger,
		name:   path,
		raw:    pedal.Released,
	}
}

func (s *EvdevSource) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

// Poll returns the latest sample. After a read failure it reports no sample
// and tries to reopen the node; the next successful poll resumes normally.
func (s *EvdevSource) Poll() (pedal.Raw, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.raw, false
	}
	if s.err != nil {
		s.reacquire()
		return s.raw, false
	}
	return s.raw, true
}

// reacquire must be called with mu held.
func (s *EvdevSource) reacquire() {
	if s.dev != nil {
		s.dev.File.Close()
		s.dev = nil
	}
	dev, err := evdev.Open(s.path)
	if err != nil {
		s.logger.Debug("pedal device reacquire failed", "path", s.path, "err", err)
		return
	}
	s.dev = dev
	s.err = nil
	go s.read(dev)
	s.logger.Debug("pedal device reacquired", "path", s.path)
}

func (s *EvdevSource) read(dev *evdev.InputDevice) {
	for {
		events, err := dev.Read()
		if err != nil {
			s.fail(dev, err)
			return
		}
		for _, ev := range events {
			if ev.Type != evdev.EV_ABS {
				continue
			}
			s.apply(ev.Code, ev.Value)
		}
	}
}

func (s *EvdevSource) fail(dev *evdev.InputDevice, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.dev != dev {
		return
	}
	s.err = err
	s.logger.Debug("pedal device read failed", "path", s.path, "err", err)
}

func (s *EvdevSource) apply(code uint16, value int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch int(code) {
	case s.axes.Throttle.Code:
		s.raw.Throttle = s.axes.Throttle.Scale(value)
	case s.axes.Brake.Code:
		s.raw.Brake = s.axes.Brake.Scale(value)
	}
}

func (s *EvdevSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.closed = true
	if s.dev == nil {
		return nil
	}
	err := s.dev.File.Close()
	s.dev = nil
	return err
}

var evdevKeys = map[int]Key{
	evdev.KEY_ESC:   KeyEscape,
	evdev.KEY_TAB:   KeyTab,
	evdev.KEY_UP:    KeyUp,
	evdev.KEY_DOWN:  KeyDown,
	evdev.KEY_LEFT:  KeyLeft,
	evdev.KEY_RIGHT: KeyRight,
}

// EvdevKeyboard tracks held keys on a keyboard event node. After a read
// failure it reports no keys held and tries to reopen the node on each call
// to Keys.
type EvdevKeyboard struct {
	path   string
	logger *slog.Logger

	mu     sync.Mutex
	dev    *evdev.InputDevice
	held   KeySet
	err    error
	closed bool
}

// OpenKeyboard opens the keyboard event node at path.
func OpenKeyboard(path string, logger *slog.Logger) (*EvdevKeyboard, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAcquire, path, err)
	}
	k := newEvdevKeyboard(path, logger)
	k.dev = dev
	go k.read(dev)
	logger.Info("keyboard opened", "path", path, "name", dev.Name)
	return k, nil
}

func newEvdevKeyboard(path string, logger *slog.Logger) *EvdevKeyboard {
	return &EvdevKeyboard{path: path, logger: logger}
}

func (k *EvdevKeyboard) read(dev *evdev.InputDevice) {
	for {
		events, err := dev.Read()
		if err != nil {
			k.fail(dev, err)
			return
		}
		for i := range events {
			if events[i].Type != evdev.EV_KEY {
				continue
			}
			ke := evdev.NewKeyEvent(&events[i])
			k.apply(int(ke.Scancode), ke.State)
		}
	}
}

// fail drops every held key; release events may be lost with the device.
func (k *EvdevKeyboard) fail(dev *evdev.InputDevice, err error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed || k.dev != dev {
		return
	}
	k.err = err
	k.held = 0
	k.logger.Debug("keyboard read failed", "path", k.path, "err", err)
}

// reacquire must be called with mu held.
func (k *EvdevKeyboard) reacquire() {
	if k.dev != nil {
		k.dev.File.Close()
		k.dev = nil
	}
	dev, err := evdev.Open(k.path)
	if err != nil {
		k.logger.Debug("keyboard reacquire failed", "path", k.path, "err", err)
		return
	}
	k.dev = dev
	k.err = nil
	go k.read(dev)
	k.logger.Debug("keyboard reacquired", "path", k.path)
}

func (k *EvdevKeyboard) apply(scancode int, state evdev.KeyEventState) {
	key, ok := evdevKeys[scancode]
	if !ok {
		return
	}
	k.mu.Lock()
	defer k.mu.Unlock()
	switch state {
	case evdev.KeyDown, evdev.KeyHold:
		k.held = k.held.With(key)
	case evdev.KeyUp:
		k.held = k.held.Without(key)
	}
}

// Keys returns the keys currently held down.
func (k *EvdevKeyboard) Keys() KeySet {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return 0
	}
	if k.err != nil {
		k.reacquire()
		return 0
	}
	return k.held
}

func (k *EvdevKeyboard) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return ErrClosed
	}
	k.closed = true
	k.held = 0
	if k.dev == nil {
		return nil
	}
	err := k.dev.File.Close()
	k.dev = nil
	return err
}

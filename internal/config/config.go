package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTolerance = 5
	DefaultHoldTime  = 100
	DefaultActive    = "brake"
	DefaultInterval  = 16 * time.Millisecond
	DefaultDebounce  = 64 * time.Millisecond
	DefaultGlob      = "/dev/input/event*"
	DefaultBarWidth  = 80

	// Linux input codes for ABS_Y and ABS_RZ.
	DefaultThrottleCode = 0x01
	DefaultBrakeCode    = 0x05
	DefaultAxisMax      = 65535
)

var ErrInvalidConfig = errors.New("config: invalid value")

type Config struct {
	Device     DeviceConfig     `yaml:"device"`
	Difficulty DifficultyConfig `yaml:"difficulty"`
	Loop       LoopConfig       `yaml:"loop"`
	Display    DisplayConfig    `yaml:"display"`
	Seed       int64            `yaml:"seed"`
}

type DeviceConfig struct {
	// Path of the pedal event node; empty means discover.
	Path     string     `yaml:"path"`
	Glob     string     `yaml:"glob"`
	Keyboard string     `yaml:"keyboard"`
	Throttle AxisConfig `yaml:"throttle"`
	Brake    AxisConfig `yaml:"brake"`
}

type AxisConfig struct {
	Code         int  `yaml:"code"`
	Min          int  `yaml:"min"`
	Max          int  `yaml:"max"`
	ReleasedHigh bool `yaml:"released_high"`
}

type DifficultyConfig struct {
	Tolerance int    `yaml:"tolerance"`
	HoldTime  int    `yaml:"hold_time"`
	Active    string `yaml:"active"`
}

type LoopConfig struct {
	Interval time.Duration `yaml:"interval"`
	Debounce time.Duration `yaml:"debounce"`
}

type DisplayConfig struct {
	BarWidth int  `yaml:"bar_width"`
	Graph    bool `yaml:"graph"`
}

func DefaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Glob:     DefaultGlob,
			Throttle: AxisConfig{Code: DefaultThrottleCode, Max: DefaultAxisMax},
			Brake:    AxisConfig{Code: DefaultBrakeCode, Max: DefaultAxisMax},
		},
		Difficulty: DifficultyConfig{
			Tolerance: DefaultTolerance,
			HoldTime:  DefaultHoldTime,
			Active:    DefaultActive,
		},
		Loop: LoopConfig{
			Interval: DefaultInterval,
			Debounce: DefaultDebounce,
		},
		Display: DisplayConfig{
			BarWidth: DefaultBarWidth,
			Graph:    true,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

// Validate rejects values the trainer cannot run with. Difficulty values
// outside their ranges are clamped later rather than rejected.
func (c *Config) Validate() error {
	if c.Difficulty.Active != "brake" && c.Difficulty.Active != "throttle" {
		return fmt.Errorf("%w: active pedal %q (want brake or throttle)", ErrInvalidConfig, c.Difficulty.Active)
	}
	if c.Loop.Interval <= 0 {
		return fmt.Errorf("%w: loop interval must be positive", ErrInvalidConfig)
	}
	if c.Loop.Debounce < 0 {
		return fmt.Errorf("%w: debounce must not be negative", ErrInvalidConfig)
	}
	if c.Device.Throttle.Max <= c.Device.Throttle.Min {
		return fmt.Errorf("%w: throttle axis range", ErrInvalidConfig)
	}
	if c.Device.Brake.Max <= c.Device.Brake.Min {
		return fmt.Errorf("%w: brake axis range", ErrInvalidConfig)
	}
	if c.Display.BarWidth <= 0 {
		return fmt.Errorf("%w: bar width must be positive", ErrInvalidConfig)
	}
	return nil
}

// ApplyPreset copies the preset's difficulty into c.
func (c *Config) ApplyPreset(name string) error {
	p := GetPreset(name)
	if p == nil {
		return fmt.Errorf("%w: unknown preset %q (available: %v)", ErrInvalidConfig, name, ListPresets())
	}
	c.Difficulty.Tolerance = p.Tolerance
	c.Difficulty.HoldTime = p.HoldTime
	return nil
}

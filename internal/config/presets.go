package config

import "sort"

type Preset struct {
	Tolerance int
	HoldTime  int
}

var Presets = map[string]Preset{
	"easy":      {Tolerance: 10, HoldTime: 50},
	"normal":    {Tolerance: DefaultTolerance, HoldTime: DefaultHoldTime},
	"hard":      {Tolerance: 2, HoldTime: 150},
	"endurance": {Tolerance: 4, HoldTime: 500},
}

func GetPreset(name string) *Preset {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	return &p
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

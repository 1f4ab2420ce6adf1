package input

import (
	"fmt"
	"sort"

	evdev "github.com/gvalkov/golang-evdev"
)

// DefaultGlob matches the Linux input event nodes.
const DefaultGlob = "/dev/input/event*"

// DeviceInfo describes an event node that reports absolute axes.
type DeviceInfo struct {
	Path string
	Name string
	Axes []int
}

// HasAxes reports whether the device exposes both pedal axes.
func (d DeviceInfo) HasAxes(axes AxisMap) bool {
	var th, br bool
	for _, code := range d.Axes {
		if code == axes.Throttle.Code {
			th = true
		}
		if code == axes.Brake.Code {
			br = true
		}
	}
	return th && br
}

// ListDevices enumerates event nodes matching glob that report EV_ABS.
func ListDevices(glob string) ([]DeviceInfo, error) {
	if glob == "" {
		glob = DefaultGlob
	}
	devs, err := evdev.ListInputDevices(glob)
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}
	infos := make([]DeviceInfo, 0, len(devs))
	for _, dev := range devs {
		info := DeviceInfo{Path: dev.Fn, Name: dev.Name}
		for ct, codes := range dev.Capabilities {
			if ct.Type != evdev.EV_ABS {
				continue
			}
			for _, c := range codes {
				info.Axes = append(info.Axes, c.Code)
			}
		}
		dev.File.Close()
		if len(info.Axes) == 0 {
			continue
		}
		sort.Ints(info.Axes)
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })
	return infos, nil
}

// Discover returns the first device exposing both configured pedal axes.
func Discover(glob string, axes AxisMap) (DeviceInfo, error) {
	infos, err := ListDevices(glob)
	if err != nil {
		return DeviceInfo{}, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}
	if d, ok := pick(infos, axes); ok {
		return d, nil
	}
	return DeviceInfo{}, ErrNoDevice
}

func pick(infos []DeviceInfo, axes AxisMap) (DeviceInfo, bool) {
	for _, d := range infos {
		if d.HasAxes(axes) {
			return d, true
		}
	}
	return DeviceInfo{}, false
}

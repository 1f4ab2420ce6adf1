package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/storage"
)

// SVGOptions controls the trace image.
type SVGOptions struct {
	Width   float64
	Height  float64
	Pressed string
	Target  string
	Band    string
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{
		Width:   960,
		Height:  320,
		Pressed: "#a83247",
		Target:  "#6fa67a",
		Band:    "#dbdce3",
	}
}

// TraceSVG draws the active pedal against the target over the run. Frames
// held in the tolerance band are shaded behind the lines.
func TraceSVG(frames []storage.Frame, opts SVGOptions) string {
	if len(frames) == 0 {
		return ""
	}
	w, h := opts.Width, opts.Height
	end := frames[len(frames)-1].At.Seconds()
	if end <= 0 {
		end = 1
	}
	x := func(f storage.Frame) float64 { return f.At.Seconds() / end * w }
	y := func(v float64) float64 { return (1 - v) * h }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, w, h, w, h))

	// In-band spans
	sb.WriteString(fmt.Sprintf(`<g fill="%s" fill-opacity="0.15">
`, opts.Band))
	for i := 1; i < len(frames); i++ {
		if !frames[i].InBand {
			continue
		}
		x0, x1 := x(frames[i-1]), x(frames[i])
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="0" width="%.1f" height="%.0f"/>
`, x0, x1-x0, h))
	}
	sb.WriteString("</g>\n")

	pressed := make([]string, len(frames))
	target := make([]string, len(frames))
	for i, f := range frames {
		v := f.Brake
		if f.Active == pedal.Throttle {
			v = f.Throttle
		}
		pressed[i] = fmt.Sprintf("%.1f,%.1f", x(f), y(v))
		target[i] = fmt.Sprintf("%.1f,%.1f", x(f), y(f.Target))
	}
	sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="6 3" points="%s"/>
`, opts.Target, strings.Join(target, " ")))
	sb.WriteString(fmt.Sprintf(`<polyline fill="none" stroke="%s" stroke-width="1.5" points="%s"/>
`, opts.Pressed, strings.Join(pressed, " ")))

	sb.WriteString("</svg>\n")
	return sb.String()
}

// WriteTraceSVG writes TraceSVG output to w.
func WriteTraceSVG(w io.Writer, frames []storage.Frame, opts SVGOptions) error {
	_, err := io.WriteString(w, TraceSVG(frames, opts))
	return err
}

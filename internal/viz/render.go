package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/pedaltrainer/internal/metrics"
	"github.com/san-kum/pedaltrainer/internal/pedal"
	"github.com/san-kum/pedaltrainer/internal/trainer"
)

const (
	indent      = "   "
	graphHeight = 6
	markerRune  = "┃"
)

// Frame is everything one repaint shows.
type Frame struct {
	Device string
	trainer.Snapshot
	// Marker is where the target is drawn on the active bar. It trails
	// Target while the spring settles after a new target.
	Marker float64
	Trace  []float64
	Goals  []float64
	Stats  map[string]float64
}

// RenderOptions controls layout.
type RenderOptions struct {
	Theme    Theme
	BarWidth int
	Graph    bool
}

func axisColor(t Theme, a pedal.Axis) lipgloss.Color {
	if a == pedal.Brake {
		return t.Brake
	}
	return t.Throttle
}

// Render draws a frame. It has no side effects.
func Render(f Frame, opts RenderOptions) string {
	th := opts.Theme
	width := opts.BarWidth
	if width <= 0 {
		width = 80
	}

	label := lipgloss.NewStyle().Foreground(th.Muted)
	value := lipgloss.NewStyle().Foreground(th.Text).Bold(true)
	target := lipgloss.NewStyle().Foreground(axisColor(th, f.Active)).Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "\n%sWheel: %s\n\n", indent, value.Render(f.Device))
	fmt.Fprintf(&b, "%sBias: %s %s\n", indent, value.Render(fmt.Sprintf("%d%%", f.TolerancePercent)), label.Render("( ← → )"))
	fmt.Fprintf(&b, "%sHold time: %s %s\n\n", indent, value.Render(fmt.Sprintf("%.2fs", f.HoldSeconds)), label.Render("( ↑ ↓ )"))
	fmt.Fprintf(&b, "%sYou must hit %s %s  %s\n", indent,
		target.Render(fmt.Sprintf("%.1f%%", f.Target*100)),
		label.Render("( tab )"),
		holdMeter(f, th, 20))

	b.WriteString("\n")
	b.WriteString(renderBar(th, th.Throttle, f.Throttle, width, marker(f, pedal.Throttle, width)))
	b.WriteString(renderBar(th, th.Brake, f.Brake, width, marker(f, pedal.Brake, width)))

	if opts.Graph && len(f.Trace) > 1 {
		plot := asciigraph.PlotMany([][]float64{f.Trace, f.Goals},
			asciigraph.Height(graphHeight),
			asciigraph.Width(width),
			asciigraph.LowerBound(0),
			asciigraph.UpperBound(1),
			asciigraph.Caption(fmt.Sprintf("%s vs target", f.Active)),
		)
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Foreground(th.Accent).Render(plot))
		b.WriteString("\n")
	}

	if len(f.Stats) > 0 {
		b.WriteString("\n" + indent + renderStats(f.Stats, label, value) + "\n")
	}
	return b.String()
}

// marker returns the bar cell holding the target marker, or -1 when a is not
// the active pedal.
func marker(f Frame, a pedal.Axis, width int) int {
	if a != f.Active {
		return -1
	}
	return cell(f.Marker, width)
}

func cell(x float64, width int) int {
	i := int(math.Round(x * float64(width)))
	if i < 0 {
		return 0
	}
	if i >= width {
		return width - 1
	}
	return i
}

func renderBar(th Theme, fill lipgloss.Color, x float64, width, markAt int) string {
	filled := int(x * float64(width))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	on := lipgloss.NewStyle().Background(fill).Foreground(th.Text)
	off := lipgloss.NewStyle().Background(th.Empty).Foreground(th.Brake)

	var bar strings.Builder
	for i := 0; i < width; {
		style := off
		if i < filled {
			style = on
		}
		// Runs of equal cells share one style call.
		j := i
		for j < width && (j < filled) == (i < filled) && j != markAt {
			j++
		}
		if j == i {
			bar.WriteString(style.Render(markerRune))
			i++
			continue
		}
		bar.WriteString(style.Render(strings.Repeat(" ", j-i)))
		i = j
	}

	return fmt.Sprintf("\n    %6.1f%% %s\n", x*100, bar.String())
}

func holdMeter(f Frame, th Theme, width int) string {
	filled := int(f.Progress * float64(width))
	color := th.Muted
	if f.InBand {
		color = th.Success
	}
	s := lipgloss.NewStyle().Foreground(color)
	return s.Render("[" + strings.Repeat("■", filled) + strings.Repeat("·", width-filled) + "]")
}

func renderStats(stats map[string]float64, label, value lipgloss.Style) string {
	parts := []string{
		label.Render("hits ") + value.Render(fmt.Sprintf("%.0f", stats[metrics.NameTargetsHit])),
		label.Render("in band ") + value.Render(fmt.Sprintf("%.0f%%", stats[metrics.NameInBandRatio]*100)),
		label.Render("avg time ") + value.Render(fmt.Sprintf("%.1fs", stats[metrics.NameTimeToTarget])),
	}
	return strings.Join(parts, "   ")
}

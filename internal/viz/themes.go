package viz

import "github.com/charmbracelet/lipgloss"

// Theme defines the colors used by the gauge.
type Theme struct {
	Name     string
	Throttle lipgloss.Color
	Brake    lipgloss.Color
	Empty    lipgloss.Color
	Text     lipgloss.Color
	Muted    lipgloss.Color
	Accent   lipgloss.Color
	Success  lipgloss.Color
}

var (
	ThemeClassic = Theme{
		Name:     "classic",
		Throttle: lipgloss.Color("#6fa67a"),
		Brake:    lipgloss.Color("#a83247"),
		Empty:    lipgloss.Color("#dbdce3"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888899"),
		Accent:   lipgloss.Color("#00ccff"),
		Success:  lipgloss.Color("#00ff88"),
	}

	ThemeNight = Theme{
		Name:     "night",
		Throttle: lipgloss.Color("#00a86b"),
		Brake:    lipgloss.Color("#ff4757"),
		Empty:    lipgloss.Color("#2d2d3a"),
		Text:     lipgloss.Color("#e0f0ff"),
		Muted:    lipgloss.Color("#4488aa"),
		Accent:   lipgloss.Color("#ffd700"),
		Success:  lipgloss.Color("#5fd068"),
	}

	ThemeMono = Theme{
		Name:     "mono",
		Throttle: lipgloss.Color("#bbbbbb"),
		Brake:    lipgloss.Color("#777777"),
		Empty:    lipgloss.Color("#222222"),
		Text:     lipgloss.Color("#ffffff"),
		Muted:    lipgloss.Color("#888888"),
		Accent:   lipgloss.Color("#ffffff"),
		Success:  lipgloss.Color("#dddddd"),
	}

	Themes = []Theme{ThemeClassic, ThemeNight, ThemeMono}
)

// GetTheme returns a theme by name, falling back to classic.
func GetTheme(name string) Theme {
	for _, t := range Themes {
		if t.Name == name {
			return t
		}
	}
	return ThemeClassic
}

// NextTheme returns the theme after the named one.
func NextTheme(name string) Theme {
	for i, t := range Themes {
		if t.Name == name {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeClassic
}

func ThemeNames() []string {
	names := make([]string, len(Themes))
	for i, t := range Themes {
		names[i] = t.Name
	}
	return names
}

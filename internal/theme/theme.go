// Package theme holds the colour palettes used for prompts, notices and
// listings.
package theme

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the set of colours a theme defines.
type Palette struct {
	Accent   lipgloss.Color
	AccentFg lipgloss.Color // text on Accent
	Border   lipgloss.Color
	Muted    lipgloss.Color
	Text     lipgloss.Color
	Success  lipgloss.Color
	Warn     lipgloss.Color
	Error    lipgloss.Color
	Info     lipgloss.Color
	Light    bool
}

// Theme names.
const (
	DraculaName        = "dracula"
	DraculaLightName   = "dracula-light"
	NordName           = "nord"
	GruvboxDarkName    = "gruvbox-dark"
	SolarizedLightName = "solarized-light"
)

var palettes = map[string]func() Palette{
	DraculaName: func() Palette {
		return Palette{
			Accent:   "#BD93F9",
			AccentFg: "#282A36",
			Border:   "#6272A4",
			Muted:    "#6272A4",
			Text:     "#F8F8F2",
			Success:  "#50FA7B",
			Warn:     "#FFB86C",
			Error:    "#FF5555",
			Info:     "#8BE9FD",
		}
	},
	DraculaLightName: func() Palette {
		return Palette{
			Accent:   "#7C3AED",
			AccentFg: "#FFFFFF",
			Border:   "#D0D7DE",
			Muted:    "#6E7781",
			Text:     "#24292F",
			Success:  "#059669",
			Warn:     "#D97706",
			Error:    "#DC2626",
			Info:     "#0891B2",
			Light:    true,
		}
	},
	NordName: func() Palette {
		return Palette{
			Accent:   "#88C0D0",
			AccentFg: "#2E3440",
			Border:   "#4C566A",
			Muted:    "#81A1C1",
			Text:     "#ECEFF4",
			Success:  "#A3BE8C",
			Warn:     "#EBCB8B",
			Error:    "#BF616A",
			Info:     "#8FBCBB",
		}
	},
	GruvboxDarkName: func() Palette {
		return Palette{
			Accent:   "#FABD2F",
			AccentFg: "#282828",
			Border:   "#504945",
			Muted:    "#928374",
			Text:     "#EBDBB2",
			Success:  "#B8BB26",
			Warn:     "#FE8019",
			Error:    "#FB4934",
			Info:     "#83A598",
		}
	},
	SolarizedLightName: func() Palette {
		return Palette{
			Accent:   "#268BD2",
			AccentFg: "#FDF6E3",
			Border:   "#93A1A1",
			Muted:    "#93A1A1",
			Text:     "#586E75",
			Success:  "#859900",
			Warn:     "#CB4B16",
			Error:    "#DC322F",
			Info:     "#2AA198",
			Light:    true,
		}
	},
}

// Get returns the named palette, falling back to Dracula for unknown names.
func Get(name string) Palette {
	if p, ok := palettes[strings.ToLower(strings.TrimSpace(name))]; ok {
		return p()
	}
	return palettes[DraculaName]()
}

// Known reports whether name is a built-in theme.
func Known(name string) bool {
	_, ok := palettes[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Available lists the theme names, sorted.
func Available() []string {
	names := make([]string, 0, len(palettes))
	for n := range palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Styles are the lipgloss styles derived from a palette.
type Styles struct {
	Title        lipgloss.Style
	Text         lipgloss.Style
	Muted        lipgloss.Style
	Notice       lipgloss.Style
	Error        lipgloss.Style
	Warn         lipgloss.Style
	Button       lipgloss.Style
	ActiveButton lipgloss.Style
	Box          lipgloss.Style
}

// NewStyles builds the styles for p.
func NewStyles(p Palette) Styles {
	button := lipgloss.NewStyle().Padding(0, 2).Foreground(p.Text).Background(p.Border)
	return Styles{
		Title:        lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		Text:         lipgloss.NewStyle().Foreground(p.Text),
		Muted:        lipgloss.NewStyle().Foreground(p.Muted),
		Notice:       lipgloss.NewStyle().Foreground(p.Info),
		Error:        lipgloss.NewStyle().Bold(true).Foreground(p.Error),
		Warn:         lipgloss.NewStyle().Foreground(p.Warn),
		Button:       button,
		ActiveButton: button.Foreground(p.AccentFg).Background(p.Accent).Bold(true),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(0, 1),
	}
}

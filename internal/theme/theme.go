// Package theme holds the lipgloss styles used for command output.
package theme

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
)

// HeaderStyle is used for section headers.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// LabelStyle renders field names in key/value listings.
var LabelStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Width(10)

// ValueStyle renders field values.
var ValueStyle = lipgloss.NewStyle().
	Foreground(ColorWhite)

// MutedStyle is for absent values and hints.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// SuccessStyle and ErrorStyle mark command outcomes.
var (
	SuccessStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	ErrorStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
)

// SchemeStyle returns a color-coded style for a URI scheme name. Secure
// variants are green, cleartext ones yellow.
func SchemeStyle(name string) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)

	switch name {
	case "imaps", "pops", "smtps", "snews":
		return base.Foreground(ColorGreen)
	case "imap", "pop", "smtp", "news":
		return base.Foreground(ColorYellow)
	case "mailto":
		return base.Foreground(ColorMagenta)
	case "file", "notmuch":
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}

// Field renders one "label value" line. An empty value is shown as
// "(none)".
func Field(label, value string) string {
	v := ValueStyle.Render(value)
	if value == "" {
		v = MutedStyle.Render("(none)")
	}
	return LabelStyle.Render(label) + " " + v
}

// Fields renders label/value pairs, one per line.
func Fields(pairs ...string) string {
	lines := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		lines = append(lines, Field(pairs[i], pairs[i+1]))
	}
	return strings.Join(lines, "\n")
}

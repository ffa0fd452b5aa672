package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette. Use these instead of inline lipgloss.Color literals.
var (
	ColorRed    = lipgloss.Color("1")
	ColorGreen  = lipgloss.Color("2")
	ColorYellow = lipgloss.Color("3")
	ColorCyan   = lipgloss.Color("6")
	ColorWhite  = lipgloss.Color("7")
)

var (
	// StyleDim styles structural chrome (paths, counts, timings).
	StyleDim = lipgloss.NewStyle().Faint(true)

	// StyleBold styles identifiable nouns (file names, platform tags).
	StyleBold = lipgloss.NewStyle().Bold(true)
)

// Paint renders its arguments joined by a space in some style.
type Paint func(strs ...string) string

func plain(strs ...string) string {
	return strings.Join(strs, " ")
}

// Styles is the set of paints used for bundler reporter lines. In plain mode
// every paint returns its input unchanged, so output can be compared byte for byte.
type Styles struct {
	Bold      Paint
	Dim       Paint
	Done      Paint
	Failed    Paint
	FastTime  Paint
	BarFilled Paint
	BarEmpty  Paint
	Warning   Paint
	Notice    Paint

	// Level badges for forwarded client logs.
	LevelError Paint
	LevelWarn  Paint
	LevelLog   Paint
}

// NewStyles returns colored styles when color is true, plain ones otherwise.
func NewStyles(color bool) Styles {
	if !color {
		return PlainStyles()
	}

	badge := func(c lipgloss.Color) Paint {
		return lipgloss.NewStyle().Reverse(true).Foreground(c).Render
	}

	return Styles{
		Bold:       StyleBold.Render,
		Dim:        StyleDim.Render,
		Done:       lipgloss.NewStyle().Foreground(ColorGreen).Render,
		Failed:     lipgloss.NewStyle().Foreground(ColorRed).Render,
		FastTime:   lipgloss.NewStyle().Bold(true).Foreground(ColorCyan).Render,
		BarFilled:  lipgloss.NewStyle().Foreground(ColorGreen).Background(ColorGreen).Render,
		BarEmpty:   lipgloss.NewStyle().Foreground(ColorWhite).Background(ColorWhite).Render,
		Warning:    lipgloss.NewStyle().Foreground(ColorYellow).Render,
		Notice:     lipgloss.NewStyle().Foreground(ColorRed).Render,
		LevelError: badge(ColorRed),
		LevelWarn:  badge(ColorYellow),
		LevelLog:   badge(ColorWhite),
	}
}

// PlainStyles returns styles that never emit escape sequences.
func PlainStyles() Styles {
	return Styles{
		Bold:       plain,
		Dim:        plain,
		Done:       plain,
		Failed:     plain,
		FastTime:   plain,
		BarFilled:  plain,
		BarEmpty:   plain,
		Warning:    plain,
		Notice:     plain,
		LevelError: plain,
		LevelWarn:  plain,
		LevelLog:   plain,
	}
}

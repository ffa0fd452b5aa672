// Package output provides styled terminal output with automatic CI and
// terminal capability detection. Human-readable CLI output goes through a
// Writer; bundler reporter lines go through a Terminal.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
)

// Writer provides styled terminal output. Create one with New() for
// production use or NewTest() for tests.
type Writer struct {
	w           io.Writer
	interactive bool // terminal AND not CI
	color       bool // terminal AND not NO_COLOR
}

// KeyValue is a key-value pair for Result output.
type KeyValue struct {
	Key   string
	Value string
}

// New creates a Writer that writes to stderr with auto-detected capabilities.
func New() *Writer {
	return NewWriter(os.Stderr)
}

// NewWriter creates a Writer targeting the given writer. Terminal capability
// is detected via Fd() if the writer supports it.
func NewWriter(w io.Writer) *Writer {
	isTerm := isTerminal(w)
	return &Writer{
		w:           w,
		interactive: isTerm && !isCI(),
		color:       isTerm && os.Getenv("NO_COLOR") == "",
	}
}

// NewTest creates a Writer with no color and non-interactive mode.
func NewTest(w io.Writer) *Writer {
	return &Writer{w: w}
}

func isTerminal(w io.Writer) bool {
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		return term.IsTerminal(int(f.Fd()))
	}
	return false
}

func isCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("BITRISE_BUILD_NUMBER") != ""
}

// IsInteractive returns true if the writer targets an interactive terminal
// (not CI, not piped).
func (w *Writer) IsInteractive() bool {
	return w.interactive
}

// Color reports whether styled output is enabled.
func (w *Writer) Color() bool {
	return w.color
}

func (w *Writer) prefixed(prefix string, style lipgloss.Style, format string, args []interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		prefix = style.Render(prefix)
	}
	fmt.Fprintf(w.w, "%s %s\n", prefix, msg)
}

// Step prints a progress step: "-> message", cyan arrow in color mode.
func (w *Writer) Step(format string, args ...interface{}) {
	w.prefixed("->", lipgloss.NewStyle().Foreground(ColorCyan), format, args)
}

// Success prints "OK message", green bold in color mode.
func (w *Writer) Success(format string, args ...interface{}) {
	w.prefixed("OK", lipgloss.NewStyle().Bold(true).Foreground(ColorGreen), format, args)
}

// Error prints "ERROR message", red bold in color mode.
func (w *Writer) Error(format string, args ...interface{}) {
	w.prefixed("ERROR", lipgloss.NewStyle().Bold(true).Foreground(ColorRed), format, args)
}

// Warning prints "WARNING message", yellow bold in color mode.
func (w *Writer) Warning(format string, args ...interface{}) {
	w.prefixed("WARNING", lipgloss.NewStyle().Bold(true).Foreground(ColorYellow), format, args)
}

// Info prints supplementary information indented under a step.
func (w *Writer) Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if w.color {
		msg = StyleDim.Render(msg)
	}
	fmt.Fprintf(w.w, "   %s\n", msg)
}

// Result prints key-value pairs with aligned keys.
func (w *Writer) Result(pairs []KeyValue) {
	if len(pairs) == 0 {
		return
	}

	width := 0
	for _, p := range pairs {
		if len(p.Key) > width {
			width = len(p.Key)
		}
	}

	fmt.Fprintln(w.w)
	for _, p := range pairs {
		key := p.Key
		if w.color {
			key = StyleBold.Render(key)
		}
		fmt.Fprintf(w.w, "  %s%s  %s\n", key, strings.Repeat(" ", width-len(p.Key)), p.Value)
	}
}

// Table renders a borderless table.
func (w *Writer) Table(headers []string, rows [][]string) {
	t := table.New().
		Headers(headers...).
		Rows(rows...).
		BorderRow(false).
		BorderColumn(false).
		BorderLeft(false).
		BorderRight(false).
		BorderTop(false).
		BorderBottom(false)

	if w.color {
		headerStyle := lipgloss.NewStyle().Bold(true).Foreground(ColorCyan)
		t = t.StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})
	}

	fmt.Fprintln(w.w, t.Render())
}

// Println prints a plain line with no prefix or styling.
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.w, format+"\n", args...)
}

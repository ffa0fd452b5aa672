package output

import (
	"fmt"
	"io"
	"sync"
)

const clearLine = "\r\x1b[K"

// Terminal writes reporter output. Log lines are permanent; the status line is
// redrawn in place on interactive terminals and dropped otherwise, so CI logs
// only contain the final line of each build.
//
// Terminal is safe for concurrent use.
type Terminal struct {
	mu          sync.Mutex
	w           io.Writer
	interactive bool
	status      string
}

// NewTerminal creates a Terminal on w with auto-detected capabilities.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w, interactive: isTerminal(w) && !isCI()}
}

// NewTestTerminal creates a non-interactive Terminal.
func NewTestTerminal(w io.Writer) *Terminal {
	return &Terminal{w: w}
}

// Log writes a permanent line, keeping the current status line below it.
func (t *Terminal) Log(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interactive && t.status != "" {
		fmt.Fprint(t.w, clearLine)
	}
	fmt.Fprintln(t.w, msg)
	if t.interactive && t.status != "" {
		fmt.Fprint(t.w, t.status)
	}
}

// Status replaces the status line. An empty msg clears it.
func (t *Terminal) Status(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.interactive {
		return
	}
	fmt.Fprint(t.w, clearLine+msg)
	t.status = msg
}

// Flush clears the status line.
func (t *Terminal) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interactive && t.status != "" {
		fmt.Fprint(t.w, clearLine)
		t.status = ""
	}
}

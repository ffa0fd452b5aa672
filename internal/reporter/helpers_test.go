package reporter

import (
	"context"
	"sync"
	"time"
)

type recordTerminal struct {
	mu       sync.Mutex
	logs     []string
	statuses []string
}

func (t *recordTerminal) Log(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.logs = append(t.logs, msg)
}

func (t *recordTerminal) Status(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.statuses = append(t.statuses, msg)
}

func (t *recordTerminal) Logs() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.logs...)
}

func (t *recordTerminal) LastStatus() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.statuses) == 0 {
		return ""
	}
	return t.statuses[len(t.statuses)-1]
}

type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeSymbolicator struct {
	stack string
	err   error
}

func (s *fakeSymbolicator) Symbolicate(_ context.Context, _, _ string, _ *ParsedError) (string, error) {
	return s.stack, s.err
}

func newTestReporter(term Terminal, clock *fakeClock, opts Options) *Reporter {
	opts.Now = clock.Now
	return New("/app", term, opts)
}

func buildStarted(buildID, platform, entry string) Event {
	return Event{
		Type:          EventBuildStarted,
		BuildID:       buildID,
		BundleDetails: &BundleDetails{EntryFile: entry, Platform: platform},
	}
}

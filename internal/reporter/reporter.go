// Package reporter turns the bundler's event stream into terminal output:
// build progress bars, bundle timings, bundling errors and forwarded client
// logs.
package reporter

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bitrise-io/metro-cli/internal/output"
)

// Terminal receives reporter output. Log lines are permanent; Status
// replaces the current status line.
type Terminal interface {
	Log(msg string)
	Status(msg string)
}

// Options configures a Reporter. The zero value is usable.
type Options struct {
	// Fallback handles events the reporter does not render itself. Defaults
	// to DefaultFallback.
	Fallback func(Event)

	// Symbolicator resolves unsymbolicated stacks in client warnings and
	// errors. Nil disables symbolication.
	Symbolicator Symbolicator

	Styles output.Styles

	// Debug keeps debugger connection notices (EXPO_DEBUG).
	Debug bool

	// Context bounds symbolication requests. Defaults to context.Background().
	Context context.Context

	// Now is the clock used for bundle timings. Defaults to time.Now.
	Now func() time.Time
}

// Reporter renders bundler events. Update must be called from one goroutine
// at a time; symbolicated logs may be printed after later events.
type Reporter struct {
	projectRoot  string
	term         Terminal
	fallback     func(Event)
	symbolicator Symbolicator
	styles       output.Styles
	debug        bool
	ctx          context.Context
	now          func() time.Time

	mu           sync.Mutex
	bundleTimers map[string]time.Time
	active       map[string]*BundleProgress
	activeOrder  []string
	groupStack   []string

	pending sync.WaitGroup
}

var (
	logsMovedNotice     = regexp.MustCompile(`JavaScript logs have moved`)
	debuggerConnections = regexp.MustCompile(`(?i)Connection (closed|established|failed|terminated)`)
)

// New creates a Reporter for the project at projectRoot writing to term.
func New(projectRoot string, term Terminal, opts Options) *Reporter {
	r := &Reporter{
		projectRoot:  projectRoot,
		term:         term,
		fallback:     opts.Fallback,
		symbolicator: opts.Symbolicator,
		styles:       opts.Styles,
		debug:        opts.Debug,
		ctx:          opts.Context,
		now:          opts.Now,
		bundleTimers: make(map[string]time.Time),
		active:       make(map[string]*BundleProgress),
	}
	if r.fallback == nil {
		r.fallback = DefaultFallback(term)
	}
	if r.styles.Bold == nil {
		r.styles = output.PlainStyles()
	}
	if r.ctx == nil {
		r.ctx = context.Background()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Update handles one event.
func (r *Reporter) Update(event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if event.BundleDetails != nil && event.BundleDetails.BundleType == "map" {
		return
	}

	switch event.Type {
	case EventServerLog:
		if msg, ok := event.Data.FirstString(); ok {
			if logsMovedNotice.MatchString(msg) {
				return
			}
			if !r.debug && debuggerConnections.MatchString(msg) {
				return
			}
		}
		r.fallback(event)

	case EventClientLog:
		r.clientLog(event)

	case EventBuildStarted:
		r.buildStarted(event)

	case EventTransformProgressed:
		r.transformProgressed(event)

	case EventBuildDone:
		r.buildFinished(event.BuildID, PhaseDone)

	case EventBuildFailed:
		r.buildFinished(event.BuildID, PhaseFailed)

	case EventBundlingError:
		if event.Error == nil {
			r.fallback(event)
			return
		}
		r.term.Log(FormatBundlingError(r.projectRoot, event.Error, r.styles))

	case EventInitializeStarted:
		r.term.Log("Starting Metro Bundler")

	case EventInitializeFailed:
		r.initializeFailed(event)

	case EventCacheReset:
		r.term.Log(r.styles.Warning("Bundler cache is empty, rebuilding (this may take a minute)"))

	case EventDepGraphLoading:
		if event.HasReducedPerformance {
			r.term.Log(r.styles.Notice("Metro is operating with reduced performance.\nFix the problem above and restart Metro."))
		}

	default:
		r.fallback(event)
	}
}

// Wait blocks until pending symbolications have printed.
func (r *Reporter) Wait() {
	r.pending.Wait()
}

func (r *Reporter) clientLog(event Event) {
	if ShouldFilterClientLog(event) {
		return
	}
	if event.Level == "" {
		r.fallback(event)
		return
	}

	mode := normalizeMode(event.Mode)
	if (event.Level == "warn" || event.Level == "error") && r.symbolicator != nil {
		parsed := parseStackItems(event.Data)
		if parsed != nil {
			r.symbolicateAsync(event, mode, parsed)
			return
		}
	}
	r.logLikeMetro(event.Level, mode, event.Data...)
}

// parseStackItems parses every data item carrying an unsymbolicated stack.
// The result is indexed like data; it is nil when no item has such a stack.
func parseStackItems(data LogData) []*ParsedError {
	var parsed []*ParsedError
	for i, item := range data {
		s, ok := item.(string)
		if !ok || !strings.Contains(s, unsymbolicatedStackMarker) {
			continue
		}
		p, ok := ParseErrorString(s)
		if !ok {
			continue
		}
		if parsed == nil {
			parsed = make([]*ParsedError, len(data))
		}
		parsed[i] = p
	}
	return parsed
}

// symbolicateAsync replaces each stack-bearing item with its symbolicated
// form once the symbolicator answers. Other items, and items whose
// symbolication fails, are printed as received.
func (r *Reporter) symbolicateAsync(event Event, mode string, parsed []*ParsedError) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		items := make([]any, len(event.Data))
		copy(items, event.Data)
		for i, p := range parsed {
			if p == nil {
				continue
			}
			stack, err := r.symbolicator.Symbolicate(r.ctx, r.projectRoot, event.Level, p)
			if err != nil {
				output.Debug("symbolicating client log failed", "level", event.Level, "err", err)
				continue
			}
			items[i] = p.Message + "\n\n" + stack
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		r.logLikeMetro(event.Level, mode, items...)
	}()
}

func (r *Reporter) buildStarted(event Event) {
	if event.BundleDetails == nil {
		r.fallback(event)
		return
	}

	r.bundleTimers[event.BuildID] = r.now()
	if _, ok := r.active[event.BuildID]; !ok {
		r.activeOrder = append(r.activeOrder, event.BuildID)
	}
	details := *event.BundleDetails
	details.BuildID = event.BuildID
	r.active[event.BuildID] = &BundleProgress{BundleDetails: details, TotalFileCount: 1}
	r.renderStatus()
}

// transformProgressed smooths the ratio so the bar never moves backwards
// and never reaches 100% before the build is done.
func (r *Reporter) transformProgressed(event Event) {
	progress, ok := r.active[event.BuildID]
	if !ok {
		return
	}

	ratio := math.Pow(float64(event.TransformedFileCount)/float64(max(event.TotalFileCount, 10)), 2)
	progress.Ratio = math.Min(math.Max(ratio, progress.Ratio), 0.999)
	progress.TransformedFileCount = event.TransformedFileCount
	progress.TotalFileCount = event.TotalFileCount
	r.renderStatus()
}

func (r *Reporter) buildFinished(buildID string, phase Phase) {
	progress, ok := r.active[buildID]
	if !ok {
		return
	}

	final := *progress
	if phase == PhaseDone {
		final.Ratio = 1
		final.TransformedFileCount = final.TotalFileCount
	}
	r.term.Log(r.formatBundleStatus(final, phase))

	delete(r.active, buildID)
	for i, id := range r.activeOrder {
		if id == buildID {
			r.activeOrder = append(r.activeOrder[:i], r.activeOrder[i+1:]...)
			break
		}
	}
	r.renderStatus()
}

// renderStatus shows the most recently started build that is still running.
func (r *Reporter) renderStatus() {
	if len(r.activeOrder) == 0 {
		r.term.Status("")
		return
	}
	latest := r.active[r.activeOrder[len(r.activeOrder)-1]]
	r.term.Status(r.formatBundleStatus(*latest, PhaseInProgress))
}

func (r *Reporter) initializeFailed(event Event) {
	if event.Error != nil && event.Error.Code == "EADDRINUSE" {
		r.term.Log(r.styles.Failed(fmt.Sprintf("Metro port %d is already in use. Stop the other process or start Metro on a different port.", event.Port)))
		return
	}
	msg := "Metro failed to start"
	if event.Error != nil && event.Error.Message != "" {
		msg += ": " + event.Error.Message
	}
	r.term.Log(r.styles.Failed(msg))
}

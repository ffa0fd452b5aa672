package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EventType identifies a bundler reporter event.
type EventType string

const (
	EventServerLog           EventType = "unstable_server_log"
	EventClientLog           EventType = "client_log"
	EventBuildStarted        EventType = "bundle_build_started"
	EventTransformProgressed EventType = "bundle_transform_progressed"
	EventBuildDone           EventType = "bundle_build_done"
	EventBuildFailed         EventType = "bundle_build_failed"
	EventBundlingError       EventType = "bundling_error"
	EventInitializeStarted   EventType = "initialize_started"
	EventInitializeDone      EventType = "initialize_done"
	EventInitializeFailed    EventType = "initialize_failed"
	EventCacheReset          EventType = "transform_cache_reset"
	EventDepGraphLoading     EventType = "dep_graph_loading"
	EventDepGraphLoaded      EventType = "dep_graph_loaded"
	EventWorkerStdout        EventType = "worker_stdout_chunk"
	EventWorkerStderr        EventType = "worker_stderr_chunk"
)

// Phase is the rendering phase of a bundle status line.
type Phase string

const (
	PhaseInProgress Phase = "in_progress"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Event is one message of the bundler event stream. Fields not used by a
// given event type are left zero.
type Event struct {
	Type  EventType `json:"type"`
	Level string    `json:"level,omitempty"`
	Mode  string    `json:"mode,omitempty"`
	Data  LogData   `json:"data,omitempty"`

	BuildID              string         `json:"buildID,omitempty"`
	BundleDetails        *BundleDetails `json:"bundleDetails,omitempty"`
	TransformedFileCount int            `json:"transformedFileCount,omitempty"`
	TotalFileCount       int            `json:"totalFileCount,omitempty"`

	Error                 *BundlingError `json:"error,omitempty"`
	Port                  int            `json:"port,omitempty"`
	HasReducedPerformance bool           `json:"hasReducedPerformance,omitempty"`
	Chunk                 string         `json:"chunk,omitempty"`
}

// LogData is the payload of a log event. The bundler sends either a single
// string or an array of values; both decode into a slice.
type LogData []any

// UnmarshalJSON accepts a JSON string or array. null leaves d empty.
func (d *LogData) UnmarshalJSON(b []byte) error {
	if string(bytes.TrimSpace(b)) == "null" {
		*d = nil
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*d = LogData{s}
		return nil
	}

	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		return fmt.Errorf("log data must be a string or an array: %w", err)
	}
	*d = items
	return nil
}

// FirstString returns the first item when it is a string.
func (d LogData) FirstString() (string, bool) {
	if len(d) == 0 {
		return "", false
	}
	s, ok := d[0].(string)
	return s, ok
}

// BundleDetails describes the bundle a build event belongs to.
type BundleDetails struct {
	EntryFile              string         `json:"entryFile"`
	Platform               string         `json:"platform,omitempty"`
	BuildID                string         `json:"buildID,omitempty"`
	BundleType             string         `json:"bundleType,omitempty"`
	CustomTransformOptions map[string]any `json:"customTransformOptions,omitempty"`
}

func (d *BundleDetails) transformOption(key string) string {
	if d == nil {
		return ""
	}
	s, _ := d.CustomTransformOptions[key].(string)
	return s
}

// BundleProgress is the progress of one in-flight build.
type BundleProgress struct {
	BundleDetails        BundleDetails
	TransformedFileCount int
	TotalFileCount       int
	Ratio                float64
}

// BundlingError is the error attached to bundling_error events.
type BundlingError struct {
	Message          string      `json:"message"`
	Code             string      `json:"code,omitempty"`
	Snippet          string      `json:"snippet,omitempty"`
	TargetModuleName string      `json:"targetModuleName,omitempty"`
	OriginModulePath string      `json:"originModulePath,omitempty"`
	Cause            *ErrorCause `json:"cause,omitempty"`
}

// ErrorCause carries the import stack attached by the resolver.
type ErrorCause struct {
	ImportStack string `json:"_expoImportStack,omitempty"`
}

func (e *BundlingError) importStack() string {
	if e == nil || e.Cause == nil {
		return ""
	}
	return e.Cause.ImportStack
}

package reporter

import (
	"strings"

	"github.com/bitrise-io/metro-cli/internal/output"
)

// DefaultFallback returns the base handling for events the Reporter does not
// render itself: server and unleveled client logs are printed as is, worker
// output is prefixed with its stream, and anything else goes to the debug log.
func DefaultFallback(term Terminal) func(Event) {
	return func(event Event) {
		switch event.Type {
		case EventServerLog, EventClientLog:
			msg := formatLogData(event.Data)
			if event.Level == "warn" || event.Level == "error" {
				msg = strings.ToUpper(event.Level) + " " + msg
			}
			term.Log(msg)

		case EventWorkerStdout, EventWorkerStderr:
			stream := "stdout"
			if event.Type == EventWorkerStderr {
				stream = "stderr"
			}
			for _, line := range strings.Split(strings.TrimRight(event.Chunk, "\n"), "\n") {
				term.Log("transform[" + stream + "]: " + line)
			}

		case EventBundlingError:
			term.Log("Bundling failed")

		default:
			output.Debug("unhandled bundler event", "type", event.Type, "buildID", event.BuildID)
		}
	}
}

func formatLogData(data LogData) string {
	parts := make([]string, len(data))
	for i, item := range data {
		parts[i] = formatLogItem(item)
	}
	return strings.TrimRight(strings.Join(parts, " "), " \t\r\n")
}

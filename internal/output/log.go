package output

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// Logger is the debug channel. It stays quiet below warning level unless
// verbose logging is enabled.
var Logger = newLogger(os.Stderr, false)

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          "metro",
		ReportTimestamp: verbose,
	})
}

// SetupLogging configures the debug channel on stderr.
func SetupLogging(verbose bool) {
	Logger = newLogger(os.Stderr, verbose)
}

// SetLogOutput redirects the debug channel, keeping verbosity. Used by tests.
func SetLogOutput(w io.Writer, verbose bool) {
	Logger = newLogger(w, verbose)
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	Logger.Debug(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	Logger.Warn(msg, keyvals...)
}

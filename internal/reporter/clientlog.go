package reporter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	appRegistryBanner    = regexp.MustCompile(`^Running application "main" with appParams:`)
	appRegistryBannerNew = regexp.MustCompile(`^Running "main" with \{`)
)

// ShouldFilterClientLog reports whether a client log is the app registry
// startup banner, which is printed on every reload.
func ShouldFilterClientLog(event Event) bool {
	if len(event.Data) != 1 {
		return false
	}
	msg, ok := event.Data.FirstString()
	if !ok {
		return false
	}
	return appRegistryBanner.MatchString(msg) || appRegistryBannerNew.MatchString(msg)
}

// normalizeMode hides the bridge mode tags, which every modern app reports.
func normalizeMode(mode string) string {
	if mode == "NOBRIDGE" || mode == "BRIDGE" {
		return ""
	}
	return mode
}

// consoleLevels are the console methods with a badge of their own; anything
// else prints as LOG.
var consoleLevels = []string{"log", "info", "warn", "error", "debug", "group", "groupCollapsed"}

// logLikeMetro formats a forwarded console call the way the bundler does:
// an optional mode prefix, a level badge and group indentation. Calls inside a
// collapsed group print nothing. Must be called with r.mu held.
func (r *Reporter) logLikeMetro(level, mode string, data ...any) {
	switch level {
	case "group", "groupCollapsed":
		r.groupStack = append(r.groupStack, level)
	case "groupEnd":
		if len(r.groupStack) > 0 {
			r.groupStack = r.groupStack[:len(r.groupStack)-1]
		}
		return
	}
	if slices.Contains(r.groupStack, "groupCollapsed") {
		return
	}

	badgeLevel := "log"
	if slices.Contains(consoleLevels, level) {
		badgeLevel = level
	}
	paint := r.styles.LevelLog
	switch level {
	case "error":
		paint = r.styles.LevelError
	case "warn":
		paint = r.styles.LevelWarn
	}

	prefix := ""
	if mode != "" {
		prefix = r.styles.Bold(mode) + " "
	}
	prefix += paint(" "+strings.ToUpper(badgeLevel)+" ") + strings.Repeat(" ", len(r.groupStack)*2)

	parts := make([]string, 0, len(data)+1)
	parts = append(parts, prefix)
	for i, item := range data {
		s := formatLogItem(item)
		if i == len(data)-1 {
			s = strings.TrimRight(s, " \t\r\n")
		}
		parts = append(parts, s)
	}
	r.term.Log(strings.Join(parts, " "))
}

func formatLogItem(item any) string {
	switch v := item.(type) {
	case string:
		return v
	case nil:
		return "null"
	case float64, bool:
		return fmt.Sprint(v)
	}
	b, err := json.Marshal(item)
	if err != nil {
		return fmt.Sprint(item)
	}
	return string(b)
}

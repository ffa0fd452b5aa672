package reporter

import (
	"path/filepath"
	"strings"

	"github.com/bitrise-io/metro-cli/internal/output"
)

const (
	usingLibrariesDocsURL = "https://docs.expo.dev/workflow/using-libraries/#using-third-party-libraries"

	// metroCacheHint is the last item of the cache-clearing instructions the
	// bundler prints before the code frame of a resolution error.
	metroCacheHint = "4. Remove the cache"
)

// StripMetroInfo returns the code frame that follows the bundler's
// cache-clearing instructions in msg. ok is false when msg has none.
func StripMetroInfo(msg string) (frame string, ok bool) {
	if !strings.Contains(msg, metroCacheHint) {
		return "", false
	}
	lines := strings.Split(msg, "\n")
	for i, line := range lines {
		if strings.Contains(line, metroCacheHint) {
			return strings.Join(lines[i+1:], "\n"), true
		}
	}
	return "", false
}

// FormatBundlingError renders a bundling error. Module resolution failures
// get a dedicated diagnostic (with a Node standard library explanation when
// that is the cause) followed by the code frame; other errors render as the
// bundler reports them. Any import stack is appended in both cases.
func FormatBundlingError(projectRoot string, err *BundlingError, styles output.Styles) string {
	if err == nil {
		return ""
	}

	msg, ok := formatModuleResolutionError(projectRoot, err, styles)
	if ok {
		if frame, found := StripMetroInfo(err.Message); found && frame != "" {
			msg += "\n" + frame
		}
	} else {
		msg = styles.Failed(err.Message)
		if err.Snippet != "" {
			msg += "\n\n" + err.Snippet
		}
	}

	if stack := err.importStack(); stack != "" {
		msg += "\n\n" + stack
	}
	return msg
}

func formatModuleResolutionError(projectRoot string, err *BundlingError, styles output.Styles) (string, bool) {
	if err.Message == "" || err.TargetModuleName == "" || err.OriginModulePath == "" {
		return "", false
	}

	rel := relativePath(projectRoot, err.OriginModulePath)
	target := err.TargetModuleName

	if !IsNodeStandardLibraryModule(target) {
		return `Unable to resolve "` + target + `" from "` + rel + `"`, true
	}

	var first string
	if strings.Contains(err.OriginModulePath, "node_modules") {
		first = `The package at "` + styles.Bold(rel) + `" attempted to import the Node standard library module "` + styles.Bold(target) + `".`
	} else {
		first = `You attempted to import the Node standard library module "` + styles.Bold(target) + `" from "` + styles.Bold(rel) + `".`
	}
	return strings.Join([]string{
		first,
		"It failed because the native React runtime does not include the Node standard library.",
		styles.Dim("Learn more: " + usingLibrariesDocsURL),
	}, "\n"), true
}

// relativePath returns path relative to root, or path unchanged when that is
// not possible.
func relativePath(root, path string) string {
	if root == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

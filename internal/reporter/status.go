package reporter

import (
	"fmt"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/bitrise-io/metro-cli/internal/output"
)

const (
	progressBarWidth = 16
	darkBlock        = "▓"
	lightBlock       = "░"
)

var (
	platformNames = map[string]string{
		"ios":     "iOS",
		"android": "Android",
		"web":     "Web",
	}

	leadingRelativeSegments = regexp.MustCompile(`^(\.?\.[\\/])+`)
)

// FormatBundleStatus renders the status line of a build. Finished builds show
// the elapsed time since bundle_build_started when it was recorded.
func (r *Reporter) FormatBundleStatus(progress BundleProgress, phase Phase) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.formatBundleStatus(progress, phase)
}

func (r *Reporter) formatBundleStatus(progress BundleProgress, phase Phase) string {
	s := r.styles
	details := &progress.BundleDetails
	tag := environmentTag(details, s)
	localPath := r.displayPath(details)

	if phase != PhaseInProgress {
		status, color := "Bundled ", s.Done
		if phase == PhaseFailed {
			status, color = "Bundling failed ", s.Failed
		}

		elapsed := ""
		if start, ok := r.bundleTimers[details.BuildID]; ok {
			elapsed = formatElapsed(r.now().Sub(start), s)
		}

		plural := "s"
		if progress.TotalFileCount == 1 {
			plural = ""
		}
		return color(tag+status) + elapsed + s.Dim(fmt.Sprintf(" %s (%d module%s)", localPath, progress.TotalFileCount, plural))
	}

	filled := int(math.Floor(progress.Ratio * progressBarWidth))
	filled = min(max(filled, 0), progressBarWidth)
	total := strconv.Itoa(progress.TotalFileCount)
	bar := s.BarFilled(strings.Repeat(darkBlock, filled)) +
		s.BarEmpty(strings.Repeat(lightBlock, progressBarWidth-filled)) +
		s.Bold(fmt.Sprintf(" %4.1f%% ", 100*progress.Ratio)) +
		s.Dim(fmt.Sprintf("(%*d/%s)", len(total), progress.TransformedFileCount, total))

	return tag + s.Dim(filepath.Dir(localPath)+string(filepath.Separator)) + s.Bold(filepath.Base(localPath)) + " " + bar
}

// environmentTag returns the prefix identifying where a bundle runs. The
// first match wins: server functions, React Server Components, DOM
// components, then the platform itself.
func environmentTag(details *BundleDetails, s output.Styles) string {
	switch details.transformOption("environment") {
	case "node":
		return s.Bold("λ") + " "
	case "react-server":
		return s.Bold("RSC("+platformName(details.Platform)+")") + " "
	}
	if details.transformOption("dom") != "" {
		return s.Bold("DOM") + " "
	}
	if details.Platform == "" {
		return ""
	}
	return s.Bold(platformName(details.Platform)) + " "
}

func platformName(platform string) string {
	if name, ok := platformNames[platform]; ok {
		return name
	}
	return platform
}

// displayPath is the entry path shown to the user. DOM components are built
// from a generated entry, so their import path is shown instead.
func (r *Reporter) displayPath(details *BundleDetails) string {
	if dom := details.transformOption("dom"); strings.ContainsAny(dom, `/\`) {
		return leadingRelativeSegments.ReplaceAllString(dom, "")
	}
	return relativePath(r.projectRoot, details.EntryFile)
}

// formatElapsed renders whole milliseconds, or tenths of a millisecond when
// the duration would otherwise round to 0ms.
func formatElapsed(d time.Duration, s output.Styles) string {
	ms := float64(d) / float64(time.Millisecond)
	if ms <= 0.5 {
		micro := float64(d) / float64(time.Microsecond)
		return s.FastTime(fmt.Sprintf("0.%dms", int(math.Round(micro/100))))
	}
	return s.Dim(fmt.Sprintf("%dms", int64(math.Round(ms))))
}

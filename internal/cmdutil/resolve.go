package cmdutil

import (
	"fmt"
	"os"

	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/output"
)

// ResolveFlag returns flagValue if non-empty, otherwise falls back to the environment variable.
func ResolveFlag(flagValue, envKey string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(envKey)
}

var platformOptions = []output.SelectOption{
	{Label: "iOS", Value: string(bundler.PlatformIOS)},
	{Label: "Android", Value: string(bundler.PlatformAndroid)},
	{Label: "Web", Value: string(bundler.PlatformWeb)},
}

// ResolvePlatformInteractive resolves the platform using the priority:
// 1. --platform flag
// 2. METRO_PLATFORM environment variable
// 3. Interactive terminal selector
// 4. Non-interactive error with flag hint
func ResolvePlatformInteractive(flagValue string, out *output.Writer) (bundler.Platform, error) {
	if value := ResolveFlag(flagValue, "METRO_PLATFORM"); value != "" {
		return bundler.Platform(value), nil
	}

	if !out.IsInteractive() {
		return "", fmt.Errorf("--platform is required: set --platform to ios, android or web")
	}

	value, err := out.Select("Select platform", platformOptions)
	if err != nil {
		return "", err
	}
	return bundler.Platform(value), nil
}

package cmdutil

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/output"
)

func TestResolveFlag(t *testing.T) {
	tests := []struct {
		name      string
		flagValue string
		envKey    string
		envValue  string
		want      string
	}{
		{
			name:      "flag value takes priority",
			flagValue: "from-flag",
			envKey:    "TEST_RESOLVE_FLAG",
			envValue:  "from-env",
			want:      "from-flag",
		},
		{
			name:      "falls back to env var",
			flagValue: "",
			envKey:    "TEST_RESOLVE_FLAG",
			envValue:  "from-env",
			want:      "from-env",
		},
		{
			name:      "returns empty when both empty",
			flagValue: "",
			envKey:    "TEST_RESOLVE_FLAG_EMPTY",
			envValue:  "",
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv(tt.envKey, tt.envValue)
			}
			assert.Equal(t, tt.want, ResolveFlag(tt.flagValue, tt.envKey))
		})
	}
}

func TestResolvePlatformInteractive(t *testing.T) {
	out := output.NewTest(io.Discard)

	t.Run("returns value when provided", func(t *testing.T) {
		got, err := ResolvePlatformInteractive("ios", out)
		require.NoError(t, err)
		assert.Equal(t, bundler.PlatformIOS, got)
	})

	t.Run("falls back to env var", func(t *testing.T) {
		t.Setenv("METRO_PLATFORM", "web")
		got, err := ResolvePlatformInteractive("", out)
		require.NoError(t, err)
		assert.Equal(t, bundler.PlatformWeb, got)
	})

	t.Run("returns error in non-interactive mode", func(t *testing.T) {
		t.Setenv("METRO_PLATFORM", "")
		_, err := ResolvePlatformInteractive("", out)
		require.Error(t, err)
		assert.ErrorContains(t, err, "--platform")
	})
}

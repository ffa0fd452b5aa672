package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// unsetAfter removes variables that LoadEnv may have set.
func unsetAfter(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		require.NoError(t, os.Unsetenv(key))
	}
	t.Cleanup(func() {
		for _, key := range keys {
			os.Unsetenv(key)
		}
	})
}

func TestProjectDir(t *testing.T) {
	t.Run("uses the given directory", func(t *testing.T) {
		dir := t.TempDir()
		got, err := ProjectDir(dir)
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("defaults to the working directory", func(t *testing.T) {
		dir := t.TempDir()
		configDirFunc = func() (string, error) { return dir, nil }
		t.Cleanup(func() { configDirFunc = defaultConfigDir })

		got, err := ProjectDir("")
		require.NoError(t, err)
		assert.Equal(t, dir, got)
	})

	t.Run("returns error when directory resolution fails", func(t *testing.T) {
		configDirFunc = func() (string, error) { return "", os.ErrNotExist }
		t.Cleanup(func() { configDirFunc = defaultConfigDir })

		_, err := ProjectDir("")
		require.Error(t, err)
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("earlier files win", func(t *testing.T) {
		unsetAfter(t, "METRO_TEST_A", "METRO_TEST_B", "METRO_TEST_C")
		dir := t.TempDir()
		writeFile(t, dir, ".env", "METRO_TEST_A=env\nMETRO_TEST_B=env\nMETRO_TEST_C=env\n")
		writeFile(t, dir, ".env.development", "METRO_TEST_A=mode\nMETRO_TEST_B=mode\n")
		writeFile(t, dir, ".env.local", "METRO_TEST_A=local\n")

		loaded, err := LoadEnv(dir, "development")
		require.NoError(t, err)

		assert.Equal(t, []string{".env.local", ".env.development", ".env"}, loaded)
		assert.Equal(t, "local", os.Getenv("METRO_TEST_A"))
		assert.Equal(t, "mode", os.Getenv("METRO_TEST_B"))
		assert.Equal(t, "env", os.Getenv("METRO_TEST_C"))
	})

	t.Run("process environment wins", func(t *testing.T) {
		t.Setenv("METRO_TEST_SET", "process")
		dir := t.TempDir()
		writeFile(t, dir, ".env", "METRO_TEST_SET=file\n")

		_, err := LoadEnv(dir, "development")
		require.NoError(t, err)
		assert.Equal(t, "process", os.Getenv("METRO_TEST_SET"))
	})

	t.Run("test mode skips .env.local", func(t *testing.T) {
		unsetAfter(t, "METRO_TEST_D")
		dir := t.TempDir()
		writeFile(t, dir, ".env.local", "METRO_TEST_D=local\n")
		writeFile(t, dir, ".env.test.local", "")

		loaded, err := LoadEnv(dir, "test")
		require.NoError(t, err)
		assert.Equal(t, []string{".env.test.local"}, loaded)
		assert.Empty(t, os.Getenv("METRO_TEST_D"))
	})

	t.Run("empty mode loads development files", func(t *testing.T) {
		unsetAfter(t, "METRO_TEST_E")
		dir := t.TempDir()
		writeFile(t, dir, ".env.development", "METRO_TEST_E=dev\n")

		loaded, err := LoadEnv(dir, "")
		require.NoError(t, err)
		assert.Equal(t, []string{".env.development"}, loaded)
		assert.Equal(t, "dev", os.Getenv("METRO_TEST_E"))
	})

	t.Run("no env files", func(t *testing.T) {
		loaded, err := LoadEnv(t.TempDir(), "production")
		require.NoError(t, err)
		assert.Empty(t, loaded)
	})
}

func TestEnvFiles(t *testing.T) {
	assert.Equal(t, []string{".env.development.local", ".env.local", ".env.development", ".env"}, envFiles(""))
	assert.Equal(t, []string{".env.production.local", ".env.local", ".env.production", ".env"}, envFiles("production"))
	assert.Equal(t, []string{".env.test.local", ".env.test", ".env"}, envFiles("test"))
}

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name       string
		env        map[string]string
		want       Settings
		wantOrigin string
		wantErr    bool
	}{
		{
			name:       "defaults",
			want:       Settings{Port: DefaultPort},
			wantOrigin: "http://localhost:8081",
		},
		{
			name: "all variables",
			env: map[string]string{
				"EXPO_UNSTABLE_LIVE_BINDINGS": "0",
				"EXPO_DEBUG":                  "true",
				"RCT_METRO_PORT":              "9090",
			},
			want:       Settings{LiveBindings: "0", Debug: true, Port: 9090},
			wantOrigin: "http://localhost:9090",
		},
		{
			name:       "proxy url replaces the origin",
			env:        map[string]string{"EXPO_PACKAGER_PROXY_URL": "https://tunnel.example.com/"},
			want:       Settings{ProxyURL: "https://tunnel.example.com/", Port: DefaultPort},
			wantOrigin: "https://tunnel.example.com",
		},
		{
			name:    "invalid port",
			env:     map[string]string{"RCT_METRO_PORT": "-1"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"EXPO_UNSTABLE_LIVE_BINDINGS", "EXPO_DEBUG", "EXPO_PACKAGER_PROXY_URL", "RCT_METRO_PORT"} {
				t.Setenv(key, tt.env[key])
			}

			got, err := LoadSettings()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
			assert.Equal(t, tt.wantOrigin, got.ServerOrigin())
		})
	}
}

package bundle

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitrise-io/metro-cli/cmd"
	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/output"
)

func TestMain(m *testing.M) {
	cmd.Out = output.NewTest(io.Discard)
	os.Exit(m.Run())
}

// newTestCommand registers fresh request flags, which also resets the flag
// variables to their defaults, and parses args.
func newTestCommand(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	c := &cobra.Command{Use: "test"}
	registerRequestFlagsOn(c)
	c.Flags().BoolVar(&urlFull, "full", false, "")
	require.NoError(t, c.Flags().Parse(args))
	return c
}

// setupProject writes files into a temp project and points --project-dir at it.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	prevDir, prevJSON := cmd.ProjectDir, cmd.JSONOutput
	cmd.ProjectDir = dir
	t.Cleanup(func() {
		cmd.ProjectDir, cmd.JSONOutput = prevDir, prevJSON
	})

	for _, key := range []string{
		"METRO_PLATFORM", "RCT_METRO_PORT", "EXPO_PACKAGER_PROXY_URL",
		"EXPO_UNSTABLE_LIVE_BINDINGS", "BITRISE_BUILD_NUMBER", "BITRISE_DEPLOY_DIR",
	} {
		t.Setenv(key, "")
	}
	return dir
}

var reactNativeProject = map[string]string{
	"package.json": `{"dependencies": {"react-native": "0.72.0"}}`,
	"index.js":     "",
}

var expoProject = map[string]string{
	"package.json": `{"main": "expo-router/entry", "dependencies": {"expo": "~51.0.0"}}`,
	"app.json":     `{"expo": {"name": "docs", "jsEngine": "hermes", "experiments": {"baseUrl": "/docs/"}}}`,
}

func TestRunURL(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		args    []string
		want    string
		wantErr string
	}{
		{
			name:  "react native jsc",
			files: reactNativeProject,
			args:  []string{"--platform", "ios", "--engine", "jsc"},
			want:  "/index.bundle?platform=ios&dev=true&hot=false\n",
		},
		{
			name:  "react native hermes auto-detected",
			files: reactNativeProject,
			args:  []string{"--platform", "android", "--mode", "production", "--minify"},
			want:  "/index.bundle?platform=android&dev=false&hot=false&minify=true&transform.engine=hermes&unstable_transformProfile=hermes-stable\n",
		},
		{
			name:  "expo project with app config",
			files: expoProject,
			args:  []string{"--platform", "android", "--maps", "--full"},
			want: "http://localhost:8081/docs/node_modules/expo-router/entry.bundle?platform=android&dev=true&hot=false&serializer.map=true&transform.engine=hermes&unstable_transformProfile=hermes-stable\n" +
				"http://localhost:8081/docs/node_modules/expo-router/entry.map?platform=android&dev=true&hot=false&serializer.map=true&transform.engine=hermes&unstable_transformProfile=hermes-stable\n",
		},
		{
			name:  "base url flag overrides app config",
			files: expoProject,
			args:  []string{"--platform", "web", "--base-url", "https://cdn.example.com"},
			want:  "/node_modules/expo-router/entry.bundle?platform=web&dev=true&hot=false&transform.baseUrl=https%3A%2F%2Fcdn.example.com\n",
		},
		{
			name:  "explicit entry strips the js extension",
			files: reactNativeProject,
			args:  []string{"--platform", "ios", "--engine", "jsc", "--entry", "src/app.js", "--exporting", "--lazy"},
			want:  "/src/app.bundle?platform=ios&dev=true&hot=false&resolver.exporting=true\n",
		},
		{
			name:    "invalid mode",
			files:   reactNativeProject,
			args:    []string{"--platform", "ios", "--mode", "staging"},
			wantErr: "mode must be 'development' or 'production'",
		},
		{
			name:    "invalid engine",
			files:   reactNativeProject,
			args:    []string{"--platform", "ios", "--engine", "v8"},
			wantErr: "--engine",
		},
		{
			name:    "bytecode on web",
			files:   reactNativeProject,
			args:    []string{"--platform", "web", "--bytecode"},
			wantErr: "Cannot use bytecode with the web platform",
		},
		{
			name:    "missing platform in non-interactive mode",
			files:   reactNativeProject,
			wantErr: "--platform is required",
		},
		{
			name:    "undetectable project",
			files:   map[string]string{"package.json": `{"dependencies": {"express": "4.18.0"}}`},
			args:    []string{"--platform", "ios"},
			wantErr: "detecting project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupProject(t, tt.files)
			c := newTestCommand(t, tt.args...)

			var buf bytes.Buffer
			err := runURL(c, output.NewTest(io.Discard), &buf)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRunURLJSON(t *testing.T) {
	setupProject(t, reactNativeProject)
	cmd.JSONOutput = true
	t.Setenv("RCT_METRO_PORT", "19000")
	c := newTestCommand(t, "--platform", "ios", "--engine", "jsc", "--maps", "--full")

	var buf bytes.Buffer
	require.NoError(t, runURL(c, output.NewTest(io.Discard), &buf))

	var got urlResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "http://localhost:19000/index.bundle?platform=ios&dev=true&hot=false&serializer.map=true", got.BundleURL)
	assert.Equal(t, "http://localhost:19000/index.map?platform=ios&dev=true&hot=false&serializer.map=true", got.SourceMapURL)
}

func TestRunURLPlatformFromEnv(t *testing.T) {
	setupProject(t, reactNativeProject)
	t.Setenv("METRO_PLATFORM", "android")
	c := newTestCommand(t, "--engine", "jsc")

	var buf bytes.Buffer
	require.NoError(t, runURL(c, output.NewTest(io.Discard), &buf))
	assert.Equal(t, "/index.bundle?platform=android&dev=true&hot=false\n", buf.String())
}

func TestRunOptionsJSON(t *testing.T) {
	setupProject(t, expoProject)
	cmd.JSONOutput = true
	t.Setenv("EXPO_UNSTABLE_LIVE_BINDINGS", "0")
	c := newTestCommand(t, "--platform", "ios", "--maps", "--react-compiler")

	var buf bytes.Buffer
	require.NoError(t, runOptions(c, output.NewTest(io.Discard), &buf))

	var got bundler.DirectBundleOptions
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))

	assert.Equal(t, "node_modules/expo-router/entry", got.EntryFile)
	assert.Equal(t, bundler.PlatformIOS, got.Platform)
	assert.True(t, got.Dev)
	assert.False(t, got.Minify)
	assert.Equal(t, "hermes-stable", got.TransformProfile)
	assert.Equal(t, map[string]string{
		"baseUrl":       "/docs",
		"engine":        "hermes",
		"reactCompiler": "true",
		"liveBindings":  "false",
	}, got.CustomTransformOptions)
	assert.Empty(t, got.CustomResolverOptions)
	assert.Equal(t, map[string]any{"includeSourceMaps": true}, got.SerializerOptions)
	assert.Contains(t, got.SourceURL, "http://localhost:8081/docs/node_modules/expo-router/entry.bundle?")
	assert.Contains(t, got.SourceMapURL, "http://localhost:8081/docs/node_modules/expo-router/entry.map?")
}

func TestRunOptionsTable(t *testing.T) {
	setupProject(t, reactNativeProject)
	c := newTestCommand(t, "--platform", "android", "--engine", "hermes", "--environment", "node")

	var tableBuf, stdout bytes.Buffer
	require.NoError(t, runOptions(c, output.NewTest(&tableBuf), &stdout))

	assert.Empty(t, stdout.String())
	table := tableBuf.String()
	assert.Contains(t, table, "OPTION")
	assert.Contains(t, table, "index.js")
	assert.Contains(t, table, "hermes-stable")
	assert.Contains(t, table, `{"engine":"hermes","environment":"node"}`)
	assert.Contains(t, table, `{"environment":"node"}`)
	assert.NotContains(t, table, "sourceUrl")
}

func TestRunOptionsExport(t *testing.T) {
	setupProject(t, reactNativeProject)
	deployDir := t.TempDir()
	t.Setenv("BITRISE_DEPLOY_DIR", deployDir)
	c := newTestCommand(t, "--platform", "ios", "--engine", "jsc", "--export")

	var stdout bytes.Buffer
	require.NoError(t, runOptions(c, output.NewTest(io.Discard), &stdout))

	data, err := os.ReadFile(filepath.Join(deployDir, "metro-bundle-options.json"))
	require.NoError(t, err)

	var got bundler.DirectBundleOptions
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "index.js", got.EntryFile)
	assert.Equal(t, "default", got.TransformProfile)
}

func TestURLModuleName(t *testing.T) {
	assert.Equal(t, "index", urlModuleName("index.js"))
	assert.Equal(t, "node_modules/expo-router/entry", urlModuleName("node_modules/expo-router/entry"))
	assert.Equal(t, "src/App.tsx", urlModuleName("src/App.tsx"))
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"url", "options"} {
		found, _, err := cmd.RootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, found.Name())
		assert.Equal(t, cmd.GroupBundle, found.GroupID)
	}
}

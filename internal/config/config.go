// Package config loads project settings from .env files, the environment and
// the Expo app config (app.json).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bitrise-io/metro-cli/internal/output"
)

// AppConfigFileName is the Expo app config file name.
const AppConfigFileName = "app.json"

// DefaultPort is the dev server port when RCT_METRO_PORT is not set.
const DefaultPort = 8081

// Settings are the environment-driven settings of the dev server tooling.
type Settings struct {
	// LiveBindings is the raw EXPO_UNSTABLE_LIVE_BINDINGS value.
	LiveBindings string `mapstructure:"live_bindings"`

	// Debug enables debugger connection notices (EXPO_DEBUG).
	Debug bool `mapstructure:"debug"`

	// ProxyURL replaces the dev server origin (EXPO_PACKAGER_PROXY_URL).
	ProxyURL string `mapstructure:"proxy_url"`

	// Port is the dev server port (RCT_METRO_PORT).
	Port int `mapstructure:"port"`
}

// ServerOrigin is the origin used for source URLs and dev server requests.
func (s *Settings) ServerOrigin() string {
	if s.ProxyURL != "" {
		return strings.TrimRight(s.ProxyURL, "/")
	}
	return "http://localhost:" + strconv.Itoa(s.Port)
}

// configDirFunc allows tests to override the default project directory.
var configDirFunc = defaultConfigDir

func defaultConfigDir() (string, error) {
	return os.Getwd()
}

// ProjectDir resolves the project directory: dir when given, the working
// directory otherwise.
func ProjectDir(dir string) (string, error) {
	if dir == "" {
		var err error
		dir, err = configDirFunc()
		if err != nil {
			return "", fmt.Errorf("determining working directory: %w", err)
		}
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving project directory %s: %w", dir, err)
	}
	return abs, nil
}

// envFiles lists the .env files for mode from highest to lowest precedence.
// .env.local is skipped in test mode so tests are reproducible. An empty mode
// means development.
func envFiles(mode string) []string {
	if mode == "" {
		mode = "development"
	}
	files := []string{".env." + mode + ".local"}
	if mode != "test" {
		files = append(files, ".env.local")
	}
	return append(files, ".env."+mode, ".env")
}

// LoadEnv loads the .env files of projectDir into the process environment.
// Variables that are already set are never overridden, and files loaded first
// win over later ones. It returns the files that were loaded.
func LoadEnv(projectDir, mode string) ([]string, error) {
	var loaded []string
	for _, name := range envFiles(mode) {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return loaded, fmt.Errorf("checking %s: %w", name, err)
		}

		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("loading %s: %w", name, err)
		}
		output.Debug("loaded env file", "file", name)
		loaded = append(loaded, name)
	}
	return loaded, nil
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (*Settings, error) {
	v := viper.New()
	v.SetDefault("port", DefaultPort)

	_ = v.BindEnv("live_bindings", "EXPO_UNSTABLE_LIVE_BINDINGS")
	_ = v.BindEnv("debug", "EXPO_DEBUG")
	_ = v.BindEnv("proxy_url", "EXPO_PACKAGER_PROXY_URL")
	_ = v.BindEnv("port", "RCT_METRO_PORT")

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("reading settings from environment: %w", err)
	}
	if s.Port <= 0 {
		return nil, fmt.Errorf("RCT_METRO_PORT must be a positive port number, got %d", s.Port)
	}
	return &s, nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ExpoConfig holds the app.json fields that affect bundling.
type ExpoConfig struct {
	Name          string
	JSEngine      string
	BaseURL       string
	ReactCompiler bool

	platformEngines map[string]string
}

// JSEngineFor returns the JavaScript engine configured for platform. A
// platform-specific jsEngine wins over the top-level one.
func (c *ExpoConfig) JSEngineFor(platform string) string {
	if c == nil {
		return ""
	}
	if engine := c.platformEngines[platform]; engine != "" {
		return engine
	}
	return c.JSEngine
}

// LoadExpoConfig reads app.json from projectDir. A missing file yields an
// empty config.
func LoadExpoConfig(projectDir string) (*ExpoConfig, error) {
	path := filepath.Join(projectDir, AppConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &ExpoConfig{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", AppConfigFileName, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", AppConfigFileName, err)
	}

	cfg := &ExpoConfig{
		Name:          v.GetString("expo.name"),
		JSEngine:      v.GetString("expo.jsEngine"),
		BaseURL:       strings.TrimRight(strings.TrimSpace(v.GetString("expo.experiments.baseUrl")), "/"),
		ReactCompiler: v.GetBool("expo.experiments.reactCompiler"),
		platformEngines: map[string]string{
			"ios":     v.GetString("expo.ios.jsEngine"),
			"android": v.GetString("expo.android.jsEngine"),
		},
	}
	return cfg, nil
}

package bundler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ProjectType represents the detected project type.
type ProjectType int

const (
	// ProjectTypeUnknown indicates the project type could not be detected.
	ProjectTypeUnknown ProjectType = iota
	// ProjectTypeReactNative indicates a bare React Native project.
	ProjectTypeReactNative
	// ProjectTypeExpo indicates an Expo project.
	ProjectTypeExpo
)

// String returns the display name of the project type.
func (p ProjectType) String() string {
	switch p {
	case ProjectTypeReactNative:
		return "react-native"
	case ProjectTypeExpo:
		return "expo"
	default:
		return "unknown"
	}
}

// EngineMode selects how the bundle engine is chosen.
type EngineMode string

const (
	// EngineModeAuto detects the engine from the project.
	EngineModeAuto EngineMode = "auto"
	// EngineModeHermes forces Hermes.
	EngineModeHermes EngineMode = "hermes"
	// EngineModeJSC forces the default engine.
	EngineModeJSC EngineMode = "jsc"
)

// ValidateEngineMode checks that the given engine mode string is valid.
func ValidateEngineMode(m EngineMode) error {
	if m != EngineModeAuto && m != EngineModeHermes && m != EngineModeJSC {
		return fmt.Errorf("--engine must be 'auto', 'hermes', or 'jsc', got %q", m)
	}
	return nil
}

// ProjectConfig holds the auto-detected project configuration.
type ProjectConfig struct {
	ProjectDir  string
	ProjectType ProjectType
	Platform    Platform
	EntryFile   string
	Engine      Engine
}

type packageJSON struct {
	Main            string            `json:"main"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (p *packageJSON) dependency(name string) (string, bool) {
	if v, ok := p.Dependencies[name]; ok {
		return v, true
	}
	v, ok := p.DevDependencies[name]
	return v, ok
}

func readPackageJSON(projectDir string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("no package.json found in %s: is this a React Native or Expo project?", projectDir)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return &pkg, nil
}

// DetectProject inspects projectDir and returns the entry module and engine a
// bundle request for platform should use. jsEngine is the Expo config
// "jsEngine" value ("hermes", "jsc" or empty) and takes precedence over native
// build files in auto mode.
func DetectProject(projectDir string, platform Platform, mode EngineMode, jsEngine string) (*ProjectConfig, error) {
	absDir, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("resolving project directory: %w", err)
	}
	if _, err := os.Stat(absDir); err != nil {
		return nil, fmt.Errorf("project directory does not exist: %w", err)
	}

	pkg, err := readPackageJSON(absDir)
	if err != nil {
		return nil, err
	}

	var projectType ProjectType
	// Expo projects also list react-native, so check expo first.
	if _, ok := pkg.dependency("expo"); ok {
		projectType = ProjectTypeExpo
	} else if _, ok := pkg.dependency("react-native"); ok {
		projectType = ProjectTypeReactNative
	} else {
		return nil, fmt.Errorf("could not detect project type: package.json does not list react-native or expo as a dependency")
	}

	entryFile, err := detectEntryFile(absDir, platform, pkg)
	if err != nil {
		return nil, err
	}

	var engine Engine
	switch mode {
	case EngineModeHermes:
		engine = EngineHermes
	case EngineModeJSC:
		engine = EngineDefault
	default:
		engine = detectEngine(absDir, platform, jsEngine, pkg)
	}

	return &ProjectConfig{
		ProjectDir:  absDir,
		ProjectType: projectType,
		Platform:    platform,
		EntryFile:   entryFile,
		Engine:      engine,
	}, nil
}

// detectEntryFile searches for the JS entry module.
// Priority: index.<platform>.js, index.js, then package.json "main". A bare
// package specifier in "main" (e.g. "expo-router/entry") resolves into node_modules.
func detectEntryFile(projectDir string, platform Platform, pkg *packageJSON) (string, error) {
	platformSpecific := fmt.Sprintf("index.%s.js", platform)
	for _, candidate := range []string{platformSpecific, "index.js"} {
		if _, err := os.Stat(filepath.Join(projectDir, candidate)); err == nil {
			return candidate, nil
		}
	}

	if main := pkg.Main; main != "" {
		if _, err := os.Stat(filepath.Join(projectDir, main)); err == nil {
			return filepath.ToSlash(filepath.Clean(main)), nil
		}
		if isBareSpecifier(main) {
			return filepath.ToSlash(filepath.Join("node_modules", main)), nil
		}
	}

	return "", fmt.Errorf("entry file not found: tried %s and index.js in %s", platformSpecific, projectDir)
}

func isBareSpecifier(spec string) bool {
	if strings.HasPrefix(spec, ".") || filepath.IsAbs(spec) {
		return false
	}
	return filepath.Ext(spec) == ""
}

type engineSetting int

const (
	engineUnset engineSetting = iota
	engineOn
	engineOff
)

// nativeEngineSources lists the build files that can pin Hermes on or off,
// per platform, with the substrings that enable or disable it.
var nativeEngineSources = map[Platform][]struct {
	path    []string
	enable  []string
	disable []string
}{
	PlatformAndroid: {
		{
			path:    []string{"android", "gradle.properties"},
			enable:  []string{"hermesEnabled=true"},
			disable: []string{"hermesEnabled=false"},
		},
		{
			path:    []string{"android", "app", "build.gradle"},
			enable:  []string{"hermesEnabled = true", "hermesEnabled.set(true)", "enableHermes: true", "enableHermes = true"},
			disable: []string{"hermesEnabled = false", "hermesEnabled.set(false)", "enableHermes: false", "enableHermes = false"},
		},
		{
			path:    []string{"android", "app", "build.gradle.kts"},
			enable:  []string{"hermesEnabled = true", "hermesEnabled.set(true)"},
			disable: []string{"hermesEnabled = false", "hermesEnabled.set(false)"},
		},
	},
	PlatformIOS: {
		{
			path:    []string{"ios", "Podfile.properties.json"},
			enable:  []string{`"expo.jsEngine": "hermes"`},
			disable: []string{`"expo.jsEngine": "jsc"`},
		},
		{
			path:    []string{"ios", "Podfile"},
			enable:  []string{":hermes_enabled => true", "hermes_enabled: true"},
			disable: []string{":hermes_enabled => false", "hermes_enabled: false"},
		},
	},
}

// detectEngine picks Hermes or the default engine for platform. Web never uses
// Hermes. Otherwise the Expo config wins, then native build files, then the
// React Native version (Hermes is the default from 0.70).
func detectEngine(projectDir string, platform Platform, jsEngine string, pkg *packageJSON) Engine {
	if platform == PlatformWeb {
		return EngineDefault
	}

	switch strings.ToLower(strings.TrimSpace(jsEngine)) {
	case "hermes":
		return EngineHermes
	case "jsc":
		return EngineDefault
	}

	switch scanNativeEngine(projectDir, platform) {
	case engineOn:
		return EngineHermes
	case engineOff:
		return EngineDefault
	}

	if _, ok := pkg.dependency("expo"); ok {
		return EngineHermes
	}
	if v, ok := pkg.dependency("react-native"); ok && reactNativeMinor(v) >= 70 {
		return EngineHermes
	}
	return EngineDefault
}

func scanNativeEngine(projectDir string, platform Platform) engineSetting {
	for _, src := range nativeEngineSources[platform] {
		data, err := os.ReadFile(filepath.Join(append([]string{projectDir}, src.path...)...))
		if err != nil {
			continue
		}
		content := string(data)
		for _, p := range src.enable {
			if strings.Contains(content, p) {
				return engineOn
			}
		}
		for _, p := range src.disable {
			if strings.Contains(content, p) {
				return engineOff
			}
		}
	}
	return engineUnset
}

// reactNativeMinor returns the effective version of a React Native semver
// range: the minor for 0.x releases, 100 for anything >= 1.0, 0 if unparsable.
func reactNativeMinor(version string) int {
	v := strings.TrimLeft(version, "^~>=<! v")
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return 0
	}

	var major, minor int
	if _, err := fmt.Sscanf(parts[0], "%d", &major); err != nil {
		return 0
	}
	if _, err := fmt.Sscanf(parts[1], "%d", &minor); err != nil {
		return 0
	}
	if major > 0 {
		return 100
	}
	return minor
}

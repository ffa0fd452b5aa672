package bundle

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bitrise-io/metro-cli/cmd"
	"github.com/bitrise-io/metro-cli/internal/bundler"
	"github.com/bitrise-io/metro-cli/internal/cmdutil"
	"github.com/bitrise-io/metro-cli/internal/config"
	"github.com/bitrise-io/metro-cli/internal/output"
)

// Shared request flags: used by both "url" and "options".
var (
	reqPlatform      string
	reqEntry         string
	reqMode          string
	reqBaseURL       string
	reqExporting     bool
	reqLazy          bool
	reqMaps          bool
	reqEngine        string
	reqBytecode      bool
	reqReactCompiler bool
	reqMinify        bool
	reqEnvironment   string
	reqExport        bool
)

func init() {
	cmd.RootCmd.AddGroup(&cobra.Group{ID: cmd.GroupBundle, Title: "Bundle Requests:"})
}

// registerRequestFlagsOn registers the bundle request flags on a command.
func registerRequestFlagsOn(c *cobra.Command) {
	c.Flags().StringVar(&reqPlatform, "platform", "", "target platform: ios, android or web (env: METRO_PLATFORM)")
	c.Flags().StringVar(&reqEntry, "entry", "", "entry module relative to the project (auto-detected if not set)")
	c.Flags().StringVar(&reqMode, "mode", string(bundler.ModeDevelopment), "bundling mode: development or production")
	c.Flags().StringVar(&reqBaseURL, "base-url", "", "base URL or path the app is served from (defaults to expo.experiments.baseUrl)")
	c.Flags().BoolVar(&reqExporting, "exporting", false, "resolve the request as part of a static export")
	c.Flags().BoolVar(&reqLazy, "lazy", false, "enable lazy bundling of async imports")
	c.Flags().BoolVar(&reqMaps, "maps", false, "request source maps")
	c.Flags().StringVar(&reqEngine, "engine", string(bundler.EngineModeAuto), "JS engine: auto, hermes, or jsc")
	c.Flags().BoolVar(&reqBytecode, "bytecode", false, "emit Hermes bytecode")
	c.Flags().BoolVar(&reqReactCompiler, "react-compiler", false, "enable the React Compiler (defaults to expo.experiments.reactCompiler)")
	c.Flags().BoolVar(&reqMinify, "minify", false, "minify the bundle")
	c.Flags().StringVar(&reqEnvironment, "environment", "", "bundle environment: client, node or react-server")
	c.Flags().BoolVar(&reqExport, "export", false, "export results to Bitrise (env vars and deploy dir)")
}

// resolvedRequest is a bundle request together with the settings it was
// resolved against.
type resolvedRequest struct {
	Request    bundler.BundleRequest
	Resolver   bundler.ResolverConfig
	ProjectDir string
}

// resolveRequest builds a bundle request from flags, .env files, the
// environment and app.json. Flags win over app.json.
func resolveRequest(c *cobra.Command, out *output.Writer) (*resolvedRequest, error) {
	platform, err := cmdutil.ResolvePlatformInteractive(reqPlatform, out)
	if err != nil {
		return nil, err
	}
	mode := bundler.Mode(reqMode)
	if err := bundler.ValidateMode(mode); err != nil {
		return nil, err
	}
	engineMode := bundler.EngineMode(reqEngine)
	if err := bundler.ValidateEngineMode(engineMode); err != nil {
		return nil, err
	}

	projectDir, err := config.ProjectDir(cmd.ProjectDir)
	if err != nil {
		return nil, err
	}
	if _, err := config.LoadEnv(projectDir, string(mode)); err != nil {
		out.Warning("could not load .env files: %v", err)
	}
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	expo, err := config.LoadExpoConfig(projectDir)
	if err != nil {
		return nil, err
	}

	entry, engine, err := resolveEntryAndEngine(projectDir, platform, engineMode, expo.JSEngineFor(string(platform)))
	if err != nil {
		return nil, err
	}

	req := bundler.BundleRequest{
		MainModuleName:        entry,
		Mode:                  mode,
		Platform:              platform,
		BaseURL:               expo.BaseURL,
		IsExporting:           reqExporting,
		Bytecode:              reqBytecode,
		ReactCompiler:         expo.ReactCompiler,
		SerializerIncludeMaps: reqMaps,
		Engine:                engine,
		Environment:           bundler.Environment(reqEnvironment),
	}
	flags := c.Flags()
	if flags.Changed("base-url") {
		req.BaseURL = reqBaseURL
	}
	if flags.Changed("react-compiler") {
		req.ReactCompiler = reqReactCompiler
	}
	if flags.Changed("lazy") {
		req.Lazy = &reqLazy
	}
	if flags.Changed("minify") {
		req.Minify = &reqMinify
	}

	output.Debug("resolved bundle request", "entry", req.MainModuleName, "platform", req.Platform, "engine", req.Engine)

	return &resolvedRequest{
		Request: req,
		Resolver: bundler.ResolverConfig{
			ServerOrigin:         settings.ServerOrigin(),
			LiveBindingsOverride: settings.LiveBindings,
		},
		ProjectDir: projectDir,
	}, nil
}

// resolveEntryAndEngine uses --entry when given and detects the rest from
// the project. Detection failures only matter when the entry is unknown.
func resolveEntryAndEngine(projectDir string, platform bundler.Platform, mode bundler.EngineMode, jsEngine string) (string, bundler.Engine, error) {
	project, err := bundler.DetectProject(projectDir, platform, mode, jsEngine)
	if err != nil {
		if reqEntry == "" {
			return "", "", fmt.Errorf("detecting project: %w", err)
		}
		output.Debug("project detection failed, using --entry", "err", err)
		engine := bundler.EngineDefault
		if mode == bundler.EngineModeHermes {
			engine = bundler.EngineHermes
		}
		return reqEntry, engine, nil
	}

	if reqEntry != "" {
		return reqEntry, project.Engine, nil
	}
	return project.EntryFile, project.Engine, nil
}

// urlModuleName is the module name used in bundle URLs: the entry path
// without its .js extension.
func urlModuleName(entry string) string {
	return strings.TrimSuffix(entry, ".js")
}

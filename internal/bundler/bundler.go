// Package bundler resolves Metro bundle requests into the options object consumed
// by the bundler and the canonical bundle URL that identifies the same request.
package bundler

import (
	"errors"
	"fmt"
)

// DefaultServerOrigin is the dev server origin used to build source URLs.
const DefaultServerOrigin = "http://localhost:8081"

// Platform is the target platform of a bundle (e.g. "ios", "android", "web").
// Unknown platforms are passed through as-is.
type Platform string

const (
	// PlatformIOS targets iOS devices.
	PlatformIOS Platform = "ios"
	// PlatformAndroid targets Android devices.
	PlatformAndroid Platform = "android"
	// PlatformWeb targets browsers.
	PlatformWeb Platform = "web"
)

// Mode selects development or production bundling.
type Mode string

const (
	// ModeDevelopment produces a dev bundle.
	ModeDevelopment Mode = "development"
	// ModeProduction produces a production bundle.
	ModeProduction Mode = "production"
)

// Engine names the JS engine the bundle targets. The empty value means the
// default engine (no engine-specific transforms).
type Engine string

const (
	// EngineDefault applies no engine-specific transforms.
	EngineDefault Engine = ""
	// EngineHermes enables the hermes-stable transform profile and allows bytecode.
	EngineHermes Engine = "hermes"
)

// Environment is the runtime the bundle is built for.
type Environment string

const (
	// EnvironmentClient is the regular client runtime. It is normalized to the
	// empty value because the bundler treats both the same.
	EnvironmentClient Environment = "client"
	// EnvironmentNode is a server (API route) bundle.
	EnvironmentNode Environment = "node"
	// EnvironmentReactServer is a React Server Components bundle.
	EnvironmentReactServer Environment = "react-server"
)

// Transform profiles understood by Metro.
const (
	transformProfileDefault = "default"
	transformProfileHermes  = "hermes-stable"
)

// BundleRequest is the high-level description of a bundle.
type BundleRequest struct {
	MainModuleName        string
	Mode                  Mode
	Platform              Platform
	BaseURL               string
	IsExporting           bool
	Lazy                  *bool
	Bytecode              bool
	ReactCompiler         bool
	SerializerIncludeMaps bool

	// Engine must be EngineHermes for Bytecode to be accepted.
	Engine          Engine
	Minify          *bool
	InlineSourceMap bool
	Environment     Environment

	CustomTransformOptions map[string]string
	CustomResolverOptions  map[string]string
}

// ResolverConfig carries settings that would otherwise be read from the process
// environment, so resolution stays a pure function of its inputs.
type ResolverConfig struct {
	// ServerOrigin prefixes sourceUrl and sourceMapUrl. Defaults to DefaultServerOrigin.
	ServerOrigin string
	// LiveBindingsOverride is the raw EXPO_UNSTABLE_LIVE_BINDINGS value. Only "0"
	// has an effect: it sets customTransformOptions.liveBindings to "false".
	LiveBindingsOverride string
}

// DirectBundleOptions is the options object consumed by the bundler. The JSON
// field names are part of the bundler contract.
type DirectBundleOptions struct {
	EntryFile              string            `json:"entryFile"`
	Platform               Platform          `json:"platform"`
	Dev                    bool              `json:"dev"`
	Minify                 bool              `json:"minify"`
	InlineSourceMap        bool              `json:"inlineSourceMap"`
	TransformProfile       string            `json:"unstable_transformProfile"`
	CustomTransformOptions map[string]string `json:"customTransformOptions"`
	CustomResolverOptions  map[string]string `json:"customResolverOptions"`
	SerializerOptions      map[string]any    `json:"serializerOptions"`
	SourceURL              string            `json:"sourceUrl,omitempty"`
	SourceMapURL           string            `json:"sourceMapUrl,omitempty"`
}

// ErrInvalidOptions is matched by every InvalidOptionsError via errors.Is.
var ErrInvalidOptions = errors.New("invalid bundle options")

// InvalidOptionsError reports a bundle request that cannot be resolved.
type InvalidOptionsError struct {
	Message string
}

func (e *InvalidOptionsError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidOptions.
func (e *InvalidOptionsError) Is(target error) bool {
	return target == ErrInvalidOptions
}

func invalidf(format string, args ...interface{}) error {
	return &InvalidOptionsError{Message: fmt.Sprintf(format, args...)}
}

// ValidatePlatform checks that the given platform string is non-empty.
func ValidatePlatform(p Platform) error {
	if p == "" {
		return invalidf("platform is required")
	}
	return nil
}

// ValidateMode checks that the mode is empty (development) or a known mode.
func ValidateMode(m Mode) error {
	if m != "" && m != ModeDevelopment && m != ModeProduction {
		return invalidf("mode must be 'development' or 'production', got %q", m)
	}
	return nil
}

// validate applies the construction-time checks shared by every resolver operation.
func validate(req *BundleRequest) error {
	if req.MainModuleName == "" {
		return invalidf("main module name is required")
	}
	if err := ValidatePlatform(req.Platform); err != nil {
		return err
	}
	if err := ValidateMode(req.Mode); err != nil {
		return err
	}
	switch req.Environment {
	case "", EnvironmentClient, EnvironmentNode, EnvironmentReactServer:
	default:
		return invalidf("unknown environment %q", req.Environment)
	}
	if req.Bytecode {
		if req.Platform == PlatformWeb {
			return invalidf("Cannot use bytecode with the web platform")
		}
		if req.Engine != EngineHermes {
			return invalidf("Bytecode is only supported with the Hermes engine")
		}
	}
	return nil
}

func (r *BundleRequest) isDev() bool {
	return r.Mode != ModeProduction
}

func (r *BundleRequest) environment() Environment {
	if r.Environment == EnvironmentClient {
		return ""
	}
	return r.Environment
}

func (r *BundleRequest) transformProfile() string {
	if r.Engine == EngineHermes {
		return transformProfileHermes
	}
	return transformProfileDefault
}

package bundler

import (
	"strings"
)

// GetDirectBundleOptions resolves req into the options object consumed by the
// bundler. The request is never mutated.
//
// Fields are applied in a fixed order, later steps winning over earlier ones:
//  1. defaults (minify false, inlineSourceMap false, default transform profile)
//  2. mode-derived dev flag and explicit minify override
//  3. engine-derived transform profile
//  4. customTransformOptions: caller map, then baseUrl, engine, bytecode,
//     reactCompiler, environment, liveBindings
//  5. customResolverOptions: caller map, then environment, exporting
//  6. serializerOptions
//  7. sourceUrl / sourceMapUrl when source maps are requested
func GetDirectBundleOptions(req BundleRequest, cfg ResolverConfig) (*DirectBundleOptions, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}

	opts := &DirectBundleOptions{
		EntryFile:              req.MainModuleName,
		Platform:               req.Platform,
		TransformProfile:       transformProfileDefault,
		CustomTransformOptions: map[string]string{},
		CustomResolverOptions:  map[string]string{},
		SerializerOptions:      map[string]any{},
	}

	opts.Dev = req.isDev()
	if req.Minify != nil {
		opts.Minify = *req.Minify
	}
	opts.InlineSourceMap = req.InlineSourceMap
	opts.TransformProfile = req.transformProfile()

	applyTransformOptions(opts.CustomTransformOptions, &req, cfg)
	applyResolverOptions(opts.CustomResolverOptions, &req)

	if req.SerializerIncludeMaps {
		opts.SerializerOptions["includeSourceMaps"] = true
	}

	if req.SerializerIncludeMaps {
		sourceURL, sourceMapURL, err := sourceURLs(req, cfg.ServerOrigin)
		if err != nil {
			return nil, err
		}
		opts.SourceURL = sourceURL
		opts.SourceMapURL = sourceMapURL
	}

	return opts, nil
}

func applyTransformOptions(dst map[string]string, req *BundleRequest, cfg ResolverConfig) {
	for k, v := range req.CustomTransformOptions {
		dst[k] = v
	}
	if req.BaseURL != "" {
		dst["baseUrl"] = req.BaseURL
	}
	if req.Engine != EngineDefault {
		dst["engine"] = string(req.Engine)
	}
	if req.Bytecode {
		dst["bytecode"] = "1"
	}
	if req.ReactCompiler {
		dst["reactCompiler"] = "true"
	}
	if env := req.environment(); env != "" {
		dst["environment"] = string(env)
	}
	if liveBindingsDisabled(cfg.LiveBindingsOverride) {
		dst["liveBindings"] = "false"
	}
}

func applyResolverOptions(dst map[string]string, req *BundleRequest) {
	for k, v := range req.CustomResolverOptions {
		dst[k] = v
	}
	if env := req.environment(); env != "" {
		dst["environment"] = string(env)
	}
	if req.IsExporting {
		dst["exporting"] = "true"
	}
}

// liveBindingsDisabled reports whether the live bindings override turns the
// feature off. Only the literal "0" does; "false", "true" and unset are ignored.
func liveBindingsDisabled(override string) bool {
	return override == "0"
}

// sourceURLs builds the fake source and source map URLs the serializer embeds
// in the bundle. Both come from the same request with source maps forced on.
func sourceURLs(req BundleRequest, origin string) (string, string, error) {
	if origin == "" {
		origin = DefaultServerOrigin
	}
	origin = strings.TrimRight(origin, "/")

	req.SerializerIncludeMaps = true

	bundlePath, err := createBundleURLPath(&req, extBundle)
	if err != nil {
		return "", "", err
	}
	mapPath, err := createBundleURLPath(&req, extMap)
	if err != nil {
		return "", "", err
	}

	return origin + bundlePath, origin + mapPath, nil
}

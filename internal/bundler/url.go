package bundler

import (
	"net/url"
	"strings"
)

const (
	extBundle = "bundle"
	extMap    = "map"
)

// CreateBundleURLPath returns the canonical bundle URL path for req, for example
// "/index.bundle?platform=ios&dev=true&hot=false". The output is a pure function
// of req: identical requests produce byte-identical paths, which makes the path
// usable as a cache key.
func CreateBundleURLPath(req BundleRequest) (string, error) {
	if err := validate(&req); err != nil {
		return "", err
	}
	return createBundleURLPath(&req, extBundle)
}

// CreateSourceMapURLPath is CreateBundleURLPath with the ".map" extension.
func CreateSourceMapURLPath(req BundleRequest) (string, error) {
	if err := validate(&req); err != nil {
		return "", err
	}
	return createBundleURLPath(&req, extMap)
}

func createBundleURLPath(req *BundleRequest, ext string) (string, error) {
	prefix, absoluteBaseURL := splitBaseURL(req.BaseURL)

	module := strings.TrimLeft(req.MainModuleName, "/")
	escaped := (&url.URL{Path: module}).EscapedPath()

	q := &queryBuilder{}
	q.add("platform", string(req.Platform))
	q.add("dev", boolString(req.isDev()))
	q.add("hot", "false")

	if req.IsExporting {
		q.add("resolver.exporting", "true")
	}
	if absoluteBaseURL != "" {
		q.add("transform.baseUrl", absoluteBaseURL)
	}
	if req.SerializerIncludeMaps {
		q.add("serializer.map", "true")
	}

	if !req.IsExporting && req.Lazy != nil && *req.Lazy {
		q.add("lazy", "true")
	}
	if req.Minify != nil && *req.Minify {
		q.add("minify", "true")
	}
	if req.InlineSourceMap {
		q.add("inlineSourceMap", "true")
	}
	if req.Engine != EngineDefault {
		q.add("transform.engine", string(req.Engine))
	}
	if req.Engine == EngineHermes {
		q.add("unstable_transformProfile", transformProfileHermes)
	}
	if req.Bytecode {
		q.add("serializer.bytecode", "1")
	}
	if req.ReactCompiler {
		q.add("transform.reactCompiler", "true")
	}
	if env := req.environment(); env != "" {
		q.add("transform.environment", string(env))
		q.add("resolver.environment", string(env))
	}

	return prefix + "/" + escaped + "." + ext + "?" + q.String(), nil
}

// splitBaseURL separates a base URL into a path prefix and an absolute URL.
// URLs with a scheme travel in the query string; bare paths are folded into
// the bundle path with trailing slashes removed.
func splitBaseURL(baseURL string) (prefix, absolute string) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", ""
	}
	if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
		return "", baseURL
	}

	prefix = strings.TrimRight(baseURL, "/")
	if prefix == "" {
		return "", ""
	}
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	return (&url.URL{Path: prefix}).EscapedPath(), ""
}

// queryBuilder keeps parameters in insertion order. url.Values sorts keys on
// Encode, which would break the fixed parameter order.
type queryBuilder struct {
	parts []string
}

func (q *queryBuilder) add(key, value string) {
	q.parts = append(q.parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
}

func (q *queryBuilder) String() string {
	return strings.Join(q.parts, "&")
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

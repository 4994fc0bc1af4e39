package auth

import (
	"net/http"
	"strings"

	"product-api/internal/apperror"
)

const HeaderAPIKey = "x-api-key"

const (
	MessageKeyRequired = "API key is required. Please provide x-api-key in headers."
	MessageKeyInvalid  = "Invalid API key"
)

const productsPrefix = "/api/products/"

// DefaultKeys is the allow-list used when none is configured.
var DefaultKeys = []string{"secret-api-key-123", "test-key-456"}

// Route is an exact (method, path) pair exempt from key checks.
type Route struct {
	Method string
	Path   string
}

var defaultPublicRoutes = []Route{
	{Method: http.MethodGet, Path: "/"},
	{Method: http.MethodGet, Path: "/api/products"},
	{Method: http.MethodGet, Path: "/api/products/search"},
	{Method: http.MethodGet, Path: "/api/products/stats"},
}

// Gate decides per request whether an API key is needed and valid.
type Gate struct {
	keys   map[string]struct{}
	public []Route
}

// NewGate builds a gate over keys. Extra public routes are appended to
// the built-in bypass list.
func NewGate(keys []string, extraPublic ...Route) *Gate {
	if len(keys) == 0 {
		keys = DefaultKeys
	}
	g := &Gate{
		keys:   make(map[string]struct{}, len(keys)),
		public: append(append([]Route{}, defaultPublicRoutes...), extraPublic...),
	}
	for _, k := range keys {
		g.keys[k] = struct{}{}
	}
	return g
}

// IsPublic reports whether the request bypasses key checks. Besides the
// exact list, any GET of a single segment under /api/products/ passes.
func (g *Gate) IsPublic(method, path string) bool {
	for _, route := range g.public {
		if route.Method == method && route.Path == path {
			return true
		}
	}
	if method != http.MethodGet || !strings.HasPrefix(path, productsPrefix) {
		return false
	}
	return !strings.Contains(strings.TrimPrefix(path, productsPrefix), "/")
}

// Authorize returns nil to allow, or an Unauthorized error. Public routes
// never look at the key, even an invalid one.
func (g *Gate) Authorize(method, path, key string) error {
	if g.IsPublic(method, path) {
		return nil
	}
	if key == "" {
		return apperror.Unauthorized(MessageKeyRequired)
	}
	if _, ok := g.keys[key]; !ok {
		return apperror.Unauthorized(MessageKeyInvalid)
	}
	return nil
}

// Check adapts Authorize to an incoming request.
func (g *Gate) Check(r *http.Request) error {
	return g.Authorize(r.Method, r.URL.Path, r.Header.Get(HeaderAPIKey))
}

package http

import (
	"errors"
	"net/http"

	"product-api/internal/apperror"
	"product-api/internal/auth"
	middleware_http "product-api/internal/middleware/http"
	"product-api/internal/validation"
)

var errMissingInput = errors.New("validated product input missing from request context")

// Deps are the collaborators the router dispatches to. Metrics is
// optional; when set, MetricsPath is served publicly.
type Deps struct {
	Products    *ProductHandler
	Health      *HealthHandler
	Gate        *auth.Gate
	Metrics     *middleware_http.Metrics
	MetricsPath string
}

type route struct {
	pattern string
	gates   []Gate
	handle  HandlerFunc
}

// NewRouter wires the request pipeline:
//
//	trace/log -> metrics -> auth gate -> route match -> route gates -> handler
//
// Every failure on the way leaves through the error normalizer.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	routes := []route{
		{pattern: "GET /{$}", handle: d.Products.Welcome},
		{pattern: "GET /api/products", handle: d.Products.List},
		{pattern: "GET /api/products/{$}", handle: d.Products.List},
		{pattern: "GET /api/products/search", handle: d.Products.Search},
		{pattern: "GET /api/products/stats", handle: d.Products.Stats},
		{pattern: "GET /api/products/{id}", handle: d.Products.GetByID},
		{pattern: "POST /api/products", gates: []Gate{ValidateProductGate(validation.ModeCreate)}, handle: d.Products.Create},
		{pattern: "POST /api/products/{$}", gates: []Gate{ValidateProductGate(validation.ModeCreate)}, handle: d.Products.Create},
		{pattern: "PUT /api/products/{id}", gates: []Gate{ValidateProductGate(validation.ModeUpdate)}, handle: d.Products.Update},
		{pattern: "DELETE /api/products/{id}", handle: d.Products.Delete},
		{pattern: "/", handle: notFound},
	}
	if d.Health != nil {
		routes = append(routes, route{pattern: "GET /healthz", handle: d.Health.Check})
	}

	for _, rt := range routes {
		mux.Handle(rt.pattern, Pipeline(rt.gates, rt.handle))
	}
	if d.Metrics != nil && d.MetricsPath != "" {
		mux.Handle("GET "+d.MetricsPath, d.Metrics.Handler())
	}

	routeOf := func(r *http.Request) string {
		_, pattern := mux.Handler(r)
		if pattern == "/" {
			return ""
		}
		return pattern
	}

	gate := d.Gate
	if gate == nil {
		gate = auth.NewGate(nil)
	}

	var handler http.Handler = Pipeline([]Gate{AuthGate(gate)}, func(w http.ResponseWriter, r *http.Request) error {
		mux.ServeHTTP(w, r)
		return nil
	})
	if d.Metrics != nil {
		handler = d.Metrics.Middleware(routeOf)(handler)
	}
	return middleware_http.TraceMiddleware(routeOf)(handler)
}

// PublicRoutes lists the operational endpoints that bypass the API key,
// in addition to the product read routes.
func PublicRoutes(metricsPath string) []auth.Route {
	routes := []auth.Route{{Method: http.MethodGet, Path: "/healthz"}}
	if metricsPath != "" {
		routes = append(routes, auth.Route{Method: http.MethodGet, Path: metricsPath})
	}
	return routes
}

func notFound(w http.ResponseWriter, r *http.Request) error {
	return apperror.NotFound("Route")
}

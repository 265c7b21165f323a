// internal/gateway/proxy.go
package gateway

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Router forwards each request to the backend owning its path prefix.
// Routes and proxies are fixed at construction and read-only afterwards.
type Router struct {
	routes  []Route
	proxies map[string]*httputil.ReverseProxy
}

// NewRouter validates routes and builds one reverse proxy per route.
// transport may be nil to use http.DefaultTransport.
func NewRouter(routes []Route, transport http.RoundTripper) (*Router, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("gateway needs at least one route")
	}
	g := &Router{
		routes:  make([]Route, len(routes)),
		proxies: make(map[string]*httputil.ReverseProxy, len(routes)),
	}
	for i, rt := range routes {
		if err := rt.validate(); err != nil {
			return nil, err
		}
		if _, dup := g.proxies[rt.Prefix]; dup {
			return nil, fmt.Errorf("route %s: duplicate prefix %s", rt.Name, rt.Prefix)
		}
		target := *rt.Target
		rt.Target = &target
		g.routes[i] = rt
		g.proxies[rt.Prefix] = newProxy(rt, transport)
	}
	return g, nil
}

// Routes returns a copy of the route table.
func (g *Router) Routes() []Route {
	out := make([]Route, len(g.routes))
	copy(out, g.routes)
	return out
}

func (g *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt, ok := Resolve(g.routes, r.URL.Path)
	if !ok {
		NotFound(w, r)
		return
	}
	slog.Info("➡️ forwarding request",
		"method", r.Method,
		"path", r.URL.Path,
		"target", rt.Name,
		"request_id", r.Header.Get(middleware.RequestIDHeader),
	)
	g.proxies[rt.Prefix].ServeHTTP(w, r)
}

func newProxy(rt Route, transport http.RoundTripper) *httputil.ReverseProxy {
	target := rt.Target
	return &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Scheme = target.Scheme
			pr.Out.URL.Host = target.Host
			pr.Out.URL.Path = joinPath(target.Path, rt.Rewrite(pr.In.URL.Path))
			pr.Out.URL.RawPath = ""
			if raw := pr.In.URL.RawPath; raw != "" && strings.HasPrefix(raw, rt.Prefix) {
				pr.Out.URL.RawPath = joinPath(target.EscapedPath(), rt.Rewrite(raw))
			}
			pr.Out.Host = target.Host
			pr.SetXForwarded()
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Error("proxy error",
				"target", rt.Name,
				"method", r.Method,
				"path", r.URL.Path,
				"err", err,
			)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "proxy error occurred"})
		},
	}
}

// NotFound answers paths no route claims.
func NotFound(w http.ResponseWriter, r *http.Request) {
	slog.Debug("no route", "method", r.Method, "path", r.URL.Path)
	writeJSON(w, http.StatusNotFound, map[string]string{"message": "endpoint not found on API gateway"})
}

// RequestID stamps X-Request-Id on requests that arrive without one so the
// backend and the gateway log the same id.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(middleware.RequestIDHeader)
		if id == "" {
			// reuse the id the request logger already saw
			id = middleware.GetReqID(r.Context())
		}
		if id == "" {
			id = uuid.NewString()
		}
		r.Header.Set(middleware.RequestIDHeader, id)
		w.Header().Set(middleware.RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func joinPath(base, p string) string {
	if base == "" || base == "/" {
		return p
	}
	return strings.TrimSuffix(base, "/") + p
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

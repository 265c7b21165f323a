// internal/gateway/route.go
package gateway

import (
	"fmt"
	"net/url"
	"strings"
)

// Route maps a public path prefix onto a backend service.
type Route struct {
	// Name identifies the backend in logs.
	Name      string
	Prefix    string
	MountPath string
	Target    *url.URL
}

// matches is true when path equals the prefix or continues it at a "/".
func (rt Route) matches(path string) bool {
	if !strings.HasPrefix(path, rt.Prefix) {
		return false
	}
	return len(path) == len(rt.Prefix) || path[len(rt.Prefix)] == '/'
}

// Rewrite swaps the route prefix for the mount path, keeping the remainder.
func (rt Route) Rewrite(path string) string {
	out := rt.MountPath + strings.TrimPrefix(path, rt.Prefix)
	if out == "" {
		return "/"
	}
	return out
}

func (rt Route) validate() error {
	switch {
	case rt.Name == "":
		return fmt.Errorf("route %q: missing name", rt.Prefix)
	case !strings.HasPrefix(rt.Prefix, "/") || len(rt.Prefix) < 2 || strings.HasSuffix(rt.Prefix, "/"):
		return fmt.Errorf("route %s: prefix %q must start with / and not end with /", rt.Name, rt.Prefix)
	case rt.MountPath != "" && (!strings.HasPrefix(rt.MountPath, "/") || strings.HasSuffix(rt.MountPath, "/")):
		return fmt.Errorf("route %s: mount path %q must start with / and not end with /", rt.Name, rt.MountPath)
	case rt.Target == nil:
		return fmt.Errorf("route %s: missing target", rt.Name)
	case rt.Target.Scheme != "http" && rt.Target.Scheme != "https":
		return fmt.Errorf("route %s: target %q must be an http(s) URL", rt.Name, rt.Target)
	case rt.Target.Host == "":
		return fmt.Errorf("route %s: target %q has no host", rt.Name, rt.Target)
	}
	return nil
}

// Resolve picks the route with the longest prefix matching path.
// Matching is case-sensitive and stops at segment boundaries.
func Resolve(routes []Route, path string) (Route, bool) {
	best := -1
	for i, rt := range routes {
		if !rt.matches(path) {
			continue
		}
		if best < 0 || len(rt.Prefix) > len(routes[best].Prefix) {
			best = i
		}
	}
	if best < 0 {
		return Route{}, false
	}
	return routes[best], true
}

// ServiceRoutes builds the storefront route table from backend base URLs.
func ServiceRoutes(customerURL, productURL, orderURL string) ([]Route, error) {
	defs := []struct {
		name, prefix, mount, raw string
	}{
		{"customer-service", "/api/customers", "/customers", customerURL},
		{"product-service", "/api/products", "/products", productURL},
		{"order-service", "/api/orders", "/orders", orderURL},
	}

	routes := make([]Route, 0, len(defs))
	for _, s := range defs {
		if s.raw == "" {
			return nil, fmt.Errorf("route %s: target URL is not configured", s.name)
		}
		target, err := url.Parse(s.raw)
		if err != nil {
			return nil, fmt.Errorf("route %s: invalid target URL: %w", s.name, err)
		}
		routes = append(routes, Route{Name: s.name, Prefix: s.prefix, MountPath: s.mount, Target: target})
	}
	return routes, nil
}

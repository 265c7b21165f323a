package gateway_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/storefront-backend/internal/controller"
	"github.com/unclebandit/storefront-backend/internal/gateway"
	"github.com/unclebandit/storefront-backend/internal/repository"
	"github.com/unclebandit/storefront-backend/internal/service"
)

// seen is what a stub backend observed about the forwarded request.
type seen struct {
	method, path, query, host, body, forwardedFor, requestID string
}

type backendRecorder struct {
	mu   sync.Mutex
	last seen
	hits int32
}

func (b *backendRecorder) get() seen {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.last
}

func stubBackend(t *testing.T) (*httptest.Server, *backendRecorder) {
	t.Helper()
	rec := &backendRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rec.hits, 1)
		b, _ := io.ReadAll(r.Body)
		rec.mu.Lock()
		rec.last = seen{
			method:       r.Method,
			path:         r.URL.Path,
			query:        r.URL.RawQuery,
			host:         r.Host,
			body:         string(b),
			forwardedFor: r.Header.Get("X-Forwarded-For"),
			requestID:    r.Header.Get("X-Request-Id"),
		}
		rec.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("X-Backend", "customers")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"c1"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func routesTo(t *testing.T, customerURL, productURL, orderURL string) *gateway.Router {
	t.Helper()
	routes, err := gateway.ServiceRoutes(customerURL, productURL, orderURL)
	require.NoError(t, err)
	g, err := gateway.NewRouter(routes, nil)
	require.NoError(t, err)
	return g
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestForwardRewritesPathAndKeepsRequest(t *testing.T) {
	backend, rec := stubBackend(t)
	g := routesTo(t, backend.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")

	req := httptest.NewRequest(http.MethodPost, "http://gateway.local/api/customers/7?x=1&y=2", strings.NewReader(`{"name":"Ada"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "customers", w.Header().Get("X-Backend"))
	assert.JSONEq(t, `{"id":"c1"}`, w.Body.String())

	backendURL, _ := url.Parse(backend.URL)
	got := rec.get()
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/customers/7", got.path)
	assert.Equal(t, "x=1&y=2", got.query)
	assert.Equal(t, backendURL.Host, got.host)
	assert.Equal(t, `{"name":"Ada"}`, got.body)
	assert.NotEmpty(t, got.forwardedFor)
}

func TestForwardPrefixRoot(t *testing.T) {
	backend, rec := stubBackend(t)
	g := routesTo(t, backend.URL, backend.URL, backend.URL)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/orders", rec.get().path)
}

func TestUnknownPathNeverForwarded(t *testing.T) {
	backend, rec := stubBackend(t)
	g := routesTo(t, backend.URL, backend.URL, backend.URL)

	for _, path := range []string{"/api/unknown", "/api/customersX", "/customers", "/"} {
		w := httptest.NewRecorder()
		g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.JSONEq(t, `{"message":"endpoint not found on API gateway"}`, w.Body.String(), path)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&rec.hits))
}

func TestUnreachableBackendIsGeneric500(t *testing.T) {
	logs := captureLogs(t)

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	g := routesTo(t, "http://127.0.0.1:1", "http://127.0.0.1:1", deadURL)

	w := httptest.NewRecorder()
	g.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/orders/o1", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"proxy error occurred"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "refused")
	assert.Contains(t, logs.String(), "proxy error")
	assert.Contains(t, logs.String(), "order-service")
}

func TestForwardLogsOneLine(t *testing.T) {
	logs := captureLogs(t)
	backend, _ := stubBackend(t)
	g := routesTo(t, backend.URL, backend.URL, backend.URL)

	g.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/products/p1", nil))

	out := logs.String()
	assert.Equal(t, 1, strings.Count(out, "forwarding request"))
	assert.Contains(t, out, "method=DELETE")
	assert.Contains(t, out, "path=/api/products/p1")
	assert.Contains(t, out, "target=product-service")
}

func TestRequestIDIsPropagated(t *testing.T) {
	backend, rec := stubBackend(t)
	h := gateway.RequestID(routesTo(t, backend.URL, backend.URL, backend.URL))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/customers", nil))
	assert.NotEmpty(t, rec.get().requestID)
	assert.Equal(t, rec.get().requestID, w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
	req.Header.Set("X-Request-Id", "client-chosen")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "client-chosen", rec.get().requestID)
}

func TestGatewayToCustomerService(t *testing.T) {
	r := chi.NewRouter()
	(&controller.CustomerController{
		CustomerService: service.NewCustomerService(repository.NewMemoryCustomerRepository(), nil),
	}).Routes(r)
	customers := httptest.NewServer(r)
	t.Cleanup(customers.Close)

	g := routesTo(t, customers.URL, "http://127.0.0.1:1", "http://127.0.0.1:1")
	front := httptest.NewServer(g)
	t.Cleanup(front.Close)

	resp, err := http.Post(front.URL+"/api/customers", "application/json", strings.NewReader(`{"name":"A","email":"a@x"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "A", created["name"])

	got, err := http.Get(front.URL + "/api/customers/" + id)
	require.NoError(t, err)
	defer got.Body.Close()
	assert.Equal(t, http.StatusOK, got.StatusCode)

	dup, err := http.Post(front.URL+"/api/customers", "application/json", strings.NewReader(`{"name":"B","email":"a@x"}`))
	require.NoError(t, err)
	defer dup.Body.Close()
	assert.Equal(t, http.StatusConflict, dup.StatusCode)

	missing, err := http.Get(front.URL + "/api/customers/does-not-exist")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(missing.Body).Decode(&body))
	assert.Equal(t, "customer not found", body["message"])
}

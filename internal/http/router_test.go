package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-marketplace/internal/http/handlers"
	"github.com/pribylovaa/go-marketplace/internal/metrics"
	"github.com/pribylovaa/go-marketplace/internal/models"
	"github.com/pribylovaa/go-marketplace/internal/service"
)

const goodToken = "good-access"

var aliceID = uuid.MustParse("11111111-2222-3333-4444-555555555555")

// stubService — минимальная реализация для проверки маршрутизации.
type stubService struct {
	handlers.Service
}

func (stubService) Authenticate(_ context.Context, tok string) (*models.Identity, error) {
	if tok != goodToken {
		return nil, fmt.Errorf("stub: %w", service.ErrUnauthorized)
	}

	return &models.Identity{UserID: aliceID, Username: "alice"}, nil
}

func (stubService) CurrentUser(_ context.Context, id uuid.UUID) (*models.PublicUser, error) {
	return &models.PublicUser{ID: id, Username: "alice"}, nil
}

func (stubService) ListProducts(context.Context, models.ListParams) (*models.ProductPage, error) {
	return &models.ProductPage{}, nil
}

func (stubService) ProductByID(_ context.Context, id string) (*models.Product, error) {
	if id != "p1" {
		return nil, service.ErrNotFound
	}

	return &models.Product{ID: id}, nil
}

func (stubService) Login(context.Context, string, string, string) (*models.Session, error) {
	return nil, service.ErrInvalidCredentials
}

func (stubService) DeleteProduct(context.Context, string, uuid.UUID) error { return nil }

func newTestRouter(m *metrics.Metrics) http.Handler {
	return NewRouter(stubService{}, Options{
		Timeout:        time.Second,
		BasePath:       "/api/v1",
		MaxUploadBytes: 1 << 20,
		Metrics:        m,
	})
}

func do(h http.Handler, method, target string, body []byte, mut ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for _, f := range mut {
		f(req)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func bearer(tok string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }
}

func TestRouter_PublicRoutes(t *testing.T) {
	h := newTestRouter(nil)

	rr := do(h, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = do(h, http.MethodGet, "/api/v1/products/p1", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodGet, "/api/v1/products/nope", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_ProtectedRoutesRequireToken(t *testing.T) {
	h := newTestRouter(nil)

	routes := []struct{ method, path string }{
		{http.MethodPost, "/api/v1/users/logout"},
		{http.MethodPost, "/api/v1/users/change-password"},
		{http.MethodGet, "/api/v1/users/current-user"},
		{http.MethodPatch, "/api/v1/users/update-account"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPatch, "/api/v1/products/p1"},
		{http.MethodDelete, "/api/v1/products/p1"},
		{http.MethodPatch, "/api/v1/products/p1/image"},
	}

	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rr := do(h, rt.method, rt.path, nil)
			require.Equal(t, http.StatusUnauthorized, rr.Code)

			rr = do(h, rt.method, rt.path, nil, bearer("forged"))
			require.Equal(t, http.StatusUnauthorized, rr.Code)
		})
	}
}

func TestRouter_AuthenticatedRequest(t *testing.T) {
	h := newTestRouter(nil)

	rr := do(h, http.MethodGet, "/api/v1/users/current-user", nil, bearer(goodToken))
	require.Equal(t, http.StatusOK, rr.Code)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Equal(t, aliceID.String(), out["id"])

	rr = do(h, http.MethodGet, "/api/v1/users/current-user", nil, func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: "accessToken", Value: goodToken})
	})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(h, http.MethodDelete, "/api/v1/products/p1", nil, bearer(goodToken))
	require.Equal(t, http.StatusNoContent, rr.Code)
}

func TestRouter_UnknownRoute(t *testing.T) {
	h := newTestRouter(nil)

	rr := do(h, http.MethodGet, "/api/v1/nowhere", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h, http.MethodGet, "/products", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRouter_RecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newTestRouter(metrics.New(reg))

	do(h, http.MethodGet, "/api/v1/products/p1", nil)
	do(h, http.MethodPost, "/api/v1/users/login", []byte(`{"username":"alice","password":"x"}`))

	n, err := testutil.GatherAndCount(reg, "marketplace_http_request_duration_seconds")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	expected := `
# HELP marketplace_auth_events_total Credential lifecycle events.
# TYPE marketplace_auth_events_total counter
marketplace_auth_events_total{event="login_failed"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, bytes.NewBufferString(expected), "marketplace_auth_events_total"))

	mfs, err := reg.Gather()
	require.NoError(t, err)

	routes := map[string]bool{}
	for _, mf := range mfs {
		if mf.GetName() != "marketplace_http_request_duration_seconds" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == "route" {
					routes[lp.GetValue()] = true
				}
			}
		}
	}
	require.True(t, routes["/api/v1/products/{productId}"], "routes: %v", routes)
	require.True(t, routes["/api/v1/users/login"], "routes: %v", routes)
}

package v1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/tenant"
	"logistix/internal/domain"
	"logistix/internal/domain/auth"
	"logistix/internal/domain/invoices"
	"logistix/internal/infrastructure/http/v1/handlers"
	"logistix/pkg/logger"
)

const routerTenant = "0195f0c4-6a43-7b6e-9a59-2f3d4c5b6a70"

type oneTenant struct {
	tenant.Registry
}

func (oneTenant) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	if id != routerTenant {
		return nil, tenant.ErrTenantNotFound
	}
	return &tenant.Tenant{ID: id, Slug: "acme", Status: tenant.StatusActive}, nil
}

type emptyInvoices struct {
	handlers.InvoiceService
}

func (emptyInvoices) List(context.Context, invoices.ListFilter) (*domain.ListResult[invoices.Invoice], error) {
	return &domain.ListResult[invoices.Invoice]{Limit: 50}, nil
}

type countingMetrics struct {
	requests int
}

func (m *countingMetrics) RecordHTTP(string, string, int, time.Duration) { m.requests++ }

func (m *countingMetrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics\n"))
	})
}

func newTestRouter(t *testing.T) (*gin.Engine, *auth.JWTService, *countingMetrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	m := &countingMetrics{}
	r := NewRouter(RouterConfig{
		Logger:       logger.Nop(),
		Tenants:      oneTenant{},
		JWTValidator: jwtSvc,
		Cookie:       handlers.CookieConfig{Name: "logistix_session"},
		Invoices:     emptyInvoices{},
		Health:       handlers.NewHealthHandler("test", nil, nil),
		Metrics:      m,
	})
	return r, jwtSvc, m
}

func token(t *testing.T, svc *auth.JWTService, role string) string {
	t.Helper()
	tok, _, err := svc.GenerateAccessToken(&auth.User{ID: "u1", TenantID: routerTenant, Email: "a@b.io", Role: role})
	require.NoError(t, err)
	return tok
}

func TestRouter_PublicEndpoints(t *testing.T) {
	r, _, m := newTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# metrics")
	assert.Equal(t, 2, m.requests)
}

func TestRouter_ProtectedChain(t *testing.T) {
	r, jwtSvc, _ := newTestRouter(t)

	call := func(method, path, tenantID, bearer string) int {
		req := httptest.NewRequest(method, path, nil)
		if tenantID != "" {
			req.Header.Set("X-Tenant-ID", tenantID)
		}
		if bearer != "" {
			req.Header.Set("Authorization", "Bearer "+bearer)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	viewer := token(t, jwtSvc, "viewer")

	assert.Equal(t, http.StatusBadRequest, call(http.MethodGet, "/api/v1/invoices", "", viewer))
	assert.Equal(t, http.StatusNotFound, call(http.MethodGet, "/api/v1/invoices", "0195f0c4-6a43-7b6e-9a59-000000000000", viewer))
	assert.Equal(t, http.StatusUnauthorized, call(http.MethodGet, "/api/v1/invoices", routerTenant, ""))
	assert.Equal(t, http.StatusOK, call(http.MethodGet, "/api/v1/invoices", routerTenant, viewer))
	assert.Equal(t, http.StatusForbidden, call(http.MethodPost, "/api/v1/invoices/x/void", routerTenant, viewer))
}

func TestWithCompression(t *testing.T) {
	big := strings.Repeat("INV-2026-001 ", 500)
	h := WithCompression(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(big))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Less(t, w.Body.Len(), len(big))
}

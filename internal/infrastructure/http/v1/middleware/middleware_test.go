package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logistix/internal/core/apperror"
	appctx "logistix/internal/core/context"
	"logistix/internal/core/security"
	"logistix/internal/core/tenant"
)

const (
	activeTenant    = "0195f0c4-6a43-7b6e-9a59-2f3d4c5b6a70"
	suspendedTenant = "0195f0c4-6a43-7b6e-9a59-2f3d4c5b6a71"
	unknownTenant   = "0195f0c4-6a43-7b6e-9a59-2f3d4c5b6a72"
)

type stubRegistry struct {
	tenant.Registry
	tenants map[string]*tenant.Tenant
	err     error
}

func (r *stubRegistry) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	if r.err != nil {
		return nil, r.err
	}
	t, ok := r.tenants[id]
	if !ok {
		return nil, tenant.ErrTenantNotFound
	}
	return t, nil
}

func newRegistry() *stubRegistry {
	return &stubRegistry{tenants: map[string]*tenant.Tenant{
		activeTenant:    {ID: activeTenant, Slug: "acme", Status: tenant.StatusActive},
		suspendedTenant: {ID: suspendedTenant, Slug: "late", Status: tenant.StatusSuspended},
	}}
}

type stubValidator map[string]*appctx.UserContext

func (v stubValidator) ValidateToken(token string) (*appctx.UserContext, error) {
	if u, ok := v[token]; ok {
		return u, nil
	}
	return nil, errors.New("bad token")
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.Use(handlers...)
	r.GET("/probe", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"tenant": tenant.GetTenantID(c.Request.Context()),
			"user":   appctx.GetUserID(c.Request.Context()),
		})
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestErrorHandler_WritesAppError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Trace(), ErrorHandler())
	r.GET("/missing", func(c *gin.Context) {
		_ = c.Error(apperror.NewNotFound("trip", "42"))
	})
	r.GET("/plain", func(c *gin.Context) {
		_ = c.Error(errors.New("boom"))
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeNotFound)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/plain", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.Contains(t, w.Body.String(), "request_id")
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery(), Trace(), ErrorHandler())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestTrace_EchoesAndGeneratesIDs(t *testing.T) {
	r := newRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := serve(r, req)
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.NotEmpty(t, w.Header().Get(HeaderTraceID))
}

func TestTenantResolver(t *testing.T) {
	tests := []struct {
		name   string
		header string
		reg    *stubRegistry
		want   int
	}{
		{"missing header", "", newRegistry(), http.StatusBadRequest},
		{"not a uuid", "acme", newRegistry(), http.StatusBadRequest},
		{"unknown", unknownTenant, newRegistry(), http.StatusNotFound},
		{"suspended", suspendedTenant, newRegistry(), http.StatusForbidden},
		{"registry down", activeTenant, &stubRegistry{err: errors.New("conn refused")}, http.StatusServiceUnavailable},
		{"active", activeTenant, newRegistry(), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(TenantResolver(tt.reg))
			req := httptest.NewRequest(http.MethodGet, "/probe", nil)
			if tt.header != "" {
				req.Header.Set(TenantHeader, tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if tt.want == http.StatusOK {
				assert.Contains(t, w.Body.String(), activeTenant)
			}
		})
	}
}

func TestAuth(t *testing.T) {
	validator := stubValidator{
		"good":    {UserID: "u1", TenantID: activeTenant, Role: "manager"},
		"foreign": {UserID: "u2", TenantID: suspendedTenant, Role: "admin"},
	}
	r := newRouter(TenantResolver(newRegistry()), Auth(validator, "logistix_session"))

	t.Run("bearer token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		req.Header.Set("Authorization", "Bearer good")
		w := serve(r, req)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"user":"u1"`)
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		req.AddCookie(&http.Cookie{Name: "logistix_session", Value: "good"})
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		req.Header.Set("Authorization", "Token good")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		req.Header.Set("Authorization", "Bearer forged")
		assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)
	})

	t.Run("token of another tenant", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set(TenantHeader, activeTenant)
		req.Header.Set("Authorization", "Bearer foreign")
		w := serve(r, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "tenant mismatch")
	})
}

func TestRequirePermission(t *testing.T) {
	withUser := func(role string) gin.HandlerFunc {
		return func(c *gin.Context) {
			if role != "" {
				ctx := appctx.WithUser(c.Request.Context(), &appctx.UserContext{UserID: "u", Role: role})
				c.Request = c.Request.WithContext(ctx)
			}
			c.Next()
		}
	}

	tests := []struct {
		role string
		perm security.Permission
		want int
	}{
		{"", security.PermTripRead, http.StatusUnauthorized},
		{"viewer", security.PermInvoiceCreate, http.StatusForbidden},
		{"warehouse", security.PermInvoiceRead, http.StatusForbidden},
		{"accountant", security.PermInvoiceVoid, http.StatusOK},
		{"manager", security.PermNumberingAdmin, http.StatusForbidden},
		{"admin", security.PermNumberingAdmin, http.StatusOK},
		{"superuser", security.PermTripRead, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role+"/"+string(tt.perm), func(t *testing.T) {
			r := newRouter(withUser(tt.role), RequirePermission(tt.perm))
			w := serve(r, httptest.NewRequest(http.MethodGet, "/probe", nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

type recordedRequest struct {
	method, route string
	status        int
}

type fakeRecorder struct {
	calls []recordedRequest
}

func (f *fakeRecorder) RecordHTTP(method, route string, status int, _ time.Duration) {
	f.calls = append(f.calls, recordedRequest{method, route, status})
}

func TestMetrics_LabelsByRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := &fakeRecorder{}
	r := gin.New()
	r.Use(Metrics(rec))
	r.GET("/trips/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(r, httptest.NewRequest(http.MethodGet, "/trips/abc", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	require.Len(t, rec.calls, 2)
	assert.Equal(t, recordedRequest{http.MethodGet, "/trips/:id", http.StatusNoContent}, rec.calls[0])
	assert.Equal(t, "unmatched", rec.calls[1].route)
	assert.Equal(t, http.StatusNotFound, rec.calls[1].status)
}

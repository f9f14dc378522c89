package tenant

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

const shopID = "6f1c2d4e-8a7b-4c3d-9e2f-1a2b3c4d5e6f"

func TestResolverPrefersHeader(t *testing.T) {
	r := NewResolver("", "shops.example.com", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "other.shops.example.com"
	req.Header.Set("X-Tenant-ID", shopID)
	require.Equal(t, shopID, r.Resolve(req))
}

func TestResolverSubdomain(t *testing.T) {
	r := NewResolver("", "shops.example.com", "")
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "lakshmi.shops.example.com:8443"
	require.Equal(t, "lakshmi", r.Resolve(req))

	req.Host = "shops.example.com"
	require.Equal(t, "", r.Resolve(req))

	req.Host = "lakshmi.elsewhere.org"
	require.Equal(t, "", r.Resolve(req))
}

func TestRequireRejectsMissingTenant(t *testing.T) {
	called := false
	h := NewResolver("", "", "").Middleware(Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "localhost"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "TENANT_REQUIRED")
	require.False(t, called)
}

func TestRequirePassesTenantDownstream(t *testing.T) {
	var seen string
	h := NewResolver("X-Shop", "", "").Middleware(Require(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = From(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Shop", shopID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, shopID, seen)
}

func TestPrefixKey(t *testing.T) {
	require.Equal(t, "forecast", PrefixKey("", "forecast"))
	require.Equal(t, "abc:forecast", PrefixKey("abc", "forecast"))
}

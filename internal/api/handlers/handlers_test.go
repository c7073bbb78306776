package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/schoolhub/internal/assignment"
	"github.com/nikhilbhutani/schoolhub/internal/inventory"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

func TestDebugHostNeverCached(t *testing.T) {
	h := NewDebugHandler("preview")

	for _, cacheHeader := range []string{"", "max-age=3600", "no-cache"} {
		req := httptest.NewRequest(http.MethodGet, "http://acme.example.com/api/debug/host?x=1", nil)
		req.Header.Set("X-Forwarded-Host", "acme.schools.test")
		if cacheHeader != "" {
			req.Header.Set("Cache-Control", cacheHeader)
		}
		rec := httptest.NewRecorder()
		h.Host(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "no-store, max-age=0", rec.Header().Get("Cache-Control"))

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "acme.example.com", body["host"])
		assert.Equal(t, "acme.schools.test", body["x_forwarded_host"])
		assert.Equal(t, "http://acme.example.com/api/debug/host?x=1", body["url"])
		assert.Equal(t, "preview", body["environment"])
	}
}

func TestDebugHostMissingForwardedHost(t *testing.T) {
	rec := httptest.NewRecorder()
	NewDebugHandler("development").Host(rec, httptest.NewRequest(http.MethodGet, "/api/debug/host", nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "x_forwarded_host")
	assert.Nil(t, body["x_forwarded_host"])
}

func TestRedirectLegacy(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/{domain}/dashboard/staff", RedirectLegacy)

	tests := []struct {
		path string
		want string
	}{
		{path: "/acme/dashboard/staff", want: "/acme/dashboard/admin/staff"},
		{path: "/acme/dashboard/staff?page=2", want: "/acme/dashboard/admin/staff?page=2"},
		{path: "/north-ridge/dashboard/staff", want: "/north-ridge/dashboard/admin/staff"},
		{path: "/a%2Fb/dashboard/staff", want: "/a%2Fb/dashboard/admin/staff"},
		{path: "/st%20mary/dashboard/staff", want: "/st%20mary/dashboard/admin/staff"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Location"))
		})
	}
}

type failingInventory struct{}

func (failingInventory) ListCategories(context.Context, uuid.UUID) ([]models.InventoryCategory, error) {
	return nil, errors.New("permission denied for table inventory_categories")
}

func (failingInventory) CreateCategory(context.Context, *models.InventoryCategory) error {
	return errors.New("unreachable")
}

type emptyInventory struct{ failingInventory }

func (emptyInventory) ListCategories(context.Context, uuid.UUID) ([]models.InventoryCategory, error) {
	return nil, nil
}

func TestListCategoriesRendersEmptyList(t *testing.T) {
	for name, repo := range map[string]inventory.Repository{
		"store failure": failingInventory{},
		"no rows":       emptyInventory{},
	} {
		t.Run(name, func(t *testing.T) {
			h := NewInventoryHandler(inventory.NewService(repo))
			ctx := tenant.WithTenant(context.Background(), &models.Tenant{ID: uuid.New(), Slug: "acme"})
			req := httptest.NewRequest(http.MethodGet, "/acme/dashboard/inventory/categories", nil).WithContext(ctx)
			rec := httptest.NewRecorder()
			h.ListCategories(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"categories": [], "count": 0}`, rec.Body.String())
		})
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: fmt.Errorf("load: %w", models.ErrNotFound), want: http.StatusNotFound},
		{err: models.ErrCrossTenant, want: http.StatusForbidden},
		{err: fmt.Errorf("create: %w", models.ErrConflict), want: http.StatusConflict},
		{err: assignment.ErrNotStudent, want: http.StatusForbidden},
		{err: assignment.ErrInvalidGrade, want: http.StatusBadRequest},
		{err: tenant.ErrInvalidSlug, want: http.StatusBadRequest},
		{err: errors.New("connection refused"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		writeServiceError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}

func TestReadyz(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(pingFunc(func() error { return nil }), pingFunc(func() error { return errors.New("down") })).
		Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"ok"`)

	rec = httptest.NewRecorder()
	NewHealthHandler(pingFunc(func() error { return nil }), nil).
		Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

type pingFunc func() error

func (f pingFunc) Ping(context.Context) error { return f() }

package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/models"
)

type tokenKey struct{}

func withToken(ctx context.Context, tok string) context.Context {
	return context.WithValue(ctx, tokenKey{}, tok)
}

func tokenFrom(ctx context.Context) string {
	t, _ := ctx.Value(tokenKey{}).(string)
	return t
}

func newStore(url string) *InventoryStore {
	return NewInventoryStore(config.SupabaseConfig{URL: url, AnonKey: "anon", ServiceRoleKey: "service"}, tokenFrom)
}

func TestListCategoriesForwardsUserToken(t *testing.T) {
	tenantID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/inventory_categories", r.URL.Path)
		assert.Equal(t, "eq."+tenantID.String(), r.URL.Query().Get("tenant_id"))
		assert.Equal(t, "anon", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": uuid.NewString(), "tenant_id": tenantID, "name": "Sports"},
			{"id": uuid.NewString(), "tenant_id": tenantID, "name": "Books"},
		})
	}))
	defer srv.Close()

	cats, err := newStore(srv.URL).ListCategories(withToken(context.Background(), "user-jwt"), tenantID)
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Books", cats[0].Name)
	assert.Equal(t, "Sports", cats[1].Name)
	assert.Equal(t, tenantID, cats[0].TenantID)
}

func TestMissingTokenMakesNoRequest(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	s := newStore(srv.URL)
	_, err := s.ListCategories(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNoAccessToken)

	err = s.CreateCategory(context.Background(), &models.InventoryCategory{ID: uuid.New(), TenantID: uuid.New(), Name: "Books"})
	assert.ErrorIs(t, err, ErrNoAccessToken)
	assert.Zero(t, calls)
}

func TestCreateCategory(t *testing.T) {
	cat := &models.InventoryCategory{ID: uuid.New(), TenantID: uuid.New(), Name: "Laboratory"}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))
		var got models.InventoryCategory
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		assert.Equal(t, cat.TenantID, got.TenantID)
		assert.Equal(t, "Laboratory", got.Name)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	require.NoError(t, newStore(srv.URL).CreateCategory(withToken(context.Background(), "user-jwt"), cat))
}

func TestGatewayErrorsMapToSentinels(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
		want   error
	}{
		{name: "duplicate", status: http.StatusConflict, code: "23505", want: models.ErrConflict},
		{name: "foreign key", status: http.StatusConflict, code: "23503", want: models.ErrCrossTenant},
		{name: "row level security", status: http.StatusForbidden, code: "42501", want: models.ErrCrossTenant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				json.NewEncoder(w).Encode(map[string]string{"code": tt.code, "message": "denied"})
			}))
			defer srv.Close()

			err := newStore(srv.URL).CreateCategory(withToken(context.Background(), "user-jwt"),
				&models.InventoryCategory{ID: uuid.New(), TenantID: uuid.New(), Name: "Books"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

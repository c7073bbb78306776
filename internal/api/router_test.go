package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilbhutani/schoolhub/internal/api/middleware"
	"github.com/nikhilbhutani/schoolhub/internal/auth"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/store/memory"
	"github.com/nikhilbhutani/schoolhub/internal/store/rest"
)

const jwtSecret = "test-secret-with-enough-bytes-for-hs256"

type harness struct {
	handler http.Handler
	store   *memory.Store
	acme    *models.Tenant
	globex  *models.Tenant
	admin   *models.Profile
	teacher *models.Profile
	student *models.Profile
	rival   *models.Profile
}

func newHarness(t *testing.T, opts ...func(*config.Config, *Deps)) *harness {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	cfg := &config.Config{
		Server:   config.ServerConfig{Environment: "test", AllowedOrigins: []string{"*"}, AdminToken: "op-token"},
		Supabase: config.SupabaseConfig{JWTSecret: jwtSecret},
		Tenancy:  config.TenancyConfig{RootDomain: "schools.test"},
	}

	h := &harness{store: store}
	h.acme = &models.Tenant{ID: uuid.New(), Name: "Acme High", Slug: "acme", SubscriptionTier: models.TierFree}
	h.globex = &models.Tenant{ID: uuid.New(), Name: "Globex Academy", Slug: "globex", SubscriptionTier: models.TierPremium}
	require.NoError(t, store.CreateTenant(ctx, h.acme))
	require.NoError(t, store.CreateTenant(ctx, h.globex))

	h.admin = &models.Profile{ID: uuid.New(), TenantID: h.acme.ID, Role: models.RoleAdmin, FullName: "Ada Admin"}
	h.teacher = &models.Profile{ID: uuid.New(), TenantID: h.acme.ID, Role: models.RoleTeacher, FullName: "Tom Teacher"}
	h.student = &models.Profile{ID: uuid.New(), TenantID: h.acme.ID, Role: models.RoleStudent, FullName: "Sam Student"}
	h.rival = &models.Profile{ID: uuid.New(), TenantID: h.globex.ID, Role: models.RoleAdmin, FullName: "Rita Rival"}
	for _, p := range []*models.Profile{h.admin, h.teacher, h.student, h.rival} {
		require.NoError(t, store.PutProfile(ctx, p))
	}

	var deps Deps
	for _, opt := range opts {
		opt(cfg, &deps)
	}
	h.handler = NewRouter(cfg, store, deps).Setup()
	return h
}

func token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	require.NoError(t, err)
	return s
}

func (h *harness) do(t *testing.T, method, path string, as *models.Profile, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+token(t, as.ID))
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestLegacyStaffRedirect(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/acme/dashboard/staff", nil, nil)
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/acme/dashboard/admin/staff", rec.Header().Get("Location"))
}

func TestDebugHostHeader(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/debug/host", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store, max-age=0", rec.Header().Get("Cache-Control"))
}

func TestDebugHostHeaderOnEarlyResponses(t *testing.T) {
	h := newHarness(t, func(_ *config.Config, d *Deps) {
		d.RateLimiter = middleware.NewRateLimiter(1, 1)
	})

	var codes []int
	for i := 0; i < 3; i++ {
		rec := h.do(t, http.MethodGet, "/api/debug/host", nil, nil)
		codes = append(codes, rec.Code)
		assert.Equal(t, "no-store, max-age=0", rec.Header().Get("Cache-Control"))
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodOptions, "/api/debug/host", nil)
	req.Header.Set("Origin", "https://ops.example.com")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "no-store, max-age=0", rec.Header().Get("Cache-Control"))
}

func TestRateLimitIgnoresForwardedHeadersByDefault(t *testing.T) {
	h := newHarness(t, func(_ *config.Config, d *Deps) {
		d.RateLimiter = middleware.NewRateLimiter(0.001, 1)
	})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.2"))
}

func TestRateLimitTrustsProxyWhenConfigured(t *testing.T) {
	h := newHarness(t, func(cfg *config.Config, d *Deps) {
		cfg.Server.TrustProxyHeaders = true
		d.RateLimiter = middleware.NewRateLimiter(0.001, 1)
	})

	send := func(forwardedFor string) int {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Forwarded-For", forwardedFor)
		rec := httptest.NewRecorder()
		h.handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("198.51.100.1"))
	assert.Equal(t, http.StatusOK, send("198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, send("198.51.100.1"))
}

func TestUnknownSchool(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/nowhere/dashboard/inventory/categories", h.admin, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthAndMembership(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusUnauthorized, h.do(t, http.MethodGet, "/acme/dashboard/admin/staff", nil, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/acme/dashboard/admin/staff", h.rival, nil).Code)
	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodGet, "/acme/dashboard/admin/staff", h.student, nil).Code)

	rec := h.do(t, http.MethodGet, "/acme/dashboard/admin/staff", h.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Staff []models.Profile `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Staff, 2)
	for _, p := range body.Staff {
		assert.Equal(t, h.acme.ID, p.TenantID)
	}
}

func TestCategoriesScopedToSchool(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/acme/dashboard/inventory/categories", h.admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"categories": [], "count": 0}`, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/globex/dashboard/inventory/categories", h.rival, map[string]string{"name": "Robotics"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = h.do(t, http.MethodGet, "/acme/dashboard/inventory/categories", h.admin, nil)
	assert.JSONEq(t, `{"categories": [], "count": 0}`, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/acme/dashboard/inventory/categories", h.admin, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategoriesThroughGatewayForwardUserToken(t *testing.T) {
	var gotAuth, gotTenant string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotTenant = r.URL.Query().Get("tenant_id")
		w.Write([]byte(`[{"id":"` + uuid.NewString() + `","name":"Books"}]`))
	}))
	defer gateway.Close()

	h := newHarness(t, func(cfg *config.Config, d *Deps) {
		cfg.Supabase.URL = gateway.URL
		cfg.Supabase.AnonKey = "anon"
		d.Inventory = rest.NewInventoryStore(cfg.Supabase, auth.AccessTokenFromContext)
	})

	tok := token(t, h.admin.ID)
	req := httptest.NewRequest(http.MethodGet, "/acme/dashboard/inventory/categories", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bearer "+tok, gotAuth)
	assert.Equal(t, "eq."+h.acme.ID.String(), gotTenant)

	var body struct {
		Categories []models.InventoryCategory `json:"categories"`
		Count      int                        `json:"count"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 1, body.Count)
	assert.Equal(t, "Books", body.Categories[0].Name)
}

func TestAssignmentLifecycle(t *testing.T) {
	h := newHarness(t)

	points := 20
	rec := h.do(t, http.MethodPost, "/acme/dashboard/assignments", h.teacher, map[string]interface{}{
		"class_id":   uuid.New(),
		"subject_id": uuid.New(),
		"title":      "Photosynthesis essay",
		"due_date":   nil,
		"points":     points,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var a models.Assignment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Nil(t, a.DueDate)
	assert.Equal(t, h.acme.ID, a.TenantID)

	base := "/acme/dashboard/assignments/" + a.ID.String()

	assert.Equal(t, http.StatusForbidden, h.do(t, http.MethodPost, base+"/submissions", h.teacher, map[string]string{"content": "x"}).Code)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/globex/dashboard/assignments/"+a.ID.String(), h.rival, nil).Code)

	rec = h.do(t, http.MethodPost, base+"/submissions", h.student, map[string]string{"content": "Plants turn light into sugar."})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub models.AssignmentSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, h.student.ID, sub.StudentID)
	assert.Equal(t, h.acme.ID, sub.TenantID)

	gradePath := "/acme/dashboard/submissions/" + sub.ID.String() + "/grade"
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, gradePath, h.teacher, map[string]float64{"grade": 25}).Code)
	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodPut, gradePath, h.teacher, map[string]interface{}{}).Code)
	ungraded, err := h.store.GetSubmission(context.Background(), h.acme.ID, sub.ID)
	require.NoError(t, err)
	assert.Nil(t, ungraded.Grade)
	assert.Nil(t, ungraded.GradedAt)
	rec = h.do(t, http.MethodPut, gradePath, h.teacher, map[string]interface{}{"grade": 18, "feedback": "Good"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	logs := h.store.AuditLogs(h.acme.ID)
	require.Len(t, logs, 1)
	assert.Equal(t, "submission.grade", logs[0].Action)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, h.teacher.ID, *logs[0].UserID)

	rec = h.do(t, http.MethodGet, base+"/submissions", h.teacher, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
}

func TestSubmitFileUpload(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	a := &models.Assignment{ID: uuid.New(), TenantID: h.acme.ID, TeacherID: h.teacher.ID, Title: "Reading log"}
	require.NoError(t, h.store.CreateAssignment(ctx, a))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "log.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("Chapter one was about tides.\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/acme/dashboard/assignments/"+a.ID.String()+"/submissions", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token(t, h.student.ID))
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub models.AssignmentSubmission
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, "Chapter one was about tides.", sub.Content)
}

func TestOnboardTenant(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/tenants", bytes.NewBufferString(`{"name":"Initech Prep","slug":"initech"}`))
	req.Header.Set(auth.AdminTokenHeader, "op-token")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got, err := h.store.GetTenantBySlug(context.Background(), "initech")
	require.NoError(t, err)
	assert.Equal(t, models.TierFree, got.SubscriptionTier)
	require.Len(t, h.store.AuditLogs(got.ID), 1)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/tenants", bytes.NewBufferString(`{"name":"Dup","slug":"initech"}`))
	req.Header.Set(auth.AdminTokenHeader, "op-token")
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

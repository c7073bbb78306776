package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/schoolhub/internal/api/handlers"
	"github.com/nikhilbhutani/schoolhub/internal/api/middleware"
	"github.com/nikhilbhutani/schoolhub/internal/assignment"
	"github.com/nikhilbhutani/schoolhub/internal/audit"
	"github.com/nikhilbhutani/schoolhub/internal/auth"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/inventory"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

// Store is everything the HTTP layer needs from persistence. Both the
// postgres and the in-memory stores satisfy it.
type Store interface {
	tenant.Repository
	inventory.Repository
	assignment.Repository
	audit.Sink
	Ping(ctx context.Context) error
}

// Deps carries the optional collaborators. Nil fields disable the feature.
type Deps struct {
	Cache       tenant.Cache
	Provisioner tenant.Provisioner
	Redis       handlers.Pinger
	RateLimiter *middleware.RateLimiter

	// Inventory replaces the store's inventory repository, e.g. with the
	// REST gateway acting as the signed-in user.
	Inventory inventory.Repository
}

const debugHostPath = "/api/debug/host"

type Router struct {
	mux   *chi.Mux
	cfg   *config.Config
	store Store
	deps  Deps
	ts    *tenant.Service
	jwt   *auth.JWTMiddleware
}

func NewRouter(cfg *config.Config, store Store, deps Deps) *Router {
	return &Router{
		mux:   chi.NewRouter(),
		cfg:   cfg,
		store: store,
		deps:  deps,
		ts:    tenant.NewService(store, deps.Cache, deps.Provisioner),
		jwt:   auth.NewJWTMiddleware(cfg.Supabase.JWTSecret),
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux

	// Global middleware. NoStore runs first so that early answers from
	// CORS or the limiter on the diagnostic path stay uncacheable.
	r.Use(middleware.NoStore(debugHostPath))
	r.Use(chimiddleware.RequestID)
	if rt.cfg.Server.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(rt.cfg.Server.AllowedOrigins))
	if rt.deps.RateLimiter != nil {
		r.Use(rt.deps.RateLimiter.Limit)
	}

	// Health endpoints (no auth)
	health := handlers.NewHealthHandler(rt.store, rt.deps.Redis)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	// Initialize services
	auditSvc := audit.NewService(rt.store)
	var inventoryRepo inventory.Repository = rt.store
	if rt.deps.Inventory != nil {
		inventoryRepo = rt.deps.Inventory
	}
	inventorySvc := inventory.NewService(inventoryRepo)
	assignmentSvc := assignment.NewService(rt.store)

	debugH := handlers.NewDebugHandler(rt.cfg.Server.Environment)
	r.Get(debugHostPath, debugH.Host)

	// Platform operator routes
	tenantH := handlers.NewTenantHandler(rt.ts, auditSvc)
	r.With(auth.RequireAdminToken(rt.cfg.Server.AdminToken)).Post("/api/admin/tenants", tenantH.Onboard)

	// School routes, keyed by the {domain} segment
	r.Route("/{domain}", func(r chi.Router) {
		r.Get("/dashboard/staff", handlers.RedirectLegacy)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Tenant(rt.ts, rt.cfg.Tenancy.RootDomain))
			r.Use(rt.jwt.Authenticate)
			r.Use(auth.RequireMember(rt.ts))

			staffOnly := auth.RequireRole(models.RoleAdmin, models.RoleTeacher, models.RoleStaff)
			adminOnly := auth.RequireRole(models.RoleAdmin)
			teachers := auth.RequireRole(models.RoleAdmin, models.RoleTeacher)

			// Admin routes
			staffH := handlers.NewStaffHandler(rt.ts)
			settingsH := handlers.NewSettingsHandler(rt.ts, auditSvc, rt.cfg.Supabase)
			r.With(adminOnly).Get("/dashboard/admin/staff", staffH.List)
			r.With(adminOnly).Get("/dashboard/admin/settings", settingsH.Get)
			r.With(adminOnly).Put("/dashboard/admin/settings", settingsH.Update)
			r.With(adminOnly).Post("/dashboard/admin/settings/logo", settingsH.UploadLogo)

			// Inventory routes
			inventoryH := handlers.NewInventoryHandler(inventorySvc)
			r.With(staffOnly).Get("/dashboard/inventory/categories", inventoryH.ListCategories)
			r.With(adminOnly).Post("/dashboard/inventory/categories", inventoryH.CreateCategory)

			// Assignment routes
			assignmentH := handlers.NewAssignmentHandler(assignmentSvc, auditSvc)
			r.Get("/dashboard/assignments", assignmentH.List)
			r.With(teachers).Post("/dashboard/assignments", assignmentH.Create)
			r.Get("/dashboard/assignments/{id}", assignmentH.Get)
			r.With(teachers).Get("/dashboard/assignments/{id}/submissions", assignmentH.Submissions)
			r.With(auth.RequireRole(models.RoleStudent)).Post("/dashboard/assignments/{id}/submissions", assignmentH.Submit)
			r.With(teachers).Put("/dashboard/submissions/{id}/grade", assignmentH.Grade)
		})
	})

	return r
}

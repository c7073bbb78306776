package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/schoolhub/internal/audit"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

// TenantHandler serves platform-operator onboarding.
type TenantHandler struct {
	svc   *tenant.Service
	audit *audit.Service
}

func NewTenantHandler(svc *tenant.Service, auditSvc *audit.Service) *TenantHandler {
	return &TenantHandler{svc: svc, audit: auditSvc}
}

func (h *TenantHandler) Onboard(w http.ResponseWriter, r *http.Request) {
	var req tenant.OnboardRequest
	if !decode(w, r, &req) {
		return
	}

	t, err := h.svc.Onboard(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.Record(r.Context(), audit.LogEntry{
		TenantID:     t.ID,
		Action:       audit.ActionTenantOnboard,
		ResourceType: "tenant",
		ResourceID:   &t.ID,
		Details:      map[string]interface{}{"slug": t.Slug, "tier": t.SubscriptionTier},
	})
	writeJSON(w, http.StatusCreated, t)
}

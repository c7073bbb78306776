package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

type StaffHandler struct {
	svc *tenant.Service
}

func NewStaffHandler(svc *tenant.Service) *StaffHandler {
	return &StaffHandler{svc: svc}
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	staff, err := h.svc.ListStaff(r.Context(), tenant.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"staff": staff, "count": len(staff)})
}

const (
	legacyStaffSuffix = "/dashboard/staff"
	adminStaffSuffix  = "/dashboard/admin/staff"
)

// RedirectLegacy sends the old staff overview to the admin staff page
// under the same school domain. It does no lookups of its own. The domain
// segment is reused exactly as the client escaped it.
func RedirectLegacy(w http.ResponseWriter, r *http.Request) {
	prefix, ok := strings.CutSuffix(r.URL.EscapedPath(), legacyStaffSuffix)
	if !ok || prefix == "" {
		prefix = "/" + url.PathEscape(chi.URLParam(r, "domain"))
	}
	target := prefix + adminStaffSuffix
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

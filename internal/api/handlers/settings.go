package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/nikhilbhutani/schoolhub/internal/audit"
	"github.com/nikhilbhutani/schoolhub/internal/config"
	"github.com/nikhilbhutani/schoolhub/internal/supabase"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

const maxLogoBytes = 2 << 20

var logoTypes = map[string]string{
	"image/png":     ".png",
	"image/jpeg":    ".jpg",
	"image/svg+xml": ".svg",
	"image/webp":    ".webp",
}

type SettingsHandler struct {
	svc      *tenant.Service
	audit    *audit.Service
	supabase config.SupabaseConfig
}

func NewSettingsHandler(svc *tenant.Service, auditSvc *audit.Service, cfg config.SupabaseConfig) *SettingsHandler {
	return &SettingsHandler{svc: svc, audit: auditSvc, supabase: cfg}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.svc.GetByID(r.Context(), tenant.IDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req tenant.SettingsUpdate
	if !decode(w, r, &req) {
		return
	}
	if req.SubscriptionTier != nil && !req.SubscriptionTier.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown subscription tier %q", *req.SubscriptionTier))
		return
	}

	t, err := h.svc.UpdateSettings(r.Context(), tenant.IDFromContext(r.Context()), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.Record(r.Context(), audit.LogEntry{
		Action:       audit.ActionSettingsUpdate,
		ResourceType: "tenant",
		ResourceID:   &t.ID,
	})
	writeJSON(w, http.StatusOK, t)
}

// UploadLogo stores the school logo in object storage and records its
// public URL. Storage writes need the service-role client, built fresh
// for this request only.
func (h *SettingsHandler) UploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLogoBytes+(64<<10))
	if err := r.ParseMultipartForm(maxLogoBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file required")
		return
	}
	defer file.Close()

	contentType := strings.ToLower(header.Header.Get("Content-Type"))
	ext, ok := logoTypes[contentType]
	if !ok {
		writeError(w, http.StatusUnsupportedMediaType, "logo must be png, jpeg, svg or webp")
		return
	}

	admin, err := supabase.NewAdminClient(h.supabase)
	if err != nil {
		slog.Error("storage client unavailable", "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage is not configured")
		return
	}

	t := tenant.FromContext(r.Context())
	objectPath := path.Join(t.ID.String(), "logo"+ext)
	if err := admin.Upload(r.Context(), h.supabase.LogoBucket, objectPath, file, contentType); err != nil {
		slog.Error("logo upload failed", "tenant_id", t.ID, "error", err)
		writeError(w, http.StatusBadGateway, "logo upload failed")
		return
	}

	url := admin.PublicURL(h.supabase.LogoBucket, objectPath)
	updated, err := h.svc.UpdateSettings(r.Context(), t.ID, tenant.SettingsUpdate{LogoURL: &url})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.Record(r.Context(), audit.LogEntry{
		Action:       audit.ActionSettingsUpdate,
		ResourceType: "tenant",
		ResourceID:   &t.ID,
		Details:      map[string]interface{}{"logo_url": url},
	})
	writeJSON(w, http.StatusOK, updated)
}

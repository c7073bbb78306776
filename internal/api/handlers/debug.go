package handlers

import (
	"net/http"
)

type DebugHandler struct {
	environment string
}

func NewDebugHandler(environment string) *DebugHandler {
	return &DebugHandler{environment: environment}
}

// Host echoes how the request reached us. It is used to check custom
// domain and proxy setups, so the response must never be cached.
func (h *DebugHandler) Host(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store, max-age=0")

	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		scheme = p
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"host":             r.Host,
		"x_forwarded_host": nullable(r.Header.Get("X-Forwarded-Host")),
		"url":              scheme + "://" + r.Host + r.URL.RequestURI(),
		"environment":      h.environment,
	})
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/schoolhub/internal/assignment"
	"github.com/nikhilbhutani/schoolhub/internal/models"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into dst and runs its validate tags.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("field %s failed %q validation", fe.Field(), fe.Tag())
}

// writeServiceError maps domain errors onto HTTP statuses. Anything
// unrecognised is logged and reported as a 500 without internals.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrCrossTenant):
		writeError(w, http.StatusForbidden, "resource belongs to another school")
	case errors.Is(err, models.ErrConflict):
		writeError(w, http.StatusConflict, "already exists")
	case errors.Is(err, assignment.ErrNotStudent):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, assignment.ErrInvalidGrade),
		errors.Is(err, assignment.ErrEmptyContent),
		errors.Is(err, assignment.ErrMissingGrade),
		errors.Is(err, tenant.ErrInvalidSlug):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.Error("request failed", "path", r.URL.Path, "tenant_id", tenant.IDFromContext(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/schoolhub/internal/assignment"
	"github.com/nikhilbhutani/schoolhub/internal/audit"
	"github.com/nikhilbhutani/schoolhub/internal/tenant"
	"github.com/nikhilbhutani/schoolhub/pkg/textextract"
)

const (
	maxSubmissionBytes = 10 << 20
	maxSubmissionChars = 200000
)

type AssignmentHandler struct {
	svc   *assignment.Service
	audit *audit.Service
}

func NewAssignmentHandler(svc *assignment.Service, auditSvc *audit.Service) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, audit: auditSvc}
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignment.CreateRequest
	if !decode(w, r, &req) {
		return
	}

	teacher := tenant.ProfileFromContext(r.Context())
	a, err := h.svc.Create(r.Context(), tenant.IDFromContext(r.Context()), teacher.ID, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	var classID *uuid.UUID
	if v := r.URL.Query().Get("class_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid class_id")
			return
		}
		classID = &id
	}

	as, err := h.svc.List(r.Context(), tenant.IDFromContext(r.Context()), classID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"assignments": as, "count": len(as)})
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	a, err := h.svc.Get(r.Context(), tenant.IDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

type submitRequest struct {
	Content string `json:"content" validate:"required,max=200000"`
}

// Submit accepts either a JSON body with inline content or a multipart
// upload whose file is converted to text. The submitter is always the
// authenticated profile.
func (h *AssignmentHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var content string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		text, status, err := readSubmissionFile(w, r)
		if err != nil {
			writeError(w, status, err.Error())
			return
		}
		content = text
	} else {
		var req submitRequest
		if !decode(w, r, &req) {
			return
		}
		content = req.Content
	}

	student := tenant.ProfileFromContext(r.Context())
	sub, err := h.svc.Submit(r.Context(), tenant.IDFromContext(r.Context()), id, student.ID, content)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func readSubmissionFile(w http.ResponseWriter, r *http.Request) (string, int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSubmissionBytes+(64<<10))
	if err := r.ParseMultipartForm(maxSubmissionBytes); err != nil {
		return "", http.StatusBadRequest, errors.New("invalid multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", http.StatusBadRequest, errors.New("file required")
	}
	defer file.Close()

	kind := textextract.Kind(header.Header.Get("Content-Type"), header.Filename)
	text, err := textextract.Extract(file, header.Size, kind, maxSubmissionChars)
	if errors.Is(err, textextract.ErrUnsupported) {
		return "", http.StatusUnsupportedMediaType, errors.New("file must be pdf, docx or plain text")
	}
	if err != nil {
		return "", http.StatusUnprocessableEntity, errors.New("could not read file")
	}
	return text, 0, nil
}

func (h *AssignmentHandler) Submissions(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	subs, err := h.svc.Submissions(r.Context(), tenant.IDFromContext(r.Context()), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"submissions": subs, "count": len(subs)})
}

func (h *AssignmentHandler) Grade(w http.ResponseWriter, r *http.Request) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	var req assignment.GradeRequest
	if !decode(w, r, &req) {
		return
	}

	sub, err := h.svc.Grade(r.Context(), tenant.IDFromContext(r.Context()), id, req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.audit.Record(r.Context(), audit.LogEntry{
		Action:       audit.ActionSubmissionGrade,
		ResourceType: "assignment_submission",
		ResourceID:   &sub.ID,
		Details:      map[string]interface{}{"grade": *req.Grade},
	})
	writeJSON(w, http.StatusOK, sub)
}

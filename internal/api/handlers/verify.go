package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/verisight-labs/verisight/internal/domain"
	"github.com/verisight-labs/verisight/internal/service"
)

type VerifyHandler struct {
	svc      *service.VerificationService
	maxBytes int64
}

func NewVerifyHandler(svc *service.VerificationService, maxBytes int64) *VerifyHandler {
	return &VerifyHandler{svc: svc, maxBytes: maxBytes}
}

type verifyResponse struct {
	Case     *domain.Case           `json:"case"`
	Analysis *domain.AnalysisResult `json:"analysis"`
}

// Submit accepts a multipart upload and runs the verification pipeline
// synchronously. The response carries the completed case plus the full
// analysis: every opinion, the cross-reference, and the critique.
func (h *VerifyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer func() { _ = file.Close() }()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	clientID := r.FormValue("client_id")
	if clientID == "" {
		clientID = "anonymous"
	}

	c, analysis, err := h.svc.Submit(r.Context(), fileBytes, header.Filename, clientID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyFile),
			errors.Is(err, service.ErrUnsupportedMedia):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "verification failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, verifyResponse{Case: c, Analysis: analysis})
}

func (h *VerifyHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}

	detail, err := h.svc.GetCase(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCaseNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get case")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (h *VerifyHandler) RequestHITL(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid case id")
		return
	}

	if err := h.svc.RequestHITL(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, service.ErrCaseNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrHITLNotRequired):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "failed to request review")
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": string(domain.CaseStatusHITLPending)})
}

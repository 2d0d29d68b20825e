package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mhalder/docshare/internal/api/dto"
	"github.com/mhalder/docshare/internal/api/middleware"
	"github.com/mhalder/docshare/internal/extraction"
)

// ExtractionHandler proxies job queries to the external extraction API on
// behalf of the authenticated user, reusing that user's cached token.
type ExtractionHandler struct {
	tokens *extraction.TokenService
	client *extraction.Client
}

func NewExtractionHandler(tokens *extraction.TokenService, client *extraction.Client) *ExtractionHandler {
	return &ExtractionHandler{tokens: tokens, client: client}
}

func writeExtractionError(w http.ResponseWriter, err error) {
	if errors.Is(err, extraction.ErrExternalService) {
		writeJSON(w, http.StatusBadGateway, dto.ErrorResponse{Error: "Extraction service unavailable"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Server error"})
}

// ListJobs handles GET /api/v1/extraction/jobs
func (h *ExtractionHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	token, err := h.tokens.GetToken(r.Context(), userID)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	jobs, err := h.client.ListJobs(r.Context(), token)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"jobs": jobs})
}

// GetJob handles GET /api/v1/extraction/jobs/:jobId
func (h *ExtractionHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	jobID := chi.URLParam(r, "jobId")
	if jobID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Job ID is required"})
		return
	}

	token, err := h.tokens.GetToken(r.Context(), userID)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	job, err := h.client.GetJob(r.Context(), jobID, token)
	if err != nil {
		writeExtractionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

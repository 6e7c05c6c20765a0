package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperengineering/shortlens/internal/store"
	"github.com/hyperengineering/shortlens/internal/types"
	"github.com/hyperengineering/shortlens/internal/validation"
)

// Handler implements the API handlers
type Handler struct {
	store   store.JobStore
	apiKey  string
	version string
	model   string
}

// NewHandler creates a new Handler over the job store.
func NewHandler(s store.JobStore, apiKey, version, model string) *Handler {
	return &Handler{
		store:   s,
		apiKey:  apiKey,
		version: version,
		model:   model,
	}
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	OracleModel string `json:"oracle_model"`
}

// Health returns the health status
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:      "healthy",
		Version:     h.version,
		OracleModel: h.model,
	}
	writeJSON(w, http.StatusOK, resp)
}

// SubmitJobRequest is the job submission payload. Exactly one of the
// two source fields must be set.
type SubmitJobRequest struct {
	VideoURL string `json:"video_url,omitempty"`
	FileURI  string `json:"file_uri,omitempty"`
}

// SubmitJob handles POST /api/v1/jobs
func (h *Handler) SubmitJob(w http.ResponseWriter, r *http.Request) {
	var req SubmitJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteProblem(w, r, http.StatusBadRequest, fmt.Sprintf("Invalid JSON: %s", err.Error()))
		return
	}

	if errs := validation.ValidateSource(req.VideoURL, req.FileURI); len(errs) > 0 {
		WriteProblemWithErrors(w, r, "Request contains invalid fields", errs)
		return
	}

	job, err := h.store.CreateJob(r.Context(), req.VideoURL, req.FileURI)
	if err != nil {
		slog.Error("job creation failed", "error", err)
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// GetJob handles GET /api/v1/jobs/{id}
func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		MapStoreError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// ListJobs handles GET /api/v1/jobs
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			WriteProblem(w, r, http.StatusBadRequest, "limit must be an integer between 1 and 500")
			return
		}
		limit = n
	}

	jobs, err := h.store.ListJobs(r.Context(), limit)
	if err != nil {
		slog.Error("job listing failed", "error", err)
		MapStoreError(w, r, err)
		return
	}
	if jobs == nil {
		jobs = []types.AnalysisJob{}
	}

	writeJSON(w, http.StatusOK, jobs)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

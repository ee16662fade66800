package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/stagecrew/onboard-engine/internal/models"
	"github.com/stagecrew/onboard-engine/internal/solver"
	"github.com/stagecrew/onboard-engine/internal/store"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "repository not ready")
		return
	}

	if err := s.solutions.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "solution store not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Solution handlers

func (s *Server) handleSolve(w http.ResponseWriter, r *http.Request) {
	var req models.SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	pool, err := s.repo.ListCandidates(r.Context())
	if err != nil {
		slog.Error("failed to load candidate pool", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to load candidate pool")
		return
	}

	sol, err := s.allocator.Solve(pool, req)
	if err != nil {
		var verr *solver.ValidationError
		switch {
		case errors.As(err, &verr):
			respondError(w, http.StatusBadRequest, "validation_error", verr.Error())
		case errors.Is(err, solver.ErrNoCapacity):
			respondError(w, http.StatusUnprocessableEntity, "no_capacity", "at least one group must have positive capacity")
		default:
			slog.Error("solve failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal_error", "failed to compute solution")
		}
		return
	}

	if err := s.solutions.Put(r.Context(), sol); err != nil {
		slog.Error("failed to store solution", "error", err, "solution_id", sol.ID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to store solution")
		return
	}

	slog.Info("solution computed",
		"solution_id", sol.ID,
		"assigned", sol.Metrics.TotalAssigned,
		"unassigned", sol.Metrics.TotalUnassigned,
		"excluded", sol.Metrics.TotalExcluded,
	)

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"solution": sol,
	})
}

func (s *Server) handleGetSolution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "solution id is required")
		return
	}

	sol, err := s.solutions.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSolutionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "solution not found")
			return
		}
		slog.Error("failed to get solution", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get solution")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"solution": sol,
	})
}

func (s *Server) handleDeleteSolution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "solution id is required")
		return
	}

	if err := s.solutions.Delete(r.Context(), id); err != nil {
		slog.Error("failed to delete solution", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to delete solution")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "solution deleted",
	})
}

func (s *Server) handleGetConflicts(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "solution id is required")
		return
	}

	conflicts, err := s.detector.Detect(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrSolutionNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "solution not found")
			return
		}
		slog.Error("conflict detection failed", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to detect conflicts")
		return
	}

	if conflicts == nil {
		conflicts = []models.Conflict{}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"conflicts": conflicts,
		"total":     len(conflicts),
	})
}

// Group handlers

func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	// Prefer the catalog when one is loaded; fall back to the repository.
	if s.catalog != nil && s.catalog.Len() > 0 {
		groups := s.catalog.List()
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"groups": groups,
			"total":  len(groups),
		})
		return
	}

	groups, err := s.repo.ListGroups(r.Context())
	if err != nil {
		slog.Error("failed to list groups", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list groups")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"groups": groups,
		"total":  len(groups),
	})
}

// Candidate handlers

func (s *Server) handleListCandidates(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.repo.ListCandidates(r.Context())
	if err != nil {
		slog.Error("failed to list candidates", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list candidates")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"total":      len(candidates),
	})
}

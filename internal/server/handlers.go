package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/talent-sourcer/internal/types"
)

// TokenRequest represents the request body for /auth/token
type TokenRequest struct {
	ClientID string `json:"client_id" validate:"required"`
	Secret   string `json:"secret" validate:"required"`
}

// TokenResponse represents the response for /auth/token
type TokenResponse struct {
	Token string `json:"token"`
}

// IngestResponse represents the response for POST /records
type IngestResponse struct {
	Accepted    int                `json:"accepted"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
}

// PassResponse represents the response for POST /passes
type PassResponse struct {
	SnapshotVersion int `json:"snapshot_version"`
	Identities      int `json:"identities"`
	Profiles        int `json:"profiles"`
	Splits          int `json:"splits"`
}

// MatchRequest represents the request body for /match
type MatchRequest struct {
	Text     string                   `json:"text" validate:"required"`
	Filters  types.RequirementFilters `json:"filters"`
	Cursor   string                   `json:"cursor,omitempty"`
	PageSize int                      `json:"page_size,omitempty" validate:"gte=0,lte=100"`
}

var validate = validator.New()

// requireAuth wraps a handler with bearer-token authentication.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			s.errorResponse(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := s.jwtService.ValidateToken(token); err != nil {
			s.errorResponse(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

// handleToken exchanges the shared API secret for a bearer token
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Secret != s.apiSecret {
		err := &ErrInvalidCredentials{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	token, err := s.jwtService.GenerateToken(req.ClientID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	s.jsonResponse(w, http.StatusOK, TokenResponse{Token: token})
}

// handleIngest accepts a raw record batch
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	n, diags, err := s.engine.IngestRaw(body)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if s.store != nil {
		// Persisting the working set is best effort; the upsert keeps
		// the freshest version per key, so replaying it is harmless.
		if err := s.store.UpsertRecords(r.Context(), s.engine.WorkingSet()); err != nil {
			s.log.Error("failed to persist records", zap.Error(err))
		}
	}

	s.jsonResponse(w, http.StatusAccepted, IngestResponse{Accepted: n, Diagnostics: diags})
}

// handleRunPass triggers a resolution-and-merge pass
func (s *Server) handleRunPass(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.RunPass(r.Context())
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if s.store != nil {
		if err := s.store.SaveSnapshot(r.Context(), snap); err != nil {
			s.log.Error("failed to persist snapshot", zap.Int("version", snap.Version), zap.Error(err))
		}
	}

	s.jsonResponse(w, http.StatusOK, PassResponse{
		SnapshotVersion: snap.Version,
		Identities:      len(snap.Identities),
		Profiles:        len(snap.Profiles),
		Splits:          len(snap.Splits),
	})
}

// handleMatch scores published profiles against a requirement
func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	requirement := types.Requirement{Text: req.Text, Filters: req.Filters}
	result, err := s.engine.Query(r.Context(), requirement, req.Cursor, req.PageSize)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	if s.store != nil {
		// Cached scores are advisory only; a write failure never fails
		// the query.
		if err := s.store.SaveMatchResults(r.Context(), result.RequirementID, result.SnapshotVersion, result.Results); err != nil {
			s.log.Error("failed to cache match scores", zap.Error(err))
		}
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleListProfiles lists published profiles
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Snapshot()

	profiles := snap.Profiles
	if source := r.URL.Query().Get("source"); source != "" {
		filtered := make([]types.Profile, 0, len(profiles))
		for _, p := range profiles {
			if p.HasSource(source) {
				filtered = append(filtered, p)
			}
		}
		profiles = filtered
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		if limit < len(profiles) {
			profiles = profiles[:limit]
		}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"snapshot_version": snap.Version,
		"profiles":         profiles,
	})
}

// handleGetProfile returns one profile by identity ID
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	profile, ok := s.engine.Snapshot().Profile(id)
	if !ok {
		err := &ErrProfileNotFound{ProfileID: id}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, profile)
}

// handleSnapshot returns metadata about the published snapshot
func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"version":      snap.Version,
		"published_at": snap.PublishedAt,
		"identities":   len(snap.Identities),
		"profiles":     len(snap.Profiles),
		"splits":       snap.Splits,
		"diagnostics":  snap.Diagnostics,
	})
}

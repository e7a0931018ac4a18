package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/types"
)

// handleCreateDraft stores a manually supplied email draft.
func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "Validation failed: "+err.Error())
		return
	}

	if !s.requireLead(w, r, leadID) {
		return
	}

	draft, err := s.db.CreateDraft(r.Context(), db.DraftParams{
		LeadID:       leadID,
		Subject:      req.Subject,
		Body:         req.Body,
		Agent1Output: req.Agent1Output,
		Verdict:      req.Verdict,
		Decision:     req.Decision,
	})
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, draft)
}

// handleListDrafts lists a lead's drafts, newest first.
func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireLead(w, r, leadID) {
		return
	}

	drafts, err := s.db.ListDrafts(r.Context(), leadID,
		queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if drafts == nil {
		drafts = []db.EmailDraft{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"items": drafts})
}

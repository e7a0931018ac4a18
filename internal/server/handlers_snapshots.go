package server

import (
	"encoding/json"
	"net/http"

	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/types"
)

// handleCreateSnapshot stores a manually supplied website snapshot.
func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.CreateSnapshotRequest
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

	snapshot, err := s.db.CreateSnapshot(r.Context(), leadID, req.URL, req.RawText, req.FetchedAt)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, snapshot)
}

// handleListSnapshots lists a lead's snapshots, newest fetch first.
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if !s.requireLead(w, r, leadID) {
		return
	}

	snapshots, err := s.db.ListSnapshots(r.Context(), leadID,
		queryInt(r, "limit", 20), queryInt(r, "offset", 0))
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []db.WebsiteSnapshot{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"items": snapshots})
}

package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/types"
)

// ListLeadsResponse is the paginated response for GET /api/v1/leads.
type ListLeadsResponse struct {
	Items []db.Lead `json:"items"`
	Total int       `json:"total"`
}

// handleCreateLead creates a new lead.
func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var req types.CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "Validation failed: "+err.Error())
		return
	}

	lead, err := s.db.CreateLead(r.Context(), &req)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusCreated, lead)
}

// handleListLeads lists leads with optional status and company filters.
func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	opts := db.ListLeadsOptions{
		Status: r.URL.Query().Get("status"),
		Query:  r.URL.Query().Get("q"),
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}

	leads, total, err := s.db.ListLeads(r.Context(), opts)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if leads == nil {
		leads = []db.Lead{}
	}

	s.jsonResponse(w, http.StatusOK, ListLeadsResponse{Items: leads, Total: total})
}

// handleGetLead retrieves a lead by ID.
func (s *Server) handleGetLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	lead, err := s.db.GetLead(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if lead == nil {
		s.errorResponse(w, http.StatusNotFound, "Lead not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, lead)
}

// handleUpdateLead applies a partial lead update.
func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req types.UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, "Validation failed: "+err.Error())
		return
	}

	lead, err := s.db.UpdateLead(r.Context(), id, &req)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if lead == nil {
		s.errorResponse(w, http.StatusNotFound, "Lead not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, lead)
}

// pathUUID parses the named path parameter as a UUID, writing a 400 on failure.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	raw := r.PathValue(name)
	if raw == "" {
		s.errorResponse(w, http.StatusBadRequest, "Lead ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid lead ID format")
		return uuid.Nil, false
	}
	return id, true
}

// requireLead writes a 404 (or 500 on lookup failure) and returns false when
// the lead does not exist.
func (s *Server) requireLead(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	lead, err := s.db.GetLead(r.Context(), id)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return false
	}
	if lead == nil {
		s.errorResponse(w, http.StatusNotFound, "Lead not found")
		return false
	}
	return true
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, defaultValue int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}

package server

import (
	"net/http"
)

// handleIngestWebsite fetches the lead's website and stores a snapshot.
func (s *Server) handleIngestWebsite(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.orchestrator.IngestWebsite(r.Context(), leadID)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, result)
}

// handleRunAgent1 runs signal extraction against the latest snapshot.
func (s *Server) handleRunAgent1(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.orchestrator.RunAgent1(r.Context(), leadID)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleRunAgent2 drafts an outreach email from the latest signals.
func (s *Server) handleRunAgent2(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	draft, err := s.orchestrator.RunAgent2(r.Context(), leadID)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, draft)
}

// handleRunAgent3 verifies the most recent draft and applies the verdict.
func (s *Server) handleRunAgent3(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.orchestrator.RunAgent3(r.Context(), leadID)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleLatestContext returns the lead's latest pipeline artifacts.
func (s *Server) handleLatestContext(w http.ResponseWriter, r *http.Request) {
	leadID, ok := s.pathUUID(w, r, "id")
	if !ok {
		return
	}

	result, err := s.orchestrator.GetLatestContext(r.Context(), leadID)
	if err != nil {
		s.pipelineError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

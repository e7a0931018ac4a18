// Package server provides the HTTP REST API for the outreach backend.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/outreach-crm/internal/ingestion"
	"github.com/jonathan/outreach-crm/internal/llm"
	"github.com/jonathan/outreach-crm/internal/pipeline"
	"github.com/jonathan/outreach-crm/internal/schemas"
)

// HTTPStatus maps pipeline and client errors to response status codes.
// Quota exhaustion is checked before the generic rate-limit case so its
// non-retryable hint survives the mapping.
func HTTPStatus(err error) int {
	var (
		configErr     *llm.ConfigurationError
		quotaErr      *llm.QuotaExceededError
		rateLimitErr  *llm.RateLimitError
		transportErr  *llm.TransportError
		remoteErr     *llm.RemoteServiceError
		validationErr *schemas.ValidationError
		notFoundErr   *pipeline.NotFoundError
		noURLErr      *pipeline.NoWebsiteURLError
		fetchErr      *ingestion.FetchError
	)

	switch {
	case errors.As(err, &configErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &quotaErr):
		return http.StatusTooManyRequests
	case errors.As(err, &rateLimitErr):
		return http.StatusTooManyRequests
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	case errors.As(err, &remoteErr):
		return http.StatusBadGateway
	case errors.As(err, &validationErr):
		return http.StatusBadGateway
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.As(err, &noURLErr):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// pipelineError writes an error response for a failed pipeline operation,
// flagging quota exhaustion as non-retryable.
func (s *Server) pipelineError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	body := map[string]any{"error": err.Error()}
	var quotaErr *llm.QuotaExceededError
	if errors.As(err, &quotaErr) {
		body["retryable"] = false
	}

	s.jsonResponse(w, status, body)
}

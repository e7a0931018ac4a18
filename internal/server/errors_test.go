package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/outreach-crm/internal/ingestion"
	"github.com/jonathan/outreach-crm/internal/llm"
	"github.com/jonathan/outreach-crm/internal/pipeline"
	"github.com/jonathan/outreach-crm/internal/schemas"
)

func TestHTTPStatusMapping(t *testing.T) {
	leadID := uuid.New()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"configuration", &llm.ConfigurationError{Missing: "OPENAI_API_KEY"}, http.StatusServiceUnavailable},
		{"quota exceeded", &llm.QuotaExceededError{RateLimitError: llm.RateLimitError{Message: "quota"}}, http.StatusTooManyRequests},
		{"rate limited", &llm.RateLimitError{Message: "slow down"}, http.StatusTooManyRequests},
		{"transport", &llm.TransportError{Cause: errors.New("connection refused")}, http.StatusBadGateway},
		{"remote service", &llm.RemoteServiceError{StatusCode: 500, Message: "boom"}, http.StatusBadGateway},
		{"contract violation", &schemas.ValidationError{Path: "subject", Message: "blank"}, http.StatusBadGateway},
		{"not found", &pipeline.NotFoundError{Resource: "snapshot", LeadID: leadID}, http.StatusNotFound},
		{"no website url", &pipeline.NoWebsiteURLError{LeadID: leadID}, http.StatusBadRequest},
		{"fetch failure", &ingestion.FetchError{URL: "https://x.example", StatusCode: 502}, http.StatusBadGateway},
		{"unknown", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("run failed: %w", &pipeline.NotFoundError{Resource: "lead", LeadID: leadID}), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

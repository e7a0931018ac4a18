package pipeline

import (
	"fmt"

	"github.com/google/uuid"
)

// NotFoundError indicates an unmet orchestrator precondition: the lead, or a
// required upstream artifact, does not exist. Never retried and never treated
// as a pipeline fault; the boundary maps it to a not-found response.
type NotFoundError struct {
	Resource string
	LeadID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found for lead %s", e.Resource, e.LeadID)
}

// NoWebsiteURLError indicates ingestion was requested for a lead without a
// website URL.
type NoWebsiteURLError struct {
	LeadID uuid.UUID
}

func (e *NoWebsiteURLError) Error() string {
	return fmt.Sprintf("lead %s has no website URL", e.LeadID)
}

package db

import (
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-crm/internal/types"
)

// MaxSubjectLength is the subject column width; Agent 3's final subject is
// truncated to fit when it overwrites a draft.
const MaxSubjectLength = 255

// TruncateSubject caps a subject to the column width. VARCHAR(255) counts
// characters, so the cut is on rune boundaries, never mid-rune.
func TruncateSubject(subject string) string {
	runes := []rune(subject)
	if len(runes) <= MaxSubjectLength {
		return subject
	}
	return string(runes[:MaxSubjectLength])
}

// EmailDraft represents a row in the email_drafts table. Agent1Output and
// Verdict are JSONB columns; freshly drafted rows carry only a source marker
// in Verdict, verified rows carry the full verdict.
type EmailDraft struct {
	ID           uuid.UUID           `json:"id"`
	LeadID       uuid.UUID           `json:"lead_id"`
	Subject      string              `json:"subject"`
	Body         string              `json:"body"`
	Agent1Output *types.Agent1Output `json:"agent1_output,omitempty"`
	Verdict      *types.DraftVerdict `json:"agent3_verdict,omitempty"`
	Decision     string              `json:"decision"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// DraftParams holds the fields for appending a new draft artifact.
type DraftParams struct {
	LeadID       uuid.UUID
	Subject      string
	Body         string
	Agent1Output *types.Agent1Output
	Verdict      *types.DraftVerdict
	Decision     string
}

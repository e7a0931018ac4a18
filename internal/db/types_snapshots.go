package db

import (
	"time"

	"github.com/google/uuid"
)

// WebsiteSnapshot represents a row in the website_snapshots table: the
// captured text content of a lead's website at a point in time.
type WebsiteSnapshot struct {
	ID        uuid.UUID `json:"id"`
	LeadID    uuid.UUID `json:"lead_id"`
	URL       string    `json:"url"`
	RawText   string    `json:"raw_text"`
	FetchedAt time.Time `json:"fetched_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

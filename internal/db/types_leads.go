package db

import (
	"time"

	"github.com/google/uuid"
)

// Lead represents a row in the leads table.
type Lead struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Title      *string   `json:"title,omitempty"`
	Company    string    `json:"company"`
	Industry   *string   `json:"industry,omitempty"`
	Location   *string   `json:"location,omitempty"`
	WebsiteURL *string   `json:"website_url,omitempty"`
	Email      *string   `json:"email,omitempty"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ListLeadsOptions holds optional filters for listing leads.
type ListLeadsOptions struct {
	Status string
	Query  string // substring match on company
	Limit  int
	Offset int
}

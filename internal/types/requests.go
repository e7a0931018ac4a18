package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// CreateLeadRequest represents the request to create a new lead.
type CreateLeadRequest struct {
	Name       string  `json:"name" validate:"required,min=1,max=255"`
	Title      *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Company    string  `json:"company" validate:"required,min=1,max=255"`
	Industry   *string `json:"industry,omitempty" validate:"omitempty,max=255"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=255"`
	WebsiteURL *string `json:"website_url,omitempty" validate:"omitempty,max=500"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Source     string  `json:"source" validate:"required,min=1,max=100"`
	Status     string  `json:"status,omitempty" validate:"omitempty,min=1,max=50"`
}

// UpdateLeadRequest represents a partial lead update. Nil fields are left unchanged.
type UpdateLeadRequest struct {
	Name       *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Title      *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Company    *string `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	Industry   *string `json:"industry,omitempty" validate:"omitempty,max=255"`
	Location   *string `json:"location,omitempty" validate:"omitempty,max=255"`
	WebsiteURL *string `json:"website_url,omitempty" validate:"omitempty,max=500"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	Source     *string `json:"source,omitempty" validate:"omitempty,min=1,max=100"`
	Status     *string `json:"status,omitempty" validate:"omitempty,min=1,max=50"`
}

// CreateSnapshotRequest represents a manually supplied website snapshot.
type CreateSnapshotRequest struct {
	URL       string     `json:"url" validate:"required,min=1,max=500"`
	RawText   string     `json:"raw_text" validate:"required,min=1"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// CreateDraftRequest represents a manually supplied email draft.
type CreateDraftRequest struct {
	Subject      string        `json:"subject" validate:"required,min=1,max=255"`
	Body         string        `json:"body" validate:"required,min=1"`
	Agent1Output *Agent1Output `json:"agent1_output,omitempty"`
	Verdict      *DraftVerdict `json:"agent3_verdict,omitempty"`
	Decision     string        `json:"decision,omitempty" validate:"omitempty,min=1,max=20"`
}

// Validate validates the CreateLeadRequest using the validator.
func (r *CreateLeadRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the UpdateLeadRequest using the validator.
func (r *UpdateLeadRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateSnapshotRequest using the validator.
func (r *CreateSnapshotRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CreateDraftRequest using the validator.
func (r *CreateDraftRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

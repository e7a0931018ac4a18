package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/outreach-crm/internal/config"
	"github.com/jonathan/outreach-crm/internal/llm"
	"github.com/jonathan/outreach-crm/internal/schemas"
	"github.com/jonathan/outreach-crm/internal/types"
)

// DraftInput carries the lead identity and prior pipeline state the drafter
// works from. Agent1 must already exist; the orchestrator enforces that.
type DraftInput struct {
	LeadName     string
	Company      string
	WebsiteURL   *string
	SnapshotText string
	Agent1       *types.Agent1Output
}

// Drafter is Agent 2: it writes one factual outreach draft from lead context.
type Drafter struct {
	client *lazyClient
}

// NewDrafter creates the drafter from process configuration.
func NewDrafter(cfg *config.Config) *Drafter {
	return &Drafter{client: &lazyClient{cfg: llm.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		MaxRetries:  cfg.MaxRetries,
		BaseBackoff: cfg.BaseBackoff,
		Timeout:     cfg.RequestTimeout,
	}}}
}

// Run produces a subject/body draft plus the signal it leaned on.
func (d *Drafter) Run(ctx context.Context, in DraftInput) (*types.Agent2Output, error) {
	client, err := d.client.get()
	if err != nil {
		return nil, err
	}

	log.Printf("agent2: request start company=%s text_length=%d", in.Company, len(in.SnapshotText))

	leadContext := map[string]any{
		"lead_name":     in.LeadName,
		"company":       in.Company,
		"website_url":   in.WebsiteURL,
		"agent1_output": in.Agent1,
	}
	contextJSON, err := json.Marshal(leadContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal lead context: %w", err)
	}

	userText := fmt.Sprintf(
		"Lead context (JSON):\n%s\n\nWebsite snapshot text:\n%s\n\nReturn subject, email_body, and used_signal.",
		contextJSON, in.SnapshotText,
	)

	input := []llm.Message{
		llm.TextMessage(llm.RoleSystem, agent2SystemPrompt),
		llm.TextMessage(llm.RoleUser, userText),
	}

	raw, err := client.CreateStructured(ctx, input, llm.SchemaFormat(schemas.Agent2FormatName, schemas.Agent2Schema))
	if err != nil {
		return nil, err
	}

	out, err := schemas.ValidateAgent2(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("agent2: request end company=%s", in.Company)
	return out, nil
}

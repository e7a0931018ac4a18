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

// verifierTemperature is kept low to minimize creative drift: the verifier
// may adjust tone, never facts.
const verifierTemperature = 0.1

// VerifyInput is the full context Agent 3 judges a draft against.
type VerifyInput struct {
	LeadName     string
	Company      string
	WebsiteURL   *string
	SnapshotText string
	Agent1       *types.Agent1Output
	DraftSubject string
	DraftBody    string
}

// Verifier is Agent 3: it decides send/hold over a draft and may return a
// tone-edited final email. Unlike the other agents its client retries 5xx.
type Verifier struct {
	client *lazyClient
}

// NewVerifier creates the verifier from process configuration.
func NewVerifier(cfg *config.Config) *Verifier {
	temperature := verifierTemperature
	return &Verifier{client: &lazyClient{cfg: llm.Config{
		APIKey:            cfg.APIKey,
		Model:             cfg.Model,
		BaseURL:           cfg.BaseURL,
		Temperature:       &temperature,
		MaxRetries:        cfg.MaxRetries,
		BaseBackoff:       cfg.BaseBackoff,
		Timeout:           cfg.RequestTimeout,
		RetryServerErrors: true,
	}}}
}

// Run verifies a draft and returns the verdict.
func (v *Verifier) Run(ctx context.Context, in VerifyInput) (*types.Agent3Verdict, error) {
	client, err := v.client.get()
	if err != nil {
		return nil, err
	}

	log.Printf("agent3: verifier start company=%s", in.Company)

	leadContext := map[string]any{
		"lead_name":     in.LeadName,
		"company":       in.Company,
		"website_url":   in.WebsiteURL,
		"agent1_output": in.Agent1,
		"draft_email": map[string]string{
			"subject":    in.DraftSubject,
			"email_body": in.DraftBody,
		},
	}
	contextJSON, err := json.Marshal(leadContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verify context: %w", err)
	}

	userText := fmt.Sprintf(
		"Verify this outbound email.\n\nContext (JSON):\n%s\n\nWebsite snapshot text:\n%s",
		contextJSON, in.SnapshotText,
	)

	input := []llm.Message{
		llm.TextMessage(llm.RoleSystem, agent3SystemPrompt),
		llm.TextMessage(llm.RoleUser, userText),
	}

	raw, err := client.CreateStructured(ctx, input, llm.SchemaFormat(schemas.Agent3FormatName, schemas.Agent3Schema))
	if err != nil {
		return nil, err
	}

	verdict, err := schemas.ValidateAgent3(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("agent3: verifier end company=%s decision=%s", in.Company, verdict.Decision)
	return verdict, nil
}

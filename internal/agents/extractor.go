package agents

import (
	"context"
	"log"

	"github.com/jonathan/outreach-crm/internal/config"
	"github.com/jonathan/outreach-crm/internal/llm"
	"github.com/jonathan/outreach-crm/internal/schemas"
	"github.com/jonathan/outreach-crm/internal/types"
)

// Extractor is Agent 1: it turns raw website text into a structured signal
// report. Its client does not retry server errors.
type Extractor struct {
	client *lazyClient
}

// NewExtractor creates the signal extractor from process configuration.
func NewExtractor(cfg *config.Config) *Extractor {
	return &Extractor{client: &lazyClient{cfg: llm.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		MaxRetries:  cfg.MaxRetries,
		BaseBackoff: cfg.BaseBackoff,
		Timeout:     cfg.RequestTimeout,
	}}}
}

// Run extracts quote-backed signals from snapshot text.
func (e *Extractor) Run(ctx context.Context, snapshotText string) (*types.Agent1Output, error) {
	client, err := e.client.get()
	if err != nil {
		return nil, err
	}

	log.Printf("agent1: request start text_length=%d", len(snapshotText))

	input := []llm.Message{
		llm.TextMessage(llm.RoleSystem, agent1SystemPrompt),
		llm.TextMessage(llm.RoleUser, "Website text to analyze:\n\n"+snapshotText),
	}

	raw, err := client.CreateStructured(ctx, input, llm.SchemaFormat(schemas.Agent1FormatName, schemas.Agent1Schema))
	if err != nil {
		return nil, err
	}

	out, err := schemas.ValidateAgent1(raw)
	if err != nil {
		return nil, err
	}

	log.Printf("agent1: request end hooks=%d pains=%d", len(out.RapportHooks), len(out.PainPoints))
	return out, nil
}

// Package pipeline sequences the three agents against persisted lead state.
// Each run reads its inputs fresh from the store and appends its output as a
// new artifact; the single exception is Agent 3's Draft -> Verified update.
package pipeline

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/outreach-crm/internal/agents"
	"github.com/jonathan/outreach-crm/internal/db"
	"github.com/jonathan/outreach-crm/internal/types"
)

// verifiableDraftWindow bounds the recent-history scan for the draft Agent 3
// should verify. Leads with more drafts than this between Agent 2 runs could
// cause a re-run to miss its target; acceptable at expected volumes.
const verifiableDraftWindow = 25

// emptyTextPlaceholder is stored when a fetched page yields no extractable
// text. Agent 1 receives the placeholder rather than failing the pipeline.
const emptyTextPlaceholder = "(no extractable website text)"

// Store is the persistence collaborator the orchestrator reads and writes.
// *db.DB implements it.
type Store interface {
	GetLead(ctx context.Context, id uuid.UUID) (*db.Lead, error)
	LatestSnapshot(ctx context.Context, leadID uuid.UUID) (*db.WebsiteSnapshot, error)
	CreateSnapshot(ctx context.Context, leadID uuid.UUID, url, rawText string, fetchedAt *time.Time) (*db.WebsiteSnapshot, error)
	LatestAgent1Draft(ctx context.Context, leadID uuid.UUID) (*db.EmailDraft, error)
	RecentDrafts(ctx context.Context, leadID uuid.UUID, limit int) ([]db.EmailDraft, error)
	CreateDraft(ctx context.Context, p db.DraftParams) (*db.EmailDraft, error)
	ApplyVerdict(ctx context.Context, draftID uuid.UUID, verdict *types.Agent3Verdict) (*db.EmailDraft, error)
}

// SignalExtractor runs Agent 1.
type SignalExtractor interface {
	Run(ctx context.Context, snapshotText string) (*types.Agent1Output, error)
}

// Drafter runs Agent 2.
type Drafter interface {
	Run(ctx context.Context, in agents.DraftInput) (*types.Agent2Output, error)
}

// Verifier runs Agent 3.
type Verifier interface {
	Run(ctx context.Context, in agents.VerifyInput) (*types.Agent3Verdict, error)
}

// SnapshotFetcher retrieves and extracts website text for ingestion.
type SnapshotFetcher interface {
	Snapshot(ctx context.Context, url string) (string, error)
}

// Orchestrator drives the lead pipeline:
// NoSnapshot -> HasSnapshot -> HasAgent1 -> HasDraft -> Verified(send|hold).
//
// Concurrent runs against the same lead are not mutually excluded: two
// simultaneous RunAgent2 calls may read the same Agent 1 output and each
// append a draft. Latest-reads are last-write-wins; a known, accepted race.
type Orchestrator struct {
	store     Store
	extractor SignalExtractor
	drafter   Drafter
	verifier  Verifier
	fetcher   SnapshotFetcher
}

// New creates an orchestrator over the given collaborators.
func New(store Store, extractor SignalExtractor, drafter Drafter, verifier Verifier, fetcher SnapshotFetcher) *Orchestrator {
	return &Orchestrator{
		store:     store,
		extractor: extractor,
		drafter:   drafter,
		verifier:  verifier,
		fetcher:   fetcher,
	}
}

// IngestResult reports a completed website ingestion.
type IngestResult struct {
	SnapshotID    uuid.UUID `json:"id"`
	FetchedAt     time.Time `json:"fetched_at"`
	RawTextLength int       `json:"raw_text_length"`
}

// IngestWebsite fetches the lead's website, extracts its text, and appends a
// snapshot. Empty extraction stores a sentinel placeholder, not an error.
func (o *Orchestrator) IngestWebsite(ctx context.Context, leadID uuid.UUID) (*IngestResult, error) {
	lead, err := o.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &NotFoundError{Resource: "lead", LeadID: leadID}
	}
	if lead.WebsiteURL == nil || *lead.WebsiteURL == "" {
		return nil, &NoWebsiteURLError{LeadID: leadID}
	}

	log.Printf("pipeline: ingest start lead_id=%s url=%s", leadID, *lead.WebsiteURL)
	text, err := o.fetcher.Snapshot(ctx, *lead.WebsiteURL)
	if err != nil {
		return nil, err
	}
	if text == "" {
		text = emptyTextPlaceholder
	}

	snapshot, err := o.store.CreateSnapshot(ctx, leadID, *lead.WebsiteURL, text, nil)
	if err != nil {
		return nil, err
	}

	log.Printf("pipeline: ingest end lead_id=%s snapshot_id=%s bytes=%d", leadID, snapshot.ID, len(text))
	return &IngestResult{
		SnapshotID:    snapshot.ID,
		FetchedAt:     snapshot.FetchedAt,
		RawTextLength: len(snapshot.RawText),
	}, nil
}

// Agent1Result reports a completed signal extraction run.
type Agent1Result struct {
	LeadID       uuid.UUID           `json:"lead_id"`
	SnapshotID   uuid.UUID           `json:"snapshot_id"`
	DraftID      uuid.UUID           `json:"draft_id"`
	Agent1Output *types.Agent1Output `json:"agent1_output"`
}

// RunAgent1 extracts signals from the lead's latest snapshot and appends a
// new artifact bearing the output.
func (o *Orchestrator) RunAgent1(ctx context.Context, leadID uuid.UUID) (*Agent1Result, error) {
	_, snapshot, err := o.requireSnapshot(ctx, leadID)
	if err != nil {
		return nil, err
	}

	log.Printf("pipeline: agent1 start lead_id=%s snapshot_id=%s", leadID, snapshot.ID)
	output, err := o.extractor.Run(ctx, snapshot.RawText)
	if err != nil {
		return nil, err
	}

	draft, err := o.store.CreateDraft(ctx, db.DraftParams{
		LeadID:       leadID,
		Subject:      "Agent 1 signals",
		Body:         output.WebsiteSummary.OneLiner,
		Agent1Output: output,
		Decision:     "agent1",
	})
	if err != nil {
		return nil, err
	}

	log.Printf("pipeline: agent1 end lead_id=%s draft_id=%s", leadID, draft.ID)
	return &Agent1Result{
		LeadID:       leadID,
		SnapshotID:   snapshot.ID,
		DraftID:      draft.ID,
		Agent1Output: output,
	}, nil
}

// RunAgent2 drafts an outreach email from the latest snapshot and the latest
// Agent 1 output, appending a new agent2-sourced draft.
func (o *Orchestrator) RunAgent2(ctx context.Context, leadID uuid.UUID) (*db.EmailDraft, error) {
	lead, snapshot, err := o.requireSnapshot(ctx, leadID)
	if err != nil {
		return nil, err
	}

	agent1Draft, err := o.store.LatestAgent1Draft(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if agent1Draft == nil || agent1Draft.Agent1Output == nil {
		return nil, &NotFoundError{Resource: "agent1 output", LeadID: leadID}
	}

	log.Printf("pipeline: agent2 start lead_id=%s", leadID)
	output, err := o.drafter.Run(ctx, agents.DraftInput{
		LeadName:     lead.Name,
		Company:      lead.Company,
		WebsiteURL:   lead.WebsiteURL,
		SnapshotText: snapshot.RawText,
		Agent1:       agent1Draft.Agent1Output,
	})
	if err != nil {
		return nil, err
	}

	draft, err := o.store.CreateDraft(ctx, db.DraftParams{
		LeadID:       leadID,
		Subject:      db.TruncateSubject(output.Subject),
		Body:         output.EmailBody,
		Agent1Output: agent1Draft.Agent1Output,
		Verdict:      &types.DraftVerdict{Source: types.VerdictSourceAgent2},
		Decision:     "draft",
	})
	if err != nil {
		return nil, err
	}

	log.Printf("pipeline: agent2 end lead_id=%s draft_id=%s", leadID, draft.ID)
	return draft, nil
}

// Agent3Result reports a completed verification run.
type Agent3Result struct {
	LeadID     uuid.UUID        `json:"lead_id"`
	DraftID    uuid.UUID        `json:"draft_id"`
	Decision   string           `json:"decision"`
	Issues     []string         `json:"issues"`
	FinalEmail types.FinalEmail `json:"final_email"`
}

// RunAgent3 verifies the most recent verifiable draft and applies the
// verdict in place. Preconditions are checked before any remote call.
func (o *Orchestrator) RunAgent3(ctx context.Context, leadID uuid.UUID) (*Agent3Result, error) {
	lead, snapshot, err := o.requireSnapshot(ctx, leadID)
	if err != nil {
		return nil, err
	}

	target, err := o.findVerifiableDraft(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, &NotFoundError{Resource: "agent2 draft", LeadID: leadID}
	}

	agent1Draft, err := o.store.LatestAgent1Draft(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if agent1Draft == nil || agent1Draft.Agent1Output == nil {
		return nil, &NotFoundError{Resource: "agent1 output", LeadID: leadID}
	}

	log.Printf("pipeline: agent3 start lead_id=%s draft_id=%s", leadID, target.ID)
	verdict, err := o.verifier.Run(ctx, agents.VerifyInput{
		LeadName:     lead.Name,
		Company:      lead.Company,
		WebsiteURL:   lead.WebsiteURL,
		SnapshotText: snapshot.RawText,
		Agent1:       agent1Draft.Agent1Output,
		DraftSubject: target.Subject,
		DraftBody:    target.Body,
	})
	if err != nil {
		return nil, err
	}

	updated, err := o.store.ApplyVerdict(ctx, target.ID, verdict)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, &NotFoundError{Resource: "draft", LeadID: leadID}
	}

	log.Printf("pipeline: agent3 end lead_id=%s draft_id=%s decision=%s", leadID, updated.ID, verdict.Decision)
	return &Agent3Result{
		LeadID:     leadID,
		DraftID:    updated.ID,
		Decision:   verdict.Decision,
		Issues:     verdict.Issues,
		FinalEmail: verdict.FinalEmail,
	}, nil
}

// LatestContext bundles the most recent pipeline artifacts for a lead.
type LatestContext struct {
	LeadID       uuid.UUID           `json:"lead_id"`
	Snapshot     *db.WebsiteSnapshot `json:"snapshot,omitempty"`
	Agent1Output *types.Agent1Output `json:"agent1_output,omitempty"`
	Verdict      *types.DraftVerdict `json:"verdict,omitempty"`
	DraftID      *uuid.UUID          `json:"draft_id,omitempty"`
}

// GetLatestContext returns the lead's latest snapshot, Agent 1 output, and
// verdict summary. Missing artifacts are omitted rather than errors; only a
// missing lead fails.
func (o *Orchestrator) GetLatestContext(ctx context.Context, leadID uuid.UUID) (*LatestContext, error) {
	lead, err := o.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if lead == nil {
		return nil, &NotFoundError{Resource: "lead", LeadID: leadID}
	}

	result := &LatestContext{LeadID: leadID}

	snapshot, err := o.store.LatestSnapshot(ctx, leadID)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snapshot

	agent1Draft, err := o.store.LatestAgent1Draft(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if agent1Draft != nil {
		result.Agent1Output = agent1Draft.Agent1Output
	}

	recent, err := o.store.RecentDrafts(ctx, leadID, verifiableDraftWindow)
	if err != nil {
		return nil, err
	}
	for i := range recent {
		d := &recent[i]
		if d.Verdict != nil && (d.Decision == types.DecisionSend || d.Decision == types.DecisionHold) {
			result.Verdict = d.Verdict
			result.DraftID = &d.ID
			break
		}
	}

	return result, nil
}

// findVerifiableDraft scans the bounded recent-draft window for the draft
// Agent 3 should operate on: the most recent agent2-sourced draft, or
// failing that the most recent already-decided draft with a final email.
func (o *Orchestrator) findVerifiableDraft(ctx context.Context, leadID uuid.UUID) (*db.EmailDraft, error) {
	recent, err := o.store.RecentDrafts(ctx, leadID, verifiableDraftWindow)
	if err != nil {
		return nil, err
	}

	for i := range recent {
		if recent[i].Verdict != nil && recent[i].Verdict.Source == types.VerdictSourceAgent2 {
			return &recent[i], nil
		}
	}
	for i := range recent {
		d := &recent[i]
		if d.Verdict != nil && d.Verdict.FinalEmail != nil &&
			(d.Decision == types.DecisionSend || d.Decision == types.DecisionHold) {
			return d, nil
		}
	}
	return nil, nil
}

// requireSnapshot loads the lead and its latest snapshot, failing with a
// NotFoundError when either is missing.
func (o *Orchestrator) requireSnapshot(ctx context.Context, leadID uuid.UUID) (*db.Lead, *db.WebsiteSnapshot, error) {
	lead, err := o.store.GetLead(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}
	if lead == nil {
		return nil, nil, &NotFoundError{Resource: "lead", LeadID: leadID}
	}

	snapshot, err := o.store.LatestSnapshot(ctx, leadID)
	if err != nil {
		return nil, nil, err
	}
	if snapshot == nil {
		return nil, nil, &NotFoundError{Resource: "snapshot", LeadID: leadID}
	}

	return lead, snapshot, nil
}

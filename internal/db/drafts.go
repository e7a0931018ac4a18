package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-crm/internal/types"
)

const draftColumns = `id, lead_id, subject, body, agent1_output, agent3_verdict, decision, created_at, updated_at`

func scanDraft(row pgx.Row) (*EmailDraft, error) {
	var d EmailDraft
	var agent1JSON, verdictJSON []byte

	err := row.Scan(&d.ID, &d.LeadID, &d.Subject, &d.Body, &agent1JSON, &verdictJSON,
		&d.Decision, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	// Parse JSONB fields
	if agent1JSON != nil {
		_ = json.Unmarshal(agent1JSON, &d.Agent1Output)
	}
	if verdictJSON != nil {
		_ = json.Unmarshal(verdictJSON, &d.Verdict)
	}

	return &d, nil
}

// CreateDraft appends a new draft artifact for a lead.
func (db *DB) CreateDraft(ctx context.Context, p DraftParams) (*EmailDraft, error) {
	decision := p.Decision
	if decision == "" {
		decision = "draft"
	}

	var agent1JSON, verdictJSON []byte
	var err error
	if p.Agent1Output != nil {
		if agent1JSON, err = json.Marshal(p.Agent1Output); err != nil {
			return nil, fmt.Errorf("failed to marshal agent1 output: %w", err)
		}
	}
	if p.Verdict != nil {
		if verdictJSON, err = json.Marshal(p.Verdict); err != nil {
			return nil, fmt.Errorf("failed to marshal verdict: %w", err)
		}
	}

	draft, err := scanDraft(db.pool.QueryRow(ctx,
		`INSERT INTO email_drafts (lead_id, subject, body, agent1_output, agent3_verdict, decision)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+draftColumns,
		p.LeadID, p.Subject, p.Body, agent1JSON, verdictJSON, decision,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return draft, nil
}

// ListDrafts retrieves drafts for a lead, newest first.
func (db *DB) ListDrafts(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]EmailDraft, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+draftColumns+`
		 FROM email_drafts WHERE lead_id = $1
		 ORDER BY created_at DESC OFFSET $2 LIMIT $3`,
		leadID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	return collectDrafts(rows)
}

// RecentDrafts retrieves the most recent drafts for a lead, bounded by limit.
// RunAgent3 scans this window for a verifiable draft.
func (db *DB) RecentDrafts(ctx context.Context, leadID uuid.UUID, limit int) ([]EmailDraft, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+draftColumns+`
		 FROM email_drafts WHERE lead_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		leadID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent drafts: %w", err)
	}
	defer rows.Close()

	return collectDrafts(rows)
}

func collectDrafts(rows pgx.Rows) ([]EmailDraft, error) {
	var drafts []EmailDraft
	for rows.Next() {
		var d EmailDraft
		var agent1JSON, verdictJSON []byte
		if err := rows.Scan(&d.ID, &d.LeadID, &d.Subject, &d.Body, &agent1JSON, &verdictJSON,
			&d.Decision, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if agent1JSON != nil {
			_ = json.Unmarshal(agent1JSON, &d.Agent1Output)
		}
		if verdictJSON != nil {
			_ = json.Unmarshal(verdictJSON, &d.Verdict)
		}
		drafts = append(drafts, d)
	}
	return drafts, nil
}

// LatestAgent1Draft retrieves the most recent draft carrying an Agent 1
// output for a lead. Returns nil, nil when none exists.
func (db *DB) LatestAgent1Draft(ctx context.Context, leadID uuid.UUID) (*EmailDraft, error) {
	draft, err := scanDraft(db.pool.QueryRow(ctx,
		`SELECT `+draftColumns+`
		 FROM email_drafts
		 WHERE lead_id = $1 AND agent1_output IS NOT NULL
		 ORDER BY created_at DESC LIMIT 1`,
		leadID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest agent1 draft: %w", err)
	}
	return draft, nil
}

// ApplyVerdict performs the pipeline's one controlled mutation: the
// Draft -> Verified transition on a draft identified by a prior lookup.
// The verdict, decision, and final email overwrite the row in place.
func (db *DB) ApplyVerdict(ctx context.Context, draftID uuid.UUID, verdict *types.Agent3Verdict) (*EmailDraft, error) {
	subject := TruncateSubject(verdict.FinalEmail.Subject)

	verdictJSON, err := json.Marshal(types.DraftVerdict{
		Decision:   verdict.Decision,
		Issues:     verdict.Issues,
		FinalEmail: &verdict.FinalEmail,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal verdict: %w", err)
	}

	draft, err := scanDraft(db.pool.QueryRow(ctx,
		`UPDATE email_drafts
		 SET agent3_verdict = $1, decision = $2, subject = $3, body = $4, updated_at = NOW()
		 WHERE id = $5
		 RETURNING `+draftColumns,
		verdictJSON, verdict.Decision, subject, verdict.FinalEmail.EmailBody, draftID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to apply verdict: %w", err)
	}
	return draft, nil
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const snapshotColumns = `id, lead_id, url, raw_text, fetched_at, created_at, updated_at`

func scanSnapshot(row pgx.Row) (*WebsiteSnapshot, error) {
	var s WebsiteSnapshot
	err := row.Scan(&s.ID, &s.LeadID, &s.URL, &s.RawText, &s.FetchedAt, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSnapshot appends a website snapshot for a lead. A nil fetchedAt uses
// the database clock.
func (db *DB) CreateSnapshot(ctx context.Context, leadID uuid.UUID, url, rawText string, fetchedAt *time.Time) (*WebsiteSnapshot, error) {
	var (
		snapshot *WebsiteSnapshot
		err      error
	)
	if fetchedAt != nil {
		snapshot, err = scanSnapshot(db.pool.QueryRow(ctx,
			`INSERT INTO website_snapshots (lead_id, url, raw_text, fetched_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING `+snapshotColumns,
			leadID, url, rawText, *fetchedAt,
		))
	} else {
		snapshot, err = scanSnapshot(db.pool.QueryRow(ctx,
			`INSERT INTO website_snapshots (lead_id, url, raw_text)
			 VALUES ($1, $2, $3)
			 RETURNING `+snapshotColumns,
			leadID, url, rawText,
		))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}
	return snapshot, nil
}

// ListSnapshots retrieves snapshots for a lead, newest fetch first.
func (db *DB) ListSnapshots(ctx context.Context, leadID uuid.UUID, limit, offset int) ([]WebsiteSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.pool.Query(ctx,
		`SELECT `+snapshotColumns+`
		 FROM website_snapshots WHERE lead_id = $1
		 ORDER BY fetched_at DESC OFFSET $2 LIMIT $3`,
		leadID, offset, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []WebsiteSnapshot
	for rows.Next() {
		var s WebsiteSnapshot
		if err := rows.Scan(&s.ID, &s.LeadID, &s.URL, &s.RawText, &s.FetchedAt, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, nil
}

// LatestSnapshot retrieves the most recent snapshot for a lead.
// Returns nil, nil when the lead has no snapshots.
func (db *DB) LatestSnapshot(ctx context.Context, leadID uuid.UUID) (*WebsiteSnapshot, error) {
	snapshot, err := scanSnapshot(db.pool.QueryRow(ctx,
		`SELECT `+snapshotColumns+`
		 FROM website_snapshots WHERE lead_id = $1
		 ORDER BY fetched_at DESC, created_at DESC LIMIT 1`,
		leadID,
	))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return snapshot, nil
}

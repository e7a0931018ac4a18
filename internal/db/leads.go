package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/outreach-crm/internal/types"
)

const leadColumns = `id, name, title, company, industry, location, website_url,
	        email, source, status, created_at, updated_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	err := row.Scan(&l.ID, &l.Name, &l.Title, &l.Company, &l.Industry, &l.Location,
		&l.WebsiteURL, &l.Email, &l.Source, &l.Status, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLead inserts a new lead and returns the stored row.
func (db *DB) CreateLead(ctx context.Context, req *types.CreateLeadRequest) (*Lead, error) {
	status := req.Status
	if status == "" {
		status = "new"
	}

	lead, err := scanLead(db.pool.QueryRow(ctx,
		`INSERT INTO leads (name, title, company, industry, location, website_url, email, source, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+leadColumns,
		req.Name, req.Title, req.Company, req.Industry, req.Location,
		req.WebsiteURL, req.Email, req.Source, status,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

// GetLead retrieves a lead by ID. Returns nil, nil when not found.
func (db *DB) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	lead, err := scanLead(db.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

// ListLeads retrieves leads with optional filters, newest first, plus the
// total count matching the filters.
func (db *DB) ListLeads(ctx context.Context, opts ListLeadsOptions) ([]Lead, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	where := ""
	args := []any{}
	argNum := 1

	if opts.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}
	if opts.Query != "" {
		where += fmt.Sprintf(" AND company ILIKE $%d", argNum)
		args = append(args, "%"+opts.Query+"%")
		argNum++
	}

	var total int
	err := db.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM leads WHERE 1=1`+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	query := fmt.Sprintf(
		`SELECT `+leadColumns+` FROM leads WHERE 1=1`+where+
			` ORDER BY created_at DESC OFFSET $%d LIMIT $%d`,
		argNum, argNum+1,
	)
	args = append(args, opts.Offset, opts.Limit)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(&l.ID, &l.Name, &l.Title, &l.Company, &l.Industry, &l.Location,
			&l.WebsiteURL, &l.Email, &l.Source, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, total, nil
}

// UpdateLead applies a partial update and returns the stored row.
// Returns nil, nil when the lead does not exist.
func (db *DB) UpdateLead(ctx context.Context, id uuid.UUID, req *types.UpdateLeadRequest) (*Lead, error) {
	set := ""
	args := []any{}
	argNum := 1

	add := func(column string, value any) {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", column, argNum)
		args = append(args, value)
		argNum++
	}

	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Company != nil {
		add("company", *req.Company)
	}
	if req.Industry != nil {
		add("industry", *req.Industry)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.WebsiteURL != nil {
		add("website_url", *req.WebsiteURL)
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.Source != nil {
		add("source", *req.Source)
	}
	if req.Status != nil {
		add("status", *req.Status)
	}

	if set == "" {
		return db.GetLead(ctx, id)
	}

	set += ", updated_at = NOW()"

	query := fmt.Sprintf(
		`UPDATE leads SET %s WHERE id = $%d RETURNING `+leadColumns,
		set, argNum,
	)
	args = append(args, id)

	lead, err := scanLead(db.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, owner_id, image_url, attributes, result, created_at`

// Create inserts a new analysis.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO tire_analyses (id, owner_id, image_url, attributes, result, safety_score, degraded, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	attrs, err := json.Marshal(analysis.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	result, err := json.Marshal(analysis.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.OwnerID,
		analysis.ImageURL,
		attrs,
		result,
		analysis.Result.SafetyScore,
		analysis.Result.Degraded,
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	query := `SELECT ` + selectColumns + ` FROM tire_analyses WHERE id = $1 LIMIT 1`
	a, err := scanAnalysis(r.DB.QueryRowContext(ctx, query, analysisID))
	if errors.Is(err, sql.ErrNoRows) {
		return Analysis{}, ErrNotFound
	}
	return a, err
}

// ListByOwner returns analyses for an owner, newest first.
func (r *PGRepo) ListByOwner(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + selectColumns + ` FROM tire_analyses
WHERE owner_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(s scanner) (Analysis, error) {
	var a Analysis
	var attrs, result []byte
	if err := s.Scan(&a.ID, &a.OwnerID, &a.ImageURL, &attrs, &result, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	if len(attrs) > 0 {
		if err := json.Unmarshal(attrs, &a.Attributes); err != nil {
			return Analysis{}, fmt.Errorf("decode attributes of %s: %w", a.ID, err)
		}
	}
	if len(result) > 0 {
		if err := json.Unmarshal(result, &a.Result); err != nil {
			return Analysis{}, fmt.Errorf("decode result of %s: %w", a.ID, err)
		}
	}
	return a, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"comprehensive_valuation/pkg/core/valuation"
)

// ValuationRepo stores completed valuation runs.
type ValuationRepo struct{}

func NewValuationRepo() *ValuationRepo {
	return &ValuationRepo{}
}

// StoredRun is one persisted valuation result row.
type StoredRun struct {
	ID                   uuid.UUID         `json:"id"`
	CompanyName          string            `json:"company_name"`
	Industry             string            `json:"industry"`
	SubIndustry          string            `json:"sub_industry"`
	RecommendedMethod    string            `json:"recommended_method"`
	RecommendedValuation float64           `json:"recommended_valuation"`
	Result               *valuation.Output `json:"result"`
	CreatedAt            time.Time         `json:"created_at"`
}

// Save persists a completed run and returns its generated ID. The full
// engine output lands in a JSONB blob; the headline fields get their own
// columns for listing queries.
func (r *ValuationRepo) Save(ctx context.Context, out *valuation.Output) (uuid.UUID, error) {
	pool := GetPool()
	if pool == nil {
		return uuid.Nil, fmt.Errorf("database pool not initialized")
	}

	jsonData, err := json.Marshal(out)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal valuation output: %w", err)
	}

	id := uuid.New()
	query := `
		INSERT INTO valuation_runs
			(id, company_name, industry, sub_industry, recommended_method, recommended_valuation, result_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`

	_, err = pool.Exec(ctx, query,
		id, out.Input.CompanyName, out.Input.Industry, out.Input.SubIndustry,
		string(out.Selected.Method), out.Selected.Valuation, jsonData, time.Now())
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save valuation run: %w", err)
	}

	return id, nil
}

// Load retrieves one run by ID.
func (r *ValuationRepo) Load(ctx context.Context, id uuid.UUID) (*StoredRun, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}

	query := `
		SELECT id, company_name, industry, sub_industry,
		       recommended_method, recommended_valuation, result_json, created_at
		FROM valuation_runs WHERE id = $1;
	`

	var run StoredRun
	var jsonData []byte
	err := pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.CompanyName, &run.Industry, &run.SubIndustry,
		&run.RecommendedMethod, &run.RecommendedValuation, &jsonData, &run.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load valuation run: %w", err)
	}

	if err := json.Unmarshal(jsonData, &run.Result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored result: %w", err)
	}
	return &run, nil
}

// ListRecent returns headline rows for the most recent runs (result blob
// omitted).
func (r *ValuationRepo) ListRecent(ctx context.Context, limit int) ([]StoredRun, error) {
	pool := GetPool()
	if pool == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, company_name, industry, sub_industry,
		       recommended_method, recommended_valuation, created_at
		FROM valuation_runs ORDER BY created_at DESC LIMIT $1;
	`

	rows, err := pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list valuation runs: %w", err)
	}
	defer rows.Close()

	runs := []StoredRun{}
	for rows.Next() {
		var run StoredRun
		if err := rows.Scan(&run.ID, &run.CompanyName, &run.Industry, &run.SubIndustry,
			&run.RecommendedMethod, &run.RecommendedValuation, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan valuation run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

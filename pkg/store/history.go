// Package store persists analysis results: a Postgres history log and a
// Redis cache keyed by content digest.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecotrace/verity/pkg/analysis"
)

// ErrNotFound is returned when a history record does not exist.
var ErrNotFound = errors.New("record not found")

// HistoryRecord is one persisted analysis.
type HistoryRecord struct {
	ID             string                  `json:"id"`
	ContentType    analysis.ContentType    `json:"content_type"`
	FinalVerdict   analysis.Verdict        `json:"final_verdict"`
	Likelihood     float64                 `json:"likelihood"`
	AgreementLevel analysis.AgreementLevel `json:"agreement_level"`
	Result         json.RawMessage         `json:"result"`
	CreatedAt      time.Time               `json:"created_at"`
}

// HistoryStore writes analysis results to Postgres.
type HistoryStore struct {
	pool *pgxpool.Pool
}

// NewHistoryStore opens a connection pool against the given database URL.
func NewHistoryStore(ctx context.Context, databaseURL string) (*HistoryStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping history store: %w", err)
	}
	return &HistoryStore{pool: pool}, nil
}

// EnsureSchema creates the analyses table when missing.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS analyses (
			id              UUID PRIMARY KEY,
			content_type    TEXT NOT NULL,
			final_verdict   TEXT NOT NULL,
			likelihood      DOUBLE PRECISION NOT NULL,
			agreement_level TEXT NOT NULL,
			result          JSONB NOT NULL,
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS analyses_created_at_idx ON analyses (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// Save persists one result. The full result document is stored as JSONB
// alongside the columns the list endpoint filters on.
func (s *HistoryStore) Save(ctx context.Context, result *analysis.Result) error {
	doc, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO analyses (id, content_type, final_verdict, likelihood, agreement_level, result, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, result.RequestID, result.ContentType, result.FinalVerdict,
		result.Likelihood, result.AgreementLevel, doc, result.AnalyzedAt)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

// List returns the newest records first.
func (s *HistoryStore) List(ctx context.Context, limit, offset int) ([]HistoryRecord, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, content_type, final_verdict, likelihood, agreement_level, result, created_at
		FROM analyses
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var records []HistoryRecord
	for rows.Next() {
		var r HistoryRecord
		if err := rows.Scan(&r.ID, &r.ContentType, &r.FinalVerdict,
			&r.Likelihood, &r.AgreementLevel, &r.Result, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Get fetches one record by ID.
func (s *HistoryStore) Get(ctx context.Context, id string) (*HistoryRecord, error) {
	var r HistoryRecord
	err := s.pool.QueryRow(ctx, `
		SELECT id, content_type, final_verdict, likelihood, agreement_level, result, created_at
		FROM analyses WHERE id = $1
	`, id).Scan(&r.ID, &r.ContentType, &r.FinalVerdict,
		&r.Likelihood, &r.AgreementLevel, &r.Result, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get history record: %w", err)
	}
	return &r, nil
}

// Delete removes one record by ID.
func (s *HistoryStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM analyses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete history record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Close releases the pool.
func (s *HistoryStore) Close() {
	s.pool.Close()
}

package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/david/rfq-pilot/internal/models"
)

var ErrNotFound = errors.New("analysis not found")

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

type ListParams struct {
	Query          string
	QueryEmbedding []float32
	Decision       string
	Limit          int
	Offset         int
}

type ListResult struct {
	Analyses []models.RFQAnalysis `json:"analyses"`
	Total    int                  `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}

const selectCols = `id, filename, source_url, rfq_number, nsn, quantity,
	score, recommendation, final_decision, reason, result, advisory, created_at`

// SaveAnalysis archives one analysis run. The embedding may be nil when the
// embedding model is unavailable; similarity search then skips the row.
func (s *Store) SaveAnalysis(ctx context.Context, a *models.RFQAnalysis, embedding []float32) error {
	resultJSON, err := json.Marshal(a.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	var advisoryJSON []byte
	if a.Advisory != nil {
		advisoryJSON, err = json.Marshal(a.Advisory)
		if err != nil {
			return fmt.Errorf("marshal advisory: %w", err)
		}
	}

	var vec interface{}
	if len(embedding) > 0 {
		vec = pgvector.NewVector(embedding)
	}

	err = s.pool.QueryRow(ctx, `
		INSERT INTO rfq_analyses
			(filename, source_url, rfq_number, nsn, quantity, score,
			 recommendation, final_decision, reason, result, advisory, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at
	`, a.Filename, a.SourceURL, a.RFQNumber, a.NSN, a.Quantity, a.Score,
		a.Recommendation, a.FinalDecision, a.Reason, resultJSON, advisoryJSON, vec,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

// buildListWhere builds the filter clause. Text queries match the RFQ
// number, NSN, and filename; the decision filter is exact.
func buildListWhere(params ListParams) (string, []interface{}) {
	where := "WHERE 1=1"
	var args []interface{}
	argIdx := 1

	if params.Query != "" {
		where += fmt.Sprintf(" AND (rfq_number ILIKE '%%' || $%d || '%%' OR nsn ILIKE '%%' || $%d || '%%' OR filename ILIKE '%%' || $%d || '%%')", argIdx, argIdx, argIdx)
		args = append(args, params.Query)
		argIdx++
	}
	if params.Decision != "" {
		where += fmt.Sprintf(" AND final_decision = $%d", argIdx)
		args = append(args, params.Decision)
	}
	return where, args
}

// buildListOrder ranks by embedding similarity when a query embedding is
// present (rows without an embedding sort last), otherwise newest first.
func buildListOrder(params ListParams, argIdx int) (string, []interface{}) {
	if len(params.QueryEmbedding) > 0 {
		order := fmt.Sprintf(`
			ORDER BY
				CASE WHEN embedding IS NULL THEN 1 ELSE 0 END ASC,
				COALESCE(1 - (embedding <=> $%d), -1) DESC,
				created_at DESC
		`, argIdx)
		return order, []interface{}{pgvector.NewVector(params.QueryEmbedding)}
	}
	return " ORDER BY created_at DESC", nil
}

func (s *Store) ListAnalyses(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Limit > 100 {
		params.Limit = 100
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	where, args := buildListWhere(params)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM rfq_analyses "+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count failed: %w", err)
	}

	selectSQL := "SELECT " + selectCols + " FROM rfq_analyses " + where
	order, orderArgs := buildListOrder(params, len(args)+1)
	selectSQL += order
	args = append(args, orderArgs...)

	selectSQL += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, params.Limit, params.Offset)

	rows, err := s.pool.Query(ctx, selectSQL, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var analyses []models.RFQAnalysis
	for rows.Next() {
		a, err := scanAnalysis(rows.Scan)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &ListResult{
		Analyses: analyses,
		Total:    total,
		Limit:    params.Limit,
		Offset:   params.Offset,
	}, nil
}

func (s *Store) GetAnalysis(ctx context.Context, id string) (*models.RFQAnalysis, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+selectCols+" FROM rfq_analyses WHERE id = $1", id)
	a, err := scanAnalysis(row.Scan)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) DeleteAnalysis(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM rfq_analyses WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete analysis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanAnalysis(scan func(dest ...interface{}) error) (models.RFQAnalysis, error) {
	var a models.RFQAnalysis
	var resultJSON, advisoryJSON []byte

	err := scan(
		&a.ID, &a.Filename, &a.SourceURL, &a.RFQNumber, &a.NSN, &a.Quantity,
		&a.Score, &a.Recommendation, &a.FinalDecision, &a.Reason,
		&resultJSON, &advisoryJSON, &a.CreatedAt,
	)
	if err != nil {
		return a, fmt.Errorf("scan failed: %w", err)
	}

	if len(resultJSON) > 0 {
		if err := json.Unmarshal(resultJSON, &a.Result); err != nil {
			return a, fmt.Errorf("decode result: %w", err)
		}
	}
	if len(advisoryJSON) > 0 {
		if err := json.Unmarshal(advisoryJSON, &a.Advisory); err != nil {
			return a, fmt.Errorf("decode advisory: %w", err)
		}
	}
	return a, nil
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type resultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) ports.ResultRepository {
	return &resultRepository{
		db: db,
	}
}

func (r *resultRepository) GetCandidateResults(ctx context.Context) ([]domain.CandidateResult, error) {
	query := `
		SELECT candidate, vote_count, last_updated_at
		FROM vote_results
		ORDER BY candidate
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", translate(err))
	}
	defer rows.Close()

	var results []domain.CandidateResult
	for rows.Next() {
		var res domain.CandidateResult
		if err := rows.Scan(&res.Candidate, &res.VoteCount, &res.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan results: %w", err)
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating results: %w", err)
	}

	return results, nil
}

func (r *resultRepository) SummarizeVotes(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", translate(err))
	}
	defer tx.Rollback()

	// Candidates whose votes all disappeared must not keep a stale count.
	if _, err := tx.ExecContext(ctx, `UPDATE vote_results SET vote_count = 0, last_updated_at = NOW()`); err != nil {
		return fmt.Errorf("failed to reset results: %w", translate(err))
	}

	query := `
		INSERT INTO vote_results (candidate, vote_count, last_updated_at)
		SELECT body->>'candidate', COUNT(*), NOW()
		FROM documents
		WHERE collection = $1 AND body->>'candidate' IS NOT NULL
		GROUP BY body->>'candidate'
		ON CONFLICT (candidate) DO UPDATE
		SET vote_count = EXCLUDED.vote_count,
		    last_updated_at = NOW();
	`
	if _, err := tx.ExecContext(ctx, query, domain.VotesCollection); err != nil {
		return fmt.Errorf("failed to summarize votes: %w", translate(err))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", translate(err))
	}
	return nil
}

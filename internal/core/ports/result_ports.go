package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

type ResultRepository interface {
	SummarizeVotes(ctx context.Context) error
	GetCandidateResults(ctx context.Context) ([]domain.CandidateResult, error)
}

type SummaryService interface {
	SummarizeAllVotes(ctx context.Context) error
	Results(ctx context.Context) ([]domain.CandidateResult, error)
}

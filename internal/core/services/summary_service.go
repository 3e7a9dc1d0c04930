package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type summaryService struct {
	resultRepo ports.ResultRepository
	candidates []domain.Candidate
}

func NewSummaryService(resultRepo ports.ResultRepository, candidates []domain.Candidate) ports.SummaryService {
	if len(candidates) == 0 {
		candidates = domain.DefaultCandidates
	}
	return &summaryService{
		resultRepo: resultRepo,
		candidates: candidates,
	}
}

func (s *summaryService) SummarizeAllVotes(ctx context.Context) error {
	if err := s.resultRepo.SummarizeVotes(ctx); err != nil {
		return fmt.Errorf("failed to summarize votes: %w", err)
	}
	return nil
}

// Results returns the last tally with a percentage per candidate. Every
// configured candidate is listed, with zero votes when none were counted.
func (s *summaryService) Results(ctx context.Context) ([]domain.CandidateResult, error) {
	stored, err := s.resultRepo.GetCandidateResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch results: %w", err)
	}

	byCandidate := make(map[domain.Candidate]domain.CandidateResult, len(stored))
	var total int64
	for _, r := range stored {
		byCandidate[r.Candidate] = r
		total += r.VoteCount
	}
	for _, c := range s.candidates {
		if _, ok := byCandidate[c]; !ok {
			byCandidate[c] = domain.CandidateResult{Candidate: c}
		}
	}

	results := make([]domain.CandidateResult, 0, len(byCandidate))
	for _, r := range byCandidate {
		if total > 0 {
			r.Percentage = (float64(r.VoteCount) / float64(total)) * 100
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return results[i].Candidate < results[j].Candidate
	})
	return results, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// VoteLedger allows at most one vote per identity. The store's
// non-overwriting create is the only cross-process guard; the ledger adds a
// per-identity in-flight guard and remembers identities it has seen vote so
// repeated submissions are rejected without a store round trip.
type VoteLedger struct {
	store      ports.DocumentStore
	candidates []domain.Candidate
	logger     *slog.Logger
	now        func() time.Time

	mu       sync.Mutex
	voted    map[string]domain.VoteStatus
	inFlight map[string]struct{}
}

func NewVoteLedger(store ports.DocumentStore, candidates []domain.Candidate, logger *slog.Logger) *VoteLedger {
	if len(candidates) == 0 {
		candidates = domain.DefaultCandidates
	}
	return &VoteLedger{
		store:      store,
		candidates: append([]domain.Candidate(nil), candidates...),
		logger:     ResolveLogger(logger),
		now:        time.Now,
		voted:      make(map[string]domain.VoteStatus),
		inFlight:   make(map[string]struct{}),
	}
}

func (l *VoteLedger) Candidates() []domain.Candidate {
	return append([]domain.Candidate(nil), l.candidates...)
}

func (l *VoteLedger) validCandidate(c domain.Candidate) bool {
	for _, known := range l.candidates {
		if known == c {
			return true
		}
	}
	return false
}

// CheckStatus reports whether identity has a stored vote. A nil identity
// has not voted and no store call is made. A read failure returns a status
// with Unknown set and an error matching domain.ErrStatusUnknown; it is never
// reported as "not voted".
func (l *VoteLedger) CheckStatus(ctx context.Context, identity *domain.Identity) (domain.VoteStatus, error) {
	if identity == nil {
		return domain.VoteStatus{}, nil
	}

	if status, ok := l.votedStatus(identity.ID); ok {
		return status, nil
	}

	doc, found, err := l.store.Get(ctx, domain.VotesCollection, identity.ID)
	if err != nil {
		l.logger.Warn("vote status check failed",
			"event", "vote_status_check_failed",
			"module", "core/services",
			"layer", "application",
			"user_id", identity.ID,
			"error", err.Error(),
		)
		return domain.VoteStatus{Unknown: true}, &domain.VoteError{
			Kind:   domain.ErrStatusUnknown,
			Detail: "Unable to check vote status. Voting is disabled until the status can be confirmed.",
			Err:    err,
		}
	}
	if !found {
		return domain.VoteStatus{}, nil
	}

	status := statusFromDocument(doc)
	l.markVoted(identity.ID, status)
	return status, nil
}

// CastVote records identity's vote for candidate. The vote is written with a
// non-overwriting create and then read back; it only counts once the stored
// candidate matches. Failures are returned as *domain.VoteError whose Kind
// is one of domain.ErrAlreadyVoted, domain.ErrPermissionDenied,
// domain.ErrStoreUnavailable, domain.ErrPersistenceUnverified or
// domain.ErrUnknown. Local precondition failures (domain.ErrAlreadyVoted,
// domain.ErrVoteInProgress) make no store call.
func (l *VoteLedger) CastVote(ctx context.Context, identity *domain.Identity, candidate domain.Candidate) error {
	if identity == nil {
		return domain.ErrUnauthenticated
	}
	if !l.validCandidate(candidate) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidCandidate, candidate)
	}

	if err := l.begin(identity.ID); err != nil {
		return err
	}
	defer l.end(identity.ID)

	status, err := l.CheckStatus(ctx, identity)
	if err != nil {
		return err
	}
	if status.HasVoted {
		return domain.ErrAlreadyVoted
	}

	record := domain.VoteRecord{
		VoterID:    identity.ID,
		Candidate:  candidate,
		VoterEmail: identity.Email,
		CastAt:     l.now(),
	}

	if err := l.store.CreateIfAbsent(ctx, domain.VotesCollection, identity.ID, record.Document()); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			l.learnExisting(ctx, identity.ID)
			return &domain.VoteError{
				Kind:   domain.ErrAlreadyVoted,
				Detail: "A vote has already been recorded for this account. Each account can only vote once.",
				Err:    err,
			}
		}
		return l.fail(identity, "write", err)
	}

	doc, found, err := l.store.Get(ctx, domain.VotesCollection, identity.ID)
	if err != nil {
		return l.fail(identity, "read-back", err)
	}
	if !found {
		return l.fail(identity, "read-back", domain.ErrPersistenceUnverified)
	}
	stored, err := domain.VoteRecordFromDocument(doc)
	if err != nil || stored.Candidate != candidate {
		return l.fail(identity, "read-back", fmt.Errorf("%w: stored candidate %q does not match %q",
			domain.ErrPersistenceUnverified, stored.Candidate, candidate))
	}

	l.markVoted(identity.ID, domain.VotedFor(candidate))
	l.logger.Info("vote recorded",
		"event", "vote_cast_succeeded",
		"module", "core/services",
		"layer", "application",
		"user_id", identity.ID,
		"candidate", string(candidate),
	)
	return nil
}

func (l *VoteLedger) begin(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.voted[id]; ok {
		return domain.ErrAlreadyVoted
	}
	if _, ok := l.inFlight[id]; ok {
		return domain.ErrVoteInProgress
	}
	l.inFlight[id] = struct{}{}
	return nil
}

func (l *VoteLedger) end(id string) {
	l.mu.Lock()
	delete(l.inFlight, id)
	l.mu.Unlock()
}

func (l *VoteLedger) votedStatus(id string) (domain.VoteStatus, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	status, ok := l.voted[id]
	return status, ok
}

func (l *VoteLedger) markVoted(id string, status domain.VoteStatus) {
	l.mu.Lock()
	l.voted[id] = status
	l.mu.Unlock()
}

// learnExisting records that a vote exists for id after a create conflict.
// The candidate is filled in when the stored document can be read.
func (l *VoteLedger) learnExisting(ctx context.Context, id string) {
	status := domain.VoteStatus{HasVoted: true}
	if doc, found, err := l.store.Get(ctx, domain.VotesCollection, id); err == nil && found {
		status = statusFromDocument(doc)
	}
	l.markVoted(id, status)
}

func (l *VoteLedger) fail(identity *domain.Identity, stage string, err error) error {
	verr := classifyVoteError(err)
	l.logger.Error("vote submission failed",
		"event", "vote_cast_failed",
		"module", "core/services",
		"layer", "application",
		"stage", stage,
		"user_id", identity.ID,
		"kind", verr.Kind.Error(),
		"error", err.Error(),
	)
	return verr
}

func classifyVoteError(err error) *domain.VoteError {
	const prefix = "Error saving vote to database. "
	switch {
	case errors.Is(err, domain.ErrPersistenceUnverified):
		return &domain.VoteError{Kind: domain.ErrPersistenceUnverified, Detail: prefix + "The vote could not be verified after saving. Please try again.", Err: err}
	case errors.Is(err, domain.ErrPermissionDenied):
		return &domain.VoteError{Kind: domain.ErrPermissionDenied, Detail: prefix + "Permission denied. Please check the store access rules.", Err: err}
	case errors.Is(err, domain.ErrStoreUnavailable), errors.Is(err, context.DeadlineExceeded):
		return &domain.VoteError{Kind: domain.ErrStoreUnavailable, Detail: prefix + "The vote store is unavailable. Please try again later.", Err: err}
	default:
		return &domain.VoteError{Kind: domain.ErrUnknown, Detail: prefix + err.Error(), Err: err}
	}
}

func statusFromDocument(doc domain.Document) domain.VoteStatus {
	rec, err := domain.VoteRecordFromDocument(doc)
	if err != nil {
		return domain.VoteStatus{HasVoted: true}
	}
	return domain.VotedFor(rec.Candidate)
}

var _ ports.VoteLedger = (*VoteLedger)(nil)

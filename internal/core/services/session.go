package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// Session owns the current identity of one client. Start subscribes to the
// identity provider and Close unsubscribes; between the two, every identity
// change rebuilds the vote status. The ledger only ever receives the
// identity as an argument.
type Session struct {
	provider ports.IdentityProvider
	ledger   ports.VoteLedger
	logger   *slog.Logger

	mu          sync.Mutex
	ctx         context.Context
	identity    *domain.Identity
	status      domain.VoteStatus
	statusErr   error
	unsubscribe func()
}

func NewSession(provider ports.IdentityProvider, ledger ports.VoteLedger, logger *slog.Logger) *Session {
	return &Session{
		provider: provider,
		ledger:   ledger,
		logger:   ResolveLogger(logger),
	}
}

// Start subscribes to identity changes. ctx bounds the status checks run on
// each change. Calling Start twice is a no-op.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.unsubscribe != nil {
		s.mu.Unlock()
		return
	}
	s.ctx = ctx
	s.mu.Unlock()

	unsubscribe := s.provider.Subscribe(s.onIdentity)

	s.mu.Lock()
	s.unsubscribe = unsubscribe
	s.mu.Unlock()
}

func (s *Session) Close() {
	s.mu.Lock()
	unsubscribe := s.unsubscribe
	s.unsubscribe = nil
	s.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

func (s *Session) onIdentity(identity *domain.Identity) {
	s.mu.Lock()
	s.identity = identity
	s.status = domain.VoteStatus{Checking: identity != nil}
	s.statusErr = nil
	ctx := s.ctx
	s.mu.Unlock()

	s.refresh(ctx, identity)
}

func (s *Session) refresh(ctx context.Context, identity *domain.Identity) {
	if ctx == nil {
		ctx = context.Background()
	}
	status, err := s.ledger.CheckStatus(ctx, identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity != identity {
		return
	}
	s.status = status
	s.statusErr = err
}

func (s *Session) Identity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Status returns the vote status of the current identity. The error is
// non-nil when the status could not be determined.
func (s *Session) Status() (domain.VoteStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status, s.statusErr
}

// Vote casts a vote for the current identity and refreshes the status.
func (s *Session) Vote(ctx context.Context, candidate domain.Candidate) error {
	identity := s.Identity()
	if identity == nil {
		return domain.ErrUnauthenticated
	}

	err := s.ledger.CastVote(ctx, identity, candidate)
	if err == nil {
		s.mu.Lock()
		if s.identity == identity {
			s.status = domain.VotedFor(candidate)
			s.statusErr = nil
		}
		s.mu.Unlock()
		return nil
	}

	if errors.Is(err, domain.ErrAlreadyVoted) {
		s.refresh(ctx, identity)
	}
	return err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

var alice = &domain.Identity{ID: "uid-alice", Email: "alice@example.com"}

func newTestLedger(store *fakeStore) *VoteLedger {
	l := NewVoteLedger(store, nil, nil)
	l.now = func() time.Time { return time.Date(2024, 11, 5, 12, 0, 0, 0, time.UTC) }
	return l
}

func TestVoteLedger_CastThenCheck(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(store)
	ctx := context.Background()

	status, err := ledger.CheckStatus(ctx, alice)
	require.NoError(t, err)
	assert.False(t, status.HasVoted)
	assert.Nil(t, status.Candidate)

	require.NoError(t, ledger.CastVote(ctx, alice, domain.CandidateHarris))

	status, err = ledger.CheckStatus(ctx, alice)
	require.NoError(t, err)
	assert.True(t, status.HasVoted)
	require.NotNil(t, status.Candidate)
	assert.Equal(t, domain.CandidateHarris, *status.Candidate)

	stored := store.docs[docKey(domain.VotesCollection, alice.ID)]
	assert.Equal(t, "Harris", stored["candidate"])
	assert.Equal(t, alice.ID, stored["user_id"])
	assert.Equal(t, alice.Email, stored["user_email"])
	assert.Equal(t, "2024-11-05T12:00:00Z", stored["timestamp"])
}

func TestVoteLedger_FreshLedgerSeesStoredVote(t *testing.T) {
	store := newFakeStore()
	require.NoError(t, newTestLedger(store).CastVote(context.Background(), alice, domain.CandidateTrump))

	status, err := newTestLedger(store).CheckStatus(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, domain.VotedFor(domain.CandidateTrump), status)
}

func TestVoteLedger_NilIdentity(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(store)

	status, err := ledger.CheckStatus(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, status.HasVoted)

	err = ledger.CastVote(context.Background(), nil, domain.CandidateHarris)
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)

	gets, creates := store.counts()
	assert.Zero(t, gets)
	assert.Zero(t, creates)
}

func TestVoteLedger_InvalidCandidate(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(store)

	for _, c := range []domain.Candidate{"", "harris", "Biden"} {
		err := ledger.CastVote(context.Background(), alice, c)
		assert.ErrorIs(t, err, domain.ErrInvalidCandidate, string(c))
	}

	gets, creates := store.counts()
	assert.Zero(t, gets)
	assert.Zero(t, creates)
}

func TestVoteLedger_SecondVoteMakesNoWrite(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(store)
	ctx := context.Background()

	require.NoError(t, ledger.CastVote(ctx, alice, domain.CandidateHarris))
	gets, creates := store.counts()

	err := ledger.CastVote(ctx, alice, domain.CandidateTrump)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	gets2, creates2 := store.counts()
	assert.Equal(t, gets, gets2)
	assert.Equal(t, creates, creates2)
	assert.Equal(t, "Harris", store.docs[docKey(domain.VotesCollection, alice.ID)]["candidate"])
}

func TestVoteLedger_ExistingVoteFromElsewhere(t *testing.T) {
	store := newFakeStore()
	store.put(domain.VotesCollection, alice.ID, domain.Document{"candidate": "Trump"})
	ledger := newTestLedger(store)

	err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	_, creates := store.counts()
	assert.Zero(t, creates)
}

func TestVoteLedger_CreateConflict(t *testing.T) {
	store := newFakeStore()
	ledger := newTestLedger(store)
	// Another process writes between the status check and the create.
	store.beforeCreate = func() {
		store.put(domain.VotesCollection, alice.ID, domain.Document{"candidate": "Trump"})
	}

	err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	store.beforeCreate = nil
	status, err := ledger.CheckStatus(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, domain.VotedFor(domain.CandidateTrump), status)
	assert.Equal(t, "Trump", store.docs[docKey(domain.VotesCollection, alice.ID)]["candidate"])
}

func TestVoteLedger_StoreFailures(t *testing.T) {
	tests := []struct {
		name      string
		createErr error
		want      error
	}{
		{"permission denied", fmt.Errorf("write rejected: %w", domain.ErrPermissionDenied), domain.ErrPermissionDenied},
		{"unavailable", fmt.Errorf("dial: %w", domain.ErrStoreUnavailable), domain.ErrStoreUnavailable},
		{"deadline", context.DeadlineExceeded, domain.ErrStoreUnavailable},
		{"unknown", errors.New("boom"), domain.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.createErr = tt.createErr
			ledger := newTestLedger(store)

			err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
			require.ErrorIs(t, err, tt.want)

			var verr *domain.VoteError
			require.ErrorAs(t, err, &verr)
			assert.True(t, strings.HasPrefix(verr.Error(), "Error saving vote to database. "), verr.Error())

			status, err := ledger.CheckStatus(context.Background(), alice)
			require.NoError(t, err)
			assert.False(t, status.HasVoted, "a failed write is not a vote")

			store.createErr = nil
			assert.NoError(t, ledger.CastVote(context.Background(), alice, domain.CandidateHarris), "retry after failure")
		})
	}
}

func TestVoteLedger_PersistenceUnverified(t *testing.T) {
	t.Run("document missing after write", func(t *testing.T) {
		store := newFakeStore()
		store.rewrite = func(domain.Document) domain.Document { return nil }
		ledger := newTestLedger(store)

		err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
		assert.ErrorIs(t, err, domain.ErrPersistenceUnverified)
		assert.Contains(t, err.Error(), "Error saving vote to database.")

		status, err := ledger.CheckStatus(context.Background(), alice)
		require.NoError(t, err)
		assert.False(t, status.HasVoted)
	})

	t.Run("stored candidate differs", func(t *testing.T) {
		store := newFakeStore()
		store.rewrite = func(doc domain.Document) domain.Document {
			doc["candidate"] = "Trump"
			return doc
		}
		ledger := newTestLedger(store)

		err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
		assert.ErrorIs(t, err, domain.ErrPersistenceUnverified)
	})

	t.Run("read-back fails", func(t *testing.T) {
		store := newFakeStore()
		store.getErrs = []error{nil, fmt.Errorf("read: %w", domain.ErrStoreUnavailable)}
		ledger := newTestLedger(store)

		err := ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
		assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
	})
}

func TestVoteLedger_StatusUnknown(t *testing.T) {
	store := newFakeStore()
	store.getErrs = []error{errors.New("network down"), errors.New("network down")}
	ledger := newTestLedger(store)

	status, err := ledger.CheckStatus(context.Background(), alice)
	require.ErrorIs(t, err, domain.ErrStatusUnknown)
	assert.True(t, status.Unknown)
	assert.False(t, status.HasVoted)

	err = ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
	assert.ErrorIs(t, err, domain.ErrStatusUnknown)
	_, creates := store.counts()
	assert.Zero(t, creates, "voting is disabled while the status is unknown")
}

func TestVoteLedger_VoteInProgress(t *testing.T) {
	store := newFakeStore()
	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	store.beforeCreate = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}
	ledger := newTestLedger(store)

	first := make(chan error, 1)
	go func() {
		first <- ledger.CastVote(context.Background(), alice, domain.CandidateHarris)
	}()

	<-entered
	err := ledger.CastVote(context.Background(), alice, domain.CandidateTrump)
	assert.ErrorIs(t, err, domain.ErrVoteInProgress)

	close(release)
	require.NoError(t, <-first)

	_, creates := store.counts()
	assert.Equal(t, 1, creates)
}

func TestVoteLedger_ConcurrentLedgersShareOneVote(t *testing.T) {
	store := newFakeStore()
	ledgers := []*VoteLedger{newTestLedger(store), newTestLedger(store), newTestLedger(store), newTestLedger(store)}

	var wg sync.WaitGroup
	errs := make([]error, len(ledgers))
	for i, l := range ledgers {
		wg.Add(1)
		go func(i int, l *VoteLedger) {
			defer wg.Done()
			errs[i] = l.CastVote(context.Background(), alice, domain.DefaultCandidates[i%2])
		}(i, l)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
	}
	assert.Equal(t, 1, succeeded)
}

func TestVoteLedger_Candidates(t *testing.T) {
	ledger := NewVoteLedger(newFakeStore(), []domain.Candidate{"A", "B", "C"}, nil)
	got := ledger.Candidates()
	assert.Equal(t, []domain.Candidate{"A", "B", "C"}, got)

	got[0] = "Z"
	assert.Equal(t, domain.Candidate("A"), ledger.Candidates()[0])

	assert.NoError(t, ledger.CastVote(context.Background(), alice, "C"))
}

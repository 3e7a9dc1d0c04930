package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

type fakeProvider struct {
	mu      sync.Mutex
	current *domain.Identity
	subs    map[int]func(*domain.Identity)
	next    int
}

func newFakeProvider(current *domain.Identity) *fakeProvider {
	return &fakeProvider{current: current, subs: make(map[int]func(*domain.Identity))}
}

func (p *fakeProvider) SignIn(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignUp(context.Context, string, string) (*domain.Identity, error) {
	return nil, errors.New("not implemented")
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.push(nil)
	return nil
}

func (p *fakeProvider) Current() *domain.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProvider) Subscribe(fn func(*domain.Identity)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = fn
	current := p.current
	p.mu.Unlock()

	fn(current)
	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) push(identity *domain.Identity) {
	p.mu.Lock()
	p.current = identity
	subs := make([]func(*domain.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()
	for _, fn := range subs {
		fn(identity)
	}
}

func (p *fakeProvider) subscribers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs)
}

func TestSession_FollowsIdentity(t *testing.T) {
	store := newFakeStore()
	store.put(domain.VotesCollection, "uid-bob", domain.Document{"candidate": "Trump"})
	provider := newFakeProvider(nil)
	session := NewSession(provider, newTestLedger(store), nil)

	session.Start(context.Background())
	defer session.Close()

	assert.Nil(t, session.Identity())
	status, err := session.Status()
	require.NoError(t, err)
	assert.False(t, status.HasVoted)

	provider.push(&domain.Identity{ID: "uid-bob", Email: "bob@example.com"})
	assert.Equal(t, "uid-bob", session.Identity().ID)
	status, err = session.Status()
	require.NoError(t, err)
	assert.Equal(t, domain.VotedFor(domain.CandidateTrump), status)

	provider.push(alice)
	status, err = session.Status()
	require.NoError(t, err)
	assert.False(t, status.HasVoted)

	require.NoError(t, provider.SignOut(context.Background()))
	assert.Nil(t, session.Identity())
}

func TestSession_Vote(t *testing.T) {
	store := newFakeStore()
	provider := newFakeProvider(alice)
	session := NewSession(provider, newTestLedger(store), nil)
	session.Start(context.Background())
	defer session.Close()

	require.NoError(t, session.Vote(context.Background(), domain.CandidateHarris))
	status, err := session.Status()
	require.NoError(t, err)
	assert.Equal(t, domain.VotedFor(domain.CandidateHarris), status)

	err = session.Vote(context.Background(), domain.CandidateTrump)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)
}

func TestSession_VoteSignedOut(t *testing.T) {
	session := NewSession(newFakeProvider(nil), newTestLedger(newFakeStore()), nil)
	session.Start(context.Background())
	defer session.Close()

	assert.ErrorIs(t, session.Vote(context.Background(), domain.CandidateHarris), domain.ErrUnauthenticated)
}

func TestSession_StatusUnknown(t *testing.T) {
	store := newFakeStore()
	store.getErrs = []error{errors.New("offline")}
	session := NewSession(newFakeProvider(alice), newTestLedger(store), nil)
	session.Start(context.Background())
	defer session.Close()

	status, err := session.Status()
	assert.ErrorIs(t, err, domain.ErrStatusUnknown)
	assert.True(t, status.Unknown)
}

func TestSession_CloseUnsubscribes(t *testing.T) {
	provider := newFakeProvider(nil)
	session := NewSession(provider, newTestLedger(newFakeStore()), nil)

	session.Start(context.Background())
	session.Start(context.Background())
	assert.Equal(t, 1, provider.subscribers())

	session.Close()
	assert.Zero(t, provider.subscribers())

	provider.push(alice)
	assert.Nil(t, session.Identity(), "no updates after Close")

	session.Close()
}

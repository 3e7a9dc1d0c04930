package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// Store keeps documents, users and the vote tally in process memory. It is
// used for dry runs and tests; nothing survives a restart.
type Store struct {
	mu sync.RWMutex

	documents map[string]map[string]domain.Document
	users     map[string]domain.User
	emails    map[string]string
	results   []domain.CandidateResult

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		documents: make(map[string]map[string]domain.Document),
		users:     make(map[string]domain.User),
		emails:    make(map[string]string),
		now:       time.Now,
	}
}

func (s *Store) Get(_ context.Context, collection, key string) (domain.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[collection][key]
	if !ok {
		return nil, false, nil
	}
	return cloneDocument(doc), true, nil
}

func (s *Store) CreateIfAbsent(_ context.Context, collection, key string, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs, ok := s.documents[collection]
	if !ok {
		docs = make(map[string]domain.Document)
		s.documents[collection] = docs
	}
	if _, exists := docs[key]; exists {
		return domain.ErrAlreadyExists
	}
	docs[key] = cloneDocument(doc)
	return nil
}

func (s *Store) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.emails[strings.ToLower(email)]
	if !ok {
		return nil, nil
	}
	user := s.users[id]
	return &user, nil
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *Store) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, taken := s.emails[email]; taken {
		return domain.ErrAlreadyExists
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now()
	}
	s.users[user.ID.String()] = *user
	s.emails[email] = user.ID.String()
	return nil
}

func (s *Store) SummarizeVotes(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[domain.Candidate]int64)
	for _, doc := range s.documents[domain.VotesCollection] {
		rec, err := domain.VoteRecordFromDocument(doc)
		if err != nil {
			continue
		}
		counts[rec.Candidate]++
	}
	now := s.now()
	results := make([]domain.CandidateResult, 0, len(counts))
	for c, n := range counts {
		results = append(results, domain.CandidateResult{Candidate: c, VoteCount: n, LastUpdatedAt: now})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Candidate < results[j].Candidate })
	s.results = results
	return nil
}

func (s *Store) GetCandidateResults(_ context.Context) ([]domain.CandidateResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CandidateResult(nil), s.results...), nil
}

func cloneDocument(doc domain.Document) domain.Document {
	out := make(domain.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

var (
	_ ports.DocumentStore    = (*Store)(nil)
	_ ports.UserRepository   = (*Store)(nil)
	_ ports.ResultRepository = (*Store)(nil)
)

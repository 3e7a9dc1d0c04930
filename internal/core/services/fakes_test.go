package services

import (
	"context"
	"strings"
	"sync"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// fakeStore is an in-memory ports.DocumentStore that counts calls and can be
// told to fail.
type fakeStore struct {
	mu      sync.Mutex
	docs    map[string]domain.Document
	gets    int
	creates int

	// getErrs is consumed one entry per Get call; a nil entry means success.
	getErrs   []error
	createErr error
	// beforeCreate runs before the create takes the lock.
	beforeCreate func()
	// rewrite replaces the document actually stored; returning nil stores
	// nothing.
	rewrite func(domain.Document) domain.Document
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]domain.Document)}
}

func docKey(collection, key string) string {
	return collection + "/" + key
}

func (s *fakeStore) Get(_ context.Context, collection, key string) (domain.Document, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if len(s.getErrs) > 0 {
		err := s.getErrs[0]
		s.getErrs = s.getErrs[1:]
		if err != nil {
			return nil, false, err
		}
	}
	doc, ok := s.docs[docKey(collection, key)]
	return doc, ok, nil
}

func (s *fakeStore) CreateIfAbsent(_ context.Context, collection, key string, doc domain.Document) error {
	if s.beforeCreate != nil {
		s.beforeCreate()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creates++
	if s.createErr != nil {
		return s.createErr
	}
	k := docKey(collection, key)
	if _, ok := s.docs[k]; ok {
		return domain.ErrAlreadyExists
	}
	if s.rewrite != nil {
		doc = s.rewrite(doc)
		if doc == nil {
			return nil
		}
	}
	s.docs[k] = doc
	return nil
}

func (s *fakeStore) put(collection, key string, doc domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[docKey(collection, key)] = doc
}

func (s *fakeStore) counts() (gets, creates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.creates
}

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return r.byEmail[strings.ToLower(email)], nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byEmail {
		if u.ID.String() == id {
			return u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.byEmail[user.Email]; ok {
		return domain.ErrAlreadyExists
	}
	r.byEmail[user.Email] = user
	return nil
}

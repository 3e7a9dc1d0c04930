package bbolt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

const (
	documentBucketPrefix = "doc:"
	usersBucket          = "users"
	usersByEmailBucket   = "users_by_email"
	resultsBucket        = "vote_results"

	openTimeout = time.Second
)

// Store is an embedded, single-file backend for local runs and the CLI.
// Each document collection is a bucket keyed by document key.
type Store struct {
	db     *bolt.DB
	logger *slog.Logger
	now    func() time.Time
}

func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, translate(err))
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{usersBucket, usersByEmailBucket, resultsBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bolt store %s: %w", path, err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(_ context.Context, collection, key string) (domain.Document, bool, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(documentBucket(collection))
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, s.logError("bolt_store_get_failed", translate(err), "collection", collection, "key", key)
	}
	if raw == nil {
		return nil, false, nil
	}

	var doc domain.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, false, s.logError("bolt_store_decode_failed", err, "collection", collection, "key", key)
	}
	return doc, true, nil
}

// CreateIfAbsent checks and writes inside one read-write transaction, so the
// check cannot be raced by another writer on the same file.
func (s *Store) CreateIfAbsent(_ context.Context, collection, key string, doc domain.Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(documentBucket(collection))
		if err != nil {
			return err
		}
		if b.Get([]byte(key)) != nil {
			return domain.ErrAlreadyExists
		}
		return b.Put([]byte(key), raw)
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	if err != nil {
		return s.logError("bolt_store_create_failed", translate(err), "collection", collection, "key", key)
	}
	return nil
}

type userModel struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var id string
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(usersByEmailBucket)).Get([]byte(strings.ToLower(email))); v != nil {
			id = string(v)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	if id == "" {
		return nil, nil
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetByID(_ context.Context, id string) (*domain.User, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(usersBucket)).Get([]byte(id)); v != nil {
			raw = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	if raw == nil {
		return nil, nil
	}

	var m userModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return m.toEntity()
}

func (s *Store) Create(_ context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = s.now().UTC()
	}
	m := userModel{
		ID:           user.ID.String(),
		Email:        strings.ToLower(user.Email),
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	err = s.db.Update(func(tx *bolt.Tx) error {
		byEmail := tx.Bucket([]byte(usersByEmailBucket))
		if byEmail.Get([]byte(m.Email)) != nil {
			return domain.ErrAlreadyExists
		}
		if err := tx.Bucket([]byte(usersBucket)).Put([]byte(m.ID), raw); err != nil {
			return err
		}
		return byEmail.Put([]byte(m.Email), []byte(m.ID))
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return err
	}
	if err != nil {
		return s.logError("bolt_store_create_user_failed", translate(err), "user_id", m.ID)
	}
	return nil
}

type resultModel struct {
	VoteCount     int64     `json:"vote_count"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}

// SummarizeVotes recounts the votes collection and replaces the tally.
func (s *Store) SummarizeVotes(_ context.Context) error {
	now := s.now().UTC()
	err := s.db.Update(func(tx *bolt.Tx) error {
		counts := make(map[string]int64)
		if votes := tx.Bucket(documentBucket(domain.VotesCollection)); votes != nil {
			err := votes.ForEach(func(_, v []byte) error {
				var doc domain.Document
				if err := json.Unmarshal(v, &doc); err != nil {
					return err
				}
				rec, err := domain.VoteRecordFromDocument(doc)
				if err != nil {
					return nil
				}
				counts[string(rec.Candidate)]++
				return nil
			})
			if err != nil {
				return err
			}
		}

		if err := tx.DeleteBucket([]byte(resultsBucket)); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		results, err := tx.CreateBucket([]byte(resultsBucket))
		if err != nil {
			return err
		}
		for candidate, n := range counts {
			raw, err := json.Marshal(resultModel{VoteCount: n, LastUpdatedAt: now})
			if err != nil {
				return err
			}
			if err := results.Put([]byte(candidate), raw); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return s.logError("bolt_store_summarize_failed", translate(err))
	}
	return nil
}

func (s *Store) GetCandidateResults(_ context.Context) ([]domain.CandidateResult, error) {
	var results []domain.CandidateResult
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(resultsBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var m resultModel
			if err := json.Unmarshal(v, &m); err != nil {
				return err
			}
			results = append(results, domain.CandidateResult{
				Candidate:     domain.Candidate(k),
				VoteCount:     m.VoteCount,
				LastUpdatedAt: m.LastUpdatedAt,
			})
			return nil
		})
	})
	if err != nil {
		return nil, translate(err)
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Candidate < results[j].Candidate })
	return results, nil
}

func (s *Store) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+8)
	fields = append(fields,
		"event", event,
		"module", "adapters/repository/bbolt",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	s.logger.Error("bolt store operation failed", fields...)
	return err
}

func (m userModel) toEntity() (*domain.User, error) {
	user := &domain.User{
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
	}
	if err := user.ID.UnmarshalText([]byte(m.ID)); err != nil {
		return nil, fmt.Errorf("decode user id %q: %w", m.ID, err)
	}
	return user, nil
}

func documentBucket(collection string) []byte {
	return []byte(documentBucketPrefix + collection)
}

// translate maps bbolt failures onto the store error kinds the vote ledger
// understands.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bolt.ErrDatabaseReadOnly), errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", domain.ErrPermissionDenied, err)
	case errors.Is(err, bolt.ErrDatabaseNotOpen), errors.Is(err, bolt.ErrTimeout):
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	default:
		return err
	}
}

var (
	_ ports.DocumentStore    = (*Store)(nil)
	_ ports.UserRepository   = (*Store)(nil)
	_ ports.ResultRepository = (*Store)(nil)
)

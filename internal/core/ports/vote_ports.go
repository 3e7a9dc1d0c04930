package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// DocumentStore is a keyed document store. CreateIfAbsent must never
// overwrite: when a document already exists at key it fails with
// domain.ErrAlreadyExists. Other failures are reported as
// domain.ErrPermissionDenied or domain.ErrStoreUnavailable where the backend
// can tell them apart.
type DocumentStore interface {
	Get(ctx context.Context, collection, key string) (domain.Document, bool, error)
	CreateIfAbsent(ctx context.Context, collection, key string, doc domain.Document) error
}

type VoteLedger interface {
	CheckStatus(ctx context.Context, identity *domain.Identity) (domain.VoteStatus, error)
	CastVote(ctx context.Context, identity *domain.Identity, candidate domain.Candidate) error
	Candidates() []domain.Candidate
}

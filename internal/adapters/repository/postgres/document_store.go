package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

type documentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) ports.DocumentStore {
	return &documentStore{
		db: db,
	}
}

func (r *documentStore) Get(ctx context.Context, collection, key string) (domain.Document, bool, error) {
	query := `SELECT body FROM documents WHERE collection = $1 AND key = $2`
	var body []byte
	err := r.db.QueryRowContext(ctx, query, collection, key).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get document %s/%s: %w", collection, key, translate(err))
	}

	var doc domain.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, false, fmt.Errorf("failed to decode document %s/%s: %w", collection, key, err)
	}
	return doc, true, nil
}

// CreateIfAbsent never overwrites. The primary key on (collection, key)
// arbitrates concurrent writers; the losing insert affects no rows.
func (r *documentStore) CreateIfAbsent(ctx context.Context, collection, key string, doc domain.Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
		INSERT INTO documents (collection, key, body)
		VALUES ($1, $2, $3)
		ON CONFLICT (collection, key) DO NOTHING;
	`
	res, err := r.db.ExecContext(ctx, query, collection, key, body)
	if err != nil {
		return fmt.Errorf("failed to create document %s/%s: %w", collection, key, translate(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", translate(err))
	}
	if n == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

package storage

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/salesvote/internal/adapters/repository/bbolt"
	"github.com/vncsmyrnk/salesvote/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/salesvote/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/salesvote/internal/config"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// Backend bundles the repositories of one configured store driver.
type Backend struct {
	Documents ports.DocumentStore
	Users     ports.UserRepository
	Results   ports.ResultRepository
	// DB is set for the postgres driver only.
	DB *sql.DB

	closeFn func() error
}

func (b *Backend) Close() error {
	if b == nil || b.closeFn == nil {
		return nil
	}
	return b.closeFn()
}

func Open(cfg config.Config, logger *slog.Logger) (*Backend, error) {
	switch cfg.StoreDriver {
	case config.DriverPostgres:
		p := cfg.Postgres
		db, err := postgres.Open(postgres.ConnString(p.Host, p.Port, p.User, p.Password, p.DB))
		if err != nil {
			return nil, err
		}
		return &Backend{
			Documents: postgres.NewDocumentStore(db),
			Users:     postgres.NewUserRepository(db),
			Results:   postgres.NewResultRepository(db),
			DB:        db,
			closeFn:   db.Close,
		}, nil

	case config.DriverBolt:
		store, err := bbolt.Open(cfg.BoltPath, logger)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Documents: store,
			Users:     store,
			Results:   store,
			closeFn:   store.Close,
		}, nil

	case config.DriverMemory:
		store := memory.NewStore()
		return &Backend{Documents: store, Users: store, Results: store}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// ConnString builds a lib/pq connection URL.
func ConnString(host, port, user, password, dbName string) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, password, host, port, dbName)
}

// Open opens and pings a postgres connection pool.
func Open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", translate(err))
	}
	return db, nil
}

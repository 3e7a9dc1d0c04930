package ports

import (
	"context"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
)

// DatasetLoader returns the raw dataset text.
type DatasetLoader interface {
	Load(ctx context.Context) (string, error)
}

type SalesView struct {
	Suppliers []domain.SupplierSummary
	Total     int
	// Err is the failure of the last load, if any. Suppliers is empty then.
	Err error
}

type SalesService interface {
	Reload(ctx context.Context) error
	View(count domain.WindowSize) SalesView
}

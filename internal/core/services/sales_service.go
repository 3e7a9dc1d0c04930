package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/salesvote/internal/core/domain"
	"github.com/vncsmyrnk/salesvote/internal/core/ports"
)

// salesService holds the result of the last completed aggregation pass.
// Every Reload replaces it wholesale.
type salesService struct {
	loader ports.DatasetLoader
	logger *slog.Logger

	mu        sync.RWMutex
	summaries []domain.SupplierSummary
	loadErr   error
}

func NewSalesService(loader ports.DatasetLoader, logger *slog.Logger) ports.SalesService {
	return &salesService{
		loader:  loader,
		logger:  ResolveLogger(logger),
		loadErr: domain.ParseError("dataset not loaded", nil),
	}
}

func (s *salesService) Reload(ctx context.Context) error {
	summaries, err := s.load(ctx)

	s.mu.Lock()
	s.summaries = summaries
	s.loadErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Warn("sales dataset unavailable",
			"event", "sales_reload_failed",
			"module", "core/services",
			"layer", "application",
			"error", err.Error(),
		)
		return err
	}
	s.logger.Info("sales dataset loaded",
		"event", "sales_reload_succeeded",
		"module", "core/services",
		"layer", "application",
		"suppliers", len(summaries),
	)
	return nil
}

func (s *salesService) load(ctx context.Context) ([]domain.SupplierSummary, error) {
	raw, err := s.loader.Load(ctx)
	if err != nil {
		return []domain.SupplierSummary{}, domain.ParseError("load", err)
	}
	return Aggregate(raw)
}

func (s *salesService) View(count domain.WindowSize) ports.SalesView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	window := Window(s.summaries, count)
	suppliers := make([]domain.SupplierSummary, len(window))
	copy(suppliers, window)

	return ports.SalesView{
		Suppliers: suppliers,
		Total:     len(s.summaries),
		Err:       s.loadErr,
	}
}

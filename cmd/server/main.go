package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vncsmyrnk/salesvote/internal/adapters/dataset"
	"github.com/vncsmyrnk/salesvote/internal/adapters/handler/http"
	"github.com/vncsmyrnk/salesvote/internal/adapters/oauth/google"
	"github.com/vncsmyrnk/salesvote/internal/config"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
	"github.com/vncsmyrnk/salesvote/internal/platform/storage"
)

// @title        Salesvote API
// @version      1.0
// @description  Supplier sales summaries and one-vote-per-account polling.
// @BasePath     /
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.ValidateAuth(); err != nil {
		log.Fatal(err)
	}

	backend, err := storage.Open(cfg, logger)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

	candidates := cfg.CandidateList()

	authService := services.NewAuthService(backend.Users, google.NewVerifier(), cfg.JWTSecret, cfg.GoogleClientID, logger)
	userService := services.NewUserService(backend.Users)
	ledger := services.NewVoteLedger(backend.Documents, candidates, logger)
	summaryService := services.NewSummaryService(backend.Results, candidates)
	salesService := services.NewSalesService(dataset.NewLoader(cfg.DatasetPath, nil), logger)

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), time.Minute)
	if err := salesService.Reload(loadCtx); err != nil {
		logger.Warn("starting without sales data", "dataset", cfg.DatasetPath, "error", err)
	}
	cancelLoad()

	handler := http.NewHandler(
		authService,
		http.NewAuthHandler(authService, cfg.CookieDomain, stdhttp.SameSiteLaxMode),
		http.NewUserHandler(userService),
		http.NewVoteHandler(ledger, summaryService),
		http.NewSalesHandler(salesService),
		cfg.CORSOrigins,
	)
	server := &stdhttp.Server{Addr: fmt.Sprintf("0.0.0.0:%d", cfg.Port), Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", server.Addr, "store_driver", cfg.StoreDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	fmt.Println("Gracefully shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

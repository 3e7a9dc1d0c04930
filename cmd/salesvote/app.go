package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/salesvote/internal/adapters/identity"
	"github.com/vncsmyrnk/salesvote/internal/config"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
	"github.com/vncsmyrnk/salesvote/internal/platform/storage"
)

// app is the wiring shared by the account and vote commands.
type app struct {
	cfg      config.Config
	logger   *slog.Logger
	backend  *storage.Backend
	provider *identity.Provider
	ledger   *services.VoteLedger
	session  *services.Session
}

func newApp(cmd *cobra.Command) (*app, error) {
	logger := newLogger(cmd)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateAuth(); err != nil {
		return nil, err
	}

	backend, err := storage.Open(cfg, logger)
	if err != nil {
		return nil, err
	}

	authService := services.NewAuthService(backend.Users, nil, cfg.JWTSecret, cfg.GoogleClientID, logger)
	provider := identity.NewProvider(authService, cfg.SessionPath, logger)
	ledger := services.NewVoteLedger(backend.Documents, cfg.CandidateList(), logger)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		backend:  backend,
		provider: provider,
		ledger:   ledger,
		session:  services.NewSession(provider, ledger, logger),
	}
	a.session.Start(cmd.Context())
	return a, nil
}

func (a *app) Close() {
	a.session.Close()
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	var w io.Writer = io.Discard
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		w = os.Stderr
	}
	return slog.New(slog.NewTextHandler(w, nil))
}

package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/vncsmyrnk/salesvote/internal/config"
	"github.com/vncsmyrnk/salesvote/internal/core/services"
	"github.com/vncsmyrnk/salesvote/internal/platform/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	flag.StringVar(&cfg.StoreDriver, "store", cfg.StoreDriver, "Store driver (postgres, bolt)")
	flag.StringVar(&cfg.Postgres.Host, "db-host", cfg.Postgres.Host, "Database host")
	flag.StringVar(&cfg.Postgres.Port, "db-port", cfg.Postgres.Port, "Database port")
	flag.StringVar(&cfg.Postgres.User, "db-user", cfg.Postgres.User, "Database user")
	flag.StringVar(&cfg.Postgres.Password, "db-pass", cfg.Postgres.Password, "Database password")
	flag.StringVar(&cfg.Postgres.DB, "db-name", cfg.Postgres.DB, "Database name")
	flag.StringVar(&cfg.BoltPath, "bolt-path", cfg.BoltPath, "Bolt database file")
	flag.Parse()

	if cfg.StoreDriver == config.DriverMemory {
		log.Fatal("nothing to summarize in the memory store")
	}

	backend, err := storage.Open(cfg, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer backend.Close()

	summaryService := services.NewSummaryService(backend.Results, cfg.CandidateList())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	log.Println("Starting vote summarization job...")

	if err := summaryService.SummarizeAllVotes(ctx); err != nil {
		log.Fatalf("Error summarizing votes: %v", err)
	}

	results, err := summaryService.Results(ctx)
	if err != nil {
		log.Fatalf("Error reading results: %v", err)
	}
	for _, r := range results {
		log.Printf("%s: %d (%.1f%%)", r.Candidate, r.VoteCount, r.Percentage)
	}

	log.Println("Vote summarization completed successfully.")
}

package main

import (
	"context"
	"os"
	"time"

	"github.com/creditline/backend/internal/config"
	"github.com/creditline/backend/internal/db"
	"github.com/creditline/backend/internal/ingest"
	"github.com/creditline/backend/internal/observability"
	postgresrepo "github.com/creditline/backend/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	customersFile, err := os.Open(cfg.CustomerCSVPath)
	if err != nil {
		logger.Error("failed to open customer csv", "path", cfg.CustomerCSVPath, "err", err)
		os.Exit(1)
	}
	defer customersFile.Close()

	loansFile, err := os.Open(cfg.LoanCSVPath)
	if err != nil {
		logger.Error("failed to open loan csv", "path", cfg.LoanCSVPath, "err", err)
		os.Exit(1)
	}
	defer loansFile.Close()

	svc := ingest.NewService(
		postgresrepo.NewCustomerRepository(pool),
		postgresrepo.NewLoanRepository(pool),
		logger,
	)

	result, err := svc.Run(ctx, customersFile, loansFile)
	if err != nil {
		logger.Error("ingestion failed", "err", err)
		os.Exit(1)
	}

	logger.Info("ingestion completed",
		"customers_processed", result.Customers.Processed,
		"customers_skipped", len(result.Customers.Skipped),
		"loans_processed", result.Loans.Processed,
		"loans_skipped", len(result.Loans.Skipped),
		"debts_recomputed", result.DebtsRecomputed,
	)
}

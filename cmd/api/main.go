package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/creditline/backend/internal/config"
	"github.com/creditline/backend/internal/db"
	customerdomain "github.com/creditline/backend/internal/domain/customer"
	loandomain "github.com/creditline/backend/internal/domain/loan"
	"github.com/creditline/backend/internal/http/handlers"
	"github.com/creditline/backend/internal/observability"
	postgresrepo "github.com/creditline/backend/internal/repository/postgres"
	"github.com/creditline/backend/internal/server"
	"github.com/creditline/backend/internal/ws"
)

func main() {
	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	metrics := observability.NewMetrics()

	customerRepo := postgresrepo.NewCustomerRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	eventRepo := postgresrepo.NewEventRepository(pool)

	customerService := customerdomain.NewService(customerRepo)
	loanService := loandomain.NewService(customerRepo, loanRepo, eventRepo)

	hub := ws.NewHub()
	notifier := ws.NewNotifier(eventRepo, hub, cfg.WSPollInterval)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:          pool,
		CustomerHandler: handlers.NewCustomerHandler(customerService, metrics),
		LoanHandler:     handlers.NewLoanHandler(loanService, metrics),
		WSHandler:       ws.NewHandler(hub),
		Metrics:         metrics,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	notifierCtx, stopNotifier := context.WithCancel(context.Background())
	defer stopNotifier()
	go func() {
		if err := notifier.Run(notifierCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ws notifier stopped", "err", err)
		}
	}()

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}

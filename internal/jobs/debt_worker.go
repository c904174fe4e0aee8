package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

const reconcileDebtTopic = "reconcile_customer_debt"

type OutboxJob struct {
	ID          int64
	Topic       string
	Payload     []byte
	Status      string
	Attempts    int32
	LastError   string
	AvailableAt time.Time
}

type OutboxRepository interface {
	ClaimPending(ctx context.Context, limit int32) ([]OutboxJob, error)
	MarkDone(ctx context.Context, jobID int64) error
	MarkRetry(ctx context.Context, jobID int64, nextAvailableAt time.Time, lastError string) error
	MarkFailed(ctx context.Context, jobID int64, lastError string) error
}

type CustomerRepository interface {
	RecomputeDebt(ctx context.Context, customerID int64) (decimal.Decimal, error)
}

// Worker drains the outbox and rewrites customer debt from the loan ledger,
// so the incrementally maintained value can never drift for long.
type Worker struct {
	outboxRepo   OutboxRepository
	customerRepo CustomerRepository
	logger       *slog.Logger
	maxAttempts  int32
	now          func() time.Time
	retryBackoff func(attempt int32) time.Duration
}

func NewWorker(outboxRepo OutboxRepository, customerRepo CustomerRepository, logger *slog.Logger, maxAttempts int32) *Worker {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &Worker{
		outboxRepo:   outboxRepo,
		customerRepo: customerRepo,
		logger:       logger,
		maxAttempts:  maxAttempts,
		now:          func() time.Time { return time.Now().UTC() },
		retryBackoff: func(attempt int32) time.Duration {
			if attempt < 1 {
				attempt = 1
			}
			return time.Duration(attempt*15) * time.Second
		},
	}
}

func (w *Worker) RunOnce(ctx context.Context, batchSize int32) error {
	jobs, err := w.outboxRepo.ClaimPending(ctx, batchSize)
	if err != nil {
		return err
	}

	for _, job := range jobs {
		if err := w.processJob(ctx, job); err != nil {
			return err
		}
	}

	return nil
}

func (w *Worker) processJob(ctx context.Context, job OutboxJob) error {
	switch job.Topic {
	case reconcileDebtTopic:
		return w.processReconcileDebt(ctx, job)
	default:
		if job.Attempts >= w.maxAttempts {
			return w.outboxRepo.MarkFailed(ctx, job.ID, "unsupported_topic")
		}
		next := w.now().Add(w.retryBackoff(job.Attempts))
		return w.outboxRepo.MarkRetry(ctx, job.ID, next, "unsupported_topic")
	}
}

type reconcileDebtPayload struct {
	CustomerID int64 `json:"customer_id"`
}

func (w *Worker) processReconcileDebt(ctx context.Context, job OutboxJob) error {
	var payload reconcileDebtPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return w.handleJobError(ctx, job, errors.New("invalid_payload"))
	}
	if payload.CustomerID <= 0 {
		return w.handleJobError(ctx, job, errors.New("missing_customer_id"))
	}

	debt, err := w.customerRepo.RecomputeDebt(ctx, payload.CustomerID)
	if err != nil {
		return w.handleJobError(ctx, job, err)
	}

	if w.logger != nil {
		w.logger.Info("customer debt reconciled", "customer_id", payload.CustomerID, "current_debt", debt.StringFixed(2))
	}
	return w.outboxRepo.MarkDone(ctx, job.ID)
}

func (w *Worker) handleJobError(ctx context.Context, job OutboxJob, err error) error {
	msg := err.Error()
	if job.Attempts >= w.maxAttempts {
		return w.outboxRepo.MarkFailed(ctx, job.ID, msg)
	}
	next := w.now().Add(w.retryBackoff(job.Attempts))
	return w.outboxRepo.MarkRetry(ctx, job.ID, next, msg)
}

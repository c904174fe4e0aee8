package loan

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

const (
	StatusActive    = "ACTIVE"
	StatusCompleted = "COMPLETED"
	StatusDefaulted = "DEFAULTED"
)

var ErrNotFound = errors.New("loan_not_found")

type Entity struct {
	ID                 int64
	CustomerID         int64
	Amount             decimal.Decimal
	TenureMonths       int32
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	EMIsPaidOnTime     int32
	StartDate          time.Time
	EndDate            time.Time
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// RemainingEMIs is floored at zero so an overpaid row never goes negative.
func (e Entity) RemainingEMIs() int32 {
	remaining := e.TenureMonths - e.EMIsPaidOnTime
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Outstanding is the amount still owed: zero once COMPLETED, otherwise the
// remaining installment count times the monthly installment.
func (e Entity) Outstanding() decimal.Decimal {
	if e.Status == StatusCompleted {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(e.RemainingEMIs())).Mul(e.MonthlyInstallment)
}

type CreateInput struct {
	CustomerID         int64
	Amount             decimal.Decimal
	TenureMonths       int32
	InterestRate       decimal.Decimal
	MonthlyInstallment decimal.Decimal
	StartDate          time.Time
	EndDate            time.Time
}

type Repository interface {
	// CreateApproved persists an approved loan and applies the customer debt
	// increment in the same transaction.
	CreateApproved(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	// ListByCustomer returns the customer's loans, optionally filtered by
	// status. An empty status returns the full history.
	ListByCustomer(ctx context.Context, customerID int64, status string) ([]Entity, error)
	Upsert(ctx context.Context, e Entity) error
	SyncIDSequence(ctx context.Context) error
}

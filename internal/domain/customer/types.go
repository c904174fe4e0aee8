package customer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound   = errors.New("customer_not_found")
	ErrPhoneTaken = errors.New("phone_number_already_registered")
)

type Entity struct {
	ID            int64
	FirstName     string
	LastName      string
	Age           int32
	PhoneNumber   string
	MonthlyIncome int64
	ApprovedLimit int64
	CurrentDebt   decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (e Entity) FullName() string {
	return fmt.Sprintf("%s %s", e.FirstName, e.LastName)
}

type CreateInput struct {
	FirstName     string
	LastName      string
	Age           int32
	PhoneNumber   string
	MonthlyIncome int64
	ApprovedLimit int64
}

type Repository interface {
	// Create allocates the next customer id from the ledger-owned counter and
	// inserts the row.
	Create(ctx context.Context, in CreateInput) (*Entity, error)
	GetByID(ctx context.Context, id int64) (*Entity, error)
	GetByPhone(ctx context.Context, phoneNumber string) (*Entity, error)
	Upsert(ctx context.Context, e Entity) error
	ListIDs(ctx context.Context) ([]int64, error)
	// RecomputeDebt rewrites current_debt from the sum of outstanding amounts
	// of the customer's active loans and returns the new value.
	RecomputeDebt(ctx context.Context, id int64) (decimal.Decimal, error)
	SyncIDSequence(ctx context.Context) error
}

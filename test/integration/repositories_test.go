package integration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	customerdomain "github.com/creditline/backend/internal/domain/customer"
	loandomain "github.com/creditline/backend/internal/domain/loan"
	"github.com/creditline/backend/internal/repository/postgres"
	"github.com/creditline/backend/test/integration/testutil"
)

func TestPostgresRepositoriesCoreFlow(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	customerRepo := postgres.NewCustomerRepository(pool)
	loanRepo := postgres.NewLoanRepository(pool)

	cust, err := customerRepo.Create(ctx, customerdomain.CreateInput{
		FirstName:     "Meera",
		LastName:      "Joshi",
		Age:           29,
		PhoneNumber:   "9111111111",
		MonthlyIncome: 80000,
		ApprovedLimit: 2900000,
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if cust.ID == 0 {
		t.Fatalf("expected sequence-assigned customer id")
	}
	if !cust.CurrentDebt.IsZero() {
		t.Fatalf("expected zero initial debt, got %s", cust.CurrentDebt)
	}

	byPhone, err := customerRepo.GetByPhone(ctx, "9111111111")
	if err != nil {
		t.Fatalf("get by phone: %v", err)
	}
	if byPhone.ID != cust.ID {
		t.Fatalf("customer mismatch: got %d want %d", byPhone.ID, cust.ID)
	}

	if _, err := customerRepo.GetByID(ctx, 9999); !errors.Is(err, customerdomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	created, err := loanRepo.CreateApproved(ctx, loandomain.CreateInput{
		CustomerID:         cust.ID,
		Amount:             decimal.NewFromInt(300000),
		TenureMonths:       24,
		InterestRate:       decimal.NewFromFloat(12.5),
		MonthlyInstallment: decimal.NewFromFloat(14195.68),
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, 24, 0),
	})
	if err != nil {
		t.Fatalf("create approved loan: %v", err)
	}
	if created.ID == 0 || created.Status != loandomain.StatusActive {
		t.Fatalf("unexpected loan: %+v", created)
	}

	// The insert and the debt increment share a transaction.
	afterLoan, err := customerRepo.GetByID(ctx, cust.ID)
	if err != nil {
		t.Fatalf("get customer after loan: %v", err)
	}
	if !afterLoan.CurrentDebt.Equal(decimal.NewFromInt(300000)) {
		t.Fatalf("expected current debt 300000, got %s", afterLoan.CurrentDebt)
	}

	loans, err := loanRepo.ListByCustomer(ctx, cust.ID, "")
	if err != nil {
		t.Fatalf("list loans: %v", err)
	}
	if len(loans) != 1 || loans[0].ID != created.ID {
		t.Fatalf("unexpected loan list: %+v", loans)
	}

	active, err := loanRepo.ListByCustomer(ctx, cust.ID, loandomain.StatusActive)
	if err != nil {
		t.Fatalf("list active loans: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active loan, got %d", len(active))
	}

	if _, err := loanRepo.GetByID(ctx, 9999); !errors.Is(err, loandomain.ErrNotFound) {
		t.Fatalf("expected loan ErrNotFound, got %v", err)
	}

	// Reconciling rewrites current_debt from the loan rows: 24 unpaid EMIs at
	// 14195.68 each.
	debt, err := customerRepo.RecomputeDebt(ctx, cust.ID)
	if err != nil {
		t.Fatalf("recompute debt: %v", err)
	}
	want := decimal.NewFromFloat(14195.68).Mul(decimal.NewFromInt(24))
	if !debt.Equal(want) {
		t.Fatalf("expected recomputed debt %s, got %s", want, debt)
	}
}

func TestPostgresCreateApprovedUnknownCustomer(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	loanRepo := postgres.NewLoanRepository(pool)
	startDate := time.Now().UTC().Truncate(24 * time.Hour)
	_, err := loanRepo.CreateApproved(context.Background(), loandomain.CreateInput{
		CustomerID:         4242,
		Amount:             decimal.NewFromInt(1000),
		TenureMonths:       12,
		InterestRate:       decimal.NewFromInt(12),
		MonthlyInstallment: decimal.NewFromInt(90),
		StartDate:          startDate,
		EndDate:            startDate.AddDate(0, 12, 0),
	})
	if !errors.Is(err, customerdomain.ErrNotFound) {
		t.Fatalf("expected customer ErrNotFound, got %v", err)
	}
}

func TestPostgresUpsertAndSequenceSync(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	customerRepo := postgres.NewCustomerRepository(pool)

	// Import a row with an explicit id, then sync the sequence past it.
	err := customerRepo.Upsert(ctx, customerdomain.Entity{
		ID:            50,
		FirstName:     "Imported",
		LastName:      "Customer",
		Age:           40,
		PhoneNumber:   "9222222222",
		MonthlyIncome: 60000,
		ApprovedLimit: 2200000,
		CurrentDebt:   decimal.Zero,
	})
	if err != nil {
		t.Fatalf("upsert customer: %v", err)
	}
	if err := customerRepo.SyncIDSequence(ctx); err != nil {
		t.Fatalf("sync sequence: %v", err)
	}

	created, err := customerRepo.Create(ctx, customerdomain.CreateInput{
		FirstName:     "Fresh",
		LastName:      "Signup",
		Age:           25,
		PhoneNumber:   "9333333333",
		MonthlyIncome: 40000,
		ApprovedLimit: 1400000,
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if created.ID != 51 {
		t.Fatalf("expected next id 51 after sequence sync, got %d", created.ID)
	}
}

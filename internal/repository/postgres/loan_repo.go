package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditline/backend/internal/domain/customer"
	"github.com/creditline/backend/internal/domain/loan"
)

const loanColumns = `id, customer_id, amount, tenure_months, interest_rate, monthly_installment,
       emis_paid_on_time, start_date, end_date, status, created_at, updated_at`

const reconcileDebtTopic = "reconcile_customer_debt"

type LoanRepository struct {
	pool *pgxpool.Pool
}

func NewLoanRepository(pool *pgxpool.Pool) *LoanRepository {
	return &LoanRepository{pool: pool}
}

// CreateApproved inserts the loan, applies the debt increment and enqueues a
// debt reconcile job in one transaction. The customer row is locked first so
// two concurrent applications cannot both be approved against the same debt
// snapshot.
func (r *LoanRepository) CreateApproved(ctx context.Context, in loan.CreateInput) (*loan.Entity, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var locked int64
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1 FOR UPDATE`, in.CustomerID).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	q := `
INSERT INTO loans (customer_id, amount, tenure_months, interest_rate, monthly_installment, start_date, end_date, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,'ACTIVE')
RETURNING ` + loanColumns
	out := &loan.Entity{}
	err = tx.QueryRow(ctx, q,
		in.CustomerID, in.Amount, in.TenureMonths, in.InterestRate, in.MonthlyInstallment, in.StartDate, in.EndDate,
	).Scan(
		&out.ID, &out.CustomerID, &out.Amount, &out.TenureMonths, &out.InterestRate, &out.MonthlyInstallment,
		&out.EMIsPaidOnTime, &out.StartDate, &out.EndDate, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx,
		`UPDATE customers SET current_debt = current_debt + $2, updated_at = NOW() WHERE id = $1`,
		in.CustomerID, in.Amount,
	)
	if err != nil {
		return nil, err
	}

	payload, _ := json.Marshal(map[string]int64{"customer_id": in.CustomerID})
	_, err = tx.Exec(ctx,
		`INSERT INTO outbox_jobs (topic, payload, status) VALUES ($1, $2::jsonb, 'pending')`,
		reconcileDebtTopic, payload,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	out := &loan.Entity{}
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&out.ID, &out.CustomerID, &out.Amount, &out.TenureMonths, &out.InterestRate, &out.MonthlyInstallment,
		&out.EMIsPaidOnTime, &out.StartDate, &out.EndDate, &out.Status, &out.CreatedAt, &out.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, loan.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *LoanRepository) ListByCustomer(ctx context.Context, customerID int64, status string) ([]loan.Entity, error) {
	q := `SELECT ` + loanColumns + ` FROM loans WHERE customer_id = $1`
	args := []any{customerID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Entity, 0)
	for rows.Next() {
		var item loan.Entity
		if err := rows.Scan(
			&item.ID, &item.CustomerID, &item.Amount, &item.TenureMonths, &item.InterestRate, &item.MonthlyInstallment,
			&item.EMIsPaidOnTime, &item.StartDate, &item.EndDate, &item.Status, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *LoanRepository) Upsert(ctx context.Context, e loan.Entity) error {
	q := `
INSERT INTO loans (id, customer_id, amount, tenure_months, interest_rate, monthly_installment,
                   emis_paid_on_time, start_date, end_date, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  customer_id = EXCLUDED.customer_id,
  amount = EXCLUDED.amount,
  tenure_months = EXCLUDED.tenure_months,
  interest_rate = EXCLUDED.interest_rate,
  monthly_installment = EXCLUDED.monthly_installment,
  emis_paid_on_time = EXCLUDED.emis_paid_on_time,
  start_date = EXCLUDED.start_date,
  end_date = EXCLUDED.end_date,
  status = EXCLUDED.status,
  updated_at = NOW()
`
	_, err := r.pool.Exec(ctx, q,
		e.ID, e.CustomerID, e.Amount, e.TenureMonths, e.InterestRate, e.MonthlyInstallment,
		e.EMIsPaidOnTime, e.StartDate, e.EndDate, e.Status,
	)
	return err
}

func (r *LoanRepository) SyncIDSequence(ctx context.Context) error {
	q := `SELECT setval('loan_id_seq', GREATEST(COALESCE(MAX(id), 0), 1), COALESCE(MAX(id), 0) > 0) FROM loans`
	_, err := r.pool.Exec(ctx, q)
	return err
}

package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/creditline/backend/internal/domain/customer"
)

const customerColumns = `id, first_name, last_name, age, phone_number, monthly_income,
       approved_limit, current_debt, created_at, updated_at`

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

func (r *CustomerRepository) Create(ctx context.Context, in customer.CreateInput) (*customer.Entity, error) {
	q := `
INSERT INTO customers (first_name, last_name, age, phone_number, monthly_income, approved_limit)
VALUES ($1,$2,$3,$4,$5,$6)
RETURNING ` + customerColumns
	return r.scanOne(r.pool.QueryRow(ctx, q,
		in.FirstName, in.LastName, in.Age, in.PhoneNumber, in.MonthlyIncome, in.ApprovedLimit,
	))
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	out, err := r.scanOne(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	return out, err
}

func (r *CustomerRepository) GetByPhone(ctx context.Context, phoneNumber string) (*customer.Entity, error) {
	q := `SELECT ` + customerColumns + ` FROM customers WHERE phone_number = $1`
	out, err := r.scanOne(r.pool.QueryRow(ctx, q, phoneNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, customer.ErrNotFound
	}
	return out, err
}

func (r *CustomerRepository) Upsert(ctx context.Context, e customer.Entity) error {
	q := `
INSERT INTO customers (id, first_name, last_name, age, phone_number, monthly_income, approved_limit, current_debt)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (id) DO UPDATE SET
  first_name = EXCLUDED.first_name,
  last_name = EXCLUDED.last_name,
  age = EXCLUDED.age,
  phone_number = EXCLUDED.phone_number,
  monthly_income = EXCLUDED.monthly_income,
  approved_limit = EXCLUDED.approved_limit,
  updated_at = NOW()
`
	_, err := r.pool.Exec(ctx, q,
		e.ID, e.FirstName, e.LastName, e.Age, e.PhoneNumber, e.MonthlyIncome, e.ApprovedLimit, e.CurrentDebt,
	)
	return err
}

func (r *CustomerRepository) ListIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// RecomputeDebt rewrites current_debt from the active loans instead of
// trusting the incrementally maintained value.
func (r *CustomerRepository) RecomputeDebt(ctx context.Context, id int64) (decimal.Decimal, error) {
	q := `
UPDATE customers SET
  current_debt = COALESCE((
    SELECT SUM(GREATEST(tenure_months - emis_paid_on_time, 0) * monthly_installment)
    FROM loans
    WHERE customer_id = $1 AND status = 'ACTIVE'
  ), 0),
  updated_at = NOW()
WHERE id = $1
RETURNING current_debt
`
	var debt decimal.Decimal
	err := r.pool.QueryRow(ctx, q, id).Scan(&debt)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, customer.ErrNotFound
	}
	return debt, err
}

// SyncIDSequence advances the id counter past the highest imported id so
// sequence-allocated ids never collide with ingested rows.
func (r *CustomerRepository) SyncIDSequence(ctx context.Context) error {
	q := `SELECT setval('customer_id_seq', GREATEST(COALESCE(MAX(id), 0), 1), COALESCE(MAX(id), 0) > 0) FROM customers`
	_, err := r.pool.Exec(ctx, q)
	return err
}

func (r *CustomerRepository) scanOne(row pgx.Row) (*customer.Entity, error) {
	out := &customer.Entity{}
	err := row.Scan(
		&out.ID, &out.FirstName, &out.LastName, &out.Age, &out.PhoneNumber, &out.MonthlyIncome,
		&out.ApprovedLimit, &out.CurrentDebt, &out.CreatedAt, &out.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return out, nil
}

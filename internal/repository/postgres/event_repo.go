package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/creditline/backend/internal/ws"
)

type EventRepository struct {
	pool *pgxpool.Pool
}

func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func (r *EventRepository) RecordLoanEvent(ctx context.Context, customerID int64, loanID *int64, event string, payload []byte) error {
	q := `INSERT INTO loan_events (customer_id, loan_id, event, payload) VALUES ($1, $2, $3, $4::jsonb)`
	_, err := r.pool.Exec(ctx, q, customerID, loanID, event, payload)
	return err
}

func (r *EventRepository) ListLoanEventsSince(ctx context.Context, lastID int64, limit int32) ([]ws.LoanEvent, error) {
	q := `
SELECT id, customer_id, loan_id, event, payload, created_at
FROM loan_events
WHERE id > $1
ORDER BY id
LIMIT $2
`
	rows, err := r.pool.Query(ctx, q, lastID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ws.LoanEvent, 0)
	for rows.Next() {
		var ev ws.LoanEvent
		if err := rows.Scan(&ev.ID, &ev.CustomerID, &ev.LoanID, &ev.Event, &ev.Payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type LoanEvent struct {
	ID         int64
	CustomerID int64
	LoanID     *int64
	Event      string
	Payload    []byte
	CreatedAt  time.Time
}

type EventRepository interface {
	ListLoanEventsSince(ctx context.Context, lastID int64, limit int32) ([]LoanEvent, error)
}

// Notifier tails the loan event log and fans decisions out to subscribed
// connections. It only ever reads; decisions are made elsewhere.
type Notifier struct {
	repo         EventRepository
	hub          *Hub
	pollInterval time.Duration
	lastID       int64
}

func NewNotifier(repo EventRepository, hub *Hub, pollInterval time.Duration) *Notifier {
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	return &Notifier{repo: repo, hub: hub, pollInterval: pollInterval}
}

func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := n.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (n *Notifier) tick(ctx context.Context) error {
	events, err := n.repo.ListLoanEventsSince(ctx, n.lastID, 100)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if ev.ID > n.lastID {
			n.lastID = ev.ID
		}

		var loanID any
		if ev.LoanID != nil {
			loanID = *ev.LoanID
		}
		payload, _ := json.Marshal(map[string]any{
			"event": ev.Event,
			"data": map[string]any{
				"customer_id": ev.CustomerID,
				"loan_id":     loanID,
				"decision":    json.RawMessage(ev.Payload),
				"recorded_at": ev.CreatedAt.UTC().Format(time.RFC3339),
			},
		})
		n.hub.Publish(fmt.Sprintf("customer:loans:%d", ev.CustomerID), payload)
	}
	return nil
}

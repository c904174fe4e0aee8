package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestHubSubscribeAndPublish(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)

	hub.Subscribe("customer:loans:1", client)
	hub.Publish("customer:loans:1", []byte(`{"event":"loan_approved"}`))

	select {
	case msg := <-client.out:
		if string(msg) != `{"event":"loan_approved"}` {
			t.Fatalf("unexpected payload: %s", string(msg))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}

	hub.UnsubscribeAll(client)
}

func TestSubscriptionTopic(t *testing.T) {
	if got := subscriptionTopic(subscribeMessage{Channel: "customer:loans", CustomerID: "7"}); got != "customer:loans:7" {
		t.Fatalf("unexpected topic: %q", got)
	}
	if got := subscriptionTopic(subscribeMessage{Channel: "customer:loans", CustomerID: "abc"}); got != "" {
		t.Fatalf("expected empty topic for bad customer id, got %q", got)
	}
	if got := subscriptionTopic(subscribeMessage{Channel: "something:else", CustomerID: "7"}); got != "" {
		t.Fatalf("expected empty topic for unknown channel, got %q", got)
	}
}

type eventRepoStub struct {
	events []LoanEvent
}

func (s *eventRepoStub) ListLoanEventsSince(_ context.Context, lastID int64, _ int32) ([]LoanEvent, error) {
	out := []LoanEvent{}
	for _, ev := range s.events {
		if ev.ID > lastID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func TestNotifierPublishesPerCustomerChannel(t *testing.T) {
	hub := NewHub()
	client := NewClient(nil)
	hub.Subscribe("customer:loans:9", client)

	loanID := int64(3)
	repo := &eventRepoStub{events: []LoanEvent{
		{ID: 1, CustomerID: 9, LoanID: &loanID, Event: "loan_approved", Payload: []byte(`{"score":72}`), CreatedAt: time.Now()},
		{ID: 2, CustomerID: 8, Event: "loan_rejected", Payload: []byte(`{}`), CreatedAt: time.Now()},
	}}
	n := NewNotifier(repo, hub, time.Second)

	if err := n.tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case msg := <-client.out:
		var envelope struct {
			Event string `json:"event"`
			Data  struct {
				CustomerID int64 `json:"customer_id"`
				LoanID     int64 `json:"loan_id"`
			} `json:"data"`
		}
		if err := json.Unmarshal(msg, &envelope); err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		if envelope.Event != "loan_approved" || envelope.Data.CustomerID != 9 || envelope.Data.LoanID != 3 {
			t.Fatalf("unexpected envelope: %s", string(msg))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timed out waiting for message")
	}

	select {
	case msg := <-client.out:
		t.Fatalf("unexpected second message: %s", string(msg))
	default:
	}

	// A second tick re-reads from the last seen id and publishes nothing new.
	if err := n.tick(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	select {
	case msg := <-client.out:
		t.Fatalf("expected no replays, got %s", string(msg))
	default:
	}
}

package memory_test

import (
	"testing"

	"github.com/adosoftyazilim/blrb2b/internal/domain"
	"github.com/adosoftyazilim/blrb2b/internal/storage/memory"
)

func TestOutboxRepository_EnqueuePullMark(t *testing.T) {
	repo := memory.NewOutboxRepository()

	msg, err := repo.Enqueue(domain.OutboxMessage{
		AggregateType: "order",
		AggregateID:   "order-1",
		EventType:     "order.created",
		Payload:       []byte(`{"order_id":"order-1"}`),
	})
	if err != nil {
		t.Fatalf("enqueue failed: %v", err)
	}
	if msg.ID == "" {
		t.Fatal("expected generated message id")
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending message, got %d", len(pending))
	}

	stats, err := repo.Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.PendingCount != 1 {
		t.Fatalf("expected pending count 1, got %d", stats.PendingCount)
	}

	if err := repo.MarkSent(msg.ID); err != nil {
		t.Fatalf("mark sent failed: %v", err)
	}

	pending, err = repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != 0 {
		t.Fatalf("expected no pending messages, got %d", len(pending))
	}
}

func TestOutboxRepository_MarkMissing(t *testing.T) {
	repo := memory.NewOutboxRepository()
	if err := repo.MarkSent("missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
	if err := repo.MarkFailed("missing"); err == nil {
		t.Fatal("expected error for missing record")
	}
}

// Сообщения, поставленные подряд, извлекаются в порядке постановки,
// даже когда их createdAt совпадает.
func TestOutboxRepository_PullPendingKeepsEnqueueOrder(t *testing.T) {
	repo := memory.NewOutboxRepository()

	types := []string{"stock.reserved", "order.created", "order.status_changed"}
	for _, eventType := range types {
		if _, err := repo.Enqueue(domain.OutboxMessage{
			AggregateType: "order",
			AggregateID:   "order-1",
			EventType:     eventType,
			Payload:       []byte(`{}`),
		}); err != nil {
			t.Fatalf("enqueue %s failed: %v", eventType, err)
		}
	}

	pending, err := repo.PullPending(10)
	if err != nil {
		t.Fatalf("pull failed: %v", err)
	}
	if len(pending) != len(types) {
		t.Fatalf("expected %d pending messages, got %d", len(types), len(pending))
	}
	for i, eventType := range types {
		if pending[i].EventType != eventType {
			t.Fatalf("position %d: expected %s, got %s", i, eventType, pending[i].EventType)
		}
	}
}

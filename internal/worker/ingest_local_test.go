package worker

import (
	"context"
	"path/filepath"
	"testing"

	"spesedash/internal/amqp"
	"spesedash/internal/core"
	"spesedash/internal/services"
	"spesedash/internal/storage"
)

type capturePublisher struct {
	msgs []*amqp.ExpenseRecordedMessage
}

func (c *capturePublisher) PublishExpenseRecorded(_ context.Context, msg *amqp.ExpenseRecordedMessage) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func (c *capturePublisher) Close() error { return nil }

// The server and the ingest worker share the SQLite file by default, so
// ingesting an event the server published must not add a second row.
func TestIngestWorker_OwnEventDoesNotDuplicate(t *testing.T) {
	ctx := context.Background()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "shared.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })

	pub := &capturePublisher{}
	svc := services.NewExpenseService(repo, pub)
	ref, err := svc.CreateExpense(ctx, core.Expense{
		Icon:     "🍕",
		Category: "Food",
		Date:     core.NewDate(2024, 3, 15),
		Amount:   core.Money{Cents: 150000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(pub.msgs) != 1 || pub.msgs[0].ID != ref {
		t.Fatalf("published %+v, want one message with id %q", pub.msgs, ref)
	}

	w := NewIngestWorker(repo, nil)
	for i := 0; i < 2; i++ {
		if err := w.HandleExpenseRecorded(ctx, pub.msgs[0]); err != nil {
			t.Fatalf("ingest %d: %v", i, err)
		}
	}

	rows, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows after create + ingest = %d, want 1: %+v", len(rows), rows)
	}
	if rows[0].Category != "Food" || rows[0].Amount.Cents != 150000 {
		t.Fatalf("row = %+v", rows[0])
	}
}

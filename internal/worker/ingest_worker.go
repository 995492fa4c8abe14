package worker

import (
	"context"
	"fmt"
	"log/slog"

	"spesedash/internal/amqp"
	"spesedash/internal/core"
	"spesedash/internal/sheets"
)

// Upserter stores an expense keyed by the ID it carried on the wire.
type Upserter interface {
	Upsert(ctx context.Context, externalID string, e core.Expense) (string, error)
}

// IngestWorker writes expense recorded events into the local store and,
// when configured, mirrors them to a spreadsheet.
type IngestWorker struct {
	storage Upserter
	mirror  sheets.ExpenseWriter
}

// NewIngestWorker returns a worker; mirror may be nil.
func NewIngestWorker(storage Upserter, mirror sheets.ExpenseWriter) *IngestWorker {
	return &IngestWorker{
		storage: storage,
		mirror:  mirror,
	}
}

// HandleExpenseRecorded processes a single expense recorded message from AMQP.
// Messages that decode but carry an invalid expense are dropped: requeueing
// them would only fail again. Store and mirror errors are returned so the
// message is redelivered.
func (w *IngestWorker) HandleExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error {
	expense, err := msg.Expense()
	if err != nil {
		slog.WarnContext(ctx, "Dropping invalid expense message",
			"id", msg.ID,
			"error", err)
		return nil
	}

	ref, err := w.storage.Upsert(ctx, msg.ID, expense)
	if err != nil {
		return fmt.Errorf("store expense %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Ingested expense",
		"id", msg.ID,
		"local_ref", ref,
		"category", expense.Category,
		"amount_cents", expense.Amount.Cents)

	if w.mirror == nil {
		return nil
	}

	sheetRef, err := w.mirror.Append(ctx, expense)
	if err != nil {
		return fmt.Errorf("mirror expense %s: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored expense to sheets",
		"id", msg.ID,
		"sheets_ref", sheetRef)

	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spesedash/internal/amqp"
	"spesedash/internal/core"
)

// ExpenseStore is the local persistence the service writes through.
type ExpenseStore interface {
	Append(ctx context.Context, e core.Expense) (string, error)
	Close() error
}

// EventPublisher announces stored expenses to other services.
type EventPublisher interface {
	PublishExpenseRecorded(ctx context.Context, msg *amqp.ExpenseRecordedMessage) error
	Close() error
}

// ExpenseService orchestrates expense operations across SQLite and AMQP
type ExpenseService struct {
	storage   ExpenseStore
	publisher EventPublisher
}

// NewExpenseService wires a store and an optional publisher (nil disables events).
func NewExpenseService(storage ExpenseStore, publisher EventPublisher) *ExpenseService {
	return &ExpenseService{
		storage:   storage,
		publisher: publisher,
	}
}

// CreateExpense saves an expense locally and publishes an expense recorded message
func (s *ExpenseService) CreateExpense(ctx context.Context, e core.Expense) (string, error) {
	if s.storage == nil {
		return "", errors.New("expense service has no storage")
	}

	// Save to SQLite first (fast, reliable)
	ref, err := s.storage.Append(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}
	e.ID = ref

	if err := s.publish(ctx, e); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense recorded message",
			"id", ref, "error", err)
		// Don't fail the request - expense is saved locally
	}

	return ref, nil
}

func (s *ExpenseService) publish(ctx context.Context, e core.Expense) error {
	if s.publisher == nil {
		slog.DebugContext(ctx, "AMQP publisher not available, skipping expense recorded message")
		return nil
	}

	return s.publisher.PublishExpenseRecorded(ctx, amqp.NewExpenseRecordedMessage(e))
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}

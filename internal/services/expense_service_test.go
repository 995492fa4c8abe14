package services

import (
	"context"
	"errors"
	"testing"

	"spesedash/internal/amqp"
	"spesedash/internal/core"
)

type fakeStore struct {
	appended []core.Expense
	err      error
	closed   bool
}

func (f *fakeStore) Append(_ context.Context, e core.Expense) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.appended = append(f.appended, e)
	return "17", nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

type fakePublisher struct {
	msgs     []*amqp.ExpenseRecordedMessage
	err      error
	closeErr error
}

func (f *fakePublisher) PublishExpenseRecorded(_ context.Context, msg *amqp.ExpenseRecordedMessage) error {
	f.msgs = append(f.msgs, msg)
	return f.err
}

func (f *fakePublisher) Close() error { return f.closeErr }

func sampleExpense() core.Expense {
	return core.Expense{
		Icon:     "🛒",
		Category: "Groceries",
		Date:     core.NewDate(2024, 3, 15),
		Amount:   core.Money{Cents: 4599},
	}
}

func TestExpenseService_CreateExpense_Publishes(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	service := NewExpenseService(store, pub)

	ref, err := service.CreateExpense(context.Background(), sampleExpense())
	if err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
	if ref != "17" {
		t.Fatalf("ref = %q, want 17", ref)
	}
	if len(store.appended) != 1 {
		t.Fatalf("expected one stored expense, got %d", len(store.appended))
	}
	if len(pub.msgs) != 1 {
		t.Fatalf("expected one published message, got %d", len(pub.msgs))
	}
	if msg := pub.msgs[0]; msg.ID != "17" || msg.AmountCents != 4599 || msg.Date != "2024-03-15" {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestExpenseService_CreateExpense_PublishFailureIsNotFatal(t *testing.T) {
	service := NewExpenseService(&fakeStore{}, &fakePublisher{err: errors.New("broker down")})

	if _, err := service.CreateExpense(context.Background(), sampleExpense()); err != nil {
		t.Fatalf("publish failure should not fail the request: %v", err)
	}
}

func TestExpenseService_CreateExpense_StoreError(t *testing.T) {
	pub := &fakePublisher{}
	service := NewExpenseService(&fakeStore{err: core.ErrInvalidAmount}, pub)

	_, err := service.CreateExpense(context.Background(), sampleExpense())
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected wrapped ErrInvalidAmount, got %v", err)
	}
	if len(pub.msgs) != 0 {
		t.Fatal("nothing should be published when the store fails")
	}
}

func TestExpenseService_WithoutPublisher(t *testing.T) {
	service := NewExpenseService(&fakeStore{}, nil)
	if _, err := service.CreateExpense(context.Background(), sampleExpense()); err != nil {
		t.Fatalf("CreateExpense: %v", err)
	}
}

func TestExpenseService_Close(t *testing.T) {
	t.Run("nil components", func(t *testing.T) {
		service := &ExpenseService{}
		if err := service.Close(); err != nil {
			t.Fatalf("Close should not return error with nil components: %v", err)
		}
	})

	t.Run("joins errors", func(t *testing.T) {
		store := &fakeStore{}
		closeErr := errors.New("channel busy")
		service := NewExpenseService(store, &fakePublisher{closeErr: closeErr})
		err := service.Close()
		if !errors.Is(err, closeErr) {
			t.Fatalf("expected publisher close error, got %v", err)
		}
		if !store.closed {
			t.Error("store should be closed even when the publisher fails")
		}
	})
}

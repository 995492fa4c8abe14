package adapters

import (
	"context"

	"spesedash/internal/core"
	"spesedash/internal/services"
	"spesedash/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and ExpenseService to implement sheets.* interfaces.
// Writes go through the service so they are published; reads hit SQLite directly.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.ExpenseService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.ExpenseService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// Append implements sheets.ExpenseWriter
func (a *SQLiteAdapter) Append(ctx context.Context, e core.Expense) (string, error) {
	return a.service.CreateExpense(ctx, e)
}

// RecentExpenses implements sheets.RecentLister
func (a *SQLiteAdapter) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	return a.storage.RecentExpenses(ctx, limit)
}

// ListExpenses implements sheets.ExpenseLister
func (a *SQLiteAdapter) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return a.storage.ListExpenses(ctx)
}

// Ping reports whether the database is reachable.
func (a *SQLiteAdapter) Ping(ctx context.Context) error {
	return a.storage.Ping(ctx)
}

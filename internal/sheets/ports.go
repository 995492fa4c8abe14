package sheets

import (
	"context"

	"spesedash/internal/core"
)

// Ports for outbound adapters.
type (
	ExpenseWriter interface {
		Append(ctx context.Context, e core.Expense) (ref string, err error)
	}

	// RecentLister returns the newest expenses first.
	RecentLister interface {
		// RecentExpenses returns at most limit expenses, newest first.
		RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error)
	}

	// ExpenseLister returns every expense, newest first.
	ExpenseLister interface {
		ListExpenses(ctx context.Context) ([]core.Expense, error)
	}
)

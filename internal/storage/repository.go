package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"spesedash/internal/core"
	"spesedash/internal/sheets"

	_ "modernc.org/sqlite"
)

var (
	_ sheets.ExpenseWriter = (*SQLiteRepository)(nil)
	_ sheets.RecentLister  = (*SQLiteRepository)(nil)
	_ sheets.ExpenseLister = (*SQLiteRepository)(nil)
)

const selectExpenses = `SELECT id, icon, category, date, amount_cents FROM expenses ORDER BY date DESC, id DESC`

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Append implements sheets.ExpenseWriter. Each row gets a fresh external
// ID, which is returned as the reference and travels in published events,
// so an ingest of the same event lands on this row.
func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	externalID := uuid.NewString()
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (icon, category, date, amount_cents, external_id) VALUES (?, ?, ?, ?, ?)`,
		e.Icon, e.Category, e.Date.String(), e.Amount.Cents, externalID)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", id,
		"external_id", externalID,
		"category", e.Category,
		"amount_cents", e.Amount.Cents,
		"date", e.Date.String())

	return externalID, nil
}

// Upsert stores an expense received from another service, keyed by its
// external ID. Replaying the same message, or ingesting an event this
// repository produced itself, updates the existing row.
func (r *SQLiteRepository) Upsert(ctx context.Context, externalID string, e core.Expense) (string, error) {
	if externalID == "" {
		return "", errors.New("external id is required")
	}
	if err := e.Validate(); err != nil {
		return "", err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (icon, category, date, amount_cents, external_id) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(external_id) DO UPDATE SET
		   icon = excluded.icon,
		   category = excluded.category,
		   date = excluded.date,
		   amount_cents = excluded.amount_cents`,
		e.Icon, e.Category, e.Date.String(), e.Amount.Cents, externalID)
	if err != nil {
		return "", fmt.Errorf("upsert expense %s: %w", externalID, err)
	}

	var id int64
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM expenses WHERE external_id = ?`, externalID).Scan(&id); err != nil {
		return "", fmt.Errorf("lookup expense %s: %w", externalID, err)
	}
	return strconv.FormatInt(id, 10), nil
}

// GetExpense loads one expense by ID.
func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, icon, category, date, amount_cents FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrExpenseNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

// RecentExpenses implements sheets.RecentLister
func (r *SQLiteRepository) RecentExpenses(ctx context.Context, limit int) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpenses+` LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent expenses: %w", err)
	}
	return collectExpenses(rows)
}

// ListExpenses implements sheets.ExpenseLister
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, selectExpenses)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	return collectExpenses(rows)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (core.Expense, error) {
	var (
		id          int64
		icon, cat   string
		date        string
		amountCents int64
	)
	if err := s.Scan(&id, &icon, &cat, &date, &amountCents); err != nil {
		return core.Expense{}, err
	}
	// Stored dates are written by Append/Upsert; a bad value reads as zero.
	d, _ := core.ParseDate(date)
	return core.Expense{
		ID:       strconv.FormatInt(id, 10),
		Icon:     icon,
		Category: cat,
		Date:     d,
		Amount:   core.Money{Cents: amountCents},
	}, nil
}

func collectExpenses(rows *sql.Rows) ([]core.Expense, error) {
	defer rows.Close()
	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return out, nil
}

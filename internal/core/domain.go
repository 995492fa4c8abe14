package core

import (
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the storage and form layout for expense dates.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Expense is a single recorded outflow. Icon and Category are optional
	// display metadata; readers substitute their own defaults when empty.
	Expense struct {
		ID       string
		Icon     string
		Category string
		Date     Date
		Amount   Money
	}
)

var (
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrCategoryTooLong = errors.New("category too long (max 100 characters)")
	ErrIconTooLong     = errors.New("icon too long (max 16 bytes)")
	ErrExpenseNotFound = errors.New("expense not found")
)

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String returns the date in DateLayout, or "" for the zero date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Validate checks an expense on the write path.
func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return err
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if utf8.RuneCountInString(e.Category) > 100 {
		return ErrCategoryTooLong
	}
	if len(e.Icon) > 16 {
		return ErrIconTooLong
	}
	return nil
}

// NewerThan reports whether e is dated after o.
func (e Expense) NewerThan(o Expense) bool {
	return e.Date.After(o.Date.Time)
}

// SortNewestFirst orders items by date, latest first. Equal dates keep
// their relative order; undated items end up last.
func SortNewestFirst(items []Expense) {
	slices.SortStableFunc(items, func(a, b Expense) int {
		switch {
		case a.NewerThan(b):
			return -1
		case b.NewerThan(a):
			return 1
		default:
			return 0
		}
	})
}

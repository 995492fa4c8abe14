package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"spesedash/internal/core"
	"spesedash/internal/sheets"
)

var (
	_ sheets.ExpenseWriter = (*Store)(nil)
	_ sheets.RecentLister  = (*Store)(nil)
	_ sheets.ExpenseLister = (*Store)(nil)
)

// Store keeps expenses in recording order.
type Store struct {
	mu    sync.Mutex
	items []core.Expense
}

func New(items ...core.Expense) *Store {
	s := &Store{}
	for _, e := range items {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		s.items = append(s.items, e)
	}
	return s
}

// NewFromFiles seeds the store from base/seed_expenses.txt. Each line is
// "date|icon|category|amount"; blank lines and # comments are skipped, as
// are lines whose amount does not parse.
func NewFromFiles(base string) *Store {
	var seed []core.Expense
	for _, line := range readLines(filepath.Join(base, "seed_expenses.txt")) {
		if e, ok := parseSeedLine(line); ok {
			seed = append(seed, e)
		}
	}
	return New(seed...)
}

func parseSeedLine(line string) (core.Expense, bool) {
	parts := strings.Split(line, "|")
	if len(parts) != 4 {
		return core.Expense{}, false
	}
	cents, err := core.ParseDecimalToCents(parts[3])
	if err != nil {
		return core.Expense{}, false
	}
	// An unparseable date is kept as the zero date; readers show it as invalid.
	date, _ := core.ParseDate(parts[0])
	return core.Expense{
		Icon:     strings.TrimSpace(parts[1]),
		Category: strings.TrimSpace(parts[2]),
		Date:     date,
		Amount:   core.Money{Cents: cents},
	}, true
}

// Append stores the expense and returns its generated ID.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	s.items = append(s.items, e)
	return e.ID, nil
}

// ListExpenses returns a copy of every expense, newest first.
func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	return s.snapshot(), nil
}

// RecentExpenses returns up to limit expenses, newest first.
func (s *Store) RecentExpenses(_ context.Context, limit int) ([]core.Expense, error) {
	items := s.snapshot()
	if limit >= 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// snapshot copies the items in reverse recording order, so later entries
// win date ties, then sorts by date.
func (s *Store) snapshot() []core.Expense {
	s.mu.Lock()
	out := slices.Clone(s.items)
	s.mu.Unlock()
	slices.Reverse(out)
	core.SortNewestFirst(out)
	return out
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

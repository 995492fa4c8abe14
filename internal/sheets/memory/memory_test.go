package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"spesedash/internal/core"
)

func TestMemoryStoreAppendAndRecent(t *testing.T) {
	s := New()
	ctx := context.Background()

	for i, day := range []int{3, 10, 1, 10} {
		ref, err := s.Append(ctx, core.Expense{
			Category: string(rune('A' + i)),
			Date:     core.NewDate(2024, 3, day),
			Amount:   core.Money{Cents: 100},
		})
		if err != nil || ref == "" {
			t.Fatalf("unexpected append: ref=%q err=%v", ref, err)
		}
	}

	got, err := s.RecentExpenses(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	var order string
	for _, e := range got {
		order += e.Category
	}
	// D and B share a date; D was recorded later.
	if order != "DBA" {
		t.Fatalf("recent order = %q, want DBA", order)
	}

	all, _ := s.ListExpenses(ctx)
	if len(all) != 4 {
		t.Fatalf("list len = %d, want 4", len(all))
	}
	all[0].Category = "mutated"
	again, _ := s.ListExpenses(ctx)
	if again[0].Category == "mutated" {
		t.Fatalf("list should return a copy")
	}
}

func TestMemoryStoreRejectsInvalid(t *testing.T) {
	s := New()
	if _, err := s.Append(context.Background(), core.Expense{Date: core.NewDate(2024, 1, 1)}); err == nil {
		t.Fatalf("expected error for zero amount")
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	// No files -> empty store
	s := NewFromFiles(dir)
	if items, _ := s.ListExpenses(context.Background()); len(items) != 0 {
		t.Fatalf("expected empty store when seed file missing, got %d", len(items))
	}

	content := "# date|icon|category|amount\n" +
		"2024-03-15|🍕|Food|12,50\n" +
		"\n" +
		"not-a-date||Misc|3\n" +
		"2024-03-16|🚌|Transport|abc\n" +
		"broken line\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_expenses.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	s = NewFromFiles(dir)
	items, _ := s.ListExpenses(context.Background())
	if len(items) != 2 {
		t.Fatalf("expected 2 seeded expenses, got %d: %+v", len(items), items)
	}
	if items[0].Category != "Food" || items[0].Amount.Cents != 1250 || items[0].ID == "" {
		t.Fatalf("unexpected first item: %+v", items[0])
	}
	if !items[1].Date.IsZero() || items[1].Icon != "" {
		t.Fatalf("undated seed should sort last with zero date: %+v", items[1])
	}
}

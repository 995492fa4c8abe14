package google

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"spesedash/internal/core"
)

// parseExpenseRows converts a values matrix (as returned by Sheets API) into
// expenses, newest first. A header row is skipped; rows without a usable
// amount are dropped, rows with a bad date keep a zero date. IDs are the
// 1-based sheet row numbers.
func parseExpenseRows(values [][]interface{}) []core.Expense {
	var out []core.Expense
	for i, raw := range values {
		row := toStrings(raw)
		if i == 0 && isHeader(row) {
			continue
		}
		cents, ok := parseAmountToCents(safeGet(row, 3))
		if !ok {
			continue
		}
		date, _ := core.ParseDate(safeGet(row, 0))
		out = append(out, core.Expense{
			ID:       fmt.Sprintf("row:%d", i+1),
			Date:     date,
			Icon:     strings.TrimSpace(safeGet(row, 1)),
			Category: strings.TrimSpace(safeGet(row, 2)),
			Amount:   core.Money{Cents: cents},
		})
	}
	// Later rows win date ties.
	slices.Reverse(out)
	core.SortNewestFirst(out)
	return out
}

func isHeader(row []string) bool {
	return strings.EqualFold(strings.TrimSpace(safeGet(row, 0)), "date")
}

func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

// parseAmountToCents accepts sheet-formatted rupee amounts such as "1500",
// "1,500", "1,00,000" or "₹1,500.00". Commas are always grouping
// separators, in both the western and the lakh layout.
func parseAmountToCents(s string) (int64, bool) {
	s = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(s), "₹€$ "))
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0, false
	}
	return core.MoneyFromUnits(f).Cents, true
}

package dashboard

import (
	"github.com/tidwall/gjson"

	"spesedash/internal/core"
)

// Entry is one expense record as handed to the card. Empty strings mean
// the field was absent; Amount is already zero when the source value was
// not a number.
type Entry struct {
	ID       string
	Icon     string
	Category string
	Date     string
	Amount   float64
}

// DecodeEntries reads a loosely shaped JSON document. Anything other than a
// top-level array yields no entries. Array elements that are not objects
// become entries with every field absent.
func DecodeEntries(raw []byte) []Entry {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsArray() {
		return nil
	}
	items := doc.Array()
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		out = append(out, decodeEntry(item))
	}
	return out
}

func decodeEntry(v gjson.Result) Entry {
	if !v.IsObject() {
		return Entry{}
	}
	e := Entry{
		ID:       textField(v, "_id"),
		Icon:     textField(v, "icon"),
		Category: textField(v, "category"),
	}
	if e.ID == "" {
		e.ID = textField(v, "id")
	}
	if d := v.Get("date"); d.Type == gjson.String {
		e.Date = d.Str
	}
	if a := v.Get("amount"); a.Type == gjson.Number {
		e.Amount = a.Num
	}
	return e
}

// textField returns strings as-is, other scalars and objects as their raw
// JSON text, and "" for null or missing keys.
func textField(v gjson.Result, key string) string {
	f := v.Get(key)
	switch f.Type {
	case gjson.String:
		return f.Str
	case gjson.Null:
		return ""
	default:
		return f.Raw
	}
}

// FromExpenses converts stored expenses, keeping their order.
func FromExpenses(items []core.Expense) []Entry {
	out := make([]Entry, 0, len(items))
	for _, e := range items {
		out = append(out, Entry{
			ID:       e.ID,
			Icon:     e.Icon,
			Category: e.Category,
			Date:     e.Date.String(),
			Amount:   e.Amount.Units(),
		})
	}
	return out
}

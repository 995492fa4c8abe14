// Package dashboard renders the recent expenses card: the newest few
// expense records with formatted dates and amounts, plus a control that
// leads to the full expense list.
//
// The card never fails on bad input. Missing or malformed fields fall back
// to placeholders, and an absent or empty sequence renders the empty state.
package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"strconv"
	"strings"

	appweb "spesedash/web"
)

const (
	// DefaultLimit is how many records the card shows.
	DefaultLimit = 5
	// DefaultSeeAllPath is the full expense list view.
	DefaultSeeAllPath = "/expense"
	// SeeAllRoute is the endpoint the header control calls.
	SeeAllRoute = "/ui/recent-expenses/see-all"

	DefaultIcon     = "❓"
	DefaultCategory = "Unspecified Source"

	templateName = "recent_expenses"
)

// Config tunes the card.
type Config struct {
	Limit      int
	SeeAllPath string
	Locale     string
	Formatter  *Formatter
}

// DefaultConfig returns the stock card settings.
func DefaultConfig() Config {
	return Config{
		Limit:      DefaultLimit,
		SeeAllPath: DefaultSeeAllPath,
		Locale:     "en",
	}
}

// Row is one rendered expense line.
type Row struct {
	Key      string
	Icon     string
	Category string
	Date     string
	Amount   string
}

// View is the data behind the card template.
type View struct {
	Heading      string
	EmptyMessage string
	SeeAllLabel  string
	SeeAllRoute  string
	SeeAllPath   string
	Empty        bool
	Rows         []Row
}

// Renderer builds and renders the card. It keeps no per-call state and is
// safe for concurrent use.
type Renderer struct {
	limit      int
	seeAllPath string
	labels     Labels
	format     *Formatter
	tmpl       *template.Template
}

// New validates cfg and parses the card template.
func New(cfg Config) (*Renderer, error) {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.SeeAllPath == "" {
		cfg.SeeAllPath = DefaultSeeAllPath
	}
	if !strings.HasPrefix(cfg.SeeAllPath, "/") {
		return nil, fmt.Errorf("see-all path %q must start with /", cfg.SeeAllPath)
	}
	if cfg.Formatter == nil {
		cfg.Formatter = NewFormatter()
	}

	labels, err := LoadLabels(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("load labels: %w", err)
	}
	tmpl, err := template.ParseFS(appweb.TemplatesFS, "templates/recent_expenses.html")
	if err != nil {
		return nil, fmt.Errorf("parse card template: %w", err)
	}

	return &Renderer{
		limit:      cfg.Limit,
		seeAllPath: cfg.SeeAllPath,
		labels:     labels,
		format:     cfg.Formatter,
		tmpl:       tmpl,
	}, nil
}

// Limit returns how many entries the card shows.
func (r *Renderer) Limit() int {
	return r.limit
}

// Labels returns the resolved label set.
func (r *Renderer) Labels() Labels {
	return r.labels
}

// Formatter returns the date and amount formatter used for rows.
func (r *Renderer) Formatter() *Formatter {
	return r.format
}

// SeeAllPath returns the navigation target of the header control.
func (r *Renderer) SeeAllPath() string {
	return r.seeAllPath
}

// Build computes the view for entries. entries is not modified.
func (r *Renderer) Build(entries []Entry) View {
	v := View{
		Heading:      r.labels.Heading,
		EmptyMessage: r.labels.Empty,
		SeeAllLabel:  r.labels.SeeAll,
		SeeAllRoute:  SeeAllRoute,
		SeeAllPath:   r.seeAllPath,
	}
	if len(entries) == 0 {
		v.Empty = true
		return v
	}

	shown := entries[:min(len(entries), r.limit)]
	v.Rows = make([]Row, 0, len(shown))
	for i, e := range shown {
		v.Rows = append(v.Rows, r.row(i, e))
	}
	return v
}

// Rows formats every entry with the card's fallbacks, without the limit.
// The full listing view uses it.
func (r *Renderer) Rows(entries []Entry) []Row {
	rows := make([]Row, 0, len(entries))
	for i, e := range entries {
		rows = append(rows, r.row(i, e))
	}
	return rows
}

func (r *Renderer) row(i int, e Entry) Row {
	row := Row{
		Key:      e.ID,
		Icon:     e.Icon,
		Category: e.Category,
		Date:     r.format.Date(e.Date),
		Amount:   r.format.Amount(e.Amount),
	}
	if row.Key == "" {
		row.Key = strconv.Itoa(i)
	}
	if row.Icon == "" {
		row.Icon = DefaultIcon
	}
	if row.Category == "" {
		row.Category = DefaultCategory
	}
	return row
}

// Render writes the card for entries to w. Output is buffered so a template
// failure never leaves a half-written card.
func (r *Renderer) Render(w io.Writer, entries []Entry) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, templateName, r.Build(entries)); err != nil {
		return fmt.Errorf("execute %s: %w", templateName, err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("write card: %w", err)
	}
	return nil
}

// SeeAll performs the header control's navigation.
func (r *Renderer) SeeAll(nav Navigator, w http.ResponseWriter, req *http.Request) {
	nav.Navigate(w, req, r.seeAllPath)
}

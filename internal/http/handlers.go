package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"spesedash/internal/backend"
	"spesedash/internal/core"
	"spesedash/internal/dashboard"
	applog "spesedash/internal/log"
)

const (
	// maxCardBody bounds caller-supplied card input.
	maxCardBody = 64 << 10
	// maxFormBody bounds the create-expense form.
	maxFormBody = 16 << 10
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if err := s.pingBackend(ctx); err != nil {
		checks["backend"] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["backend"] = "ok"
	}

	checks["cache"] = map[string]any{
		"recent_entries": s.recentCache.Size(),
		"status":         "ok",
	}
	checks["rate_limiter"] = map[string]any{
		"active_clients": s.limiter.ActiveClients(),
		"status":         "ok",
	}

	writeJSON(w, httpStatus, map[string]any{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	})
}

// pingBackend uses the backend's own health check when it has one and a
// one-row read otherwise.
func (s *Server) pingBackend(ctx context.Context) error {
	if p, ok := s.backend.(backend.Pinger); ok {
		return p.Ping(ctx)
	}
	_, err := s.backend.RecentExpenses(ctx, 1)
	return err
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	labels := s.renderer.Labels()
	data := struct {
		Lang      string
		Title     string
		FormTitle string
		Submit    string
		Today     string
	}{
		Lang:      labels.Locale,
		Title:     labels.PageTitle,
		FormTitle: labels.FormTitle,
		Submit:    labels.Submit,
		Today:     time.Now().Format(core.DateLayout),
	}
	s.renderPage(w, r, "dashboard_page", data)
}

// handleRecentExpenses renders the card from the configured backend. A
// backend failure degrades to the empty card.
func (s *Server) handleRecentExpenses(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()

	limit := s.renderer.Limit()
	items, err := s.recent.Get(ctx, "recent:"+strconv.Itoa(limit), func(ctx context.Context) ([]core.Expense, error) {
		return s.backend.RecentExpenses(ctx, limit)
	})
	if err != nil {
		s.events.LogError(r.Context(), "Recent expenses lookup failed", err,
			applog.ComponentDashboard, applog.OpRecent,
			applog.NewFields().WithRequestID(requestID(r)))
		items = nil
	}

	s.renderCard(w, r, "backend", dashboard.FromExpenses(items))
}

// handleRecentExpensesFromBody renders the card from a JSON body supplied by
// the caller. Anything that is not a JSON array renders the empty state.
func (s *Server) handleRecentExpensesFromBody(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCardBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Request body too large").Write(w)
			return
		}
		BadRequestError("Could not read request body").Write(w)
		return
	}

	s.renderCard(w, r, "request", dashboard.DecodeEntries(raw))
}

func (s *Server) renderCard(w http.ResponseWriter, r *http.Request, source string, entries []dashboard.Entry) {
	var buf bytes.Buffer
	if err := s.renderer.Render(&buf, entries); err != nil {
		s.events.LogError(r.Context(), "Card render failed", err,
			applog.ComponentDashboard, applog.OpRender, nil)
		InternalServerError("Could not render recent expenses").Write(w)
		return
	}

	s.events.LogCardRendered(r.Context(), source, min(len(entries), s.renderer.Limit()))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

// handleSeeAll is the target of the card's header control.
func (s *Server) handleSeeAll(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Navigating to full expense list",
		applog.FieldOperation, applog.OpNavigate,
		applog.FieldTarget, s.renderer.SeeAllPath())
	s.renderer.SeeAll(RedirectNavigator, w, r)
}

// handleExpenseList renders every expense, newest first, with a total.
func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()

	items, err := s.backend.ListExpenses(ctx)
	if err != nil {
		s.events.LogError(r.Context(), "Expense list failed", err,
			applog.ComponentExpense, applog.OpList,
			applog.NewFields().WithRequestID(requestID(r)))
		InternalServerError("Could not load expenses").Write(w)
		return
	}

	var total core.Money
	for _, e := range items {
		total.Cents += e.Amount.Cents
	}

	labels := s.renderer.Labels()
	data := struct {
		Lang         string
		Title        string
		EmptyMessage string
		Rows         []dashboard.Row
		Total        string
	}{
		Lang:         labels.Locale,
		Title:        labels.ListTitle,
		EmptyMessage: labels.Empty,
		Rows:         s.renderer.Rows(dashboard.FromExpenses(items)),
		Total:        labels.Total + ": " + s.renderer.Formatter().Amount(total.Units()),
	}
	s.renderPage(w, r, "expense_list_page", data)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBody)
	parser := NewRequestBodyParser(r)
	if err := parser.Parse(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Invalid request body",
			applog.FieldError, err.Error())
		BadRequestError("Invalid request format").Write(w)
		return
	}

	exp, err := ParseExpense(parser, time.Now())
	if err != nil {
		UnprocessableEntityError("Invalid data: " + err.Error()).Write(w)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.backendTimeout)
	defer cancel()

	ref, err := s.backend.Append(ctx, exp)
	if err != nil {
		s.events.LogError(r.Context(), "Expense append failed", err,
			applog.ComponentExpense, applog.OpCreate,
			applog.NewFields().WithExpense("", exp.Icon, exp.Category, exp.Date.String(), exp.Amount.Cents))
		InternalServerError("Could not save the expense").Write(w)
		return
	}

	s.recent.Invalidate()
	s.events.LogExpenseCreated(r.Context(), ref, exp.Icon, exp.Category, exp.Date.String(), exp.Amount.Cents)

	NewHTMXResponse().
		TriggerExpenseCreated(ref, exp.Date.String()).
		TriggerFormReset().
		BodyHTML(`<div class="success">Saved</div>`).
		Write(w)
}

// renderPage executes a full-page template into a buffer before writing so
// a failing template never produces a truncated page.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.events.LogError(r.Context(), "Template execution failed", err,
			applog.ComponentHTTP, applog.OpRender,
			applog.NewFields().WithRequestID(requestID(r)))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

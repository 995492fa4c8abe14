package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spesedash/internal/core"
)

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_StripsControlCharacters(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader("category=%00Food%07+"))

	parser := NewRequestBodyParser(req)
	if err := parser.Parse(); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := parser.Get("category"); got != "Food" {
		t.Errorf("Get('category') = %q, want 'Food'", got)
	}
}

func TestParseExpense(t *testing.T) {
	today := time.Date(2024, 3, 20, 18, 30, 0, 0, time.Local)

	tests := []struct {
		name      string
		body      string
		wantErr   error
		wantDate  string
		wantCents int64
		wantCat   string
		wantIcon  string
	}{
		{
			name:      "full form",
			body:      "icon=%F0%9F%8D%95&category=Food&date=2024-03-15&amount=12,50",
			wantDate:  "2024-03-15",
			wantCents: 1250,
			wantCat:   "Food",
			wantIcon:  "🍕",
		},
		{
			name:      "missing date defaults to today",
			body:      "category=Rent&amount=900",
			wantDate:  "2024-03-20",
			wantCents: 90000,
			wantCat:   "Rent",
		},
		{
			name:      "json body",
			body:      `{"category":"Fuel","date":"2024-01-02","amount":42.5}`,
			wantDate:  "2024-01-02",
			wantCents: 4250,
			wantCat:   "Fuel",
		},
		{
			name:    "invalid amount",
			body:    "category=Food&amount=abc",
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "zero amount",
			body:    "category=Food&amount=0",
			wantErr: core.ErrInvalidAmount,
		},
		{
			name:    "invalid date",
			body:    "category=Food&amount=1&date=15/03/2024",
			wantErr: core.ErrInvalidDate,
		},
		{
			name:    "category too long",
			body:    "category=" + strings.Repeat("x", 101) + "&amount=1",
			wantErr: core.ErrCategoryTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/expenses", strings.NewReader(tt.body))
			parser := NewRequestBodyParser(req)
			if err := parser.Parse(); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}

			exp, err := ParseExpense(parser, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseExpense() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseExpense() error = %v", err)
			}
			if got := exp.Date.String(); got != tt.wantDate {
				t.Errorf("Date = %q, want %q", got, tt.wantDate)
			}
			if exp.Amount.Cents != tt.wantCents {
				t.Errorf("Amount = %d, want %d", exp.Amount.Cents, tt.wantCents)
			}
			if exp.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", exp.Category, tt.wantCat)
			}
			if exp.Icon != tt.wantIcon {
				t.Errorf("Icon = %q, want %q", exp.Icon, tt.wantIcon)
			}
		})
	}
}

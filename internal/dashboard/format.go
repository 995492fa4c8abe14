package dashboard

import (
	"math"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/en_US"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// InvalidDate is shown for missing or unparseable dates.
const InvalidDate = "Invalid Date"

// dateLayouts are tried in order when reading a record's date.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-1-2",
	"2006/1/2",
	"1/2/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Mon Jan 2 2006",
	"Mon, Jan 2, 2006",
	"2 Jan 2006",
	time.RFC1123,
	time.RFC1123Z,
	"2006-01",
	"2006",
}

// Formatter renders dates in the US medium form ("Mar 15, 2024") and
// amounts as Indian rupees with up to two fraction digits.
type Formatter struct {
	dates   locales.Translator
	printer *message.Printer
	symbol  string
}

// NewFormatter returns the formatter used by the card.
func NewFormatter() *Formatter {
	return NewFormatterFor(en_US.New(), language.MustParse("en-IN"), currency.INR)
}

// NewFormatterFor builds a formatter for another date locale, number locale
// or currency.
func NewFormatterFor(dates locales.Translator, numbers language.Tag, unit currency.Unit) *Formatter {
	p := message.NewPrinter(numbers)
	return &Formatter{
		dates:   dates,
		printer: p,
		symbol:  p.Sprint(currency.Symbol(unit)),
	}
}

// Date formats raw as a medium date, or returns InvalidDate.
func (f *Formatter) Date(raw string) string {
	t, ok := parseDate(raw)
	if !ok {
		return InvalidDate
	}
	return f.dates.FmtDateMedium(t)
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Currency formats amount with the currency symbol, e.g. "₹1,500".
// Ties round away from zero (0.125 -> 0.13).
func (f *Formatter) Currency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	amount = math.Round(amount*100) / 100
	digits := f.printer.Sprint(number.Decimal(amount,
		number.MinFractionDigits(0),
		number.MaxFractionDigits(2)))
	return sign + f.symbol + digits
}

// Amount is Currency with the symbol removed; the card's trend icon
// carries the unit.
func (f *Formatter) Amount(amount float64) string {
	return strings.Replace(f.Currency(amount), f.symbol, "", 1)
}

// Symbol returns the currency symbol for the configured locale.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Package format converts raw dashboard scalars into display strings.
//
// Missing values are an expected, common case: every function here returns
// Placeholder for them instead of an error.
package format

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"creditboard/internal/dashboard/models"
)

// Placeholder is shown wherever a value is unknown.
const Placeholder = "—"

// printer groups integer digits the en-US way (1,234,567).
var printer = message.NewPrinter(language.AmericanEnglish)

// groupingLimit bounds amounts whose integer part is grouped; anything
// larger is printed ungrouped.
var groupingLimit = decimal.New(1, 15)

// symbols mirrors the en-US narrow symbols for the currencies that have one;
// every other currency is prefixed with its ISO code.
var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
	"INR": "₹",
}

// Currency formats a number as an amount in the given ISO currency
// (DefaultCurrency when blank or unknown).
func Currency(value models.Number, code string) string {
	if !value.Valid {
		return Placeholder
	}
	return Amount(decimal.NewFromFloat(value.Value), code)
}

// Money formats a Money value using its own currency.
func Money(m models.Money) string {
	if !m.Known() {
		return Placeholder
	}
	return Amount(m.Amount.Decimal, m.Currency)
}

// Amount formats an exact decimal amount, rounded half away from zero to
// the currency's minor unit.
func Amount(amount decimal.Decimal, code string) string {
	unit := resolveUnit(code)
	scale, _ := currency.Standard.Rounding(unit)
	places := int32(scale)

	rounded := amount.Round(places)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + prefix(unit) + groupDigits(rounded.Abs(), places)
}

func resolveUnit(code string) currency.Unit {
	code = strings.ToUpper(strings.TrimSpace(code))
	if unit, err := currency.ParseISO(code); err == nil {
		return unit
	}
	return currency.MustParseISO(models.DefaultCurrency)
}

func prefix(unit currency.Unit) string {
	code := unit.String()
	if sym, ok := symbols[code]; ok {
		return sym
	}
	return code + " "
}

func groupDigits(abs decimal.Decimal, places int32) string {
	fixed := abs.StringFixed(places)
	if abs.GreaterThanOrEqual(groupingLimit) {
		return fixed
	}
	grouped := printer.Sprintf("%d", abs.IntPart())
	if dot := strings.IndexByte(fixed, '.'); dot >= 0 {
		return grouped + fixed[dot:]
	}
	return grouped
}

// Text returns the trimmed text or the placeholder.
func Text(t models.Text) string {
	if !t.Valid {
		return Placeholder
	}
	return strings.TrimSpace(t.Value)
}

// TextOr returns the trimmed text, or fallback when absent.
func TextOr(t models.Text, fallback string) string {
	if !t.Valid {
		return fallback
	}
	return strings.TrimSpace(t.Value)
}

// Number renders a plain number the way it was sent (3, 4.5).
func Number(n models.Number) string {
	if !n.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

// Ratio renders a 0..1 ratio as a percentage with one decimal (0.042 → 4.2%).
func Ratio(n models.Number) string {
	if !n.Valid {
		return Placeholder
	}
	return strconv.FormatFloat(n.Value*100, 'f', 1, 64) + "%"
}

// Percent renders a value that is already a percentage (32.5 → 32.5%).
func Percent(n models.Number) string {
	if !n.Valid {
		return Placeholder
	}
	return Number(n) + "%"
}

// WithUnit renders a number followed by a unit ("18 months", "45 days").
func WithUnit(n models.Number, unit string) string {
	if !n.Valid {
		return Placeholder
	}
	return Number(n) + " " + unit
}

// Join joins the values, or returns the placeholder for an empty list.
func Join(values []string, sep string) string {
	return JoinOr(values, sep, Placeholder)
}

// JoinOr joins the values, or returns empty for an empty list.
func JoinOr(values []string, sep, empty string) string {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return empty
	}
	return strings.Join(kept, sep)
}

// Or returns s, or the placeholder when s is blank.
func Or(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

package format_test

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"creditboard/internal/dashboard/format"
	"creditboard/internal/dashboard/models"
)

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		value    models.Number
		currency string
		want     string
	}{
		{name: "default currency with grouping", value: models.NumberOf(50000), currency: "SAR", want: "SAR 50,000.00"},
		{name: "rounds to minor unit", value: models.NumberOf(1234.567), currency: "SAR", want: "SAR 1,234.57"},
		{name: "half rounds away from zero", value: models.NumberOf(0.005), currency: "SAR", want: "SAR 0.01"},
		{name: "symbol currency", value: models.NumberOf(1234.5), currency: "USD", want: "$1,234.50"},
		{name: "zero-decimal currency", value: models.NumberOf(1234.5), currency: "JPY", want: "¥1,235"},
		{name: "negative amount", value: models.NumberOf(-1500), currency: "SAR", want: "-SAR 1,500.00"},
		{name: "lowercase code", value: models.NumberOf(10), currency: "sar", want: "SAR 10.00"},
		{name: "blank code falls back", value: models.NumberOf(10), currency: "", want: "SAR 10.00"},
		{name: "unknown code falls back", value: models.NumberOf(10), currency: "NOTACODE", want: "SAR 10.00"},
		{name: "zero is a value", value: models.NumberOf(0), currency: "SAR", want: "SAR 0.00"},
		{name: "absent", value: models.Number{}, currency: "SAR", want: format.Placeholder},
		{name: "not finite", value: models.NumberOf(math.Inf(1)), currency: "SAR", want: format.Placeholder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, format.Currency(tt.value, tt.currency))
		})
	}
}

func TestCurrency_CoercedStrings(t *testing.T) {
	assert.Equal(t, "SAR 12,000.00", format.Currency(models.ParseNumber(" 12000 "), "SAR"))
	assert.Equal(t, format.Placeholder, format.Currency(models.ParseNumber("twelve"), "SAR"))
	assert.Equal(t, format.Placeholder, format.Currency(models.ParseNumber("NaN"), "SAR"))
}

func TestMoney(t *testing.T) {
	t.Run("known amount uses its currency", func(t *testing.T) {
		m := models.Money{Amount: decimal.NewNullDecimal(decimal.RequireFromString("250000")), Currency: "USD"}
		assert.Equal(t, "$250,000.00", format.Money(m))
	})

	t.Run("unknown amount", func(t *testing.T) {
		assert.Equal(t, format.Placeholder, format.Money(models.NewMoney(models.Number{}, models.Text{})))
	})
}

func TestScalars(t *testing.T) {
	assert.Equal(t, "Riyadh", format.Text(models.TextOf("  Riyadh ")))
	assert.Equal(t, format.Placeholder, format.Text(models.Text{}))
	assert.Equal(t, "Unknown", format.TextOr(models.Text{}, "Unknown"))

	assert.Equal(t, "3", format.Number(models.NumberOf(3)))
	assert.Equal(t, "4.5", format.Number(models.NumberOf(4.5)))
	assert.Equal(t, format.Placeholder, format.Number(models.Number{}))

	assert.Equal(t, "4.2%", format.Ratio(models.NumberOf(0.042)))
	assert.Equal(t, "0.0%", format.Ratio(models.NumberOf(0)))
	assert.Equal(t, "32.5%", format.Percent(models.NumberOf(32.5)))

	assert.Equal(t, "18 months", format.WithUnit(models.NumberOf(18), "months"))
	assert.Equal(t, format.Placeholder, format.WithUnit(models.Number{}, "months"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "POS, Inventory", format.Join([]string{"POS", " ", "Inventory"}, ", "))
	assert.Equal(t, format.Placeholder, format.Join(nil, ", "))
	assert.Equal(t, "None", format.JoinOr([]string{""}, ", ", "None"))
	assert.Equal(t, format.Placeholder, format.Or("  "))
	assert.Equal(t, "x", format.Or("x"))
}

package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultCurrency applies when a monetary value carries no currency of its own.
const DefaultCurrency = "SAR"

var jsonNull = []byte("null")

// Number is an optional numeric field decoded leniently from backend JSON.
// JSON numbers and numeric strings are accepted; null, booleans, objects,
// arrays, unparsable strings and non-finite values all decode as absent.
// Decoding never fails.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf returns a present Number, or an absent one for NaN/Inf.
func NumberOf(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Number{}
	}
	return Number{Value: v, Valid: true}
}

// ParseNumber coerces a string into a Number. Blank strings are absent.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Number{}
	}
	return NumberOf(f)
}

// Or returns the value when present, otherwise fallback.
func (n Number) Or(fallback float64) float64 {
	if !n.Valid {
		return fallback
	}
	return n.Value
}

func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*n = ParseNumber(s)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var f float64
		if err := json.Unmarshal(data, &f); err == nil {
			*n = NumberOf(f)
		}
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return jsonNull, nil
	}
	return json.Marshal(n.Value)
}

// Text is an optional scalar field rendered as text. Strings are kept as
// sent; numbers and booleans are converted to their textual form. Blank
// strings, null and composite values are absent.
type Text struct {
	Value string
	Valid bool
}

// TextOf returns a Text that is present unless s is blank.
func TextOf(s string) Text {
	if strings.TrimSpace(s) == "" {
		return Text{}
	}
	return Text{Value: s, Valid: true}
}

// Or returns the value when present, otherwise fallback.
func (t Text) Or(fallback string) string {
	if !t.Valid {
		return fallback
	}
	return t.Value
}

func (t *Text) UnmarshalJSON(data []byte) error {
	*t = Text{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	switch c := data[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(data, &s); err == nil {
			*t = TextOf(s)
		}
	case c == '-' || (c >= '0' && c <= '9'):
		var f float64
		if err := json.Unmarshal(data, &f); err == nil {
			*t = TextOf(strconv.FormatFloat(f, 'f', -1, 64))
		}
	case c == 't' || c == 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err == nil {
			*t = TextOf(strconv.FormatBool(b))
		}
	}
	return nil
}

func (t Text) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return jsonNull, nil
	}
	return json.Marshal(t.Value)
}

// Flag is an optional boolean field.
type Flag struct {
	Value bool
	Valid bool
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	*f = Flag{}
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag{Value: b, Valid: true}
	}
	return nil
}

// List decodes a JSON array element by element. A non-array value decodes
// as an empty list and an element that does not fit T is kept as T's zero
// value, so the list length always matches what the backend sent.
type List[T any] []T

func (l *List[T]) UnmarshalJSON(data []byte) error {
	*l = nil
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	out := make(List[T], len(raw))
	for i, elem := range raw {
		var v T
		if err := json.Unmarshal(elem, &v); err == nil {
			out[i] = v
		}
	}
	*l = out
	return nil
}

// TextList is a lenient list of display strings.
type TextList = List[Text]

// Values returns the present entries of a text list in order.
func Values(l TextList) []string {
	out := make([]string, 0, len(l))
	for _, t := range l {
		if t.Valid {
			out = append(out, strings.TrimSpace(t.Value))
		}
	}
	return out
}

// CustomerID identifies a customer. The backend emits integer ids; string
// ids are accepted as well so the client never depends on the id type.
type CustomerID string

func (id CustomerID) String() string {
	return string(id)
}

// IsZero reports whether no customer is identified.
func (id CustomerID) IsZero() bool {
	return strings.TrimSpace(string(id)) == ""
}

// UnmarshalJSON keeps integer ids digit for digit; other scalars go
// through Text.
func (id *CustomerID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && (data[0] == '-' || (data[0] >= '0' && data[0] <= '9')) {
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil && isInteger(n.String()) {
			*id = CustomerID(n.String())
			return nil
		}
	}
	var t Text
	_ = t.UnmarshalJSON(data)
	*id = CustomerID(strings.TrimSpace(t.Value))
	return nil
}

func isInteger(s string) bool {
	s = strings.TrimPrefix(s, "-")
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Money is an optional amount in a currency.
type Money struct {
	Amount   decimal.NullDecimal `json:"amount"`
	Currency string              `json:"currency"`
}

// NewMoney builds Money from lenient wire fields. The currency falls back
// to DefaultCurrency when absent.
func NewMoney(amount Number, currency Text) Money {
	m := Money{Currency: strings.ToUpper(strings.TrimSpace(currency.Or(DefaultCurrency)))}
	if amount.Valid {
		m.Amount = decimal.NewNullDecimal(decimal.NewFromFloat(amount.Value))
	}
	return m
}

// Known reports whether the amount is present.
func (m Money) Known() bool {
	return m.Amount.Valid
}

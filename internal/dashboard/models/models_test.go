package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

// WireDecodingSuite covers the lenient decoding of backend payloads.
type WireDecodingSuite struct {
	suite.Suite
}

func TestWireDecodingSuite(t *testing.T) {
	suite.Run(t, new(WireDecodingSuite))
}

func (s *WireDecodingSuite) decodeNumber(raw string) Number {
	var n Number
	s.Require().NoError(json.Unmarshal([]byte(raw), &n))
	return n
}

func (s *WireDecodingSuite) TestNumber() {
	s.Run("json number", func() {
		s.Equal(NumberOf(12.5), s.decodeNumber(`12.5`))
	})
	s.Run("numeric string is coerced", func() {
		s.Equal(NumberOf(1200), s.decodeNumber(`" 1200 "`))
	})
	s.Run("null and junk are absent", func() {
		for _, raw := range []string{`null`, `"abc"`, `""`, `true`, `{}`, `[1]`, `"Infinity"`} {
			s.False(s.decodeNumber(raw).Valid, raw)
		}
	})
	s.Run("absent marshals as null", func() {
		out, err := json.Marshal(Number{})
		s.Require().NoError(err)
		s.JSONEq(`null`, string(out))
	})
}

func (s *WireDecodingSuite) TestText() {
	var body struct {
		A Text `json:"a"`
		B Text `json:"b"`
		C Text `json:"c"`
		D Text `json:"d"`
		E Text `json:"e"`
	}
	s.Require().NoError(json.Unmarshal([]byte(`{"a": "pro", "b": 24, "c": false, "d": "  ", "e": {"x": 1}}`), &body))

	s.Equal(TextOf("pro"), body.A)
	s.Equal("24", body.B.Value)
	s.Equal("false", body.C.Value)
	s.False(body.D.Valid)
	s.False(body.E.Valid)
}

func (s *WireDecodingSuite) TestFlag() {
	var body struct {
		Yes  Flag `json:"yes"`
		Null Flag `json:"null"`
		Bad  Flag `json:"bad"`
	}
	s.Require().NoError(json.Unmarshal([]byte(`{"yes": true, "null": null, "bad": "yes"}`), &body))

	s.True(body.Yes.Valid && body.Yes.Value)
	s.False(body.Null.Valid)
	s.False(body.Bad.Valid)
}

func (s *WireDecodingSuite) TestList() {
	s.Run("bad elements keep their slot", func() {
		var l TextList
		s.Require().NoError(json.Unmarshal([]byte(`["a", null, {}, 2]`), &l))
		s.Len(l, 4)
		s.Equal([]string{"a", "2"}, Values(l))
	})
	s.Run("non-array decodes as empty", func() {
		var l TextList
		s.Require().NoError(json.Unmarshal([]byte(`"a, b"`), &l))
		s.Empty(l)
	})
}

func (s *WireDecodingSuite) TestCustomerID() {
	var out []CustomerSummary
	s.Require().NoError(json.Unmarshal([]byte(`[{"id": 17}, {"id": "abc"}, {}]`), &out))

	s.Equal(CustomerID("17"), out[0].ID)
	s.Equal(CustomerID("abc"), out[1].ID)
	s.True(out[2].ID.IsZero())

	s.Run("large integers keep every digit", func() {
		var c CustomerSummary
		s.Require().NoError(json.Unmarshal([]byte(`{"id": 9007199254740993}`), &c))
		s.Equal(CustomerID("9007199254740993"), c.ID)
	})

	s.Run("fractional numbers render as text", func() {
		var c CustomerSummary
		s.Require().NoError(json.Unmarshal([]byte(`{"id": 12.5}`), &c))
		s.Equal(CustomerID("12.5"), c.ID)
	})
}

func (s *WireDecodingSuite) TestMoney() {
	s.Run("currency defaults and is upper-cased", func() {
		s.Equal(DefaultCurrency, NewMoney(NumberOf(1), Text{}).Currency)
		s.Equal("USD", NewMoney(NumberOf(1), TextOf(" usd ")).Currency)
	})
	s.Run("unknown amount", func() {
		s.False(NewMoney(Number{}, TextOf("SAR")).Known())
	})
	s.Run("snapshot limit", func() {
		var snap CreditSnapshot
		s.Require().NoError(json.Unmarshal([]byte(`{"recommended_credit_limit_amount": "150000.50"}`), &snap))
		limit := snap.RecommendedLimit()
		s.True(limit.Known())
		s.Equal("150000.5", limit.Amount.Decimal.String())
		s.Equal(DefaultCurrency, limit.Currency)
	})
}

// DashboardQuerySuite covers filter updates and request encoding.
type DashboardQuerySuite struct {
	suite.Suite
}

func TestDashboardQuerySuite(t *testing.T) {
	suite.Run(t, new(DashboardQuerySuite))
}

func (s *DashboardQuerySuite) TestValues() {
	s.Run("defaults send only the viewer", func() {
		v := NewDashboardQuery().Values()
		s.Equal("viewer_type=silky_internal", v.Encode())
	})
	s.Run("blank optional filters are omitted", func() {
		q := DashboardQuery{ViewerType: "", SubscriptionTier: "  ", LenderID: ""}
		v := q.Values()
		s.Equal("silky_internal", v.Get("viewer_type"))
		s.False(v.Has("subscription_tier"))
		s.False(v.Has("lender_id"))
	})
	s.Run("set filters are trimmed and sent", func() {
		q := DashboardQuery{ViewerType: ViewerBankPartner, SubscriptionTier: " gold ", LenderID: "L-9"}
		s.Equal("lender_id=L-9&subscription_tier=gold&viewer_type=bank_partner", q.Values().Encode())
	})
}

func (s *DashboardQuerySuite) TestWith() {
	q := NewDashboardQuery()

	s.Run("valid viewer", func() {
		next, err := q.With(FilterViewerType, "merchant")
		s.Require().NoError(err)
		s.Equal(ViewerMerchant, next.ViewerType)
	})
	s.Run("blank viewer restores default", func() {
		next, err := DashboardQuery{ViewerType: ViewerMerchant}.With(FilterViewerType, " ")
		s.Require().NoError(err)
		s.Equal(DefaultViewerType, next.ViewerType)
	})
	s.Run("unsupported viewer is rejected and query unchanged", func() {
		next, err := q.With(FilterViewerType, "auditor")
		s.Require().Error(err)
		s.Equal(q, next)
	})
	s.Run("unknown field is rejected", func() {
		_, err := q.With(FilterField("region"), "x")
		s.Require().Error(err)
	})
	s.Run("optional filter can be cleared", func() {
		next, err := DashboardQuery{ViewerType: ViewerMerchant, LenderID: "L-1"}.With(FilterLenderID, "")
		s.Require().NoError(err)
		s.Empty(next.LenderID)
	})
}

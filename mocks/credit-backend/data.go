package main

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// customer is one seeded merchant.
type customer struct {
	ID            int
	LegalName     string
	TradeName     string
	Industry      string
	City          string
	Plan          string
	CRNumber      string
	VATNumber     string
	Branches      int
	YearsActive   int
	GoLiveMonths  int
	Modules       []string
	BaseRevenue   float64
	PaymentHabits string
}

// Magic customer ids that drive the error paths of the dashboard endpoint.
const (
	idModelFailure = 900 // 502 with a detail message
	idServerError  = 901 // 500
	idSlow         = 902 // answers after several latency periods
)

func seedCustomers() []customer {
	return []customer{
		{
			ID: 1, LegalName: "Riyadh Burger House Co.", TradeName: "Burger House - Riyadh",
			Industry: "F&B_QSR", City: "Riyadh", Plan: "pro",
			CRNumber: "1010123456", VATNumber: "310123456700003",
			Branches: 3, YearsActive: 5, GoLiveMonths: 24,
			Modules: []string{"POS", "Inventory", "Invoices"}, BaseRevenue: 185000, PaymentHabits: "on_time",
		},
		{
			ID: 2, LegalName: "Jeddah Coffee Roasters LLC", TradeName: "Bahr Coffee",
			Industry: "F&B_Cafe", City: "Jeddah", Plan: "standard",
			CRNumber: "4030987654", VATNumber: "300987654300003",
			Branches: 2, YearsActive: 3, GoLiveMonths: 14,
			Modules: []string{"POS", "Inventory"}, BaseRevenue: 92000, PaymentHabits: "occasional_late",
		},
		{
			ID: 3, LegalName: "Dammam Fresh Market Trading", TradeName: "",
			Industry: "Retail_Grocery", City: "Dammam", Plan: "enterprise",
			CRNumber: "2050456789", VATNumber: "310456789100003",
			Branches: 6, YearsActive: 11, GoLiveMonths: 36,
			Modules: []string{"POS", "Inventory", "Invoices", "Payroll"}, BaseRevenue: 640000, PaymentHabits: "on_time",
		},
		{
			ID: 4, LegalName: "Al Khobar Sweets Est.", TradeName: "Khobar Sweets",
			Industry: "F&B_Bakery", City: "Al Khobar", Plan: "free",
			CRNumber: "2051112223", VATNumber: "",
			Branches: 1, YearsActive: 1, GoLiveMonths: 4,
			Modules: []string{"POS"}, BaseRevenue: 38000, PaymentHabits: "unknown",
		},
		{
			ID: idModelFailure, LegalName: "Failing Model Demo Co.", TradeName: "Model Failure Demo",
			Industry: "Demo", City: "Riyadh", Plan: "standard", Modules: []string{"POS"}, BaseRevenue: 50000,
		},
		{
			ID: idServerError, LegalName: "Server Error Demo Co.", TradeName: "",
			Industry: "Demo", City: "Riyadh", Modules: []string{"POS"}, BaseRevenue: 50000,
		},
		{
			ID: idSlow, LegalName: "Slow Generation Demo Co.", TradeName: "Slow Demo",
			Industry: "Demo", City: "Jeddah", Plan: "pro", Modules: []string{"POS"}, BaseRevenue: 75000,
		},
	}
}

// profile holds the hash-derived numbers behind one generated dashboard,
// so the same customer and viewer always get the same dashboard.
type profile struct {
	score       int
	band        string
	limit       float64
	tenor       int
	growthMoM   float64
	growthYoY   float64
	volatility  float64
	activeDays  int
	overdue     float64
	grossMargin float64
	monthly     []float64
}

func newProfile(c customer, viewer string) profile {
	h := sha256.Sum256(fmt.Appendf(nil, "%d/%s", c.ID, viewer))

	score := 40 + int(h[0])%56
	p := profile{
		score:       score,
		band:        bandFor(score),
		tenor:       6 + 6*(int(h[1])%4),
		growthMoM:   (float64(h[2]) - 110) / 1000,
		growthYoY:   (float64(h[3]) - 90) / 500,
		volatility:  float64(h[4]%100) / 100,
		activeDays:  20 + int(h[5])%70,
		overdue:     float64(h[6]%40) / 100,
		grossMargin: 25 + float64(h[7]%40),
	}
	p.limit = roundTo(c.BaseRevenue*float64(score)/100*1.5, 1000)

	p.monthly = make([]float64, 12)
	for i := range p.monthly {
		swing := (float64(h[8+i]) - 128) / 1000
		trend := 1 + p.growthYoY*float64(i-11)/12
		p.monthly[i] = roundTo(c.BaseRevenue*trend*(1+swing), 0.01)
	}
	return p
}

func bandFor(score int) string {
	switch {
	case score >= 85:
		return "A+"
	case score >= 75:
		return "A"
	case score >= 60:
		return "B"
	case score >= 50:
		return "C"
	default:
		return "D"
	}
}

func roundTo(v, unit float64) float64 {
	if unit <= 0 {
		return v
	}
	n := v / unit
	if n < 0 {
		return float64(int64(n-0.5)) * unit
	}
	return float64(int64(n+0.5)) * unit
}

func usageModeFor(viewer string) string {
	switch viewer {
	case "bank_partner":
		return "bank_partner_portal"
	case "merchant":
		return "merchant_portal"
	default:
		return "internal_analytics"
	}
}

func trendFor(growthYoY, volatility float64) string {
	switch {
	case volatility > 0.8:
		return "volatile"
	case growthYoY > 0.05:
		return "growing"
	case growthYoY < -0.05:
		return "declining"
	default:
		return "stable"
	}
}

// dashboard builds the raw dashboard document the way the real backend
// serializes it.
func dashboard(c customer, viewer, tier, lender string, now time.Time) map[string]any {
	p := newProfile(c, viewer)
	if tier == "" {
		tier = c.Plan
		if tier == "" {
			tier = "standard"
		}
	}

	months := make([]map[string]any, len(p.monthly))
	var total float64
	for i, v := range p.monthly {
		month := now.AddDate(0, i-len(p.monthly)+1, 0).Format("2006-01")
		months[i] = map[string]any{"month": month, "revenue": v}
		total += v
	}
	avg := roundTo(total/float64(len(p.monthly)), 0.01)
	base3 := roundTo(avg*0.12*3, 100)
	base12 := roundTo(avg*0.12*12*(1+p.growthYoY), 100)

	doc := map[string]any{
		"customer_id": c.ID,
		"kyc_profile": map[string]any{
			"legal_name": c.LegalName,
			"trade_name": nullIfEmpty(c.TradeName),
			"registration": map[string]any{
				"cr_number":         nullIfEmpty(c.CRNumber),
				"vat_number":        nullIfEmpty(c.VATNumber),
				"country":           "Saudi Arabia",
				"city":              c.City,
				"years_in_business": c.YearsActive,
			},
			"segment":             c.Industry,
			"branches_count":      c.Branches,
			"acquisition_channel": "silky_direct",
			"relationship_with_silky": map[string]any{
				"go_live_date":            now.AddDate(0, -c.GoLiveMonths, 0).Format("2006-01-02"),
				"subscription_plan":       c.Plan,
				"modules_enabled":         c.Modules,
				"tenure_months":           c.GoLiveMonths,
				"silky_payment_behaviour": orDefault(c.PaymentHabits, "unknown"),
			},
		},
		"behaviour_profile": map[string]any{
			"activity": map[string]any{
				"status":              activityStatus(p.activeDays),
				"active_days_last_90": p.activeDays,
				"logins_last_90":      p.activeDays * 7,
				"active_users":        min(3, c.Branches+1),
				"total_users":         c.Branches + 2,
			},
			"feature_adoption": adoption(c.Modules, p.activeDays),
			"discipline": map[string]any{
				"invoice_matching_rate":   roundTo(1-p.overdue, 0.01),
				"stock_update_frequency":  "weekly",
				"data_completeness_score": roundTo(0.6+p.volatility/3, 0.01),
			},
			"behaviour_risks": risksFor(p),
		},
		"financial_health": map[string]any{
			"revenue": map[string]any{
				"avg_monthly_revenue":      avg,
				"revenue_trend":            trendFor(p.growthYoY, p.volatility),
				"growth_rate_yoy":          roundTo(p.growthYoY, 0.001),
				"growth_rate_mom":          roundTo(p.growthMoM, 0.001),
				"revenue_volatility_score": roundTo(p.volatility, 0.01),
				"monthly_revenue":          months,
			},
			"profitability_proxy": map[string]any{
				"gross_margin_percent": p.grossMargin,
				"comment":              "Estimated from POS category mix.",
			},
			"liquidity": map[string]any{
				"avg_dso_days":               18 + p.activeDays%20,
				"avg_dpo_days":               25 + p.activeDays%15,
				"cash_conversion_cycle_days": -7 + p.activeDays%20,
				"overdue_invoices_ratio":     p.overdue,
			},
			"concentration": map[string]any{
				"revenue_concentration_comment": "Walk-in customers; no single payer dominates.",
				"top_customer_share":            nil,
			},
			"seasonality": map[string]any{
				"has_strong_seasonality": p.volatility > 0.6,
				"seasonality_comment":    "Ramadan and summer peaks.",
			},
		},
		"cashflow_forecast": map[string]any{
			"base_case":         scenario(base3, base12),
			"conservative_case": scenario(roundTo(base3*0.6, 100), roundTo(base12*0.55, 100)),
			"optimistic_case":   scenario(roundTo(base3*1.3, 100), roundTo(base12*1.4, 100)),
			"confidence_level":  confidence(p.volatility),
			"key_drivers":       []string{"POS sales run-rate", "Supplier payment terms"},
		},
		"credit_analysis": map[string]any{
			"credit_score": p.score,
			"credit_band":  p.band,
			"recommended_credit_limit": map[string]any{
				"amount":        p.limit,
				"currency":      "SAR",
				"logic_comment": "1.5x average monthly revenue scaled by score.",
			},
			"max_safe_tenor_months": p.tenor,
			"score_explanation": map[string]any{
				"positive_drivers": []string{"Consistent POS activity", fmt.Sprintf("%d years in business", c.YearsActive)},
				"risk_factors":     risksFor(p),
			},
			"data_quality_comment": "Twelve months of POS data available.",
		},
		"safety_and_compliance": map[string]any{
			"used_sensitive_attributes": false,
			"regulatory_flags":          []string{},
		},
		"available_offers": []map[string]any{{
			"offer_id":              fmt.Sprintf("WC-%d-%d", c.ID, p.tenor),
			"product_type":          "working_capital_loan",
			"amount":                p.limit,
			"currency":              "SAR",
			"tenor_months":          p.tenor,
			"interest_rate_percent": 8.5 + float64(100-p.score)/10,
			"risk_tier":             offerTier(p.band),
		}},
		"early_warning_flags":              earlyWarnings(p),
		"recommendations_for_lender":       []string{"Review limit after two repayment cycles."},
		"improvement_actions_for_merchant": []string{"Record supplier invoices in Silky to improve data completeness."},
		"segment_specific_strengths":       []string{"Repeat customer base typical of " + c.Industry},
		"segment_specific_risks":           []string{},
		"audit_metadata": map[string]any{
			"model_version":         "credit-agent-2024.11",
			"model_provider":        "mock-credit-backend",
			"input_data_date_range": fmt.Sprintf("%s to %s", months[0]["month"], months[len(months)-1]["month"]),
			"generated_at":          now.UTC().Format(time.RFC3339),
		},
		"usage_mode":        usageModeFor(viewer),
		"subscription_tier": tier,
	}
	if lender != "" {
		doc["lender_profile"] = map[string]any{"lender_id": lender, "min_score": 55}
	}
	return doc
}

func scenario(next3, next12 float64) map[string]any {
	return map[string]any{
		"currency":                     "SAR",
		"net_cash_flow_next_3_months":  next3,
		"net_cash_flow_next_12_months": next12,
	}
}

func adoption(modules []string, activeDays int) []map[string]any {
	out := make([]map[string]any, 0, len(modules))
	for i, m := range modules {
		level := "high"
		switch {
		case activeDays < 40 || i >= 3:
			level = "low"
		case activeDays < 70 || i >= 2:
			level = "medium"
		}
		out = append(out, map[string]any{"module": m, "usage_level": level, "key_metrics": map[string]any{}})
	}
	return out
}

func activityStatus(activeDays int) string {
	switch {
	case activeDays >= 45:
		return "active"
	case activeDays >= 25:
		return "at_risk"
	default:
		return "inactive"
	}
}

func risksFor(p profile) []string {
	var risks []string
	if p.overdue > 0.25 {
		risks = append(risks, fmt.Sprintf("%.0f%% of invoices overdue", p.overdue*100))
	}
	if p.volatility > 0.6 {
		risks = append(risks, "Volatile monthly revenue")
	}
	if risks == nil {
		risks = []string{}
	}
	return risks
}

func earlyWarnings(p profile) []string {
	if p.growthMoM < -0.05 {
		return []string{"Month-on-month revenue decline"}
	}
	return []string{}
}

func confidence(volatility float64) string {
	switch {
	case volatility < 0.3:
		return "high"
	case volatility < 0.7:
		return "medium"
	default:
		return "low"
	}
}

func offerTier(band string) string {
	switch band {
	case "A+", "A":
		return "A"
	case "B":
		return "B"
	default:
		return "C"
	}
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

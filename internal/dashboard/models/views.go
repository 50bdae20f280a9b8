package models

// View models handed to render sinks. Every string field holds either a
// display value or the placeholder, never an empty string.

// SeriesPoint is one chart sample. Value is absent when the source figure
// is unknown; the sink draws a gap for it.
type SeriesPoint struct {
	Label string `json:"label"`
	Value Number `json:"value"`
}

// Detail is a labelled display value.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// LabeledList is a list section with its own empty-state message.
type LabeledList struct {
	Label        string   `json:"label"`
	Items        []string `json:"items"`
	EmptyMessage string   `json:"empty_message"`
}

func (l LabeledList) IsEmpty() bool {
	return len(l.Items) == 0
}

// Lines returns the items, or the empty-state message alone.
func (l LabeledList) Lines() []string {
	if l.IsEmpty() {
		return []string{l.EmptyMessage}
	}
	return l.Items
}

// CustomerCard is the list entry shown for one customer.
type CustomerCard struct {
	ID       CustomerID `json:"id"`
	Title    string     `json:"title"`
	Subtitle string     `json:"subtitle"`
	Plan     string     `json:"plan"`
	Score    string     `json:"score"`
	Band     string     `json:"band"`
	Limit    string     `json:"limit"`
	Tenor    string     `json:"tenor"`
	Active   bool       `json:"active"`
}

type KYCView struct {
	TierChip         string `json:"tier_chip"`
	LegalName        string `json:"legal_name"`
	TradeName        string `json:"trade_name"`
	Segment          string `json:"segment"`
	City             string `json:"city"`
	Country          string `json:"country"`
	CRNumber         string `json:"cr_number"`
	YearsInBusiness  string `json:"years_in_business"`
	Branches         string `json:"branches"`
	Modules          string `json:"modules"`
	SubscriptionPlan string `json:"subscription_plan"`
	TenureMonths     string `json:"tenure_months"`
	GoLiveDate       string `json:"go_live_date"`
	PaymentBehaviour string `json:"payment_behaviour"`
}

func (v KYCView) Details() []Detail {
	return []Detail{
		{Label: "Legal name", Value: v.LegalName},
		{Label: "Trade name", Value: v.TradeName},
		{Label: "Industry", Value: v.Segment},
		{Label: "City", Value: v.City},
		{Label: "Country", Value: v.Country},
		{Label: "CR number", Value: v.CRNumber},
		{Label: "Years in business", Value: v.YearsInBusiness},
		{Label: "Branches", Value: v.Branches},
		{Label: "Modules", Value: v.Modules},
		{Label: "Plan", Value: v.SubscriptionPlan},
		{Label: "Tenure (months)", Value: v.TenureMonths},
		{Label: "Go-live", Value: v.GoLiveDate},
		{Label: "Payment behaviour", Value: v.PaymentBehaviour},
	}
}

type BehaviourView struct {
	StatusChip       string `json:"status_chip"`
	Activity         string `json:"activity"`
	ActiveUsers      string `json:"active_users"`
	FeatureAdoption  string `json:"feature_adoption"`
	Risks            string `json:"risks"`
	InvoiceMatching  string `json:"invoice_matching"`
	StockUpdates     string `json:"stock_updates"`
	DataCompleteness string `json:"data_completeness"`
}

func (v BehaviourView) Details() []Detail {
	return []Detail{
		{Label: "Activity last 90d", Value: v.Activity},
		{Label: "Active users", Value: v.ActiveUsers},
		{Label: "Feature adoption", Value: v.FeatureAdoption},
		{Label: "Behaviour risks", Value: v.Risks},
		{Label: "Invoice matching", Value: v.InvoiceMatching},
		{Label: "Stock updates", Value: v.StockUpdates},
		{Label: "Data completeness", Value: v.DataCompleteness},
	}
}

type FinancialsView struct {
	AvgMonthlyRevenue   string `json:"avg_monthly_revenue"`
	Trend               string `json:"trend"`
	GrowthMoM           string `json:"growth_mom"`
	GrowthYoY           string `json:"growth_yoy"`
	Volatility          string `json:"volatility"`
	Liquidity           string `json:"liquidity"`
	CashConversionCycle string `json:"cash_conversion_cycle"`
	OverdueInvoices     string `json:"overdue_invoices"`
	Profitability       string `json:"profitability"`
	Concentration       string `json:"concentration"`
	Seasonality         string `json:"seasonality"`
	StrongSeasonality   string `json:"strong_seasonality"`
	// SeriesSynthesized is true when RevenueSeries was projected from
	// summary statistics rather than taken from monthly history.
	SeriesSynthesized bool          `json:"series_synthesized"`
	RevenueSeries     []SeriesPoint `json:"revenue_series"`
}

func (v FinancialsView) Details() []Detail {
	return []Detail{
		{Label: "Avg monthly revenue", Value: v.AvgMonthlyRevenue},
		{Label: "Trend", Value: v.Trend},
		{Label: "Growth MoM", Value: v.GrowthMoM},
		{Label: "Growth YoY", Value: v.GrowthYoY},
		{Label: "Volatility", Value: v.Volatility},
		{Label: "Liquidity", Value: v.Liquidity},
		{Label: "Cash conversion cycle", Value: v.CashConversionCycle},
		{Label: "Overdue invoices", Value: v.OverdueInvoices},
		{Label: "Profitability", Value: v.Profitability},
		{Label: "Concentration", Value: v.Concentration},
		{Label: "Seasonality", Value: v.Seasonality},
		{Label: "Strong seasonality", Value: v.StrongSeasonality},
	}
}

type CashflowView struct {
	Base         string        `json:"base"`
	Conservative string        `json:"conservative"`
	Optimistic   string        `json:"optimistic"`
	Confidence   string        `json:"confidence"`
	Drivers      string        `json:"drivers"`
	Series       []SeriesPoint `json:"series"`
}

func (v CashflowView) Details() []Detail {
	return []Detail{
		{Label: "Base case", Value: v.Base},
		{Label: "Conservative", Value: v.Conservative},
		{Label: "Optimistic", Value: v.Optimistic},
		{Label: "Confidence", Value: v.Confidence},
		{Label: "Drivers", Value: v.Drivers},
	}
}

type CreditView struct {
	Band             string      `json:"band"`
	Score            string      `json:"score"`
	RecommendedLimit string      `json:"recommended_limit"`
	Limit            Money       `json:"limit"`
	LimitLogic       string      `json:"limit_logic"`
	MaxTenor         string      `json:"max_tenor"`
	DataQuality      string      `json:"data_quality"`
	PositiveDrivers  LabeledList `json:"positive_drivers"`
	RiskFactors      LabeledList `json:"risk_factors"`
}

func (v CreditView) Details() []Detail {
	return []Detail{
		{Label: "Credit score", Value: v.Score},
		{Label: "Recommended limit", Value: v.RecommendedLimit},
		{Label: "Limit logic", Value: v.LimitLogic},
		{Label: "Max tenor", Value: v.MaxTenor},
		{Label: "Data quality", Value: v.DataQuality},
	}
}

type InsightsView struct {
	Offers                LabeledList `json:"offers"`
	EarlyWarningFlags     LabeledList `json:"early_warning_flags"`
	LenderRecommendations LabeledList `json:"lender_recommendations"`
	MerchantActions       LabeledList `json:"merchant_actions"`
	SegmentStrengths      LabeledList `json:"segment_strengths"`
	SegmentRisks          LabeledList `json:"segment_risks"`
	UsageMode             string      `json:"usage_mode"`
	SubscriptionTier      string      `json:"subscription_tier"`
	GeneratedBy           string      `json:"generated_by"`
	GeneratedAt           string      `json:"generated_at"`
}

// Lists returns the insight lists in display order.
func (v InsightsView) Lists() []LabeledList {
	return []LabeledList{
		v.Offers,
		v.EarlyWarningFlags,
		v.LenderRecommendations,
		v.MerchantActions,
		v.SegmentStrengths,
		v.SegmentRisks,
	}
}

// DashboardSnapshot is the normalized result of one dashboard fetch.
type DashboardSnapshot struct {
	CustomerID CustomerID     `json:"customer_id"`
	KYC        KYCView        `json:"kyc"`
	Behaviour  BehaviourView  `json:"behaviour"`
	Financials FinancialsView `json:"financials"`
	Cashflow   CashflowView   `json:"cashflow"`
	Credit     CreditView     `json:"credit"`
	Insights   InsightsView   `json:"insights"`
}

package models

// Wire shapes returned by the credit backend. Every field is optional: the
// dashboard is produced by a model and any key may be missing or mistyped.

// CustomerSummary is one entry of GET /api/customers.
type CustomerSummary struct {
	ID               CustomerID      `json:"id"`
	LegalName        Text            `json:"legal_name"`
	TradeName        Text            `json:"trade_name"`
	Industry         Text            `json:"industry"`
	City             Text            `json:"city"`
	SubscriptionPlan Text            `json:"subscription_plan"`
	LatestCredit     *CreditSnapshot `json:"latest_credit"`
}

// CreditSnapshot is the most recent persisted credit result for a customer.
type CreditSnapshot struct {
	CreditScore              Number `json:"credit_score"`
	CreditBand               Text   `json:"credit_band"`
	RecommendedLimitAmount   Number `json:"recommended_credit_limit_amount"`
	RecommendedLimitCurrency Text   `json:"recommended_credit_limit_currency"`
	MaxSafeTenorMonths       Number `json:"max_safe_tenor_months"`
	SnapshotAt               Text   `json:"snapshot_at"`
}

// RecommendedLimit returns the snapshot limit as Money.
func (c CreditSnapshot) RecommendedLimit() Money {
	return NewMoney(c.RecommendedLimitAmount, c.RecommendedLimitCurrency)
}

// DashboardPayload is the body of GET /api/credit-dashboard/{id}.
type DashboardPayload struct {
	CustomerID       CustomerID `json:"customer_id"`
	UsageMode        Text       `json:"usage_mode"`
	SubscriptionTier Text       `json:"subscription_tier"`

	KYCProfile       KYCProfile       `json:"kyc_profile"`
	BehaviourProfile BehaviourProfile `json:"behaviour_profile"`
	FinancialHealth  FinancialHealth  `json:"financial_health"`
	CashflowForecast CashflowForecast `json:"cashflow_forecast"`
	CreditAnalysis   CreditAnalysis   `json:"credit_analysis"`

	AvailableOffers               List[CreditOffer] `json:"available_offers"`
	EarlyWarningFlags             TextList          `json:"early_warning_flags"`
	RecommendationsForLender      TextList          `json:"recommendations_for_lender"`
	ImprovementActionsForMerchant TextList          `json:"improvement_actions_for_merchant"`
	SegmentSpecificStrengths      TextList          `json:"segment_specific_strengths"`
	SegmentSpecificRisks          TextList          `json:"segment_specific_risks"`
	AuditMetadata                 AuditMetadata     `json:"audit_metadata"`
}

type KYCProfile struct {
	LegalName          Text         `json:"legal_name"`
	TradeName          Text         `json:"trade_name"`
	Registration       Registration `json:"registration"`
	Segment            Text         `json:"segment"`
	BranchesCount      Number       `json:"branches_count"`
	AcquisitionChannel Text         `json:"acquisition_channel"`
	Relationship       Relationship `json:"relationship_with_silky"`
}

type Registration struct {
	CRNumber        Text   `json:"cr_number"`
	VATNumber       Text   `json:"vat_number"`
	Country         Text   `json:"country"`
	City            Text   `json:"city"`
	YearsInBusiness Number `json:"years_in_business"`
}

type Relationship struct {
	GoLiveDate       Text     `json:"go_live_date"`
	SubscriptionPlan Text     `json:"subscription_plan"`
	ModulesEnabled   TextList `json:"modules_enabled"`
	TenureMonths     Number   `json:"tenure_months"`
	PaymentBehaviour Text     `json:"silky_payment_behaviour"`
}

type BehaviourProfile struct {
	Activity        Activity              `json:"activity"`
	FeatureAdoption List[FeatureAdoption] `json:"feature_adoption"`
	Discipline      Discipline            `json:"discipline"`
	BehaviourRisks  TextList              `json:"behaviour_risks"`
}

type Activity struct {
	Status           Text   `json:"status"`
	ActiveDaysLast90 Number `json:"active_days_last_90"`
	LoginsLast90     Number `json:"logins_last_90"`
	ActiveUsers      Number `json:"active_users"`
	TotalUsers       Number `json:"total_users"`
}

type FeatureAdoption struct {
	Module     Text `json:"module"`
	UsageLevel Text `json:"usage_level"`
}

type Discipline struct {
	InvoiceMatchingRate   Number `json:"invoice_matching_rate"`
	StockUpdateFrequency  Text   `json:"stock_update_frequency"`
	DataCompletenessScore Number `json:"data_completeness_score"`
}

type FinancialHealth struct {
	Revenue       Revenue       `json:"revenue"`
	Profitability Profitability `json:"profitability_proxy"`
	Liquidity     Liquidity     `json:"liquidity"`
	Concentration Concentration `json:"concentration"`
	Seasonality   Seasonality   `json:"seasonality"`
}

type Revenue struct {
	AvgMonthlyRevenue Number             `json:"avg_monthly_revenue"`
	RevenueTrend      Text               `json:"revenue_trend"`
	GrowthRateYoY     Number             `json:"growth_rate_yoy"`
	GrowthRateMoM     Number             `json:"growth_rate_mom"`
	VolatilityScore   Number             `json:"revenue_volatility_score"`
	MonthlyRevenue    List[RevenueEntry] `json:"monthly_revenue"`
	RevenueHistory    List[RevenueEntry] `json:"revenue_history"`
}

// RevenueEntry is one month of explicit revenue history. The amount may be
// keyed as revenue, value or amount depending on the producer.
type RevenueEntry struct {
	Month   Text   `json:"month"`
	Revenue Number `json:"revenue"`
	Value   Number `json:"value"`
	Amount  Number `json:"amount"`
}

type Profitability struct {
	GrossMarginPercent Number `json:"gross_margin_percent"`
	Comment            Text   `json:"comment"`
}

type Liquidity struct {
	AvgDSODays              Number `json:"avg_dso_days"`
	AvgDPODays              Number `json:"avg_dpo_days"`
	CashConversionCycleDays Number `json:"cash_conversion_cycle_days"`
	OverdueInvoicesRatio    Number `json:"overdue_invoices_ratio"`
}

type Concentration struct {
	RevenueConcentrationComment Text   `json:"revenue_concentration_comment"`
	TopCustomerShare            Number `json:"top_customer_share"`
}

type Seasonality struct {
	HasStrongSeasonality Flag `json:"has_strong_seasonality"`
	SeasonalityComment   Text `json:"seasonality_comment"`
}

type CashflowForecast struct {
	BaseCase         CashflowScenario `json:"base_case"`
	ConservativeCase CashflowScenario `json:"conservative_case"`
	OptimisticCase   CashflowScenario `json:"optimistic_case"`
	ConfidenceLevel  Text             `json:"confidence_level"`
	KeyDrivers       TextList         `json:"key_drivers"`
}

type CashflowScenario struct {
	Currency                Text   `json:"currency"`
	NetCashFlowNext3Months  Number `json:"net_cash_flow_next_3_months"`
	NetCashFlowNext12Months Number `json:"net_cash_flow_next_12_months"`
}

type CreditAnalysis struct {
	CreditScore            Number           `json:"credit_score"`
	CreditBand             Text             `json:"credit_band"`
	RecommendedCreditLimit RecommendedLimit `json:"recommended_credit_limit"`
	MaxSafeTenorMonths     Number           `json:"max_safe_tenor_months"`
	ScoreExplanation       ScoreExplanation `json:"score_explanation"`
	DataQualityComment     Text             `json:"data_quality_comment"`
}

type RecommendedLimit struct {
	Amount       Number `json:"amount"`
	Currency     Text   `json:"currency"`
	LogicComment Text   `json:"logic_comment"`
}

type ScoreExplanation struct {
	PositiveDrivers TextList `json:"positive_drivers"`
	RiskFactors     TextList `json:"risk_factors"`
}

type CreditOffer struct {
	OfferID             Text   `json:"offer_id"`
	ProductType         Text   `json:"product_type"`
	Amount              Number `json:"amount"`
	Currency            Text   `json:"currency"`
	TenorMonths         Number `json:"tenor_months"`
	InterestRatePercent Number `json:"interest_rate_percent"`
	RiskTier            Text   `json:"risk_tier"`
}

type AuditMetadata struct {
	ModelVersion       Text `json:"model_version"`
	ModelProvider      Text `json:"model_provider"`
	InputDataDateRange Text `json:"input_data_date_range"`
	GeneratedAt        Text `json:"generated_at"`
}

// Package viewmodel turns raw dashboard payloads into display-ready views.
//
// Builders are total: any payload, including an empty one, yields a view in
// which every string holds a display value or format.Placeholder.
package viewmodel

import (
	"fmt"

	"creditboard/internal/dashboard/format"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/series"
)

// Empty-state messages for list sections.
const (
	EmptyPositiveDrivers  = "No positive drivers"
	EmptyRiskFactors      = "No risk factors"
	EmptyOffers           = "No offers yet"
	EmptyFlags            = "No flags detected"
	EmptyLenderNotes      = "No lender notes"
	EmptyMerchantActions  = "No actions logged"
	EmptySegmentStrengths = "No segment strengths"
	EmptySegmentRisks     = "No segment risks"
	NoBehaviourRisks      = "None"
)

const listSep = ", "

func KYC(p models.KYCProfile) models.KYCView {
	rel := p.Relationship
	return models.KYCView{
		TierChip:         format.Text(rel.SubscriptionPlan),
		LegalName:        format.Text(p.LegalName),
		TradeName:        format.Text(p.TradeName),
		Segment:          format.Text(p.Segment),
		City:             format.Text(p.Registration.City),
		Country:          format.Text(p.Registration.Country),
		CRNumber:         format.Text(p.Registration.CRNumber),
		YearsInBusiness:  format.Number(p.Registration.YearsInBusiness),
		Branches:         format.Number(p.BranchesCount),
		Modules:          format.Join(models.Values(rel.ModulesEnabled), listSep),
		SubscriptionPlan: format.Text(rel.SubscriptionPlan),
		TenureMonths:     format.Number(rel.TenureMonths),
		GoLiveDate:       format.Text(rel.GoLiveDate),
		PaymentBehaviour: format.Text(rel.PaymentBehaviour),
	}
}

func Behaviour(p models.BehaviourProfile) models.BehaviourView {
	act := p.Activity
	return models.BehaviourView{
		StatusChip:       format.Text(act.Status),
		Activity:         pair(act.ActiveDaysLast90, act.LoginsLast90, "%s active days, %s logins"),
		ActiveUsers:      pair(act.ActiveUsers, act.TotalUsers, "%s/%s"),
		FeatureAdoption:  format.Join(featureAdoption(p.FeatureAdoption), listSep),
		Risks:            format.JoinOr(models.Values(p.BehaviourRisks), listSep, NoBehaviourRisks),
		InvoiceMatching:  format.Ratio(p.Discipline.InvoiceMatchingRate),
		StockUpdates:     format.Text(p.Discipline.StockUpdateFrequency),
		DataCompleteness: format.Ratio(p.Discipline.DataCompletenessScore),
	}
}

// pair renders two related numbers with layout, or the placeholder when
// neither is known.
func pair(a, b models.Number, layout string) string {
	if !a.Valid && !b.Valid {
		return format.Placeholder
	}
	return fmt.Sprintf(layout, format.Number(a), format.Number(b))
}

func featureAdoption(features []models.FeatureAdoption) []string {
	out := make([]string, 0, len(features))
	for _, f := range features {
		switch {
		case f.Module.Valid && f.UsageLevel.Valid:
			out = append(out, fmt.Sprintf("%s (%s)", format.Text(f.Module), format.Text(f.UsageLevel)))
		case f.Module.Valid:
			out = append(out, format.Text(f.Module))
		case f.UsageLevel.Valid:
			out = append(out, fmt.Sprintf("%s (%s)", format.Placeholder, format.Text(f.UsageLevel)))
		}
	}
	return out
}

// Financials builds the financial health view together with its revenue
// series. Revenue amounts are shown in DefaultCurrency.
func Financials(p models.FinancialHealth) models.FinancialsView {
	rev := p.Revenue
	points, synthesized := series.Revenue(rev)
	return models.FinancialsView{
		AvgMonthlyRevenue:   format.Currency(rev.AvgMonthlyRevenue, models.DefaultCurrency),
		Trend:               format.Text(rev.RevenueTrend),
		GrowthMoM:           format.Ratio(rev.GrowthRateMoM),
		GrowthYoY:           format.Ratio(rev.GrowthRateYoY),
		Volatility:          format.Number(rev.VolatilityScore),
		Liquidity:           liquidity(p.Liquidity),
		CashConversionCycle: format.WithUnit(p.Liquidity.CashConversionCycleDays, "days"),
		OverdueInvoices:     format.Ratio(p.Liquidity.OverdueInvoicesRatio),
		Profitability:       profitability(p.Profitability),
		Concentration:       concentration(p.Concentration),
		Seasonality:         format.Text(p.Seasonality.SeasonalityComment),
		StrongSeasonality:   yesNo(p.Seasonality.HasStrongSeasonality),
		SeriesSynthesized:   synthesized,
		RevenueSeries:       points,
	}
}

func liquidity(l models.Liquidity) string {
	if !l.AvgDSODays.Valid && !l.AvgDPODays.Valid {
		return format.Placeholder
	}
	return fmt.Sprintf("DSO %s | DPO %s", format.Number(l.AvgDSODays), format.Number(l.AvgDPODays))
}

// profitability prefers the gross margin and falls back to the comment.
func profitability(p models.Profitability) string {
	if p.GrossMarginPercent.Valid {
		return format.Number(p.GrossMarginPercent) + "% GM"
	}
	return format.Text(p.Comment)
}

func concentration(c models.Concentration) string {
	var share string
	if c.TopCustomerShare.Valid {
		share = "top customer " + format.Ratio(c.TopCustomerShare)
	}
	return format.Join([]string{format.TextOr(c.RevenueConcentrationComment, ""), share}, " • ")
}

func yesNo(f models.Flag) string {
	switch {
	case !f.Valid:
		return format.Placeholder
	case f.Value:
		return "Yes"
	default:
		return "No"
	}
}

// Cashflow builds the forecast view and its fixed four-point comparison
// series. Each scenario is formatted in its own currency.
func Cashflow(f models.CashflowForecast) models.CashflowView {
	return models.CashflowView{
		Base:         scenario(f.BaseCase),
		Conservative: scenario(f.ConservativeCase),
		Optimistic:   scenario(f.OptimisticCase),
		Confidence:   format.Text(f.ConfidenceLevel),
		Drivers:      format.Join(models.Values(f.KeyDrivers), listSep),
		Series:       series.Cashflow(f),
	}
}

func scenario(s models.CashflowScenario) string {
	code := s.Currency.Or(models.DefaultCurrency)
	return fmt.Sprintf("%s (3m) • %s (12m)",
		format.Currency(s.NetCashFlowNext3Months, code),
		format.Currency(s.NetCashFlowNext12Months, code))
}

func Credit(c models.CreditAnalysis) models.CreditView {
	limit := models.NewMoney(c.RecommendedCreditLimit.Amount, c.RecommendedCreditLimit.Currency)
	score := format.Placeholder
	if c.CreditScore.Valid {
		score = format.Number(c.CreditScore) + " / 100"
	}
	return models.CreditView{
		Band:             format.Text(c.CreditBand),
		Score:            score,
		RecommendedLimit: format.Money(limit),
		Limit:            limit,
		LimitLogic:       format.Text(c.RecommendedCreditLimit.LogicComment),
		MaxTenor:         format.WithUnit(c.MaxSafeTenorMonths, "months"),
		DataQuality:      format.Text(c.DataQualityComment),
		PositiveDrivers:  labeled("Drivers", models.Values(c.ScoreExplanation.PositiveDrivers), EmptyPositiveDrivers),
		RiskFactors:      labeled("Risks", models.Values(c.ScoreExplanation.RiskFactors), EmptyRiskFactors),
	}
}

// Insights builds the lending insights from the top-level payload lists.
func Insights(p models.DashboardPayload) models.InsightsView {
	audit := p.AuditMetadata
	return models.InsightsView{
		Offers:                labeled("Available offers", offers(p.AvailableOffers), EmptyOffers),
		EarlyWarningFlags:     labeled("Early warning flags", models.Values(p.EarlyWarningFlags), EmptyFlags),
		LenderRecommendations: labeled("Recommendations for lender", models.Values(p.RecommendationsForLender), EmptyLenderNotes),
		MerchantActions:       labeled("Improvement actions", models.Values(p.ImprovementActionsForMerchant), EmptyMerchantActions),
		SegmentStrengths:      labeled("Segment strengths", models.Values(p.SegmentSpecificStrengths), EmptySegmentStrengths),
		SegmentRisks:          labeled("Segment risks", models.Values(p.SegmentSpecificRisks), EmptySegmentRisks),
		UsageMode:             format.Text(p.UsageMode),
		SubscriptionTier:      format.Text(p.SubscriptionTier),
		GeneratedBy: format.Join([]string{
			format.TextOr(audit.ModelProvider, ""),
			format.TextOr(audit.ModelVersion, ""),
		}, " / "),
		GeneratedAt: format.Text(audit.GeneratedAt),
	}
}

func labeled(label string, items []string, empty string) models.LabeledList {
	if items == nil {
		items = []string{}
	}
	return models.LabeledList{Label: label, Items: items, EmptyMessage: empty}
}

// offers renders "product: amount" with the optional terms in brackets,
// e.g. "working_capital: SAR 50,000.00 (12 mo, 9.5%, risk B)".
func offers(list []models.CreditOffer) []string {
	out := make([]string, 0, len(list))
	for _, o := range list {
		line := fmt.Sprintf("%s: %s",
			format.TextOr(o.ProductType, "Offer"),
			format.Money(models.NewMoney(o.Amount, o.Currency)))

		var terms []string
		if o.TenorMonths.Valid {
			terms = append(terms, format.WithUnit(o.TenorMonths, "mo"))
		}
		if o.InterestRatePercent.Valid {
			terms = append(terms, format.Percent(o.InterestRatePercent))
		}
		if o.RiskTier.Valid {
			terms = append(terms, "risk "+format.Text(o.RiskTier))
		}
		if len(terms) > 0 {
			line += " (" + format.Join(terms, listSep) + ")"
		}
		out = append(out, line)
	}
	return out
}

package viewmodel

import (
	"creditboard/internal/dashboard/format"
	"creditboard/internal/dashboard/models"
)

// Customer card defaults.
const (
	UnknownIndustry = "Unknown"
	DefaultPlan     = "standard"
	PendingScore    = "Pending"
)

// CustomerCard builds the list card for one customer. The card is active
// when it belongs to the selected customer.
func CustomerCard(c models.CustomerSummary, selected models.CustomerID) models.CustomerCard {
	card := models.CustomerCard{
		ID:       c.ID,
		Title:    CustomerTitle(c),
		Subtitle: format.TextOr(c.Industry, UnknownIndustry) + " • " + format.Text(c.City),
		Plan:     format.TextOr(c.SubscriptionPlan, DefaultPlan),
		Score:    PendingScore,
		Band:     format.Placeholder,
		Limit:    format.Placeholder,
		Tenor:    format.Placeholder,
		Active:   !selected.IsZero() && c.ID == selected,
	}
	if credit := c.LatestCredit; credit != nil {
		if credit.CreditScore.Valid {
			card.Score = format.Number(credit.CreditScore)
		}
		card.Band = format.Text(credit.CreditBand)
		card.Limit = format.Money(credit.RecommendedLimit())
		card.Tenor = format.WithUnit(credit.MaxSafeTenorMonths, "mo")
	}
	return card
}

// CustomerCards builds cards for the list in server order.
func CustomerCards(customers []models.CustomerSummary, selected models.CustomerID) []models.CustomerCard {
	cards := make([]models.CustomerCard, len(customers))
	for i, c := range customers {
		cards[i] = CustomerCard(c, selected)
	}
	return cards
}

// CustomerTitle is the display name: trade name, then legal name.
func CustomerTitle(c models.CustomerSummary) string {
	switch {
	case c.TradeName.Valid:
		return format.Text(c.TradeName)
	case c.LegalName.Valid:
		return format.Text(c.LegalName)
	case !c.ID.IsZero():
		return "Customer " + c.ID.String()
	default:
		return format.Placeholder
	}
}

// Snapshot normalizes a full dashboard payload for the requested customer.
func Snapshot(id models.CustomerID, p models.DashboardPayload) models.DashboardSnapshot {
	return models.DashboardSnapshot{
		CustomerID: id,
		KYC:        KYC(p.KYCProfile),
		Behaviour:  Behaviour(p.BehaviourProfile),
		Financials: Financials(p.FinancialHealth),
		Cashflow:   Cashflow(p.CashflowForecast),
		Credit:     Credit(p.CreditAnalysis),
		Insights:   Insights(p),
	}
}

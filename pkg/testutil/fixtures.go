package testutil

import (
	"creditboard/internal/dashboard/models"
)

// CustomerBuilder provides a fluent interface for building customer summaries.
type CustomerBuilder struct {
	c models.CustomerSummary
}

// NewCustomer starts a customer with an id and legal name.
func NewCustomer(id string) *CustomerBuilder {
	return &CustomerBuilder{c: models.CustomerSummary{
		ID:        models.CustomerID(id),
		LegalName: models.TextOf("Customer " + id + " LLC"),
	}}
}

func (b *CustomerBuilder) WithTradeName(name string) *CustomerBuilder {
	b.c.TradeName = models.TextOf(name)
	return b
}

func (b *CustomerBuilder) WithIndustry(industry, city string) *CustomerBuilder {
	b.c.Industry = models.TextOf(industry)
	b.c.City = models.TextOf(city)
	return b
}

// WithCredit attaches a latest credit snapshot in DefaultCurrency.
func (b *CustomerBuilder) WithCredit(score float64, band string, limit float64, tenor float64) *CustomerBuilder {
	b.c.LatestCredit = &models.CreditSnapshot{
		CreditScore:              models.NumberOf(score),
		CreditBand:               models.TextOf(band),
		RecommendedLimitAmount:   models.NumberOf(limit),
		RecommendedLimitCurrency: models.TextOf(models.DefaultCurrency),
		MaxSafeTenorMonths:       models.NumberOf(tenor),
	}
	return b
}

func (b *CustomerBuilder) Build() models.CustomerSummary {
	return b.c
}

// Customers builds plain customers for the given ids, in order.
func Customers(ids ...string) []models.CustomerSummary {
	out := make([]models.CustomerSummary, len(ids))
	for i, id := range ids {
		out[i] = NewCustomer(id).Build()
	}
	return out
}

// Payload returns a small dashboard payload whose legal name and average
// revenue identify the customer it was produced for.
func Payload(id string, avgRevenue float64) models.DashboardPayload {
	return models.DashboardPayload{
		CustomerID: models.CustomerID(id),
		KYCProfile: models.KYCProfile{
			LegalName: models.TextOf("Customer " + id + " LLC"),
		},
		FinancialHealth: models.FinancialHealth{
			Revenue: models.Revenue{AvgMonthlyRevenue: models.NumberOf(avgRevenue)},
		},
		CreditAnalysis: models.CreditAnalysis{
			CreditScore: models.NumberOf(70),
			CreditBand:  models.TextOf("B"),
		},
	}
}

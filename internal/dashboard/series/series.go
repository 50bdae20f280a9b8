// Package series derives chart-ready series from dashboard payloads.
//
// The revenue series follows a fixed policy: explicit monthly history wins
// when present, otherwise a six month trailing projection is synthesized
// from the summary statistics. Both paths are pure and deterministic.
package series

import (
	"fmt"
	"math"

	"creditboard/internal/dashboard/models"
)

const (
	// ProjectionPoints is the length of a synthesized revenue series.
	ProjectionPoints = 6
	// DefaultGrowthRate is the month-over-month growth used when none is
	// given. An explicit rate of 0 is kept and projects a flat line.
	DefaultGrowthRate = 0.02
	// projectionStart scales the average revenue to seed the projection.
	projectionStart = 0.9
)

// Cashflow comparison labels, in chart order.
const (
	LabelBase3m         = "Base 3m"
	LabelBase12m        = "Base 12m"
	LabelConservative3m = "Conservative 3m"
	LabelOptimistic3m   = "Optimistic 3m"
)

// Revenue returns the revenue series and whether it was synthesized.
// The result is never empty.
func Revenue(rev models.Revenue) (points []models.SeriesPoint, synthesized bool) {
	if history := History(rev); len(history) > 0 {
		return FromHistory(history), false
	}
	return Project(rev.AvgMonthlyRevenue, rev.GrowthRateMoM), true
}

// History returns the first non-empty explicit history: monthly_revenue,
// then revenue_history.
func History(rev models.Revenue) []models.RevenueEntry {
	if len(rev.MonthlyRevenue) > 0 {
		return rev.MonthlyRevenue
	}
	return rev.RevenueHistory
}

// FromHistory maps each history entry to a point, keeping input order.
// Missing month labels become M1, M2, ... by position; the value is the
// first present of revenue, value and amount, else zero.
func FromHistory(entries []models.RevenueEntry) []models.SeriesPoint {
	points := make([]models.SeriesPoint, len(entries))
	for i, e := range entries {
		label := fmt.Sprintf("M%d", i+1)
		if e.Month.Valid {
			label = e.Month.Value
		}
		points[i] = models.SeriesPoint{
			Label: label,
			Value: models.NumberOf(firstPresent(e.Revenue, e.Value, e.Amount)),
		}
	}
	return points
}

func firstPresent(candidates ...models.Number) float64 {
	for _, n := range candidates {
		if n.Valid {
			return n.Value
		}
	}
	return 0
}

// Project synthesizes ProjectionPoints trailing months labelled M-6..M-1,
// oldest first. It starts at 90% of avg (zero when absent) and compounds
// growth (DefaultGrowthRate when absent) once per month. Emitted values
// are clamped at zero; the compounding itself is not.
func Project(avg, growth models.Number) []models.SeriesPoint {
	rate := growth.Or(DefaultGrowthRate)
	current := avg.Or(0) * projectionStart

	points := make([]models.SeriesPoint, 0, ProjectionPoints)
	for i := 0; i < ProjectionPoints; i++ {
		current *= 1 + rate
		value := math.Max(current, 0)
		if math.IsInf(value, 1) {
			value = math.MaxFloat64
		}
		points = append(points, models.SeriesPoint{
			Label: fmt.Sprintf("M-%d", ProjectionPoints-i),
			Value: models.NumberOf(value),
		})
	}
	return points
}

// Cashflow returns the fixed four-point scenario comparison. Order never
// depends on the values; unknown figures stay absent.
func Cashflow(f models.CashflowForecast) []models.SeriesPoint {
	return []models.SeriesPoint{
		{Label: LabelBase3m, Value: f.BaseCase.NetCashFlowNext3Months},
		{Label: LabelBase12m, Value: f.BaseCase.NetCashFlowNext12Months},
		{Label: LabelConservative3m, Value: f.ConservativeCase.NetCashFlowNext3Months},
		{Label: LabelOptimistic3m, Value: f.OptimisticCase.NetCashFlowNext3Months},
	}
}

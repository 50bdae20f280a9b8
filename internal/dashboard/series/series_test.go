package series

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditboard/internal/dashboard/models"
)

func decodeRevenue(t *testing.T, body string) models.Revenue {
	t.Helper()
	var rev models.Revenue
	require.NoError(t, json.Unmarshal([]byte(body), &rev))
	return rev
}

func TestRevenue_ExplicitHistory(t *testing.T) {
	rev := decodeRevenue(t, `{
		"avg_monthly_revenue": 5000,
		"monthly_revenue": [
			{"month": "2025-01", "revenue": 1200.5},
			{"value": 900},
			{"month": "2025-03", "amount": 700},
			{"month": "2025-04"},
			{"month": "2025-05", "revenue": 0, "value": 50}
		]
	}`)

	points, synthesized := Revenue(rev)

	assert.False(t, synthesized)
	require.Len(t, points, 5)
	assert.Equal(t, "2025-01", points[0].Label)
	assert.Equal(t, 1200.5, points[0].Value.Value)
	assert.Equal(t, "M2", points[1].Label, "missing month label is synthesized from position")
	assert.Equal(t, 900.0, points[1].Value.Value)
	assert.Equal(t, 700.0, points[2].Value.Value)
	assert.True(t, points[3].Value.Valid)
	assert.Equal(t, 0.0, points[3].Value.Value, "entry without any amount defaults to zero")
	assert.Equal(t, 0.0, points[4].Value.Value, "a present zero revenue wins over later keys")
}

func TestRevenue_FallsBackToRevenueHistory(t *testing.T) {
	rev := decodeRevenue(t, `{
		"monthly_revenue": [],
		"revenue_history": [{"month": "Jan", "value": 10}, {"month": "Feb", "value": 20}]
	}`)

	points, synthesized := Revenue(rev)

	assert.False(t, synthesized)
	require.Len(t, points, 2)
	assert.Equal(t, "Jan", points[0].Label)
	assert.Equal(t, "Feb", points[1].Label)
}

func TestRevenue_MalformedHistoryEntriesKeepPosition(t *testing.T) {
	rev := decodeRevenue(t, `{"monthly_revenue": [42, {"month": "Feb", "revenue": "300"}, "x"]}`)

	points, _ := Revenue(rev)

	require.Len(t, points, 3)
	assert.Equal(t, "M1", points[0].Label)
	assert.Equal(t, 0.0, points[0].Value.Value)
	assert.Equal(t, 300.0, points[1].Value.Value, "numeric strings are coerced")
	assert.Equal(t, "M3", points[2].Label)
}

func TestRevenue_HistoryOrderPreserved(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 50; run++ {
		n := 1 + rng.Intn(24)
		entries := make([]models.RevenueEntry, n)
		for i := range entries {
			entries[i] = models.RevenueEntry{
				Month:   models.TextOf(fmt.Sprintf("m%02d", i)),
				Revenue: models.NumberOf(rng.Float64() * 1e6),
			}
		}

		points, synthesized := Revenue(models.Revenue{MonthlyRevenue: entries})

		require.False(t, synthesized)
		require.Len(t, points, n)
		for i, p := range points {
			assert.Equal(t, entries[i].Month.Value, p.Label)
			assert.Equal(t, entries[i].Revenue.Value, p.Value.Value)
		}
	}
}

func TestProject_Scenario(t *testing.T) {
	rev := decodeRevenue(t, `{"avg_monthly_revenue": 100000, "growth_rate_mom": 0.02}`)

	points, synthesized := Revenue(rev)

	assert.True(t, synthesized)
	require.Len(t, points, ProjectionPoints)
	assert.InDelta(t, 91800.0, points[0].Value.Value, 1e-6)
	for i := 1; i < len(points); i++ {
		assert.InDelta(t, points[i-1].Value.Value*1.02, points[i].Value.Value, 1e-6)
	}
	labels := make([]string, len(points))
	for i, p := range points {
		labels[i] = p.Label
	}
	assert.Equal(t, []string{"M-6", "M-5", "M-4", "M-3", "M-2", "M-1"}, labels)
}

func TestProject_Defaults(t *testing.T) {
	t.Run("absent growth uses two percent", func(t *testing.T) {
		points := Project(models.NumberOf(1000), models.Number{})
		assert.InDelta(t, 1000*0.9*1.02, points[0].Value.Value, 1e-9)
	})

	t.Run("explicit zero growth is kept", func(t *testing.T) {
		points := Project(models.NumberOf(1000), models.NumberOf(0))
		for _, p := range points {
			assert.InDelta(t, 900.0, p.Value.Value, 1e-9)
		}
	})

	t.Run("absent average yields a flat zero line", func(t *testing.T) {
		points := Project(models.Number{}, models.Number{})
		require.Len(t, points, ProjectionPoints)
		for _, p := range points {
			assert.True(t, p.Value.Valid)
			assert.Equal(t, 0.0, p.Value.Value)
		}
	})
}

func TestProject_TotalAndNonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for run := 0; run < 200; run++ {
		avg := models.NumberOf((rng.Float64() - 0.5) * 2e6)
		growth := models.NumberOf((rng.Float64() - 0.5) * 6)
		if run%5 == 0 {
			growth = models.Number{}
		}

		points := Project(avg, growth)

		require.Len(t, points, ProjectionPoints)
		for i, p := range points {
			assert.Equal(t, fmt.Sprintf("M-%d", ProjectionPoints-i), p.Label)
			require.True(t, p.Value.Valid)
			assert.GreaterOrEqual(t, p.Value.Value, 0.0)
		}
	}
}

func TestProject_Deterministic(t *testing.T) {
	avg := models.NumberOf(73250.25)
	growth := models.NumberOf(-0.013)
	assert.Equal(t, Project(avg, growth), Project(avg, growth))
}

func TestProject_HugeGrowthStaysFinite(t *testing.T) {
	points := Project(models.NumberOf(1e300), models.NumberOf(1e10))
	for _, p := range points {
		assert.True(t, p.Value.Valid)
	}
}

func TestCashflow_FixedOrderWithUnknowns(t *testing.T) {
	var forecast models.CashflowForecast
	require.NoError(t, json.Unmarshal([]byte(`{"base_case": {"net_cash_flow_next_3_months": 50000}}`), &forecast))

	points := Cashflow(forecast)

	require.Len(t, points, 4)
	assert.Equal(t, LabelBase3m, points[0].Label)
	assert.Equal(t, 50000.0, points[0].Value.Value)
	for i, label := range []string{LabelBase12m, LabelConservative3m, LabelOptimistic3m} {
		assert.Equal(t, label, points[i+1].Label)
		assert.False(t, points[i+1].Value.Valid)
	}
}

func TestCashflow_NotReorderedByValue(t *testing.T) {
	forecast := models.CashflowForecast{
		BaseCase:         models.CashflowScenario{NetCashFlowNext3Months: models.NumberOf(1), NetCashFlowNext12Months: models.NumberOf(4)},
		ConservativeCase: models.CashflowScenario{NetCashFlowNext3Months: models.NumberOf(-10)},
		OptimisticCase:   models.CashflowScenario{NetCashFlowNext3Months: models.NumberOf(99)},
	}

	points := Cashflow(forecast)

	assert.Equal(t, []float64{1, 4, -10, 99}, []float64{
		points[0].Value.Value, points[1].Value.Value, points[2].Value.Value, points[3].Value.Value,
	})
}

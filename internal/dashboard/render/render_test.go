package render

import (
	"bytes"
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/viewmodel"
	"creditboard/pkg/testutil"
)

func readyFrame(version uint64) models.Frame {
	snap := viewmodel.Snapshot("A", testutil.Payload("A", 100000))
	return models.Frame{
		Version:            version,
		Status:             "Dashboard ready for customer A",
		StatusTone:         "good",
		Phase:              "ready",
		SelectedCustomerID: "A",
		SelectedTitle:      "Customer A LLC",
		Customers:          viewmodel.CustomerCards(testutil.Customers("A", "B"), "A"),
		Query:              models.NewDashboardQuery(),
		Dashboard:          &snap,
		RevenueChart:       snap.Financials.RevenueSeries,
		CashflowChart:      snap.Cashflow.Series,
		CanGenerate:        true,
	}
}

func placeholderFrame(version uint64) models.Frame {
	return models.Frame{
		Version:         version,
		Phase:           "idle",
		Query:           models.NewDashboardQuery(),
		Customers:       []models.CustomerCard{},
		ShowPlaceholder: true,
	}
}

func TestFrameStore(t *testing.T) {
	s := NewFrameStore()
	_, ok := s.Latest()
	assert.False(t, ok)

	changed := s.Changed()
	s.Render(context.Background(), placeholderFrame(3))
	select {
	case <-changed:
	default:
		t.Fatal("Changed should fire on an accepted frame")
	}

	t.Run("older frames are dropped", func(t *testing.T) {
		s.Render(context.Background(), readyFrame(2))
		f, ok := s.Latest()
		require.True(t, ok)
		assert.Equal(t, uint64(3), f.Version)
		assert.Nil(t, f.Dashboard)
	})

	t.Run("newer frames replace", func(t *testing.T) {
		s.Render(context.Background(), readyFrame(5))
		f, _ := s.Latest()
		assert.Equal(t, uint64(5), f.Version)
		assert.NotNil(t, f.Dashboard)
	})
}

func TestTerminalRendersDashboard(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.Render(context.Background(), readyFrame(1))

	text := out.String()
	assert.Contains(t, text, "[ok] Dashboard ready for customer A")
	assert.Contains(t, text, " > A    Customer A LLC")
	assert.Contains(t, text, "Revenue trend")
	assert.Contains(t, text, "M-1")
	assert.Contains(t, text, "Cashflow scenarios")
	assert.Contains(t, text, "No positive drivers")
	assert.NotContains(t, text, PlaceholderText)
}

func TestTerminalPlaceholderAndError(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	f := placeholderFrame(1)
	f.ShowError = true
	f.Status = "Dashboard generation failed"
	f.StatusTone = "warn"
	term.Render(context.Background(), f)

	text := out.String()
	assert.Contains(t, text, "[!!] Dashboard generation failed")
	assert.Contains(t, text, "! Dashboard generation failed.")
	assert.Contains(t, text, PlaceholderText)
	assert.Contains(t, text, "(none loaded)")
}

func TestTerminalReleasesChartsOnReplace(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	term := NewTerminal(&bytes.Buffer{}, WithMetrics(m))
	live := func() float64 { return promtest.ToFloat64(m.LiveChartResources) }

	term.Render(context.Background(), readyFrame(1))
	assert.Equal(t, 2.0, live())

	term.Render(context.Background(), readyFrame(2))
	assert.Equal(t, 2.0, live(), "previous charts released before new ones are drawn")

	term.Render(context.Background(), placeholderFrame(3))
	assert.Equal(t, 0.0, live())

	term.Render(context.Background(), readyFrame(4))
	require.NoError(t, term.Close())
	assert.Equal(t, 0.0, live())
}

func TestTerminalDropsOutOfOrderFrames(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.Render(context.Background(), readyFrame(5))
	out.Reset()
	term.Render(context.Background(), placeholderFrame(4))

	assert.Empty(t, out.String())
}

func TestDrawBars(t *testing.T) {
	lines := drawBars([]models.SeriesPoint{
		{Label: "Base 3m", Value: models.NumberOf(100)},
		{Label: "Base 12m", Value: models.Number{}},
		{Label: "Cons 3m", Value: models.NumberOf(-50)},
	})

	require.Len(t, lines, 3)
	assert.Equal(t, "  Base 3m  | "+repeat("#", barWidth)+" 100", lines[0])
	assert.Equal(t, "  Base 12m | —", lines[1])
	assert.Equal(t, "  Cons 3m  | "+repeat("-", barWidth/2)+" -50", lines[2])
}

func repeat(s string, n int) string {
	out := ""
	for range n {
		out += s
	}
	return out
}

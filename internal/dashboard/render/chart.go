package render

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"creditboard/internal/dashboard/format"
	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/models"
)

const barWidth = 40

// chart is one drawn chart. It is a live resource from newChart until
// release and must be released before it is replaced.
type chart struct {
	title    string
	lines    []string
	metrics  *metrics.Metrics
	released bool
}

func newChart(title string, points []models.SeriesPoint, m *metrics.Metrics) *chart {
	m.ChartAcquired()
	return &chart{title: title, lines: drawBars(points), metrics: m}
}

func (c *chart) release() {
	if c == nil || c.released {
		return
	}
	c.released = true
	c.metrics.ChartReleased()
}

func (c *chart) String() string {
	return c.title + "\n" + strings.Join(c.lines, "\n")
}

// drawBars draws one horizontal bar per point, scaled to the largest
// magnitude. Negative values grow with '-' and absent values leave a gap.
func drawBars(points []models.SeriesPoint) []string {
	labelWidth := 0
	peak := 0.0
	for _, p := range points {
		labelWidth = max(labelWidth, len([]rune(p.Label)))
		if p.Value.Valid {
			peak = math.Max(peak, math.Abs(p.Value.Value))
		}
	}

	lines := make([]string, 0, len(points))
	for _, p := range points {
		label := p.Label + strings.Repeat(" ", labelWidth-len([]rune(p.Label)))
		if !p.Value.Valid {
			lines = append(lines, "  "+label+" | "+format.Placeholder)
			continue
		}
		n := 0
		if peak > 0 {
			n = int(math.Round(math.Abs(p.Value.Value) / peak * barWidth))
		}
		mark := "#"
		if p.Value.Value < 0 {
			mark = "-"
		}
		lines = append(lines, "  "+label+" | "+strings.Repeat(mark, n)+" "+chartValue(p.Value))
	}
	return lines
}

func chartValue(n models.Number) string {
	return decimal.NewFromFloat(n.Value).Round(0).String()
}

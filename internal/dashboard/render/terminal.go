package render

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"creditboard/internal/dashboard/format"
	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/ports"
	"creditboard/internal/dashboard/session"
)

// PlaceholderText is shown instead of the dashboard when there is nothing
// to display for the selection.
const PlaceholderText = "Select a customer and generate a dashboard to see the credit profile."

var _ ports.RenderSink = (*Terminal)(nil)

// Terminal writes each frame as plain text. The revenue and cashflow
// charts are replaced on every render; the previous pair is released first.
type Terminal struct {
	mu       sync.Mutex
	out      io.Writer
	metrics  *metrics.Metrics
	version  uint64
	revenue  *chart
	cashflow *chart
}

// TerminalOption configures the Terminal.
type TerminalOption func(*Terminal)

func WithMetrics(m *metrics.Metrics) TerminalOption {
	return func(t *Terminal) {
		t.metrics = m
	}
}

func NewTerminal(out io.Writer, opts ...TerminalOption) *Terminal {
	t := &Terminal{out: out}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Terminal) Render(_ context.Context, f models.Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.version != 0 && f.Version < t.version {
		return
	}
	t.version = f.Version

	t.revenue.release()
	t.cashflow.release()
	t.revenue, t.cashflow = nil, nil
	if f.Dashboard != nil {
		t.revenue = newChart("Revenue trend", f.RevenueChart, t.metrics)
		t.cashflow = newChart("Cashflow scenarios", f.CashflowChart, t.metrics)
	}

	var b strings.Builder
	t.write(&b, f)
	_, _ = io.WriteString(t.out, b.String())
}

// Close releases the charts still on screen.
func (t *Terminal) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.revenue.release()
	t.cashflow.release()
	t.revenue, t.cashflow = nil, nil
	return nil
}

func (t *Terminal) write(b *strings.Builder, f models.Frame) {
	fmt.Fprintf(b, "\n== creditboard %s\n", strings.Repeat("=", 50))
	fmt.Fprintf(b, "[%s] %s\n", toneMark(f.StatusTone), format.Or(f.Status))
	fmt.Fprintf(b, "viewer=%s tier=%s lender=%s\n",
		f.Query.ViewerType, format.Or(f.Query.SubscriptionTier), format.Or(f.Query.LenderID))

	b.WriteString("\nCustomers\n")
	if len(f.Customers) == 0 {
		b.WriteString("  (none loaded)\n")
	}
	for _, c := range f.Customers {
		marker := " "
		if c.Active {
			marker = ">"
		}
		fmt.Fprintf(b, " %s %-4s %s (%s) [%s]  score %s  band %s  limit %s  tenor %s\n",
			marker, c.ID, c.Title, c.Subtitle, c.Plan, c.Score, c.Band, c.Limit, c.Tenor)
	}

	if !f.SelectedCustomerID.IsZero() {
		fmt.Fprintf(b, "\nSelected: %s\n", f.SelectedTitle)
	}
	if f.ShowLoading {
		b.WriteString("Loading dashboard…\n")
	}
	if f.ShowError {
		b.WriteString("! Dashboard generation failed. Showing the last good data, if any.\n")
	}
	if f.ShowPlaceholder {
		if !f.ShowLoading {
			fmt.Fprintf(b, "\n%s\n", PlaceholderText)
		}
		return
	}

	d := f.Dashboard
	section(b, "KYC ["+d.KYC.TierChip+"]", d.KYC.Details())
	section(b, "Behaviour ["+d.Behaviour.StatusChip+"]", d.Behaviour.Details())
	section(b, "Financial health", d.Financials.Details())
	if t.revenue != nil {
		b.WriteString(t.revenue.String() + "\n")
	}
	section(b, "Cashflow forecast", d.Cashflow.Details())
	if t.cashflow != nil {
		b.WriteString(t.cashflow.String() + "\n")
	}
	section(b, "Credit ["+d.Credit.Band+"]", d.Credit.Details())
	list(b, d.Credit.PositiveDrivers)
	list(b, d.Credit.RiskFactors)

	b.WriteString("\nInsights\n")
	for _, l := range d.Insights.Lists() {
		list(b, l)
	}
	fmt.Fprintf(b, "  Usage mode: %s  Tier: %s\n", d.Insights.UsageMode, d.Insights.SubscriptionTier)
	fmt.Fprintf(b, "  Generated by %s at %s\n", d.Insights.GeneratedBy, d.Insights.GeneratedAt)
}

func section(b *strings.Builder, title string, details []models.Detail) {
	fmt.Fprintf(b, "\n%s\n", title)
	width := 0
	for _, d := range details {
		width = max(width, len([]rune(d.Label)))
	}
	for _, d := range details {
		fmt.Fprintf(b, "  %s%s  %s\n", d.Label, strings.Repeat(" ", width-len([]rune(d.Label))), d.Value)
	}
}

func list(b *strings.Builder, l models.LabeledList) {
	fmt.Fprintf(b, "  %s:\n", l.Label)
	for _, line := range l.Lines() {
		fmt.Fprintf(b, "    - %s\n", line)
	}
}

func toneMark(tone string) string {
	switch tone {
	case string(session.ToneGood):
		return "ok"
	case string(session.ToneWarn):
		return "!!"
	default:
		return ".."
	}
}

package models

// Frame is everything a render sink needs to draw one state of the
// dashboard. Frames are immutable once built.
type Frame struct {
	// Version orders frames built from the same session; sinks drop frames
	// older than the one they already hold.
	Version uint64 `json:"version"`

	Status     string `json:"status"`
	StatusTone string `json:"status_tone"`
	Phase      string `json:"phase"`

	SelectedCustomerID CustomerID     `json:"selected_customer_id,omitempty"`
	SelectedTitle      string         `json:"selected_title"`
	Customers          []CustomerCard `json:"customers"`
	Query              DashboardQuery `json:"query"`

	// Dashboard is set only when the last good snapshot belongs to the
	// selected customer.
	Dashboard     *DashboardSnapshot `json:"dashboard,omitempty"`
	RevenueChart  []SeriesPoint      `json:"revenue_chart,omitempty"`
	CashflowChart []SeriesPoint      `json:"cashflow_chart,omitempty"`

	ShowPlaceholder bool `json:"show_placeholder"`
	ShowLoading     bool `json:"show_loading"`
	ShowError       bool `json:"show_error"`
	CanGenerate     bool `json:"can_generate"`
}

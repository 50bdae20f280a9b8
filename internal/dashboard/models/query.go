package models

import (
	"fmt"
	"net/url"
	"strings"
)

// ViewerType selects the audience a dashboard is generated for.
type ViewerType string

const (
	ViewerSilkyInternal ViewerType = "silky_internal"
	ViewerBankPartner   ViewerType = "bank_partner"
	ViewerMerchant      ViewerType = "merchant"
)

// DefaultViewerType is sent when no viewer has been chosen.
const DefaultViewerType = ViewerSilkyInternal

func (v ViewerType) IsValid() bool {
	return v == ViewerSilkyInternal || v == ViewerBankPartner || v == ViewerMerchant
}

func (v ViewerType) String() string {
	return string(v)
}

// FilterField names one of the dashboard request filters.
type FilterField string

const (
	FilterViewerType       FilterField = "viewer_type"
	FilterSubscriptionTier FilterField = "subscription_tier"
	FilterLenderID         FilterField = "lender_id"
)

func (f FilterField) IsValid() bool {
	return f == FilterViewerType || f == FilterSubscriptionTier || f == FilterLenderID
}

// DashboardQuery is the filter state sent with every dashboard request.
type DashboardQuery struct {
	ViewerType       ViewerType `json:"viewer_type"`
	SubscriptionTier string     `json:"subscription_tier,omitempty"`
	LenderID         string     `json:"lender_id,omitempty"`
}

// NewDashboardQuery returns a query with the default viewer and no optional filters.
func NewDashboardQuery() DashboardQuery {
	return DashboardQuery{ViewerType: DefaultViewerType}
}

// Normalize trims all filters and restores the default viewer when blank.
func (q DashboardQuery) Normalize() DashboardQuery {
	q.ViewerType = ViewerType(strings.TrimSpace(string(q.ViewerType)))
	if q.ViewerType == "" {
		q.ViewerType = DefaultViewerType
	}
	q.SubscriptionTier = strings.TrimSpace(q.SubscriptionTier)
	q.LenderID = strings.TrimSpace(q.LenderID)
	return q
}

// With returns a copy of q with one filter replaced.
func (q DashboardQuery) With(field FilterField, value string) (DashboardQuery, error) {
	value = strings.TrimSpace(value)
	switch field {
	case FilterViewerType:
		viewer := ViewerType(value)
		if viewer == "" {
			viewer = DefaultViewerType
		}
		if !viewer.IsValid() {
			return q, fmt.Errorf("unsupported viewer type %q", value)
		}
		q.ViewerType = viewer
	case FilterSubscriptionTier:
		q.SubscriptionTier = value
	case FilterLenderID:
		q.LenderID = value
	default:
		return q, fmt.Errorf("unknown filter %q", field)
	}
	return q.Normalize(), nil
}

// Values encodes the query for the dashboard endpoint. viewer_type is
// always present; blank optional filters are left out entirely.
func (q DashboardQuery) Values() url.Values {
	q = q.Normalize()
	v := url.Values{}
	v.Set(string(FilterViewerType), string(q.ViewerType))
	if q.SubscriptionTier != "" {
		v.Set(string(FilterSubscriptionTier), q.SubscriptionTier)
	}
	if q.LenderID != "" {
		v.Set(string(FilterLenderID), q.LenderID)
	}
	return v
}

// Package ports defines the collaborators the dashboard orchestrator drives.
package ports

import (
	"context"

	"creditboard/internal/dashboard/models"
)

// DataSource loads raw customer and dashboard payloads. Network failures
// and non-success statuses are both reported as errors.
type DataSource interface {
	ListCustomers(ctx context.Context) ([]models.CustomerSummary, error)
	FetchDashboard(ctx context.Context, id models.CustomerID, query models.DashboardQuery) (models.DashboardPayload, error)
}

// RenderSink draws frames. Render must not block on slow consumers.
type RenderSink interface {
	Render(ctx context.Context, frame models.Frame)
}

// Package backend is the HTTP data source for the credit backend.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/ports"
	"creditboard/internal/dashboard/tracer"
	"creditboard/pkg/platform/circuit"
	"creditboard/pkg/requestcontext"
)

const (
	customersPath = "/api/customers"
	dashboardPath = "/api/credit-dashboard/"

	// maxResponseBytes bounds a single backend response body.
	maxResponseBytes = 8 << 20
)

var _ ports.DataSource = (*Client)(nil)

// HTTPDoer is the minimal interface needed from an HTTP client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.DataSource over the backend's JSON API.
//
// Concurrent customer-list requests share one upstream call. A circuit
// breaker rejects calls while the backend is failing.
type Client struct {
	baseURL string
	timeout time.Duration
	http    HTTPDoer
	breaker *circuit.Breaker
	tracer  tracer.Tracer
	logger  *slog.Logger
	group   singleflight.Group
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		c.http = doer
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: 15 * time.Second,
		tracer:  tracer.NewNoop(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		// The instrumented transport propagates trace context to the backend.
		c.http = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if c.breaker == nil {
		c.breaker = circuit.New("credit-backend")
	}
	return c
}

// ListCustomers fetches the customer list in server order.
func (c *Client) ListCustomers(ctx context.Context) (customers []models.CustomerSummary, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanBackendCustomers)
	defer func() { span.End(err) }()

	// The shared call must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(customersPath, func() (any, error) {
		var list []models.CustomerSummary
		if err := c.getJSON(shared, span, customersPath, nil, &list); err != nil {
			return nil, err
		}
		return list, nil
	})

	select {
	case <-ctx.Done():
		return nil, newUpstreamError(ErrorInternal, customersPath, "request canceled", ctx.Err())
	case res := <-ch:
		span.SetAttributes(tracer.Bool(tracer.AttrShared, res.Shared))
		if res.Err != nil {
			return nil, res.Err
		}
		list, _ := res.Val.([]models.CustomerSummary)
		span.SetAttributes(tracer.Int64(tracer.AttrCustomerCount, int64(len(list))))
		return slices.Clone(list), nil
	}
}

// FetchDashboard fetches the raw dashboard for one customer. Only the
// non-blank filters of query are sent.
func (c *Client) FetchDashboard(ctx context.Context, id models.CustomerID, query models.DashboardQuery) (payload models.DashboardPayload, err error) {
	ctx, span := c.tracer.Start(ctx, tracer.SpanBackendDashboard,
		tracer.String(tracer.AttrCustomerID, id.String()),
		tracer.String(tracer.AttrViewerType, query.Normalize().ViewerType.String()),
	)
	defer func() { span.End(err) }()

	if id.IsZero() {
		return payload, newUpstreamError(ErrorInternal, dashboardPath, "missing customer id", nil)
	}
	err = c.getJSON(ctx, span, dashboardPath+url.PathEscape(id.String()), query.Normalize().Values(), &payload)
	if err == nil {
		// A generation may have written a new credit snapshot; customer
		// lists requested from now on must not join an older flight.
		c.group.Forget(customersPath)
	}
	return payload, err
}

func (c *Client) getJSON(ctx context.Context, span tracer.Span, path string, params url.Values, out any) error {
	if !c.breaker.Allow() {
		span.AddEvent(tracer.EventBreakerOpen)
		return newUpstreamError(ErrorCircuitOpen, path, "circuit open", nil)
	}

	body, status, err := c.get(ctx, path, params)
	if status != 0 {
		span.SetAttributes(tracer.Int64(tracer.AttrHTTPStatus, int64(status)))
	}
	if err != nil {
		var ue *UpstreamError
		if errors.As(err, &ue) && ue.countsAsFailure() {
			if change := c.breaker.RecordFailure(); change.Opened {
				c.logger.WarnContext(ctx, "credit backend circuit opened", "path", path, "error", err)
			}
		}
		return err
	}
	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "credit backend circuit closed", "path", path)
	}

	if err := json.Unmarshal(body, out); err != nil {
		// A mistyped field leaves its zero value behind; everything else in
		// the document is still decoded.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || typeErr.Field == "" {
			return newUpstreamError(ErrorBadData, path, "invalid JSON", err)
		}
		c.logger.WarnContext(ctx, "ignored mistyped backend field",
			"path", path,
			"field", typeErr.Field,
			"error", err,
		)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	target := c.baseURL + path
	if len(params) > 0 {
		target += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, newUpstreamError(ErrorInternal, path, "failed to create request", err)
	}
	req.Header.Set("Accept", "application/json")
	if id := requestcontext.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, classifyTransportError(ctx, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, resp.StatusCode, newUpstreamError(ErrorOutage, path, "failed to read response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		category := ErrorBadStatus
		if resp.StatusCode == http.StatusNotFound {
			category = ErrorNotFound
		}
		ue := newUpstreamError(category, path, statusMessage(resp.StatusCode, body), nil)
		ue.StatusCode = resp.StatusCode
		return nil, resp.StatusCode, ue
	}
	return body, resp.StatusCode, nil
}

func classifyTransportError(ctx context.Context, path string, err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return newUpstreamError(ErrorTimeout, path, "request timeout", err)
	case ctx.Err() != nil:
		return newUpstreamError(ErrorInternal, path, "request canceled", err)
	default:
		return newUpstreamError(ErrorOutage, path, "failed to execute request", err)
	}
}

// statusMessage prefers the backend's own error detail when it sends one.
func statusMessage(status int, body []byte) string {
	var detail struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &detail) == nil {
		if s, ok := detail.Detail.(string); ok && s != "" {
			return fmt.Sprintf("status %d: %s", status, s)
		}
	}
	return fmt.Sprintf("status %d", status)
}

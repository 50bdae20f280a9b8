package orchestrator

//go:generate mockgen -source=../ports/ports.go -destination=../ports/mocks/ports_mock.go -package=mocks DataSource,RenderSink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"creditboard/internal/dashboard/metrics"
	"creditboard/internal/dashboard/models"
	"creditboard/internal/dashboard/ports/mocks"
	"creditboard/internal/dashboard/session"
	dErrors "creditboard/pkg/domain-errors"
	"creditboard/pkg/testutil"
)

type OrchestratorSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	source  *mocks.MockDataSource
	sink    *mocks.MockRenderSink
	metrics *metrics.Metrics
	orch    *Orchestrator

	mu     sync.Mutex
	frames []models.Frame
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func (s *OrchestratorSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.source = mocks.NewMockDataSource(s.ctrl)
	s.sink = mocks.NewMockRenderSink(s.ctrl)
	s.metrics = metrics.New(prometheus.NewRegistry())
	s.frames = nil

	s.sink.EXPECT().Render(gomock.Any(), gomock.Any()).Do(func(_ context.Context, f models.Frame) {
		s.mu.Lock()
		s.frames = append(s.frames, f)
		s.mu.Unlock()
	}).AnyTimes()

	s.orch = New(s.source, s.sink, WithMetrics(s.metrics), WithSessionID("test-session"))
}

func (s *OrchestratorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *OrchestratorSuite) rendered() []models.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Frame(nil), s.frames...)
}

func (s *OrchestratorSuite) expectDashboard(id string, avg float64) *gomock.Call {
	return s.source.EXPECT().
		FetchDashboard(gomock.Any(), models.CustomerID(id), gomock.Any()).
		Return(testutil.Payload(id, avg), nil)
}

func (s *OrchestratorSuite) TestSelectCustomer() {
	s.Run("renders loading then ready and refreshes customers", func() {
		s.expectDashboard("A", 100000)
		s.source.EXPECT().ListCustomers(gomock.Any()).Return(testutil.Customers("A", "B"), nil)

		s.orch.SelectCustomer(context.Background(), "A")

		frames := s.rendered()
		s.Require().NotEmpty(frames)
		first := frames[0]
		s.True(first.ShowLoading)
		s.True(first.ShowPlaceholder)
		s.False(first.CanGenerate)

		last := s.orch.Frame()
		s.Equal(session.PhaseReady.String(), last.Phase)
		s.Equal("Dashboard ready for customer A", last.Status)
		s.Equal(string(session.ToneGood), last.StatusTone)
		s.Require().NotNil(last.Dashboard)
		s.Equal("Customer A LLC", last.Dashboard.KYC.LegalName)
		s.Len(last.RevenueChart, 6)
		s.Len(last.CashflowChart, 4)
		s.False(last.ShowPlaceholder)
		s.True(last.CanGenerate)
		s.Len(last.Customers, 2)
		s.True(last.Customers[0].Active)
		s.False(last.Customers[1].Active)
		s.Equal("Customer A LLC", last.SelectedTitle)
	})
}

func (s *OrchestratorSuite) TestSelectSendsCurrentQuery() {
	s.Require().NoError(s.orch.ChangeFilter(context.Background(), models.FilterSubscriptionTier, "gold"))

	want := models.NewDashboardQuery()
	want.SubscriptionTier = "gold"
	s.source.EXPECT().FetchDashboard(gomock.Any(), models.CustomerID("A"), want).
		Return(testutil.Payload("A", 1), nil)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)

	s.orch.SelectCustomer(context.Background(), "A")
}

// An HTTP failure after a good load keeps the earlier snapshot on screen
// and raises the error indicator.
func (s *OrchestratorSuite) TestFailureKeepsPriorSnapshot() {
	ctx := context.Background()
	s.expectDashboard("A", 100000)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(testutil.Customers("A"), nil)
	s.orch.SelectCustomer(ctx, "A")

	upstream := dErrors.New(dErrors.CodeUpstreamUnavailable, "status 500")
	s.source.EXPECT().FetchDashboard(gomock.Any(), models.CustomerID("A"), gomock.Any()).
		Return(models.DashboardPayload{}, upstream)

	s.True(s.orch.Generate(ctx))

	f := s.orch.Frame()
	s.Equal(session.PhaseError.String(), f.Phase)
	s.True(f.ShowError)
	s.Equal(StatusDashboardFailed, f.Status)
	s.Equal(string(session.ToneWarn), f.StatusTone)
	s.Require().NotNil(f.Dashboard)
	s.Equal("Customer A LLC", f.Dashboard.KYC.LegalName)
	s.True(f.CanGenerate)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.DashboardFetchesTotal.WithLabelValues(metrics.OutcomeFailure)))
}

func (s *OrchestratorSuite) TestFailureForNewSelectionShowsPlaceholder() {
	ctx := context.Background()
	s.expectDashboard("A", 100000)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)
	s.orch.SelectCustomer(ctx, "A")

	s.source.EXPECT().FetchDashboard(gomock.Any(), models.CustomerID("B"), gomock.Any()).
		Return(models.DashboardPayload{}, errors.New("connection refused"))
	s.orch.SelectCustomer(ctx, "B")

	f := s.orch.Frame()
	s.True(f.ShowError)
	s.True(f.ShowPlaceholder)
	s.Nil(f.Dashboard)
	s.Empty(f.RevenueChart)
}

// A slow response for A arriving after B was selected must not replace
// B's dashboard.
func (s *OrchestratorSuite) TestLateResponseIsDiscarded() {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	s.source.EXPECT().FetchDashboard(gomock.Any(), models.CustomerID("A"), gomock.Any()).
		DoAndReturn(func(context.Context, models.CustomerID, models.DashboardQuery) (models.DashboardPayload, error) {
			close(started)
			<-release
			return testutil.Payload("A", 1), nil
		})
	s.expectDashboard("B", 2)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(testutil.Customers("A", "B"), nil).Times(1)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.orch.SelectCustomer(ctx, "A")
	}()
	<-started

	s.orch.SelectCustomer(ctx, "B")
	close(release)
	<-done

	f := s.orch.Frame()
	s.Equal(models.CustomerID("B"), f.SelectedCustomerID)
	s.Equal(session.PhaseReady.String(), f.Phase)
	s.Require().NotNil(f.Dashboard)
	s.Equal(models.CustomerID("B"), f.Dashboard.CustomerID)
	s.Equal("Customer B LLC", f.Dashboard.KYC.LegalName)
	s.Equal("Dashboard ready for customer B", f.Status)
	s.Equal(1.0, promtest.ToFloat64(s.metrics.StaleResponsesTotal))
}

func (s *OrchestratorSuite) TestConcurrentSelectionsShowOnlySelectedCustomer() {
	s.source.EXPECT().FetchDashboard(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, id models.CustomerID, _ models.DashboardQuery) (models.DashboardPayload, error) {
			return testutil.Payload(id.String(), 1), nil
		}).AnyTimes()
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil).AnyTimes()

	out := testutil.RunConcurrent(20, func(i int) error {
		s.orch.SelectCustomer(context.Background(), models.CustomerID(fmt.Sprintf("C%d", i%5)))
		return nil
	})
	s.Equal(20, out.Succeeded)

	f := s.orch.Frame()
	s.Equal(session.PhaseReady.String(), f.Phase)
	s.Require().NotNil(f.Dashboard)
	s.Equal(f.SelectedCustomerID, f.Dashboard.CustomerID)
	s.Equal("Customer "+f.SelectedCustomerID.String()+" LLC", f.Dashboard.KYC.LegalName)
}

func (s *OrchestratorSuite) TestConcurrentFilterChangesRejectOnlyInvalidValues() {
	out := testutil.RunConcurrent(10, func(i int) error {
		viewer := "merchant"
		if i%2 == 1 {
			viewer = "auditor"
		}
		return s.orch.ChangeFilter(context.Background(), models.FilterViewerType, viewer)
	})

	s.Equal(5, out.Succeeded)
	s.Equal(5, out.Count(dErrors.CodeValidation))
	s.Equal(10, out.Total())
	s.Equal(models.ViewerMerchant, s.orch.Frame().Query.ViewerType)
}

func (s *OrchestratorSuite) TestChangeFilter() {
	ctx := context.Background()

	s.Run("without selection only updates the query", func() {
		s.Require().NoError(s.orch.ChangeFilter(ctx, models.FilterLenderID, "L-7"))
		f := s.orch.Frame()
		s.Equal("L-7", f.Query.LenderID)
		s.Equal(session.PhaseIdle.String(), f.Phase)
		s.True(f.ShowPlaceholder)
	})

	s.Run("invalid value is a validation error", func() {
		err := s.orch.ChangeFilter(ctx, models.FilterViewerType, "nobody")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("with selection reloads using the new filter", func() {
		s.expectDashboard("A", 1)
		s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)
		s.orch.SelectCustomer(ctx, "A")

		want := models.NewDashboardQuery()
		want.LenderID = "L-7"
		want.ViewerType = models.ViewerBankPartner
		s.source.EXPECT().FetchDashboard(gomock.Any(), models.CustomerID("A"), want).
			Return(testutil.Payload("A", 2), nil)
		s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)

		s.Require().NoError(s.orch.ChangeFilter(ctx, models.FilterViewerType, "bank_partner"))
		s.Equal(session.PhaseReady.String(), s.orch.Frame().Phase)
	})
}

func (s *OrchestratorSuite) TestGenerateWithoutSelection() {
	s.False(s.orch.Generate(context.Background()))
	s.Equal(session.PhaseIdle.String(), s.orch.Frame().Phase)
}

func (s *OrchestratorSuite) TestRefreshCustomers() {
	ctx := context.Background()

	s.Run("success reports the count", func() {
		s.source.EXPECT().ListCustomers(gomock.Any()).Return(testutil.Customers("1", "2", "2"), nil)
		s.orch.RefreshCustomers(ctx)

		frames := s.rendered()
		s.Equal(StatusLoadingCustomers, frames[0].Status)
		f := s.orch.Frame()
		s.Equal("Loaded 2 customers", f.Status)
		s.Equal(string(session.ToneGood), f.StatusTone)
		s.Len(f.Customers, 2)
		s.Equal(1.0, promtest.ToFloat64(s.metrics.DuplicateCustomersTotal))
	})

	s.Run("failure keeps the previous list", func() {
		s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, errors.New("status 503"))
		s.orch.RefreshCustomers(ctx)

		f := s.orch.Frame()
		s.Equal(StatusCustomersFailed, f.Status)
		s.Equal(string(session.ToneWarn), f.StatusTone)
		s.Len(f.Customers, 2)
	})
}

func (s *OrchestratorSuite) TestSyncCustomersLeavesStatusAlone() {
	ctx := context.Background()
	s.expectDashboard("A", 1)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(testutil.Customers("A"), nil)
	s.orch.SelectCustomer(ctx, "A")

	s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, errors.New("timeout"))
	err := s.orch.SyncCustomers(ctx)

	s.True(dErrors.HasCode(err, dErrors.CodeCustomerListLoadFailed))
	f := s.orch.Frame()
	s.Equal("Dashboard ready for customer A", f.Status)
	s.Len(f.Customers, 1)
}

// The customer list refresh after a load carries the new credit snapshot
// into the cards.
func (s *OrchestratorSuite) TestImplicitRefreshUpdatesCards() {
	updated := testutil.NewCustomer("A").WithCredit(81, "A", 200000, 18).Build()
	s.expectDashboard("A", 1)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return([]models.CustomerSummary{updated}, nil)

	s.orch.SelectCustomer(context.Background(), "A")

	f := s.orch.Frame()
	s.Require().Len(f.Customers, 1)
	s.Equal("81", f.Customers[0].Score)
	s.Equal("18 mo", f.Customers[0].Tenor)
	s.Equal("Dashboard ready for customer A", f.Status)
}

func (s *OrchestratorSuite) TestFramesAreVersioned() {
	s.expectDashboard("A", 1)
	s.source.EXPECT().ListCustomers(gomock.Any()).Return(nil, nil)
	s.orch.SelectCustomer(context.Background(), "A")

	frames := s.rendered()
	for i := 1; i < len(frames); i++ {
		s.LessOrEqual(frames[i-1].Version, frames[i].Version)
	}
}

func TestBuildFrameIdle(t *testing.T) {
	f := BuildFrame(session.New(models.NewDashboardQuery()).Snapshot())
	if !f.ShowPlaceholder || f.CanGenerate || f.ShowLoading || f.ShowError {
		t.Fatalf("unexpected idle frame flags: %+v", f)
	}
	if f.Customers == nil {
		t.Fatal("customers should be an empty list, not nil")
	}
}

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/core/reporting"
	"github.com/SscSPs/practice_ledger_app/internal/platform/metrics"
)

const (
	dashboardCacheKey        = "reports:dashboard"
	defaultDashboardCacheTTL = 5 * time.Minute
)

// reportingService implements the ReportingSvc interface
type reportingService struct {
	BaseService
	store    portsrepo.LedgerStore
	clock    ports.Clock
	cacheTTL time.Duration
}

// ReportingServiceOption is a functional option for configuring the reporting service
type ReportingServiceOption func(*reportingService)

// WithReportingCache serves the dashboard from cache for up to ttl.
func WithReportingCache(cache portsrepo.ReportCache, ttl time.Duration) ReportingServiceOption {
	return func(s *reportingService) {
		s.ReportCache = cache
		if ttl > 0 {
			s.cacheTTL = ttl
		}
	}
}

// NewReportingService creates a new reporting service with the provided options
func NewReportingService(store portsrepo.LedgerStore, clock ports.Clock, options ...ReportingServiceOption) portssvc.ReportingSvc {
	svc := &reportingService{
		store:    store,
		clock:    clock,
		cacheTTL: defaultDashboardCacheTTL,
	}

	// Apply all options
	for _, option := range options {
		option(svc)
	}

	return svc
}

// Ensure reportingService implements the ReportingSvc interface
var _ portssvc.ReportingSvc = (*reportingService)(nil)

func (s *reportingService) GetWindowTotals(ctx context.Context, window domain.ReportWindow) (*domain.WindowTotals, error) {
	txns, err := s.store.Transactions().ListTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for totals")
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	expenses, err := s.store.Expenses().ListExpenses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load expenses for totals")
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}

	totals, err := reporting.WindowTotals(txns, expenses, window, s.clock.Now())
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Window totals computed", slog.String("window", string(window)))
	return &totals, nil
}

func (s *reportingService) GetOutstandingBalance(ctx context.Context) (decimal.Decimal, error) {
	clients, err := s.store.Clients().ListClients(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to load clients for outstanding balance")
		return decimal.Zero, fmt.Errorf("failed to load clients: %w", err)
	}
	return reporting.OutstandingBalance(clients), nil
}

func (s *reportingService) GetMonthlyIncomeTrend(ctx context.Context, monthsBack int) ([]domain.MonthTotal, error) {
	txns, err := s.store.Transactions().ListTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for income trend")
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return reporting.MonthlyIncomeTrend(txns, monthsBack, s.clock.Now())
}

func (s *reportingService) GetSessionDensity(ctx context.Context, daysBack int) ([]domain.DayCount, error) {
	now := s.clock.Now()
	sessions, err := s.loadRecentSessions(ctx, daysBack, now)
	if err != nil {
		return nil, err
	}
	return reporting.SessionDensity(sessions, daysBack, now)
}

// loadRecentSessions narrows the session snapshot to the density range, with a day of slack.
func (s *reportingService) loadRecentSessions(ctx context.Context, daysBack int, now time.Time) ([]domain.Session, error) {
	from := now.AddDate(0, 0, -(daysBack + 1))
	to := now.AddDate(0, 0, 1)
	sessions, err := s.store.Sessions().ListSessions(ctx, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to load sessions for density")
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	return sessions, nil
}

// GetDashboard builds the default report set, serving it from cache when possible.
func (s *reportingService) GetDashboard(ctx context.Context) (*domain.Dashboard, error) {
	if s.ReportCache != nil {
		var cached domain.Dashboard
		hit, err := s.ReportCache.Get(ctx, dashboardCacheKey, &cached)
		if err != nil {
			s.LogError(ctx, err, "Report cache read failed; rebuilding dashboard")
		} else if hit {
			metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
	}

	now := s.clock.Now()
	clients, err := s.store.Clients().ListClients(ctx, true)
	if err != nil {
		s.LogError(ctx, err, "Failed to load clients for dashboard")
		return nil, fmt.Errorf("failed to load clients: %w", err)
	}
	txns, err := s.store.Transactions().ListTransactions(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load transactions for dashboard")
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	expenses, err := s.store.Expenses().ListExpenses(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to load expenses for dashboard")
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	sessions, err := s.loadRecentSessions(ctx, reporting.DefaultDaysBack, now)
	if err != nil {
		return nil, err
	}

	dashboard, err := reporting.BuildDashboard(clients, txns, expenses, sessions, now)
	if err != nil {
		return nil, err
	}

	if s.ReportCache != nil {
		if err := s.ReportCache.Set(ctx, dashboardCacheKey, dashboard, s.cacheTTL); err != nil {
			s.LogError(ctx, err, "Failed to cache dashboard")
		}
	}
	s.LogInfo(ctx, "Dashboard generated",
		slog.Int("clients", len(clients)),
		slog.Int("transactions", len(txns)))
	return dashboard, nil
}

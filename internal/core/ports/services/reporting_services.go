package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// ReportingSvc defines read-only financial and activity reports
type ReportingSvc interface {
	// GetWindowTotals sums charges, payments and expenses that occurred in window.
	GetWindowTotals(ctx context.Context, window domain.ReportWindow) (*domain.WindowTotals, error)

	// GetOutstandingBalance sums what clients owe, ignoring credits.
	GetOutstandingBalance(ctx context.Context) (decimal.Decimal, error)

	// GetMonthlyIncomeTrend returns payments per calendar month, oldest first.
	GetMonthlyIncomeTrend(ctx context.Context, monthsBack int) ([]domain.MonthTotal, error)

	// GetSessionDensity returns sessions per calendar day, oldest first.
	GetSessionDensity(ctx context.Context, daysBack int) ([]domain.DayCount, error)

	// GetDashboard combines the default reports. The result may be served from cache.
	GetDashboard(ctx context.Context) (*domain.Dashboard, error)
}

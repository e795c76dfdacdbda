// Package reporting holds the read-only rollups behind the accounting and
// dashboard screens. Every function is pure: callers pass the snapshot and the
// current instant, and the calendar is evaluated in now's location.
package reporting

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/apperrors"
	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// Dashboard defaults, matching the practitioner's home and accounting screens.
const (
	DefaultWindow      = domain.WindowMonth
	DefaultMonthsBack  = 6
	DefaultDaysBack    = 7
	MaxTrendMonthsBack = 60
	MaxDensityDaysBack = 366
)

// Bounds returns the [start, end) interval of window around now.
// ok is false for WindowAll, which has no bounds.
func Bounds(window domain.ReportWindow, now time.Time) (start, end time.Time, ok bool, err error) {
	today := startOfDay(now)
	switch window {
	case domain.WindowDay:
		return today, today.AddDate(0, 0, 1), true, nil
	case domain.WindowWeek:
		// time.Weekday counts from Sunday; shift so Monday is 0.
		offset := (int(today.Weekday()) + 6) % 7
		monday := today.AddDate(0, 0, -offset)
		return monday, monday.AddDate(0, 0, 7), true, nil
	case domain.WindowMonth:
		first := startOfMonth(now)
		return first, first.AddDate(0, 1, 0), true, nil
	case domain.WindowAll:
		return time.Time{}, time.Time{}, false, nil
	default:
		return time.Time{}, time.Time{}, false, fmt.Errorf("%w: unknown report window %q", apperrors.ErrValidation, window)
	}
}

// WindowTotals sums charges billed, payments collected and expenses whose
// OccurredAt falls inside window. Net is payments minus expenses.
func WindowTotals(txns []domain.Transaction, expenses []domain.Expense, window domain.ReportWindow, now time.Time) (domain.WindowTotals, error) {
	start, end, bounded, err := Bounds(window, now)
	if err != nil {
		return domain.WindowTotals{}, err
	}
	inWindow := func(t time.Time) bool {
		return !bounded || (!t.Before(start) && t.Before(end))
	}

	totals := domain.WindowTotals{
		Window:   window,
		Charges:  decimal.Zero,
		Payments: decimal.Zero,
		Expenses: decimal.Zero,
	}
	for _, t := range txns {
		if !inWindow(t.OccurredAt) {
			continue
		}
		switch t.Kind {
		case domain.Charge:
			totals.Charges = totals.Charges.Add(t.Amount)
		case domain.Payment:
			totals.Payments = totals.Payments.Add(t.Amount)
		}
	}
	for _, e := range expenses {
		if inWindow(e.OccurredAt) {
			totals.Expenses = totals.Expenses.Add(e.Amount)
		}
	}
	totals.Net = totals.Payments.Sub(totals.Expenses)
	return totals, nil
}

// OutstandingBalance sums every positive client balance. Clients in credit count as zero.
func OutstandingBalance(clients []domain.Client) decimal.Decimal {
	total := decimal.Zero
	for _, c := range clients {
		if c.Balance.IsPositive() {
			total = total.Add(c.Balance)
		}
	}
	return total
}

// MonthlyIncomeTrend returns the payments collected in each of the last
// monthsBack calendar months, the current month included, oldest first.
func MonthlyIncomeTrend(txns []domain.Transaction, monthsBack int, now time.Time) ([]domain.MonthTotal, error) {
	if monthsBack < 1 || monthsBack > MaxTrendMonthsBack {
		return nil, fmt.Errorf("%w: monthsBack must be between 1 and %d, got %d", apperrors.ErrValidation, MaxTrendMonthsBack, monthsBack)
	}

	current := startOfMonth(now)
	out := make([]domain.MonthTotal, monthsBack)
	index := make(map[int64]int, monthsBack)
	for i := 0; i < monthsBack; i++ {
		month := current.AddDate(0, i-(monthsBack-1), 0)
		out[i] = domain.MonthTotal{Month: month, Total: decimal.Zero}
		index[month.Unix()] = i
	}

	for _, t := range txns {
		if t.Kind != domain.Payment {
			continue
		}
		if i, ok := index[startOfMonth(t.OccurredAt.In(now.Location())).Unix()]; ok {
			out[i].Total = out[i].Total.Add(t.Amount)
		}
	}
	return out, nil
}

// SessionDensity counts sessions scheduled on each of the last daysBack
// calendar days, today included, oldest first. Status is ignored.
func SessionDensity(sessions []domain.Session, daysBack int, now time.Time) ([]domain.DayCount, error) {
	if daysBack < 1 || daysBack > MaxDensityDaysBack {
		return nil, fmt.Errorf("%w: daysBack must be between 1 and %d, got %d", apperrors.ErrValidation, MaxDensityDaysBack, daysBack)
	}

	today := startOfDay(now)
	out := make([]domain.DayCount, daysBack)
	index := make(map[int64]int, daysBack)
	for i := 0; i < daysBack; i++ {
		day := today.AddDate(0, 0, i-(daysBack-1))
		out[i] = domain.DayCount{Day: day}
		index[day.Unix()] = i
	}

	for _, s := range sessions {
		if i, ok := index[startOfDay(s.ScheduledAt.In(now.Location())).Unix()]; ok {
			out[i].Count++
		}
	}
	return out, nil
}

// BuildDashboard runs the four rollups with the default parameters.
func BuildDashboard(clients []domain.Client, txns []domain.Transaction, expenses []domain.Expense, sessions []domain.Session, now time.Time) (*domain.Dashboard, error) {
	totals, err := WindowTotals(txns, expenses, DefaultWindow, now)
	if err != nil {
		return nil, err
	}
	trend, err := MonthlyIncomeTrend(txns, DefaultMonthsBack, now)
	if err != nil {
		return nil, err
	}
	density, err := SessionDensity(sessions, DefaultDaysBack, now)
	if err != nil {
		return nil, err
	}
	return &domain.Dashboard{
		GeneratedAt:    now,
		Totals:         totals,
		Outstanding:    OutstandingBalance(clients),
		IncomeTrend:    trend,
		SessionDensity: density,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReportWindow selects the time range of a totals report.
type ReportWindow string

const (
	WindowDay   ReportWindow = "day"
	WindowWeek  ReportWindow = "week"
	WindowMonth ReportWindow = "month"
	WindowAll   ReportWindow = "all"
)

// WindowTotals summarizes ledger activity over a window.
type WindowTotals struct {
	Window   ReportWindow    `json:"window"`
	Charges  decimal.Decimal `json:"charges"`  // Total billed
	Payments decimal.Decimal `json:"payments"` // Total collected
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"` // Payments minus expenses
}

// MonthTotal is one point of the income trend.
type MonthTotal struct {
	Month time.Time       `json:"month"` // First instant of the calendar month
	Total decimal.Decimal `json:"total"`
}

// DayCount is one point of the session density series.
type DayCount struct {
	Day   time.Time `json:"day"` // Midnight of the calendar day
	Count int       `json:"count"`
}

// Dashboard combines the default set of reports.
type Dashboard struct {
	GeneratedAt    time.Time       `json:"generatedAt"`
	Totals         WindowTotals    `json:"totals"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	IncomeTrend    []MonthTotal    `json:"incomeTrend"`
	SessionDensity []DayCount      `json:"sessionDensity"`
}

// BalanceDrift records a client whose cached balance disagreed with its transaction log.
type BalanceDrift struct {
	ClientID string          `json:"clientID"`
	Cached   decimal.Decimal `json:"cached"`
	Actual   decimal.Decimal `json:"actual"`
}

// ReconciliationReport is the outcome of recomputing every client balance.
type ReconciliationReport struct {
	ClientsChecked int            `json:"clientsChecked"`
	Drifted        []BalanceDrift `json:"drifted"`
}

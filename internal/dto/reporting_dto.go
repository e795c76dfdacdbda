package dto

import (
	"github.com/shopspring/decimal"

	"github.com/SscSPs/practice_ledger_app/internal/core/domain"
)

// WindowTotalsParams selects the totals window.
type WindowTotalsParams struct {
	Window domain.ReportWindow `form:"window,default=month" binding:"oneof=day week month all"`
}

// IncomeTrendParams selects how many calendar months the trend covers.
type IncomeTrendParams struct {
	Months int `form:"months,default=6" binding:"gte=1,lte=60"`
}

// SessionDensityParams selects how many days the density series covers.
type SessionDensityParams struct {
	Days int `form:"days,default=7" binding:"gte=1,lte=366"`
}

// OutstandingResponse is the portfolio-wide receivables figure.
type OutstandingResponse struct {
	Outstanding decimal.Decimal `json:"outstanding"`
}

// IncomeTrendResponse wraps the monthly income series.
type IncomeTrendResponse struct {
	Months []domain.MonthTotal `json:"months"`
}

// SessionDensityResponse wraps the daily session counts.
type SessionDensityResponse struct {
	Days []domain.DayCount `json:"days"`
}

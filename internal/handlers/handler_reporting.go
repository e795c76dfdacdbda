package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
)

// reportingHandler serves the read-only financial and activity reports.
type reportingHandler struct {
	reporting portssvc.ReportingSvc
}

func registerReportingRoutes(rg *gin.RouterGroup, rs portssvc.ReportingSvc) {
	h := &reportingHandler{reporting: rs}

	reports := rg.Group("/reports")
	{
		reports.GET("/totals", h.getWindowTotals)
		reports.GET("/outstanding", h.getOutstanding)
		reports.GET("/income-trend", h.getIncomeTrend)
		reports.GET("/session-density", h.getSessionDensity)
		reports.GET("/dashboard", h.getDashboard)
	}
}

func (h *reportingHandler) getWindowTotals(c *gin.Context) {
	var params dto.WindowTotalsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	totals, err := h.reporting.GetWindowTotals(c.Request.Context(), params.Window)
	if err != nil {
		respondError(c, err, "compute totals")
		return
	}
	c.JSON(http.StatusOK, totals)
}

func (h *reportingHandler) getOutstanding(c *gin.Context) {
	outstanding, err := h.reporting.GetOutstandingBalance(c.Request.Context())
	if err != nil {
		respondError(c, err, "compute outstanding balance")
		return
	}
	c.JSON(http.StatusOK, dto.OutstandingResponse{Outstanding: outstanding})
}

func (h *reportingHandler) getIncomeTrend(c *gin.Context) {
	var params dto.IncomeTrendParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	months, err := h.reporting.GetMonthlyIncomeTrend(c.Request.Context(), params.Months)
	if err != nil {
		respondError(c, err, "compute income trend")
		return
	}
	c.JSON(http.StatusOK, dto.IncomeTrendResponse{Months: months})
}

func (h *reportingHandler) getSessionDensity(c *gin.Context) {
	var params dto.SessionDensityParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}
	days, err := h.reporting.GetSessionDensity(c.Request.Context(), params.Days)
	if err != nil {
		respondError(c, err, "compute session density")
		return
	}
	c.JSON(http.StatusOK, dto.SessionDensityResponse{Days: days})
}

func (h *reportingHandler) getDashboard(c *gin.Context) {
	dashboard, err := h.reporting.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err, "build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

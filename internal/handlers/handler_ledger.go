package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
)

// ledgerHandler handles payments, expenses and ledger maintenance.
type ledgerHandler struct {
	billing portssvc.BillingLedgerSvc
}

func registerLedgerRoutes(rg *gin.RouterGroup, bs portssvc.BillingLedgerSvc) {
	h := &ledgerHandler{billing: bs}

	rg.POST("/payments", h.recordPayment)
	rg.DELETE("/transactions/:transactionID", h.deleteTransaction)
	rg.POST("/expenses", h.recordExpense)
	rg.DELETE("/expenses/:expenseID", h.deleteExpense)
	rg.POST("/ledger/reconcile", h.reconcileBalances)
}

func (h *ledgerHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	logger.Info("Received request to record payment", slog.String("client_id", req.ClientID), slog.String("amount", req.Amount.String()))

	txn, err := h.billing.RecordPayment(c.Request.Context(), req.ClientID, req.Amount, req.Description)
	if err != nil {
		respondError(c, err, "record payment")
		return
	}
	c.JSON(http.StatusCreated, txn)
}

// deleteTransaction reverses a payment or charge. Unknown IDs succeed.
func (h *ledgerHandler) deleteTransaction(c *gin.Context) {
	if err := h.billing.DeleteTransaction(c.Request.Context(), c.Param("transactionID")); err != nil {
		respondError(c, err, "delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ledgerHandler) recordExpense(c *gin.Context) {
	var req dto.RecordExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	expense, err := h.billing.RecordExpense(c.Request.Context(), req.Amount, req.Description, req.Category)
	if err != nil {
		respondError(c, err, "record expense")
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func (h *ledgerHandler) deleteExpense(c *gin.Context) {
	if err := h.billing.DeleteExpense(c.Request.Context(), c.Param("expenseID")); err != nil {
		respondError(c, err, "delete expense")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *ledgerHandler) reconcileBalances(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	logger.Info("Received request to reconcile balances")

	report, err := h.billing.ReconcileBalances(c.Request.Context())
	if err != nil {
		respondError(c, err, "reconcile balances")
		return
	}

	logger.Info("Balances reconciled", slog.Int("checked", report.ClientsChecked), slog.Int("drifted", len(report.Drifted)))
	c.JSON(http.StatusOK, report)
}

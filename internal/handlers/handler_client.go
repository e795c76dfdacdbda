package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
)

// clientHandler handles client profiles and per-client ledger history.
type clientHandler struct {
	clients portssvc.ClientSvc
	ledger  portssvc.ClientLedgerSvc
}

func registerClientRoutes(rg *gin.RouterGroup, cs portssvc.ClientSvc, ls portssvc.ClientLedgerSvc) {
	h := &clientHandler{clients: cs, ledger: ls}

	clients := rg.Group("/clients")
	{
		clients.POST("", h.createClient)
		clients.GET("", h.listClients)
		clients.GET("/:clientID", h.getClient)
		clients.PUT("/:clientID", h.updateClient)
		clients.DELETE("/:clientID", h.archiveClient)
		clients.GET("/:clientID/transactions", h.listClientTransactions)
	}
}

func (h *clientHandler) createClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	client, err := h.clients.CreateClient(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "create client")
		return
	}

	logger.Info("Client created", slog.String("client_id", client.ClientID))
	c.JSON(http.StatusCreated, client)
}

func (h *clientHandler) listClients(c *gin.Context) {
	var params dto.ListClientsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	clients, err := h.clients.ListClients(c.Request.Context(), params.IncludeArchived)
	if err != nil {
		respondError(c, err, "list clients")
		return
	}
	c.JSON(http.StatusOK, dto.ListClientsResponse{Clients: clients})
}

func (h *clientHandler) getClient(c *gin.Context) {
	client, err := h.clients.GetClient(c.Request.Context(), c.Param("clientID"))
	if err != nil {
		respondError(c, err, "retrieve client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// updateClient patches profile fields. A balance in the body is ignored.
func (h *clientHandler) updateClient(c *gin.Context) {
	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	client, err := h.clients.UpdateClient(c.Request.Context(), c.Param("clientID"), req)
	if err != nil {
		respondError(c, err, "update client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (h *clientHandler) archiveClient(c *gin.Context) {
	clientID := c.Param("clientID")
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received request to archive client", slog.String("client_id", clientID))

	if err := h.clients.ArchiveClient(c.Request.Context(), clientID); err != nil {
		respondError(c, err, "archive client")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *clientHandler) listClientTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	txns, next, err := h.ledger.ListClientTransactions(c.Request.Context(), c.Param("clientID"), params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListTransactionsResponse{Transactions: txns, NextToken: next})
}

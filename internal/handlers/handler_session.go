package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
	"github.com/SscSPs/practice_ledger_app/internal/dto"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
)

// sessionHandler handles HTTP requests for the session lifecycle.
type sessionHandler struct {
	sessions portssvc.SessionSchedulerSvc
	billing  portssvc.ClientLedgerSvc
}

func newSessionHandler(ss portssvc.SessionSchedulerSvc, bs portssvc.ClientLedgerSvc) *sessionHandler {
	return &sessionHandler{sessions: ss, billing: bs}
}

func registerSessionRoutes(rg *gin.RouterGroup, ss portssvc.SessionSchedulerSvc, bs portssvc.ClientLedgerSvc) {
	h := newSessionHandler(ss, bs)

	sessions := rg.Group("/sessions")
	{
		sessions.POST("", h.scheduleSessions)
		sessions.GET("", h.listSessions)
		sessions.GET("/:sessionID", h.getSession)
		sessions.POST("/:sessionID/cancel", h.cancelSession)
		sessions.POST("/:sessionID/complete", h.completeSession)
		sessions.POST("/:sessionID/charge", h.chargeSession)
		sessions.DELETE("/:sessionID", h.deleteSession)
	}
}

// scheduleSessions creates a single session or a recurring batch.
func (h *sessionHandler) scheduleSessions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "request format")
		return
	}

	logger.Info("Received request to schedule sessions", slog.String("kind", string(req.Kind)))

	created, err := h.sessions.ScheduleSessions(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "schedule sessions")
		return
	}

	logger.Info("Sessions scheduled", slog.Int("count", len(created)))
	c.JSON(http.StatusCreated, dto.ScheduleSessionResponse{Sessions: created})
}

func (h *sessionHandler) listSessions(c *gin.Context) {
	var params dto.ListSessionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		bindError(c, err, "query parameters")
		return
	}

	sessions, err := h.sessions.ListSessions(c.Request.Context(), params.From, params.To)
	if err != nil {
		respondError(c, err, "list sessions")
		return
	}
	c.JSON(http.StatusOK, dto.ListSessionsResponse{Sessions: sessions})
}

func (h *sessionHandler) getSession(c *gin.Context) {
	session, err := h.sessions.GetSession(c.Request.Context(), c.Param("sessionID"))
	if err != nil {
		respondError(c, err, "retrieve session")
		return
	}
	c.JSON(http.StatusOK, session)
}

func (h *sessionHandler) cancelSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("session_id", sessionID))
	logger.Info("Received request to cancel session")

	session, err := h.sessions.CancelSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err, "cancel session")
		return
	}
	c.JSON(http.StatusOK, session)
}

// completeSession marks a session completed and bills it. The body is optional.
func (h *sessionHandler) completeSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("session_id", sessionID))

	var req dto.CompleteSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindError(c, err, "request format")
		return
	}

	logger.Info("Received request to complete session")

	result, err := h.sessions.CompleteSession(c.Request.Context(), sessionID, req)
	if err != nil {
		respondError(c, err, "complete session")
		return
	}

	logger.Info("Session completed", slog.Int("charges", len(result.Charges)))
	c.JSON(http.StatusOK, result)
}

// chargeSession retries billing for an already completed session.
func (h *sessionHandler) chargeSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	charges, err := h.billing.ChargeForSession(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err, "charge session")
		return
	}
	c.JSON(http.StatusOK, dto.ChargeSessionResponse{Charges: charges})
}

func (h *sessionHandler) deleteSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Received request to delete session", slog.String("session_id", sessionID))

	if err := h.sessions.DeleteSession(c.Request.Context(), sessionID); err != nil {
		respondError(c, err, "delete session")
		return
	}
	c.Status(http.StatusNoContent)
}

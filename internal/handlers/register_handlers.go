package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/practice_ledger_app/internal/core/services"
	"github.com/SscSPs/practice_ledger_app/internal/middleware"
	"github.com/SscSPs/practice_ledger_app/internal/platform/config"
	"github.com/SscSPs/practice_ledger_app/internal/platform/metrics"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, container *services.Container) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))
	RegisterAPIRoutes(v1, container)
}

// RegisterAPIRoutes delegates route registration to the entity handlers.
func RegisterAPIRoutes(rg *gin.RouterGroup, container *services.Container) {
	registerSessionRoutes(rg, container.Sessions, container.Billing)
	registerLedgerRoutes(rg, container.Billing)
	registerClientRoutes(rg, container.Clients, container.Billing)
	registerGroupRoutes(rg, container.Groups)
	registerReportingRoutes(rg, container.Reporting)
}

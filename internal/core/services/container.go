package services

import (
	"time"

	"github.com/SscSPs/practice_ledger_app/internal/core/ports"
	portsrepo "github.com/SscSPs/practice_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/practice_ledger_app/internal/core/ports/services"
)

// Container holds all the services and manages their dependencies
type Container struct {
	Sessions  portssvc.SessionSchedulerSvc
	Billing   portssvc.BillingLedgerSvc
	Reporting portssvc.ReportingSvc
	Clients   portssvc.ClientSvc
	Groups    portssvc.GroupSvc
}

// ContainerConfig carries the optional collaborators of the services.
type ContainerConfig struct {
	ReportCache    portsrepo.ReportCache
	ReportCacheTTL time.Duration
}

// NewContainer creates a new service container with properly initialized dependencies
func NewContainer(store portsrepo.LedgerStore, clock ports.Clock, ids ports.IDGenerator, cfg ContainerConfig) *Container {
	container := &Container{}

	// The scheduler bills through the ledger, so the ledger comes first.
	container.Billing = NewBillingService(store, clock, ids, WithBillingReportCache(cfg.ReportCache))

	container.Sessions = NewSchedulerService(store, container.Billing, clock, ids,
		WithSchedulerReportCache(cfg.ReportCache))

	container.Reporting = NewReportingService(store, clock,
		WithReportingCache(cfg.ReportCache, cfg.ReportCacheTTL))

	container.Clients = NewClientService(store.Clients(), clock, ids)
	container.Groups = NewGroupService(store.Groups(), store.Clients(), clock, ids)

	return container
}

// Package leads provides the lead lifecycle bounded context module.
// This file defines the module that encapsulates all leads setup and route registration.
package leads

import (
	"context"

	"funnel_backend/internal/events"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/internal/leads/conversion"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/funnel"
	"funnel_backend/internal/leads/handler"
	"funnel_backend/internal/leads/management"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"
)

// Module is the leads bounded context module implementing http.Module.
type Module struct {
	handler    *handler.Handler
	management *management.Service
	funnel     *funnel.Service
	conversion *conversion.Service
	store      *repository.Store
}

// NewModule creates and initializes the leads module with all its dependencies.
func NewModule(store *repository.Store, eventBus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	mgmtSvc := management.New(store, eventBus, log)
	funnelSvc := funnel.New(store, eventBus, log)
	convSvc := conversion.New(store, eventBus, log)

	// Subscribe to activity events so high-intent engagement bumps the
	// lead to the top of the agent queue automatically.
	eventBus.Subscribe(events.LeadActivityLogged{}.EventName(), events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		e, ok := event.(events.LeadActivityLogged)
		if !ok {
			return nil
		}
		if !domain.ActivityType(e.ActivityType).IsHighIntent() {
			return nil
		}

		go func() {
			if err := mgmtSvc.RaisePriority(context.Background(), e.LeadID, domain.PriorityHigh); err != nil {
				log.Error("priority bump after activity failed", "error", err, "leadId", e.LeadID)
			}
		}()

		return nil
	}))

	h := handler.New(mgmtSvc, funnelSvc, convSvc, val)

	return &Module{
		handler:    h,
		management: mgmtSvc,
		funnel:     funnelSvc,
		conversion: convSvc,
		store:      store,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "leads"
}

// ManagementService returns the lead management service for external use.
func (m *Module) ManagementService() *management.Service {
	return m.management
}

// FunnelService returns the stage transition service for external use.
func (m *Module) FunnelService() *funnel.Service {
	return m.funnel
}

// ConversionService returns the lead conversion service for external use.
func (m *Module) ConversionService() *conversion.Service {
	return m.conversion
}

// Store returns the backing store for external use (scheduler sweeps).
func (m *Module) Store() *repository.Store {
	return m.store
}

// RegisterRoutes mounts leads routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// All leads routes require authentication
	m.handler.RegisterRoutes(ctx.Protected.Group("/leads"))
	m.handler.RegisterCustomerRoutes(ctx.Protected.Group("/customers"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package enrichment provides the external data enrichment bounded
// context module.
package enrichment

import (
	"funnel_backend/internal/enrichment/client"
	"funnel_backend/internal/enrichment/handler"
	"funnel_backend/internal/enrichment/service"
	apphttp "funnel_backend/internal/http"
	"funnel_backend/platform/config"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module is the enrichment bounded context module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	enabled bool
}

// NewModule creates and initializes the enrichment module.
// Returns a disabled module if the provider is not configured
// (graceful degradation). cache may be nil.
func NewModule(cfg config.EnrichmentConfig, cache *redis.Client, val *validator.Validator, log *logger.Logger) *Module {
	if !cfg.IsEnrichmentEnabled() {
		log.Info("enrichment module disabled: ENRICHMENT_API_URL not configured")
		return &Module{enabled: false}
	}

	apiClient := client.New(cfg.GetEnrichmentAPIURL(), cfg.GetEnrichmentAPIKey(), cfg.GetEnrichmentTimeout(), log)
	svc := service.New(apiClient, cache, cfg.GetEnrichmentCacheTTL(), log)

	log.Info("enrichment module initialized", "cacheEnabled", cache != nil)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		enabled: true,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrichment"
}

// Service returns the enrichment service for external use.
// Returns nil if the module is disabled.
func (m *Module) Service() *service.Service {
	if m == nil || !m.enabled {
		return nil
	}
	return m.service
}

// IsEnabled returns true if the provider is configured.
func (m *Module) IsEnabled() bool {
	return m != nil && m.enabled
}

// RegisterRoutes mounts enrichment routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if !m.enabled {
		return
	}
	m.handler.RegisterRoutes(ctx.Protected.Group("/enrichment"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

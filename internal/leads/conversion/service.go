// Package conversion materializes customers from qualified leads,
// preserving provenance. Validate-then-commit: a failed conversion leaves
// the source lead byte-for-byte unchanged.
package conversion

import (
	"context"
	"errors"
	"time"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/internal/leads/transport"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the conversion
// service.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.CustomerReader
	repository.CustomerWriter
}

// Service converts qualified leads into customers.
type Service struct {
	repo   Repository
	bus    events.Bus
	log    *logger.Logger
	policy domain.Policy
	now    func() time.Time
}

// New creates a new conversion service using the default qualification policy.
func New(repo Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log, policy: domain.DefaultPolicy, now: time.Now}
}

// WithPolicy overrides the qualification passing policy.
func (s *Service) WithPolicy(policy domain.Policy) *Service {
	s.policy = policy
	return s
}

// WithClock overrides the service clock for deterministic tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Convert materializes a Customer from the lead and marks the lead
// converted. The domain checks all preconditions against the loaded
// snapshot before anything is stored.
func (s *Service) Convert(ctx context.Context, id uuid.UUID, req transport.ConvertLeadRequest, actor uuid.UUID) (*domain.Customer, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	customer, err := domain.ConvertLead(lead, domain.ConversionParams{
		Notes:              req.Notes,
		Tier:               domain.CustomerTier(req.Tier),
		TotalSpentCents:    req.TotalSpentCents,
		LifetimeValueCents: req.LifetimeValueCents,
		OrderCount:         req.OrderCount,
	}, actor, s.policy, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveCustomer(ctx, customer); err != nil {
		return nil, err
	}
	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info("lead converted",
		"leadId", lead.ID,
		"customerId", customer.ID,
		"movedFromStage", customer.MovedFromStage,
	)
	s.bus.Publish(ctx, events.LeadConverted{
		BaseEvent:  events.NewBaseEvent(),
		LeadID:     lead.ID,
		CustomerID: customer.ID,
		Actor:      actor,
	})
	return customer, nil
}

// GetCustomer retrieves a converted customer by ID.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("customer not found")
		}
		return nil, err
	}
	return customer, nil
}

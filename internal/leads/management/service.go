// Package management handles lead CRUD, activity logging, qualification
// data entry and score recomputation. This is a vertically sliced feature
// package; funnel transitions and conversion live in their own slices.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/internal/leads/transport"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/logger"
	"funnel_backend/platform/phone"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the management
// service. This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// Service handles lead management operations.
type Service struct {
	repo Repository
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log, now: time.Now}
}

// WithClock overrides the service clock. Used by tests and callers that
// need deterministic timestamps.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create constructs a new lead and stores it.
func (s *Service) Create(ctx context.Context, req transport.CreateLeadRequest) (*domain.Lead, error) {
	phones := make([]string, 0, len(req.Phones))
	for _, p := range req.Phones {
		phones = append(phones, phone.NormalizeE164(p))
	}

	lead, err := domain.NewLead(domain.NewLeadParams{
		FirstName:           req.FirstName,
		LastName:            req.LastName,
		PrimaryEmail:        req.PrimaryEmail,
		SecondaryEmail:      req.SecondaryEmail,
		Phones:              phones,
		Company:             req.Company,
		JobTitle:            req.JobTitle,
		Industry:            req.Industry,
		CompanySize:         domain.CompanySizeBracket(req.CompanySize),
		Location:            req.Location,
		Source:              domain.Source(req.Source),
		Priority:            domain.Priority(req.Priority),
		PotentialValueCents: req.PotentialValueCents,
		Tags:                req.Tags,
	}, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info("lead created", "leadId", lead.ID, "source", lead.Source)
	s.bus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Source:    string(lead.Source),
	})
	return lead, nil
}

// GetByID retrieves a lead by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}
	return lead, nil
}

// List returns leads matching the filter.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) ([]*domain.Lead, error) {
	return s.repo.ListLeads(ctx, repository.LeadFilter{
		Stage:    domain.Stage(req.Stage),
		Source:   domain.Source(req.Source),
		Priority: domain.Priority(req.Priority),
	})
}

// Update applies partial contact and commercial updates to a mutable lead.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateLeadRequest) (*domain.Lead, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lead.IsMutable() {
		return nil, apperr.Conflict("lead is read-only in a terminal stage")
	}

	// Binding validation upstream already rejects these over HTTP, but
	// the entity invariants hold for direct callers too.
	if req.FirstName != nil && strings.TrimSpace(*req.FirstName) == "" {
		return nil, &domain.InvalidEntityError{Field: "firstName", Kind: domain.FieldMissing}
	}
	if req.LastName != nil && strings.TrimSpace(*req.LastName) == "" {
		return nil, &domain.InvalidEntityError{Field: "lastName", Kind: domain.FieldMissing}
	}
	if req.PotentialValueCents != nil && *req.PotentialValueCents < 0 {
		return nil, &domain.InvalidEntityError{Field: "potentialValue", Kind: domain.FieldNegativeValue}
	}

	now := s.now()
	if req.FirstName != nil {
		lead.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		lead.LastName = *req.LastName
	}
	if req.SecondaryEmail != nil {
		lead.SecondaryEmail = *req.SecondaryEmail
	}
	if req.Phones != nil {
		phones := make([]string, 0, len(req.Phones))
		for _, p := range req.Phones {
			phones = append(phones, phone.NormalizeE164(p))
		}
		lead.Phones = phones
	}
	if req.Company != nil {
		lead.Company = *req.Company
	}
	if req.JobTitle != nil {
		lead.JobTitle = *req.JobTitle
	}
	if req.Industry != nil {
		lead.Industry = *req.Industry
	}
	if req.CompanySize != nil {
		lead.CompanySize = domain.CompanySizeBracket(*req.CompanySize)
	}
	if req.Location != nil {
		lead.Location = *req.Location
	}
	if req.Priority != nil {
		lead.Priority = domain.Priority(*req.Priority)
	}
	if req.PotentialValueCents != nil {
		lead.PotentialValueCents = *req.PotentialValueCents
	}
	if req.Probability != nil {
		lead.Probability = *req.Probability
	}
	if len(req.Tags) > 0 {
		lead.AddTags(req.Tags, now)
	}
	lead.UpdatedAt = now
	lead.Score = domain.ComputeScore(lead, now)

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// LogActivity appends an engagement record and recomputes the score.
// Always succeeds for leads that are not converted/disqualified.
func (s *Service) LogActivity(ctx context.Context, id uuid.UUID, req transport.LogActivityRequest) (*domain.Lead, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	activity := domain.Activity{
		Type:        domain.ActivityType(req.Type),
		Description: req.Description,
		ValueCents:  req.ValueCents,
	}
	if req.OccurredAt != nil {
		activity.OccurredAt = *req.OccurredAt
	}
	if err := lead.AppendActivity(activity, now); err != nil {
		return nil, err
	}
	lead.Score = domain.ComputeScore(lead, now)

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.LeadActivityLogged{
		BaseEvent:    events.NewBaseEvent(),
		LeadID:       lead.ID,
		ActivityType: req.Type,
	})
	return lead, nil
}

// SetQualification records BANT fields incrementally and recomputes the
// score. Evaluation itself is a separate pure read.
func (s *Service) SetQualification(ctx context.Context, id uuid.UUID, req transport.SetQualificationRequest) (*domain.Lead, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lead.IsMutable() {
		return nil, apperr.Conflict("lead is read-only in a terminal stage")
	}

	if req.Budget != nil {
		lead.Qualification.Budget = domain.BudgetBracket(*req.Budget)
	}
	if req.Authority != nil {
		lead.Qualification.Authority = domain.AuthorityLevel(*req.Authority)
	}
	if req.Need != nil {
		lead.Qualification.Need = domain.NeedUrgency(*req.Need)
	}
	if req.Timeline != nil {
		lead.Qualification.Timeline = domain.TimelineBracket(*req.Timeline)
	}

	now := s.now()
	lead.UpdatedAt = now
	lead.Score = domain.ComputeScore(lead, now)

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

// RaisePriority lifts the lead's triage level to p. Lower or equal levels
// are ignored so automated bumps never demote an agent's manual setting.
func (s *Service) RaisePriority(ctx context.Context, id uuid.UUID, p domain.Priority) error {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !lead.IsMutable() || !p.Outranks(lead.Priority) {
		return nil
	}

	lead.Priority = p
	lead.UpdatedAt = s.now()

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return err
	}
	s.log.Info("lead priority raised", "leadId", lead.ID, "priority", p)
	return nil
}

// RecomputeScore re-derives the lead score from its current snapshot.
// Deterministic and idempotent; history is not touched.
func (s *Service) RecomputeScore(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	lead, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lead.IsMutable() {
		// Converted and disqualified leads keep their final score.
		return lead, nil
	}

	now := s.now()
	lead.Score = domain.ComputeScore(lead, now)
	lead.UpdatedAt = now

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

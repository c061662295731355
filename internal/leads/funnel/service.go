// Package funnel is the stage transition slice: it validates and commits
// funnel moves against the stage machine and the qualification gate, and
// exposes the qualification evaluator as a pure read.
package funnel

import (
	"context"
	"errors"
	"time"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the funnel service.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
}

// Service enforces funnel-stage transitions.
type Service struct {
	repo   Repository
	bus    events.Bus
	log    *logger.Logger
	policy domain.Policy
	now    func() time.Time
}

// New creates a new funnel service using the default qualification policy.
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

// Transition moves the lead to the target stage. The lead is loaded as a
// snapshot and only saved after the domain accepts the move, so a rejected
// transition leaves the stored entity untouched.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, req domain.TransitionRequest, actor uuid.UUID) (*domain.Lead, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("lead not found")
		}
		return nil, err
	}

	from := lead.Stage
	if err := lead.ApplyTransition(req, actor, s.policy, s.now()); err != nil {
		return nil, err
	}

	if err := s.repo.SaveLead(ctx, lead); err != nil {
		return nil, err
	}

	s.log.Info("lead stage changed",
		"leadId", lead.ID,
		"from", from,
		"to", lead.Stage,
		"override", req.Override,
	)
	s.bus.Publish(ctx, events.LeadStageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		From:      string(from),
		To:        string(lead.Stage),
		Override:  req.Override,
		Actor:     actor,
	})
	return lead, nil
}

// Disqualify moves the lead to the disqualified terminal stage with a
// free-text reason. Reachable from any non-terminal stage.
func (s *Service) Disqualify(ctx context.Context, id uuid.UUID, reason string, actor uuid.UUID) (*domain.Lead, error) {
	return s.Transition(ctx, id, domain.TransitionRequest{
		Target: domain.StageDisqualified,
		Reason: domain.OverrideReason(reason),
	}, actor)
}

// Evaluate runs the qualification evaluator against the lead's current
// snapshot. Pure read; the lead is never mutated.
func (s *Service) Evaluate(ctx context.Context, id uuid.UUID) (domain.QualificationResult, error) {
	lead, err := s.repo.GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.QualificationResult{}, apperr.NotFound("lead not found")
		}
		return domain.QualificationResult{}, err
	}
	return domain.EvaluateQualification(lead, s.policy), nil
}

// Package repository provides the entity store for the leads bounded
// context. The engine is persistence-agnostic: this in-memory store is the
// default collaborator, and the interfaces below are what the services
// actually depend on.
package repository

import (
	"context"
	"errors"

	"funnel_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an entity does not exist in the store.
var ErrNotFound = errors.New("not found")

// LeadFilter narrows List results. Zero values match everything.
type LeadFilter struct {
	Stage    domain.Stage
	Source   domain.Source
	Priority domain.Priority
}

// LeadReader provides read access to leads.
type LeadReader interface {
	GetLead(ctx context.Context, id uuid.UUID) (*domain.Lead, error)
	ListLeads(ctx context.Context, filter LeadFilter) ([]*domain.Lead, error)
}

// LeadWriter provides write access to leads.
type LeadWriter interface {
	SaveLead(ctx context.Context, lead *domain.Lead) error
}

// CustomerReader provides read access to customers.
type CustomerReader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error)
}

// CustomerWriter provides write access to customers.
type CustomerWriter interface {
	SaveCustomer(ctx context.Context, customer *domain.Customer) error
}

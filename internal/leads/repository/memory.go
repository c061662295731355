package repository

import (
	"context"
	"sort"
	"sync"

	"funnel_backend/internal/leads/domain"

	"github.com/google/uuid"
)

// Store is an in-memory entity store. Reads hand out deep copies so
// services work on snapshots and commit explicitly via Save; a failed
// operation therefore never leaves a partially mutated entity behind.
// The store serializes access internally, but callers remain responsible
// for single-writer-per-entity discipline across concurrent operations on
// the same lead.
type Store struct {
	mu        sync.RWMutex
	leads     map[uuid.UUID]*domain.Lead
	customers map[uuid.UUID]*domain.Customer
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		leads:     make(map[uuid.UUID]*domain.Lead),
		customers: make(map[uuid.UUID]*domain.Customer),
	}
}

// GetLead returns a deep copy of the lead with the given id.
func (s *Store) GetLead(ctx context.Context, id uuid.UUID) (*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lead, ok := s.leads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return lead.Clone(), nil
}

// ListLeads returns deep copies of all leads matching the filter, ordered
// by creation time.
func (s *Store) ListLeads(ctx context.Context, filter LeadFilter) ([]*domain.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Lead, 0, len(s.leads))
	for _, lead := range s.leads {
		if filter.Stage != "" && lead.Stage != filter.Stage {
			continue
		}
		if filter.Source != "" && lead.Source != filter.Source {
			continue
		}
		if filter.Priority != "" && lead.Priority != filter.Priority {
			continue
		}
		out = append(out, lead.Clone())
	}
	sortLeadsByCreatedAt(out)
	return out, nil
}

// SaveLead stores a deep copy of the lead, inserting or replacing.
func (s *Store) SaveLead(ctx context.Context, lead *domain.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leads[lead.ID] = lead.Clone()
	return nil
}

// GetCustomer returns a copy of the customer with the given id.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *customer
	clone.Phones = append([]string(nil), customer.Phones...)
	clone.Tags = append([]string(nil), customer.Tags...)
	return &clone, nil
}

// SaveCustomer stores a copy of the customer, inserting or replacing.
func (s *Store) SaveCustomer(ctx context.Context, customer *domain.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *customer
	clone.Phones = append([]string(nil), customer.Phones...)
	clone.Tags = append([]string(nil), customer.Tags...)
	s.customers[customer.ID] = &clone
	return nil
}

func sortLeadsByCreatedAt(leads []*domain.Lead) {
	sort.Slice(leads, func(i, j int) bool {
		if leads[i].CreatedAt.Equal(leads[j].CreatedAt) {
			return leads[i].ID.String() < leads[j].ID.String()
		}
		return leads[i].CreatedAt.Before(leads[j].CreatedAt)
	})
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"funnel_backend/internal/leads/domain"

	"github.com/google/uuid"
)

var storeNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func storedLead(t *testing.T, store *Store, email string, created time.Time) *domain.Lead {
	t.Helper()
	lead, err := domain.NewLead(domain.NewLeadParams{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		PrimaryEmail: email,
	}, created)
	if err != nil {
		t.Fatalf("NewLead failed: %v", err)
	}
	if err := store.SaveLead(context.Background(), lead); err != nil {
		t.Fatalf("SaveLead failed: %v", err)
	}
	return lead
}

func TestStore_GetLeadNotFound(t *testing.T) {
	store := NewStore()

	_, err := store.GetLead(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ReadsAreSnapshots(t *testing.T) {
	store := NewStore()
	lead := storedLead(t, store, "ana@acme.test", storeNow)

	first, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	first.Stage = domain.StageDisqualified
	first.AddTags([]string{"mutated"}, storeNow)

	second, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if second.Stage != domain.StageNew {
		t.Fatal("mutating a snapshot leaked into the store")
	}
	if len(second.Tags) != 0 {
		t.Fatal("mutating snapshot tags leaked into the store")
	}
}

func TestStore_SaveDetachesFromCaller(t *testing.T) {
	store := NewStore()
	lead := storedLead(t, store, "ana@acme.test", storeNow)

	// Mutating the caller's copy after save must not affect the store.
	lead.Stage = domain.StageDisqualified

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if stored.Stage != domain.StageNew {
		t.Fatal("store shares state with the caller's entity")
	}
}

func TestStore_ListFiltersAndOrders(t *testing.T) {
	store := NewStore()
	older := storedLead(t, store, "first@acme.test", storeNow.Add(-time.Hour))
	newer := storedLead(t, store, "second@acme.test", storeNow)

	newer.Stage = domain.StageContacted
	if err := store.SaveLead(context.Background(), newer); err != nil {
		t.Fatalf("SaveLead failed: %v", err)
	}

	all, err := store.ListLeads(context.Background(), LeadFilter{})
	if err != nil {
		t.Fatalf("ListLeads failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 leads, got %d", len(all))
	}
	if all[0].ID != older.ID || all[1].ID != newer.ID {
		t.Fatal("expected leads ordered by creation time")
	}

	contacted, err := store.ListLeads(context.Background(), LeadFilter{Stage: domain.StageContacted})
	if err != nil {
		t.Fatalf("ListLeads failed: %v", err)
	}
	if len(contacted) != 1 || contacted[0].ID != newer.ID {
		t.Fatalf("expected stage filter to match one lead, got %d", len(contacted))
	}
}

func TestStore_CustomerRoundTrip(t *testing.T) {
	store := NewStore()
	customer := &domain.Customer{
		ID:             uuid.New(),
		OriginalLeadID: uuid.New(),
		FirstName:      "Ana",
		LastName:       "Ruiz",
		Tags:           []string{"vip"},
		Tier:           domain.TierBronze,
		Status:         domain.CustomerActive,
	}

	if err := store.SaveCustomer(context.Background(), customer); err != nil {
		t.Fatalf("SaveCustomer failed: %v", err)
	}

	got, err := store.GetCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if got.OriginalLeadID != customer.OriginalLeadID {
		t.Fatal("expected originalLeadId preserved")
	}

	got.Tags[0] = "mutated"
	again, err := store.GetCustomer(context.Background(), customer.ID)
	if err != nil {
		t.Fatalf("GetCustomer failed: %v", err)
	}
	if again.Tags[0] != "vip" {
		t.Fatal("mutating a customer snapshot leaked into the store")
	}

	_, err = store.GetCustomer(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}
}

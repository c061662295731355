package funnel

import (
	"context"
	"errors"
	"testing"
	"time"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.Store) {
	t.Helper()
	store := repository.NewStore()
	bus := events.NewInMemoryBus(logger.New("development"))
	svc := New(store, bus, logger.New("development")).WithClock(func() time.Time { return testNow })
	return svc, store
}

func storeLead(t *testing.T, store *repository.Store, mutate func(*domain.Lead)) *domain.Lead {
	t.Helper()
	lead, err := domain.NewLead(domain.NewLeadParams{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		PrimaryEmail: "ana@acme.test",
	}, testNow)
	if err != nil {
		t.Fatalf("NewLead failed: %v", err)
	}
	if mutate != nil {
		mutate(lead)
	}
	if err := store.SaveLead(context.Background(), lead); err != nil {
		t.Fatalf("SaveLead failed: %v", err)
	}
	return lead
}

func TestTransition_PersistsAcceptedMove(t *testing.T) {
	svc, store := newTestService(t)
	lead := storeLead(t, store, nil)
	actor := uuid.New()

	moved, err := svc.Transition(context.Background(), lead.ID, domain.TransitionRequest{
		Target: domain.StageContacted,
	}, actor)
	if err != nil {
		t.Fatalf("Transition failed: %v", err)
	}
	if moved.Stage != domain.StageContacted {
		t.Errorf("expected contacted, got %s", moved.Stage)
	}

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if stored.Stage != domain.StageContacted {
		t.Errorf("expected committed stage contacted, got %s", stored.Stage)
	}
	if len(stored.Transitions) != 1 {
		t.Fatalf("expected 1 transition record, got %d", len(stored.Transitions))
	}
	if stored.Transitions[0].Actor != actor {
		t.Error("transition record must carry the acting user")
	}
}

func TestTransition_RejectedMoveLeavesStoreUntouched(t *testing.T) {
	svc, store := newTestService(t)
	lead := storeLead(t, store, nil)

	// new -> interested skips contacted and is rejected without an override.
	_, err := svc.Transition(context.Background(), lead.ID, domain.TransitionRequest{
		Target: domain.StageInterested,
	}, uuid.New())

	var illegal *domain.IllegalTransitionError
	if !errors.As(err, &illegal) {
		t.Fatalf("expected IllegalTransitionError, got %v", err)
	}
	if illegal.From != domain.StageNew || illegal.To != domain.StageInterested {
		t.Errorf("unexpected error detail: %+v", illegal)
	}

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if stored.Stage != domain.StageNew {
		t.Errorf("rejected move must not change the stored stage, got %s", stored.Stage)
	}
	if len(stored.Transitions) != 0 {
		t.Errorf("rejected move must not append history, got %d records", len(stored.Transitions))
	}
}

func TestTransition_GateBlocksSalesTierEntry(t *testing.T) {
	svc, store := newTestService(t)
	lead := storeLead(t, store, func(l *domain.Lead) {
		l.Stage = domain.StageQualified
	})

	_, err := svc.Transition(context.Background(), lead.ID, domain.TransitionRequest{
		Target: domain.StageEvaluating,
	}, uuid.New())

	var incomplete *domain.QualificationIncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected QualificationIncompleteError, got %v", err)
	}
	if len(incomplete.Missing) != 4 {
		t.Errorf("expected all four fields missing, got %v", incomplete.Missing)
	}
}

func TestDisqualify_FreeTextReasonFromAnyStage(t *testing.T) {
	svc, store := newTestService(t)
	lead := storeLead(t, store, func(l *domain.Lead) {
		l.Stage = domain.StageNurturing
	})

	moved, err := svc.Disqualify(context.Background(), lead.ID, "budget frozen until next fiscal year", uuid.New())
	if err != nil {
		t.Fatalf("Disqualify failed: %v", err)
	}
	if moved.Stage != domain.StageDisqualified {
		t.Fatalf("expected disqualified, got %s", moved.Stage)
	}
	if moved.Transitions[len(moved.Transitions)-1].Reason != "budget frozen until next fiscal year" {
		t.Error("free-text reason must be recorded on the transition")
	}
}

func TestEvaluate_IsAPureRead(t *testing.T) {
	svc, store := newTestService(t)
	lead := storeLead(t, store, func(l *domain.Lead) {
		l.Qualification = domain.Qualification{
			Budget:    domain.Budget50KTo100K,
			Authority: domain.AuthorityDecisionMaker,
			Need:      domain.NeedImportant,
			Timeline:  domain.TimelineShort,
		}
	})

	result, err := svc.Evaluate(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if !result.Complete || !result.Passing {
		t.Fatalf("expected complete passing evaluation, got %+v", result)
	}

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if !stored.UpdatedAt.Equal(lead.UpdatedAt) {
		t.Error("evaluation must not touch the stored lead")
	}
}

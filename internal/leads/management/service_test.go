package management

import (
	"context"
	"errors"
	"testing"
	"time"

	"funnel_backend/internal/events"
	"funnel_backend/internal/leads/domain"
	"funnel_backend/internal/leads/repository"
	"funnel_backend/internal/leads/transport"
	"funnel_backend/platform/apperr"
	"funnel_backend/platform/logger"

	"github.com/google/uuid"
)

var testNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *repository.Store, *events.InMemoryBus) {
	t.Helper()
	store := repository.NewStore()
	bus := events.NewInMemoryBus(logger.New("development"))
	svc := New(store, bus, logger.New("development")).WithClock(func() time.Time { return testNow })
	return svc, store, bus
}

func createTestLead(t *testing.T, svc *Service) *domain.Lead {
	t.Helper()
	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		PrimaryEmail: "ana@acme.test",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return lead
}

func TestCreate_NormalizesPhonesAndPublishes(t *testing.T) {
	svc, store, bus := newTestService(t)

	created := make(chan events.Event, 1)
	bus.Subscribe(events.LeadCreated{}.EventName(), events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		created <- e
		return nil
	}))

	lead, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		PrimaryEmail: "ana@acme.test",
		Phones:       []string{"(415) 555-2671"},
		Source:       "referral",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if lead.Phones[0] != "+14155552671" {
		t.Errorf("expected phone normalized to E.164, got %q", lead.Phones[0])
	}
	if lead.Source != domain.SourceReferral {
		t.Errorf("expected source referral, got %s", lead.Source)
	}

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("lead not stored: %v", err)
	}
	if stored.Stage != domain.StageNew {
		t.Errorf("expected stored lead in stage new, got %s", stored.Stage)
	}

	select {
	case e := <-created:
		if e.(events.LeadCreated).LeadID != lead.ID {
			t.Error("published event references wrong lead")
		}
	case <-time.After(time.Second):
		t.Fatal("expected LeadCreated event")
	}
}

func TestCreate_DomainValidationSurfaces(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Create(context.Background(), transport.CreateLeadRequest{
		FirstName:           "Ana",
		LastName:            "Ruiz",
		PrimaryEmail:        "ana@acme.test",
		PotentialValueCents: -100,
	})
	invalid, ok := err.(*domain.InvalidEntityError)
	if !ok {
		t.Fatalf("expected InvalidEntityError, got %v", err)
	}
	if invalid.Kind != domain.FieldNegativeValue {
		t.Fatalf("expected negative_value violation, got %s", invalid.Kind)
	}
}

func TestGetByID_UnknownLeadIsNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.GetByID(context.Background(), uuid.New())
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", err)
	}
}

func TestUpdate_TerminalLeadIsReadOnly(t *testing.T) {
	svc, store, _ := newTestService(t)
	lead := createTestLead(t, svc)

	lead.Stage = domain.StageConverted
	if err := store.SaveLead(context.Background(), lead); err != nil {
		t.Fatalf("SaveLead failed: %v", err)
	}

	company := "Acme"
	_, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{Company: &company})
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("expected conflict on terminal lead, got %v", err)
	}
}

func TestUpdate_PartialFieldsAndScoreRecompute(t *testing.T) {
	svc, _, _ := newTestService(t)
	lead := createTestLead(t, svc)

	value := int64(10_000_000)
	company := "Acme"
	updated, err := svc.Update(context.Background(), lead.ID, transport.UpdateLeadRequest{
		Company:             &company,
		PotentialValueCents: &value,
		Tags:                []string{"vip"},
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Company != "Acme" {
		t.Errorf("expected company updated, got %q", updated.Company)
	}
	if updated.FirstName != "Ana" {
		t.Error("unset fields must stay untouched")
	}
	if updated.Score <= lead.Score {
		t.Errorf("expected score recomputed upward with deal value, got %d -> %d", lead.Score, updated.Score)
	}
}

func TestUpdate_RejectsInvariantViolations(t *testing.T) {
	svc, store, _ := newTestService(t)
	lead := createTestLead(t, svc)

	blank := "   "
	negative := int64(-1)
	tests := []struct {
		name string
		req  transport.UpdateLeadRequest
		kind domain.FieldErrorKind
	}{
		{"blank first name", transport.UpdateLeadRequest{FirstName: &blank}, domain.FieldMissing},
		{"blank last name", transport.UpdateLeadRequest{LastName: &blank}, domain.FieldMissing},
		{"negative value", transport.UpdateLeadRequest{PotentialValueCents: &negative}, domain.FieldNegativeValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Update(context.Background(), lead.ID, tt.req)
			var invalid *domain.InvalidEntityError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidEntityError, got %v", err)
			}
			if invalid.Kind != tt.kind {
				t.Errorf("expected %s violation, got %s", tt.kind, invalid.Kind)
			}
		})
	}

	stored, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if stored.FirstName != "Ana" {
		t.Error("rejected updates must leave the stored lead unchanged")
	}
}

func TestLogActivity_AppendsAndRecomputes(t *testing.T) {
	svc, _, _ := newTestService(t)
	lead := createTestLead(t, svc)

	updated, err := svc.LogActivity(context.Background(), lead.ID, transport.LogActivityRequest{
		Type:        "demo_requested",
		Description: "asked for a demo on the call",
	})
	if err != nil {
		t.Fatalf("LogActivity failed: %v", err)
	}

	if len(updated.Activities) != 1 {
		t.Fatalf("expected 1 activity, got %d", len(updated.Activities))
	}
	if updated.Activities[0].Type != domain.ActivityDemoRequested {
		t.Errorf("unexpected activity type %s", updated.Activities[0].Type)
	}
	// floor 10 + demo weight 12 + recency 20 = 42.
	if updated.Score != 42 {
		t.Errorf("expected score 42 after demo request, got %d", updated.Score)
	}
}

func TestSetQualification_Incremental(t *testing.T) {
	svc, _, _ := newTestService(t)
	lead := createTestLead(t, svc)

	budget := "50k-100k"
	first, err := svc.SetQualification(context.Background(), lead.ID, transport.SetQualificationRequest{Budget: &budget})
	if err != nil {
		t.Fatalf("SetQualification failed: %v", err)
	}
	if first.Qualification.Budget != domain.Budget50KTo100K {
		t.Errorf("expected budget set, got %q", first.Qualification.Budget)
	}
	if first.Qualification.Complete() {
		t.Error("one field must not complete the record")
	}

	authority := "decision-maker"
	need := "important"
	timeline := "short"
	second, err := svc.SetQualification(context.Background(), lead.ID, transport.SetQualificationRequest{
		Authority: &authority,
		Need:      &need,
		Timeline:  &timeline,
	})
	if err != nil {
		t.Fatalf("SetQualification failed: %v", err)
	}
	if !second.Qualification.Complete() {
		t.Error("expected complete record after all four fields")
	}
	if second.Qualification.Budget != domain.Budget50KTo100K {
		t.Error("later partial updates must not clear earlier fields")
	}
}

func TestRecomputeScore_IdempotentAndSkipsTerminal(t *testing.T) {
	svc, store, _ := newTestService(t)
	lead := createTestLead(t, svc)

	first, err := svc.RecomputeScore(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("RecomputeScore failed: %v", err)
	}
	second, err := svc.RecomputeScore(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("RecomputeScore failed: %v", err)
	}
	if first.Score != second.Score {
		t.Fatalf("expected idempotent recompute, got %d then %d", first.Score, second.Score)
	}

	lead.Stage = domain.StageDisqualified
	lead.Score = 55
	if err := store.SaveLead(context.Background(), lead); err != nil {
		t.Fatalf("SaveLead failed: %v", err)
	}
	frozen, err := svc.RecomputeScore(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("RecomputeScore failed: %v", err)
	}
	if frozen.Score != 55 {
		t.Fatalf("expected terminal lead score frozen at 55, got %d", frozen.Score)
	}
}

func TestRaisePriority_NeverDemotes(t *testing.T) {
	svc, store, _ := newTestService(t)
	lead := createTestLead(t, svc)

	if err := svc.RaisePriority(context.Background(), lead.ID, domain.PriorityHigh); err != nil {
		t.Fatalf("RaisePriority failed: %v", err)
	}
	raised, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if raised.Priority != domain.PriorityHigh {
		t.Fatalf("expected priority high, got %s", raised.Priority)
	}

	if err := svc.RaisePriority(context.Background(), lead.ID, domain.PriorityLow); err != nil {
		t.Fatalf("RaisePriority failed: %v", err)
	}
	still, err := store.GetLead(context.Background(), lead.ID)
	if err != nil {
		t.Fatalf("GetLead failed: %v", err)
	}
	if still.Priority != domain.PriorityHigh {
		t.Fatalf("expected priority to stay high, got %s", still.Priority)
	}
}

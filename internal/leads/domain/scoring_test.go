package domain

import (
	"testing"
	"time"
)

var scoringNow = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

func untouchedLead(t *testing.T) *Lead {
	t.Helper()
	lead, err := NewLead(NewLeadParams{
		FirstName:    "Ana",
		LastName:     "Ruiz",
		PrimaryEmail: "ana@acme.test",
	}, scoringNow)
	if err != nil {
		t.Fatalf("NewLead failed: %v", err)
	}
	return lead
}

func TestComputeScore_UntouchedLeadScoresAtFloorNotZero(t *testing.T) {
	lead := untouchedLead(t)

	score := ComputeScore(lead, scoringNow)
	if score != 10 {
		t.Fatalf("expected floor score 10 for untouched lead, got %d", score)
	}
}

func TestComputeScore_AlwaysInRange(t *testing.T) {
	lead := untouchedLead(t)
	lead.PotentialValueCents = 50_000_000
	lead.Qualification = Qualification{
		Budget:    BudgetOver100K,
		Authority: AuthorityEconomicBuyer,
		Need:      NeedCritical,
		Timeline:  TimelineImmediate,
	}
	for i := 0; i < 200; i++ {
		if err := lead.AppendActivity(Activity{Type: ActivityPurchaseIntent}, scoringNow); err != nil {
			t.Fatalf("AppendActivity failed: %v", err)
		}
		score := ComputeScore(lead, scoringNow)
		if score < 0 || score > 100 {
			t.Fatalf("score out of range after %d activities: %d", i+1, score)
		}
	}
}

func TestComputeScore_Idempotent(t *testing.T) {
	lead := untouchedLead(t)
	if err := lead.AppendActivity(Activity{Type: ActivityCall}, scoringNow); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	lead.Qualification.Budget = Budget10KTo50K

	first := ComputeScore(lead, scoringNow)
	second := ComputeScore(lead, scoringNow)
	if first != second {
		t.Fatalf("expected idempotent score, got %d then %d", first, second)
	}
}

func TestComputeScore_PurchaseIntentOutweighsPageView(t *testing.T) {
	pageView := untouchedLead(t)
	if err := pageView.AppendActivity(Activity{Type: ActivityPageView}, scoringNow); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	intent := untouchedLead(t)
	if err := intent.AppendActivity(Activity{Type: ActivityPurchaseIntent}, scoringNow); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}

	if ComputeScore(intent, scoringNow) <= ComputeScore(pageView, scoringNow) {
		t.Fatalf("expected purchase_intent (%d) to outscore page_view (%d)",
			ComputeScore(intent, scoringNow), ComputeScore(pageView, scoringNow))
	}
}

func TestComputeScore_RecencyDecays(t *testing.T) {
	fresh := untouchedLead(t)
	if err := fresh.AppendActivity(Activity{Type: ActivityNote, OccurredAt: scoringNow}, scoringNow); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}
	stale := untouchedLead(t)
	if err := stale.AppendActivity(Activity{Type: ActivityNote, OccurredAt: scoringNow.AddDate(0, 0, -120)}, scoringNow); err != nil {
		t.Fatalf("AppendActivity failed: %v", err)
	}

	freshScore := ComputeScore(fresh, scoringNow)
	staleScore := ComputeScore(stale, scoringNow)
	if freshScore <= staleScore {
		t.Fatalf("expected fresh activity (%d) to outscore 120-day-old activity (%d)", freshScore, staleScore)
	}
	// A same-day note is worth floor 10 + weight 2 + recency 20.
	if freshScore != 32 {
		t.Fatalf("expected fresh note score 32, got %d", freshScore)
	}
	// Beyond 90 days the recency contribution is gone entirely.
	if staleScore != 12 {
		t.Fatalf("expected stale note score 12, got %d", staleScore)
	}
}

func TestComputeScore_QualificationFieldsContributeFixedIncrement(t *testing.T) {
	lead := untouchedLead(t)
	base := ComputeScore(lead, scoringNow)

	lead.Qualification.Budget = Budget50KTo100K
	one := ComputeScore(lead, scoringNow)
	if one != base+5 {
		t.Fatalf("expected one BANT field to add 5, got %d -> %d", base, one)
	}

	lead.Qualification.Authority = AuthorityDecisionMaker
	lead.Qualification.Need = NeedImportant
	lead.Qualification.Timeline = TimelineShort
	all := ComputeScore(lead, scoringNow)
	if all != base+20 {
		t.Fatalf("expected four BANT fields to add 20, got %d -> %d", base, all)
	}
}

func TestComputeScore_PotentialValueBrackets(t *testing.T) {
	tests := []struct {
		valueCents int64
		want       int
	}{
		{0, 10},
		{50_000, 12},        // $500
		{1_000_000, 15},     // $10k
		{10_000_000, 20},    // $100k
		{1_000_000_000, 20}, // $10M, capped
	}

	for _, tt := range tests {
		lead := untouchedLead(t)
		lead.PotentialValueCents = tt.valueCents
		if got := ComputeScore(lead, scoringNow); got != tt.want {
			t.Errorf("value %d cents: expected score %d, got %d", tt.valueCents, tt.want, got)
		}
	}
}

func TestComputeScore_EngagementCapped(t *testing.T) {
	lead := untouchedLead(t)
	for i := 0; i < 50; i++ {
		if err := lead.AppendActivity(Activity{Type: ActivityPurchaseIntent, OccurredAt: scoringNow}, scoringNow); err != nil {
			t.Fatalf("AppendActivity failed: %v", err)
		}
	}

	// floor 10 + engagement cap 40 + recency 20 = 70.
	if got := ComputeScore(lead, scoringNow); got != 70 {
		t.Fatalf("expected capped engagement score 70, got %d", got)
	}
}

// Package domain provides core business rules for the lead lifecycle:
// the entity model, the stage transition machine, BANT qualification and
// lead scoring. It is pure in-memory computation; persistence and
// transport live elsewhere. Callers must serialize concurrent operations
// on the same lead (single writer per entity); operations on different
// leads are independent.
package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Source records how a lead entered the funnel.
type Source string

const (
	SourceManual     Source = "manual"
	SourceImport     Source = "import"
	SourceReferral   Source = "referral"
	SourceLinkedIn   Source = "linkedin"
	SourceEnrichment Source = "enrichment"
)

// Priority is the agent-facing triage level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Outranks reports whether p is a strictly higher triage level than other.
func (p Priority) Outranks(other Priority) bool {
	return priorityRank[p] > priorityRank[other]
}

// CompanySizeBracket buckets the lead's organization headcount.
type CompanySizeBracket string

const (
	CompanySizeMicro      CompanySizeBracket = "1-10"
	CompanySizeSmall      CompanySizeBracket = "11-50"
	CompanySizeMedium     CompanySizeBracket = "51-200"
	CompanySizeLarge      CompanySizeBracket = "201-1000"
	CompanySizeEnterprise CompanySizeBracket = "1000+"
)

// ActivityType classifies logged engagement.
type ActivityType string

const (
	ActivityNote           ActivityType = "note"
	ActivityCall           ActivityType = "call"
	ActivityEmailSent      ActivityType = "email_sent"
	ActivityEmailOpen      ActivityType = "email_open"
	ActivityPageView       ActivityType = "page_view"
	ActivityMeeting        ActivityType = "meeting"
	ActivityDemoRequested  ActivityType = "demo_requested"
	ActivityProposalViewed ActivityType = "proposal_viewed"
	ActivityPurchaseIntent ActivityType = "purchase_intent"
)

// IsHighIntent reports whether the activity type signals purchase readiness.
func (t ActivityType) IsHighIntent() bool {
	return t == ActivityDemoRequested || t == ActivityPurchaseIntent
}

// Activity is one append-only engagement record.
type Activity struct {
	ID          uuid.UUID    `json:"id"`
	Type        ActivityType `json:"type"`
	Description string       `json:"description,omitempty"`
	ValueCents  int64        `json:"valueCents,omitempty"`
	OccurredAt  time.Time    `json:"occurredAt"`
}

// StageTransition is one append-only funnel-history record.
type StageTransition struct {
	From       Stage     `json:"from"`
	To         Stage     `json:"to"`
	Reason     string    `json:"reason,omitempty"`
	Override   bool      `json:"override,omitempty"`
	Actor      uuid.UUID `json:"actor"`
	OccurredAt time.Time `json:"occurredAt"`
}

// Lead is a prospect under active pursuit.
type Lead struct {
	ID uuid.UUID `json:"id"`

	FirstName      string             `json:"firstName"`
	LastName       string             `json:"lastName"`
	PrimaryEmail   string             `json:"primaryEmail"`
	SecondaryEmail string             `json:"secondaryEmail,omitempty"`
	Phones         []string           `json:"phones,omitempty"`
	Company        string             `json:"company,omitempty"`
	JobTitle       string             `json:"jobTitle,omitempty"`
	Industry       string             `json:"industry,omitempty"`
	CompanySize    CompanySizeBracket `json:"companySize,omitempty"`
	Location       string             `json:"location,omitempty"`

	Source   Source   `json:"source"`
	Stage    Stage    `json:"stage"`
	Score    int      `json:"score"`
	Priority Priority `json:"priority"`

	Qualification Qualification `json:"qualification"`

	PotentialValueCents int64 `json:"potentialValueCents"`
	Probability         int   `json:"probability"`

	Activities  []Activity        `json:"activities"`
	Transitions []StageTransition `json:"transitions"`
	Tags        []string          `json:"tags,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewLeadParams holds the caller-supplied fields for lead construction.
type NewLeadParams struct {
	FirstName           string
	LastName            string
	PrimaryEmail        string
	SecondaryEmail      string
	Phones              []string
	Company             string
	JobTitle            string
	Industry            string
	CompanySize         CompanySizeBracket
	Location            string
	Source              Source
	Priority            Priority
	PotentialValueCents int64
	Tags                []string
}

var validate = validator.New()

// NewLead constructs a validated Lead in the initial stage. Construction
// requires non-empty name parts, a syntactically valid primary email and a
// non-negative potential value; violations surface as InvalidEntityError.
func NewLead(params NewLeadParams, now time.Time) (*Lead, error) {
	if strings.TrimSpace(params.FirstName) == "" {
		return nil, &InvalidEntityError{Field: "firstName", Kind: FieldMissing}
	}
	if strings.TrimSpace(params.LastName) == "" {
		return nil, &InvalidEntityError{Field: "lastName", Kind: FieldMissing}
	}
	if strings.TrimSpace(params.PrimaryEmail) == "" {
		return nil, &InvalidEntityError{Field: "primaryEmail", Kind: FieldMissing}
	}
	if err := validate.Var(params.PrimaryEmail, "email"); err != nil {
		return nil, &InvalidEntityError{Field: "primaryEmail", Kind: FieldInvalidFormat}
	}
	if params.SecondaryEmail != "" {
		if err := validate.Var(params.SecondaryEmail, "email"); err != nil {
			return nil, &InvalidEntityError{Field: "secondaryEmail", Kind: FieldInvalidFormat}
		}
	}
	if params.PotentialValueCents < 0 {
		return nil, &InvalidEntityError{Field: "potentialValue", Kind: FieldNegativeValue}
	}

	source := params.Source
	if source == "" {
		source = SourceManual
	}
	priority := params.Priority
	if priority == "" {
		priority = PriorityMedium
	}

	lead := &Lead{
		ID:                  uuid.New(),
		FirstName:           strings.TrimSpace(params.FirstName),
		LastName:            strings.TrimSpace(params.LastName),
		PrimaryEmail:        strings.TrimSpace(params.PrimaryEmail),
		SecondaryEmail:      strings.TrimSpace(params.SecondaryEmail),
		Phones:              append([]string(nil), params.Phones...),
		Company:             params.Company,
		JobTitle:            params.JobTitle,
		Industry:            params.Industry,
		CompanySize:         params.CompanySize,
		Location:            params.Location,
		Source:              source,
		Stage:               StageNew,
		Priority:            priority,
		PotentialValueCents: params.PotentialValueCents,
		Activities:          []Activity{},
		Transitions:         []StageTransition{},
		Tags:                dedupeTags(params.Tags),
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	lead.Score = ComputeScore(lead, now)
	return lead, nil
}

// IsMutable reports whether the lead still accepts mutations. Converted
// and disqualified leads are read-only.
func (l *Lead) IsMutable() bool {
	return !l.Stage.IsTerminal()
}

// AppendActivity appends an engagement record and bumps UpdatedAt.
// Fails when the lead has reached a terminal stage.
func (l *Lead) AppendActivity(activity Activity, now time.Time) error {
	if !l.IsMutable() {
		return &IllegalTransitionError{From: l.Stage, To: l.Stage, Detail: "lead is read-only in a terminal stage"}
	}
	if activity.ID == uuid.Nil {
		activity.ID = uuid.New()
	}
	if activity.OccurredAt.IsZero() {
		activity.OccurredAt = now
	}
	l.Activities = append(l.Activities, activity)
	l.UpdatedAt = now
	return nil
}

// ApplyTransition validates and commits a stage change: it checks
// reachability, enforces the tier-boundary qualification gate, appends the
// transition record, updates the stage and recomputes the score. On any
// failure the lead is unchanged.
func (l *Lead) ApplyTransition(req TransitionRequest, actor uuid.UUID, policy Policy, now time.Time) error {
	if err := ValidateTransition(l.Stage, req); err != nil {
		return err
	}
	if RequiresQualificationGate(l.Stage, req.Target) {
		result := EvaluateQualification(l, policy)
		if !result.Complete || !result.Passing {
			return &QualificationIncompleteError{Missing: result.Missing, Passing: result.Passing}
		}
	}

	l.Transitions = append(l.Transitions, StageTransition{
		From:       l.Stage,
		To:         req.Target,
		Reason:     string(req.Reason),
		Override:   req.Override,
		Actor:      actor,
		OccurredAt: now,
	})
	l.Stage = req.Target
	l.UpdatedAt = now
	l.Score = ComputeScore(l, now)
	return nil
}

// LastActivityAt returns the timestamp of the most recent activity, or the
// zero time when none exist.
func (l *Lead) LastActivityAt() time.Time {
	if len(l.Activities) == 0 {
		return time.Time{}
	}
	return l.Activities[len(l.Activities)-1].OccurredAt
}

// AddTags merges tags into the deduplicated tag set.
func (l *Lead) AddTags(tags []string, now time.Time) {
	l.Tags = dedupeTags(append(append([]string(nil), l.Tags...), tags...))
	l.UpdatedAt = now
}

// Clone returns a deep copy so callers can hand out snapshots without
// exposing internal slices.
func (l *Lead) Clone() *Lead {
	if l == nil {
		return nil
	}
	clone := *l
	clone.Phones = slices.Clone(l.Phones)
	clone.Activities = slices.Clone(l.Activities)
	clone.Transitions = slices.Clone(l.Transitions)
	clone.Tags = slices.Clone(l.Tags)
	return &clone
}

func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

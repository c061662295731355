package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerTier is the post-sale commercial tier.
type CustomerTier string

const (
	TierBronze  CustomerTier = "bronze"
	TierSilver  CustomerTier = "silver"
	TierGold    CustomerTier = "gold"
	TierPremium CustomerTier = "premium"
)

// CustomerStatus is the post-sale account status.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "active"
	CustomerInactive CustomerStatus = "inactive"
)

// lifetimeValueMultiplier is the deterministic default used to seed
// lifetime value from total spent when the caller supplies neither.
const lifetimeValueMultiplier = 3

// Customer is the converted form of a qualified lead. Post-sale commercial
// attributes are owned by downstream processes; conversion only guarantees
// they start out consistent.
type Customer struct {
	ID             uuid.UUID `json:"id"`
	OriginalLeadID uuid.UUID `json:"originalLeadId"`

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
	Tags           []string           `json:"tags,omitempty"`

	MovedFromStage  Stage     `json:"movedFromStage"`
	MovedDate       time.Time `json:"movedDate"`
	ConversionNotes string    `json:"conversionNotes,omitempty"`

	Tier               CustomerTier   `json:"tier"`
	Status             CustomerStatus `json:"status"`
	LifetimeValueCents int64          `json:"lifetimeValueCents"`
	TotalSpentCents    int64          `json:"totalSpentCents"`
	OrderCount         int            `json:"orderCount"`

	CreatedAt time.Time `json:"createdAt"`
}

// ConversionParams carries optional overrides for the new customer's
// commercial fields. Zero values fall back to deterministic defaults.
type ConversionParams struct {
	Notes              string
	Tier               CustomerTier
	TotalSpentCents    int64
	LifetimeValueCents int64
	OrderCount         int
}

// ConvertLead materializes a Customer from a qualified lead and marks the
// lead converted (read-only from then on). Preconditions: the lead's stage
// is qualified or anywhere in the sales tier, and its qualification record
// evaluates complete and passing. Nothing is mutated on failure.
//
// MovedFromStage preserves provenance: the current stage when converting
// from a tier-terminal stage (qualified, ready_to_close), otherwise the
// hand-off boundary stage qualified, since mid-tier sales progress does not
// change where the lead was qualified.
func ConvertLead(lead *Lead, params ConversionParams, actor uuid.UUID, policy Policy, now time.Time) (*Customer, error) {
	if lead.Stage.IsTerminal() {
		return nil, &PreconditionError{Condition: "lead is already in a terminal stage"}
	}
	if lead.Stage != StageQualified && lead.Stage.TierOf() != TierSales {
		return nil, &PreconditionError{Condition: "lead has not reached a qualified stage"}
	}
	result := EvaluateQualification(lead, policy)
	if !result.Complete {
		return nil, &PreconditionError{Condition: "qualification record is incomplete"}
	}
	if !result.Passing {
		return nil, &PreconditionError{Condition: "qualification does not pass the current policy"}
	}

	movedFrom := lead.Stage
	if movedFrom != StageQualified && movedFrom != StageReadyToClose {
		movedFrom = StageQualified
	}

	tier := params.Tier
	if tier == "" {
		tier = TierBronze
	}
	lifetimeValue := params.LifetimeValueCents
	if lifetimeValue == 0 {
		lifetimeValue = params.TotalSpentCents * lifetimeValueMultiplier
	}

	customer := &Customer{
		ID:                 uuid.New(),
		OriginalLeadID:     lead.ID,
		FirstName:          lead.FirstName,
		LastName:           lead.LastName,
		PrimaryEmail:       lead.PrimaryEmail,
		SecondaryEmail:     lead.SecondaryEmail,
		Phones:             append([]string(nil), lead.Phones...),
		Company:            lead.Company,
		JobTitle:           lead.JobTitle,
		Industry:           lead.Industry,
		CompanySize:        lead.CompanySize,
		Location:           lead.Location,
		Tags:               append([]string(nil), lead.Tags...),
		MovedFromStage:     movedFrom,
		MovedDate:          now,
		ConversionNotes:    params.Notes,
		Tier:               tier,
		Status:             CustomerActive,
		LifetimeValueCents: lifetimeValue,
		TotalSpentCents:    params.TotalSpentCents,
		OrderCount:         params.OrderCount,
		CreatedAt:          now,
	}

	lead.Transitions = append(lead.Transitions, StageTransition{
		From:       lead.Stage,
		To:         StageConverted,
		Reason:     "converted to customer",
		Actor:      actor,
		OccurredAt: now,
	})
	lead.Stage = StageConverted
	lead.UpdatedAt = now

	return customer, nil
}

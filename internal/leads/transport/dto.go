// Package transport defines the request DTOs for the leads bounded
// context. Responses serialize the domain entities directly.
package transport

import "time"

// CreateLeadRequest carries the fields for lead construction.
type CreateLeadRequest struct {
	FirstName           string   `json:"firstName" validate:"required,min=1,max=100"`
	LastName            string   `json:"lastName" validate:"required,min=1,max=100"`
	PrimaryEmail        string   `json:"primaryEmail" validate:"required,email"`
	SecondaryEmail      string   `json:"secondaryEmail,omitempty" validate:"omitempty,email"`
	Phones              []string `json:"phones,omitempty" validate:"omitempty,dive,min=5,max=20"`
	Company             string   `json:"company,omitempty" validate:"max=200"`
	JobTitle            string   `json:"jobTitle,omitempty" validate:"max=200"`
	Industry            string   `json:"industry,omitempty" validate:"max=100"`
	CompanySize         string   `json:"companySize,omitempty" validate:"omitempty,oneof=1-10 11-50 51-200 201-1000 1000+"`
	Location            string   `json:"location,omitempty" validate:"max=200"`
	Source              string   `json:"source,omitempty" validate:"omitempty,oneof=manual import referral linkedin enrichment"`
	Priority            string   `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	PotentialValueCents int64    `json:"potentialValueCents"`
	Tags                []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// UpdateLeadRequest carries partial contact/commercial updates. Nil fields
// are left untouched.
type UpdateLeadRequest struct {
	FirstName           *string  `json:"firstName,omitempty" validate:"omitempty,min=1,max=100"`
	LastName            *string  `json:"lastName,omitempty" validate:"omitempty,min=1,max=100"`
	SecondaryEmail      *string  `json:"secondaryEmail,omitempty" validate:"omitempty,email"`
	Phones              []string `json:"phones,omitempty" validate:"omitempty,dive,min=5,max=20"`
	Company             *string  `json:"company,omitempty" validate:"omitempty,max=200"`
	JobTitle            *string  `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
	Industry            *string  `json:"industry,omitempty" validate:"omitempty,max=100"`
	CompanySize         *string  `json:"companySize,omitempty" validate:"omitempty,oneof=1-10 11-50 51-200 201-1000 1000+"`
	Location            *string  `json:"location,omitempty" validate:"omitempty,max=200"`
	Priority            *string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high"`
	PotentialValueCents *int64   `json:"potentialValueCents,omitempty" validate:"omitempty,gte=0"`
	Probability         *int     `json:"probability,omitempty" validate:"omitempty,gte=0,lte=100"`
	Tags                []string `json:"tags,omitempty" validate:"omitempty,dive,min=1,max=50"`
}

// LogActivityRequest appends one engagement record.
type LogActivityRequest struct {
	Type        string     `json:"type" validate:"required,oneof=note call email_sent email_open page_view meeting demo_requested proposal_viewed purchase_intent"`
	Description string     `json:"description,omitempty" validate:"max=2000"`
	ValueCents  int64      `json:"valueCents,omitempty" validate:"gte=0"`
	OccurredAt  *time.Time `json:"occurredAt,omitempty"`
}

// SetQualificationRequest sets BANT fields. Each field is optional so
// qualification can be recorded incrementally.
type SetQualificationRequest struct {
	Budget    *string `json:"budget,omitempty" validate:"omitempty,oneof=under-10k 10k-50k 50k-100k over-100k"`
	Authority *string `json:"authority,omitempty" validate:"omitempty,oneof=unknown gatekeeper influencer decision-maker economic-buyer"`
	Need      *string `json:"need,omitempty" validate:"omitempty,oneof=nice-to-have important critical"`
	Timeline  *string `json:"timeline,omitempty" validate:"omitempty,oneof=immediate short medium long"`
}

// TransitionRequest moves a lead to a target stage. Override moves must
// carry a reason from the fixed enumeration.
type TransitionRequest struct {
	TargetStage string `json:"targetStage" validate:"required"`
	Override    bool   `json:"override,omitempty"`
	Reason      string `json:"reason,omitempty" validate:"omitempty,oneof=showed_interest budget_confirmed decision_maker demo_requested timeline_established pain_points_identified other"`
}

// DisqualifyRequest moves a lead to the disqualified terminal stage.
type DisqualifyRequest struct {
	Reason string `json:"reason" validate:"required,min=1,max=500"`
}

// ConvertLeadRequest materializes a customer from a qualified lead.
type ConvertLeadRequest struct {
	Notes              string `json:"notes,omitempty" validate:"max=2000"`
	Tier               string `json:"tier,omitempty" validate:"omitempty,oneof=bronze silver gold premium"`
	TotalSpentCents    int64  `json:"totalSpentCents,omitempty" validate:"gte=0"`
	LifetimeValueCents int64  `json:"lifetimeValueCents,omitempty" validate:"gte=0"`
	OrderCount         int    `json:"orderCount,omitempty" validate:"gte=0"`
}

// ListLeadsRequest filters the lead listing.
type ListLeadsRequest struct {
	Stage    string `form:"stage" validate:"omitempty"`
	Source   string `form:"source" validate:"omitempty,oneof=manual import referral linkedin enrichment"`
	Priority string `form:"priority" validate:"omitempty,oneof=low medium high"`
}

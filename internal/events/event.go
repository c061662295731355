package events

import (
	platformevents "funnel_backend/platform/events"

	"github.com/google/uuid"
)

// LeadCreated is published when a new lead enters the funnel.
type LeadCreated struct {
	platformevents.BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	Source string    `json:"source"`
}

// EventName returns the unique event identifier.
func (e LeadCreated) EventName() string { return "leads.created" }

// LeadActivityLogged is published when an engagement record is appended.
type LeadActivityLogged struct {
	platformevents.BaseEvent
	LeadID       uuid.UUID `json:"leadId"`
	ActivityType string    `json:"activityType"`
}

// EventName returns the unique event identifier.
func (e LeadActivityLogged) EventName() string { return "leads.activity_logged" }

// LeadStageChanged is published after a successful funnel transition.
type LeadStageChanged struct {
	platformevents.BaseEvent
	LeadID   uuid.UUID `json:"leadId"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Override bool      `json:"override"`
	Actor    uuid.UUID `json:"actor"`
}

// EventName returns the unique event identifier.
func (e LeadStageChanged) EventName() string { return "leads.stage_changed" }

// LeadConverted is published when a lead is materialized into a customer.
type LeadConverted struct {
	platformevents.BaseEvent
	LeadID     uuid.UUID `json:"leadId"`
	CustomerID uuid.UUID `json:"customerId"`
	Actor      uuid.UUID `json:"actor"`
}

// EventName returns the unique event identifier.
func (e LeadConverted) EventName() string { return "leads.converted" }

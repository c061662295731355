package domain

// Stage identifies a lead's position in the funnel.
type Stage string

// Top tier: initial qualification funnel.
const (
	StageNew        Stage = "new"
	StageContacted  Stage = "contacted"
	StageInterested Stage = "interested"
	StageNurturing  Stage = "nurturing"
	StageQualified  Stage = "qualified"
)

// Middle tier: post hand-off sales pipeline.
const (
	StageEvaluating    Stage = "evaluating"
	StageDemoRequested Stage = "demo_requested"
	StageProposalSent  Stage = "proposal_sent"
	StageNegotiating   Stage = "negotiating"
	StageReadyToClose  Stage = "ready_to_close"
)

// Terminal stages.
const (
	StageConverted    Stage = "converted"
	StageDisqualified Stage = "disqualified"
)

// Tier groups stages into funnel tiers.
type Tier int

const (
	TierUnknown Tier = iota
	TierTop
	TierSales
	TierTerminal
)

var topTierOrder = []Stage{StageNew, StageContacted, StageInterested, StageNurturing, StageQualified}

var salesTierOrder = []Stage{StageEvaluating, StageDemoRequested, StageProposalSent, StageNegotiating, StageReadyToClose}

// OverrideReason is the mandatory justification attached to a stage skip
// or backward move.
type OverrideReason string

const (
	ReasonShowedInterest       OverrideReason = "showed_interest"
	ReasonBudgetConfirmed      OverrideReason = "budget_confirmed"
	ReasonDecisionMaker        OverrideReason = "decision_maker"
	ReasonDemoRequested        OverrideReason = "demo_requested"
	ReasonTimelineEstablished  OverrideReason = "timeline_established"
	ReasonPainPointsIdentified OverrideReason = "pain_points_identified"
	ReasonOther                OverrideReason = "other"
)

var knownOverrideReasons = map[OverrideReason]struct{}{
	ReasonShowedInterest:       {},
	ReasonBudgetConfirmed:      {},
	ReasonDecisionMaker:        {},
	ReasonDemoRequested:        {},
	ReasonTimelineEstablished:  {},
	ReasonPainPointsIdentified: {},
	ReasonOther:                {},
}

// IsKnownOverrideReason reports whether reason is part of the fixed enumeration.
func IsKnownOverrideReason(reason OverrideReason) bool {
	_, ok := knownOverrideReasons[reason]
	return ok
}

// IsKnownStage reports whether stage is a defined funnel stage.
func IsKnownStage(stage Stage) bool {
	return stage.TierOf() != TierUnknown
}

// TierOf returns the funnel tier the stage belongs to.
func (s Stage) TierOf() Tier {
	switch s {
	case StageNew, StageContacted, StageInterested, StageNurturing, StageQualified:
		return TierTop
	case StageEvaluating, StageDemoRequested, StageProposalSent, StageNegotiating, StageReadyToClose:
		return TierSales
	case StageConverted, StageDisqualified:
		return TierTerminal
	default:
		return TierUnknown
	}
}

// IsTerminal reports whether the stage permits no further transitions.
func (s Stage) IsTerminal() bool {
	return s == StageConverted || s == StageDisqualified
}

// indexInTier returns the position of s within its tier's forward path,
// or -1 for terminal/unknown stages.
func (s Stage) indexInTier() int {
	order := topTierOrder
	if s.TierOf() == TierSales {
		order = salesTierOrder
	}
	for i, stage := range order {
		if stage == s {
			return i
		}
	}
	return -1
}

// nextStage returns the immediate successor of s along the funnel,
// crossing the qualified -> evaluating tier boundary. Returns "" when s
// has no successor.
func nextStage(s Stage) Stage {
	if s == StageQualified {
		return StageEvaluating
	}
	idx := s.indexInTier()
	if idx < 0 {
		return ""
	}
	order := topTierOrder
	if s.TierOf() == TierSales {
		order = salesTierOrder
	}
	if idx+1 >= len(order) {
		return ""
	}
	return order[idx+1]
}

// TransitionRequest carries everything needed to validate and record a
// stage change.
type TransitionRequest struct {
	Target   Stage
	Override bool
	Reason   OverrideReason
}

// ValidateTransition checks whether a lead in stage current may move to
// req.Target. The qualification gate for entering the sales tier is
// enforced separately by the caller (see RequiresQualificationGate);
// this function covers reachability only.
//
// Rules:
//   - terminal stages accept no transitions;
//   - converted is never a transition target (conversion is its own operation);
//   - disqualified is reachable from any non-terminal stage;
//   - without an override, only the single forward step along the funnel
//     path is legal;
//   - with an override, any non-terminal stage is reachable, but the
//     override must carry a reason from the fixed enumeration.
func ValidateTransition(current Stage, req TransitionRequest) error {
	if !IsKnownStage(req.Target) {
		return &IllegalTransitionError{From: current, To: req.Target, Detail: "unknown target stage"}
	}
	if current.IsTerminal() {
		return &IllegalTransitionError{From: current, To: req.Target, Detail: "lead is in a terminal stage"}
	}
	if req.Target == StageConverted {
		return &IllegalTransitionError{From: current, To: req.Target, Detail: "conversion must go through the conversion service"}
	}
	if req.Target == current {
		return &IllegalTransitionError{From: current, To: req.Target, Detail: "lead is already in this stage"}
	}
	if req.Target == StageDisqualified {
		return nil
	}

	if req.Override {
		if !IsKnownOverrideReason(req.Reason) {
			return &IllegalTransitionError{From: current, To: req.Target, Detail: "override requires a known reason code"}
		}
		return nil
	}

	if nextStage(current) != req.Target {
		return &IllegalTransitionError{From: current, To: req.Target, Detail: "not the next stage in the funnel; use an override with a reason"}
	}
	return nil
}

// RequiresQualificationGate reports whether moving current -> target crosses
// the top tier hand-off boundary. Any entry into the sales tier from the top
// tier requires a complete and passing qualification, overrides included.
func RequiresQualificationGate(current, target Stage) bool {
	return current.TierOf() == TierTop && target.TierOf() == TierSales
}

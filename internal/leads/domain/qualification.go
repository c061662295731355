package domain

// BudgetBracket buckets the prospect's stated budget.
type BudgetBracket string

const (
	BudgetUnder10K  BudgetBracket = "under-10k"
	Budget10KTo50K  BudgetBracket = "10k-50k"
	Budget50KTo100K BudgetBracket = "50k-100k"
	BudgetOver100K  BudgetBracket = "over-100k"
)

// AuthorityLevel describes the contact's buying authority.
type AuthorityLevel string

const (
	AuthorityUnknown       AuthorityLevel = "unknown"
	AuthorityGatekeeper    AuthorityLevel = "gatekeeper"
	AuthorityInfluencer    AuthorityLevel = "influencer"
	AuthorityDecisionMaker AuthorityLevel = "decision-maker"
	AuthorityEconomicBuyer AuthorityLevel = "economic-buyer"
)

// NeedUrgency describes how pressing the prospect's need is.
type NeedUrgency string

const (
	NeedNiceToHave NeedUrgency = "nice-to-have"
	NeedImportant  NeedUrgency = "important"
	NeedCritical   NeedUrgency = "critical"
)

// TimelineBracket buckets the expected decision timeline.
type TimelineBracket string

const (
	TimelineImmediate TimelineBracket = "immediate"
	TimelineShort     TimelineBracket = "short"
	TimelineMedium    TimelineBracket = "medium"
	TimelineLong      TimelineBracket = "long"
)

// Qualification is the BANT record. Each field stays empty until an agent
// attempts qualification; the record is complete only when all four are set.
type Qualification struct {
	Budget    BudgetBracket   `json:"budget,omitempty"`
	Authority AuthorityLevel  `json:"authority,omitempty"`
	Need      NeedUrgency     `json:"need,omitempty"`
	Timeline  TimelineBracket `json:"timeline,omitempty"`
}

// Complete reports whether all four BANT fields are set.
func (q Qualification) Complete() bool {
	return q.Budget != "" && q.Authority != "" && q.Need != "" && q.Timeline != ""
}

// MissingFields lists the unset BANT fields in a stable order.
func (q Qualification) MissingFields() []string {
	var missing []string
	if q.Budget == "" {
		missing = append(missing, "budget")
	}
	if q.Authority == "" {
		missing = append(missing, "authority")
	}
	if q.Need == "" {
		missing = append(missing, "need")
	}
	if q.Timeline == "" {
		missing = append(missing, "timeline")
	}
	return missing
}

// QualificationResult is the evaluator's decision. It never mutates the lead.
type QualificationResult struct {
	Complete bool     `json:"complete"`
	Passing  bool     `json:"passing"`
	Missing  []string `json:"missing,omitempty"`
}

// Policy decides whether a complete qualification record passes. Call sites
// may supply stricter policies without changing the evaluator's shape.
type Policy func(q Qualification) bool

// DefaultPolicy requires a budget above the lowest bracket, an identified
// contact with real authority, at least an important need and at most a
// medium-term timeline.
func DefaultPolicy(q Qualification) bool {
	if q.Budget == BudgetUnder10K {
		return false
	}
	if q.Authority == AuthorityUnknown || q.Authority == AuthorityGatekeeper {
		return false
	}
	if q.Need == NeedNiceToHave {
		return false
	}
	if q.Timeline == TimelineLong {
		return false
	}
	return true
}

// EvaluateQualification applies the policy to the lead's qualification
// record. Passing is only meaningful when the record is complete; an
// incomplete record never passes.
func EvaluateQualification(lead *Lead, policy Policy) QualificationResult {
	if policy == nil {
		policy = DefaultPolicy
	}
	q := lead.Qualification
	if !q.Complete() {
		return QualificationResult{
			Complete: false,
			Passing:  false,
			Missing:  q.MissingFields(),
		}
	}
	return QualificationResult{
		Complete: true,
		Passing:  policy(q),
	}
}

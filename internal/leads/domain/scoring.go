package domain

import (
	"math"
	"time"
)

const (
	// ScoreVersion identifies the scoring model in sweep logs so score
	// changes can be attributed to model revisions. Bump it when the
	// weights or factor caps change.
	ScoreVersion = "2026-v1"

	// scoreFloor is the score of a lead with no activities and no
	// qualification data. Non-zero so an untouched lead reads as
	// "unstarted" rather than "failed".
	scoreFloor = 10.0

	// Maximum contribution from each factor category. Floor plus the
	// category caps stays within the 0-100 range.
	maxEngagementContribution    = 40.0
	maxRecencyContribution       = 20.0
	maxQualificationContribution = 20.0
	maxValueContribution         = 10.0

	// Each BANT field present contributes a fixed increment.
	qualificationFieldIncrement = 5.0
)

// activityWeights defines how much each engagement type contributes.
// Purchase-intent signals weigh more than passive ones.
var activityWeights = map[ActivityType]float64{
	ActivityPageView:       1,
	ActivityEmailOpen:      2,
	ActivityEmailSent:      2,
	ActivityNote:           2,
	ActivityCall:           5,
	ActivityMeeting:        8,
	ActivityProposalViewed: 10,
	ActivityDemoRequested:  12,
	ActivityPurchaseIntent: 15,
}

// ComputeScore derives a 0-100 score from the lead snapshot. It is
// deterministic and idempotent for a fixed snapshot and clock reading, and
// never mutates the lead.
func ComputeScore(lead *Lead, now time.Time) int {
	score := scoreFloor

	score += engagementContribution(lead.Activities)
	score += recencyContribution(lead.LastActivityAt(), now)
	score += qualificationContribution(lead.Qualification)
	score += valueContribution(lead.PotentialValueCents)

	return clampScore(score)
}

func engagementContribution(activities []Activity) float64 {
	total := 0.0
	for _, activity := range activities {
		if weight, ok := activityWeights[activity.Type]; ok {
			total += weight
		} else {
			total += 1
		}
	}
	return math.Min(total, maxEngagementContribution)
}

// recencyContribution rewards recent engagement and decays to zero for
// leads untouched for a quarter.
func recencyContribution(lastActivity time.Time, now time.Time) float64 {
	if lastActivity.IsZero() {
		return 0
	}
	days := now.Sub(lastActivity).Hours() / 24
	switch {
	case days <= 1:
		return maxRecencyContribution
	case days <= 7:
		return 15
	case days <= 30:
		return 8
	case days <= 90:
		return 3
	default:
		return 0
	}
}

func qualificationContribution(q Qualification) float64 {
	fields := 0
	if q.Budget != "" {
		fields++
	}
	if q.Authority != "" {
		fields++
	}
	if q.Need != "" {
		fields++
	}
	if q.Timeline != "" {
		fields++
	}
	contribution := float64(fields) * qualificationFieldIncrement
	return math.Min(contribution, maxQualificationContribution)
}

// valueContribution gives a modest boost for larger deals so equally
// engaged leads sort by commercial weight.
func valueContribution(potentialValueCents int64) float64 {
	switch {
	case potentialValueCents >= 10_000_000: // >= $100k
		return maxValueContribution
	case potentialValueCents >= 1_000_000: // >= $10k
		return 5
	case potentialValueCents > 0:
		return 2
	default:
		return 0
	}
}

func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(math.Round(score))
}

package layout

import "github.com/intentflow/intentflow/pkg/cdg"

// =============================================================================
// Lanes - Side-by-Side Grouping Within a Level
// =============================================================================

// Lane is an ordered grouping used to position related nodes side by side
// within the same level.
type Lane string

const (
	LaneGoal            Lane = "goal"
	LaneHealth          Lane = "health"
	LaneMeetingCritical Lane = "meeting_critical"
	LaneLanguage        Lane = "language"
	LanePeople          Lane = "people"
	LaneDestination     Lane = "destination"
	LaneDuration        Lane = "duration"
	LaneBudget          Lane = "budget"
	LaneLodging         Lane = "lodging"
	LanePreferenceSlot  Lane = "preference_slot"
	LaneConstraintHigh  Lane = "constraint_high"
	LaneConstraint      Lane = "constraint"
	LanePreference      Lane = "preference"
	LaneFact            Lane = "fact"
	LaneBelief          Lane = "belief"
	LaneQuestion        Lane = "question"
	LaneOther           Lane = "other"
)

// laneForFamily maps a slot family onto its lane.
func laneForFamily(f SlotFamily) Lane {
	switch f {
	case SlotGoal:
		return LaneGoal
	case SlotPeople:
		return LanePeople
	case SlotDestination:
		return LaneDestination
	case SlotDuration:
		return LaneDuration
	case SlotBudget:
		return LaneBudget
	case SlotLodging:
		return LaneLodging
	case SlotScenic:
		return LanePreferenceSlot
	case SlotHealth:
		return LaneHealth
	case SlotMeetingCritical:
		return LaneMeetingCritical
	case SlotLanguage:
		return LaneLanguage
	case SlotNamed:
		return LaneConstraint
	default:
		return LaneOther
	}
}

// laneForNode derives a lane from the node's slot when it has one, otherwise
// from its layer, type, and severity.
func laneForNode(n *cdg.Node, slot *Slot) Lane {
	if slot != nil {
		return laneForFamily(slot.Family)
	}
	switch n.Layer {
	case cdg.LayerRisk:
		return LaneConstraintHigh
	case cdg.LayerPreference:
		return LanePreference
	case cdg.LayerIntent:
		return LaneGoal
	}
	switch n.Type {
	case cdg.TypeConstraint:
		if severityScore(n.Severity) >= severityScore(cdg.SeverityHigh) {
			return LaneConstraintHigh
		}
		return LaneConstraint
	case cdg.TypePreference:
		return LanePreference
	case cdg.TypeFact:
		return LaneFact
	case cdg.TypeBelief:
		return LaneBelief
	case cdg.TypeQuestion:
		return LaneQuestion
	default:
		return LaneOther
	}
}

// laneOrder returns the fixed left-to-right lane priority for a level.
// Level 1 holds the four primary fact slots adjacent to the root; deeper
// levels lead with safety-critical lanes. Lanes not in the returned list are
// appended after it in first-seen order.
func laneOrder(level int) []Lane {
	switch level {
	case 0:
		return []Lane{LaneGoal}
	case 1:
		return []Lane{LanePeople, LaneDestination, LaneDuration, LaneBudget}
	default:
		return []Lane{
			LaneHealth,
			LaneMeetingCritical,
			LaneLanguage,
			LaneConstraintHigh,
			LaneConstraint,
			LaneLodging,
			LanePreferenceSlot,
			LanePreference,
			LaneFact,
			LaneBelief,
			LaneQuestion,
			LaneOther,
		}
	}
}

// severityScore ranks severities for ordering; unknown and empty rank lowest.
func severityScore(sev string) int {
	switch sev {
	case cdg.SeverityCritical:
		return 4
	case cdg.SeverityHigh:
		return 3
	case cdg.SeverityMedium:
		return 2
	case cdg.SeverityLow:
		return 1
	default:
		return 0
	}
}

// typeOrder is the fixed node-type priority used as an ordering tie-break.
func typeOrder(t string) int {
	switch t {
	case cdg.TypeGoal:
		return 0
	case cdg.TypeConstraint:
		return 1
	case cdg.TypePreference:
		return 2
	case cdg.TypeFact:
		return 3
	case cdg.TypeBelief:
		return 4
	case cdg.TypeQuestion:
		return 5
	default:
		return 9
	}
}

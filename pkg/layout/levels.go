package layout

import (
	"sort"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// =============================================================================
// Root Selection and Leveling
// =============================================================================

// PickRoot selects the root goal node id, or "" when the graph has no goal.
// Priority: a locked goal, else the first confirmed goal, else the goal with
// the highest (importance, confidence) rank.
func PickRoot(g cdg.Graph) string {
	var goals []*cdg.Node
	for i := range g.Nodes {
		if g.Nodes[i].Type == cdg.TypeGoal {
			goals = append(goals, &g.Nodes[i])
		}
	}
	if len(goals) == 0 {
		return ""
	}
	for _, n := range goals {
		if n.Locked {
			return n.ID
		}
	}
	for _, n := range goals {
		if n.Status == cdg.StatusConfirmed {
			return n.ID
		}
	}
	sort.SliceStable(goals, func(i, j int) bool {
		a, b := goals[i], goals[j]
		ai, bi := a.ImportanceOr(0), b.ImportanceOr(0)
		if ai != bi {
			return ai > bi
		}
		return a.Confidence > b.Confidence
	})
	return goals[0].ID
}

// semanticMeta is the per-graph classification the position pass consumes.
type semanticMeta struct {
	root    string
	slots   map[string]*Slot // nodeID -> slot, nil entry when unmatched
	levels  map[string]int
	lanes   map[string]Lane
	nodesBy map[SlotFamily][]string // first-match order per family
}

// deriveSemanticMeta classifies every node and assigns levels and lanes.
//
// Leveling intentionally overrides raw graph distance: the four primary slot
// families stay at level 1 next to the root even when the edge topology says
// otherwise, so the salient trip facts are always adjacent to the goal. This
// is a product rule, not a graph property.
func deriveSemanticMeta(g cdg.Graph, catalog Catalog) semanticMeta {
	meta := semanticMeta{
		root:    PickRoot(g),
		slots:   make(map[string]*Slot, len(g.Nodes)),
		levels:  make(map[string]int, len(g.Nodes)),
		lanes:   make(map[string]Lane, len(g.Nodes)),
		nodesBy: make(map[SlotFamily][]string),
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		if slot, ok := catalog.Classify(n); ok {
			s := slot
			meta.slots[n.ID] = &s
			meta.nodesBy[s.Family] = append(meta.nodesBy[s.Family], n.ID)
		} else {
			meta.slots[n.ID] = nil
		}
	}

	outgoing := make(map[string][]cdg.Edge)
	incoming := make(map[string][]cdg.Edge)
	for _, e := range g.Edges {
		outgoing[e.From] = append(outgoing[e.From], e)
		incoming[e.To] = append(incoming[e.To], e)
	}

	critical := make(map[string]bool) // health and meeting-critical node ids
	for _, id := range meta.nodesBy[SlotHealth] {
		critical[id] = true
	}
	for _, id := range meta.nodesBy[SlotMeetingCritical] {
		critical[id] = true
	}

	isPrimary := func(id string) bool {
		s := meta.slots[id]
		return s != nil && primaryFamilies[s.Family]
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		slot := meta.slots[n.ID]

		if meta.root != "" && n.ID == meta.root {
			meta.levels[n.ID] = 0
			meta.lanes[n.ID] = LaneGoal
			continue
		}

		if slot != nil && primaryFamilies[slot.Family] {
			meta.levels[n.ID] = 1
			meta.lanes[n.ID] = laneForFamily(slot.Family)
			continue
		}

		if slot != nil && (slot.Family == SlotHealth || slot.Family == SlotMeetingCritical) {
			meta.levels[n.ID] = 2
			meta.lanes[n.ID] = laneForFamily(slot.Family)
			continue
		}

		toCritical := false
		toPrimary := false
		toRoot := false
		for _, e := range outgoing[n.ID] {
			if critical[e.To] {
				toCritical = true
			}
			if isPrimary(e.To) {
				toPrimary = true
			}
			if meta.root != "" && e.To == meta.root {
				toRoot = true
			}
		}
		fromPrimary := false
		for _, e := range incoming[n.ID] {
			if isPrimary(e.From) {
				fromPrimary = true
			}
		}

		level := 3
		switch {
		case meta.root == "":
			if slot != nil {
				level = 1
			} else {
				level = 2
			}
		case toPrimary || toRoot || fromPrimary:
			level = 2
		case toCritical:
			level = 3
		}

		meta.levels[n.ID] = level
		meta.lanes[n.ID] = laneForNode(n, slot)
	}

	return meta
}

package layout

import (
	"math"
	"sort"
	"strings"

	"github.com/intentflow/intentflow/pkg/cdg"
)

// =============================================================================
// Geometry Constants
// =============================================================================

// Diagram geometry. Levels advance left to right, lanes advance within a
// level, rows stack vertically centered on the root's y.
const (
	RootX            = 90.0
	RootY            = 340.0
	LevelGap         = 370.0
	LaneGap          = 225.0
	RowGap           = 146.0
	MaxRowsPerColumn = 4
)

// Point is a 2-D diagram position.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// PinsFromGraph collects the positions persisted inside node Value payloads.
// A graph saved after hand-arranging carries its pins this way; feeding the
// result to Compute reproduces the arranged layout instead of recomputing it.
func PinsFromGraph(g cdg.Graph) map[string]Point {
	pins := make(map[string]Point)
	for i := range g.Nodes {
		if x, y, ok := g.Nodes[i].Pin(); ok {
			pins[g.Nodes[i].ID] = Point{X: x, Y: y}
		}
	}
	return pins
}

// =============================================================================
// Compute - Deterministic Semantic Layout
// =============================================================================

// Compute lays the graph out into a 2-D position map using the default slot
// catalog. Pins are positions that automatic layout must not override: nodes
// present in pins keep their pinned position exactly and are excluded from
// packing.
//
// Compute is pure and deterministic: identical graph content and pin set
// yield an identical position map on every call, and every node in the graph
// gets a position.
func Compute(g cdg.Graph, pins map[string]Point) map[string]Point {
	return ComputeWithCatalog(g, pins, DefaultCatalog)
}

// ComputeWithCatalog is Compute with an explicit slot catalog, which keeps
// the semantic classification step independently testable.
func ComputeWithCatalog(g cdg.Graph, pins map[string]Point, catalog Catalog) map[string]Point {
	meta := deriveSemanticMeta(g, catalog)
	pos := make(map[string]Point, len(g.Nodes))

	// Pinned nodes are placed first so free nodes can cluster near them.
	for i := range g.Nodes {
		if p, ok := pins[g.Nodes[i].ID]; ok {
			pos[g.Nodes[i].ID] = p
		}
	}

	if meta.root != "" {
		if _, pinned := pos[meta.root]; !pinned {
			pos[meta.root] = Point{X: RootX, Y: RootY}
		}
	}

	neighbors := undirectedNeighbors(g.Edges)

	maxLevel := 0
	for _, lv := range meta.levels {
		if lv > maxLevel {
			maxLevel = lv
		}
	}
	startLevel := 0
	if meta.root != "" {
		startLevel = 1
	} else if maxLevel < 1 {
		maxLevel = 1
	}

	for level := startLevel; level <= maxLevel; level++ {
		placeLevel(g, meta, level, pos, neighbors)
	}

	// Anything still unplaced (isolated node, no root) lands at a fixed
	// default so the diagram never contains unpositioned nodes.
	for i := range g.Nodes {
		if _, ok := pos[g.Nodes[i].ID]; !ok {
			pos[g.Nodes[i].ID] = Point{X: RootX + 2*LevelGap, Y: RootY}
		}
	}

	return pos
}

// placeLevel packs the free nodes of one level into lanes and columns.
func placeLevel(g cdg.Graph, meta semanticMeta, level int, pos map[string]Point, neighbors map[string][]string) {
	byLane := make(map[Lane][]*cdg.Node)
	var laneSeen []Lane
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if meta.levels[n.ID] != level {
			continue
		}
		if meta.root != "" && n.ID == meta.root {
			continue
		}
		if _, pinned := pos[n.ID]; pinned {
			continue
		}
		lane := meta.lanes[n.ID]
		if lane == "" {
			lane = LaneOther
		}
		if _, ok := byLane[lane]; !ok {
			laneSeen = append(laneSeen, lane)
		}
		byLane[lane] = append(byLane[lane], n)
	}
	if len(byLane) == 0 {
		return
	}

	ordered := make([]Lane, 0, len(byLane))
	for _, lane := range laneOrder(level) {
		if _, ok := byLane[lane]; ok {
			ordered = append(ordered, lane)
		}
	}
	for _, lane := range laneSeen {
		if !containsLane(ordered, lane) {
			ordered = append(ordered, lane)
		}
	}

	laneCursor := 0
	for _, lane := range ordered {
		laneNodes := byLane[lane]
		sortLaneNodes(laneNodes, pos, neighbors)

		cols := (len(laneNodes) + MaxRowsPerColumn - 1) / MaxRowsPerColumn
		for col := 0; col < cols; col++ {
			lo := col * MaxRowsPerColumn
			hi := min(lo+MaxRowsPerColumn, len(laneNodes))
			chunk := laneNodes[lo:hi]

			x := RootX + float64(level)*LevelGap + float64(laneCursor+col)*LaneGap
			yStart := RootY - float64(len(chunk)-1)*RowGap/2
			for row, n := range chunk {
				pos[n.ID] = Point{X: x, Y: yStart + float64(row)*RowGap}
			}
		}
		laneCursor += cols
	}
}

// sortLaneNodes orders free nodes within a lane: average y of the already
// positioned graph neighbors ascending (new nodes cluster near connected
// pinned nodes), then severity descending, importance descending, fixed type
// priority, and finally the cleaned statement text as a total tie-break.
func sortLaneNodes(nodes []*cdg.Node, pos map[string]Point, neighbors map[string][]string) {
	anchor := make(map[string]float64, len(nodes))
	for _, n := range nodes {
		anchor[n.ID] = neighborAvgY(n.ID, pos, neighbors)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if anchor[a.ID] != anchor[b.ID] {
			return anchor[a.ID] < anchor[b.ID]
		}
		if sa, sb := severityScore(a.Severity), severityScore(b.Severity); sa != sb {
			return sa > sb
		}
		if ia, ib := a.ImportanceOr(0), b.ImportanceOr(0); ia != ib {
			return ia > ib
		}
		if ta, tb := typeOrder(a.Type), typeOrder(b.Type); ta != tb {
			return ta < tb
		}
		return strings.Compare(CleanStatement(a.Statement), CleanStatement(b.Statement)) < 0
	})
}

// neighborAvgY averages the y coordinates of the node's already-positioned
// neighbors. Nodes with no positioned neighbor sort after those with one.
func neighborAvgY(id string, pos map[string]Point, neighbors map[string][]string) float64 {
	sum, count := 0.0, 0
	for _, other := range neighbors[id] {
		if p, ok := pos[other]; ok {
			sum += p.Y
			count++
		}
	}
	if count == 0 {
		return math.Inf(1)
	}
	return sum / float64(count)
}

func undirectedNeighbors(edges []cdg.Edge) map[string][]string {
	out := make(map[string][]string)
	for _, e := range edges {
		out[e.From] = append(out[e.From], e.To)
		out[e.To] = append(out[e.To], e.From)
	}
	return out
}

func containsLane(lanes []Lane, lane Lane) bool {
	for _, l := range lanes {
		if l == lane {
			return true
		}
	}
	return false
}

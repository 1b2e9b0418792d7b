package draft

import (
	"math"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/graphutil"
	"github.com/intentflow/intentflow/pkg/layout"
)

// Bridge and reparent edge confidences.
const (
	BridgeFallbackConfidence = 0.74
	ReparentEdgeConfidence   = 0.86
	NewParentEdgeConfidence  = cdg.FallbackEdgeConfidence
)

// Drag geometry. Displacements under ClickThreshold are clicks, not moves;
// displacements over ReparentThreshold additionally trigger a parent scan.
// Hit boxes assume the default node extent, expanded by DropMargin.
const (
	ClickThreshold    = 6.0
	ReparentThreshold = 140.0
	NodeWidth         = 280.0
	NodeHeight        = 120.0
	DropMargin        = 18.0
)

// AddNode appends a fresh fact node and returns it. The node is seeded near
// the current selection, or to the right of the rightmost positioned node
// when nothing is selected, and that seed position becomes a pin.
//
// When a usable parent exists (the selected node, else the highest-priority
// goal) an enable edge parent -> new node is added as well.
func (e *Engine) AddNode() cdg.Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	node := cdg.Node{
		ID:         graphutil.NewID("n_manual"),
		Type:       cdg.TypeFact,
		Statement:  NewNodeStatement,
		Status:     cdg.StatusProposed,
		Confidence: NewNodeConfidence,
	}
	imp := NewNodeImportance
	node.Importance = &imp

	seed := e.seedPosition()
	node = node.WithPin(seed.X, seed.Y)

	parentID := e.selection.NodeID
	if parentID == "" || e.draft.NodeByID(parentID) == nil {
		parentID = layout.PickRoot(e.draft)
	}

	e.draft.Nodes = append(e.draft.Nodes, node)
	e.pins[node.ID] = seed

	if parentID != "" && e.draft.NodeByID(parentID) != nil {
		e.draft.Edges = append(e.draft.Edges, cdg.Edge{
			ID:         graphutil.NewID("e_manual"),
			From:       parentID,
			To:         node.ID,
			Type:       cdg.EdgeEnable,
			Confidence: NewParentEdgeConfidence,
		})
	}

	e.markDirtyLocked()
	return node
}

// seedPosition picks the spawn point for a new node: offset from the current
// selection when it has a position, else just right of the rightmost
// positioned node, else the layout origin. Caller holds the lock.
func (e *Engine) seedPosition() layout.Point {
	if e.selection.NodeID != "" {
		if p, ok := e.nodePosition(e.selection.NodeID); ok {
			return layout.Point{X: p.X + 48, Y: p.Y + 36}
		}
	}
	rightmost := layout.Point{X: math.Inf(-1)}
	found := false
	for id := range e.positionSource() {
		p, _ := e.nodePosition(id)
		if p.X > rightmost.X {
			rightmost = p
			found = true
		}
	}
	if !found {
		return layout.Point{X: layout.RootX, Y: layout.RootY}
	}
	return layout.Point{X: rightmost.X + layout.LaneGap, Y: rightmost.Y}
}

// positionSource returns the freshest position map available: the cached
// layout when one exists, else the pin set.
func (e *Engine) positionSource() map[string]layout.Point {
	if e.positions != nil {
		return e.positions
	}
	return e.pins
}

func (e *Engine) nodePosition(id string) (layout.Point, bool) {
	if p, ok := e.positionSource()[id]; ok {
		return p, true
	}
	p, ok := e.pins[id]
	return p, ok
}

// =============================================================================
// DeleteNode - Delete and Reconnect
// =============================================================================

// DeleteNode removes the node and every edge touching it, bridging each
// (parent, child) pair connected through the node so that deleting a node
// never orphans a downstream dependent.
//
// Only structural edge types (enable, determine, constraint) are bridged;
// conflicts_with edges touching the node are dropped unconditionally. A
// bridge edge takes the child edge's type and the arithmetic mean of the two
// bridged confidences. No bridge is added when an equivalent edge already
// survives the deletion or when it would create a directed cycle.
func (e *Engine) DeleteNode(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.draft.NodeByID(id) == nil {
		return
	}

	var incoming, outgoing []cdg.Edge // bridgeable edges touching id
	remaining := make([]cdg.Edge, 0, len(e.draft.Edges))
	for _, edge := range e.draft.Edges {
		touches := edge.From == id || edge.To == id
		if !touches {
			remaining = append(remaining, edge)
			continue
		}
		if !editableParentEdgeTypes[edge.Type] {
			continue // dropped
		}
		if edge.To == id {
			incoming = append(incoming, edge)
		} else {
			outgoing = append(outgoing, edge)
		}
	}

	for _, in := range incoming {
		for _, out := range outgoing {
			parent, child := in.From, out.To
			if parent == child {
				continue
			}
			if hasEdge(remaining, parent, child, out.Type) {
				continue
			}
			// Skip any bridge that would close a cycle through the
			// surviving edge set.
			if graphutil.Reachable(child, parent, cdg.Arcs(remaining)) {
				continue
			}
			remaining = append(remaining, cdg.Edge{
				ID:         graphutil.NewID("e_bridge"),
				From:       parent,
				To:         child,
				Type:       out.Type,
				Confidence: bridgeConfidence(in, out),
			})
		}
	}

	nodes := make([]cdg.Node, 0, len(e.draft.Nodes)-1)
	for _, n := range e.draft.Nodes {
		if n.ID != id {
			nodes = append(nodes, n)
		}
	}
	e.draft.Nodes = nodes
	e.draft.Edges = remaining
	delete(e.pins, id)
	delete(e.positions, id)
	if e.selection.NodeID == id {
		e.selection.NodeID = ""
	}
	e.markDirtyLocked()
}

func hasEdge(edges []cdg.Edge, from, to, edgeType string) bool {
	for _, edge := range edges {
		if edge.From == from && edge.To == to && edge.Type == edgeType {
			return true
		}
	}
	return false
}

func bridgeConfidence(in, out cdg.Edge) float64 {
	a := graphutil.Clamp01f(in.Confidence, BridgeFallbackConfidence)
	b := graphutil.Clamp01f(out.Confidence, BridgeFallbackConfidence)
	return (a + b) / 2
}

// =============================================================================
// DragRelease - Pin and Reparent
// =============================================================================

// DragRelease finishes a drag of the given node. Displacements under
// ClickThreshold are treated as clicks and ignored. Otherwise the node's
// position is pinned to the release point unconditionally; a displacement
// over ReparentThreshold additionally scans for a new parent under the drop
// point and, when one is found, rewires the node's editable incoming edge
// via [Engine.Reparent].
func (e *Engine) DragRelease(id string, to layout.Point) {
	e.mu.Lock()
	start, hadStart := e.nodePosition(id)
	if e.draft.NodeByID(id) == nil {
		e.mu.Unlock()
		return
	}

	displacement := math.MaxFloat64
	if hadStart {
		displacement = math.Hypot(to.X-start.X, to.Y-start.Y)
	}
	if displacement < ClickThreshold {
		e.mu.Unlock()
		return
	}

	e.pinLocked(id, to)
	e.markDirtyLocked()

	var candidate string
	if displacement > ReparentThreshold {
		candidate = e.findDropParent(id, to)
	}
	e.mu.Unlock()

	if candidate != "" {
		e.Reparent(id, candidate)
	}
}

// pinLocked records the position both in the pin set and in the node's Value
// payload so it survives serialization. Caller holds the lock.
func (e *Engine) pinLocked(id string, p layout.Point) {
	e.pins[id] = p
	if e.positions != nil {
		e.positions[id] = p
	}
	if n := e.draft.NodeByID(id); n != nil {
		*n = n.WithPin(math.Round(p.X), math.Round(p.Y))
	}
}

// Pin pins a node position directly, bypassing drag thresholds.
func (e *Engine) Pin(id string, p layout.Point) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft.NodeByID(id) == nil {
		return
	}
	e.pinLocked(id, p)
	e.markDirtyLocked()
}

// findDropParent scans all other positioned nodes for the one whose
// margin-expanded bounding box contains the dragged node's center, nearest
// center-to-center first. Caller holds the lock.
func (e *Engine) findDropParent(draggedID string, dropped layout.Point) string {
	cx := dropped.X + NodeWidth/2
	cy := dropped.Y + NodeHeight/2

	best := ""
	bestDist := math.MaxFloat64
	for i := range e.draft.Nodes {
		id := e.draft.Nodes[i].ID
		if id == draggedID {
			continue
		}
		p, ok := e.nodePosition(id)
		if !ok {
			continue
		}
		if cx < p.X-DropMargin || cx > p.X+NodeWidth+DropMargin ||
			cy < p.Y-DropMargin || cy > p.Y+NodeHeight+DropMargin {
			continue
		}
		dist := math.Hypot(p.X+NodeWidth/2-cx, p.Y+NodeHeight/2-cy)
		if dist < bestDist {
			best = id
			bestDist = dist
		}
	}
	return best
}

// Reparent makes parentID the node's structural parent: the node's existing
// editable incoming edge (enable, determine, or constraint) is removed, and
// a new enable edge parent -> node is added unless it already exists or the
// node can already reach the candidate (which would close a cycle). The edge
// removal and the skip are independent: a rejected edge still completes the
// rest of the operation.
func (e *Engine) Reparent(id, parentID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if id == parentID {
		return false
	}
	if e.draft.NodeByID(id) == nil || e.draft.NodeByID(parentID) == nil {
		return false
	}
	if hasAnyEdge(e.draft.Edges, parentID, id) {
		return false
	}

	edges := make([]cdg.Edge, 0, len(e.draft.Edges))
	removed := false
	for _, edge := range e.draft.Edges {
		if !removed && edge.To == id && editableParentEdgeTypes[edge.Type] {
			removed = true
			continue
		}
		edges = append(edges, edge)
	}

	if graphutil.Reachable(id, parentID, cdg.Arcs(edges)) {
		// Adding parent -> node would close a cycle. Skip only the edge
		// creation; the removal of the old parent edge still applies.
		if removed {
			e.draft.Edges = edges
			e.markDirtyLocked()
		}
		return false
	}

	edges = append(edges, cdg.Edge{
		ID:         graphutil.NewID("e_manual"),
		From:       parentID,
		To:         id,
		Type:       cdg.EdgeEnable,
		Confidence: ReparentEdgeConfidence,
	})
	e.draft.Edges = edges
	e.markDirtyLocked()
	return true
}

func hasAnyEdge(edges []cdg.Edge, from, to string) bool {
	for _, edge := range edges {
		if edge.From == from && edge.To == to {
			return true
		}
	}
	return false
}

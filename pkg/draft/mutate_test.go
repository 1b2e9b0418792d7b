package draft

import (
	"math"
	"strings"
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
)

func chainGraph(midType string) cdg.Graph {
	return cdg.Graph{
		ID: "g1",
		Nodes: []cdg.Node{
			{ID: "a", Type: cdg.TypeGoal, Statement: "root", Confidence: 0.9},
			{ID: "b", Type: cdg.TypeFact, Statement: "middle", Confidence: 0.5},
			{ID: "c", Type: cdg.TypeFact, Statement: "leaf", Confidence: 0.5},
		},
		Edges: []cdg.Edge{
			{ID: "e1", From: "a", To: "b", Type: cdg.EdgeEnable, Confidence: 0.8},
			{ID: "e2", From: "b", To: "c", Type: midType, Confidence: 0.6},
		},
	}
}

func findEdge(t *testing.T, g cdg.Graph, from, to string) *cdg.Edge {
	t.Helper()
	for i := range g.Edges {
		if g.Edges[i].From == from && g.Edges[i].To == to {
			return &g.Edges[i]
		}
	}
	return nil
}

func TestDeleteNodeBridgesChain(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeConstraint))

	e.DeleteNode("b")

	g := e.Graph()
	if g.NodeByID("b") != nil {
		t.Fatal("node survived deletion")
	}
	if len(g.Edges) != 1 {
		t.Fatalf("edges = %+v", g.Edges)
	}

	bridge := findEdge(t, g, "a", "c")
	if bridge == nil {
		t.Fatal("no bridge a -> c")
	}
	// The bridge takes the child edge's type and the mean confidence.
	if bridge.Type != cdg.EdgeConstraint {
		t.Errorf("bridge type = %q", bridge.Type)
	}
	if math.Abs(bridge.Confidence-0.7) > 1e-9 {
		t.Errorf("bridge confidence = %v, want 0.7", bridge.Confidence)
	}
	if !strings.HasPrefix(bridge.ID, "e_bridge_") {
		t.Errorf("bridge id = %q", bridge.ID)
	}
	if !e.Dirty() {
		t.Error("deletion did not dirty the draft")
	}
}

func TestDeleteNodeNoDuplicateBridge(t *testing.T) {
	g := chainGraph(cdg.EdgeEnable)
	// The bridge a -> c already exists; deletion must not add a second one.
	g.Edges = append(g.Edges, cdg.Edge{ID: "e3", From: "a", To: "c", Type: cdg.EdgeEnable, Confidence: 0.9})

	e := NewEngine(g)
	e.DeleteNode("b")

	got := e.Graph()
	count := 0
	for _, edge := range got.Edges {
		if edge.From == "a" && edge.To == "c" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("a -> c edges = %d, want 1", count)
	}
}

func TestDeleteNodeDiamond(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{
			{ID: "a", Type: cdg.TypeGoal, Statement: "root", Confidence: 0.9},
			{ID: "b", Type: cdg.TypeFact, Statement: "left", Confidence: 0.5},
			{ID: "c", Type: cdg.TypeFact, Statement: "right", Confidence: 0.5},
			{ID: "d", Type: cdg.TypeFact, Statement: "sink", Confidence: 0.5},
		},
		Edges: []cdg.Edge{
			{ID: "e1", From: "a", To: "b", Type: cdg.EdgeEnable, Confidence: 0.8},
			{ID: "e2", From: "a", To: "c", Type: cdg.EdgeEnable, Confidence: 0.8},
			{ID: "e3", From: "b", To: "d", Type: cdg.EdgeEnable, Confidence: 0.6},
			{ID: "e4", From: "c", To: "d", Type: cdg.EdgeEnable, Confidence: 0.6},
		},
	}

	e := NewEngine(g)
	e.DeleteNode("b")

	got := e.Graph()
	// a -> d is bridged; the path through c is untouched.
	if findEdge(t, got, "a", "d") == nil {
		t.Error("no bridge a -> d")
	}
	if findEdge(t, got, "c", "d") == nil || findEdge(t, got, "a", "c") == nil {
		t.Error("untouched edges were dropped")
	}
	if len(got.Edges) != 3 {
		t.Errorf("edges = %+v", got.Edges)
	}
}

func TestDeleteNodeDropsConflictEdges(t *testing.T) {
	g := chainGraph(cdg.EdgeConstraint)
	g.Nodes = append(g.Nodes, cdg.Node{ID: "x", Type: cdg.TypeBelief, Statement: "rival", Confidence: 0.5})
	g.Edges = append(g.Edges, cdg.Edge{ID: "e3", From: "x", To: "b", Type: cdg.EdgeConflictsWith, Confidence: 0.9})

	e := NewEngine(g)
	e.DeleteNode("b")

	got := e.Graph()
	// The conflicts_with edge is dropped, never bridged: no x -> c edge.
	if findEdge(t, got, "x", "c") != nil {
		t.Error("conflicts_with edge was bridged")
	}
	for _, edge := range got.Edges {
		if edge.From == "x" || edge.To == "x" {
			t.Errorf("edge touching x survived: %+v", edge)
		}
	}
}

func TestDeleteNodeSkipsCycleFormingBridge(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{
			{ID: "a", Type: cdg.TypeFact, Statement: "a", Confidence: 0.5},
			{ID: "b", Type: cdg.TypeFact, Statement: "b", Confidence: 0.5},
			{ID: "c", Type: cdg.TypeFact, Statement: "c", Confidence: 0.5},
		},
		Edges: []cdg.Edge{
			{ID: "e1", From: "a", To: "b", Type: cdg.EdgeEnable, Confidence: 0.8},
			{ID: "e2", From: "b", To: "c", Type: cdg.EdgeEnable, Confidence: 0.6},
			{ID: "e3", From: "c", To: "a", Type: cdg.EdgeEnable, Confidence: 0.6},
		},
	}

	e := NewEngine(g)
	e.DeleteNode("b")

	got := e.Graph()
	// Bridging a -> c would close a cycle with the surviving c -> a edge.
	if findEdge(t, got, "a", "c") != nil {
		t.Error("cycle-forming bridge was added")
	}
	if findEdge(t, got, "c", "a") == nil {
		t.Error("surviving edge dropped")
	}
}

func TestDeleteNodeClearsSelectionAndPin(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.SelectNode("b")
	e.Pin("b", layout.Point{X: 10, Y: 20})

	e.DeleteNode("b")

	if sel := e.Selection(); sel.NodeID != "" {
		t.Errorf("selection = %+v", sel)
	}
	if _, ok := e.Pins()["b"]; ok {
		t.Error("pin survived deletion")
	}
}

func TestDeleteNodeMissingIsNoOp(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.DeleteNode("ghost")
	if e.Dirty() {
		t.Error("deleting a missing node dirtied the draft")
	}
}

func TestAddNodeDefaults(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))

	n := e.AddNode()

	if !strings.HasPrefix(n.ID, "n_manual_") {
		t.Errorf("id = %q", n.ID)
	}
	if n.Type != cdg.TypeFact || n.Status != cdg.StatusProposed || n.Statement != NewNodeStatement {
		t.Errorf("node = %+v", n)
	}
	if n.Confidence != NewNodeConfidence {
		t.Errorf("Confidence = %v", n.Confidence)
	}
	if n.Importance == nil || *n.Importance != NewNodeImportance {
		t.Errorf("Importance = %v", n.Importance)
	}

	// With nothing selected the root goal adopts the new node.
	g := e.Graph()
	parent := findEdge(t, g, "a", n.ID)
	if parent == nil {
		t.Fatal("no parent edge from root")
	}
	if parent.Type != cdg.EdgeEnable || parent.Confidence != NewParentEdgeConfidence {
		t.Errorf("parent edge = %+v", parent)
	}

	// The seed position became a pin.
	if _, ok := e.Pins()[n.ID]; !ok {
		t.Error("new node not pinned")
	}
	if !e.Dirty() {
		t.Error("AddNode did not dirty the draft")
	}
}

func TestAddNodeNearSelection(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.Pin("c", layout.Point{X: 100, Y: 200})
	e.SelectNode("c")

	n := e.AddNode()

	if p := e.Pins()[n.ID]; p != (layout.Point{X: 148, Y: 236}) {
		t.Errorf("seed = %+v", p)
	}
	if findEdge(t, e.Graph(), "c", n.ID) == nil {
		t.Error("selected node did not become the parent")
	}
}

func TestDragReleaseClickIsIgnored(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.Pin("c", layout.Point{X: 100, Y: 100})
	dirtyBefore := e.Dirty()

	e.DragRelease("c", layout.Point{X: 102, Y: 103})

	if p := e.Pins()["c"]; p != (layout.Point{X: 100, Y: 100}) {
		t.Errorf("pin moved on click: %+v", p)
	}
	if e.Dirty() != dirtyBefore {
		t.Error("click changed the dirty flag")
	}
}

func TestDragReleasePins(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.Pin("c", layout.Point{X: 0, Y: 0})

	e.DragRelease("c", layout.Point{X: 30, Y: 40})

	if p := e.Pins()["c"]; p != (layout.Point{X: 30, Y: 40}) {
		t.Errorf("pin = %+v", p)
	}
	// The position is persisted into the node's value payload too.
	g := e.Graph()
	x, y, ok := g.NodeByID("c").Pin()
	if !ok || x != 30 || y != 40 {
		t.Errorf("persisted pin = (%v, %v, %v)", x, y, ok)
	}
}

func TestDragReleaseReparentsOnDrop(t *testing.T) {
	g := chainGraph(cdg.EdgeEnable)
	g.Nodes = append(g.Nodes, cdg.Node{ID: "p2", Type: cdg.TypeFact, Statement: "new parent", Confidence: 0.5})

	e := NewEngine(g)
	e.Pin("c", layout.Point{X: 0, Y: 0})
	e.Pin("p2", layout.Point{X: 1000, Y: 1000})

	// Drop c's box onto p2's box, far beyond the reparent threshold.
	e.DragRelease("c", layout.Point{X: 980, Y: 990})

	got := e.Graph()
	if findEdge(t, got, "b", "c") != nil {
		t.Error("old parent edge survived")
	}
	newEdge := findEdge(t, got, "p2", "c")
	if newEdge == nil {
		t.Fatal("no edge from drop target")
	}
	if newEdge.Type != cdg.EdgeEnable || newEdge.Confidence != ReparentEdgeConfidence {
		t.Errorf("new edge = %+v", newEdge)
	}
}

func TestReparentRejectsCycle(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))

	// c can already reach... a reaches c via a -> b -> c, so making c the
	// parent of a is fine, but making a a child of its own descendant's
	// descendant must fail: a -> b -> c, then Reparent(a, c) would close
	// the loop c -> a -> b -> c.
	if e.Reparent("a", "c") {
		t.Error("cycle-forming reparent accepted")
	}
	if findEdge(t, e.Graph(), "c", "a") != nil {
		t.Error("cycle edge added")
	}
}

func TestReparentRejectsExistingParent(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))

	if e.Reparent("b", "a") {
		t.Error("reparent onto the existing parent accepted")
	}
	count := 0
	for _, edge := range e.Graph().Edges {
		if edge.From == "a" && edge.To == "b" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("a -> b edges = %d", count)
	}
}

func TestReparentRewires(t *testing.T) {
	g := chainGraph(cdg.EdgeEnable)
	g.Nodes = append(g.Nodes, cdg.Node{ID: "p2", Type: cdg.TypeFact, Statement: "adopter", Confidence: 0.5})

	e := NewEngine(g)
	if !e.Reparent("c", "p2") {
		t.Fatal("reparent rejected")
	}

	got := e.Graph()
	if findEdge(t, got, "b", "c") != nil {
		t.Error("old parent edge survived")
	}
	if edge := findEdge(t, got, "p2", "c"); edge == nil || edge.Confidence != ReparentEdgeConfidence {
		t.Errorf("new edge = %+v", edge)
	}
}

func TestFindDropParentNearestWins(t *testing.T) {
	g := chainGraph(cdg.EdgeEnable)
	g.Nodes = append(g.Nodes, cdg.Node{ID: "near", Type: cdg.TypeFact, Statement: "near", Confidence: 0.5})
	g.Nodes = append(g.Nodes, cdg.Node{ID: "far", Type: cdg.TypeFact, Statement: "far", Confidence: 0.5})

	e := NewEngine(g)
	e.Pin("near", layout.Point{X: 500, Y: 500})
	e.Pin("far", layout.Point{X: 700, Y: 500})
	e.Pin("c", layout.Point{X: 0, Y: 0})

	// Both margin-expanded boxes contain the drop center; the closer one wins.
	e.mu.Lock()
	got := e.findDropParent("c", layout.Point{X: 560, Y: 500})
	e.mu.Unlock()
	if got != "near" {
		t.Errorf("drop parent = %q", got)
	}
}

func TestFindDropParentMissesOutsideMargin(t *testing.T) {
	e := NewEngine(chainGraph(cdg.EdgeEnable))
	e.Pin("a", layout.Point{X: 0, Y: 0})
	e.Pin("c", layout.Point{X: 2000, Y: 2000})

	e.mu.Lock()
	got := e.findDropParent("c", layout.Point{X: 600, Y: 600})
	e.mu.Unlock()
	if got != "" {
		t.Errorf("drop parent = %q, want none", got)
	}
}

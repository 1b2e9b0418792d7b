package layout

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
)

func tripGraph() cdg.Graph {
	return cdg.Graph{
		ID:      "g1",
		Version: 1,
		Nodes: []cdg.Node{
			{ID: "goal", Type: cdg.TypeGoal, Statement: "用户任务: 计划一次日本之行", Status: cdg.StatusConfirmed, Confidence: 0.9},
			{ID: "people", Type: cdg.TypeFact, Statement: "同行人数: 2人", Confidence: 0.8},
			{ID: "dest", Type: cdg.TypeFact, Statement: "目的地: 东京", Confidence: 0.8},
			{ID: "days", Type: cdg.TypeConstraint, Statement: "行程时长: 7天", Confidence: 0.8},
			{ID: "budget", Type: cdg.TypeConstraint, Statement: "预算上限: 30000元", Confidence: 0.8},
			{ID: "health", Type: cdg.TypeConstraint, Statement: "同行老人有心脏病", Severity: cdg.SeverityCritical, Confidence: 0.9},
			{ID: "hotel", Type: cdg.TypePreference, Statement: "全程尽量住五星酒店", Confidence: 0.7},
		},
		Edges: []cdg.Edge{
			{ID: "e1", From: "people", To: "goal", Type: cdg.EdgeEnable, Confidence: 0.7},
			{ID: "e2", From: "dest", To: "goal", Type: cdg.EdgeEnable, Confidence: 0.7},
			{ID: "e3", From: "budget", To: "goal", Type: cdg.EdgeConstraint, Confidence: 0.7},
			{ID: "e4", From: "health", To: "days", Type: cdg.EdgeConstraint, Confidence: 0.9},
			{ID: "e5", From: "hotel", To: "budget", Type: cdg.EdgeConstraint, Confidence: 0.6},
		},
	}
}

func TestComputeIsTotal(t *testing.T) {
	g := tripGraph()
	pos := Compute(g, nil)

	for _, n := range g.Nodes {
		if _, ok := pos[n.ID]; !ok {
			t.Errorf("node %q has no position", n.ID)
		}
	}
	if len(pos) != len(g.Nodes) {
		t.Errorf("positions = %d, nodes = %d", len(pos), len(g.Nodes))
	}
}

func TestComputeDeterministic(t *testing.T) {
	g := tripGraph()

	first := Compute(g, nil)
	for range 5 {
		if again := Compute(g, nil); !reflect.DeepEqual(first, again) {
			t.Fatalf("layout not deterministic:\nfirst: %v\nagain: %v", first, again)
		}
	}
}

func TestComputeRootPlacement(t *testing.T) {
	pos := Compute(tripGraph(), nil)

	if got := pos["goal"]; got != (Point{X: RootX, Y: RootY}) {
		t.Errorf("root at %+v", got)
	}
}

func TestComputePrimarySlotsAtLevelOne(t *testing.T) {
	pos := Compute(tripGraph(), nil)

	// Fixed lane order within level 1: people, destination, duration, budget.
	wantX := map[string]float64{
		"people": RootX + LevelGap,
		"dest":   RootX + LevelGap + LaneGap,
		"days":   RootX + LevelGap + 2*LaneGap,
		"budget": RootX + LevelGap + 3*LaneGap,
	}
	for id, x := range wantX {
		if got := pos[id].X; got != x {
			t.Errorf("%s.X = %v, want %v", id, got, x)
		}
	}
}

func TestComputeHealthLeadsLevelTwo(t *testing.T) {
	pos := Compute(tripGraph(), nil)

	// The health slot is forced to level 2 and its lane precedes all others
	// there, regardless of where its edges point.
	if got := pos["health"].X; got != RootX+2*LevelGap {
		t.Errorf("health.X = %v, want %v", got, RootX+2*LevelGap)
	}
	if got := pos["hotel"].X; got <= pos["health"].X {
		t.Errorf("lodging lane at %v, not right of health at %v", got, pos["health"].X)
	}
}

func TestComputeRespectsPins(t *testing.T) {
	g := tripGraph()
	pins := map[string]Point{
		"goal":   {X: -50, Y: 900},
		"budget": {X: 1234, Y: 5},
	}

	pos := Compute(g, pins)
	for id, want := range pins {
		if got := pos[id]; got != want {
			t.Errorf("%s = %+v, want pinned %+v", id, got, want)
		}
	}

	// Free nodes are still placed and never steal a pinned slot.
	for _, n := range g.Nodes {
		if _, ok := pos[n.ID]; !ok {
			t.Errorf("node %q has no position", n.ID)
		}
	}
}

func TestPinsFromGraph(t *testing.T) {
	g := tripGraph()
	g.Nodes[1] = g.Nodes[1].WithPin(320, -40)
	g.Nodes[2] = g.Nodes[2].WithPin(0, 0)

	pins := PinsFromGraph(g)

	if got := pins[g.Nodes[1].ID]; got != (Point{X: 320, Y: -40}) {
		t.Errorf("%s = %+v, want (320,-40)", g.Nodes[1].ID, got)
	}
	if got := pins[g.Nodes[2].ID]; got != (Point{}) {
		t.Errorf("%s = %+v, want origin", g.Nodes[2].ID, got)
	}
	if len(pins) != 2 {
		t.Errorf("len(pins) = %d, unpinned nodes must not appear", len(pins))
	}
}

func TestComputePacksColumns(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{
			{ID: "goal", Type: cdg.TypeGoal, Statement: "目标", Confidence: 0.9},
		},
	}
	for i := 0; i < 6; i++ {
		id := fmt.Sprintf("f%d", i)
		g.Nodes = append(g.Nodes, cdg.Node{
			ID: id, Type: cdg.TypeFact, Statement: fmt.Sprintf("fact %c", 'a'+i), Confidence: 0.5,
		})
		g.Edges = append(g.Edges, cdg.Edge{
			ID: "e" + id, From: id, To: "goal", Type: cdg.EdgeEnable, Confidence: 0.7,
		})
	}

	pos := Compute(g, nil)

	colX := make(map[float64]int)
	for i := 0; i < 6; i++ {
		colX[pos[fmt.Sprintf("f%d", i)].X]++
	}
	if len(colX) != 2 {
		t.Fatalf("columns = %v, want 2", colX)
	}
	for x, count := range colX {
		if count > MaxRowsPerColumn {
			t.Errorf("column at x=%v holds %d nodes", x, count)
		}
	}

	// Each column's rows are centered on the root row.
	var firstCol []float64
	for i := 0; i < 6; i++ {
		p := pos[fmt.Sprintf("f%d", i)]
		if p.X == RootX+2*LevelGap {
			firstCol = append(firstCol, p.Y)
		}
	}
	if len(firstCol) != 4 {
		t.Fatalf("first column rows = %d, want 4", len(firstCol))
	}
	sum := 0.0
	for _, y := range firstCol {
		sum += y
	}
	if avg := sum / 4; avg != RootY {
		t.Errorf("first column centered at %v, want %v", avg, RootY)
	}
}

func TestPickRoot(t *testing.T) {
	imp := func(v float64) *float64 { return &v }

	tests := []struct {
		name  string
		nodes []cdg.Node
		want  string
	}{
		{
			name: "locked goal wins",
			nodes: []cdg.Node{
				{ID: "a", Type: cdg.TypeGoal, Status: cdg.StatusConfirmed, Confidence: 0.9},
				{ID: "b", Type: cdg.TypeGoal, Locked: true, Confidence: 0.1},
			},
			want: "b",
		},
		{
			name: "confirmed beats importance",
			nodes: []cdg.Node{
				{ID: "a", Type: cdg.TypeGoal, Importance: imp(0.99), Confidence: 0.99},
				{ID: "b", Type: cdg.TypeGoal, Status: cdg.StatusConfirmed, Confidence: 0.1},
			},
			want: "b",
		},
		{
			name: "importance then confidence",
			nodes: []cdg.Node{
				{ID: "a", Type: cdg.TypeGoal, Importance: imp(0.5), Confidence: 0.9},
				{ID: "b", Type: cdg.TypeGoal, Importance: imp(0.8), Confidence: 0.2},
				{ID: "c", Type: cdg.TypeGoal, Importance: imp(0.8), Confidence: 0.3},
			},
			want: "c",
		},
		{
			name: "no goals",
			nodes: []cdg.Node{
				{ID: "a", Type: cdg.TypeFact},
			},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickRoot(cdg.Graph{Nodes: tt.nodes}); got != tt.want {
				t.Errorf("PickRoot = %q, want %q", got, tt.want)
			}
		})
	}
}

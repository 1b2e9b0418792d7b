package render

import (
	"strings"
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
)

func TestToDOTBasics(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{
			{ID: "goal", Type: cdg.TypeGoal, Statement: "plan the trip", Status: cdg.StatusConfirmed, Confidence: 0.9},
			{ID: "budget", Type: cdg.TypeConstraint, Statement: "预算上限: 3000元", Confidence: 0.8},
		},
		Edges: []cdg.Edge{
			{ID: "e1", From: "budget", To: "goal", Type: cdg.EdgeConstraint, Confidence: 0.8},
		},
	}
	pos := map[string]layout.Point{
		"goal":   {X: 90, Y: 340},
		"budget": {X: 460, Y: 340},
	}

	dot := ToDOT(g, pos, Options{})

	for _, want := range []string{
		"digraph cdg {",
		"layout=neato;",
		`"goal" [`,
		`label="plan the trip"`,
		`pos="90,-340!"`,
		`"budget" -> "goal"`,
		`color="#b91c1c"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTDetailedLabels(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{{ID: "n", Type: cdg.TypeFact, Statement: "x", Status: cdg.StatusProposed, Confidence: 0.6}},
	}

	dot := ToDOT(g, nil, Options{Detailed: true})
	if !strings.Contains(dot, `fact/proposed 0.60`) {
		t.Errorf("detailed metadata missing:\n%s", dot)
	}
}

func TestToDOTConflictEdgesDashed(t *testing.T) {
	g := cdg.Graph{
		Nodes: []cdg.Node{
			{ID: "a", Type: cdg.TypeBelief, Statement: "a", Confidence: 0.5},
			{ID: "b", Type: cdg.TypeBelief, Statement: "b", Confidence: 0.5},
		},
		Edges: []cdg.Edge{{ID: "e", From: "a", To: "b", Type: cdg.EdgeConflictsWith, Confidence: 0.9}},
	}

	dot := ToDOT(g, nil, Options{})
	if !strings.Contains(dot, "style=dashed") || !strings.Contains(dot, "dir=both") {
		t.Errorf("conflict edge not styled:\n%s", dot)
	}
}

func TestToDOTFallsBackToIDLabel(t *testing.T) {
	g := cdg.Graph{Nodes: []cdg.Node{{ID: "n_1", Type: cdg.TypeFact, Confidence: 0.5}}}

	dot := ToDOT(g, nil, Options{})
	if !strings.Contains(dot, `label="n_1"`) {
		t.Errorf("empty statement not replaced by id:\n%s", dot)
	}
}

package cli

import (
	"testing"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/store"
)

func TestMergeTurnGraphKeepsPins(t *testing.T) {
	prior := &store.Draft{
		ConversationID: "c_1",
		Graph: cdg.Graph{
			Nodes: []cdg.Node{
				{ID: "goal", Type: "goal", Statement: "Plan the trip", Confidence: 0.9},
				{ID: "budget", Type: "constraint", Statement: "Budget 3000", Confidence: 0.8},
			},
		},
	}
	prior.Graph.Nodes[1] = prior.Graph.Nodes[1].WithPin(420, 110)

	// The turn's fresh graph keeps budget but carries no position for it.
	fresh := cdg.Graph{
		Version: 3,
		Nodes: []cdg.Node{
			{ID: "goal", Type: "goal", Statement: "Plan the trip", Confidence: 0.9},
			{ID: "budget", Type: "constraint", Statement: "Budget 2500", Confidence: 0.85},
		},
	}

	got := mergeTurnGraph(prior, fresh)

	budget := got.NodeByID("budget")
	if budget == nil {
		t.Fatal("budget missing from merged graph")
	}
	if budget.Statement != "Budget 2500" {
		t.Errorf("Statement = %q, fresh content should win", budget.Statement)
	}
	x, y, ok := budget.Pin()
	if !ok || x != 420 || y != 110 {
		t.Errorf("pin = (%v,%v,%v), arranged position should survive the turn", x, y, ok)
	}
}

func TestMergeTurnGraphNormalizesWithoutPrior(t *testing.T) {
	fresh := cdg.Graph{
		Nodes: []cdg.Node{
			{Type: "goal", Statement: "Plan the trip", Confidence: 4},
		},
		Edges: []cdg.Edge{
			{From: "n_1", To: "missing", Type: "enable", Confidence: 0.5},
		},
	}

	got := mergeTurnGraph(nil, fresh)

	if len(got.Nodes) != 1 || got.Nodes[0].ID == "" {
		t.Fatalf("nodes = %+v, want one node with a synthesized id", got.Nodes)
	}
	if got.Nodes[0].Confidence != 1 {
		t.Errorf("Confidence = %v, want clamped to 1", got.Nodes[0].Confidence)
	}
	if len(got.Edges) != 0 {
		t.Errorf("dangling edge survived: %+v", got.Edges)
	}
}

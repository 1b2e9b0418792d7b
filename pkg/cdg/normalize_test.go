package cdg

import (
	"reflect"
	"testing"
)

func TestNormalizeSynthesizesMissingIDs(t *testing.T) {
	p := Payload{
		Nodes: []RawNode{
			{Statement: "first"},
			{ID: "  ", Statement: "second"},
			{ID: "n_x", Statement: "third"},
		},
	}

	g := Normalize(p)
	if len(g.Nodes) != 3 {
		t.Fatalf("nodes = %d", len(g.Nodes))
	}
	if g.Nodes[0].ID != "n_1" || g.Nodes[1].ID != "n_2" || g.Nodes[2].ID != "n_x" {
		t.Errorf("ids = %q, %q, %q", g.Nodes[0].ID, g.Nodes[1].ID, g.Nodes[2].ID)
	}
}

func TestNormalizeDisambiguatesDuplicateIDs(t *testing.T) {
	p := Payload{
		Nodes: []RawNode{
			{ID: "n_1", Statement: "a"},
			{ID: "n_1", Statement: "b"},
			{ID: "n_1", Statement: "c"},
		},
	}

	g := Normalize(p)
	want := []string{"n_1", "n_1_dup", "n_1_dup_dup"}
	for i, w := range want {
		if g.Nodes[i].ID != w {
			t.Errorf("nodes[%d].ID = %q, want %q", i, g.Nodes[i].ID, w)
		}
	}
}

func TestNormalizeFieldFallbacks(t *testing.T) {
	p := Payload{Nodes: []RawNode{{ID: "n_1"}}}

	n := Normalize(p).Nodes[0]
	if n.Type != TypeFact {
		t.Errorf("Type = %q", n.Type)
	}
	if n.Status != StatusProposed {
		t.Errorf("Status = %q", n.Status)
	}
	if n.Confidence != FallbackNodeConfidence {
		t.Errorf("Confidence = %v", n.Confidence)
	}
	if n.Importance != nil {
		t.Errorf("Importance = %v, want nil when absent", *n.Importance)
	}
}

func TestNormalizeClampsNumericFields(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"above one", 3.5, 1},
		{"below zero", -0.2, 0},
		{"numeric string", "0.85", 0.85},
		{"garbage string", "high", FallbackNodeConfidence},
		{"wrong type", []int{1}, FallbackNodeConfidence},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Normalize(Payload{Nodes: []RawNode{{ID: "n_1", Confidence: tt.in}}})
			if got := g.Nodes[0].Confidence; got != tt.want {
				t.Errorf("Confidence = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeDropsDanglingEdges(t *testing.T) {
	p := Payload{
		Nodes: []RawNode{{ID: "a"}, {ID: "b"}},
		Edges: []RawEdge{
			{From: "a", To: "b"},
			{From: "a", To: "ghost"},
			{From: "", To: "b"},
			{From: "ghost", To: "ghost2"},
		},
	}

	g := Normalize(p)
	if len(g.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(g.Edges))
	}
	if g.Edges[0].From != "a" || g.Edges[0].To != "b" {
		t.Errorf("edge = %+v", g.Edges[0])
	}
}

func TestNormalizeEdgeDefaults(t *testing.T) {
	p := Payload{
		Nodes: []RawNode{{ID: "a"}, {ID: "b"}},
		Edges: []RawEdge{{From: "a", To: "b", Type: "implies"}},
	}

	e := Normalize(p).Edges[0]
	if e.ID != "e_1" {
		t.Errorf("ID = %q", e.ID)
	}
	if e.Type != EdgeEnable {
		t.Errorf("Type = %q, want enable for unknown type", e.Type)
	}
	if e.Confidence != FallbackEdgeConfidence {
		t.Errorf("Confidence = %v", e.Confidence)
	}
}

func TestNormalizeIsTotal(t *testing.T) {
	// A hostile payload full of wrong types must still produce a graph.
	p := Payload{
		ID:      42,
		Version: "seven",
		Nodes: []RawNode{
			{ID: 13, Type: true, Statement: []string{"x"}, Confidence: map[string]int{}},
		},
		Edges: []RawEdge{{From: 1, To: 2}},
	}

	g := Normalize(p)
	if len(g.Nodes) != 1 || len(g.Edges) != 0 {
		t.Errorf("graph = %+v", g)
	}
	if g.Version != 0 {
		t.Errorf("Version = %d", g.Version)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	p := Payload{
		ID:      "g1",
		Version: 3,
		Nodes: []RawNode{
			{ID: "n_1", Type: TypeGoal, Statement: "plan trip", Status: StatusConfirmed, Confidence: 0.9, Importance: 1.4},
			{Statement: "budget"},
			{ID: "n_1", Statement: "dup"},
		},
		Edges: []RawEdge{
			{From: "n_1", To: "n_2", Type: "nonsense", Confidence: 2},
			{From: "n_1", To: "gone"},
		},
	}

	once := Normalize(p)
	twice := NormalizeGraph(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("normalization not idempotent:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestDecodeStrictJSON(t *testing.T) {
	g, err := Decode([]byte(`{"id":"g1","version":2,"nodes":[{"id":"n_1","statement":"x"}],"edges":[]}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.ID != "g1" || g.Version != 2 || len(g.Nodes) != 1 {
		t.Errorf("graph = %+v", g)
	}
}

func TestDecodeRepairsAlmostJSON(t *testing.T) {
	// Trailing comma and single quotes, the shapes models tend to emit.
	raw := []byte(`{'id': 'g1', 'nodes': [{'id': 'n_1', 'statement': 'x'},], 'edges': []}`)

	g, err := Decode(raw)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if g.ID != "g1" || len(g.Nodes) != 1 || g.Nodes[0].ID != "n_1" {
		t.Errorf("graph = %+v", g)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode([]byte("%%%% not even close")); err == nil {
		t.Error("Decode accepted garbage")
	}
}

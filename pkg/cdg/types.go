package cdg

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/intentflow/intentflow/pkg/graphutil"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Node types. Unknown types are normalized to TypeFact.
const (
	TypeGoal       = "goal"
	TypeConstraint = "constraint"
	TypePreference = "preference"
	TypeBelief     = "belief"
	TypeFact       = "fact"
	TypeQuestion   = "question"
)

// Node layers. Optional coarse grouping on top of the node type.
const (
	LayerIntent      = "intent"
	LayerRequirement = "requirement"
	LayerPreference  = "preference"
	LayerRisk        = "risk"
)

// Node statuses.
const (
	StatusProposed  = "proposed"
	StatusConfirmed = "confirmed"
	StatusRejected  = "rejected"
	StatusDisputed  = "disputed"
)

// Severity levels for constraint nodes.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Edge types. Unknown types are normalized to EdgeEnable.
const (
	EdgeEnable        = "enable"
	EdgeConstraint    = "constraint"
	EdgeDetermine     = "determine"
	EdgeConflictsWith = "conflicts_with"
)

// Confidence and importance fallbacks applied when the payload carries a
// missing or non-numeric value.
const (
	FallbackNodeConfidence = 0.6
	FallbackImportance     = 0.68
	FallbackEdgeConfidence = 0.7
)

// knownEdgeTypes is the closed set accepted by the normalizer.
var knownEdgeTypes = map[string]bool{
	EdgeEnable:        true,
	EdgeConstraint:    true,
	EdgeDetermine:     true,
	EdgeConflictsWith: true,
}

// KnownEdgeType reports whether t is one of the four edge discriminants.
func KnownEdgeType(t string) bool { return knownEdgeTypes[t] }

// =============================================================================
// Graph - Conversation Dependency Graph Serialization
// =============================================================================

// Graph is the canonical serialization format for conversation dependency
// graphs. Used for API payloads, draft storage, and cross-tool compatibility.
//
// A Graph received from the backend is untrusted until it has passed through
// Normalize; every other package in this module assumes normalized input.
type Graph struct {
	ID      string `json:"id" bson:"id"`
	Version int64  `json:"version" bson:"version"`
	Nodes   []Node `json:"nodes" bson:"nodes"`
	Edges   []Edge `json:"edges" bson:"edges"`
}

// =============================================================================
// Node - Extracted Unit of Meaning
// =============================================================================

// Node is an atomic extracted unit of meaning in the dependency graph: a goal,
// constraint, preference, belief, fact, or open question.
type Node struct {
	ID         string   `json:"id" bson:"id"`
	Type       string   `json:"type" bson:"type"`
	Statement  string   `json:"statement" bson:"statement"`
	Status     string   `json:"status,omitempty" bson:"status,omitempty"`
	Layer      string   `json:"layer,omitempty" bson:"layer,omitempty"`           // intent/requirement/preference/risk
	Strength   string   `json:"strength,omitempty" bson:"strength,omitempty"`     // hard/soft
	Severity   string   `json:"severity,omitempty" bson:"severity,omitempty"`     // low/medium/high/critical
	Confidence float64  `json:"confidence" bson:"confidence"`                     // always in [0,1] after Normalize
	Importance *float64 `json:"importance,omitempty" bson:"importance,omitempty"` // in [0,1] when present
	Locked     bool     `json:"locked,omitempty" bson:"locked,omitempty"`

	// Value is a free-form payload. When it is a map it may embed a persisted
	// 2-D position under Value["ui"] = {"x": ..., "y": ...} (see Pin).
	Value any `json:"value,omitempty" bson:"value,omitempty"`

	Tags         []string `json:"tags,omitempty" bson:"tags,omitempty"`
	EvidenceIDs  []string `json:"evidenceIds,omitempty" bson:"evidence_ids,omitempty"`
	SourceMsgIDs []string `json:"sourceMsgIds,omitempty" bson:"source_msg_ids,omitempty"`
}

// ImportanceOr returns the node importance, or fallback when unset.
func (n *Node) ImportanceOr(fallback float64) float64 {
	if n.Importance == nil {
		return fallback
	}
	return *n.Importance
}

// Pin returns the 2-D position embedded in the node's Value payload, if any.
func (n *Node) Pin() (x, y float64, ok bool) {
	value, isMap := n.Value.(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	ui, isMap := value["ui"].(map[string]any)
	if !isMap {
		return 0, 0, false
	}
	x, okX := asFloat(ui["x"])
	y, okY := asFloat(ui["y"])
	return x, y, okX && okY
}

// WithPin returns a copy of the node whose Value payload embeds the given
// position, preserving any other Value map keys. A non-map Value is replaced.
func (n Node) WithPin(x, y float64) Node {
	base := map[string]any{}
	if prev, ok := n.Value.(map[string]any); ok {
		for k, v := range prev {
			base[k] = v
		}
	}
	base["ui"] = map[string]any{"x": x, "y": y}
	n.Value = base
	return n
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// =============================================================================
// Edge - Typed Directed Relationship
// =============================================================================

// Edge is a typed directed relationship between two nodes.
type Edge struct {
	ID         string  `json:"id" bson:"id"`
	From       string  `json:"from" bson:"from"`
	To         string  `json:"to" bson:"to"`
	Type       string  `json:"type" bson:"type"`
	Confidence float64 `json:"confidence" bson:"confidence"` // always in [0,1] after Normalize
}

// =============================================================================
// Serialization API
// =============================================================================

// MarshalGraph serializes a Graph to pretty-printed JSON bytes.
func MarshalGraph(g Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// WriteGraphFile writes a Graph to a JSON file.
func WriteGraphFile(g Graph, path string) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadGraphFile reads and normalizes a graph payload from a JSON file.
func ReadGraphFile(path string) (Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Graph{}, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data)
}

// NodeByID returns the node with the given id, or nil.
func (g *Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// EdgeByID returns the edge with the given id, or nil.
func (g *Graph) EdgeByID(id string) *Edge {
	for i := range g.Edges {
		if g.Edges[i].ID == id {
			return &g.Edges[i]
		}
	}
	return nil
}

// Arcs projects the graph's edges onto the minimal from/to shape consumed by
// the graphutil traversal helpers.
func Arcs(edges []Edge) []graphutil.Arc {
	arcs := make([]graphutil.Arc, len(edges))
	for i, e := range edges {
		arcs[i] = graphutil.Arc{From: e.From, To: e.To}
	}
	return arcs
}

// Clone returns a deep-enough copy of the graph: node and edge slices are
// copied so the receiver is never mutated through the result. Value payloads
// are shared; mutators that touch Value replace it wholesale.
func (g Graph) Clone() Graph {
	out := g
	out.Nodes = make([]Node, len(g.Nodes))
	copy(out.Nodes, g.Nodes)
	out.Edges = make([]Edge, len(g.Edges))
	copy(out.Edges, g.Edges)
	return out
}

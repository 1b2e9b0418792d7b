package cdg

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"github.com/intentflow/intentflow/pkg/graphutil"
)

// =============================================================================
// Payload - Untrusted Inbound Shape
// =============================================================================

// Payload is the loosely-typed inbound graph shape as delivered by the
// conversation backend. Every field is optional and every value is suspect;
// Normalize turns a Payload into a structurally valid Graph.
type Payload struct {
	ID      any       `json:"id"`
	Version any       `json:"version"`
	Nodes   []RawNode `json:"nodes"`
	Edges   []RawEdge `json:"edges"`
}

// RawNode mirrors Node with every typed field loosened to any.
type RawNode struct {
	ID           any      `json:"id"`
	Type         any      `json:"type"`
	Statement    any      `json:"statement"`
	Status       any      `json:"status"`
	Layer        any      `json:"layer"`
	Strength     any      `json:"strength"`
	Severity     any      `json:"severity"`
	Confidence   any      `json:"confidence"`
	Importance   any      `json:"importance"`
	Locked       any      `json:"locked"`
	Value        any      `json:"value"`
	Tags         []string `json:"tags"`
	EvidenceIDs  []string `json:"evidenceIds"`
	SourceMsgIDs []string `json:"sourceMsgIds"`
}

// RawEdge mirrors Edge with every typed field loosened to any.
type RawEdge struct {
	ID         any `json:"id"`
	From       any `json:"from"`
	To         any `json:"to"`
	Type       any `json:"type"`
	Confidence any `json:"confidence"`
}

// =============================================================================
// Normalize - Boundary Sanitization
// =============================================================================

// Normalize turns an arbitrary, possibly partial payload into a structurally
// valid Graph. It is total: it never fails and never mutates its input.
//
// Guarantees on the result:
//   - node ids are unique and non-empty (missing ids become n_<index>,
//     colliding ids grow a _dup suffix until unique)
//   - node type/status fall back to fact/proposed, statements are strings
//   - confidence and importance are clamped to [0,1] with documented fallbacks
//   - every edge references two existing node ids; anything else is dropped
//   - edge types are one of the four known discriminants (default enable)
//
// Normalize is idempotent: normalizing an already-normalized graph yields an
// equal graph.
func Normalize(p Payload) Graph {
	used := make(map[string]bool, len(p.Nodes))
	nodes := make([]Node, 0, len(p.Nodes))

	for i, raw := range p.Nodes {
		id := strings.TrimSpace(asString(raw.ID))
		if id == "" {
			id = fmt.Sprintf("n_%d", i+1)
		}
		for used[id] {
			id += "_dup"
		}
		used[id] = true

		node := Node{
			ID:           id,
			Type:         stringOr(raw.Type, TypeFact),
			Statement:    asString(raw.Statement),
			Status:       stringOr(raw.Status, StatusProposed),
			Layer:        asString(raw.Layer),
			Strength:     asString(raw.Strength),
			Severity:     asString(raw.Severity),
			Confidence:   graphutil.Clamp01(raw.Confidence, FallbackNodeConfidence),
			Locked:       asBool(raw.Locked),
			Value:        raw.Value,
			Tags:         raw.Tags,
			EvidenceIDs:  raw.EvidenceIDs,
			SourceMsgIDs: raw.SourceMsgIDs,
		}
		if raw.Importance != nil {
			imp := graphutil.Clamp01(raw.Importance, FallbackImportance)
			node.Importance = &imp
		}
		nodes = append(nodes, node)
	}

	edges := make([]Edge, 0, len(p.Edges))
	for i, raw := range p.Edges {
		from := asString(raw.From)
		to := asString(raw.To)
		if from == "" || to == "" || !used[from] || !used[to] {
			continue
		}
		id := asString(raw.ID)
		if id == "" {
			id = fmt.Sprintf("e_%d", i+1)
		}
		edgeType := asString(raw.Type)
		if !KnownEdgeType(edgeType) {
			edgeType = EdgeEnable
		}
		edges = append(edges, Edge{
			ID:         id,
			From:       from,
			To:         to,
			Type:       edgeType,
			Confidence: graphutil.Clamp01(raw.Confidence, FallbackEdgeConfidence),
		})
	}

	return Graph{
		ID:      asString(p.ID),
		Version: asVersion(p.Version),
		Nodes:   nodes,
		Edges:   edges,
	}
}

// NormalizeGraph re-normalizes an already-typed graph by round-tripping it
// through the payload shape. Useful for graphs assembled in memory.
func NormalizeGraph(g Graph) Graph {
	data, err := json.Marshal(g)
	if err != nil {
		return Graph{}
	}
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Graph{}
	}
	return Normalize(p)
}

// Decode parses raw bytes into a normalized Graph. Strict JSON is tried
// first; on failure the bytes are run through jsonrepair to tolerate the
// almost-JSON that model-driven backends occasionally emit. Only bytes that
// survive neither path produce an error.
func Decode(data []byte) (Graph, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err == nil {
		return Normalize(p), nil
	}

	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return Graph{}, fmt.Errorf("decode graph payload: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &p); err != nil {
		return Graph{}, fmt.Errorf("decode repaired graph payload: %w", err)
	}
	return Normalize(p), nil
}

// =============================================================================
// Loose Coercion Helpers
// =============================================================================

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

func asVersion(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case int:
		return int64(x)
	case int64:
		return x
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

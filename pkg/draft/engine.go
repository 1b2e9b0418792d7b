package draft

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/graphutil"
	"github.com/intentflow/intentflow/pkg/layout"
)

// Defaults applied by AddNode.
const (
	NewNodeConfidence = 0.72
	NewNodeImportance = 0.66
	NewNodeStatement  = "New node"
)

// editableParentEdgeTypes are the structural edge types the engine itself
// creates, removes, and bridges. conflicts_with edges are never synthesized
// and never bridged.
var editableParentEdgeTypes = map[string]bool{
	cdg.EdgeEnable:     true,
	cdg.EdgeDetermine:  true,
	cdg.EdgeConstraint: true,
}

// Selection identifies the node or edge currently selected in the editor.
// At most one of the fields is set.
type Selection struct {
	NodeID string
	EdgeID string
}

// Engine owns the editable in-memory graph: the draft that diverges from the
// last-synced copy as the user edits. Every mutation is synchronous and
// total; each one sets the dirty flag except pure selection changes.
//
// The engine also owns the pinned-position state that feeds back into the
// layout engine: positions the user dragged (or AddNode seeded) are pins
// that automatic layout must not override.
//
// All methods are safe for concurrent use; in practice there is a single
// interactive caller plus, optionally, an [AutoSaver] timer goroutine.
type Engine struct {
	mu        sync.Mutex
	draft     cdg.Graph
	dirty     bool
	gen       uint64 // bumps on every mutation; stale saves compare against it
	selection Selection
	pins      map[string]layout.Point
	positions map[string]layout.Point // last computed layout, pins included
}

// NewEngine normalizes the payload graph and wraps it in a fresh engine.
// Positions persisted inside node Value payloads become pins.
func NewEngine(g cdg.Graph) *Engine {
	e := &Engine{pins: make(map[string]layout.Point)}
	e.reset(cdg.NormalizeGraph(g))
	return e
}

// reset installs g as the new baseline. Caller holds no lock (constructor)
// or the engine lock.
func (e *Engine) reset(g cdg.Graph) {
	e.draft = g
	e.dirty = false
	e.pins = layout.PinsFromGraph(g)
	e.positions = nil
	if e.selection.NodeID != "" && g.NodeByID(e.selection.NodeID) == nil {
		e.selection.NodeID = ""
	}
	if e.selection.EdgeID != "" && g.EdgeByID(e.selection.EdgeID) == nil {
		e.selection.EdgeID = ""
	}
}

// Graph returns a copy of the current draft.
func (e *Engine) Graph() cdg.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.draft.Clone()
}

// Dirty reports whether the draft has unsaved edits.
func (e *Engine) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// markDirtyLocked records a mutation. Caller holds the engine lock.
func (e *Engine) markDirtyLocked() {
	e.dirty = true
	e.gen++
}

// Selection returns the current selection.
func (e *Engine) Selection() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection
}

// SelectNode selects a node. Selection changes never mark the draft dirty.
func (e *Engine) SelectNode(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = Selection{NodeID: id}
}

// SelectEdge selects an edge.
func (e *Engine) SelectEdge(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = Selection{EdgeID: id}
}

// ClearSelection clears the selection.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selection = Selection{}
}

// Pins returns a copy of the pinned-position set.
func (e *Engine) Pins() map[string]layout.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]layout.Point, len(e.pins))
	for id, p := range e.pins {
		out[id] = p
	}
	return out
}

// Layout recomputes the diagram positions for the current draft and pin set
// and caches them for drag hit-testing.
func (e *Engine) Layout() map[string]layout.Point {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.positions = layout.Compute(e.draft, e.pins)
	out := make(map[string]layout.Point, len(e.positions))
	for id, p := range e.positions {
		out[id] = p
	}
	return out
}

// =============================================================================
// Patch Operations
// =============================================================================

// NodePatch carries the fields a patch may replace. Nil pointers leave the
// field untouched; empty strings clear optional fields (layer, strength,
// severity).
type NodePatch struct {
	Statement  *string
	Type       *string
	Status     *string
	Layer      *string
	Strength   *string
	Severity   *string
	Confidence *float64
	Importance *float64
	Locked     *bool

	// ValueText, when set, is parsed with [ParseValue] before being stored;
	// Value, when non-nil, is stored as-is. ValueText wins when both are set.
	ValueText *string
	Value     any
}

// PatchNode merges the patch into the node with the matching id. Confidence
// and importance are re-clamped. A missing node is a no-op.
func (e *Engine) PatchNode(id string, patch NodePatch) {
	e.mu.Lock()
	defer e.mu.Unlock()

	n := e.draft.NodeByID(id)
	if n == nil {
		return
	}
	if patch.Statement != nil {
		n.Statement = *patch.Statement
	}
	if patch.Type != nil && *patch.Type != "" {
		n.Type = *patch.Type
	}
	if patch.Status != nil && *patch.Status != "" {
		n.Status = *patch.Status
	}
	if patch.Layer != nil {
		n.Layer = *patch.Layer
	}
	if patch.Strength != nil {
		n.Strength = *patch.Strength
	}
	if patch.Severity != nil {
		n.Severity = *patch.Severity
	}
	if patch.Confidence != nil {
		n.Confidence = graphutil.Clamp01f(*patch.Confidence, cdg.FallbackNodeConfidence)
	}
	if patch.Importance != nil {
		imp := graphutil.Clamp01f(*patch.Importance, cdg.FallbackImportance)
		n.Importance = &imp
	}
	if patch.Locked != nil {
		n.Locked = *patch.Locked
	}
	if patch.ValueText != nil {
		n.Value = ParseValue(*patch.ValueText)
	} else if patch.Value != nil {
		n.Value = patch.Value
	}
	e.markDirtyLocked()
}

// PatchEdgeType replaces only the type discriminant of the matching edge.
// Unknown types and missing edges are no-ops.
func (e *Engine) PatchEdgeType(id, edgeType string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !cdg.KnownEdgeType(edgeType) {
		return
	}
	edge := e.draft.EdgeByID(id)
	if edge == nil {
		return
	}
	edge.Type = edgeType
	e.markDirtyLocked()
}

// ParseValue interprets user-entered value text. Text that parses as JSON
// becomes the parsed structure; anything else is kept as the raw string.
// Empty text clears the value. It never fails.
func ParseValue(text string) any {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return text
	}
	return v
}

package draft

import (
	"context"

	"github.com/intentflow/intentflow/pkg/cdg"
	"github.com/intentflow/intentflow/pkg/layout"
)

// SaveOptions forwards the optional advice request to the backend.
type SaveOptions struct {
	RequestAdvice bool
	AdvicePrompt  string
}

// Saver pushes a draft to the external collaborator. A nil returned graph
// means the backend accepted the draft without sending fresh server truth.
type Saver interface {
	SaveGraph(ctx context.Context, g cdg.Graph, opts SaveOptions) (*cdg.Graph, error)
}

// Save pushes the current draft through the saver. On success the dirty flag
// clears and, if the response carries a graph, that graph is re-normalized
// and pin-merged into the new baseline. On failure the draft is left exactly
// as it was and dirty stays set so the caller can retry or keep editing.
//
// The engine does not block local edits while a save is in flight. An edit
// made after the snapshot was taken invalidates the save's outcome: the
// draft stays dirty so the edit is uploaded on the next save, and a server
// graph returned for the stale snapshot is not adopted over the newer edit.
func (e *Engine) Save(ctx context.Context, saver Saver, opts SaveOptions) error {
	e.mu.Lock()
	snapshot := e.draft.Clone()
	gen := e.gen
	e.mu.Unlock()

	result, err := saver.SaveGraph(ctx, snapshot, opts)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gen != gen {
		e.dirty = true
		return nil
	}
	if result != nil {
		e.applySnapshotLocked(*result)
		return nil
	}
	e.dirty = false
	return nil
}

// ApplySnapshot merges a backend-delivered graph snapshot (for example the
// fresh graph at the end of a conversation turn) into the engine as the new
// baseline. Locally pinned positions survive the merge: pins for node ids
// absent from the snapshot are dropped, and nodes present but lacking a
// position inherit their pin from the prior draft, so a backend update never
// silently discards user-arranged layout.
func (e *Engine) ApplySnapshot(g cdg.Graph) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applySnapshotLocked(g)
}

func (e *Engine) applySnapshotLocked(g cdg.Graph) {
	e.gen++ // invalidate any save still in flight against the old baseline
	next := cdg.NormalizeGraph(g)
	prior := e.pins

	pins := make(map[string]layout.Point, len(next.Nodes))
	for i := range next.Nodes {
		n := &next.Nodes[i]
		if x, y, ok := n.Pin(); ok {
			pins[n.ID] = layout.Point{X: x, Y: y}
			continue
		}
		if p, ok := prior[n.ID]; ok {
			pins[n.ID] = p
			next.Nodes[i] = n.WithPin(p.X, p.Y)
		}
	}

	sel := e.selection
	e.reset(next)
	e.pins = pins
	e.selection = sel
	if sel.NodeID != "" && next.NodeByID(sel.NodeID) == nil {
		e.selection.NodeID = ""
	}
	if sel.EdgeID != "" && next.EdgeByID(sel.EdgeID) == nil {
		e.selection.EdgeID = ""
	}
}

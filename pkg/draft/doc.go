// Package draft implements the interactive mutation engine for conversation
// dependency graphs: the single owned, editable copy of the graph that
// diverges from server truth as the user edits.
//
// # State Model
//
// An [Engine] owns exactly one draft graph plus a dirty flag, the current
// selection, and the set of pinned positions. All mutations are synchronous,
// total command-style operations; there is no partial failure. An ambiguous
// step inside a mutation (a reconnect edge that already exists, a reparent
// that would close a cycle) skips only that edge and completes the rest.
//
// # Structural Invariants
//
// The engine never creates a dangling edge, never creates a self-loop, and
// never introduces a directed cycle through its own edge synthesis
// ([Engine.DeleteNode] bridging, [Engine.Reparent]). Cycles already present
// in normalized input are tolerated, not repaired.
//
// # Persistence
//
// [Engine.Save] pushes the draft through a [Saver]; failures leave the draft
// untouched with dirty still set. [Engine.ApplySnapshot] merges fresh server
// truth with locally pinned positions so backend updates never discard the
// user's arrangement. [AutoSaver] adds an optional debounced background save
// after drags.
package draft

// Package layout computes deterministic 2-D positions for conversation
// dependency graphs using domain-aware semantic grouping rather than naive
// tree layout.
//
// # Algorithm
//
// Layout runs in five passes:
//
//  1. Root selection: a locked goal, else the first confirmed goal, else the
//     goal with the highest (importance, confidence) rank.
//  2. Slot classification: each node's cleaned statement is matched, in
//     priority order, against the [Catalog] of domain slot patterns
//     (people count, destination, duration, budget, lodging, health, ...).
//     A node matches at most one slot.
//  3. Leveling: the root is level 0; primary slot families are forced to
//     level 1 regardless of edge topology; health and meeting-critical nodes
//     to level 2; everything else levels by adjacency with a catch-all of 3.
//  4. Lane assignment and in-lane ordering: lanes follow a fixed priority per
//     level; free nodes order by positioned-neighbor proximity, severity,
//     importance, type, and statement text.
//  5. Packing: lanes pack into columns of at most [MaxRowsPerColumn] rows in
//     a vertical band centered on the root's y.
//
// # Pins
//
// Positions the user has arranged by hand (or that a previous layout
// produced) are passed in as pins. Pinned nodes never move: they are placed
// verbatim, excluded from packing, and pull connected free nodes toward
// their y coordinate through the neighbor-average ordering rule.
//
// # Determinism
//
// [Compute] is pure: identical graph content plus an identical pin set
// yields a bit-identical position map on every call. There is no hidden
// randomness; every tie has a total textual tie-break.
//
// # Domain Tuning
//
// The leveling override and the shipped [DefaultCatalog] are tuned for
// trip-planning conversations. The catalog is an explicit value so the
// classification rule set stays separately testable.
package layout

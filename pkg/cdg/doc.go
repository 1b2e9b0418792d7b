// Package cdg defines the conversation dependency graph model and the
// normalizer that sanitizes untrusted payloads into it.
//
// A conversation dependency graph (CDG) is the structured extraction of a
// dialogue: goals, constraints, preferences, beliefs, facts, and open
// questions, connected by typed directed edges (enable, constraint,
// determine, conflicts_with).
//
// # Architecture
//
// The package sits at the trust boundary between the conversation backend
// and everything else in this module:
//
//   - [Payload], [RawNode], [RawEdge]: loosely-typed inbound shapes
//   - [Graph], [Node], [Edge]: the closed, invariant-respecting model
//   - [Normalize], [Decode]: the only ways across the boundary
//
// Downstream packages (layout, draft) assume normalized input and never
// re-validate.
//
// # Invariants
//
// After Normalize, and preserved by every core operation:
//
//   - node ids are unique, non-empty strings
//   - every edge references two existing node ids
//   - confidence and importance are within [0,1]
//   - edge types are one of the four known discriminants
//
// # Serialization
//
// Graphs use a node-link JSON format:
//
//	{
//	  "id": "g1", "version": 3,
//	  "nodes": [{"id": "n_1", "type": "goal", "statement": "..."}],
//	  "edges": [{"id": "e_1", "from": "n_1", "to": "n_2", "type": "enable"}]
//	}
//
// All serialization types carry bson tags as well, so drafts round-trip
// through document stores unchanged.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package cdg

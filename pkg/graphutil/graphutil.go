// Package graphutil provides the structural primitives shared by the
// normalizer, the layout engine, and the draft mutation engine: numeric
// clamping, collision-resistant id generation, and directed reachability
// over edge lists.
//
// The package deliberately has no dependency on the data model. Graph
// structure is passed in as []Arc, the minimal from/to projection of an edge
// list, so that any edge representation can use these traversals.
package graphutil

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Arc is the minimal directed-edge projection used by the traversal helpers.
type Arc struct {
	From string
	To   string
}

// Clamp01 coerces v to a float64 and clamps it to [0,1]. Non-numeric and
// non-finite inputs (nil, NaN, ±Inf, unparseable strings) yield fallback.
// Numeric strings are accepted the way a loosely-typed payload delivers them.
func Clamp01(v any, fallback float64) float64 {
	switch x := v.(type) {
	case float64:
		return Clamp01f(x, fallback)
	case float32:
		return Clamp01f(float64(x), fallback)
	case int:
		return Clamp01f(float64(x), fallback)
	case int32:
		return Clamp01f(float64(x), fallback)
	case int64:
		return Clamp01f(float64(x), fallback)
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return fallback
		}
		return Clamp01f(f, fallback)
	default:
		return fallback
	}
}

// Clamp01f clamps a float64 to [0,1], substituting fallback for non-finite
// input.
func Clamp01f(f, fallback float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fallback
	}
	return math.Max(0, math.Min(1, f))
}

// NewID generates a collision-resistant identifier with the given prefix,
// e.g. NewID("n_manual") -> "n_manual_4f9c...". It relies on the platform
// random source via uuid; if that source is unavailable it falls back to a
// timestamp plus pseudo-random suffix.
func NewID(prefix string) string {
	if id, err := uuid.NewRandom(); err == nil {
		return fmt.Sprintf("%s_%s", prefix, id)
	}
	return fmt.Sprintf("%s_%d_%x", prefix, time.Now().UnixMilli(), rand.Int63())
}

// Adjacency builds a from-indexed adjacency list for the given arcs.
func Adjacency(arcs []Arc) map[string][]string {
	adj := make(map[string][]string)
	for _, a := range arcs {
		adj[a.From] = append(adj[a.From], a.To)
	}
	return adj
}

// Reachable reports whether to is reachable from from by following arcs in
// their direction. Reachable(x, x, arcs) is always true.
func Reachable(from, to string, arcs []Arc) bool {
	if from == to {
		return true
	}
	adj := Adjacency(arcs)
	seen := make(map[string]bool)
	stack := []string{from}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == to {
			return true
		}
		if seen[cur] {
			continue
		}
		seen[cur] = true
		for _, next := range adj[cur] {
			if !seen[next] {
				stack = append(stack, next)
			}
		}
	}
	return false
}

// CollectDownstream returns the set of node ids transitively reachable by
// following outgoing arcs from start, including start itself. Historically
// used for whole-subtree deletion; the mutation engine's bridge-reconnect
// delete policy has since superseded it, but it remains useful for impact
// queries.
func CollectDownstream(start string, arcs []Arc) map[string]bool {
	adj := Adjacency(arcs)
	out := make(map[string]bool)
	stack := []string{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if out[cur] {
			continue
		}
		out[cur] = true
		for _, next := range adj[cur] {
			if !out[next] {
				stack = append(stack, next)
			}
		}
	}
	return out
}

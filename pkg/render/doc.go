// Package render turns laid-out dependency graphs into visual outputs.
//
// # Overview
//
// Rendering is a two-step pipeline:
//
//	pos := layout.Compute(g, pins)
//	dot := render.ToDOT(g, pos, render.Options{})
//	svg, err := render.SVG(ctx, dot)
//
// [ToDOT] emits Graphviz DOT with fixed neato coordinates taken from the
// layout engine, so the rendered picture matches the editor's arrangement
// instead of letting Graphviz re-place nodes. Node fills encode the node
// type, edge colors encode the edge type, and edge width scales with
// confidence.
//
// [SVG] and [PNG] run Graphviz in-process via goccy/go-graphviz; no
// external dot binary is needed.
package render

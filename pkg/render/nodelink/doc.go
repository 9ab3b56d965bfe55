// Package nodelink renders waveguide shape sequences as node-link diagrams.
//
// # Overview
//
// Each concrete shape becomes a box; chained shapes are joined by arrows in
// placement order, and a shape that follows a stack marker is drawn off to
// the side of its anchor shape with a dashed edge. Box outlines take the
// color of the cross-section's main layer, and zero-length shapes are
// dashed and grey, so a glance shows which features a waveguide carries.
//
// # Usage
//
//	dot := nodelink.ToDOT(wgs, nodelink.Options{Detailed: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink

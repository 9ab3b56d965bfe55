// Package pkg provides the core libraries for sersmask, a photomask layout
// generator for SERS slot waveguides.
//
// # Overview
//
// A batch file describes a column of slot waveguides: an entrance
// waveguide, optional input and output tapers, an optional Euler bend, and
// the gold and alumina windows over the slot. sersmask derives the geometry
// of every waveguide, places the shapes end to end and exports the result
// as GDSII together with SVG, PNG, JSON and diagram previews.
//
// # Architecture
//
// The typical data flow through sersmask:
//
//	batch.toml / batch.yaml / batch.json
//	         ↓
//	    [batch] package (load, defaults, overrides)
//	         ↓
//	    [waveguide] package (derive dimensions, emit shape sequence)
//	         ↓
//	    [placement] package (replay sequence, anchors, stacking)
//	         ↓
//	    [mask] package (design of placed waveguides)
//	         ↓
//	    [render] package → GDS/SVG/PNG/JSON/DOT
//
// # Quick Start
//
//	b, err := batch.Load("chip.toml")
//	if err != nil {
//	    return err
//	}
//	runner := pipeline.NewRunner(nil, nil, logger)
//	res, err := runner.Execute(ctx, b, pipeline.Options{Formats: []string{"gds", "svg"}})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile("chip.gds", res.Artifacts["gds"], 0o644)
//
// # Main Packages
//
// ## Geometry
//
// [geom] - Points, rectangles, polygons and rigid transforms in µm.
//
// [xsection] - GDS layers and named cross-sections (layer, grow, accuracy),
// and the registry that records which cross-sections a design uses.
//
// [shape] - Shape requests (straight, taper, Euler bend, stack marker) and
// their polygon outlines.
//
// ## Layout
//
// [waveguide] - Waveguide specs, derived quantities and the builder that
// turns a spec into an ordered shape sequence.
//
// [placement] - Replays a shape sequence into placed shapes connected port
// to port.
//
// [mask] - The placed design and its export to a GDS library.
//
// [gds] - A GDSII stream reader and writer.
//
// ## Orchestration
//
// [batch] - Batch files with defaults and per-index overrides.
//
// [pipeline] - The plan → place → render pipeline used by the CLI and the
// HTTP API, with caching of rendered artifacts.
//
// [render] - Output formats; [render/sink] writes SVG, PNG and JSON and
// [render/nodelink] draws section chains with Graphviz.
//
// ## Infrastructure
//
// [cache] - Artifact cache backends (file, Redis, null) and cache keys.
//
// [catalog] - SQLite record of past runs and their waveguides.
//
// [errors] - Coded errors shared by validation, the CLI and the API.
//
// [httputil] - JSON and error responses for the HTTP API.
//
// [observability] - Hooks for pipeline, cache and HTTP instrumentation.
//
// [buildinfo] - Build-time version information.
package pkg

// Package render provides previews of mask designs.
//
// # Overview
//
// The mask itself is written as GDSII by [mask.Design.WriteGDS]. This
// package and its subpackages produce everything else a user looks at:
//
//   - Layout previews in SVG, PNG and JSON (in [sink] subpackage)
//   - Section-chain diagrams through Graphviz (in [nodelink] subpackage)
//
// # Formats
//
// [Format] names every artifact the CLI and API can produce, GDS included.
// [ParseFormat] accepts the names used on the command line:
//
//	f, err := render.ParseFormat("svg")
//
// # Colors
//
// Every preview uses the same [LayerColor] palette so a layer keeps its
// color across formats: rail blue, slot orange, buffer green, alumina
// purple, gold amber.
//
// [mask.Design.WriteGDS]: github.com/matzehuels/sersmask/pkg/mask.Design.WriteGDS
// [sink]: github.com/matzehuels/sersmask/pkg/render/sink
// [nodelink]: github.com/matzehuels/sersmask/pkg/render/nodelink
package render

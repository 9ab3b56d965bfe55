// Package sink renders a placed [mask.Design] to preview formats.
//
// # Overview
//
// A "sink" turns the placed outlines of a design into bytes:
//
//   - SVG: vector preview, one group per waveguide, one class per layer
//   - PNG: raster preview drawn with gonum/plot
//   - JSON: the shape sequence, placements and outlines for external tools
//
// Layout coordinates have +y up; the SVG sink flips the y axis so the
// preview reads the same way as a GDS viewer.
//
// # SVG Options
//
//   - [WithLayers]: only draw the given layers
//   - [WithMargin]: space around the design bounds in µm
//   - [WithLabels]: print each waveguide's name at its start
//
// [mask.Design]: github.com/matzehuels/sersmask/pkg/mask.Design
package sink

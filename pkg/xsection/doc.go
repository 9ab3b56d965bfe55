// Package xsection is the layer registry: named cross-sections, each an
// ordered list of mask layers with a growth width.
//
// A cross-section says which physical layers to draw when a shape is placed
// on it and how far each layer extends beyond the shape's own width. The
// slot itself is never drawn directly: the rail, slot and buffer layers are
// combined downstream with an XOR, which keeps regions covered by an odd
// number of layers.
//
// # Layer convention
//
// Downstream mask tooling depends on these numbers:
//
//	(1,0) rail    (1,1) slot    (1,2) buffer    (2,0) alumina    (3,0) gold
//
// # Registration
//
// A [Registry] holds one definition per name. Registering the same name with
// identical layers is a no-op; registering it with different layers is a
// CONFIG_CONFLICT error. [Registry.RegisterAll] checks every entry before
// committing any, so a failed waveguide leaves nothing behind.
package xsection

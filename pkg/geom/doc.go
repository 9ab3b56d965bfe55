// Package geom is the small geometry kernel behind the placement engine.
//
// It knows three primitives, each described in a local frame that starts at
// the origin heading along +x:
//
//   - straight: a constant-width segment
//   - taper: a segment whose width changes linearly from w1 to w2
//   - Euler bend: a symmetric clothoid pair whose curvature ramps linearly
//     from zero to 1/R at the midpoint and back to zero
//
// A [Pose] maps a local frame into layout coordinates. Positive angles turn
// counter-clockwise, so an Euler bend of +30° turns toward +y.
//
// All lengths are in micrometres. Angles are in radians unless a function
// name says Deg.
package geom

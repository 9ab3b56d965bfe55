// Package gds reads and writes the subset of GDSII Stream format a mask
// needs: one library of structures holding boundaries and structure
// references.
//
// Coordinates are given in user units (µm) and stored as 32-bit integers on
// the database grid. The default grid is 1 nm: [DefaultUserUnit] is 1e-3
// user units per database unit and [DefaultDBUnit] is 1e-9 m.
//
// Writing a library:
//
//	lib := gds.NewLibrary("SERS")
//	cell := lib.AddStructure("WG")
//	cell.AddBoundary(1, 0, outline)
//	err := gds.Write(w, lib)
//
// Records are big-endian; floating point values use the GDSII excess-64
// base-16 representation.
package gds

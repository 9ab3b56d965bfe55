// Package waveguide builds slot waveguides.
//
// A [Builder] turns a [Spec] into a [Waveguide] in two steps. Plan resolves
// the deprecated aliases, validates, derives the geometry, registers the
// cross-sections and builds the shape sequence; Place replays the sequence
// through the placement engine and records the end point. Build does both.
//
// Planning is safe to run concurrently for different specs. Placements into
// one design must be serialized by the caller.
package waveguide

import (
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/placement"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// Waveguide is one built slot waveguide.
type Waveguide struct {
	ID      string                  `json:"id"`
	Name    string                  `json:"name,omitempty"`
	Spec    Spec                    `json:"spec"`
	Derived Derived                 `json:"derived"`
	Names   Names                   `json:"-"`
	XS      []xsection.CrossSection `json:"cross_sections"`
	Shapes  shape.Sequence          `json:"shapes"`

	Start geom.Point `json:"start"`
	// End is only meaningful once Placed reports true.
	End geom.Point `json:"end"`

	Result *placement.Result `json:"-"`
}

// Placed reports whether the waveguide has been replayed.
func (w *Waveguide) Placed() bool { return w.Result != nil }

// Length returns the centerline length along the chained (non-stacked) shapes.
func (w *Waveguide) Length() float64 {
	total := 0.0
	stacked := false
	for _, r := range w.Shapes {
		if r.Kind() == shape.KindStack {
			stacked = true
			continue
		}
		if !stacked {
			total += r.(shape.Concrete).Len()
		}
		stacked = false
	}
	return total
}

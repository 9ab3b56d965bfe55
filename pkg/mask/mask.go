// Package mask collects placed waveguides into one design.
//
// A Design is safe for concurrent use. Placement into a design is
// serialized: [Design.Place] holds the design lock for the whole replay, so
// two waveguides never share a cursor.
package mask

import (
	"slices"
	"sync"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/placement"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// DefaultName is the top cell name used when a design has none.
const DefaultName = "SERS"

// Placer replays a planned waveguide at a start point.
type Placer interface {
	PlaceAt(wg *waveguide.Waveguide, start geom.Point) error
}

// Design is an ordered set of placed waveguides.
type Design struct {
	Name string

	mu         sync.Mutex
	waveguides []*waveguide.Waveguide
}

// New creates an empty design.
func New(name string) *Design {
	if name == "" {
		name = DefaultName
	}
	return &Design{Name: name}
}

// Place replays wg at start with p and adds it to the design.
func (d *Design) Place(p Placer, wg *waveguide.Waveguide, start geom.Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := p.PlaceAt(wg, start); err != nil {
		return err
	}
	d.waveguides = append(d.waveguides, wg)
	return nil
}

// Add adds an already placed waveguide.
func (d *Design) Add(wg *waveguide.Waveguide) error {
	if !wg.Placed() {
		return errors.New(errors.ErrCodeInvalidInput, "waveguide %s has not been placed", wg.ID)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.waveguides = append(d.waveguides, wg)
	return nil
}

// Waveguides returns the placed waveguides in placement order.
func (d *Design) Waveguides() []*waveguide.Waveguide {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.waveguides)
}

// Len returns the number of placed waveguides.
func (d *Design) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.waveguides)
}

// Polygons returns every outline of every waveguide in placement order.
func (d *Design) Polygons() []placement.LayerPolygon {
	var out []placement.LayerPolygon
	for _, wg := range d.Waveguides() {
		out = append(out, wg.Result.Polygons()...)
	}
	return out
}

// ByLayer groups the outlines by layer.
func (d *Design) ByLayer() map[xsection.Layer][]geom.Polygon {
	out := make(map[xsection.Layer][]geom.Polygon)
	for _, lp := range d.Polygons() {
		out[lp.Layer] = append(out[lp.Layer], lp.Polygon)
	}
	return out
}

// Layers returns the layers in use, sorted by number and datatype.
func (d *Design) Layers() []xsection.Layer {
	byLayer := d.ByLayer()
	out := make([]xsection.Layer, 0, len(byLayer))
	for l := range byLayer {
		out = append(out, l)
	}
	slices.SortFunc(out, xsection.Layer.Compare)
	return out
}

// Bounds returns the bounding box of every outline.
func (d *Design) Bounds() geom.Rect {
	var b geom.Rect
	for _, wg := range d.Waveguides() {
		b = b.Union(wg.Result.Bounds())
	}
	return b
}

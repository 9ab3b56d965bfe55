package mask

import (
	"fmt"
	"io"
	"time"

	"github.com/matzehuels/sersmask/pkg/gds"
	"github.com/matzehuels/sersmask/pkg/geom"
)

// Library converts the design to GDSII: one structure per waveguide with
// coordinates relative to its start point, and a top structure named after
// the design referencing each at its start.
func (d *Design) Library(modified time.Time) *gds.Library {
	lib := gds.NewLibrary(d.Name)
	lib.Modified = modified
	top := lib.AddStructure(d.Name)

	used := map[string]bool{d.Name: true}
	for i, wg := range d.Waveguides() {
		name := wg.Name
		for k := i; name == "" || used[name]; k++ {
			name = fmt.Sprintf("WG%03d", k)
		}
		used[name] = true

		cell := lib.AddStructure(name)
		for _, lp := range wg.Result.Polygons() {
			pts := make([]geom.Point, len(lp.Polygon))
			for j, p := range lp.Polygon {
				pts[j] = p.Add(-wg.Start.X, -wg.Start.Y)
			}
			cell.AddBoundary(lp.Layer.Number, lp.Layer.Datatype, pts)
		}
		top.AddRef(name, wg.Start)
	}
	return lib
}

// WriteGDS writes the design as a GDSII stream.
func (d *Design) WriteGDS(w io.Writer, modified time.Time) error {
	return gds.Write(w, d.Library(modified))
}

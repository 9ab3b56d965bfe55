package sink

import (
	"encoding/json"

	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/placement"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	polygons bool
	indent   bool
}

// WithJSONPolygons includes every placed outline. Without it only poses are
// exported, which keeps the output small.
func WithJSONPolygons() JSONOption { return func(r *jsonRenderer) { r.polygons = true } }

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

type jsonOutput struct {
	Name          string                  `json:"name"`
	Bounds        geom.Rect               `json:"bounds"`
	Layers        []xsection.Layer        `json:"layers"`
	CrossSections []xsection.CrossSection `json:"cross_sections"`
	Waveguides    []jsonWaveguide         `json:"waveguides"`
}

type jsonWaveguide struct {
	ID         string            `json:"id"`
	Name       string            `json:"name,omitempty"`
	Start      geom.Point        `json:"start"`
	End        geom.Point        `json:"end"`
	Length     float64           `json:"length"`
	Derived    waveguide.Derived `json:"derived"`
	Shapes     shape.Sequence    `json:"shapes"`
	Placements []jsonPlacement   `json:"placements"`
}

type jsonPlacement struct {
	Index    int                      `json:"index"`
	Kind     shape.Kind               `json:"kind"`
	XS       string                   `json:"xs"`
	Anchor   jsonPose                 `json:"anchor"`
	Exit     jsonPose                 `json:"exit"`
	Stacked  bool                     `json:"stacked,omitempty"`
	Polygons []placement.LayerPolygon `json:"polygons,omitempty"`
}

type jsonPose struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Heading float64 `json:"heading"` // degrees
}

func pose(p geom.Pose) jsonPose {
	pt := p.Point()
	return jsonPose{X: pt.X, Y: pt.Y, Heading: p.HeadingDeg()}
}

// RenderJSON exports the design: derived geometry, shape sequences,
// placements and, optionally, outlines.
func RenderJSON(d *mask.Design, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Name:   d.Name,
		Bounds: d.Bounds(),
		Layers: d.Layers(),
	}
	seen := make(map[string]bool)
	for _, wg := range d.Waveguides() {
		for _, xs := range wg.XS {
			if !seen[xs.Name] {
				seen[xs.Name] = true
				out.CrossSections = append(out.CrossSections, xs)
			}
		}
		jw := jsonWaveguide{
			ID:      wg.ID,
			Name:    wg.Name,
			Start:   wg.Start,
			End:     wg.End,
			Length:  wg.Length(),
			Derived: wg.Derived,
			Shapes:  wg.Shapes,
		}
		for _, p := range wg.Result.Placed {
			jp := jsonPlacement{
				Index:   p.Index,
				Kind:    p.Shape.Kind(),
				XS:      p.Shape.CrossSection(),
				Anchor:  pose(p.Anchor),
				Exit:    pose(p.Exit),
				Stacked: p.Stacked,
			}
			if r.polygons {
				jp.Polygons = p.Polygons
			}
			jw.Placements = append(jw.Placements, jp)
		}
		out.Waveguides = append(out.Waveguides, jw)
	}

	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

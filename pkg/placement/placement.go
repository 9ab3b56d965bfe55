// Package placement replays a shape sequence against a cursor.
//
// The engine starts at an explicit pose and places each concrete request at
// the cursor, advancing the cursor to the request's exit. A
// [shape.StackMarker] changes this for exactly one request: the request
// after the marker is placed at the anchor the request before the marker
// was placed at, and it does not move the cursor. For [A, marker, B, C]:
//
//	A at start        cursor → exit(A)
//	B at anchor(A)    cursor unchanged
//	C at exit(A)      cursor → exit(C)
//
// Every placed request is drawn on the layers of its cross-section; each
// layer's outline is the request width plus the layer's growth on both sides.
package placement

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// LayerPolygon is an outline on one mask layer.
type LayerPolygon struct {
	Layer   xsection.Layer `json:"layer"`
	Polygon geom.Polygon   `json:"polygon"`
}

// Placed is one concrete request after placement.
type Placed struct {
	Index    int            `json:"index"` // position in the input sequence
	Shape    shape.Concrete `json:"shape"`
	Anchor   geom.Pose      `json:"-"`
	Exit     geom.Pose      `json:"-"`
	Stacked  bool           `json:"stacked,omitempty"`
	Polygons []LayerPolygon `json:"polygons,omitempty"`
}

// Result is the outcome of one replay.
type Result struct {
	Placed []Placed
	Start  geom.Pose
	End    geom.Pose
}

// Polygons returns every outline in placement order.
func (r *Result) Polygons() []LayerPolygon {
	var out []LayerPolygon
	for _, p := range r.Placed {
		out = append(out, p.Polygons...)
	}
	return out
}

// Bounds returns the bounding box of every outline.
func (r *Result) Bounds() geom.Rect {
	var b geom.Rect
	for _, p := range r.Placed {
		for _, lp := range p.Polygons {
			b = b.Union(lp.Polygon.Bounds())
		}
	}
	return b
}

// Engine places sequences using cross-sections from a registry.
// An Engine holds no cursor state between calls, so one Engine may serve
// concurrent replays; callers that share a design must still serialize them.
type Engine struct {
	registry *xsection.Registry
	logger   *log.Logger
	draw     bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithoutPolygons skips outline generation; only poses are computed.
func WithoutPolygons() Option { return func(e *Engine) { e.draw = false } }

// NewEngine creates an engine reading cross-sections from reg.
func NewEngine(reg *xsection.Registry, opts ...Option) *Engine {
	e := &Engine{registry: reg, draw: true}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	return e
}

// Place replays seq starting at start.
func (e *Engine) Place(seq shape.Sequence, start geom.Pose) (*Result, error) {
	if err := Validate(seq); err != nil {
		return nil, err
	}

	res := &Result{Start: start, Placed: make([]Placed, 0, len(seq))}
	cursor := start
	var (
		prevAnchor  geom.Pose
		stackArmed  bool
		stackAnchor geom.Pose
	)

	for i, req := range seq {
		c, ok := req.(shape.Concrete)
		if !ok {
			// Validate guarantees a concrete request precedes every marker.
			stackArmed = true
			stackAnchor = prevAnchor
			continue
		}

		anchor, stacked := cursor, false
		if stackArmed {
			anchor, stacked, stackArmed = stackAnchor, true, false
		}

		xs, err := e.registry.MustLookup(c.CrossSection())
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "shape %d (%s)", i, c)
		}

		path, profile := geometry(c, xs.Accuracy())
		p := Placed{
			Index:   i,
			Shape:   c,
			Anchor:  anchor,
			Exit:    anchor.Compose(path.Exit()),
			Stacked: stacked,
		}
		if e.draw {
			p.Polygons = outlines(anchor, path, profile, xs)
		}
		res.Placed = append(res.Placed, p)

		e.logger.Debug("placed shape", "index", i, "shape", c.String(), "anchor", anchor, "stacked", stacked)

		prevAnchor = anchor
		if !stacked {
			cursor = p.Exit
		}
	}

	res.End = cursor
	return res, nil
}

// Validate checks marker placement: a marker may not open the sequence,
// follow another marker, or close the sequence.
func Validate(seq shape.Sequence) error {
	for i, req := range seq {
		if req.Kind() != shape.KindStack {
			if _, ok := req.(shape.Concrete); !ok {
				return errors.New(errors.ErrCodeInternal, "shape %d has unsupported kind %q", i, req.Kind())
			}
			continue
		}
		switch {
		case i == 0:
			return errors.New(errors.ErrCodePlacementOrder, "stack marker is the first entry; there is no anchor to stack on")
		case seq[i-1].Kind() == shape.KindStack:
			return errors.New(errors.ErrCodePlacementOrder, "stack marker at %d follows another marker", i)
		case i == len(seq)-1:
			return errors.New(errors.ErrCodePlacementOrder, "stack marker at %d has no shape to stack", i)
		}
	}
	return nil
}

// geometry maps a request to its local centerline and width profile.
func geometry(c shape.Concrete, accuracy float64) (geom.Path, func(float64) float64) {
	switch s := c.(type) {
	case shape.Straight:
		return geom.StraightPath(s.Length), geom.Constant(s.Width)
	case shape.Taper:
		return geom.StraightPath(s.Length), geom.Linear(s.Width1, s.Width2)
	case shape.EulerBend:
		return geom.EulerPath(geom.Radians(s.Angle), s.Radius, accuracy), geom.Constant(s.Width)
	}
	panic(fmt.Sprintf("placement: unhandled shape %T", c))
}

func outlines(anchor geom.Pose, path geom.Path, profile func(float64) float64, xs xsection.CrossSection) []LayerPolygon {
	var out []LayerPolygon
	for _, l := range xs.Layers {
		grow := l.Grow
		local := path.Outline(func(t float64) float64 { return max(profile(t)+2*grow, 0) })
		if local == nil {
			continue
		}
		out = append(out, LayerPolygon{Layer: l.Layer, Polygon: geom.Place(anchor, local)})
	}
	return out
}

package sink

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/render"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// SVGOption configures SVG rendering.
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	layers []xsection.Layer
	margin float64
	labels bool
}

// WithLayers restricts the preview to the given layers.
func WithLayers(ls ...xsection.Layer) SVGOption { return func(r *svgRenderer) { r.layers = ls } }

// WithMargin sets the margin around the design in µm (default 10).
func WithMargin(m float64) SVGOption { return func(r *svgRenderer) { r.margin = m } }

// WithLabels prints waveguide names at their start points.
func WithLabels() SVGOption { return func(r *svgRenderer) { r.labels = true } }

// RenderSVG renders the placed outlines of d.
func RenderSVG(d *mask.Design, opts ...SVGOption) []byte {
	r := svgRenderer{margin: 10}
	for _, opt := range opts {
		opt(&r)
	}

	b := d.Bounds().Grow(r.margin)
	w, h := max(b.Width(), 1), max(b.Height(), 1)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%.3f %.3f %.3f %.3f" width="%.0f" height="%.0f">`+"\n",
		b.Min.X, -b.Max.Y, w, h, w, h)
	renderStyle(&buf, d.Layers())
	fmt.Fprintf(&buf, `  <rect x="%.3f" y="%.3f" width="%.3f" height="%.3f" fill="white"/>`+"\n", b.Min.X, -b.Max.Y, w, h)

	for i, wg := range d.Waveguides() {
		id := wg.Name
		if id == "" {
			id = fmt.Sprintf("wg-%d", i)
		}
		fmt.Fprintf(&buf, `  <g id="%s" data-id="%s">`+"\n", escape(id), wg.ID)
		for _, lp := range wg.Result.Polygons() {
			if len(r.layers) > 0 && !slices.Contains(r.layers, lp.Layer) {
				continue
			}
			fmt.Fprintf(&buf, `    <polygon class="%s" points="%s"/>`+"\n", layerClass(lp.Layer), points(lp.Polygon))
		}
		if r.labels {
			fmt.Fprintf(&buf, `    <text x="%.3f" y="%.3f" font-size="4" font-family="monospace">%s</text>`+"\n",
				wg.Start.X, -wg.Start.Y-5, escape(id))
		}
		buf.WriteString("  </g>\n")
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderStyle(buf *bytes.Buffer, layers []xsection.Layer) {
	buf.WriteString("  <style>\n")
	for _, l := range layers {
		fmt.Fprintf(buf, "    .%s { fill: %s; fill-opacity: 0.35; stroke: %s; stroke-width: 0.05; }\n",
			layerClass(l), render.Hex(render.LayerColor(l)), render.Hex(render.LayerColor(l)))
	}
	buf.WriteString("  </style>\n")
}

func layerClass(l xsection.Layer) string {
	return fmt.Sprintf("l%d-%d", l.Number, l.Datatype)
}

// points formats pg in SVG coordinates (y down).
func points(pg geom.Polygon) string {
	parts := make([]string, len(pg))
	for i, p := range pg {
		parts[i] = fmt.Sprintf("%.3f,%.3f", p.X, -p.Y)
	}
	return strings.Join(parts, " ")
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }

package sink

import (
	"bytes"
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/render"
)

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	width vg.Length
	title string
}

// WithWidth sets the image width (default 10 inches). The height follows the
// design's aspect ratio.
func WithWidth(w vg.Length) PNGOption { return func(r *pngRenderer) { r.width = w } }

// WithTitle sets the plot title (default: the design name).
func WithTitle(t string) PNGOption { return func(r *pngRenderer) { r.title = t } }

// RenderPNG draws the outlines of d, one legend entry per layer.
func RenderPNG(d *mask.Design, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{width: 10 * vg.Inch, title: d.Name}
	for _, opt := range opts {
		opt(&r)
	}

	p := plot.New()
	p.Title.Text = r.title
	p.X.Label.Text = "x (µm)"
	p.Y.Label.Text = "y (µm)"

	byLayer := d.ByLayer()
	for _, l := range d.Layers() {
		for i, pg := range byLayer[l] {
			xys := make(plotter.XYs, len(pg))
			for j, pt := range pg {
				xys[j] = plotter.XY{X: pt.X, Y: pt.Y}
			}
			poly, err := plotter.NewPolygon(xys)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", l, err)
			}
			c := render.LayerColor(l)
			poly.Color = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 0x60}
			poly.LineStyle.Width = 0
			p.Add(poly)
			if i == 0 {
				p.Legend.Add(l.String(), poly)
			}
		}
	}
	p.Legend.Top = true

	b := d.Bounds()
	height := r.width / 2
	if b.Width() > 0 {
		aspect := b.Height() / b.Width()
		height = max(min(r.width*vg.Length(aspect), 3*r.width), 3*vg.Inch)
	}

	wt, err := p.WriterTo(r.width, height, "png")
	if err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("png: %w", err)
	}
	return buf.Bytes(), nil
}

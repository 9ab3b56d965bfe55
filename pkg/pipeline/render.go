package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/observability"
	"github.com/matzehuels/sersmask/pkg/render"
	"github.com/matzehuels/sersmask/pkg/render/nodelink"
	"github.com/matzehuels/sersmask/pkg/render/sink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, d *mask.Design, opts Options) (artifacts map[string][]byte, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()
	defer func() { hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err) }()

	artifacts = make(map[string][]byte, len(opts.Formats))
	var dot string // shared by dot and chain

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch render.Format(format) {
		case render.FormatGDS:
			modified := opts.Modified
			if modified.IsZero() {
				modified = time.Now()
			}
			var buf bytes.Buffer
			err = d.WriteGDS(&buf, modified)
			data = buf.Bytes()
		case render.FormatSVG:
			data = sink.RenderSVG(d, buildSVGOptions(opts)...)
		case render.FormatPNG:
			data, err = sink.RenderPNG(d, sink.WithWidth(vg.Length(opts.PNGWidth)*vg.Inch))
		case render.FormatJSON:
			jsonOpts := []sink.JSONOption{sink.WithJSONIndent()}
			if opts.Polygons {
				jsonOpts = append(jsonOpts, sink.WithJSONPolygons())
			}
			data, err = sink.RenderJSON(d, jsonOpts...)
		case render.FormatDOT, render.FormatChain:
			if dot == "" {
				dot = nodelink.ToDOT(d.Waveguides(), nodelink.Options{Detailed: opts.Detailed})
			}
			if render.Format(format) == render.FormatDOT {
				data = []byte(dot)
			} else {
				data, err = nodelink.RenderSVG(ctx, dot)
			}
		default:
			return nil, fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}

	return artifacts, nil
}

// buildSVGOptions builds SVG preview options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	var svgOpts []sink.SVGOption
	if len(opts.layers) > 0 {
		svgOpts = append(svgOpts, sink.WithLayers(opts.layers...))
	}
	if opts.Labels {
		svgOpts = append(svgOpts, sink.WithLabels())
	}
	return svgOpts
}

package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/sersmask/pkg/render"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// Options configures section-chain diagram generation.
type Options struct {
	// Detailed includes lengths, widths and the cross-section in node labels.
	// When false, only the shape kind and cross-section are shown.
	Detailed bool
}

// ToDOT converts the shape sequences of wgs to Graphviz DOT format. Each
// waveguide becomes a left-to-right cluster; chained shapes are joined by
// solid arrows and a stacked shape hangs off its anchor shape with a
// dashed "stack" edge.
//
// The resulting DOT string can be rendered using [RenderSVG].
func ToDOT(wgs []*waveguide.Waveguide, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  nodesep=0.3;\n")

	for i, wg := range wgs {
		label := wg.Name
		if label == "" {
			label = fmt.Sprintf("waveguide %d", i)
		}
		fmt.Fprintf(&buf, "\n  subgraph \"cluster_%d\" {\n", i)
		fmt.Fprintf(&buf, "    label=%q;\n", label)
		writeChain(&buf, i, wg.Shapes, opts)
		buf.WriteString("  }\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeChain(buf *bytes.Buffer, wg int, seq shape.Sequence, opts Options) {
	prev, anchor := "", ""
	stack := false
	for i, r := range seq {
		c, ok := r.(shape.Concrete)
		if !ok {
			stack = true
			continue
		}
		id := fmt.Sprintf("w%d_s%d", wg, i)
		fmt.Fprintf(buf, "    %q [%s];\n", id, strings.Join(fmtAttrs(c, opts.Detailed), ", "))
		switch {
		case stack:
			fmt.Fprintf(buf, "    %q -> %q [style=dashed, label=\"stack\"];\n", anchor, id)
			stack = false
			continue
		case prev != "":
			fmt.Fprintf(buf, "    %q -> %q;\n", prev, id)
		}
		prev, anchor = id, id
	}
}

func fmtLabel(c shape.Concrete, detailed bool) string {
	if !detailed {
		return fmt.Sprintf("%s\n%s", c.Kind(), c.CrossSection())
	}
	var dims string
	switch s := c.(type) {
	case shape.Straight:
		dims = fmt.Sprintf("l=%g w=%g", s.Length, s.Width)
	case shape.Taper:
		dims = fmt.Sprintf("l=%g w=%g→%g", s.Length, s.Width1, s.Width2)
	case shape.EulerBend:
		dims = fmt.Sprintf("%+g° r=%g w=%g", s.Angle, s.Radius, s.Width)
	}
	return fmt.Sprintf("%s\n%s\n%s", c.Kind(), dims, c.CrossSection())
}

func fmtAttrs(c shape.Concrete, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(c, detailed))}
	name := c.CrossSection()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if l, ok := accentLayer[name]; ok {
		attrs = append(attrs, fmt.Sprintf("color=%q", render.Hex(render.LayerColor(l))), "penwidth=2")
	}
	if c.Len() == 0 {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	return attrs
}

// accentLayer picks the outline color of a node from its cross-section.
var accentLayer = map[string]xsection.Layer{
	xsection.WG:       xsection.LayerRail,
	xsection.TaperIn:  xsection.LayerSlot,
	xsection.TaperOut: xsection.LayerSlot,
	xsection.TaperGap: xsection.LayerBuffer,
	xsection.Alumina:  xsection.LayerAlumina,
	xsection.Gold:     xsection.LayerGold,
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

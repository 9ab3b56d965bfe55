package render

import (
	"fmt"
	"image/color"
	"slices"
	"strings"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// Format is an output artifact type.
type Format string

// Supported formats.
const (
	FormatGDS  Format = "gds"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
	// FormatChain is the section-chain diagram rendered to SVG by Graphviz.
	FormatChain Format = "chain"
)

// Formats lists every format in the order the CLI documents them.
var Formats = []Format{FormatGDS, FormatSVG, FormatPNG, FormatJSON, FormatDOT, FormatChain}

// ParseFormat parses a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(Formats, f) {
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want one of %s)", s, FormatList())
	}
	return f, nil
}

// FormatList returns the format names joined by commas.
func FormatList() string {
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}

// Ext returns the file extension of f, with the leading dot.
func (f Format) Ext() string {
	switch f {
	case FormatChain:
		return ".chain.svg"
	case FormatDOT:
		return ".dot"
	}
	return "." + string(f)
}

// ContentType returns the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG, FormatChain:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDOT:
		return "text/vnd.graphviz"
	}
	return "application/octet-stream"
}

var palette = map[xsection.Layer]color.RGBA{
	xsection.LayerRail:    {R: 0x1f, G: 0x77, B: 0xb4, A: 0xff},
	xsection.LayerSlot:    {R: 0xff, G: 0x7f, B: 0x0e, A: 0xff},
	xsection.LayerBuffer:  {R: 0x2c, G: 0xa0, B: 0x2c, A: 0xff},
	xsection.LayerAlumina: {R: 0x94, G: 0x67, B: 0xbd, A: 0xff},
	xsection.LayerGold:    {R: 0xd4, G: 0xa0, B: 0x17, A: 0xff},
}

// LayerColor returns the preview color of l. Unknown layers are grey.
func LayerColor(l xsection.Layer) color.RGBA {
	if c, ok := palette[l]; ok {
		return c
	}
	return color.RGBA{R: 0x7f, G: 0x7f, B: 0x7f, A: 0xff}
}

// Hex returns c as #rrggbb.
func Hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

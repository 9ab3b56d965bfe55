package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/waveguide"
)

func chain() []*waveguide.Waveguide {
	return []*waveguide.Waveguide{{
		Name: "arm",
		Shapes: shape.Sequence{
			shape.Straight{Length: 10, Width: 4, XS: "wg"},
			shape.StackMarker{},
			shape.Taper{Length: 20, Width1: 0, Width2: 0.5, XS: "taper-gap"},
			shape.Taper{Length: 20, Width1: 4, Width2: 1.5, XS: "taper-in"},
			shape.Straight{Length: 0, XS: "wg"},
		},
	}}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(chain(), Options{})

	for _, want := range []string{
		"rankdir=LR;",
		`label="arm";`,
		`"w0_s0" -> "w0_s2" [style=dashed, label="stack"];`,
		`"w0_s0" -> "w0_s3";`,
		`"w0_s3" -> "w0_s4";`,
		`fillcolor=lightgrey`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"w0_s2" -> "w0_s3"`) {
		t.Error("stacked shape must not be chained")
	}
}

func TestToDOTDetailed(t *testing.T) {
	dot := ToDOT(chain(), Options{Detailed: true})
	if !strings.Contains(dot, `l=20 w=4→1.5`) {
		t.Errorf("detailed label missing dimensions:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(chain(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("viewBox not normalized: %.200s", svg)
	}
}

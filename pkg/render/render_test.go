package render

import (
	"testing"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"svg", FormatSVG, true},
		{" PNG ", FormatPNG, true},
		{"chain", FormatChain, true},
		{"gds", FormatGDS, true},
		{"pdf", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.ok != (err == nil) {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if !tt.ok && !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error code = %s, want INVALID_FORMAT", errors.GetCode(err))
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatExt(t *testing.T) {
	if got := FormatChain.Ext(); got != ".chain.svg" {
		t.Errorf("chain ext = %q", got)
	}
	if got := FormatGDS.Ext(); got != ".gds" {
		t.Errorf("gds ext = %q", got)
	}
}

func TestLayerColor(t *testing.T) {
	if got := Hex(LayerColor(xsection.LayerRail)); got != "#1f77b4" {
		t.Errorf("rail color = %s", got)
	}
	if got := Hex(LayerColor(xsection.Layer{Number: 9})); got != "#7f7f7f" {
		t.Errorf("unknown layer color = %s", got)
	}
}

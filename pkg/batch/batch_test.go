package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

const exampleTOML = `
name = "example"
count = 8
separation = 50

[defaults]
width = 0.5
gap = 0.5
length = 100
buffer = 3
entrance = 50
out_length = 100
taper = { enabled = true, length = 100, width = 20, buffer = 5 }
taper_out = { enabled = true, length = 50, width = 10, buffer = 10 }
bend = { enabled = true, angle = 30, sep = 10 }

[overrides.1]
taper = { enabled = false }

[overrides.2]
taper_out = { enabled = false }

[overrides.3]
bend = { enabled = false }

[overrides.4]
taper = { enabled = false }
taper_out = { enabled = false }

[overrides.5]
taper_out = { enabled = false }
bend = { enabled = false }

[overrides.6]
bend = { enabled = false }
taper = { enabled = false }

[overrides.7]
taper = { enabled = false }
taper_out = { enabled = false }
bend = { enabled = false }
`

const exampleYAML = `
name: example
count: 8
separation: 50
defaults:
  width: 0.5
  gap: 0.5
  length: 100
  buffer: 3
  entrance: 50
  out_length: 100
  taper: {enabled: true, length: 100, width: 20, buffer: 5}
  taper_out: {enabled: true, length: 50, width: 10, buffer: 10}
  bend: {enabled: true, angle: 30, sep: 10}
overrides:
  1: {taper: {enabled: false}}
  2: {taper_out: {enabled: false}}
  3: {bend: {enabled: false}}
  4: {taper: {enabled: false}, taper_out: {enabled: false}}
  5: {taper_out: {enabled: false}, bend: {enabled: false}}
  6: {bend: {enabled: false}, taper: {enabled: false}}
  7: {taper: {enabled: false}, taper_out: {enabled: false}, bend: {enabled: false}}
`

const exampleJSON = `{
  "name": "example",
  "count": 8,
  "separation": 50,
  "defaults": {
    "width": 0.5, "gap": 0.5, "length": 100, "buffer": 3,
    "entrance": 50, "out_length": 100,
    "taper": {"enabled": true, "length": 100, "width": 20, "buffer": 5},
    "taper_out": {"enabled": true, "length": 50, "width": 10, "buffer": 10},
    "bend": {"enabled": true, "angle": 30, "sep": 10}
  },
  "overrides": {
    "1": {"taper": {"enabled": false}},
    "2": {"taper_out": {"enabled": false}},
    "3": {"bend": {"enabled": false}},
    "4": {"taper": {"enabled": false}, "taper_out": {"enabled": false}},
    "5": {"taper_out": {"enabled": false}, "bend": {"enabled": false}},
    "6": {"bend": {"enabled": false}, "taper": {"enabled": false}},
    "7": {"taper": {"enabled": false}, "taper_out": {"enabled": false}, "bend": {"enabled": false}}
  }
}`

func TestParseTOML(t *testing.T) {
	b, err := Parse([]byte(exampleTOML), FormatTOML)
	require.NoError(t, err)

	assert.Equal(t, "example", b.Name)
	assert.Equal(t, 50.0, b.Separation)
	assert.Equal(t, ChainEnd, b.ChainX)
	assert.True(t, b.Chain)
	require.Equal(t, 8, b.Len())

	first := b.Specs[0]
	assert.Equal(t, 0.5, first.Width)
	assert.Equal(t, 100.0, first.Length)
	assert.True(t, first.Taper.Enabled)
	assert.Equal(t, 20.0, first.Taper.Width)
	assert.Equal(t, 30.0, first.Bend.Angle)
	assert.Equal(t, waveguide.DefaultEulerRadius, first.Bend.Radius, "built-in default survives the defaults table")
	assert.Equal(t, waveguide.DefaultAccuracy, first.Accuracy)

	// An override touches only the keys it names.
	second := b.Specs[1]
	assert.False(t, second.Taper.Enabled)
	assert.Equal(t, 100.0, second.Taper.Length)
	assert.Equal(t, 20.0, second.Taper.Width)
	assert.True(t, second.TaperOut.Enabled)

	last := b.Specs[7]
	assert.False(t, last.Taper.Enabled)
	assert.False(t, last.TaperOut.Enabled)
	assert.False(t, last.Bend.Enabled)
}

func TestFormatsAgree(t *testing.T) {
	want, err := Parse([]byte(exampleTOML), FormatTOML)
	require.NoError(t, err)

	for _, tc := range []struct {
		format Format
		data   string
	}{
		{FormatYAML, exampleYAML},
		{FormatJSON, exampleJSON},
	} {
		t.Run(string(tc.format), func(t *testing.T) {
			got, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("batch mismatch (-toml +%s):\n%s", tc.format, diff)
			}
		})
	}
}

func TestExplicitWaveguides(t *testing.T) {
	data := `
chain = false

[defaults]
width = 0.4
gap = 0.1
length = 50
buffer = 2

[[waveguides]]
name = "short"
start = { x = 0, y = 0 }

[[waveguides]]
name = "long"
length = 200
start = { x = 0, y = 100 }
gold = { enabled = true }
`
	b, err := Parse([]byte(data), FormatTOML)
	require.NoError(t, err)
	require.Equal(t, 2, b.Len())
	assert.False(t, b.Chain)

	assert.Equal(t, "short", b.Specs[0].Name)
	assert.Equal(t, 50.0, b.Specs[0].Length)
	assert.Equal(t, "long", b.Specs[1].Name)
	assert.Equal(t, 200.0, b.Specs[1].Length)
	assert.Equal(t, 0.4, b.Specs[1].Width)
	assert.Equal(t, geom.Pt(0, 100), b.Specs[1].Start)
	assert.True(t, b.Specs[1].Gold.Enabled)
	assert.Equal(t, waveguide.DefaultGoldLength, b.Specs[1].Gold.Length)
}

func TestDefaultCountIsOne(t *testing.T) {
	b, err := Parse([]byte(`{"defaults": {"width": 1, "gap": 1, "length": 10, "buffer": 1}}`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, DefaultSeparation, b.Separation)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		code   errors.Code
	}{
		{"unknown toml key", FormatTOML, "[defaults]\nlenght = 5\n", errors.ErrCodeInvalidConfig},
		{"unknown yaml key", FormatYAML, "defaults:\n  lenght: 5\n", errors.ErrCodeInvalidConfig},
		{"unknown json key", FormatJSON, `{"defaults": {"lenght": 5}}`, errors.ErrCodeInvalidConfig},
		{"unknown top-level key", FormatJSON, `{"cuont": 2}`, errors.ErrCodeInvalidConfig},
		{"override out of range", FormatTOML, "count = 2\n[overrides.2]\nwidth = 1\n", errors.ErrCodeInvalidConfig},
		{"override not an index", FormatJSON, `{"overrides": {"first": {}}}`, errors.ErrCodeInvalidConfig},
		{"bad chain mode", FormatYAML, "chain_x: middle\n", errors.ErrCodeInvalidConfig},
		{"negative separation", FormatTOML, "separation = -1\n", errors.ErrCodeInvalidGeometry},
		{"negative count", FormatTOML, "count = -3\n", errors.ErrCodeInvalidConfig},
		{"count mismatch", FormatTOML, "count = 3\n[[waveguides]]\nwidth = 1\n", errors.ErrCodeInvalidConfig},
		{"malformed", FormatTOML, "count = = 3\n", errors.ErrCodeInvalidConfig},
		{"unsupported format", Format("xml"), "<batch/>", errors.ErrCodeInvalidFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.GetCode(err), "error: %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "chip-a.yaml")
	require.NoError(t, os.WriteFile(path, []byte("count: 2\n"), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chip-a", b.Name, "name falls back to the file name")
	assert.Equal(t, 2, b.Len())

	_, err = Load(filepath.Join(dir, "chip.ini"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat))

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidConfig))
}

func TestNextStart(t *testing.T) {
	prevStart, prevEnd := geom.Pt(0, 10), geom.Pt(400, 60)

	assert.Equal(t, geom.Pt(400, 110), NextStart(prevStart, prevEnd, 50, ChainEnd))
	assert.Equal(t, geom.Pt(0, 110), NextStart(prevStart, prevEnd, 50, ChainStart))
}

func TestChainedPlacement(t *testing.T) {
	b, err := Parse([]byte(exampleTOML), FormatTOML)
	require.NoError(t, err)

	builder := waveguide.NewBuilder(xsection.NewRegistry(), waveguide.WithoutPolygons())
	var prev *waveguide.Waveguide
	for i, spec := range b.Specs {
		wg, err := builder.Plan(spec)
		require.NoError(t, err, "waveguide %d", i)

		start := spec.Start
		if prev != nil {
			start = NextStart(prev.Start, prev.End, b.Separation, b.ChainX)
		}
		require.NoError(t, builder.PlaceAt(wg, start))

		if prev != nil {
			assert.InDelta(t, prev.End.Y+50, wg.Start.Y, 1e-9, "waveguide %d", i)
			assert.InDelta(t, prev.End.X, wg.Start.X, 1e-9, "waveguide %d", i)
		}
		prev = wg
	}
}

// Package pipeline provides the mask build pipeline shared by the CLI and
// the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Plan: validate and derive every spec of a batch, in parallel, then
//     register their cross-sections in batch order
//  2. Place: replay the shape sequences one after the other into a single
//     design, chaining each start point off the previous end point
//  3. Render: generate the requested artifacts (GDS, SVG, PNG, JSON, DOT)
//
// Rendered artifacts are cached by a hash of the placed design, so building
// the same batch twice only replays the geometry.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	b, err := batch.Load("chip.toml")
//	result, err := runner.Execute(ctx, b, pipeline.Options{
//	    Formats: []string{"gds", "svg"},
//	})
//	gdsData := result.Artifacts["gds"]
package pipeline

import (
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/sersmask/pkg/cache"
	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/render"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultFormat is the artifact built when no format is requested.
	DefaultFormat = string(render.FormatGDS)

	// DefaultPNGWidth is the PNG preview width in inches.
	DefaultPNGWidth = 10.0

	// MaxPNGWidth bounds the PNG preview width in inches.
	MaxPNGWidth = 100.0
)

// DefaultConcurrency is the number of specs planned in parallel.
var DefaultConcurrency = runtime.GOMAXPROCS(0)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains the build configuration that is not part of the batch.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Render options
	Formats  []string `json:"formats,omitempty"`
	Layers   []string `json:"layers,omitempty"`   // restrict SVG previews, e.g. "1/0" or "gold"
	Labels   bool     `json:"labels,omitempty"`   // waveguide names in SVG previews
	Detailed bool     `json:"detailed,omitempty"` // dimensions in chain diagrams
	PNGWidth float64  `json:"png_width,omitempty"`
	Polygons bool     `json:"polygons,omitempty"` // outlines in JSON output

	// Runtime options (not serialized)
	Concurrency int         `json:"-"`
	Refresh     bool        `json:"-"` // skip cache reads
	Modified    time.Time   `json:"-"` // GDS timestamp; zero means time.Now
	Logger      *log.Logger `json:"-"`

	layers []xsection.Layer
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Design holds the placed waveguides.
	Design *mask.Design

	// DesignHash is the content hash of the placed design.
	DesignHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Waveguides    int
	Shapes        int
	Polygons      int
	CrossSections int
	PlanTime      time.Duration
	PlaceTime     time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits.
type CacheInfo struct {
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are known.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if _, err := render.ParseFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills in every unset option.
func (o *Options) SetDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	if o.PNGWidth == 0 {
		o.PNGWidth = DefaultPNGWidth
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Validate applies defaults, normalizes format names and parses layer filters.
func (o *Options) Validate() error {
	o.SetDefaults()
	seen := make(map[string]bool, len(o.Formats))
	formats := o.Formats[:0:0]
	for _, s := range o.Formats {
		f, err := render.ParseFormat(s)
		if err != nil {
			return err
		}
		if !seen[string(f)] {
			seen[string(f)] = true
			formats = append(formats, string(f))
		}
	}
	o.Formats = formats

	o.layers = nil
	for _, s := range o.Layers {
		l, err := xsection.ParseLayer(s)
		if err != nil {
			return err
		}
		o.layers = append(o.layers, l)
	}

	if o.PNGWidth < 0 || o.PNGWidth > MaxPNGWidth {
		return errors.New(errors.ErrCodeInvalidInput, "must be in (0, %g], got %g", MaxPNGWidth, o.PNGWidth).WithField("png_width")
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for one format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch render.Format(format) {
	case render.FormatSVG:
		k.Layers = o.Layers
		k.Labels = o.Labels
	case render.FormatDOT, render.FormatChain:
		k.Detailed = o.Detailed
	case render.FormatPNG:
		k.Width = o.PNGWidth
	case render.FormatJSON:
		k.Polygons = o.Polygons
	}
	return k
}

// designKey is what the design hash is computed over: the placed geometry
// inputs, not the generated IDs.
type designKey struct {
	Name       string
	Waveguides []waveguideKey
}

type waveguideKey struct {
	Name  string
	Spec  waveguide.Spec
	Start [2]float64
}

func keyOf(d *mask.Design) designKey {
	k := designKey{Name: d.Name}
	for _, wg := range d.Waveguides() {
		k.Waveguides = append(k.Waveguides, waveguideKey{
			Name:  wg.Name,
			Spec:  wg.Spec,
			Start: [2]float64{wg.Start.X, wg.Start.Y},
		})
	}
	return k
}

// Package batch reads mask batch files: a list of waveguide specs placed one
// above the other in a single design.
//
// A batch file is TOML, YAML or JSON. Every waveguide starts from the
// built-in defaults, then the file's defaults table, then its own override:
//
//	name = "SERS"
//	count = 8
//	separation = 50
//
//	[defaults]
//	width = 0.5
//	gap = 0.5
//	length = 100
//	buffer = 3
//	taper = { enabled = true, length = 100, width = 20, buffer = 5 }
//
//	[overrides.1]
//	taper = { enabled = false }
//
// Instead of count and overrides, a file may list its waveguides explicitly
// in a waveguides array; each entry is still applied on top of the defaults.
package batch

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/waveguide"
)

// DefaultSeparation is the vertical gap between chained waveguides, in µm.
const DefaultSeparation = 50.0

// MaxCount bounds the number of waveguides in one batch.
const MaxCount = 4096

// Format is a batch file encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ChainMode selects which x coordinate the next waveguide starts at.
type ChainMode string

const (
	// ChainEnd starts the next waveguide above the end of the previous one.
	ChainEnd ChainMode = "end"
	// ChainStart starts it above the start of the previous one, so all
	// inputs line up on one vertical.
	ChainStart ChainMode = "start"
)

// Batch is a decoded batch file.
type Batch struct {
	Name       string           `json:"name"`
	Separation float64          `json:"separation"`
	ChainX     ChainMode        `json:"chain_x"`
	Chain      bool             `json:"chain"`
	Specs      []waveguide.Spec `json:"waveguides"`
}

// header holds the scalar keys shared by every encoding.
type header struct {
	Name       string
	Count      int
	Separation *float64
	ChainX     string
	Chain      *bool
}

// FormatFromPath infers the encoding from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown batch file type %q (want .toml, .yaml or .json)", filepath.Ext(path))
}

// Load reads and decodes the batch file at path.
func Load(path string) (*Batch, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	b, err := Parse(data, format)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)); b.Name == "" && errors.ValidateName(name) == nil {
		b.Name = name
	}
	return b, nil
}

// Parse decodes a batch file in the given encoding.
func Parse(data []byte, format Format) (*Batch, error) {
	var (
		d   decoder
		err error
	)
	switch format {
	case FormatTOML:
		d, err = decodeTOML(data)
	case FormatYAML:
		d, err = decodeYAML(data)
	case FormatJSON:
		d, err = decodeJSON(data)
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported batch format %q", format)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode %s batch", format)
	}
	return assemble(d)
}

// decoder applies the raw sections of one decoded file onto specs.
type decoder interface {
	header() header
	// defaults applies the defaults table, if any.
	defaults(*waveguide.Spec) error
	// entries is the length of the explicit waveguides list.
	entries() int
	// entry applies the i-th explicit waveguide.
	entry(i int, s *waveguide.Spec) error
	// overrides lists the override indices.
	overrides() ([]int, error)
	// override applies the override for index i.
	override(i int, s *waveguide.Spec) error
	// unknown reports keys that no section consumed.
	unknown() error
}

func assemble(d decoder) (*Batch, error) {
	h := d.header()
	b := &Batch{
		Name:       h.Name,
		Separation: DefaultSeparation,
		ChainX:     ChainEnd,
		Chain:      true,
	}
	if h.Separation != nil {
		b.Separation = *h.Separation
	}
	if h.Chain != nil {
		b.Chain = *h.Chain
	}
	if h.ChainX != "" {
		b.ChainX = ChainMode(h.ChainX)
	}
	if err := b.validateHeader(); err != nil {
		return nil, err
	}

	base := waveguide.DefaultSpec()
	if err := d.defaults(&base); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode defaults")
	}

	n := d.entries()
	switch {
	case n > 0 && h.Count > 0 && h.Count != n:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "count %d does not match %d listed waveguides", h.Count, n).WithField("count")
	case n == 0 && h.Count < 0:
		return nil, errors.New(errors.ErrCodeInvalidConfig, "must not be negative, got %d", h.Count).WithField("count")
	case n == 0 && h.Count == 0:
		n = 1
	case n == 0:
		n = h.Count
	}
	if n > MaxCount {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "too many waveguides (max %d): %d", MaxCount, n).WithField("count")
	}

	b.Specs = make([]waveguide.Spec, n)
	for i := range b.Specs {
		b.Specs[i] = base
		if d.entries() > 0 {
			if err := d.entry(i, &b.Specs[i]); err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode waveguide %d", i)
			}
		}
	}

	idx, err := d.overrides()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode overrides")
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "override index %d out of range [0, %d)", i, n).WithField("overrides")
		}
		if err := d.override(i, &b.Specs[i]); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode override %d", i)
		}
	}
	if err := d.unknown(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Batch) validateHeader() error {
	if err := errors.ValidateNonNegative("separation", b.Separation); err != nil {
		return err
	}
	switch b.ChainX {
	case ChainEnd, ChainStart:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "must be %q or %q, got %q", ChainEnd, ChainStart, b.ChainX).WithField("chain_x")
	}
	if b.Name != "" {
		if err := errors.ValidateName(b.Name); err != nil {
			return err
		}
	}
	return nil
}

// NextStart returns where the waveguide after one spanning prevStart to
// prevEnd begins: sep above its end, at the x the mode selects.
func NextStart(prevStart, prevEnd geom.Point, sep float64, mode ChainMode) geom.Point {
	x := prevEnd.X
	if mode == ChainStart {
		x = prevStart.X
	}
	return geom.Pt(x, prevEnd.Y+sep)
}

// Len returns the number of waveguides.
func (b *Batch) Len() int { return len(b.Specs) }

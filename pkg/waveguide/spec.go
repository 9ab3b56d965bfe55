package waveguide

import (
	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
)

// Defaults for optional parameters.
const (
	DefaultAccuracy      = geom.DefaultAccuracy
	DefaultEulerRadius   = 50.0
	DefaultAluminaLength = 100.0
	DefaultGoldLength    = 50.0
)

// Taper configures the input or output taper.
type Taper struct {
	Enabled bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	Length  float64 `json:"length" toml:"length" yaml:"length"`
	Width   float64 `json:"width" toml:"width" yaml:"width"`
	Buffer  float64 `json:"buffer" toml:"buffer" yaml:"buffer"`
}

// Bend configures the Euler bend pair that offsets the output from the input.
type Bend struct {
	Enabled bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	Angle   float64 `json:"angle" toml:"angle" yaml:"angle"` // degrees, positive turns toward +y
	Sep     float64 `json:"sep" toml:"sep" yaml:"sep"`       // straight between the two bends
	Radius  float64 `json:"radius" toml:"radius" yaml:"radius"`
}

// Metal configures one metal overlay of the active region.
type Metal struct {
	Enabled bool    `json:"enabled" toml:"enabled" yaml:"enabled"`
	Length  float64 `json:"length" toml:"length" yaml:"length"`
}

// Spec is the complete parameter set of one slot waveguide. Lengths and
// widths are in µm, angles in degrees.
type Spec struct {
	Name string `json:"name,omitempty" toml:"name" yaml:"name"`

	Width  float64 `json:"width" toml:"width" yaml:"width"`    // rail width
	Gap    float64 `json:"gap" toml:"gap" yaml:"gap"`          // slot gap between the rails
	Length float64 `json:"length" toml:"length" yaml:"length"` // active region
	Buffer float64 `json:"buffer" toml:"buffer" yaml:"buffer"`

	Entrance  float64 `json:"entrance" toml:"entrance" yaml:"entrance"`
	OutLength float64 `json:"out_length" toml:"out_length" yaml:"out_length"`

	// Deprecated: use Entrance.
	TaperAccess *float64 `json:"taper_access,omitempty" toml:"taper_access" yaml:"taper_access"`
	// Deprecated: use OutLength.
	BendExit *float64 `json:"bend_exit,omitempty" toml:"bend_exit" yaml:"bend_exit"`

	Start    geom.Point `json:"start" toml:"start" yaml:"start"`
	Accuracy float64    `json:"accuracy" toml:"accuracy" yaml:"accuracy"`

	Taper    Taper `json:"taper" toml:"taper" yaml:"taper"`
	TaperOut Taper `json:"taper_out" toml:"taper_out" yaml:"taper_out"`
	Bend     Bend  `json:"bend" toml:"bend" yaml:"bend"`
	Alumina  Metal `json:"alumina" toml:"alumina" yaml:"alumina"`
	Gold     Metal `json:"gold" toml:"gold" yaml:"gold"`

	// MetalWidth overrides the metal mask growth, which defaults to the buffer offset.
	MetalWidth *float64 `json:"metal_width,omitempty" toml:"metal_width" yaml:"metal_width"`

	// Namespace prefixes every cross-section name, so waveguides with
	// different geometry can share one registry.
	Namespace string `json:"namespace,omitempty" toml:"namespace" yaml:"namespace"`
}

// DefaultSpec returns a spec with every optional parameter at its default
// and every feature disabled. The four required dimensions are zero.
func DefaultSpec() Spec {
	return Spec{
		Accuracy: DefaultAccuracy,
		Bend:     Bend{Radius: DefaultEulerRadius},
		Alumina:  Metal{Length: DefaultAluminaLength},
		Gold:     Metal{Length: DefaultGoldLength},
	}
}

// ResolveAliases folds the deprecated aliases into their canonical fields
// and clears them. The canonical value is kept unless it is zero and the
// alias is set to something non-zero.
func (s Spec) ResolveAliases() Spec {
	s.Entrance = resolveAlias(s.Entrance, s.TaperAccess)
	s.OutLength = resolveAlias(s.OutLength, s.BendExit)
	s.TaperAccess, s.BendExit = nil, nil
	return s
}

func resolveAlias(canonical float64, alias *float64) float64 {
	if canonical == 0 && alias != nil && *alias != 0 {
		return *alias
	}
	return canonical
}

// Validate reports the first unusable parameter as INVALID_GEOMETRY, or an
// unusable name or namespace as INVALID_INPUT.
// Parameters of disabled features are ignored; they never reach the layout.
func (s Spec) Validate() error {
	lengths := []field{
		{"width", s.Width},
		{"gap", s.Gap},
		{"length", s.Length},
		{"buffer", s.Buffer},
		{"entrance", s.Entrance},
		{"out_length", s.OutLength},
	}
	if s.TaperAccess != nil {
		lengths = append(lengths, field{"taper_access", *s.TaperAccess})
	}
	if s.BendExit != nil {
		lengths = append(lengths, field{"bend_exit", *s.BendExit})
	}
	if s.MetalWidth != nil {
		lengths = append(lengths, field{"metal_width", *s.MetalWidth})
	}
	lengths = append(lengths, s.Taper.fields("taper")...)
	lengths = append(lengths, s.TaperOut.fields("taper_out")...)
	if s.Bend.Enabled {
		lengths = append(lengths, field{"bend.sep", s.Bend.Sep})
	}
	if s.Alumina.Enabled {
		lengths = append(lengths, field{"alumina.length", s.Alumina.Length})
	}
	if s.Gold.Enabled {
		lengths = append(lengths, field{"gold.length", s.Gold.Length})
	}
	for _, f := range lengths {
		if err := errors.ValidateNonNegative(f.name, f.v); err != nil {
			return err
		}
	}

	if err := errors.ValidateFinite("start.x", s.Start.X); err != nil {
		return err
	}
	if err := errors.ValidateFinite("start.y", s.Start.Y); err != nil {
		return err
	}
	if err := errors.ValidatePositive("accuracy", s.Accuracy); err != nil {
		return err
	}

	if s.Bend.Enabled {
		if err := errors.ValidateFinite("bend.angle", s.Bend.Angle); err != nil {
			return err
		}
		if s.Bend.Angle < -180 || s.Bend.Angle > 180 {
			return errors.New(errors.ErrCodeInvalidGeometry, "must be within ±180°, got %g", s.Bend.Angle).WithField("bend.angle")
		}
		if s.Bend.Angle != 0 {
			if err := errors.ValidatePositive("bend.radius", s.Bend.Radius); err != nil {
				return err
			}
		}
	}

	if s.Name != "" {
		if err := errors.ValidateName(s.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid waveguide name").WithField("name")
		}
	}
	if s.Namespace != "" {
		if err := errors.ValidateName(s.Namespace); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid namespace").WithField("namespace")
		}
	}
	return nil
}

type field struct {
	name string
	v    float64
}

func (t Taper) fields(prefix string) []field {
	if !t.Enabled {
		return nil
	}
	return []field{
		{prefix + ".length", t.Length},
		{prefix + ".width", t.Width},
		{prefix + ".buffer", t.Buffer},
	}
}

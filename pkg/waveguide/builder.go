package waveguide

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
	"github.com/matzehuels/sersmask/pkg/placement"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// Builder plans and places waveguides against one cross-section registry.
type Builder struct {
	registry *xsection.Registry
	engine   *placement.Engine
	logger   *log.Logger
	noDraw   bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for build progress.
func WithLogger(l *log.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithoutPolygons makes Place compute poses only. Used when only the
// sequence and end points are needed.
func WithoutPolygons() Option {
	return func(b *Builder) { b.noDraw = true }
}

// NewBuilder creates a builder registering into reg.
func NewBuilder(reg *xsection.Registry, opts ...Option) *Builder {
	b := &Builder{registry: reg}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = log.New(io.Discard)
	}
	engineOpts := []placement.Option{placement.WithLogger(b.logger)}
	if b.noDraw {
		engineOpts = append(engineOpts, placement.WithoutPolygons())
	}
	b.engine = placement.NewEngine(reg, engineOpts...)
	return b
}

// Registry returns the registry the builder registers into.
func (b *Builder) Registry() *xsection.Registry { return b.registry }

// Plan resolves, validates and derives spec, registers its cross-sections
// and builds its shape sequence. Registration is all-or-nothing: a failed
// Plan leaves the registry unchanged.
func (b *Builder) Plan(spec Spec) (*Waveguide, error) {
	wg, err := Prepare(spec)
	if err != nil {
		return nil, err
	}
	if err := b.Register(wg); err != nil {
		return nil, err
	}
	return wg, nil
}

// Prepare is the registry-free part of Plan. It touches no shared state, so
// a batch can be prepared in parallel and registered in order afterwards.
func Prepare(spec Spec) (*Waveguide, error) {
	spec = spec.ResolveAliases()
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	d := Derive(spec)
	names := NamesFor(spec.Namespace)
	xss := d.CrossSections(names, spec.Accuracy)
	return &Waveguide{
		ID:      uuid.New().String(),
		Name:    spec.Name,
		Spec:    spec,
		Derived: d,
		Names:   names,
		XS:      xss,
		Shapes:  d.Sequence(names),
		Start:   spec.Start,
	}, nil
}

// Register adds the cross-sections of a prepared waveguide to the registry.
func (b *Builder) Register(wg *Waveguide) error {
	if err := b.registry.RegisterAll(wg.XS); err != nil {
		return err
	}
	b.logger.Debug("planned waveguide", "id", wg.ID, "name", wg.Name, "shapes", len(wg.Shapes), "slot", wg.Derived.Slot, "metal", wg.Derived.MetalLength)
	return nil
}

// Place replays wg at its own start point.
func (b *Builder) Place(wg *Waveguide) error {
	return b.PlaceAt(wg, wg.Start)
}

// PlaceAt replays wg with start as the first anchor, heading along +x, and
// records the start and end points. A waveguide is placed at most once.
func (b *Builder) PlaceAt(wg *Waveguide, start geom.Point) error {
	if wg.Placed() {
		return errors.New(errors.ErrCodeInvalidInput, "waveguide %s is already placed", wg.ID)
	}
	res, err := b.engine.Place(wg.Shapes, geom.At(start))
	if err != nil {
		return err
	}
	wg.Start = start
	wg.End = res.End.Point()
	wg.Result = res
	b.logger.Debug("placed waveguide", "id", wg.ID, "start", wg.Start, "end", wg.End)
	return nil
}

// Build plans and places spec at its start point.
func (b *Builder) Build(spec Spec) (*Waveguide, error) {
	wg, err := b.Plan(spec)
	if err != nil {
		return nil, err
	}
	if err := b.Place(wg); err != nil {
		return nil, err
	}
	return wg, nil
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/sersmask/pkg/batch"
	"github.com/matzehuels/sersmask/pkg/cache"
	"github.com/matzehuels/sersmask/pkg/mask"
	"github.com/matzehuels/sersmask/pkg/observability"
	"github.com/matzehuels/sersmask/pkg/shape"
	"github.com/matzehuels/sersmask/pkg/waveguide"
	"github.com/matzehuels/sersmask/pkg/xsection"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Every Execute
// call builds into a fresh cross-section registry, so multiple goroutines
// can safely use the same Runner with different batches.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete plan → place → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, b *batch.Batch, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	reg := xsection.NewRegistry()
	builder := waveguide.NewBuilder(reg, waveguide.WithLogger(opts.Logger))

	// Stage 1: Plan
	planStart := time.Now()
	wgs, err := r.Plan(ctx, builder, b.Specs, opts)
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Waveguides = len(wgs)
	result.Stats.CrossSections = reg.Len()
	for _, wg := range wgs {
		result.Stats.Shapes += len(wg.Shapes)
	}

	r.Logger.Info("planned waveguides",
		"waveguides", len(wgs),
		"shapes", result.Stats.Shapes,
		"cross_sections", reg.Len(),
		"duration", result.Stats.PlanTime)

	// Stage 2: Place
	placeStart := time.Now()
	d, err := r.Place(ctx, builder, b, wgs)
	if err != nil {
		return nil, fmt.Errorf("place: %w", err)
	}
	result.Design = d
	result.Stats.PlaceTime = time.Since(placeStart)
	result.Stats.Polygons = len(d.Polygons())

	r.Logger.Info("placed design",
		"polygons", result.Stats.Polygons,
		"bounds", fmt.Sprintf("%.1f x %.1f µm", d.Bounds().Width(), d.Bounds().Height()),
		"duration", result.Stats.PlaceTime)

	// Stage 3: Render
	renderStart := time.Now()
	hash, err := DesignHash(d)
	if err != nil {
		return nil, fmt.Errorf("hash design: %w", err)
	}
	result.DesignHash = hash
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, d, hash, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Plan prepares every spec in parallel and then registers their
// cross-sections in batch order, so a conflict is always reported against
// the later of the two waveguides.
func (r *Runner) Plan(ctx context.Context, builder *waveguide.Builder, specs []waveguide.Spec, opts Options) (wgs []*waveguide.Waveguide, err error) {
	opts.SetDefaults()
	hooks := observability.Pipeline()
	hooks.OnPlanStart(ctx, len(specs))
	start := time.Now()
	defer func() { hooks.OnPlanComplete(ctx, len(specs), time.Since(start), err) }()

	wgs = make([]*waveguide.Waveguide, len(specs))
	errs := make([]error, len(specs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Concurrency)
	for i, spec := range specs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			wgs[i], errs[i] = waveguide.Prepare(spec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Lowest index wins, whatever order the goroutines finished in.
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("waveguide %d: %w", i, err)
		}
	}

	for i, wg := range wgs {
		if err := builder.Register(wg); err != nil {
			return nil, fmt.Errorf("waveguide %d: %w", i, err)
		}
	}
	return wgs, nil
}

// Place replays the planned waveguides into a new design. With chaining
// enabled, every waveguide after the first starts where [batch.NextStart]
// puts it; otherwise each starts at its own spec's start point.
func (r *Runner) Place(ctx context.Context, builder *waveguide.Builder, b *batch.Batch, wgs []*waveguide.Waveguide) (d *mask.Design, err error) {
	hooks := observability.Pipeline()
	hooks.OnPlaceStart(ctx, len(wgs))
	start := time.Now()
	defer func() {
		polygons := 0
		if d != nil {
			polygons = len(d.Polygons())
		}
		hooks.OnPlaceComplete(ctx, len(wgs), polygons, time.Since(start), err)
	}()

	d = mask.New(b.Name)
	var prev *waveguide.Waveguide
	for i, wg := range wgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		at := wg.Start
		if b.Chain && prev != nil {
			at = batch.NextStart(prev.Start, prev.End, b.Separation, b.ChainX)
		}
		if err := d.Place(builder, wg, at); err != nil {
			return nil, fmt.Errorf("waveguide %d: %w", i, err)
		}
		prev = wg
	}
	return d, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, d *mask.Design, designHash string, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}
	hooks := observability.Cache()

	// Try to get all formats from cache
	allCached := !opts.Refresh
	artifacts := make(map[string][]byte)

	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		cacheKey := r.Keyer.ArtifactKey(designHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			hooks.OnCacheHit(ctx, format)
			artifacts[format] = data
		} else {
			hooks.OnCacheMiss(ctx, format)
			allCached = false
		}
	}

	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil // All artifacts from cache
	}

	// Render all formats
	rendered, err := Render(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(designHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, cache.ArtifactTTL); err != nil {
			r.Logger.Warn("cache write failed", "format", format, "error", err)
			continue
		}
		hooks.OnCacheSet(ctx, format, len(data))
	}

	return rendered, false, nil // Cache miss
}

// Planned is the registry-level view of a planned batch: the cross-sections
// in registration order and every waveguide's shape sequence.
type Planned struct {
	Name          string                  `json:"name"`
	CrossSections []xsection.CrossSection `json:"cross_sections"`
	Waveguides    []PlannedWaveguide      `json:"waveguides"`
}

// PlannedWaveguide is one planned, not yet placed, waveguide.
type PlannedWaveguide struct {
	Name    string            `json:"name,omitempty"`
	Derived waveguide.Derived `json:"derived"`
	Shapes  shape.Sequence    `json:"shapes"`
}

// PlanJSON plans b without placing it and returns the JSON encoded
// [Planned] view, cached by a hash of the batch.
func (r *Runner) PlanJSON(ctx context.Context, b *batch.Batch, opts Options) ([]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	batchHash, err := cache.HashJSON(b)
	if err != nil {
		return nil, false, fmt.Errorf("hash batch: %w", err)
	}
	cacheKey := r.Keyer.PlanKey(batchHash)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "plan")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "plan")
	}

	reg := xsection.NewRegistry()
	builder := waveguide.NewBuilder(reg, waveguide.WithLogger(opts.Logger))
	wgs, err := r.Plan(ctx, builder, b.Specs, opts)
	if err != nil {
		return nil, false, err
	}

	out := Planned{Name: b.Name, CrossSections: reg.All()}
	for _, wg := range wgs {
		out.Waveguides = append(out.Waveguides, PlannedWaveguide{
			Name:    wg.Name,
			Derived: wg.Derived,
			Shapes:  wg.Shapes,
		})
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, false, fmt.Errorf("encode plan: %w", err)
	}
	if err := r.Cache.Set(ctx, cacheKey, data, cache.PlanTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "plan", len(data))
	}
	return data, false, nil
}

// DesignHash returns the content hash of a placed design. Two designs with
// the same name, specs and start points hash equally.
func DesignHash(d *mask.Design) (string, error) {
	return cache.HashJSON(keyOf(d))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

package xsection

import (
	"slices"
	"sync"

	"github.com/matzehuels/sersmask/pkg/errors"
)

// Cross-section base names used by the slot-waveguide builder.
const (
	WG       = "wg"
	TaperIn  = "taper-in"
	TaperOut = "taper-out"
	TaperGap = "taper-gap"
	Alumina  = "alox"
	Gold     = "au"
)

// Qualify prefixes name with namespace ("ns/name"). An empty namespace returns name.
func Qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "/" + name
}

// Registry maps cross-section names to their layer rules.
// It is safe for concurrent use; the first registration of a name wins.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]CrossSection
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]CrossSection)}
}

// Register adds a cross-section. Re-registering an identical definition is a
// no-op; a different definition under the same name is a CONFIG_CONFLICT.
func (r *Registry) Register(name string, layers []LayerSpec) error {
	return r.RegisterAll([]CrossSection{{Name: name, Layers: layers}})
}

// RegisterAll registers several cross-sections atomically: either every
// entry is accepted (new or identical to an existing one) and the new ones
// are committed in order, or nothing changes.
func (r *Registry) RegisterAll(xss []CrossSection) error {
	for _, xs := range xss {
		if err := validate(xs); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	pending := make(map[string]CrossSection, len(xss))
	for _, xs := range xss {
		if existing, ok := r.byName[xs.Name]; ok {
			if !existing.Equal(xs) {
				return conflict(existing, xs)
			}
			continue
		}
		if prev, ok := pending[xs.Name]; ok {
			if !prev.Equal(xs) {
				return conflict(prev, xs)
			}
			continue
		}
		pending[xs.Name] = xs
	}

	for _, xs := range xss {
		if _, ok := pending[xs.Name]; !ok {
			continue
		}
		r.byName[xs.Name] = CrossSection{Name: xs.Name, Layers: slices.Clone(xs.Layers)}
		r.order = append(r.order, xs.Name)
		delete(pending, xs.Name)
	}
	return nil
}

// Lookup returns the cross-section registered under name.
func (r *Registry) Lookup(name string) (CrossSection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	xs, ok := r.byName[name]
	if !ok {
		return CrossSection{}, false
	}
	return CrossSection{Name: xs.Name, Layers: slices.Clone(xs.Layers)}, true
}

// MustLookup is like Lookup but returns a NOT_FOUND error for unknown names.
func (r *Registry) MustLookup(name string) (CrossSection, error) {
	xs, ok := r.Lookup(name)
	if !ok {
		return CrossSection{}, errors.New(errors.ErrCodeNotFound, "cross-section %q is not registered", name)
	}
	return xs, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// All returns every cross-section in registration order.
func (r *Registry) All() []CrossSection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]CrossSection, 0, len(r.order))
	for _, name := range r.order {
		xs := r.byName[name]
		out = append(out, CrossSection{Name: xs.Name, Layers: slices.Clone(xs.Layers)})
	}
	return out
}

// Len returns the number of registered cross-sections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func validate(xs CrossSection) error {
	if err := errors.ValidateName(xs.Name); err != nil {
		return err
	}
	seen := make(map[Layer]bool, len(xs.Layers))
	for _, l := range xs.Layers {
		if seen[l.Layer] {
			return errors.New(errors.ErrCodeConfigConflict,
				"cross-section %q lists layer %s twice", xs.Name, l.Layer)
		}
		seen[l.Layer] = true
		if err := errors.ValidateNonNegative("accuracy", l.Accuracy); err != nil {
			return err
		}
		if err := errors.ValidateFinite("grow", l.Grow); err != nil {
			return err
		}
	}
	return nil
}

func conflict(have, want CrossSection) error {
	return errors.New(errors.ErrCodeConfigConflict,
		"cross-section %q already registered with %v, refusing %v", have.Name, have.Layers, want.Layers)
}

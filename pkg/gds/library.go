package gds

import (
	"math"
	"time"

	"github.com/matzehuels/sersmask/pkg/errors"
	"github.com/matzehuels/sersmask/pkg/geom"
)

// Default units: µm user unit on a 1 nm database grid.
const (
	DefaultUserUnit = 1e-3
	DefaultDBUnit   = 1e-9
)

// Library is a GDSII library.
type Library struct {
	Name       string
	UserUnit   float64 // user units per database unit
	DBUnit     float64 // database unit in meters
	Modified   time.Time
	Structures []*Structure
}

// Structure is a named cell.
type Structure struct {
	Name       string
	Boundaries []Boundary
	Refs       []Ref
}

// Boundary is a closed polygon on one layer. Points are in user units and
// the closing vertex is implicit.
type Boundary struct {
	Layer    int16
	Datatype int16
	Points   []geom.Point
}

// Ref places another structure at Origin.
type Ref struct {
	Name   string
	Origin geom.Point
}

// NewLibrary creates a library with default units.
func NewLibrary(name string) *Library {
	return &Library{Name: name, UserUnit: DefaultUserUnit, DBUnit: DefaultDBUnit}
}

// AddStructure appends a new empty structure and returns it.
func (l *Library) AddStructure(name string) *Structure {
	s := &Structure{Name: name}
	l.Structures = append(l.Structures, s)
	return s
}

// Structure returns the structure called name, or nil.
func (l *Library) Structure(name string) *Structure {
	for _, s := range l.Structures {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// AddBoundary appends a boundary. Outlines with fewer than three vertices
// are dropped.
func (s *Structure) AddBoundary(layer, datatype int16, pts []geom.Point) {
	if len(pts) < 3 {
		return
	}
	s.Boundaries = append(s.Boundaries, Boundary{Layer: layer, Datatype: datatype, Points: pts})
}

// AddRef appends a reference to the structure called name.
func (s *Structure) AddRef(name string, origin geom.Point) {
	s.Refs = append(s.Refs, Ref{Name: name, Origin: origin})
}

// Validate checks names, references and coordinate ranges before writing.
func (l *Library) Validate() error {
	if err := errors.ValidateName(l.Name); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "library name")
	}
	if l.UserUnit <= 0 || l.DBUnit <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "units must be positive (user %g, db %g)", l.UserUnit, l.DBUnit)
	}
	names := make(map[string]bool, len(l.Structures))
	for _, s := range l.Structures {
		if err := errors.ValidateName(s.Name); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidInput, err, "structure name")
		}
		if names[s.Name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate structure %q", s.Name)
		}
		names[s.Name] = true
	}
	for _, s := range l.Structures {
		for _, r := range s.Refs {
			if !names[r.Name] {
				return errors.New(errors.ErrCodeNotFound, "structure %q references unknown %q", s.Name, r.Name)
			}
		}
		for i, b := range s.Boundaries {
			if len(b.Points)+1 > MaxBoundaryPoints {
				return errors.New(errors.ErrCodeInvalidGeometry, "%s boundary %d has %d vertices (max %d)",
					s.Name, i, len(b.Points), MaxBoundaryPoints-1)
			}
			for _, p := range b.Points {
				if _, _, err := l.toDB(p); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// toDB converts a user-unit point to database units.
func (l *Library) toDB(p geom.Point) (int32, int32, error) {
	x, y := math.Round(p.X/l.UserUnit), math.Round(p.Y/l.UserUnit)
	if math.IsNaN(x) || math.IsNaN(y) || math.Abs(x) > math.MaxInt32 || math.Abs(y) > math.MaxInt32 {
		return 0, 0, errors.New(errors.ErrCodeInvalidGeometry, "point %s outside the database range", p)
	}
	return int32(x), int32(y), nil
}

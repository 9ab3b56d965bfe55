// Package shape defines the requests a waveguide is built from.
//
// A [Request] is a tagged variant: [Straight], [Taper], [EulerBend] or
// [StackMarker]. The first three are concrete sections placed end to end by
// the placement engine; a StackMarker is an instruction that makes the next
// concrete request share the anchor of the request before the marker instead
// of chaining from the cursor.
//
// Concrete requests always carry their cross-section name. Which
// cross-section a request inherits is decided when the sequence is built
// (see [Sequence.ActiveXS]), never at placement time.
package shape

import (
	"encoding/json"
	"fmt"
	"math"
)

// Kind tags a request.
type Kind string

// Request kinds.
const (
	KindStraight Kind = "straight"
	KindTaper    Kind = "taper"
	KindEuler    Kind = "euler"
	KindStack    Kind = "stack"
)

// Request is one entry of a build sequence.
type Request interface {
	Kind() Kind
	fmt.Stringer
	request()
}

// Concrete is a request that draws geometry on a cross-section.
type Concrete interface {
	Request
	CrossSection() string
	// Len is the centerline length in µm.
	Len() float64
}

// Straight is a constant-width section.
type Straight struct {
	Length float64
	Width  float64
	XS     string
}

// Taper is a section whose width goes linearly from Width1 to Width2.
type Taper struct {
	Length float64
	Width1 float64
	Width2 float64
	XS     string
}

// EulerBend turns the cursor by Angle degrees (positive = counter-clockwise)
// with minimum radius Radius at its midpoint.
type EulerBend struct {
	Angle  float64
	Radius float64
	Width  float64
	XS     string
}

// StackMarker places the next concrete request at the anchor of the
// request immediately before the marker.
type StackMarker struct{}

func (Straight) Kind() Kind    { return KindStraight }
func (Taper) Kind() Kind       { return KindTaper }
func (EulerBend) Kind() Kind   { return KindEuler }
func (StackMarker) Kind() Kind { return KindStack }

func (Straight) request()    {}
func (Taper) request()       {}
func (EulerBend) request()   {}
func (StackMarker) request() {}

func (s Straight) CrossSection() string  { return s.XS }
func (t Taper) CrossSection() string     { return t.XS }
func (e EulerBend) CrossSection() string { return e.XS }

func (s Straight) Len() float64 { return s.Length }
func (t Taper) Len() float64    { return t.Length }

// Len of an Euler bend is the arc length of both clothoid halves.
func (e EulerBend) Len() float64 {
	return 2 * e.Radius * math.Abs(e.Angle) * math.Pi / 180
}

func (s Straight) String() string {
	return fmt.Sprintf("straight(l=%g, w=%g, xs=%s)", s.Length, s.Width, s.XS)
}

func (t Taper) String() string {
	return fmt.Sprintf("taper(l=%g, w=%g→%g, xs=%s)", t.Length, t.Width1, t.Width2, t.XS)
}

func (e EulerBend) String() string {
	return fmt.Sprintf("euler(a=%g°, r=%g, w=%g, xs=%s)", e.Angle, e.Radius, e.Width, e.XS)
}

func (StackMarker) String() string { return "stack" }

// MarshalJSON encodes requests with their kind tag.
func (s Straight) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Kind: KindStraight, Length: s.Length, Width: s.Width, XS: s.XS})
}

func (t Taper) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Kind: KindTaper, Length: t.Length, Width1: t.Width1, Width2: t.Width2, XS: t.XS})
}

func (e EulerBend) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Kind: KindEuler, Angle: e.Angle, Radius: e.Radius, Width: e.Width, XS: e.XS})
}

func (StackMarker) MarshalJSON() ([]byte, error) {
	return json.Marshal(wire{Kind: KindStack})
}

type wire struct {
	Kind   Kind    `json:"kind"`
	Length float64 `json:"length,omitempty"`
	Width  float64 `json:"width,omitempty"`
	Width1 float64 `json:"width1,omitempty"`
	Width2 float64 `json:"width2,omitempty"`
	Angle  float64 `json:"angle,omitempty"`
	Radius float64 `json:"radius,omitempty"`
	XS     string  `json:"xs,omitempty"`
}

func (w wire) request() (Request, error) {
	switch w.Kind {
	case KindStraight:
		return Straight{Length: w.Length, Width: w.Width, XS: w.XS}, nil
	case KindTaper:
		return Taper{Length: w.Length, Width1: w.Width1, Width2: w.Width2, XS: w.XS}, nil
	case KindEuler:
		return EulerBend{Angle: w.Angle, Radius: w.Radius, Width: w.Width, XS: w.XS}, nil
	case KindStack:
		return StackMarker{}, nil
	}
	return nil, fmt.Errorf("unknown shape kind %q", w.Kind)
}

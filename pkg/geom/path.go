package geom

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultAccuracy is the curve discretisation tolerance in µm.
const DefaultAccuracy = 0.001

const (
	minCurveSegments = 8
	maxCurveSegments = 2048
	quadPoints       = 16
)

// Sample is a point on a centerline in the primitive's local frame.
type Sample struct {
	T       float64 // normalised arc length in [0, 1]
	Pos     r2.Vec
	Heading float64
}

// Path is a sampled centerline. The first sample is always the local origin
// heading along +x.
type Path struct {
	Samples []Sample
	Length  float64
}

// Exit returns the local pose of the last sample.
func (p Path) Exit() Pose {
	if len(p.Samples) == 0 {
		return Pose{}
	}
	last := p.Samples[len(p.Samples)-1]
	return Pose{Pos: last.Pos, Heading: last.Heading}
}

// StraightPath returns a straight centerline of the given length.
// Tapers share it; only their width profile differs.
func StraightPath(length float64) Path {
	return Path{
		Samples: []Sample{
			{T: 0},
			{T: 1, Pos: r2.Vec{X: length}},
		},
		Length: length,
	}
}

// EulerPath returns a symmetric Euler bend turning by angle (radians,
// positive = counter-clockwise) with minimum radius radius at its midpoint.
// Each clothoid half is radius*|angle| long. The curve is sampled so the
// chord error stays below accuracy at the tightest point.
func EulerPath(angle, radius, accuracy float64) Path {
	theta := math.Abs(angle)
	if theta == 0 || radius <= 0 {
		return StraightPath(0)
	}
	if accuracy <= 0 {
		accuracy = DefaultAccuracy
	}
	sign := 1.0
	if angle < 0 {
		sign = -1
	}

	half := radius * theta
	total := 2 * half
	heading := func(s float64) float64 {
		if s <= half {
			return sign * s * s / (2 * radius * half)
		}
		r := total - s
		return sign * (theta - r*r/(2*radius*half))
	}

	// Sagitta of a chord subtending dθ on radius R is ≈ R·dθ²/8.
	step := math.Sqrt(8 * accuracy / radius)
	n := int(math.Ceil(theta / step))
	n = min(max(n, minCurveSegments), maxCurveSegments)

	samples := make([]Sample, 0, n+1)
	samples = append(samples, Sample{})
	pos := r2.Vec{}
	ds := total / float64(n)
	for i := 1; i <= n; i++ {
		a, b := float64(i-1)*ds, float64(i)*ds
		if i == n {
			b = total
		}
		dx := quad.Fixed(func(s float64) float64 { return math.Cos(heading(s)) }, a, b, quadPoints, nil, 0)
		dy := quad.Fixed(func(s float64) float64 { return math.Sin(heading(s)) }, a, b, quadPoints, nil, 0)
		pos = r2.Add(pos, r2.Vec{X: dx, Y: dy})
		samples = append(samples, Sample{T: b / total, Pos: pos, Heading: heading(b)})
	}
	return Path{Samples: samples, Length: total}
}

// Outline returns the closed outline (without repeating the first vertex) of
// a band of the given width profile around the centerline, in local
// coordinates. width receives the normalised arc length. It returns nil when
// the band has no area: zero length or zero width everywhere.
func (p Path) Outline(width func(t float64) float64) []r2.Vec {
	if p.Length <= 0 || len(p.Samples) < 2 {
		return nil
	}
	left := make([]r2.Vec, 0, len(p.Samples))
	right := make([]r2.Vec, 0, len(p.Samples))
	nonZero := false
	for _, s := range p.Samples {
		w := width(s.T) / 2
		if w > 0 {
			nonZero = true
		}
		sn, cs := math.Sincos(s.Heading)
		normal := r2.Vec{X: -sn, Y: cs}
		left = append(left, r2.Add(s.Pos, r2.Scale(w, normal)))
		right = append(right, r2.Sub(s.Pos, r2.Scale(w, normal)))
	}
	if !nonZero {
		return nil
	}
	out := make([]r2.Vec, 0, 2*len(p.Samples))
	out = append(out, right...)
	for i := len(left) - 1; i >= 0; i-- {
		out = append(out, left[i])
	}
	return out
}

// Constant returns a width profile of fixed width w.
func Constant(w float64) func(float64) float64 {
	return func(float64) float64 { return w }
}

// Linear returns a width profile going from w1 at t=0 to w2 at t=1.
func Linear(w1, w2 float64) func(float64) float64 {
	return func(t float64) float64 { return w1 + (w2-w1)*t }
}

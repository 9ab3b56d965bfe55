package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pose is a position plus a heading, the state of the placement cursor.
type Pose struct {
	Pos     r2.Vec
	Heading float64 // radians, counter-clockwise from +x
}

// At returns a pose at p heading along +x.
func At(p Point) Pose { return Pose{Pos: p.Vec()} }

// Point returns the position of the pose.
func (p Pose) Point() Point { return FromVec(p.Pos) }

// HeadingDeg returns the heading in degrees.
func (p Pose) HeadingDeg() float64 { return p.Heading * 180 / math.Pi }

// Dir returns the unit vector along the heading.
func (p Pose) Dir() r2.Vec {
	s, c := math.Sincos(p.Heading)
	return r2.Vec{X: c, Y: s}
}

// Normal returns the unit vector 90° counter-clockwise from the heading.
func (p Pose) Normal() r2.Vec {
	s, c := math.Sincos(p.Heading)
	return r2.Vec{X: -s, Y: c}
}

// Apply maps a vector from the pose's local frame into layout coordinates.
func (p Pose) Apply(local r2.Vec) r2.Vec {
	return r2.Add(p.Pos, r2.Add(r2.Scale(local.X, p.Dir()), r2.Scale(local.Y, p.Normal())))
}

// Compose returns the layout pose of a pose given in p's local frame.
func (p Pose) Compose(local Pose) Pose {
	return Pose{Pos: p.Apply(local.Pos), Heading: normalizeAngle(p.Heading + local.Heading)}
}

func (p Pose) String() string {
	return fmt.Sprintf("%s@%.3f°", p.Point(), p.HeadingDeg())
}

// normalizeAngle wraps a into (-π, π].
func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 2*math.Pi)
	if a <= -math.Pi {
		a += 2 * math.Pi
	} else if a > math.Pi {
		a -= 2 * math.Pi
	}
	return a
}

// Radians converts degrees to radians.
func Radians(deg float64) float64 { return deg * math.Pi / 180 }

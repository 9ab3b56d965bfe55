package geom

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Polygon is a closed outline in layout coordinates. The first vertex is not
// repeated at the end.
type Polygon []Point

// Area returns the signed shoelace area; counter-clockwise outlines are positive.
func (pg Polygon) Area() float64 {
	var a float64
	for i := range pg {
		j := (i + 1) % len(pg)
		a += pg[i].X*pg[j].Y - pg[j].X*pg[i].Y
	}
	return a / 2
}

// Bounds returns the bounding box of pg.
func (pg Polygon) Bounds() Rect {
	if len(pg) == 0 {
		return Rect{}
	}
	r := Rect{Min: pg[0], Max: pg[0]}
	for _, p := range pg[1:] {
		r.Min.X = math.Min(r.Min.X, p.X)
		r.Min.Y = math.Min(r.Min.Y, p.Y)
		r.Max.X = math.Max(r.Max.X, p.X)
		r.Max.Y = math.Max(r.Max.Y, p.Y)
	}
	return r
}

// Place maps a local outline into layout coordinates through pose.
func Place(pose Pose, local []r2.Vec) Polygon {
	out := make(Polygon, len(local))
	for i, v := range local {
		out[i] = FromVec(pose.Apply(v))
	}
	return out
}

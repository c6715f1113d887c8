package annotation

import (
	"gonum.org/v1/gonum/spatial/r3"
)

// Centroid returns the mean position of all placed landmarks. The second
// return value is false when no landmark has been placed.
func (r *Record) Centroid() (r3.Vec, bool) {
	var sum r3.Vec
	n := 0
	for _, label := range r.labels {
		c := r.coords[label]
		if c == nil {
			continue
		}
		sum = r3.Add(sum, r3.Vec{X: c.X, Y: c.Y, Z: c.Z})
		n++
	}
	if n == 0 {
		return r3.Vec{}, false
	}
	return r3.Scale(1/float64(n), sum), true
}

// Span returns the polyline length through the placed landmarks in
// craniocaudal order, a rough measure of the annotated spine extent.
// Zero when fewer than two landmarks are placed.
func (r *Record) Span() float64 {
	var prev *r3.Vec
	total := 0.0
	for _, label := range r.labels {
		c := r.coords[label]
		if c == nil {
			continue
		}
		v := r3.Vec{X: c.X, Y: c.Y, Z: c.Z}
		if prev != nil {
			total += r3.Norm(r3.Sub(v, *prev))
		}
		prev = &v
	}
	return total
}

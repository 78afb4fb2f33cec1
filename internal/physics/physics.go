// Package physics provides collision detection and distance utilities.
package physics

import "math"

// Distance calculates the Euclidean distance between two points.
func Distance(x1, y1, x2, y2 float64) float64 {
	return math.Sqrt(DistanceSquared(x1, y1, x2, y2))
}

// DistanceSquared calculates the squared distance between two points.
// Use this when comparing distances to avoid the sqrt cost.
func DistanceSquared(x1, y1, x2, y2 float64) float64 {
	dx := x2 - x1
	dy := y2 - y1
	return dx*dx + dy*dy
}

// CirclesOverlap reports whether two circles intersect. Touching circles
// (distance exactly r1+r2) do not count as a hit.
func CirclesOverlap(x1, y1, r1, x2, y2, r2 float64) bool {
	minDist := r1 + r2
	return DistanceSquared(x1, y1, x2, y2) < minDist*minDist
}

// Circle is anything with a centre and a collision radius.
type Circle interface {
	GetPosition() (x, y float64)
	GetRadius() float64
}

// Overlap reports whether two circles intersect.
func Overlap(a, b Circle) bool {
	ax, ay := a.GetPosition()
	bx, by := b.GetPosition()
	return CirclesOverlap(ax, ay, a.GetRadius(), bx, by, b.GetRadius())
}

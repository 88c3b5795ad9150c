package geometry

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point represents a 2D map coordinate or vector
type Point struct {
	X, Y float64
}

// NewPoint creates a new 2D point
func NewPoint(x, y float64) Point {
	return Point{X: x, Y: y}
}

func (p Point) vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Add returns the sum of two vectors
func (p Point) Add(other Point) Point {
	return fromVec(r2.Add(p.vec(), other.vec()))
}

// Sub returns the difference between two vectors
func (p Point) Sub(other Point) Point {
	return fromVec(r2.Sub(p.vec(), other.vec()))
}

// Mul multiplies the vector by a scalar
func (p Point) Mul(scalar float64) Point {
	return fromVec(r2.Scale(scalar, p.vec()))
}

// Dot returns the dot product of two vectors
func (p Point) Dot(other Point) float64 {
	return r2.Dot(p.vec(), other.vec())
}

// Cross returns the z component of the 3D cross product
func (p Point) Cross(other Point) float64 {
	return p.X*other.Y - p.Y*other.X
}

// Length returns the magnitude of the vector
func (p Point) Length() float64 {
	return r2.Norm(p.vec())
}

// Distance returns the distance between two points
func (p Point) Distance(other Point) float64 {
	return p.Sub(other).Length()
}

// Normalize returns a unit vector in the same direction.
// The zero vector normalizes to itself.
func (p Point) Normalize() Point {
	if p.Length() == 0 {
		return Point{}
	}
	return fromVec(r2.Unit(p.vec()))
}

// Perpendicular returns the vector rotated by 90 degrees counter-clockwise
func (p Point) Perpendicular() Point {
	return Point{X: -p.Y, Y: p.X}
}

// ApproxEqual reports whether both coordinates differ by at most eps
func (p Point) ApproxEqual(other Point, eps float64) bool {
	return math.Abs(p.X-other.X) <= eps && math.Abs(p.Y-other.Y) <= eps
}

// Min returns the component-wise minimum
func (p Point) Min(other Point) Point {
	return Point{X: math.Min(p.X, other.X), Y: math.Min(p.Y, other.Y)}
}

// Max returns the component-wise maximum
func (p Point) Max(other Point) Point {
	return Point{X: math.Max(p.X, other.X), Y: math.Max(p.Y, other.Y)}
}

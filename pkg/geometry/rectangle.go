package geometry

import "errors"

// ErrDegenerateAnchorPair is returned when the two anchors of a rectangle
// coincide, leaving the width direction undefined.
var ErrDegenerateAnchorPair = errors.New("anchor points coincide")

// baseline returns the unit perpendicular of the line a->b
func baseline(a, b Point) (Point, error) {
	line := b.Sub(a)
	if line.Length() == 0 {
		return Point{}, ErrDegenerateAnchorPair
	}
	return line.Normalize().Perpendicular(), nil
}

// SignedWidth returns the distance of m from the line through a and b.
// The sign tells which side of a->b the point lies on: positive values
// are to the left (counter-clockwise side).
func SignedWidth(a, b, m Point) (float64, error) {
	perp, err := baseline(a, b)
	if err != nil {
		return 0, err
	}
	return perp.Dot(m.Sub(a)), nil
}

// RectangleCorners derives a rectangle from two anchors and a width sample.
// The first side runs from a to b; the opposite side is offset along the
// perpendicular of a->b by the signed distance of m from that line.
//
// Corners are returned in ring order: a, b, b+w*P, a+w*P.
func RectangleCorners(a, b, m Point) ([4]Point, error) {
	perp, err := baseline(a, b)
	if err != nil {
		return [4]Point{}, err
	}
	offset := perp.Mul(perp.Dot(m.Sub(a)))
	return [4]Point{a, b, b.Add(offset), a.Add(offset)}, nil
}

// RectangleFromAnchors builds the single-ring polygon for RectangleCorners
func RectangleFromAnchors(a, b, m Point) (Polygon, error) {
	corners, err := RectangleCorners(a, b, m)
	if err != nil {
		return Polygon{}, err
	}
	return NewPolygon(corners[:]...), nil
}

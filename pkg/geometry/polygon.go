package geometry

import (
	"strconv"
	"strings"
)

// Kind identifies the shape family of a geometry
type Kind int

const (
	KindUnknown Kind = iota
	KindPoint
	KindLine
	KindPolygon
	KindMultiPolygon
)

func (k Kind) String() string {
	switch k {
	case KindPoint:
		return "Point"
	case KindLine:
		return "LineString"
	case KindPolygon:
		return "Polygon"
	case KindMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Geometry is implemented by every geometry value in this package
type Geometry interface {
	Kind() Kind
	IsEmpty() bool
	WKT() string
	// Transform returns a copy with fn applied to every vertex
	Transform(fn func(Point) Point) Geometry
}

// Ring is a closed sequence of vertices. The closing vertex is implicit:
// the last point is connected back to the first.
type Ring []Point

// Polygon is a set of rings; the first ring is the exterior, the rest are holes
type Polygon struct {
	Rings []Ring
}

// NewPolygon creates a single-ring polygon
func NewPolygon(points ...Point) Polygon {
	ring := make(Ring, len(points))
	copy(ring, points)
	return Polygon{Rings: []Ring{ring}}
}

// Kind implements Geometry
func (p Polygon) Kind() Kind { return KindPolygon }

// IsEmpty reports whether the polygon has no vertices
func (p Polygon) IsEmpty() bool {
	for _, r := range p.Rings {
		if len(r) > 0 {
			return false
		}
	}
	return true
}

// Exterior returns the exterior ring, or nil for an empty polygon
func (p Polygon) Exterior() Ring {
	if len(p.Rings) == 0 {
		return nil
	}
	return p.Rings[0]
}

// Transform implements Geometry
func (p Polygon) Transform(fn func(Point) Point) Geometry {
	return p.transform(fn)
}

func (p Polygon) transform(fn func(Point) Point) Polygon {
	out := Polygon{Rings: make([]Ring, len(p.Rings))}
	for i, r := range p.Rings {
		nr := make(Ring, len(r))
		for j, pt := range r {
			nr[j] = fn(pt)
		}
		out.Rings[i] = nr
	}
	return out
}

// Area returns the signed area of the exterior ring using the shoelace
// formula. Counter-clockwise rings have positive area.
func (p Polygon) Area() float64 {
	ring := p.Exterior()
	n := len(ring)
	if n < 3 {
		return 0
	}
	sum := 0.0
	for i := 0; i < n; i++ {
		sum += ring[i].Cross(ring[(i+1)%n])
	}
	return sum / 2
}

// WKT implements Geometry
func (p Polygon) WKT() string {
	if p.IsEmpty() {
		return "POLYGON EMPTY"
	}
	return "POLYGON " + p.wktBody()
}

func (p Polygon) wktBody() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, r := range p.Rings {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, pt := range r.closed() {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatCoord(pt.X))
			b.WriteByte(' ')
			b.WriteString(formatCoord(pt.Y))
		}
		b.WriteByte(')')
	}
	b.WriteByte(')')
	return b.String()
}

// closed returns the ring with the first vertex repeated at the end
func (r Ring) closed() []Point {
	if len(r) == 0 {
		return nil
	}
	out := make([]Point, 0, len(r)+1)
	out = append(out, r...)
	if r[0] != r[len(r)-1] {
		out = append(out, r[0])
	}
	return out
}

// Closed returns a copy of the ring with the closing vertex made explicit
func (r Ring) Closed() []Point {
	return r.closed()
}

// IsSimple reports whether the exterior ring is a simple closed curve:
// at least three vertices, no zero-length edge and no two edges touching
// other than adjacent edges at their shared vertex.
func (p Polygon) IsSimple() bool {
	ring := p.Exterior()
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	n := len(ring)
	if n < 3 {
		return false
	}

	for i := 0; i < n; i++ {
		if ring[i] == ring[(i+1)%n] {
			return false
		}
	}

	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := i + 1; j < n; j++ {
			b1, b2 := ring[j], ring[(j+1)%n]
			adjacent := j == i+1 || (i == 0 && j == n-1)
			if adjacent {
				// Adjacent edges may only share their common vertex
				var shared, other1, other2 Point
				if j == i+1 {
					shared, other1, other2 = a2, a1, b2
				} else {
					shared, other1, other2 = a1, a2, b1
				}
				if foldsBack(shared, other1, other2) {
					return false
				}
				continue
			}
			if segmentsIntersect(a1, a2, b1, b2) {
				return false
			}
		}
	}
	return true
}

// foldsBack reports whether the two edges leaving shared overlap
func foldsBack(shared, p, q Point) bool {
	u := p.Sub(shared)
	v := q.Sub(shared)
	return u.Cross(v) == 0 && u.Dot(v) > 0
}

func orientation(a, b, c Point) int {
	v := b.Sub(a).Cross(c.Sub(a))
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

func onSegment(a, b, p Point) bool {
	return p.X >= min(a.X, b.X) && p.X <= max(a.X, b.X) &&
		p.Y >= min(a.Y, b.Y) && p.Y <= max(a.Y, b.Y)
}

func segmentsIntersect(p1, p2, q1, q2 Point) bool {
	o1 := orientation(p1, p2, q1)
	o2 := orientation(p1, p2, q2)
	o3 := orientation(q1, q2, p1)
	o4 := orientation(q1, q2, p2)

	if o1 != o2 && o3 != o4 {
		return true
	}
	if o1 == 0 && onSegment(p1, p2, q1) {
		return true
	}
	if o2 == 0 && onSegment(p1, p2, q2) {
		return true
	}
	if o3 == 0 && onSegment(q1, q2, p1) {
		return true
	}
	if o4 == 0 && onSegment(q1, q2, p2) {
		return true
	}
	return false
}

// MultiPolygon is a collection of polygons
type MultiPolygon struct {
	Polygons []Polygon
}

// Kind implements Geometry
func (m MultiPolygon) Kind() Kind { return KindMultiPolygon }

// IsEmpty reports whether no member polygon has vertices
func (m MultiPolygon) IsEmpty() bool {
	for _, p := range m.Polygons {
		if !p.IsEmpty() {
			return false
		}
	}
	return true
}

// First returns the first member polygon. The second result is false
// when the collection is empty.
func (m MultiPolygon) First() (Polygon, bool) {
	if len(m.Polygons) == 0 {
		return Polygon{}, false
	}
	return m.Polygons[0], true
}

// Transform implements Geometry
func (m MultiPolygon) Transform(fn func(Point) Point) Geometry {
	out := MultiPolygon{Polygons: make([]Polygon, len(m.Polygons))}
	for i, p := range m.Polygons {
		out.Polygons[i] = p.transform(fn)
	}
	return out
}

// WKT implements Geometry
func (m MultiPolygon) WKT() string {
	if m.IsEmpty() {
		return "MULTIPOLYGON EMPTY"
	}
	parts := make([]string, len(m.Polygons))
	for i, p := range m.Polygons {
		parts[i] = p.wktBody()
	}
	return "MULTIPOLYGON (" + strings.Join(parts, ", ") + ")"
}

// ToSinglePolygon reduces g to a polygon. A multipolygon keeps only its
// first member; other kinds are returned unchanged.
func ToSinglePolygon(g Geometry) Geometry {
	mp, ok := g.(MultiPolygon)
	if !ok {
		return g
	}
	first, ok := mp.First()
	if !ok {
		return Polygon{}
	}
	return first
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

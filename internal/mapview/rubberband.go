package mapview

import (
	"image/color"

	"github.com/philipparndt/rectdraw/internal/tool"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// RubberBand is a transient polygon drawn over the map. It belongs to the
// MapCanvas that created it until Reset detaches it.
type RubberBand struct {
	canvas  *MapCanvas
	kind    geometry.Kind
	color   color.Color
	width   float32
	polygon geometry.Polygon
	visible bool
}

var _ tool.RubberBand = (*RubberBand)(nil)

// SetColor sets the stroke color
func (b *RubberBand) SetColor(c color.Color) {
	b.color = c
}

// SetWidth sets the stroke width in pixels
func (b *RubberBand) SetWidth(w float32) {
	b.width = w
}

// SetToGeometry replaces the drawn polygon
func (b *RubberBand) SetToGeometry(p geometry.Polygon) {
	b.polygon = clonePolygon(p)
	b.changed()
}

// AddPoint appends a vertex to the exterior ring; first starts a new ring
func (b *RubberBand) AddPoint(p geometry.Point, first bool) {
	if first || len(b.polygon.Rings) == 0 {
		b.polygon = geometry.NewPolygon(p)
	} else {
		b.polygon.Rings[0] = append(b.polygon.Rings[0], p)
	}
	b.changed()
}

// Show makes the band visible
func (b *RubberBand) Show() {
	b.visible = true
	b.changed()
}

// Reset clears the geometry, hides the band and detaches it from its canvas
func (b *RubberBand) Reset(kind geometry.Kind) {
	b.kind = kind
	b.polygon = geometry.Polygon{}
	b.visible = false
	if b.canvas != nil {
		b.canvas.removeBand(b)
		b.canvas = nil
	}
}

// AsGeometry returns a copy of the current polygon
func (b *RubberBand) AsGeometry() geometry.Geometry {
	return clonePolygon(b.polygon)
}

// Visible reports whether the band is shown
func (b *RubberBand) Visible() bool {
	return b.visible
}

func (b *RubberBand) changed() {
	if b.canvas != nil && b.visible {
		b.canvas.Refresh()
	}
}

func clonePolygon(p geometry.Polygon) geometry.Polygon {
	return p.Transform(func(pt geometry.Point) geometry.Point { return pt }).(geometry.Polygon)
}

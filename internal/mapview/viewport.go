package mapview

import (
	"math"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

const (
	minScale = 1e-9
	maxScale = 1e9
)

// Viewport maps between canvas pixels and map coordinates. Pixel y grows
// downwards, map y grows upwards.
type Viewport struct {
	Center geometry.Point
	// Scale is map units per pixel
	Scale  float64
	Width  float64
	Height float64
}

// NewViewport creates a viewport centered on center
func NewViewport(center geometry.Point, scale float64) *Viewport {
	return &Viewport{Center: center, Scale: scale}
}

// SetSize updates the pixel size of the view
func (v *Viewport) SetSize(width, height float64) {
	v.Width = width
	v.Height = height
}

// ToMap converts a pixel position to map coordinates
func (v *Viewport) ToMap(px, py float64) geometry.Point {
	return geometry.NewPoint(
		v.Center.X+(px-v.Width/2)*v.Scale,
		v.Center.Y-(py-v.Height/2)*v.Scale,
	)
}

// ToPixel converts map coordinates to a pixel position
func (v *Viewport) ToPixel(p geometry.Point) (float64, float64) {
	return (p.X-v.Center.X)/v.Scale + v.Width/2,
		(v.Center.Y-p.Y)/v.Scale + v.Height/2
}

// Pan moves the view by a pixel delta; dragging right moves the map right
func (v *Viewport) Pan(dx, dy float64) {
	v.Center = geometry.NewPoint(v.Center.X-dx*v.Scale, v.Center.Y+dy*v.Scale)
}

// Zoom scales the view by factor while keeping the map point under the
// pixel (px, py) fixed. Factors above 1 zoom in.
func (v *Viewport) Zoom(factor, px, py float64) {
	if factor <= 0 {
		return
	}
	anchor := v.ToMap(px, py)
	v.Scale = math.Max(minScale, math.Min(maxScale, v.Scale/factor))
	after := v.ToMap(px, py)
	v.Center = v.Center.Add(anchor.Sub(after))
}

// CenterOn moves the view center to p
func (v *Viewport) CenterOn(p geometry.Point) {
	v.Center = p
}

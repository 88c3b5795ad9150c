package mapview

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

var (
	featureStroke  = color.NRGBA{R: 0x33, G: 0x55, B: 0x88, A: 0xff}
	currentStroke  = color.NRGBA{R: 0x11, G: 0x33, B: 0xcc, A: 0xff}
	markerDiameter = float32(6)
)

// mapRenderer implements fyne.WidgetRenderer
type mapRenderer struct {
	canvas     *MapCanvas
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *mapRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.canvas.viewport.SetSize(float64(size.Width), float64(size.Height))
	r.rebuild()
}

func (r *mapRenderer) MinSize() fyne.Size {
	return fyne.NewSize(400, 400)
}

func (r *mapRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.canvas)
}

func (r *mapRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *mapRenderer) Destroy() {}

func (r *mapRenderer) rebuild() {
	r.objects = []fyne.CanvasObject{r.background}

	current := r.canvas.CurrentLayer()
	for _, l := range r.canvas.layers {
		stroke := featureStroke
		width := float32(1)
		if l == current {
			stroke, width = currentStroke, 1.5
		}
		r.addLayer(l, stroke, width)
	}

	for _, band := range r.canvas.bands {
		if band.visible {
			r.addPolygon(band.polygon, band.color, band.width)
		}
	}
}

func (r *mapRenderer) addLayer(l layer.Layer, stroke color.Color, width float32) {
	src, ok := l.(layer.FeatureSource)
	if !ok {
		return
	}
	tr, err := r.canvas.project.NewTransform(l.CRS(), r.canvas.project.CRS())
	if err != nil {
		return
	}
	for _, f := range src.Features() {
		g := crs.TransformGeometry(f.Geometry(), tr)
		switch v := g.(type) {
		case geometry.Polygon:
			r.addPolygon(v, stroke, width)
		case geometry.MultiPolygon:
			for _, p := range v.Polygons {
				r.addPolygon(p, stroke, width)
			}
		}
	}
}

// addPolygon draws every ring edge. A ring with a single vertex is drawn
// as a marker and a ring with two vertices as one segment.
func (r *mapRenderer) addPolygon(p geometry.Polygon, stroke color.Color, width float32) {
	vp := r.canvas.viewport
	for _, ring := range p.Rings {
		switch len(ring) {
		case 0:
			continue
		case 1:
			x, y := vp.ToPixel(ring[0])
			marker := canvas.NewCircle(stroke)
			marker.Resize(fyne.NewSize(markerDiameter, markerDiameter))
			marker.Move(fyne.NewPos(float32(x)-markerDiameter/2, float32(y)-markerDiameter/2))
			r.objects = append(r.objects, marker)
			continue
		case 2:
			r.addSegment(ring[0], ring[1], stroke, width)
			continue
		}
		closed := ring.Closed()
		for i := 0; i+1 < len(closed); i++ {
			r.addSegment(closed[i], closed[i+1], stroke, width)
		}
	}
}

func (r *mapRenderer) addSegment(a, b geometry.Point, stroke color.Color, width float32) {
	vp := r.canvas.viewport
	x1, y1 := vp.ToPixel(a)
	x2, y2 := vp.ToPixel(b)
	line := canvas.NewLine(stroke)
	line.StrokeWidth = width
	line.Position1 = fyne.NewPos(float32(x1), float32(y1))
	line.Position2 = fyne.NewPos(float32(x2), float32(y2))
	r.objects = append(r.objects, line)
}

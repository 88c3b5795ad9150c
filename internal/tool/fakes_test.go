package tool

import (
	"image/color"

	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// fakeCanvas maps pixels one to one onto map units
type fakeCanvas struct {
	layer     layer.Layer
	bands     []*fakeBand
	refreshes int
}

func (c *fakeCanvas) ToMapCoordinates(pos PixelPos) geometry.Point {
	return geometry.NewPoint(float64(pos.X), float64(pos.Y))
}

func (c *fakeCanvas) CurrentLayer() layer.Layer { return c.layer }

func (c *fakeCanvas) Refresh() { c.refreshes++ }

func (c *fakeCanvas) NewRubberBand(kind geometry.Kind) RubberBand {
	b := &fakeBand{kind: kind}
	c.bands = append(c.bands, b)
	return b
}

type fakeBand struct {
	kind    geometry.Kind
	color   color.Color
	width   float32
	geom    geometry.Polygon
	visible bool
	resets  int
	// override replaces the value returned by AsGeometry
	override geometry.Geometry
}

func (b *fakeBand) SetColor(c color.Color)           { b.color = c }
func (b *fakeBand) SetWidth(w float32)               { b.width = w }
func (b *fakeBand) SetToGeometry(p geometry.Polygon) { b.geom = p }
func (b *fakeBand) Show()                            { b.visible = true }

func (b *fakeBand) AddPoint(p geometry.Point, first bool) {
	if first || len(b.geom.Rings) == 0 {
		b.geom = geometry.NewPolygon(p)
		return
	}
	b.geom.Rings[0] = append(b.geom.Rings[0], p)
}

func (b *fakeBand) Reset(kind geometry.Kind) {
	b.geom = geometry.Polygon{}
	b.visible = false
	b.resets++
}

func (b *fakeBand) AsGeometry() geometry.Geometry {
	if b.override != nil {
		return b.override
	}
	return b.geom
}

type fakeMessenger struct {
	titles   []string
	messages []string
}

func (m *fakeMessenger) PushInfo(title, message string) {
	m.titles = append(m.titles, title)
	m.messages = append(m.messages, message)
}

// countingProject records how often a transform is requested
type countingProject struct {
	*crs.Project
	transforms int
}

func (p *countingProject) NewTransform(src, dst crs.CRS) (crs.Transform, error) {
	p.transforms++
	return p.Project.NewTransform(src, dst)
}

func newProject(c crs.CRS) *countingProject {
	return &countingProject{Project: crs.NewProject(c, nil)}
}

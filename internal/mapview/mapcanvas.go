// Package mapview provides the Fyne map canvas that hosts map tools.
package mapview

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/internal/tool"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

const zoomStep = 1.2

// MapCanvas is a Fyne widget showing layer outlines and rubber bands. It
// forwards pointer and key events to the active map tool.
type MapCanvas struct {
	widget.BaseWidget

	project  *crs.Project
	viewport *Viewport

	layers  []layer.Layer
	current int

	tool  tool.MapTool
	bands []*RubberBand

	panning bool
	lastPos fyne.Position

	onLayerChanged func(layer.Layer)
}

var (
	_ tool.Canvas         = (*MapCanvas)(nil)
	_ desktop.Mouseable   = (*MapCanvas)(nil)
	_ desktop.Hoverable   = (*MapCanvas)(nil)
	_ fyne.Focusable      = (*MapCanvas)(nil)
	_ fyne.Scrollable     = (*MapCanvas)(nil)
	_ fyne.WidgetRenderer = (*mapRenderer)(nil)
)

// NewMapCanvas creates a canvas in the project CRS
func NewMapCanvas(project *crs.Project) *MapCanvas {
	scale := 10.0
	if def, err := project.Lookup(project.CRS().Code); err == nil && def.Geographic {
		scale = 0.0001
	}
	m := &MapCanvas{
		project:  project,
		viewport: NewViewport(geometry.Point{}, scale),
		current:  -1,
	}
	m.ExtendBaseWidget(m)
	return m
}

// Viewport exposes the current view
func (m *MapCanvas) Viewport() *Viewport {
	return m.viewport
}

// SetOnLayerChanged sets the callback fired when the current layer changes
func (m *MapCanvas) SetOnLayerChanged(fn func(layer.Layer)) {
	m.onLayerChanged = fn
}

// AddLayer adds a layer; the first added layer becomes current
func (m *MapCanvas) AddLayer(l layer.Layer) {
	m.layers = append(m.layers, l)
	if m.current < 0 {
		m.setCurrent(len(m.layers) - 1)
	}
	m.Refresh()
}

// Layers returns the layers in drawing order
func (m *MapCanvas) Layers() []layer.Layer {
	return m.layers
}

// SetCurrentLayer activates l. Layers are matched by identity, so two
// layers sharing a name stay distinct. A nil or unknown layer clears the
// selection.
func (m *MapCanvas) SetCurrentLayer(l layer.Layer) {
	for i, candidate := range m.layers {
		if candidate == l {
			m.setCurrent(i)
			return
		}
	}
	m.setCurrent(-1)
}

// SetCurrentLayerAt activates the layer at index i of Layers. An index out
// of range clears the selection.
func (m *MapCanvas) SetCurrentLayerAt(i int) {
	if i < 0 || i >= len(m.layers) {
		i = -1
	}
	m.setCurrent(i)
}

// CurrentIndex returns the index of the current layer, or -1
func (m *MapCanvas) CurrentIndex() int {
	if m.current >= len(m.layers) {
		return -1
	}
	return m.current
}

func (m *MapCanvas) setCurrent(i int) {
	m.current = i
	if m.onLayerChanged != nil {
		m.onLayerChanged(m.CurrentLayer())
	}
}

// CurrentLayer implements tool.Canvas
func (m *MapCanvas) CurrentLayer() layer.Layer {
	if m.current < 0 || m.current >= len(m.layers) {
		return nil
	}
	return m.layers[m.current]
}

// ToMapCoordinates implements tool.Canvas
func (m *MapCanvas) ToMapCoordinates(pos tool.PixelPos) geometry.Point {
	return m.viewport.ToMap(float64(pos.X), float64(pos.Y))
}

// NewRubberBand implements tool.Canvas
func (m *MapCanvas) NewRubberBand(kind geometry.Kind) tool.RubberBand {
	b := &RubberBand{canvas: m, kind: kind, color: color.NRGBA{R: 255, A: 255}, width: 1}
	m.bands = append(m.bands, b)
	return b
}

func (m *MapCanvas) removeBand(b *RubberBand) {
	for i, other := range m.bands {
		if other == b {
			m.bands = append(m.bands[:i], m.bands[i+1:]...)
			return
		}
	}
}

// RubberBands returns the bands currently attached to the canvas
func (m *MapCanvas) RubberBands() []*RubberBand {
	return m.bands
}

// SetMapTool makes t the active tool, deactivating the previous one
func (m *MapCanvas) SetMapTool(t tool.MapTool) {
	if m.tool == t {
		return
	}
	if m.tool != nil {
		m.tool.OnDeactivate()
	}
	m.tool = t
	if t != nil {
		t.OnActivate()
	}
}

// UnsetMapTool clears t if it is the active tool
func (m *MapCanvas) UnsetMapTool(t tool.MapTool) {
	if m.tool == t {
		m.tool = nil
	}
}

// MapTool returns the active tool or nil
func (m *MapCanvas) MapTool() tool.MapTool {
	return m.tool
}

// Resize keeps the viewport in step with the widget size
func (m *MapCanvas) Resize(size fyne.Size) {
	m.viewport.SetSize(float64(size.Width), float64(size.Height))
	m.BaseWidget.Resize(size)
}

// CreateRenderer implements fyne.Widget
func (m *MapCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.NRGBA{R: 0xf4, G: 0xf1, B: 0xea, A: 0xff})
	r := &mapRenderer{canvas: m, background: bg}
	r.rebuild()
	return r
}

func pixelPos(p fyne.Position) tool.PixelPos {
	return tool.PixelPos{X: p.X, Y: p.Y}
}

func toolButton(b desktop.MouseButton) (tool.Button, bool) {
	switch b {
	case desktop.MouseButtonPrimary:
		return tool.ButtonLeft, true
	case desktop.MouseButtonSecondary:
		return tool.ButtonRight, true
	case desktop.MouseButtonTertiary:
		return tool.ButtonMiddle, true
	}
	return 0, false
}

// MouseDown implements desktop.Mouseable. The middle button pans.
func (m *MapCanvas) MouseDown(e *desktop.MouseEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(m); c != nil {
		c.Focus(m)
	}
	btn, ok := toolButton(e.Button)
	if !ok {
		return
	}
	if btn == tool.ButtonMiddle {
		m.panning = true
		m.lastPos = e.Position
		return
	}
	if m.tool != nil {
		m.tool.OnPointerDown(tool.PointerEvent{Pos: pixelPos(e.Position), Button: btn})
	}
}

// MouseUp implements desktop.Mouseable
func (m *MapCanvas) MouseUp(e *desktop.MouseEvent) {
	btn, ok := toolButton(e.Button)
	if !ok {
		return
	}
	if btn == tool.ButtonMiddle {
		m.panning = false
		return
	}
	if m.tool != nil {
		m.tool.OnPointerUp(tool.PointerEvent{Pos: pixelPos(e.Position), Button: btn})
	}
}

// MouseIn implements desktop.Hoverable
func (m *MapCanvas) MouseIn(e *desktop.MouseEvent) {
	m.lastPos = e.Position
}

// MouseMoved implements desktop.Hoverable
func (m *MapCanvas) MouseMoved(e *desktop.MouseEvent) {
	if m.panning {
		delta := e.Position.Subtract(m.lastPos)
		m.viewport.Pan(float64(delta.X), float64(delta.Y))
		m.lastPos = e.Position
		m.Refresh()
		return
	}
	m.lastPos = e.Position
	if m.tool != nil {
		btn, _ := toolButton(e.Button)
		m.tool.OnPointerMove(tool.PointerEvent{Pos: pixelPos(e.Position), Button: btn})
	}
}

// MouseOut implements desktop.Hoverable
func (m *MapCanvas) MouseOut() {
	m.panning = false
}

// Scrolled zooms around the pointer
func (m *MapCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := zoomStep
	if e.Scrolled.DY < 0 {
		factor = 1 / zoomStep
	}
	m.viewport.Zoom(factor, float64(e.Position.X), float64(e.Position.Y))
	m.Refresh()
}

// FocusGained implements fyne.Focusable
func (m *MapCanvas) FocusGained() {}

// FocusLost implements fyne.Focusable
func (m *MapCanvas) FocusLost() {}

// TypedRune implements fyne.Focusable
func (m *MapCanvas) TypedRune(rune) {}

// TypedKey forwards Escape to the active tool
func (m *MapCanvas) TypedKey(e *fyne.KeyEvent) {
	if m.tool == nil {
		return
	}
	key := tool.KeyUnknown
	if e.Name == fyne.KeyEscape {
		key = tool.KeyEscape
	}
	m.tool.OnKeyPress(tool.KeyEvent{Key: key})
}

// CenterOn moves the view to a point given in crs c
func (m *MapCanvas) CenterOn(p geometry.Point, c crs.CRS) error {
	tr, err := m.project.NewTransform(c, m.project.CRS())
	if err != nil {
		return err
	}
	m.viewport.CenterOn(tr.Apply(p))
	m.Refresh()
	return nil
}

// ZoomToLayer fits the view to the features of l
func (m *MapCanvas) ZoomToLayer(l layer.Layer) {
	src, ok := l.(layer.FeatureSource)
	if !ok {
		return
	}
	tr, err := m.project.NewTransform(l.CRS(), m.project.CRS())
	if err != nil {
		logger.L().Warn("cannot display layer", "layer", l.Name(), "err", err)
		return
	}
	var pts []geometry.Point
	for _, f := range src.Features() {
		crs.TransformGeometry(f.Geometry(), tr).Transform(func(p geometry.Point) geometry.Point {
			pts = append(pts, p)
			return p
		})
	}
	if len(pts) == 0 {
		return
	}
	minP, maxP := pts[0], pts[0]
	for _, p := range pts[1:] {
		minP = minP.Min(p)
		maxP = maxP.Max(p)
	}
	m.viewport.CenterOn(minP.Add(maxP).Mul(0.5))
	if m.viewport.Width > 0 && m.viewport.Height > 0 {
		span := max((maxP.X-minP.X)/m.viewport.Width, (maxP.Y-minP.Y)/m.viewport.Height)
		if span > 0 {
			m.viewport.Scale = span * 1.2
		}
	}
	m.Refresh()
}

// Package tool implements the rectangle drawing map tool. A first click
// fixes one corner, a second click fixes the adjacent corner, moving the
// pointer sets the width and a final left release commits the rectangle
// to the active polygon layer.
package tool

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// ErrNoActivePolygonLayer means a commit was attempted without an active
// polygon vector layer.
var ErrNoActivePolygonLayer = errors.New("no active polygon layer")

const messageTitle = "Add feature"

// RectangleTool draws rectangles from two anchors and a width sample
type RectangleTool struct {
	canvas   Canvas
	project  Project
	messages Messenger
	log      *slog.Logger

	bandColor color.Color
	bandWidth float32

	state state
}

// Option configures a RectangleTool
type Option func(*RectangleTool)

// WithBandStyle sets the rubber band color and stroke width
func WithBandStyle(c color.Color, width float32) Option {
	return func(t *RectangleTool) {
		t.bandColor = c
		t.bandWidth = width
	}
}

// WithLogger replaces the default logger
func WithLogger(l *slog.Logger) Option {
	return func(t *RectangleTool) {
		t.log = l
	}
}

// New creates an idle rectangle tool
func New(canvas Canvas, project Project, messages Messenger, opts ...Option) *RectangleTool {
	t := &RectangleTool{
		canvas:    canvas,
		project:   project,
		messages:  messages,
		bandColor: color.NRGBA{R: 255, A: 255},
		bandWidth: 1,
		state:     idle{},
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logger.L().With("tool", "rectangle")
	}
	return t
}

var _ MapTool = (*RectangleTool)(nil)

// Phase returns the current interaction phase
func (t *RectangleTool) Phase() Phase { return t.state.phase() }

// Anchors returns a copy of the anchors placed so far
func (t *RectangleTool) Anchors() []geometry.Point { return t.state.anchors() }

// IsRectangle reports whether a valid width sample has been seen
func (t *RectangleTool) IsRectangle() bool {
	s, ok := t.state.(*widthCapturing)
	return ok && s.rectangle
}

// HasOverlay reports whether the tool currently owns a rubber band
func (t *RectangleTool) HasOverlay() bool { return t.state.overlay() != nil }

// OnActivate implements MapTool
func (t *RectangleTool) OnActivate() {
	t.log.Debug("activated")
}

// OnDeactivate implements MapTool
func (t *RectangleTool) OnDeactivate() {
	t.Reset()
}

// OnPointerDown places anchors. Only the left button places anchors;
// once both are set further presses are ignored until release.
func (t *RectangleTool) OnPointerDown(e PointerEvent) {
	if e.Button != ButtonLeft {
		return
	}
	pos := t.canvas.ToMapCoordinates(e.Pos)

	switch s := t.state.(type) {
	case idle:
		band := t.canvas.NewRubberBand(geometry.KindPolygon)
		band.SetColor(t.bandColor)
		band.SetWidth(t.bandWidth)
		band.SetToGeometry(geometry.Polygon{})
		band.AddPoint(pos, true)
		t.state = &anchorPlaced{anchor: pos, band: band}
		t.log.Debug("first anchor", "x", pos.X, "y", pos.Y)
	case *anchorPlaced:
		t.state = &widthCapturing{first: s.anchor, second: pos, band: s.band}
		t.log.Debug("second anchor", "x", pos.X, "y", pos.Y)
	}
}

// OnPointerMove updates the preview
func (t *RectangleTool) OnPointerMove(e PointerEvent) {
	switch s := t.state.(type) {
	case *anchorPlaced:
		pos := t.canvas.ToMapCoordinates(e.Pos)
		s.band.SetToGeometry(geometry.NewPolygon(s.anchor, pos))
		s.band.Show()
	case *widthCapturing:
		pos := t.canvas.ToMapCoordinates(e.Pos)
		rect, err := geometry.RectangleFromAnchors(s.first, s.second, pos)
		if err != nil {
			// Coincident anchors: nothing to preview yet
			t.log.Debug("skipping preview", "err", err)
			return
		}
		s.band.SetToGeometry(rect)
		s.band.Show()
		s.rectangle = true
	}
}

// OnPointerUp commits, resets or moves the last anchor depending on the
// phase and the released button.
func (t *RectangleTool) OnPointerUp(e PointerEvent) {
	if e.Button == ButtonRight {
		if t.state.phase() != PhaseIdle {
			t.Reset()
		}
		return
	}

	switch s := t.state.(type) {
	case *anchorPlaced:
		s.anchor = t.canvas.ToMapCoordinates(e.Pos)
		s.band.SetToGeometry(geometry.NewPolygon(s.anchor))
		s.band.Show()
	case *widthCapturing:
		if !s.rectangle || e.Button != ButtonLeft {
			return
		}
		if err := t.commit(s.band); err != nil {
			t.messages.PushInfo(messageTitle, userMessage(err))
			t.log.Info("commit refused", "err", err)
			return
		}
		t.Reset()
	}
}

// OnKeyPress resets on Escape
func (t *RectangleTool) OnKeyPress(e KeyEvent) {
	if e.Key == KeyEscape {
		t.Reset()
	}
}

// Reset drops the overlay and all anchors. It is safe to call repeatedly.
func (t *RectangleTool) Reset() {
	if band := t.state.overlay(); band != nil {
		band.Reset(geometry.KindPolygon)
	}
	t.state = idle{}
	t.canvas.Refresh()
}

// commit writes the rubber band geometry to the active layer. Errors are
// returned only when nothing was submitted; the add result itself is
// logged and otherwise ignored.
func (t *RectangleTool) commit(band RubberBand) error {
	target := t.canvas.CurrentLayer()
	if !layer.IsPolygonVector(target) {
		return ErrNoActivePolygonLayer
	}

	geom, err := t.transformed(band.AsGeometry(), target.CRS())
	if err != nil {
		return err
	}

	f := feature.New()
	f.SetFields(target.Fields())
	f.SetGeometry(geometry.ToSinglePolygon(geom))

	if ok := target.AddFeature(f); ok {
		t.log.Info("rectangle added", "layer", target.Name(), "id", f.ID)
	} else {
		t.log.Warn("layer did not accept rectangle", "layer", target.Name())
	}
	return nil
}

// transformed reprojects g from the project CRS to dst when they differ
func (t *RectangleTool) transformed(g geometry.Geometry, dst crs.CRS) (geometry.Geometry, error) {
	src := t.project.CRS()
	if src.Equal(dst) {
		return g, nil
	}
	tr, err := t.project.NewTransform(src, dst)
	if err != nil {
		return nil, fmt.Errorf("cannot reproject rectangle: %w", err)
	}
	return crs.TransformGeometry(g, tr), nil
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrNoActivePolygonLayer):
		return "No active polygon layer"
	case errors.Is(err, crs.ErrUnsupportedTransform):
		return "Cannot reproject to the layer CRS"
	default:
		return err.Error()
	}
}

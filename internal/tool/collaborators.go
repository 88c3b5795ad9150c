package tool

import (
	"image/color"

	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// PixelPos is a position in canvas pixels
type PixelPos struct {
	X, Y float32
}

// Button identifies the mouse button of a pointer event
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
)

// PointerEvent is a mouse press, move or release on the canvas
type PointerEvent struct {
	Pos    PixelPos
	Button Button
}

// Key identifies a keyboard key
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
)

// KeyEvent is a key press delivered to the active tool
type KeyEvent struct {
	Key Key
}

// MapTool is the event interface the canvas drives. The host delivers
// events one at a time on the UI goroutine.
type MapTool interface {
	OnPointerDown(e PointerEvent)
	OnPointerMove(e PointerEvent)
	OnPointerUp(e PointerEvent)
	OnKeyPress(e KeyEvent)
	OnActivate()
	OnDeactivate()
}

// Canvas is the map canvas hosting the tool
type Canvas interface {
	ToMapCoordinates(pos PixelPos) geometry.Point
	// CurrentLayer returns the active layer or nil
	CurrentLayer() layer.Layer
	Refresh()
	NewRubberBand(kind geometry.Kind) RubberBand
}

// RubberBand is a transient overlay geometry drawn on the canvas
type RubberBand interface {
	SetColor(c color.Color)
	SetWidth(w float32)
	SetToGeometry(p geometry.Polygon)
	AddPoint(p geometry.Point, first bool)
	Show()
	Reset(kind geometry.Kind)
	AsGeometry() geometry.Geometry
}

// Project supplies the project CRS and transforms out of it
type Project interface {
	CRS() crs.CRS
	NewTransform(src, dst crs.CRS) (crs.Transform, error)
}

// Messenger shows non-blocking notices to the user
type Messenger interface {
	PushInfo(title, message string)
}

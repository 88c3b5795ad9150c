package tool

import (
	"math"
	"testing"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

type harness struct {
	canvas   *fakeCanvas
	project  *countingProject
	messages *fakeMessenger
	layer    *layer.Memory
	tool     *RectangleTool
}

func newHarness() *harness {
	h := &harness{
		canvas:   &fakeCanvas{},
		project:  newProject(crs.WebMercator),
		messages: &fakeMessenger{},
		layer:    layer.NewMemory("parcels", geometry.KindPolygon, crs.WebMercator, layer.DefaultFields),
	}
	h.canvas.layer = h.layer
	h.tool = New(h.canvas, h.project, h.messages)
	return h
}

func left(x, y float32) PointerEvent  { return PointerEvent{Pos: PixelPos{X: x, Y: y}, Button: ButtonLeft} }
func right(x, y float32) PointerEvent { return PointerEvent{Pos: PixelPos{X: x, Y: y}, Button: ButtonRight} }

func (h *harness) click(x, y float32) {
	h.tool.OnPointerDown(left(x, y))
	h.tool.OnPointerUp(left(x, y))
}

// capture places anchors (0,0) and (10,0) and samples the width at (5,4)
func (h *harness) capture() {
	h.click(0, 0)
	h.tool.OnPointerMove(left(6, 0))
	h.click(10, 0)
	h.tool.OnPointerMove(left(5, 4))
}

func (h *harness) band() *fakeBand {
	return h.canvas.bands[len(h.canvas.bands)-1]
}

func TestFirstAnchorCreatesOverlay(t *testing.T) {
	h := newHarness()
	h.tool.OnPointerDown(left(3, 4))

	if h.tool.Phase() != PhaseAnchorPlaced {
		t.Fatalf("Phase failed: expected AnchorPlaced, got %v", h.tool.Phase())
	}
	if len(h.canvas.bands) != 1 {
		t.Fatalf("Expected one rubber band, got %d", len(h.canvas.bands))
	}
	b := h.band()
	if b.kind != geometry.KindPolygon || b.width != 1 || b.color == nil {
		t.Errorf("Band setup failed: kind %v width %v color %v", b.kind, b.width, b.color)
	}
	if ext := b.geom.Exterior(); len(ext) != 1 || ext[0] != geometry.NewPoint(3, 4) {
		t.Errorf("Band seed failed: got %v", b.geom.Rings)
	}
}

func TestMoveWithOneAnchorShowsLine(t *testing.T) {
	h := newHarness()
	h.click(0, 0)
	h.tool.OnPointerMove(left(7, 1))

	b := h.band()
	if !b.visible {
		t.Error("Band should be visible after move")
	}
	ext := b.geom.Exterior()
	if len(ext) != 2 || ext[1] != geometry.NewPoint(7, 1) {
		t.Errorf("Line preview failed: got %v", ext)
	}
	if h.tool.IsRectangle() {
		t.Error("One anchor must not be a rectangle")
	}
}

func TestReleaseMovesFirstAnchor(t *testing.T) {
	h := newHarness()
	h.tool.OnPointerDown(left(0, 0))
	h.tool.OnPointerUp(left(2, 3))

	anchors := h.tool.Anchors()
	if len(anchors) != 1 || anchors[0] != geometry.NewPoint(2, 3) {
		t.Errorf("Anchor snap failed: got %v", anchors)
	}
}

func TestReleaseWithoutAnchorIsIgnored(t *testing.T) {
	h := newHarness()
	h.tool.OnPointerUp(left(2, 3))
	h.tool.OnPointerMove(left(4, 4))

	if h.tool.Phase() != PhaseIdle || h.tool.HasOverlay() {
		t.Errorf("Idle release should do nothing, phase %v", h.tool.Phase())
	}
}

func TestSecondAnchorStartsCapturing(t *testing.T) {
	h := newHarness()
	h.click(0, 0)
	h.click(10, 0)

	if h.tool.Phase() != PhaseWidthCapturing {
		t.Fatalf("Phase failed: expected WidthCapturing, got %v", h.tool.Phase())
	}
	if h.tool.IsRectangle() {
		t.Error("No width sample yet, must not be a rectangle")
	}
	if n := len(h.layer.Features()); n != 0 {
		t.Errorf("Release before width sample committed %d features", n)
	}
}

func TestWidthSampleBuildsRectangle(t *testing.T) {
	h := newHarness()
	h.capture()

	if !h.tool.IsRectangle() {
		t.Fatal("Width sample should make a rectangle")
	}
	expected := geometry.NewPolygon(
		geometry.NewPoint(0, 0),
		geometry.NewPoint(10, 0),
		geometry.NewPoint(10, 4),
		geometry.NewPoint(0, 4),
	)
	if got := h.band().geom.WKT(); got != expected.WKT() {
		t.Errorf("Preview failed: expected %s, got %s", expected.WKT(), got)
	}
}

func TestThirdPressDoesNotAddAnchor(t *testing.T) {
	h := newHarness()
	h.capture()
	h.tool.OnPointerDown(left(50, 50))

	if n := len(h.tool.Anchors()); n != 2 {
		t.Errorf("Anchors failed: expected 2, got %d", n)
	}
}

func TestDegenerateAnchorsSkipPreview(t *testing.T) {
	h := newHarness()
	h.click(5, 5)
	h.tool.OnPointerMove(left(8, 8))
	h.click(5, 5)
	before := h.band().geom.WKT()

	h.tool.OnPointerMove(left(9, 1))

	if h.tool.IsRectangle() {
		t.Error("Coincident anchors must not produce a rectangle")
	}
	if got := h.band().geom.WKT(); got != before {
		t.Errorf("Preview should be unchanged, got %s", got)
	}
	if len(h.messages.messages) != 0 {
		t.Error("Degenerate anchors must not notify the user")
	}

	// A left release does not commit either
	h.tool.OnPointerUp(left(9, 1))
	if len(h.layer.Features()) != 0 {
		t.Error("Degenerate rectangle was committed")
	}
}

func TestCommitAddsFeatureAndResets(t *testing.T) {
	h := newHarness()
	h.capture()
	h.tool.OnPointerDown(left(5, 4))
	h.tool.OnPointerUp(left(5, 4))

	features := h.layer.Features()
	if len(features) != 1 {
		t.Fatalf("Commit failed: expected 1 feature, got %d", len(features))
	}
	f := features[0]
	if got := f.Geometry().WKT(); got != "POLYGON ((0 0, 10 0, 10 4, 0 4, 0 0))" {
		t.Errorf("Committed geometry failed: got %s", got)
	}
	if len(f.Fields()) != len(layer.DefaultFields) {
		t.Errorf("Feature schema failed: got %v", f.Fields())
	}
	for i, v := range f.Attributes() {
		if v != nil {
			t.Errorf("Attribute %d should be left at default, got %v", i, v)
		}
	}

	if h.tool.Phase() != PhaseIdle || h.tool.HasOverlay() || h.tool.IsRectangle() {
		t.Errorf("Tool should be idle after commit, phase %v", h.tool.Phase())
	}
	if h.canvas.bands[0].resets != 1 {
		t.Errorf("Band reset failed: got %d resets", h.canvas.bands[0].resets)
	}
	if h.project.transforms != 0 {
		t.Errorf("Equal CRS must not transform, got %d transforms", h.project.transforms)
	}
	if len(h.messages.messages) != 0 {
		t.Errorf("Successful commit notified: %v", h.messages.messages)
	}
}

func TestCommitWithoutPolygonLayer(t *testing.T) {
	layers := map[string]layer.Layer{
		"none":   nil,
		"raster": layer.NewRaster("dem", crs.WebMercator),
		"lines":  layer.NewMemory("roads", geometry.KindLine, crs.WebMercator, nil),
	}

	for name, l := range layers {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			h.canvas.layer = l
			h.capture()
			anchorsBefore := h.tool.Anchors()

			h.tool.OnPointerUp(left(5, 4))

			if len(h.messages.messages) != 1 {
				t.Fatalf("Expected exactly one notification, got %d", len(h.messages.messages))
			}
			if h.messages.titles[0] != "Add feature" || h.messages.messages[0] != "No active polygon layer" {
				t.Errorf("Notification failed: %s / %s", h.messages.titles[0], h.messages.messages[0])
			}
			if h.tool.Phase() != PhaseWidthCapturing || !h.tool.IsRectangle() {
				t.Errorf("State changed: phase %v rectangle %v", h.tool.Phase(), h.tool.IsRectangle())
			}
			anchors := h.tool.Anchors()
			if len(anchors) != 2 || anchors[0] != anchorsBefore[0] || anchors[1] != anchorsBefore[1] {
				t.Errorf("Anchors changed: %v -> %v", anchorsBefore, anchors)
			}
			if !h.tool.HasOverlay() || h.band().resets != 0 {
				t.Error("Rubber band should be left in place")
			}

			// Choosing a layer and releasing again commits
			h.canvas.layer = h.layer
			h.tool.OnPointerUp(left(5, 4))
			if len(h.layer.Features()) != 1 {
				t.Errorf("Retry failed: got %d features", len(h.layer.Features()))
			}
		})
	}
}

func TestRightClickResetsWhileCapturing(t *testing.T) {
	h := newHarness()
	h.capture()
	h.tool.OnPointerDown(right(5, 4))
	h.tool.OnPointerUp(right(5, 4))

	if len(h.tool.Anchors()) != 0 || h.tool.HasOverlay() || h.tool.IsRectangle() {
		t.Errorf("Right click should reset, phase %v", h.tool.Phase())
	}
	if len(h.layer.Features()) != 0 {
		t.Error("Right click must not commit")
	}
}

func TestRightClickResetsWithOneAnchor(t *testing.T) {
	h := newHarness()
	h.click(1, 1)
	h.tool.OnPointerUp(right(3, 3))

	if h.tool.Phase() != PhaseIdle || h.tool.HasOverlay() {
		t.Errorf("Right release should reset, phase %v", h.tool.Phase())
	}
}

func TestRightPressDoesNotPlaceAnchor(t *testing.T) {
	h := newHarness()
	h.tool.OnPointerDown(right(1, 1))
	if h.tool.Phase() != PhaseIdle || len(h.canvas.bands) != 0 {
		t.Error("Right press should not place an anchor")
	}
}

func TestEscapeResets(t *testing.T) {
	for _, steps := range []int{1, 2, 3} {
		h := newHarness()
		h.click(0, 0)
		if steps > 1 {
			h.click(10, 0)
		}
		if steps > 2 {
			h.tool.OnPointerMove(left(5, 4))
		}

		h.tool.OnKeyPress(KeyEvent{Key: KeyEscape})
		if h.tool.Phase() != PhaseIdle || h.tool.HasOverlay() || len(h.tool.Anchors()) != 0 {
			t.Errorf("steps %d: escape should reset, phase %v", steps, h.tool.Phase())
		}
	}

	h := newHarness()
	h.click(0, 0)
	h.tool.OnKeyPress(KeyEvent{Key: KeyUnknown})
	if h.tool.Phase() != PhaseAnchorPlaced {
		t.Error("Other keys should be ignored")
	}
}

func TestDeactivateResets(t *testing.T) {
	h := newHarness()
	h.tool.OnActivate()
	h.capture()
	h.tool.OnDeactivate()

	if h.tool.Phase() != PhaseIdle || h.tool.HasOverlay() {
		t.Errorf("Deactivate should reset, phase %v", h.tool.Phase())
	}
}

func TestResetIsIdempotent(t *testing.T) {
	h := newHarness()
	h.capture()

	for i := 0; i < 2; i++ {
		h.tool.Reset()
		if len(h.tool.Anchors()) != 0 || h.tool.HasOverlay() || h.tool.IsRectangle() {
			t.Errorf("Reset %d failed: phase %v", i+1, h.tool.Phase())
		}
	}
	if h.canvas.bands[0].resets != 1 {
		t.Errorf("Band should be reset once, got %d", h.canvas.bands[0].resets)
	}
	if h.canvas.refreshes != 2 {
		t.Errorf("Each reset should refresh the canvas, got %d", h.canvas.refreshes)
	}
}

func TestNewCycleAfterCommit(t *testing.T) {
	h := newHarness()
	h.capture()
	h.tool.OnPointerUp(left(5, 4))
	h.capture()
	h.tool.OnPointerUp(left(5, 4))

	if len(h.layer.Features()) != 2 {
		t.Errorf("Expected 2 features, got %d", len(h.layer.Features()))
	}
	if len(h.canvas.bands) != 2 {
		t.Errorf("Each cycle should create its own band, got %d", len(h.canvas.bands))
	}
}

func TestCommitMultiPolygonKeepsFirstMember(t *testing.T) {
	h := newHarness()
	h.capture()

	first := geometry.NewPolygon(geometry.NewPoint(0, 0), geometry.NewPoint(1, 0), geometry.NewPoint(1, 1))
	second := geometry.NewPolygon(geometry.NewPoint(5, 5), geometry.NewPoint(6, 5), geometry.NewPoint(6, 6))
	h.band().override = geometry.MultiPolygon{Polygons: []geometry.Polygon{first, second}}

	h.tool.OnPointerUp(left(5, 4))

	features := h.layer.Features()
	if len(features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(features))
	}
	got := features[0].Geometry()
	if got.Kind() != geometry.KindPolygon || got.WKT() != first.WKT() {
		t.Errorf("Single polygon reduction failed: got %s", got.WKT())
	}
}

func TestCommitReprojectsToLayerCRS(t *testing.T) {
	h := newHarness()
	h.project = newProject(crs.WGS84)
	h.tool = New(h.canvas, h.project, h.messages)
	h.layer = layer.NewMemory("parcels", geometry.KindPolygon, crs.WebMercator, nil)
	h.canvas.layer = h.layer

	h.capture()
	h.tool.OnPointerUp(left(5, 4))

	if h.project.transforms != 1 {
		t.Errorf("Expected one transform, got %d", h.project.transforms)
	}
	features := h.layer.Features()
	if len(features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(features))
	}
	ext := features[0].Geometry().(geometry.Polygon).Exterior()
	want := geometry.NewPoint(1113194.9079327357, 445640.1096560266)
	if math.Abs(ext[2].X-want.X) > 1e-3 || math.Abs(ext[2].Y-want.Y) > 1e-3 {
		t.Errorf("Reprojection failed: expected %v, got %v", want, ext[2])
	}
}

func TestCommitIntoUTMLayer(t *testing.T) {
	h := newHarness()
	h.project = newProject(crs.WGS84)
	h.tool = New(h.canvas, h.project, h.messages)
	utm := crs.CRS{Code: "EPSG:25832"}
	h.layer = layer.NewMemory("utm", geometry.KindPolygon, utm, nil)
	h.canvas.layer = h.layer

	h.capture()
	rect := h.band().geom
	h.tool.OnPointerUp(left(5, 4))

	if len(h.messages.messages) != 0 {
		t.Fatalf("Expected no notification, got %v", h.messages.messages)
	}
	if h.project.transforms != 1 {
		t.Errorf("Expected one transform, got %d", h.project.transforms)
	}
	features := h.layer.Features()
	if len(features) != 1 {
		t.Fatalf("Expected 1 feature, got %d", len(features))
	}

	tr, err := crs.NewRegistry().NewTransform(crs.WGS84, utm)
	if err != nil {
		t.Fatalf("NewTransform failed: %v", err)
	}
	want := crs.TransformGeometry(rect, tr).(geometry.Polygon).Exterior()
	got := features[0].Geometry().(geometry.Polygon).Exterior()
	if len(got) != len(want) {
		t.Fatalf("Ring failed: expected %d vertices, got %d", len(want), len(got))
	}
	for i := range want {
		if !got[i].ApproxEqual(want[i], 1e-6) {
			t.Errorf("Vertex %d failed: expected %v, got %v", i, want[i], got[i])
		}
	}
	if got[0].ApproxEqual(geometry.NewPoint(0, 0), 1) {
		t.Error("Reprojection failed: geometry stored in project coordinates")
	}
	if h.tool.Phase() != PhaseIdle {
		t.Errorf("Expected reset after commit, got %v", h.tool.Phase())
	}
}

func TestCommitUnsupportedTransformKeepsState(t *testing.T) {
	h := newHarness()
	h.layer = layer.NewMemory("local", geometry.KindPolygon, crs.CRS{Code: "LOCAL:1"}, nil)
	h.canvas.layer = h.layer

	h.capture()
	h.tool.OnPointerUp(left(5, 4))

	if len(h.messages.messages) != 1 {
		t.Fatalf("Expected one notification, got %d", len(h.messages.messages))
	}
	if h.tool.Phase() != PhaseWidthCapturing {
		t.Errorf("State should be kept, got %v", h.tool.Phase())
	}
	if len(h.layer.Features()) != 0 {
		t.Error("Nothing should be committed")
	}
}

// rejectingLayer reports failure for every add
type rejectingLayer struct {
	*layer.Memory
	calls int
}

func (l *rejectingLayer) AddFeature(f *feature.Feature) bool {
	l.calls++
	return false
}

func TestCommitResetsWhenLayerRejects(t *testing.T) {
	h := newHarness()
	rejecting := &rejectingLayer{Memory: h.layer}
	h.canvas.layer = rejecting

	h.capture()
	h.tool.OnPointerUp(left(5, 4))

	if rejecting.calls != 1 {
		t.Errorf("Expected one add call, got %d", rejecting.calls)
	}
	if h.tool.Phase() != PhaseIdle {
		t.Errorf("Tool should reset even when the add fails, got %v", h.tool.Phase())
	}
	if len(h.messages.messages) != 0 {
		t.Error("Add failure is not reported by the tool")
	}
}

func TestBandStyleOption(t *testing.T) {
	h := newHarness()
	h.tool = New(h.canvas, h.project, h.messages, WithBandStyle(nil, 3))
	h.click(0, 0)
	if h.band().width != 3 {
		t.Errorf("Band width failed: got %v", h.band().width)
	}
}

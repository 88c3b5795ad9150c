package tool

import "github.com/philipparndt/rectdraw/pkg/geometry"

// Phase is the externally visible interaction state
type Phase int

const (
	// PhaseIdle has no anchors and no overlay
	PhaseIdle Phase = iota
	// PhaseAnchorPlaced has the first anchor; moves preview a line
	PhaseAnchorPlaced
	// PhaseWidthCapturing has both anchors; moves set the width
	PhaseWidthCapturing
)

func (p Phase) String() string {
	switch p {
	case PhaseAnchorPlaced:
		return "AnchorPlaced"
	case PhaseWidthCapturing:
		return "WidthCapturing"
	default:
		return "Idle"
	}
}

// state is one of idle, *anchorPlaced or *widthCapturing. Each variant
// carries only what its phase needs, so a rectangle flag without two
// anchors or an overlay without an anchor cannot be expressed.
type state interface {
	phase() Phase
	anchors() []geometry.Point
	overlay() RubberBand
}

type idle struct{}

func (idle) phase() Phase              { return PhaseIdle }
func (idle) anchors() []geometry.Point { return nil }
func (idle) overlay() RubberBand       { return nil }

type anchorPlaced struct {
	anchor geometry.Point
	band   RubberBand
}

func (s *anchorPlaced) phase() Phase              { return PhaseAnchorPlaced }
func (s *anchorPlaced) anchors() []geometry.Point { return []geometry.Point{s.anchor} }
func (s *anchorPlaced) overlay() RubberBand       { return s.band }

type widthCapturing struct {
	first, second geometry.Point
	band          RubberBand
	// rectangle is set once a width sample produced a preview
	rectangle bool
}

func (s *widthCapturing) phase() Phase { return PhaseWidthCapturing }
func (s *widthCapturing) anchors() []geometry.Point {
	return []geometry.Point{s.first, s.second}
}
func (s *widthCapturing) overlay() RubberBand { return s.band }

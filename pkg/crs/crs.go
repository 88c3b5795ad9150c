// Package crs provides a coordinate reference system registry and the
// transforms between systems, backed by the EPSG definitions of
// github.com/wroge/wgs84.
package crs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

var (
	// ErrUnknownCRS is returned for codes that cannot be parsed or looked up
	ErrUnknownCRS = errors.New("unknown coordinate reference system")
	// ErrUnsupportedTransform is returned when no point function links two systems
	ErrUnsupportedTransform = errors.New("unsupported coordinate transform")
)

// CRS identifies a coordinate reference system by its authority code
type CRS struct {
	Code string
}

// Well known systems
var (
	WGS84       = CRS{Code: "EPSG:4326"}
	WebMercator = CRS{Code: "EPSG:3857"}
)

// Parse normalizes a code such as "epsg:3857", "EPSG:3857" or "3857".
// OGC URNs ("urn:ogc:def:crs:EPSG::3857") and URLs
// ("http://www.opengis.net/def/crs/EPSG/0/3857") reduce to AUTHORITY:CODE.
// CRS84 maps to EPSG:4326 and the Web Mercator aliases (EPSG:900913,
// EPSG:3785) map to EPSG:3857.
func Parse(code string) (CRS, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if c == "" {
		return CRS{}, fmt.Errorf("%w: empty code", ErrUnknownCRS)
	}

	if rest, ok := strings.CutPrefix(c, "HTTPS://"); ok {
		c = "HTTP://" + rest
	}

	switch {
	case strings.HasPrefix(c, ogcURNPrefix):
		// AUTHORITY:[VERSION]:CODE
		parts := strings.Split(strings.TrimPrefix(c, ogcURNPrefix), ":")
		if len(parts) < 2 || parts[0] == "" || parts[len(parts)-1] == "" {
			return CRS{}, fmt.Errorf("%w: %s", ErrUnknownCRS, code)
		}
		c = parts[0] + ":" + parts[len(parts)-1]
	case strings.HasPrefix(c, ogcURLPrefix):
		// AUTHORITY/VERSION/CODE
		parts := strings.Split(strings.TrimPrefix(c, ogcURLPrefix), "/")
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			return CRS{}, fmt.Errorf("%w: %s", ErrUnknownCRS, code)
		}
		c = parts[0] + ":" + parts[2]
	}

	switch c {
	case "CRS84", "OGC:CRS84":
		return WGS84, nil
	}
	if !strings.Contains(c, ":") {
		c = "EPSG:" + c
	}
	switch c {
	case "EPSG:900913", "EPSG:3785":
		c = WebMercator.Code
	}
	return CRS{Code: c}, nil
}

const (
	ogcURNPrefix = "URN:OGC:DEF:CRS:"
	ogcURLPrefix = "HTTP://WWW.OPENGIS.NET/DEF/CRS/"
)

// SRID returns the numeric part of an EPSG code, or 0 when there is none
func (c CRS) SRID() int {
	_, num, ok := strings.Cut(c.Code, ":")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(num)
	if err != nil {
		return 0
	}
	return n
}

// Equal reports whether two systems are the same
func (c CRS) Equal(other CRS) bool {
	return strings.EqualFold(c.Code, other.Code)
}

// IsValid reports whether the CRS carries a code
func (c CRS) IsValid() bool {
	return c.Code != ""
}

func (c CRS) String() string {
	return c.Code
}

// Transform maps points from one CRS to another
type Transform interface {
	Source() CRS
	Destination() CRS
	Apply(p geometry.Point) geometry.Point
	IsIdentity() bool
}

// TransformGeometry applies t to every vertex of g. Identity transforms
// return g unchanged.
func TransformGeometry(g geometry.Geometry, t Transform) geometry.Geometry {
	if t == nil || t.IsIdentity() {
		return g
	}
	return g.Transform(t.Apply)
}

type funcTransform struct {
	src, dst CRS
	fn       func(geometry.Point) geometry.Point
}

func (t funcTransform) Source() CRS      { return t.src }
func (t funcTransform) Destination() CRS { return t.dst }
func (t funcTransform) IsIdentity() bool { return t.fn == nil }

func (t funcTransform) Apply(p geometry.Point) geometry.Point {
	if t.fn == nil {
		return p
	}
	return t.fn(p)
}

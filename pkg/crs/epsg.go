package crs

import (
	"math"
	"strings"

	"github.com/wroge/wgs84"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// Latitude at which the square Web Mercator extent ends
const maxMercatorLat = 85.05112877980659

var (
	epsg      = wgs84.EPSG()
	epsgCodes = supportedCodes()
)

func supportedCodes() map[int]bool {
	codes := make(map[int]bool)
	for _, c := range epsg.Codes() {
		codes[c] = true
	}
	return codes
}

// epsgCode returns the EPSG number of c when the EPSG database knows it
func epsgCode(c CRS) (int, bool) {
	if !strings.HasPrefix(strings.ToUpper(c.Code), "EPSG:") {
		return 0, false
	}
	n := c.SRID()
	return n, epsgCodes[n]
}

// epsgTransform builds a point function between two EPSG systems.
// Geographic systems use longitude/latitude axis order.
func epsgTransform(src, dst CRS) (func(geometry.Point) geometry.Point, bool) {
	from, ok := epsgCode(src)
	if !ok {
		return nil, false
	}
	to, ok := epsgCode(dst)
	if !ok {
		return nil, false
	}

	fn := epsg.Transform(from, to)
	clamp := from == 4326 && to == 3857
	return func(p geometry.Point) geometry.Point {
		y := p.Y
		if clamp {
			y = math.Max(-maxMercatorLat, math.Min(maxMercatorLat, y))
		}
		x, y, _ := fn(p.X, y, 0)
		return geometry.NewPoint(x, y)
	}, true
}

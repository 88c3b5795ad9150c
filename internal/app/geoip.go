package app

import (
	"errors"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// ErrInvalidIP is returned when the center address does not parse
var ErrInvalidIP = errors.New("invalid ip address")

// LocateIP looks up ip in a GeoLite2/GeoIP2 City database and returns its
// position as a WGS84 lon/lat point.
func LocateIP(dbPath, ip string) (geometry.Point, error) {
	addr := net.ParseIP(ip)
	if addr == nil {
		return geometry.Point{}, fmt.Errorf("%w: %q", ErrInvalidIP, ip)
	}

	db, err := geoip2.Open(dbPath)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("failed to open geoip database: %w", err)
	}
	defer db.Close()

	city, err := db.City(addr)
	if err != nil {
		return geometry.Point{}, fmt.Errorf("geoip lookup for %s: %w", ip, err)
	}
	return geometry.NewPoint(city.Location.Longitude, city.Location.Latitude), nil
}

// Package layer provides the vector layers that committed rectangles are
// written to. Every backend satisfies Layer; Open picks one by URL.
package layer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// Type distinguishes vector layers from everything else
type Type int

const (
	TypeVector Type = iota
	TypeRaster
)

func (t Type) String() string {
	if t == TypeVector {
		return "vector"
	}
	return "raster"
}

// Layer is a map layer that may accept new features
type Layer interface {
	Name() string
	Type() Type
	// GeometryType is the geometry family; multi and single polygons both
	// report geometry.KindPolygon.
	GeometryType() geometry.Kind
	Fields() feature.Schema
	CRS() crs.CRS
	// AddFeature appends f and reports whether the backend accepted it
	AddFeature(f *feature.Feature) bool
}

// FeatureSource is implemented by layers that can list their features
type FeatureSource interface {
	Features() []*feature.Feature
}

// Closer is implemented by layers holding connections or files
type Closer interface {
	Close() error
}

// ErrUnsupportedURL is returned by Open for URLs no layer provider handles
var ErrUnsupportedURL = errors.New("unsupported layer url")

// Options configures layers that are created rather than opened
type Options struct {
	CRS    crs.CRS
	Fields feature.Schema
	// RedisAddr is used for redis:// URLs without a host
	RedisAddr string
}

// DefaultFields is the schema given to newly created layers
var DefaultFields = feature.Schema{
	{Name: "name", Type: feature.FieldString},
	{Name: "note", Type: feature.FieldString},
}

// Open opens or creates the layer addressed by rawURL:
//
//	memory:<name>            in-process polygon layer
//	raster:<name>            non-vector layer
//	<path>.geojson           GeoJSON file, created when missing
//	postgres://...?table=t   PostGIS table
//	redis://host/db?key=k    Redis backed layer
func Open(ctx context.Context, rawURL string, opts Options) (Layer, error) {
	if !opts.CRS.IsValid() {
		opts.CRS = crs.WebMercator
	}
	if opts.Fields == nil {
		opts.Fields = DefaultFields
	}

	switch {
	case strings.HasPrefix(rawURL, "memory:"):
		return NewMemory(strings.TrimPrefix(rawURL, "memory:"), geometry.KindPolygon, opts.CRS, opts.Fields), nil
	case strings.HasPrefix(rawURL, "raster:"):
		return NewRaster(strings.TrimPrefix(rawURL, "raster:"), opts.CRS), nil
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return OpenPostGIS(ctx, rawURL)
	case strings.HasPrefix(rawURL, "redis://"):
		return OpenRedis(ctx, rawURL, opts)
	}

	ext := strings.ToLower(filepath.Ext(rawURL))
	if ext == ".geojson" || ext == ".json" {
		return OpenGeoJSON(rawURL, opts)
	}
	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" {
		return nil, fmt.Errorf("%w: scheme %q", ErrUnsupportedURL, u.Scheme)
	}
	return nil, fmt.Errorf("%w: %s (expected .geojson, memory:, postgres:// or redis://)", ErrUnsupportedURL, rawURL)
}

// IsPolygonVector reports whether l can take rectangle features
func IsPolygonVector(l Layer) bool {
	return l != nil && l.Type() == TypeVector && l.GeometryType() == geometry.KindPolygon
}

// checkGeometry verifies f carries a polygon geometry
func checkGeometry(f *feature.Feature) error {
	if f == nil {
		return errors.New("nil feature")
	}
	g := f.Geometry()
	if g == nil || g.IsEmpty() {
		return errors.New("feature has no geometry")
	}
	if g.Kind() != geometry.KindPolygon && g.Kind() != geometry.KindMultiPolygon {
		return fmt.Errorf("layer accepts polygons, got %s", g.Kind())
	}
	return nil
}

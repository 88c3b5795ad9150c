package layer

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// errUnsupportedGeometry marks features without a polygon geometry. Loaders
// skip them.
var errUnsupportedGeometry = errors.New("unsupported geometry")

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Name     string           `json:"name,omitempty"`
	CRS      *geoJSONCRS      `json:"crs,omitempty"`
	Fields   []geoJSONField   `json:"fields,omitempty"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONCRS struct {
	Type       string `json:"type"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

type geoJSONField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	ID         int64           `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   geoJSONGeometry `json:"geometry"`
}

type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

func newGeoJSONCRS(code string) *geoJSONCRS {
	c := &geoJSONCRS{Type: "name"}
	c.Properties.Name = code
	return c
}

func encodeFields(s feature.Schema) []geoJSONField {
	out := make([]geoJSONField, len(s))
	for i, f := range s {
		out[i] = geoJSONField{Name: f.Name, Type: f.Type.String()}
	}
	return out
}

func decodeFields(in []geoJSONField) feature.Schema {
	out := make(feature.Schema, len(in))
	for i, f := range in {
		out[i] = feature.Field{Name: f.Name, Type: feature.ParseFieldType(f.Type)}
	}
	return out
}

func ringCoords(r geometry.Ring) [][2]float64 {
	closed := r.Closed()
	out := make([][2]float64, len(closed))
	for i, p := range closed {
		out[i] = [2]float64{p.X, p.Y}
	}
	return out
}

func polygonCoords(p geometry.Polygon) [][][2]float64 {
	out := make([][][2]float64, len(p.Rings))
	for i, r := range p.Rings {
		out[i] = ringCoords(r)
	}
	return out
}

func coordsPolygon(in [][][2]float64) geometry.Polygon {
	poly := geometry.Polygon{Rings: make([]geometry.Ring, len(in))}
	for i, ring := range in {
		// Drop the explicit closing vertex; rings close implicitly
		if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}
		r := make(geometry.Ring, len(ring))
		for j, c := range ring {
			r[j] = geometry.NewPoint(c[0], c[1])
		}
		poly.Rings[i] = r
	}
	return poly
}

func encodeGeometry(g geometry.Geometry) (geoJSONGeometry, error) {
	var (
		typ    string
		coords any
	)
	switch v := g.(type) {
	case geometry.Polygon:
		typ, coords = "Polygon", polygonCoords(v)
	case geometry.MultiPolygon:
		polys := make([][][][2]float64, len(v.Polygons))
		for i, p := range v.Polygons {
			polys[i] = polygonCoords(p)
		}
		typ, coords = "MultiPolygon", polys
	default:
		return geoJSONGeometry{}, fmt.Errorf("cannot encode %T as GeoJSON", g)
	}
	raw, err := json.Marshal(coords)
	if err != nil {
		return geoJSONGeometry{}, err
	}
	return geoJSONGeometry{Type: typ, Coordinates: raw}, nil
}

func decodeGeometry(g geoJSONGeometry) (geometry.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var coords [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("polygon coordinates: %w", err)
		}
		return coordsPolygon(coords), nil
	case "MultiPolygon":
		var coords [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &coords); err != nil {
			return nil, fmt.Errorf("multipolygon coordinates: %w", err)
		}
		mp := geometry.MultiPolygon{Polygons: make([]geometry.Polygon, len(coords))}
		for i, c := range coords {
			mp.Polygons[i] = coordsPolygon(c)
		}
		return mp, nil
	default:
		if g.Type == "" {
			return nil, fmt.Errorf("%w: null", errUnsupportedGeometry)
		}
		return nil, fmt.Errorf("%w: %s", errUnsupportedGeometry, g.Type)
	}
}

func encodeFeature(f *feature.Feature) (geoJSONFeature, error) {
	geom, err := encodeGeometry(f.Geometry())
	if err != nil {
		return geoJSONFeature{}, err
	}
	props := make(map[string]any, len(f.Fields()))
	for i, field := range f.Fields() {
		props[field.Name] = f.Attributes()[i]
	}
	return geoJSONFeature{Type: "Feature", ID: f.ID, Properties: props, Geometry: geom}, nil
}

func decodeFeature(in geoJSONFeature, schema feature.Schema) (*feature.Feature, error) {
	geom, err := decodeGeometry(in.Geometry)
	if err != nil {
		return nil, err
	}
	f := feature.New()
	f.ID = in.ID
	f.SetFields(schema)
	for _, field := range schema {
		if v, ok := in.Properties[field.Name]; ok {
			_ = f.SetAttribute(field.Name, v)
		}
	}
	f.SetGeometry(geom)
	return f, nil
}

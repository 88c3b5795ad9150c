package layer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// GeoJSON is a polygon layer backed by a FeatureCollection file. The file
// is rewritten on every added feature.
type GeoJSON struct {
	path string

	mu       sync.RWMutex
	name     string
	crs      crs.CRS
	fields   feature.Schema
	features []*feature.Feature
}

// OpenGeoJSON reads path, or creates it with opts when it does not exist
func OpenGeoJSON(path string, opts Options) (*GeoJSON, error) {
	l := &GeoJSON{
		path:   path,
		name:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		crs:    opts.CRS,
		fields: opts.Fields,
	}

	err := l.Reload()
	if errors.Is(err, fs.ErrNotExist) {
		l.mu.Lock()
		err := l.saveLocked()
		l.mu.Unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", path, err)
		}
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Path returns the backing file
func (l *GeoJSON) Path() string { return l.path }

// Reload replaces the in-memory state with the file contents
func (l *GeoJSON) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}

	var fc geoJSONCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse %s: %w", l.path, err)
	}
	if fc.Type != "FeatureCollection" {
		return fmt.Errorf("%s: expected FeatureCollection, got %q", l.path, fc.Type)
	}

	schema := decodeFields(fc.Fields)
	if len(fc.Fields) == 0 && len(fc.Features) > 0 {
		schema = inferSchema(fc.Features[0].Properties)
	}

	features := make([]*feature.Feature, 0, len(fc.Features))
	for i, gf := range fc.Features {
		f, err := decodeFeature(gf, schema)
		if errors.Is(err, errUnsupportedGeometry) {
			logger.L().Warn("skipping geojson feature", "path", l.path, "index", i, "err", err)
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: feature %d: %w", l.path, i, err)
		}
		features = append(features, f)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if fc.Name != "" {
		l.name = fc.Name
	}
	if fc.CRS != nil {
		if c, err := crs.Parse(fc.CRS.Properties.Name); err == nil {
			l.crs = c
		}
	} else {
		// RFC 7946 files carry no crs member and are always WGS84
		l.crs = crs.WGS84
	}
	if len(schema) > 0 {
		l.fields = schema
	}
	l.features = features
	return nil
}

func inferSchema(props map[string]any) feature.Schema {
	names := make([]string, 0, len(props))
	for k := range props {
		names = append(names, k)
	}
	sort.Strings(names)

	schema := make(feature.Schema, len(names))
	for i, n := range names {
		t := feature.FieldString
		switch props[n].(type) {
		case float64:
			t = feature.FieldReal
		case bool:
			t = feature.FieldBool
		}
		schema[i] = feature.Field{Name: n, Type: t}
	}
	return schema
}

func (l *GeoJSON) Name() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.name
}

func (l *GeoJSON) Type() Type                  { return TypeVector }
func (l *GeoJSON) GeometryType() geometry.Kind { return geometry.KindPolygon }

func (l *GeoJSON) Fields() feature.Schema {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.fields
}

func (l *GeoJSON) CRS() crs.CRS {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.crs
}

// Features implements FeatureSource
func (l *GeoJSON) Features() []*feature.Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*feature.Feature(nil), l.features...)
}

// AddFeature implements Layer
func (l *GeoJSON) AddFeature(f *feature.Feature) bool {
	if err := checkGeometry(f); err != nil {
		logger.L().Warn("geojson layer rejected feature", "path", l.path, "err", err)
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	prev, prevID := l.features, f.ID
	f.ID = l.maxID() + 1
	l.features = append(l.features[:len(l.features):len(l.features)], f)

	if err := l.saveLocked(); err != nil {
		logger.L().Error("failed to write geojson layer", "path", l.path, "err", err)
		l.features = prev
		f.ID = prevID
		return false
	}
	return true
}

func (l *GeoJSON) maxID() int64 {
	var max int64
	for _, f := range l.features {
		if f.ID > max {
			max = f.ID
		}
	}
	return max
}

// saveLocked writes the collection to a temp file and renames it into
// place. The caller holds l.mu.
func (l *GeoJSON) saveLocked() error {
	fc := geoJSONCollection{
		Type:     "FeatureCollection",
		Name:     l.name,
		CRS:      newGeoJSONCRS(l.crs.Code),
		Fields:   encodeFields(l.fields),
		Features: make([]geoJSONFeature, 0, len(l.features)),
	}
	for _, f := range l.features {
		gf, err := encodeFeature(f)
		if err != nil {
			return err
		}
		fc.Features = append(fc.Features, gf)
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".rectdraw-*.geojson")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return nil
}

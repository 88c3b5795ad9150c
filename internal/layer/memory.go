package layer

import (
	"sync"

	"github.com/philipparndt/rectdraw/internal/feature"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// Memory is an in-process vector layer
type Memory struct {
	name     string
	geomType geometry.Kind
	crs      crs.CRS
	fields   feature.Schema

	mu       sync.RWMutex
	features []*feature.Feature
	nextID   int64
}

// NewMemory creates an empty in-memory vector layer
func NewMemory(name string, geomType geometry.Kind, c crs.CRS, fields feature.Schema) *Memory {
	return &Memory{
		name:     name,
		geomType: geomType,
		crs:      c,
		fields:   fields,
		nextID:   1,
	}
}

func (m *Memory) Name() string                { return m.name }
func (m *Memory) Type() Type                  { return TypeVector }
func (m *Memory) GeometryType() geometry.Kind { return m.geomType }
func (m *Memory) Fields() feature.Schema      { return m.fields }
func (m *Memory) CRS() crs.CRS                { return m.crs }

// AddFeature implements Layer
func (m *Memory) AddFeature(f *feature.Feature) bool {
	if err := checkGeometry(f); err != nil {
		logger.L().Warn("memory layer rejected feature", "layer", m.name, "err", err)
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	f.ID = m.nextID
	m.nextID++
	m.features = append(m.features, f)
	return true
}

// Features implements FeatureSource
func (m *Memory) Features() []*feature.Feature {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*feature.Feature(nil), m.features...)
}

// Raster stands in for a non-vector layer; it never accepts features
type Raster struct {
	name string
	crs  crs.CRS
}

// NewRaster creates a raster placeholder layer
func NewRaster(name string, c crs.CRS) *Raster {
	return &Raster{name: name, crs: c}
}

func (r *Raster) Name() string                       { return r.name }
func (r *Raster) Type() Type                         { return TypeRaster }
func (r *Raster) GeometryType() geometry.Kind        { return geometry.KindUnknown }
func (r *Raster) Fields() feature.Schema             { return nil }
func (r *Raster) CRS() crs.CRS                       { return r.crs }
func (r *Raster) AddFeature(f *feature.Feature) bool { return false }

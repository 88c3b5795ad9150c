package crs

import (
	"fmt"
	"sort"
	"sync"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// Definition describes a registered system
type Definition struct {
	CRS         CRS
	Name        string
	Geographic  bool
	Description string
}

type pairKey struct{ src, dst string }

// Registry holds known systems and the point functions between them
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
	transforms  map[pairKey]func(geometry.Point) geometry.Point
}

// NewRegistry creates a registry preloaded with WGS84 and Web Mercator.
// Systems that are not registered still resolve through the EPSG database.
func NewRegistry() *Registry {
	r := &Registry{
		definitions: make(map[string]Definition),
		transforms:  make(map[pairKey]func(geometry.Point) geometry.Point),
	}
	r.Register(Definition{CRS: WGS84, Name: "WGS 84", Geographic: true, Description: "longitude/latitude in degrees"})
	r.Register(Definition{CRS: WebMercator, Name: "WGS 84 / Pseudo-Mercator", Description: "spherical mercator in metres"})
	return r
}

// Register adds or replaces a definition
func (r *Registry) Register(def Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.CRS.Code] = def
}

// RegisterTransform adds a point function from src to dst
func (r *Registry) RegisterTransform(src, dst CRS, fn func(geometry.Point) geometry.Point) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[pairKey{src.Code, dst.Code}] = fn
}

// Lookup returns the definition for a code
func (r *Registry) Lookup(code string) (Definition, error) {
	c, err := Parse(code)
	if err != nil {
		return Definition{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if def, ok := r.definitions[c.Code]; ok {
		return def, nil
	}
	if _, ok := epsgCode(c); ok {
		return Definition{CRS: c, Name: c.Code}, nil
	}
	return Definition{}, fmt.Errorf("%w: %s", ErrUnknownCRS, c.Code)
}

// Codes returns all registered codes in sorted order
func (r *Registry) Codes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]string, 0, len(r.definitions))
	for code := range r.definitions {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NewTransform returns a transform from src to dst. Equal systems yield
// an identity transform. Registered point functions take precedence over
// the EPSG database.
func (r *Registry) NewTransform(src, dst CRS) (Transform, error) {
	if src.Equal(dst) {
		return funcTransform{src: src, dst: dst}, nil
	}
	r.mu.RLock()
	fn, ok := r.transforms[pairKey{src.Code, dst.Code}]
	r.mu.RUnlock()
	if !ok {
		fn, ok = epsgTransform(src, dst)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s -> %s", ErrUnsupportedTransform, src, dst)
	}
	return funcTransform{src: src, dst: dst, fn: fn}, nil
}

// Package feature defines the attribute schema and feature record that
// layers store.
package feature

import (
	"fmt"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

// FieldType is the value type of an attribute column
type FieldType int

const (
	FieldString FieldType = iota
	FieldInteger
	FieldReal
	FieldBool
)

func (t FieldType) String() string {
	switch t {
	case FieldInteger:
		return "integer"
	case FieldReal:
		return "real"
	case FieldBool:
		return "bool"
	default:
		return "string"
	}
}

// ParseFieldType maps a type name to a FieldType; unknown names map to string
func ParseFieldType(name string) FieldType {
	switch name {
	case "integer", "int", "int4", "int8", "bigint", "smallint":
		return FieldInteger
	case "real", "double precision", "numeric", "float", "float8", "float4":
		return FieldReal
	case "bool", "boolean":
		return FieldBool
	default:
		return FieldString
	}
}

// Field is one attribute column
type Field struct {
	Name string
	Type FieldType
}

// Schema is the ordered set of fields of a layer
type Schema []Field

// Names returns the field names in order
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, f := range s {
		names[i] = f.Name
	}
	return names
}

// Index returns the position of the named field or -1
func (s Schema) Index(name string) int {
	for i, f := range s {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Zero returns the default value for a field type
func (t FieldType) Zero() any {
	switch t {
	case FieldInteger:
		return int64(0)
	case FieldReal:
		return 0.0
	case FieldBool:
		return false
	default:
		return ""
	}
}

// Feature combines a geometry with attribute values
type Feature struct {
	ID         int64
	fields     Schema
	attributes []any
	geometry   geometry.Geometry
}

// New creates an empty feature
func New() *Feature {
	return &Feature{}
}

// SetFields replaces the schema and resets every attribute to nil,
// meaning "use the layer default".
func (f *Feature) SetFields(s Schema) {
	f.fields = append(Schema(nil), s...)
	f.attributes = make([]any, len(s))
}

// Fields returns the feature schema
func (f *Feature) Fields() Schema {
	return f.fields
}

// SetAttribute sets the value of a named field
func (f *Feature) SetAttribute(name string, v any) error {
	i := f.fields.Index(name)
	if i < 0 {
		return fmt.Errorf("feature has no field %q", name)
	}
	f.attributes[i] = v
	return nil
}

// Attribute returns the value of a named field
func (f *Feature) Attribute(name string) (any, bool) {
	i := f.fields.Index(name)
	if i < 0 {
		return nil, false
	}
	return f.attributes[i], true
}

// Attributes returns the values in schema order
func (f *Feature) Attributes() []any {
	return f.attributes
}

// SetGeometry sets the feature geometry
func (f *Feature) SetGeometry(g geometry.Geometry) {
	f.geometry = g
}

// Geometry returns the feature geometry, or nil when unset
func (f *Feature) Geometry() geometry.Geometry {
	return f.geometry
}

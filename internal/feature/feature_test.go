package feature

import (
	"testing"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

func TestSetFieldsResetsAttributes(t *testing.T) {
	f := New()
	f.SetFields(Schema{{Name: "name"}, {Name: "area", Type: FieldReal}})

	if len(f.Attributes()) != 2 {
		t.Fatalf("Attributes failed: expected 2 values, got %d", len(f.Attributes()))
	}
	for i, v := range f.Attributes() {
		if v != nil {
			t.Errorf("Attribute %d should default to nil, got %v", i, v)
		}
	}

	if err := f.SetAttribute("name", "plot 7"); err != nil {
		t.Fatalf("SetAttribute failed: %v", err)
	}
	if v, ok := f.Attribute("name"); !ok || v != "plot 7" {
		t.Errorf("Attribute failed: got %v %v", v, ok)
	}
	if err := f.SetAttribute("missing", 1); err == nil {
		t.Error("SetAttribute should reject unknown fields")
	}
}

func TestSchemaDoesNotAlias(t *testing.T) {
	schema := Schema{{Name: "a"}}
	f := New()
	f.SetFields(schema)
	schema[0].Name = "b"

	if f.Fields()[0].Name != "a" {
		t.Error("SetFields should copy the schema")
	}
}

func TestGeometry(t *testing.T) {
	f := New()
	if f.Geometry() != nil {
		t.Error("New feature should have no geometry")
	}
	poly := geometry.NewPolygon(geometry.NewPoint(0, 0), geometry.NewPoint(1, 0), geometry.NewPoint(1, 1))
	f.SetGeometry(poly)
	if f.Geometry().WKT() != poly.WKT() {
		t.Errorf("Geometry failed: got %s", f.Geometry().WKT())
	}
}

func TestParseFieldType(t *testing.T) {
	tests := map[string]FieldType{
		"integer":          FieldInteger,
		"double precision": FieldReal,
		"boolean":          FieldBool,
		"text":             FieldString,
	}
	for in, want := range tests {
		if got := ParseFieldType(in); got != want {
			t.Errorf("ParseFieldType(%q) failed: expected %v, got %v", in, want, got)
		}
	}
}

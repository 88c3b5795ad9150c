package main

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/philipparndt/rectdraw/internal/config"
	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
	"github.com/philipparndt/rectdraw/pkg/geometry"
)

func TestParseAnchors(t *testing.T) {
	a, b, m, err := parseAnchors([]string{"0", "0", "10", "0", "5", "4"})
	if err != nil {
		t.Fatalf("parseAnchors failed: %v", err)
	}
	if a != geometry.NewPoint(0, 0) || b != geometry.NewPoint(10, 0) || m != geometry.NewPoint(5, 4) {
		t.Errorf("parseAnchors failed: got %v %v %v", a, b, m)
	}

	if _, _, _, err := parseAnchors([]string{"0", "0", "x", "0", "5", "4"}); err == nil {
		t.Error("parseAnchors should reject non-numeric input")
	}
	if _, _, _, err := parseAnchors([]string{"0", "0"}); err == nil {
		t.Error("parseAnchors should reject short input")
	}
}

func TestFormatCorners(t *testing.T) {
	corners, err := geometry.RectangleCorners(geometry.NewPoint(0, 0), geometry.NewPoint(10, 0), geometry.NewPoint(5, 4))
	if err != nil {
		t.Fatalf("RectangleCorners failed: %v", err)
	}

	expected := "P1: 0 0\nP2: 10 0\nP3: 10 4\nP4: 0 4"
	if got := formatCorners(corners, false); got != expected {
		t.Errorf("formatCorners failed: expected %q, got %q", expected, got)
	}

	expected = "POLYGON ((0 0, 10 0, 10 4, 0 4, 0 0))"
	if got := formatCorners(corners, true); got != expected {
		t.Errorf("formatCorners WKT failed: expected %q, got %q", expected, got)
	}
}

func newRunCommand() *cobra.Command {
	runFlags = runOptions{}
	cmd := &cobra.Command{Use: "run"}
	f := cmd.Flags()
	f.StringVar(&runFlags.layer, "layer", "", "")
	f.StringVar(&runFlags.projectCRS, "project-crs", "", "")
	f.StringVar(&runFlags.geoIPDB, "geoip-db", "", "")
	f.StringVar(&runFlags.centerIP, "center-ip", "", "")
	f.StringVar(&runFlags.bandColor, "band-color", "", "")
	f.Float32Var(&runFlags.bandWidth, "band-width", 0, "")
	return cmd
}

func TestApplyRunFlags(t *testing.T) {
	cmd := newRunCommand()
	if err := cmd.ParseFlags([]string{"--layer", "out.geojson", "--band-color", "#00ff00", "--band-width", "2.5"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}

	cfg, err := applyRunFlags(cmd, config.Default())
	if err != nil {
		t.Fatalf("applyRunFlags failed: %v", err)
	}
	if cfg.LayerURL != "out.geojson" {
		t.Errorf("Layer failed: expected out.geojson, got %q", cfg.LayerURL)
	}
	if cfg.BandColor != (color.NRGBA{G: 255, A: 255}) {
		t.Errorf("Band color failed: got %v", cfg.BandColor)
	}
	if cfg.BandWidth != 2.5 {
		t.Errorf("Band width failed: expected 2.5, got %v", cfg.BandWidth)
	}
	if cfg.ProjectCRS != "EPSG:3857" {
		t.Errorf("Project CRS failed: unset flag overrode config, got %q", cfg.ProjectCRS)
	}
}

func TestApplyRunFlagsRejectsWidth(t *testing.T) {
	cmd := newRunCommand()
	if err := cmd.ParseFlags([]string{"--band-width", "0"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if _, err := applyRunFlags(cmd, config.Default()); err == nil {
		t.Error("applyRunFlags should reject a zero band width")
	}
}

func TestPrintLayerInfo(t *testing.T) {
	l := layer.NewMemory("parcels", geometry.KindPolygon, crs.WGS84, layer.DefaultFields)
	var out bytes.Buffer
	printLayerInfo(&out, l)

	for _, want := range []string{
		"Name: parcels",
		"Geometry: Polygon",
		"CRS: EPSG:4326",
		"Accepts rectangles: true",
		"  name (string)",
		"Features: 0",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("printLayerInfo failed: missing %q in\n%s", want, out.String())
		}
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/philipparndt/rectdraw/internal/config"
	"github.com/philipparndt/rectdraw/internal/layer"
	"github.com/philipparndt/rectdraw/pkg/crs"
)

var layerCmd = &cobra.Command{
	Use:   "layer",
	Short: "Inspect layers",
}

var layerInfoCmd = &cobra.Command{
	Use:   "info URL",
	Short: "Show the type, CRS, fields and feature count of a layer",
	Args:  cobra.ExactArgs(1),
	Run:   runLayerInfo,
}

func init() {
	layerCmd.AddCommand(layerInfoCmd)
	rootCmd.AddCommand(layerCmd)
}

func printLayerInfo(w io.Writer, l layer.Layer) {
	fmt.Fprintln(w, "Layer Information")
	fmt.Fprintln(w, "=================")
	fmt.Fprintf(w, "Name: %s\n", l.Name())
	fmt.Fprintf(w, "Type: %s\n", l.Type())
	fmt.Fprintf(w, "Geometry: %s\n", l.GeometryType())
	fmt.Fprintf(w, "CRS: %s\n", l.CRS())
	fmt.Fprintf(w, "Accepts rectangles: %t\n", layer.IsPolygonVector(l))

	fields := l.Fields()
	if len(fields) > 0 {
		fmt.Fprintln(w, "\nFields:")
		for _, f := range fields {
			fmt.Fprintf(w, "  %s (%s)\n", f.Name, f.Type)
		}
	}
	if src, ok := l.(layer.FeatureSource); ok {
		fmt.Fprintf(w, "\nFeatures: %d\n", len(src.Features()))
	}
}

func runLayerInfo(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg.LayerURL = args[0]
	rawURL, err := cfg.ResolveLayerURL()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	projectCRS, err := crs.Parse(cfg.ProjectCRS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if strings.HasSuffix(rawURL, ".geojson") || strings.HasSuffix(rawURL, ".json") {
		if _, err := os.Stat(rawURL); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	l, err := layer.Open(ctx, rawURL, layer.Options{CRS: projectCRS, RedisAddr: cfg.RedisAddr})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening layer: %v\n", err)
		os.Exit(1)
	}
	if c, ok := l.(layer.Closer); ok {
		defer c.Close()
	}

	printLayerInfo(os.Stdout, l)
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/philipparndt/rectdraw/internal/app"
	"github.com/philipparndt/rectdraw/internal/config"
)

type runOptions struct {
	layer      string
	projectCRS string
	geoIPDB    string
	centerIP   string
	bandColor  string
	bandWidth  float32
}

var runFlags runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Open the map window with the rectangle tool",
	Long: `Open the map window. The layer URL may be a .geojson path,
memory:<name>, postgis:<table> (using PG_* settings), postgres://... or
redis://host/db?key=<key>.`,
	Args: cobra.NoArgs,
	Run:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.layer, "layer", "", "target layer URL (default from RECTDRAW_LAYER or memory:rectangles)")
	f.StringVar(&runFlags.projectCRS, "project-crs", "", "project CRS, e.g. EPSG:3857")
	f.StringVar(&runFlags.geoIPDB, "geoip-db", "", "GeoIP2 City database used to center the map")
	f.StringVar(&runFlags.centerIP, "center-ip", "", "IP address to center the map on")
	f.StringVar(&runFlags.bandColor, "band-color", "", "rubber band color (#rrggbb or a name)")
	f.Float32Var(&runFlags.bandWidth, "band-width", 0, "rubber band width in pixels")
	rootCmd.AddCommand(runCmd)
}

// applyRunFlags overlays the flags the user set on cfg
func applyRunFlags(cmd *cobra.Command, cfg config.Config) (config.Config, error) {
	f := cmd.Flags()
	if f.Changed("layer") {
		cfg.LayerURL = runFlags.layer
	}
	if f.Changed("project-crs") {
		cfg.ProjectCRS = runFlags.projectCRS
	}
	if f.Changed("geoip-db") {
		cfg.GeoIPDB = runFlags.geoIPDB
	}
	if f.Changed("center-ip") {
		cfg.CenterIP = runFlags.centerIP
	}
	if f.Changed("band-color") {
		c, err := config.ParseColor(runFlags.bandColor)
		if err != nil {
			return cfg, err
		}
		cfg.BandColor = c
	}
	if f.Changed("band-width") {
		if runFlags.bandWidth <= 0 {
			return cfg, fmt.Errorf("band width must be positive, got %v", runFlags.bandWidth)
		}
		cfg.BandWidth = runFlags.bandWidth
	}

	layerURL, err := cfg.ResolveLayerURL()
	if err != nil {
		return cfg, err
	}
	cfg.LayerURL = layerURL
	return cfg, nil
}

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	cfg, err = applyRunFlags(cmd, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.Run(ctx, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

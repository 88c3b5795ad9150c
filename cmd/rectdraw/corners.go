package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/philipparndt/rectdraw/pkg/geometry"
)

var cornersWKT bool

var cornersCmd = &cobra.Command{
	Use:   "corners AX AY BX BY MX MY",
	Short: "Print the rectangle spanned by two anchors and a width sample",
	Long: `Compute the four corners of the rectangle whose first side runs from
anchor A to anchor B and whose opposite side passes through the
projection of M onto the perpendicular of AB.`,
	Args: cobra.ExactArgs(6),
	Run:  runCorners,
}

func init() {
	cornersCmd.Flags().BoolVar(&cornersWKT, "wkt", false, "print the polygon as WKT")
	rootCmd.AddCommand(cornersCmd)
}

func parseAnchors(args []string) (a, b, m geometry.Point, err error) {
	if len(args) != 6 {
		return a, b, m, fmt.Errorf("expected 6 coordinates, got %d", len(args))
	}
	var v [6]float64
	for i, s := range args {
		v[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			return a, b, m, fmt.Errorf("invalid coordinate %q", s)
		}
	}
	return geometry.NewPoint(v[0], v[1]), geometry.NewPoint(v[2], v[3]), geometry.NewPoint(v[4], v[5]), nil
}

func formatCorners(corners [4]geometry.Point, wkt bool) string {
	if wkt {
		return geometry.NewPolygon(corners[:]...).WKT()
	}
	var b strings.Builder
	for i, c := range corners {
		fmt.Fprintf(&b, "P%d: %s %s\n", i+1,
			strconv.FormatFloat(c.X, 'f', -1, 64),
			strconv.FormatFloat(c.Y, 'f', -1, 64))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func runCorners(cmd *cobra.Command, args []string) {
	a, b, m, err := parseAnchors(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	corners, err := geometry.RectangleCorners(a, b, m)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing rectangle: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(formatCorners(corners, cornersWKT))
	if !cornersWKT {
		w, _ := geometry.SignedWidth(a, b, m)
		fmt.Printf("Width: %s\n", strconv.FormatFloat(w, 'f', -1, 64))
	}
}

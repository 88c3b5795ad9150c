package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/philipparndt/rectdraw/internal/config"
	"github.com/philipparndt/rectdraw/internal/logger"
	"github.com/philipparndt/rectdraw/version"
)

var rootCmd = &cobra.Command{
	Use:   "rectdraw",
	Short: "Draw rotated rectangles onto polygon map layers",
	Long: `rectdraw is a small map editor with a rectangle drawing tool.
Click two anchors to set one side, move the pointer to choose the width
and click again to store the rectangle in the current polygon layer.`,
	Version: version.GetFullVersion(),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.LoadDotEnv()
		logger.Setup()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/campus-floormap/backend/internal/config"
	"github.com/campus-floormap/backend/internal/models"
	"github.com/campus-floormap/backend/internal/svg"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render the floor map SVGs and exit",
	Long: "Render one interactive SVG per floor from the room definition\n" +
		"JSON files. The serve command only reads the generated files, so\n" +
		"run generate before the first serve and after editing a floor.",
	RunE: runGenerate,
}

var (
	generateFloorsDir string
	generateOutDir    string
)

func init() {
	generateCmd.Flags().StringVar(&generateFloorsDir, "floors", "", "Directory with floor definition JSON files (default from config)")
	generateCmd.Flags().StringVar(&generateOutDir, "out", "", "Output directory for SVG files (default from config)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	floorsDir := cfg.Storage.FloorsDirectory
	if generateFloorsDir != "" {
		floorsDir = generateFloorsDir
	}
	outDir := cfg.Storage.ProcessedDirectory
	if generateOutDir != "" {
		outDir = generateOutDir
	}

	opts := svg.DefaultOptions()
	if cfg.SVG.ViewBoxWidth > 0 {
		opts.ViewBoxWidth = float64(cfg.SVG.ViewBoxWidth)
	}
	if cfg.SVG.ViewBoxHeight > 0 {
		opts.ViewBoxHeight = float64(cfg.SVG.ViewBoxHeight)
	}
	if cfg.SVG.IconScale > 0 {
		opts.IconScale = cfg.SVG.IconScale
	}
	if cfg.SVG.TitleFontSize > 0 {
		opts.TitleFontSize = cfg.SVG.TitleFontSize
	}
	if cfg.SVG.DescFontSize > 0 {
		opts.DescFontSize = cfg.SVG.DescFontSize
	}
	if cfg.SVG.DefaultHoverColor != "" {
		opts.DefaultHoverColor = cfg.SVG.DefaultHoverColor
	}

	logger.Info("rendering floor maps",
		zap.String("floors", floorsDir),
		zap.String("out", outDir))

	generator := svg.NewGenerator(floorsDir, outDir, opts, logger)
	if err := generator.GenerateAll(context.Background(), models.DefaultFloors()); err != nil {
		return fmt.Errorf("rendering failed: %w", err)
	}

	logger.Info("all floors rendered")
	return nil
}

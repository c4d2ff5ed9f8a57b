// artifactview reconstructs and displays scanned artifacts.
package main

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/openrelic/artifactview/internal/artifact"
	"github.com/openrelic/artifactview/internal/atlas"
	"github.com/openrelic/artifactview/internal/config"
	"github.com/openrelic/artifactview/internal/geometry"
	"github.com/openrelic/artifactview/internal/logger"
	"github.com/openrelic/artifactview/internal/server"
	"github.com/openrelic/artifactview/internal/viewer"
	"github.com/openrelic/artifactview/pkg/formats"
)

var (
	configPath string
	logLevel   string

	// view overrides
	width      int
	height     int
	fullscreen bool
	segments   int

	// export options
	outPath   string
	objExport bool
	atlasPNG  bool

	// serve options
	addr string
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "artifactview",
		Short:        "3D reconstruction viewer for scanned artifacts",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	viewCmd := &cobra.Command{
		Use:   "view <artifact.yaml>",
		Short: "open the interactive reconstruction window",
		Args:  cobra.ExactArgs(1),
		RunE:  runView,
	}
	viewCmd.Flags().IntVar(&width, "width", 0, "window width")
	viewCmd.Flags().IntVar(&height, "height", 0, "window height")
	viewCmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "run fullscreen")
	viewCmd.Flags().IntVar(&segments, "segments", 0, "lathe segment count override")

	exportCmd := &cobra.Command{
		Use:   "export <artifact.yaml>",
		Short: "write the reconstruction as a glTF binary",
		Args:  cobra.ExactArgs(1),
		RunE:  runExport,
	}
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "artifact.glb", "output file")
	exportCmd.Flags().BoolVar(&objExport, "obj", false, "also write OBJ/MTL next to the output")
	exportCmd.Flags().BoolVar(&atlasPNG, "atlas", false, "also write the atlas as PNG")
	exportCmd.Flags().IntVar(&segments, "segments", 0, "lathe segment count override")

	serveCmd := &cobra.Command{
		Use:   "serve <artifact.yaml>",
		Short: "serve the static viewer page with live reload",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address")

	profileCmd := &cobra.Command{
		Use:   "profile <artifact.yaml>",
		Short: "print the resolved cross-section profile",
		Args:  cobra.ExactArgs(1),
		RunE:  runProfile,
	}

	rootCmd.AddCommand(viewCmd, exportCmd, serveCmd, profileCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads config, applies overrides and initializes logging.
func setup() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if width > 0 {
		cfg.Graphics.Width = width
	}
	if height > 0 {
		cfg.Graphics.Height = height
	}
	if fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if segments > 0 {
		cfg.Viewer.LatheSegments = segments
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	return cfg, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runView(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	art, err := artifact.Load(args[0])
	if err != nil {
		return err
	}

	v, err := viewer.New(cfg, art)
	if err != nil {
		return err
	}
	defer v.Close()

	ctx, cancel := signalContext()
	defer cancel()

	if err := v.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	art, err := artifact.Load(args[0])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	sheet := atlas.New().BuildSync(ctx, art.Images)
	if len(art.Images) > 0 && sheet == nil {
		return fmt.Errorf("atlas build interrupted")
	}

	mesh := geometry.Lathe(art.Profile().LathePoints(), cfg.Viewer.LatheSegments)

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	var sheetImg image.Image
	if sheet != nil {
		sheetImg = sheet
	}
	if err := formats.WriteGLB(out, mesh, sheetImg, art.Name); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d vertices, %d triangles)\n", outPath, len(mesh.Vertices), len(mesh.Indices)/3)

	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))

	if atlasPNG && sheet != nil {
		if err := writePNG(base+"_atlas.png", sheet); err != nil {
			return err
		}
		fmt.Printf("wrote %s_atlas.png\n", base)
	}

	if objExport {
		mtlName := ""
		if atlasPNG && sheet != nil {
			mtlName = filepath.Base(base) + ".mtl"
		}
		if err := writeOBJ(base, mesh, mtlName); err != nil {
			return err
		}
		fmt.Printf("wrote %s.obj\n", base)
	}

	return nil
}

func writePNG(path string, sheet *image.RGBA) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, sheet)
}

func writeOBJ(base string, mesh *geometry.Mesh, mtlName string) error {
	f, err := os.Create(base + ".obj")
	if err != nil {
		return err
	}
	defer f.Close()

	if err := formats.WriteOBJ(f, mesh, mtlName); err != nil {
		return err
	}

	if mtlName != "" {
		mf, err := os.Create(base + ".mtl")
		if err != nil {
			return err
		}
		defer mf.Close()
		return formats.WriteMTL(mf, filepath.Base(base)+"_atlas.png")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := signalContext()
	defer cancel()

	s := server.New(cfg.Server.Addr, args[0], cfg.Viewer.LatheSegments)
	fmt.Printf("serving viewer page on %s\n", cfg.Server.Addr)
	return s.Run(ctx)
}

func runProfile(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}
	defer logger.Sync()

	art, err := artifact.Load(args[0])
	if err != nil {
		return err
	}

	prof := art.Profile()
	if art.Name != "" {
		fmt.Printf("artifact: %s\n", art.Name)
	}
	if art.Label != "" {
		fmt.Printf("label:    %s\n", art.Label)
	}
	fmt.Printf("points:   %d\n\n", len(prof))

	for i, p := range prof {
		fmt.Printf("  %2d  r=%.3f h=%.3f\n", i, p.Radius, p.Height)
	}

	// Cross-section silhouette: radius over height.
	radii := make([]float64, len(prof))
	for i, p := range prof {
		radii[i] = float64(p.Radius)
	}
	fmt.Println()
	fmt.Println(asciigraph.Plot(radii,
		asciigraph.Height(10),
		asciigraph.Width(48),
		asciigraph.Caption("radius along the profile"),
	))
	return nil
}

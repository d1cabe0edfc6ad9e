package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/report"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/texture"
	"github.com/litescript/ls-orrery/internal/version"
)

// Headless commands never show textures; keep them tiny.
const headlessTextureSize = 8

func newSnapshotCmd(f *flags) *cobra.Command {
	var (
		at      string
		asJSON  bool
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print body positions and the asteroid–Earth distance",
		Long: `Compute every body's position at one instant and print a summary
table, or JSON with --json. --at takes RFC 3339 or YYYY-MM-DD and
defaults to now.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := parseTime(at)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg, true)
			if err != nil {
				return err
			}
			defer closeLog()

			s, err := buildScene(cmd.Context(), cfg, sceneParams{textureSize: headlessTextureSize})
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}
			snap := report.Build(s, t)
			log.Debug("snapshot at JD %.5f: %d bodies", snap.JD, len(snap.Bodies))

			w := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				file, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create snapshot file: %w", err)
				}
				defer file.Close()
				w = file
			}
			if asJSON {
				if err := snap.WriteJSON(w); err != nil {
					return fmt.Errorf("write JSON: %w", err)
				}
				return nil
			}
			snap.WriteSummaryTable(w)
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "Instant to compute (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Write JSON instead of a table")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Write to this file instead of stdout")
	return cmd
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid --at %q: want RFC 3339 or YYYY-MM-DD", s)
}

func newTexturesCmd(f *flags) *cobra.Command {
	var (
		outDir string
		size   int
	)
	cmd := &cobra.Command{
		Use:   "textures",
		Short: "Write the procedural body textures as PNG files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if size <= 0 {
				size = cfg.TextureSize
			}

			factory := texture.NewFactory(nil)
			if cfg.Seed != 0 {
				factory = texture.NewSeededFactory(cfg.Seed)
			}

			var reqs []texture.Request
			for _, b := range scene.DefaultRoster(cfg.Asteroid, size) {
				reqs = append(reqs, texture.Request{Recipe: b.Texture.Recipe, Width: b.Texture.Width, Height: b.Texture.Height})
			}
			images, err := factory.GenerateAll(cmd.Context(), reqs)
			if err != nil {
				return fmt.Errorf("generate textures: %w", err)
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", outDir, err)
			}
			for i, req := range reqs {
				img := images[i]
				path := filepath.Join(outDir, string(req.Recipe)+".png")
				if err := writePNG(path, img); err != nil {
					return err
				}
				b := img.Bounds()
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%dx%d)\n", path, b.Dx(), b.Dy())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "textures", "Output directory")
	cmd.Flags().IntVar(&size, "size", 0, "Texture edge in pixels (default from config)")
	return cmd
}

func writePNG(path string, img *image.RGBA) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := texture.WritePNG(file, img); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}

func newOrbitCmd(f *flags) *cobra.Command {
	var (
		body     string
		segments int
	)
	cmd := &cobra.Command{
		Use:   "orbit",
		Short: "Print a body's orbit polyline as x y z rows (AU, scene frame)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			if segments <= 0 {
				segments = cfg.OrbitSegments
			}

			var ids []string
			for _, b := range scene.DefaultRoster(cfg.Asteroid, 1) {
				ids = append(ids, string(b.ID))
				if string(b.ID) != body {
					continue
				}
				if !b.Orbits() {
					return fmt.Errorf("%s has no orbit", body)
				}
				w := cmd.OutOrStdout()
				for p := range b.Path(segments) {
					fmt.Fprintf(w, "%.6f %.6f %.6f\n", p.X, p.Y, p.Z)
				}
				return nil
			}
			return fmt.Errorf("unknown body %q (want one of %s)", body, strings.Join(ids, ", "))
		},
	}
	cmd.Flags().StringVar(&body, "body", string(scene.Asteroid), "Body whose orbit to print")
	cmd.Flags().IntVar(&segments, "segments", 0, "Polyline segments (default from config)")
	return cmd
}

func newHeadlessCmd(f *flags) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "headless",
		Short: "Run the animation loop without a terminal",
		Long: `Drive the animation loop with a discarding renderer, for soak runs
and metrics scraping. Stops after --duration (0 runs until interrupted)
and prints the final readout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log, closeLog, err := newLogger(cfg, true)
			if err != nil {
				return err
			}
			defer closeLog()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			s, err := buildScene(ctx, cfg, sceneParams{textureSize: headlessTextureSize})
			if err != nil {
				return fmt.Errorf("build scene: %w", err)
			}
			collector := metrics.NewCollector()
			renderer := &scene.Discard{}
			loop, err := anim.New(s, renderer,
				anim.WithLogger(log.Named("anim")),
				anim.WithObserver(collector),
			)
			if err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			if cfg.MetricsAddr != "" {
				log.Info("serving metrics on %s", cfg.MetricsAddr)
				g.Go(func() error { return collector.Serve(gctx, cfg.MetricsAddr) })
			}
			g.Go(func() error {
				return anim.Run(gctx, loop, cfg.Interval())
			})
			if err := g.Wait(); err != nil {
				return err
			}

			r := loop.Readout()
			fmt.Fprintf(cmd.OutOrStdout(), "%d frames\n%s\n%s\n", loop.Frames(), r.DateLine(), r.DistanceLine())
			return nil
		},
	}
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	cmd.Flags().IntVar(&f.fps, "fps", 0, "Frames per second")
	cmd.Flags().DurationVar(&duration, "duration", 0, "Stop after this long (0 runs until interrupted)")
	return cmd
}

func newConfigCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return cfg.WriteYAML(cmd.OutOrStdout())
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ls-orrery v%s\n", version.Version)
		},
	}
}

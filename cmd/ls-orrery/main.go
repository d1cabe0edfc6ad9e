// Command ls-orrery is a terminal orrery following asteroid 333005 Haberle
// among the inner planets and Jupiter.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/litescript/ls-orrery/internal/anim"
	"github.com/litescript/ls-orrery/internal/config"
	"github.com/litescript/ls-orrery/internal/logging"
	"github.com/litescript/ls-orrery/internal/metrics"
	"github.com/litescript/ls-orrery/internal/scene"
	"github.com/litescript/ls-orrery/internal/texture"
	"github.com/litescript/ls-orrery/internal/ui"
	"github.com/litescript/ls-orrery/internal/version"
)

// flags holds values bound to command-line flags. Flags that were set
// override the config file and environment.
type flags struct {
	configPath  string
	logLevel    string
	logFile     string
	fps         int
	metricsAddr string
	watch       bool
	seed        uint64
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "ls-orrery",
		Short: "Terminal orrery for asteroid 333005 Haberle",
		Long: `ls-orrery animates the Sun, Earth, Mars, Jupiter and asteroid
333005 Haberle in the terminal, with the asteroid on a Kepler orbit.

Controls:
  arrows   rotate the camera
  w/a/s/d  pan
  +/-      zoom
  r        reset the camera
  l        toggle labels
  t        toggle the starfield
  q        quit`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, f)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.Uint64Var(&f.seed, "seed", 0, "Seed for textures and stars (0 picks one at random)")

	rf := root.Flags()
	rf.StringVar(&f.logFile, "log-file", "", "Write logs to this file (the TUI drops them otherwise)")
	rf.IntVar(&f.fps, "fps", 0, "Frames per second")
	rf.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	rf.BoolVar(&f.watch, "watch-config", false, "Reload asteroid elements when the config file changes")

	root.AddCommand(
		newSnapshotCmd(f),
		newTexturesCmd(f),
		newOrbitCmd(f),
		newHeadlessCmd(f),
		newConfigCmd(f),
		newVersionCmd(),
	)
	return root
}

// loadConfig resolves defaults, file, environment, then set flags.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	set := func(name string) bool {
		fl := cmd.Flags().Lookup(name)
		return fl != nil && fl.Changed
	}
	if set("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if set("log-file") {
		cfg.LogFile = f.logFile
	}
	if set("fps") {
		cfg.FPS = f.fps
	}
	if set("metrics-addr") {
		cfg.MetricsAddr = f.metricsAddr
	}
	if set("seed") {
		cfg.Seed = f.seed
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// newLogger builds the logger for cfg. The returned close func releases
// the log file, if one was opened.
func newLogger(cfg config.Config, fallback bool) (*logging.Logger, func(), error) {
	if cfg.LogFile == "" {
		if fallback {
			return logging.New(cfg.Level()), func() {}, nil
		}
		return logging.Discard(), func() {}, nil
	}
	file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log := logging.New(cfg.Level())
	log.SetOutput(file)
	return log, func() {
		_ = log.Sync()
		file.Close()
	}, nil
}

type sceneParams struct {
	textureSize int
	starCount   int
}

// buildScene assembles the scene for cfg. Seed 0 gives fresh randomness.
func buildScene(ctx context.Context, cfg config.Config, p sceneParams) (*scene.Scene, error) {
	factory := texture.NewFactory(nil)
	var stars texture.Source
	if cfg.Seed != 0 {
		factory = texture.NewSeededFactory(cfg.Seed)
		stars = rand.New(rand.NewPCG(cfg.Seed, ^cfg.Seed))
	}

	starCount := p.starCount
	if starCount == 0 {
		starCount = -1
	}
	opts := scene.Options{
		StarCount:     starCount,
		OrbitSegments: cfg.OrbitSegments,
		Rand:          stars,
	}
	return scene.Build(ctx, opts, scene.DefaultRoster(cfg.Asteroid, p.textureSize), factory)
}

func runTUI(cmd *cobra.Command, f *flags) error {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return fmt.Errorf("stdout is not a terminal (try the snapshot command): %w", scene.ErrEnvironmentUnsupported)
	}

	cfg, err := loadConfig(cmd, f)
	if err != nil {
		return err
	}
	if f.watch && f.configPath == "" {
		return errors.New("--watch-config needs --config")
	}

	// The TUI owns the terminal; logs only go to a file.
	log, closeLog, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s, err := buildScene(ctx, cfg, sceneParams{textureSize: cfg.TextureSize, starCount: cfg.StarCount})
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	width, height, err := term.GetSize(fd)
	if err != nil {
		return fmt.Errorf("terminal size: %w", scene.ErrEnvironmentUnsupported)
	}
	renderer := ui.NewTermRenderer(width, 2*max(height-4, 1))

	collector := metrics.NewCollector()
	loop, err := anim.New(s, renderer,
		anim.WithLogger(log.Named("anim")),
		anim.WithObserver(collector),
	)
	if err != nil {
		return err
	}

	var watcher *config.Watcher
	if f.watch {
		if watcher, err = config.NewWatcher(f.configPath, config.DefaultDebounce); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(ui.New(loop, renderer, cfg.Interval()), tea.WithAltScreen(), tea.WithContext(ctx))
	g, gctx := errgroup.WithContext(ctx)

	if cfg.MetricsAddr != "" {
		log.Info("serving metrics on %s", cfg.MetricsAddr)
		g.Go(func() error { return collector.Serve(gctx, cfg.MetricsAddr) })
	}

	if watcher != nil {
		g.Go(func() error {
			return watcher.Run(gctx, func(c config.Config, err error) {
				collector.ConfigReloaded(err)
				if err != nil {
					log.Warn("config reload: %v", err)
				} else {
					log.SetLevel(c.Level())
					log.Info("config reloaded from %s", f.configPath)
				}
				p.Send(ui.ElementsMsg{Elements: c.Asteroid, Err: err})
			})
		})
	}

	log.Info("starting at %d fps, %dx%d", cfg.FPS, width, height)
	_, runErr := p.Run()
	cancel()
	if err := g.Wait(); err != nil {
		log.Error("background task: %v", err)
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run TUI: %w", runErr)
	}
	if loop.State() == anim.Halted {
		fmt.Fprintf(cmd.ErrOrStderr(), "animation halted: %v\n", loop.Err())
	}
	return nil
}

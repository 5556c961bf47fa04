// globeview - interactive globe viewer
// Shows a set of labelled icons distributed over a rotating sphere in a window.
//
// Controls:
//
//	Left drag  - Rotate the globe, release to fling
//	Scroll     - Zoom in/out
//	+/-        - Zoom in/out
//	Space      - Toggle idle rotation
//	R          - Reset rotation and zoom
//	Esc        - Quit
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/Carmen-Shannon/oxy-globe/config"
	"github.com/Carmen-Shannon/oxy-globe/engine"
	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/profiler"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/window"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	watch    bool
	fpsLimit float64
)

func main() {
	cmd := &cobra.Command{
		Use:   "globeview",
		Short: "Interactive 3D globe of labelled icons",
		Long: `globeview - interactive globe viewer

Shows a set of labelled icons distributed over a rotating sphere, joined by a
wireframe. Items come from --settings or repeated --item flags.

Controls:
  Left drag   - Rotate the globe, release to fling
  Scroll, +/- - Zoom in/out
  Space       - Toggle idle rotation
  R           - Reset rotation and zoom
  Esc         - Quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	flags := config.BindFlags(cmd)
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the settings file when it changes")
	cmd.Flags().Float64Var(&fpsLimit, "fps", 0, "Render frame cap, 0 for uncapped")
	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		return run(cmd, flags)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, flags *config.Flags) error {
	settings, err := flags.Resolve(cmd)
	if err != nil {
		return err
	}
	if settings.BackendType() != renderer.BackendTypeWGPU {
		return errors.New("globeview presents through wgpu; use globesnap for the software backend")
	}

	logger, err := flags.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	win := window.NewWindow(
		window.WithTitle(settings.Host.Title),
		window.WithSize(settings.Host.Width, settings.Host.Height),
	)

	r, err := renderer.NewRenderer(settings.BackendType(), win, settings.RendererOptions(logger)...)
	if err != nil {
		return err
	}
	defer r.Release()

	icons := settings.NewLoader(logger)
	sc, err := settings.NewScene(win, icons, logger)
	if err != nil {
		return err
	}

	eng := engine.NewEngine(
		engine.WithWindow(win),
		engine.WithBackend(r),
		engine.WithScene(0, sc),
		engine.WithTitle(settings.Host.Title),
		engine.WithProfiling(settings.Host.Profile),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithLogger(logger))),
		engine.WithRenderFrameLimit(fpsLimit),
		engine.WithLogger(logger),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		<-ctx.Done()
		eng.Quit()
	}()
	if watch && flags.Settings != "" {
		go watchSettings(ctx, cmd, flags, eng, icons, logger)
	}

	logger.Info("globe ready",
		zap.String("component", "globeview"),
		zap.Int("items", len(settings.Items)),
		zap.Float64("radius", settings.Scene.Radius),
	)
	eng.Run()
	return nil
}

// watchSettings reloads the scene whenever the settings file changes. Flags given on
// the command line keep overriding the file.
func watchSettings(ctx context.Context, cmd *cobra.Command, flags *config.Flags, eng engine.Engine, icons loader.Loader, logger *zap.Logger) {
	err := config.Watch(ctx, flags.Settings, func(next config.Settings, err error) {
		if err != nil {
			return
		}
		next, err = flags.Overlay(cmd, next)
		if err != nil {
			logger.Warn("settings rejected", zap.String("component", "globeview"), zap.Error(err))
			return
		}
		icons.Clear()
		icons.Prefetch(next.IconRefs()...)
		if err := eng.Reload(next.Scene, next.Items); err != nil {
			logger.Warn("reload rejected", zap.String("component", "globeview"), zap.Error(err))
		}
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("settings watch stopped", zap.String("component", "globeview"), zap.Error(err))
	}
}

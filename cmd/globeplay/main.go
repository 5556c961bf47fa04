// globeplay - globe viewer for desktop, mobile and browser
// Runs the globe on ebiten with mouse and touch input.
//
// Controls:
//
//	Drag (mouse or first finger) - Rotate the globe, release to fling
//	Scroll, +/-                  - Zoom in/out
//	Space                        - Toggle idle rotation
//	R                            - Reset rotation and zoom
//	Esc                          - Quit
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/config"
	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/profiler"
	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
	"github.com/Carmen-Shannon/oxy-globe/engine/zoom"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/spf13/cobra"
	trylock "github.com/subchen/go-trylock/v2"
	"go.uber.org/zap"
)

// mousePointer is the pointer id of the mouse; touches use their touch id plus one.
const mousePointer = 0

var (
	watch bool
	hud   bool
)

// surface is the ebiten layout size the scene frames for.
type surface struct {
	w, h int
}

func (s *surface) Width() int  { return s.w }
func (s *surface) Height() int { return s.h }

type game struct {
	// ctx ends the game when cancelled, e.g. by SIGINT.
	ctx     context.Context
	scene   scene.Scene
	backend *ebitenBackend
	zoom    zoom.Zoom
	surface *surface
	prof    *profiler.Profiler
	profile bool

	// reloadLock is held while a settings reload swaps the scene's state.
	reloadLock trylock.TryLocker
	touches    []ebiten.TouchID
}

func main() {
	cmd := &cobra.Command{
		Use:   "globeplay",
		Short: "Globe viewer with mouse and touch input",
		Long: `globeplay - globe viewer for desktop, mobile and browser

Controls:
  Drag        - Rotate the globe, release to fling
  Scroll, +/- - Zoom in/out
  Space       - Toggle idle rotation
  R           - Reset rotation and zoom
  Esc         - Quit`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	flags := config.BindFlags(cmd)
	cmd.Flags().BoolVar(&watch, "watch", true, "Reload the settings file when it changes")
	cmd.Flags().BoolVar(&hud, "hud", false, "Show frame rate and rotation state")
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
	logger, err := flags.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	surf := &surface{w: settings.Host.Width, h: settings.Host.Height}
	icons := settings.NewLoader(logger)
	sc, err := settings.NewScene(surf, icons, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g := &game{
		ctx:        ctx,
		scene:      sc,
		backend:    newEbitenBackend(settings.Host.IconPixels, settings.Host.ClearColor()),
		zoom:       zoom.NewZoom(zoom.WithInitial(settings.Scene.Padding)),
		surface:    surf,
		prof:       profiler.NewProfiler(profiler.WithLogger(logger)),
		profile:    settings.Host.Profile,
		reloadLock: trylock.New(),
	}

	if watch && flags.Settings != "" {
		go func() {
			err := config.Watch(ctx, flags.Settings, func(next config.Settings, err error) {
				if err != nil {
					return
				}
				if next, err = flags.Overlay(cmd, next); err != nil {
					logger.Warn("settings rejected", zap.String("component", "globeplay"), zap.Error(err))
					return
				}
				g.reload(next, icons, logger)
			}, config.WithLogger(logger))
			if err != nil {
				logger.Warn("settings watch stopped", zap.String("component", "globeplay"), zap.Error(err))
			}
		}()
	}

	ebiten.SetWindowTitle(settings.Host.Title)
	ebiten.SetWindowSize(settings.Host.Width, settings.Host.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetVsyncEnabled(settings.Host.VSync)

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (g *game) reload(next config.Settings, icons loader.Loader, logger *zap.Logger) {
	g.reloadLock.Lock()
	defer g.reloadLock.Unlock()

	icons.Clear()
	icons.Prefetch(next.IconRefs()...)
	g.backend.forget()

	target := next.Scene.Padding
	next.Scene.Padding = g.zoom.Value()
	if err := g.scene.Configure(next.Scene); err != nil {
		logger.Warn("reload rejected", zap.String("component", "globeplay"), zap.Error(err))
		return
	}
	g.zoom.SetTarget(target)
	g.scene.SetItems(next.Items)
	logger.Info("scene reloaded", zap.String("component", "globeplay"), zap.Int("items", len(next.Items)))
}

func (g *game) Update() error {
	if g.ctx.Err() != nil || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if !g.reloadLock.RTryLock(ctx) {
		return nil
	}
	defer g.reloadLock.RUnlock()

	g.handleKeys()
	g.handleMouse()
	g.handleTouches()

	dt := 1 / float64(ebiten.TPS())
	if _, wheel := ebiten.Wheel(); wheel != 0 {
		g.zoom.Scroll(wheel)
	}
	if p := g.zoom.Advance(dt); p != g.scene.Config().Padding {
		_ = g.scene.SetPadding(p)
	}
	if err := g.scene.Render(dt, g.backend); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if g.profile {
		g.prof.Tick()
	}
	return nil
}

func (g *game) handleKeys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.scene.SetAutoRotate(!g.scene.AutoRotate())
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.scene.ResetRotation()
		g.zoom.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyEqual):
		g.zoom.Scroll(1)
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus):
		g.zoom.Scroll(-1)
	}
}

func (g *game) handleMouse() {
	mx, my := ebiten.CursorPosition()
	x, y := float64(mx), float64(my)
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.scene.PointerDown(mousePointer, x, y)
	}
	if ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		g.scene.PointerMove(mousePointer, x, y)
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.scene.PointerMove(mousePointer, x, y)
		g.scene.PointerUp(mousePointer)
	}
}

// handleTouches reports every finger under its own pointer id. The scene follows the
// first one down and ignores the rest.
func (g *game) handleTouches() {
	for _, id := range inpututil.AppendJustPressedTouchIDs(g.touches[:0]) {
		tx, ty := ebiten.TouchPosition(id)
		g.scene.PointerDown(int(id)+1, float64(tx), float64(ty))
	}
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])
	for _, id := range g.touches {
		tx, ty := ebiten.TouchPosition(id)
		g.scene.PointerMove(int(id)+1, float64(tx), float64(ty))
	}
	for _, id := range inpututil.AppendJustReleasedTouchIDs(g.touches[:0]) {
		g.scene.PointerUp(int(id) + 1)
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	g.backend.Draw(screen)

	// Notify when reloading
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	if !g.reloadLock.RTryLock(ctx) {
		ebitenutil.DebugPrintAt(screen, "Reloading...", 5, 5)
		return
	}
	defer g.reloadLock.RUnlock()

	if hud {
		msg := fmt.Sprintf("TPS: %0.2f\nFPS: %0.2f\nPhase: %s\nAuto-rotate: %t [Space]\nZoom: %.2f [+/-]",
			ebiten.ActualTPS(), ebiten.ActualFPS(), g.scene.Phase(), g.scene.AutoRotate(), g.zoom.Value())
		ebitenutil.DebugPrintAt(screen, msg, 5, 20)
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.surface.w || outsideHeight != g.surface.h {
		g.surface.w, g.surface.h = outsideWidth, outsideHeight
		g.scene.Resize()
	}
	return outsideWidth, outsideHeight
}

var _ ebiten.Game = &game{}

// globesnap - headless globe renderer
// Renders the globe with the software backend and writes numbered PNG or WebP frames,
// optionally scripting a drag so the fling and its decay are captured.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-globe/config"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
	"github.com/HugoSmits86/nativewebp"
	"github.com/fogleman/fauxgl"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

var (
	outDir  string
	frames  int
	fps     float64
	format  string
	dragX   float64
	dragY   float64
	workers int
)

func main() {
	cmd := &cobra.Command{
		Use:   "globesnap",
		Short: "Render globe frames to image files",
		Long: `globesnap - headless globe renderer

Renders the globe with the software rasterizer and writes numbered frames.
--drag-x/--drag-y script a primary-pointer drag over the first quarter of the
frames, released at full speed so the fling decays in the remaining frames.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
	}
	flags := config.BindFlags(cmd)
	cmd.Flags().StringVarP(&outDir, "out", "o", "frames", "Output directory")
	cmd.Flags().IntVarP(&frames, "frames", "n", 1, "Number of frames to render")
	cmd.Flags().Float64Var(&fps, "fps", 30, "Frames per simulated second")
	cmd.Flags().StringVar(&format, "format", "png", "Frame format (png or webp)")
	cmd.Flags().Float64Var(&dragX, "drag-x", 0, "Scripted horizontal drag in pixels")
	cmd.Flags().Float64Var(&dragY, "drag-y", 0, "Scripted vertical drag in pixels")
	cmd.Flags().IntVar(&workers, "workers", 4, "Concurrent frame encoders")
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
	if frames < 1 || fps <= 0 {
		return fmt.Errorf("need at least one frame at a positive fps, got %d at %g", frames, fps)
	}
	if format != "png" && format != "webp" {
		return fmt.Errorf("unknown format %q", format)
	}

	settings, err := flags.Resolve(cmd)
	if err != nil {
		return err
	}
	logger, err := flags.NewLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	surface := renderer.Offscreen{W: settings.Host.Width, H: settings.Host.Height}
	r, err := renderer.NewRenderer(renderer.BackendTypeSoftware, surface, settings.RendererOptions(logger)...)
	if err != nil {
		return err
	}
	defer r.Release()

	sc, err := settings.NewScene(surface, settings.NewLoader(logger), logger)
	if err != nil {
		return err
	}

	pool := worker.NewDynamicWorkerPool(max(workers, 1), 256, 1*time.Second)
	var wg sync.WaitGroup
	var failed atomic.Int64

	dt := 1 / fps
	drag := newDragScript(surface, frames/4, dragX, dragY)
	start := time.Now()
	for i := range frames {
		if err := cmd.Context().Err(); err != nil {
			logger.Warn("interrupted", zap.String("component", "globesnap"), zap.Int("frame", i))
			break
		}
		drag.step(sc, i)
		if err := sc.Render(dt, r); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		snapshot := copyImage(r.Image())
		path := filepath.Join(outDir, fmt.Sprintf("frame_%04d.%s", i, format))

		wg.Add(1)
		pool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				if err := writeFrame(path, snapshot); err != nil {
					failed.Add(1)
					logger.Error("frame write failed",
						zap.String("component", "globesnap"),
						zap.String("path", path),
						zap.Error(err),
					)
					return nil, err
				}
				return path, nil
			},
		})
	}
	wg.Wait()

	logger.Info("frames written",
		zap.String("component", "globesnap"),
		zap.String("dir", outDir),
		zap.Int("frames", frames),
		zap.Int64("failed", failed.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d frames failed to write", n)
	}
	return nil
}

// dragScript moves the primary pointer from the surface center by (dx, dy) over a
// number of frames, then releases it.
type dragScript struct {
	cx, cy float64
	dx, dy float64
	steps  int
}

func newDragScript(surface scene.RenderSurface, steps int, dx, dy float64) dragScript {
	if dx == 0 && dy == 0 {
		steps = 0
	}
	return dragScript{
		cx:    float64(surface.Width()) / 2,
		cy:    float64(surface.Height()) / 2,
		dx:    dx,
		dy:    dy,
		steps: max(steps, 1),
	}
}

func (d dragScript) step(sc scene.Scene, frame int) {
	if d.dx == 0 && d.dy == 0 {
		return
	}
	switch {
	case frame == 0:
		sc.PointerDown(0, d.cx, d.cy)
	case frame <= d.steps:
		t := float64(frame) / float64(d.steps)
		sc.PointerMove(0, d.cx+d.dx*t, d.cy+d.dy*t)
		if frame == d.steps {
			sc.PointerUp(0)
		}
	}
}

func copyImage(src image.Image) *image.NRGBA {
	if src == nil {
		return image.NewNRGBA(image.Rect(0, 0, 1, 1))
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

func writeFrame(path string, img *image.NRGBA) error {
	if filepath.Ext(path) == ".png" {
		return fauxgl.SavePNG(path, img)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := nativewebp.Encode(f, img, nil); err != nil {
		f.Close()
		return fmt.Errorf("webp encode %s: %w", path, err)
	}
	return f.Close()
}

package config

import (
	"fmt"
	"image/color"

	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the host logger: console output for development, or JSON with
// --json-logs. --debug lowers the level to debug.
//
// Returns:
//   - *zap.Logger: the logger
//   - error: an error if the logger cannot be built
func (f *Flags) NewLogger() (*zap.Logger, error) {
	var cfg zap.Config
	if f.JSONLogs {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if f.Debug {
		cfg.Level.SetLevel(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// NewLoader builds a file loader rooted at the icon directory and starts fetching every
// icon the items reference.
//
// Parameters:
//   - logger: the logger handed to the loader
//
// Returns:
//   - loader.Loader: the loader
func (s Settings) NewLoader(logger *zap.Logger) loader.Loader {
	l := loader.NewLoader(loader.BackendTypeFile,
		loader.WithRoot(s.Host.IconDir),
		loader.WithIconPixels(s.Host.IconPixels),
		loader.WithLogger(logger),
	)
	if refs := s.IconRefs(); len(refs) > 0 {
		loaded := l.Prefetch(refs...)
		logger.Info("icons prefetched",
			zap.String("component", "config"),
			zap.Int("loaded", loaded),
			zap.Int("referenced", len(refs)),
		)
	}
	return l
}

// NewScene builds the globe scene the settings describe, resolving icons through
// resolver.
//
// Parameters:
//   - surface: the surface the scene frames its camera for
//   - resolver: the icon resolver, may be nil
//   - logger: the logger handed to the scene
//
// Returns:
//   - scene.Scene: the scene
//   - error: an error if the scene config is invalid
func (s Settings) NewScene(surface scene.RenderSurface, resolver loader.Resolver, logger *zap.Logger) (scene.Scene, error) {
	options := []scene.SceneBuilderOption{
		scene.WithName(s.Host.Title),
		scene.WithConfig(s.Scene),
		scene.WithItems(s.Items...),
		scene.WithLogger(logger),
	}
	if resolver != nil {
		options = append(options, scene.WithResolver(resolver))
	}
	sc, err := scene.NewScene(surface, options...)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return sc, nil
}

// RendererOptions translates the host settings into renderer options.
//
// Parameters:
//   - logger: the logger handed to the renderer
//
// Returns:
//   - []renderer.RendererBuilderOption: the options
func (s Settings) RendererOptions(logger *zap.Logger) []renderer.RendererBuilderOption {
	present := renderer.PresentModeUncapped
	if s.Host.VSync {
		present = renderer.PresentModeVSync
	}
	msaa := renderer.MSAAOff
	if s.Host.MSAA {
		msaa = renderer.MSAA4x
	}
	return []renderer.RendererBuilderOption{
		renderer.WithPresentMode(present),
		renderer.WithMSAA(msaa),
		renderer.WithClearColor(s.Host.ClearColor()),
		renderer.WithLineWidth(s.Scene.LineWidth),
		renderer.WithLogger(logger),
	}
}

// BackendType maps the host backend name to the renderer backend type.
func (s Settings) BackendType() renderer.RendererBackendType {
	if s.Host.Backend == "software" {
		return renderer.BackendTypeSoftware
	}
	return renderer.BackendTypeWGPU
}

// ClearColor returns Background as a color.
func (h Host) ClearColor() color.NRGBA {
	return color.NRGBA{
		R: unit8(h.Background[0]),
		G: unit8(h.Background[1]),
		B: unit8(h.Background[2]),
		A: unit8(h.Background[3]),
	}
}

func unit8(v float64) uint8 {
	return uint8(v*255 + 0.5)
}

package renderer

import (
	"image/color"

	"go.uber.org/zap"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - RendererBuilderOption: a function that applies the present mode option to a renderer
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingPresentMode = &mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count for the WGPU backend.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - RendererBuilderOption: a function that applies the MSAA option to a renderer
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.pendingMSAA = &count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}

// WithClearColor sets the background color every frame starts from.
//
// Parameters:
//   - c: the background color
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear color option to a renderer
func WithClearColor(c color.Color) RendererBuilderOption {
	return func(r *renderer) {
		nrgba := color.NRGBAModel.Convert(c).(color.NRGBA)
		r.clearColor = [4]float64{
			float64(nrgba.R) / 255,
			float64(nrgba.G) / 255,
			float64(nrgba.B) / 255,
			float64(nrgba.A) / 255,
		}
	}
}

// WithLineWidth sets the rasterized line width used by the software backend when a frame's
// wireframe does not specify one.
//
// Parameters:
//   - width: line width in pixels, must be > 0
//
// Returns:
//   - RendererBuilderOption: a function that applies the line width option to a renderer
func WithLineWidth(width float64) RendererBuilderOption {
	return func(r *renderer) {
		if width > 0 {
			r.lineWidth = width
		}
	}
}

// WithLogger sets the logger used for backend lifecycle messages.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - RendererBuilderOption: a function that applies the logger option to a renderer
func WithLogger(logger *zap.Logger) RendererBuilderOption {
	return func(r *renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

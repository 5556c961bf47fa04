package renderer

import (
	"fmt"
	"image"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// CameraParams is the camera state a backend needs to configure its projection for one frame.
type CameraParams struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Up       mgl64.Vec3
	Right    mgl64.Vec3

	Distance float64
	// FovY is the vertical field of view in degrees.
	FovY   float64
	Aspect float64
	Near   float64
	Far    float64

	View       mgl64.Mat4
	Projection mgl64.Mat4
}

// ViewProjection returns Projection * View.
func (c CameraParams) ViewProjection() mgl64.Mat4 {
	return c.Projection.Mul4(c.View)
}

// Billboard is one camera-facing icon quad.
type Billboard struct {
	// Index is the item's position in the scene's item list.
	Index int
	Label string
	// Position is the world-space center of the quad.
	Position mgl64.Vec3
	// Icon is the decoded icon. A nil Icon is drawn as a placeholder quad.
	Icon image.Image
	// Tint multiplies the icon color, or fills the placeholder.
	Tint [4]float32
	// Size is the edge length of the quad in world units.
	Size    float64
	Opacity float64
	// Depth is the distance from the camera; billboards are ordered far to near.
	Depth    float64
	Material material.Material
}

// Segment is one wireframe edge with an opacity at each end.
type Segment struct {
	A, B               mgl64.Vec3
	OpacityA, OpacityB float64
}

// Wireframe is the line set connecting the items.
type Wireframe struct {
	Segments []Segment
	Color    [4]float32
	// Opacity scales every segment's per-vertex opacity.
	Opacity float64
	// Width is the line width in pixels. Backends without wide lines draw 1px lines.
	Width    float64
	Material material.Material
}

// Frame is the complete set of draw instructions for one tick.
type Frame struct {
	Camera      CameraParams
	Orientation mgl64.Quat
	Wireframe   Wireframe
	Billboards  []Billboard
	// Culled counts the items whose billboard lies outside the view frustum this tick.
	// len(Billboards)+Culled is always the item count.
	Culled int
}

// Backend draws frames. The scene renders into any Backend; Renderer is the one this
// package provides.
type Backend interface {
	// Render draws one frame.
	//
	// Parameters:
	//   - frame: the draw instructions, may be nil
	//
	// Returns:
	//   - error: an error if the frame could not be drawn or presented
	Render(frame *Frame) error
}

// Surface is the render target a Renderer draws into.
type Surface interface {
	Width() int
	Height() int
	// SurfaceDescriptor returns the platform surface for GPU backends. Offscreen surfaces
	// return nil.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
}

// Offscreen is a Surface with a fixed size and no platform window, for the software backend.
type Offscreen struct {
	W, H int
}

func (o Offscreen) Width() int                                 { return o.W }
func (o Offscreen) Height() int                                { return o.H }
func (o Offscreen) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backendType RendererBackendType
	backend     RendererBackend
	logger      *zap.Logger

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           [4]float64
	lineWidth            float64
}

// Renderer defines the interface for the rendering system.
//
// The Renderer draws globe frames through a backend selected at construction. The WGPU backend
// presents to a window surface; the software backend rasterizes into an in-memory image.
type Renderer interface {
	Backend

	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// Offscreen backends ignore it.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// Image returns the last rendered frame for backends that render to memory.
	//
	// Returns:
	//   - image.Image: the frame, or nil for GPU backends
	Image() image.Image

	// BackendType reports which backend the Renderer was built with.
	//
	// Returns:
	//   - RendererBackendType: the backend type
	BackendType() RendererBackendType

	// Release frees backend resources. The Renderer must not be used afterwards.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type and surface.
// The WGPU backend requires surface.SurfaceDescriptor() to be non-nil; the software backend only
// uses the surface size.
//
// Parameters:
//   - backendType: the type of rendering backend to use
//   - surface: the render target
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
//   - error: an error if the backend could not be created
func NewRenderer(backendType RendererBackendType, surface Surface, options ...RendererBuilderOption) (Renderer, error) {
	if surface == nil {
		panic("renderer: nil surface")
	}
	r := &renderer{
		mu:          &sync.Mutex{},
		backendType: backendType,
		logger:      zap.NewNop(),
		clearColor:  [4]float64{0.05, 0.06, 0.09, 1},
		lineWidth:   1,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeSoftware:
		r.backend = newSoftwareRendererBackend(r.clearColor, r.lineWidth)
	case BackendTypeWGPU:
		descriptor := surface.SurfaceDescriptor()
		if descriptor == nil {
			return nil, fmt.Errorf("renderer: %s backend needs a surface descriptor", backendType)
		}
		b, err := newWGPURendererBackend(descriptor, r.forceFallbackAdapter, msaa, r.clearColor)
		if err != nil {
			return nil, fmt.Errorf("renderer: create %s backend: %w", backendType, err)
		}
		r.backend = b
	default:
		return nil, fmt.Errorf("renderer: unknown backend type %d", int(backendType))
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(surface.Width(), surface.Height())
	r.logger.Info("renderer ready",
		zap.String("component", "renderer"),
		zap.String("backend", backendType.String()),
		zap.Int("width", surface.Width()),
		zap.Int("height", surface.Height()),
	)
	return r, nil
}

func (r *renderer) Render(frame *Frame) error {
	if frame == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Render(frame)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Image() image.Image {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.backend.Image()
}

func (r *renderer) BackendType() RendererBackendType {
	return r.backendType
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.Release()
}

package scene

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/Carmen-Shannon/oxy-globe/engine/depth"
	"github.com/Carmen-Shannon/oxy-globe/engine/layout"
	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-globe/engine/rotation"
	"github.com/Carmen-Shannon/oxy-globe/engine/wireframe"
	"github.com/barkimedes/go-deepcopy"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RenderSurface is the pixel area a scene is drawn into. The scene reads its size on
// construction and on Resize; it never owns the surface.
type RenderSurface interface {
	Width() int
	Height() int
}

// Scene is one globe: the item layout, its wireframe, the framed camera and the rotation
// state, combined into a renderer.Frame on every tick.
// Thread-safe for concurrent access. Reconfiguration is computed outside the frame lock
// and swapped in whole, so a frame never sees a partial update.
type Scene interface {
	// ID returns the scene's unique identifier.
	ID() uuid.UUID

	// Name returns the scene's display name.
	Name() string

	// SetName sets the scene's display name.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Config returns a copy of the current configuration.
	Config() Config

	// Configure validates and applies a new configuration. On error the prior
	// configuration stays in effect.
	//
	// Parameters:
	//   - cfg: the new configuration
	//
	// Returns:
	//   - error: an error wrapping ErrNonFinite, ErrInvalidRadius or ErrInvalidConfig
	Configure(cfg Config) error

	// SetItems replaces the item list. The scene keeps a private copy; points, edges and
	// icons are recomputed before the next frame.
	//
	// Parameters:
	//   - items: the new items, may be empty
	SetItems(items []common.Item)

	// SetRadius changes the sphere radius and recomputes the layout.
	//
	// Parameters:
	//   - radius: the new radius, must be > 0
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidRadius; the prior radius is kept
	SetRadius(radius float64) error

	// SetPadding changes the camera padding factor and reframes.
	//
	// Parameters:
	//   - padding: the new padding, must be > 0
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidConfig
	SetPadding(padding float64) error

	// SetFov changes the vertical field of view and reframes.
	//
	// Parameters:
	//   - fovY: the field of view in degrees, within (0, 180)
	//
	// Returns:
	//   - error: an error wrapping ErrInvalidConfig
	SetFov(fovY float64) error

	// Resize re-reads the surface size and reframes the camera. A zero-sized surface keeps
	// the previous aspect ratio.
	Resize()

	// PointerDown starts a drag. Coordinates are surface pixels.
	PointerDown(id int, x, y float64)

	// PointerMove continues the drag of pointer id.
	PointerMove(id int, x, y float64)

	// PointerUp releases pointer id.
	PointerUp(id int)

	// PointerCancel aborts the drag of pointer id without momentum.
	PointerCancel(id int)

	// SetAutoRotate toggles the idle spin.
	SetAutoRotate(enabled bool)

	// AutoRotate reports whether the idle spin is enabled.
	AutoRotate() bool

	// ResetRotation returns the globe to its initial orientation in the auto phase.
	ResetRotation()

	// Advance steps the rotation by dt seconds and builds the frame for the new state.
	// It never fails; an empty item list yields a frame with only camera parameters.
	// Every item gets a billboard unless it is outside the view frustum, which happens
	// when the padding is below 1; those items are counted in Frame.Culled.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous frame
	//
	// Returns:
	//   - *renderer.Frame: the draw instructions for this tick
	Advance(dt float64) *renderer.Frame

	// Render advances the scene and draws the resulting frame with backend.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous frame
	//   - backend: the backend to draw with
	//
	// Returns:
	//   - error: the backend's error, if any
	Render(dt float64, backend renderer.Backend) error

	// Items returns a copy of the current item list.
	Items() []common.Item

	// Points returns the current layout, one point per item.
	Points() []common.Point

	// Edges returns the current wireframe edges.
	Edges() []common.Edge

	// Frame returns the current camera framing.
	Frame() camera.Frame

	// Phase returns the rotation phase.
	Phase() rotation.Phase

	// Orientation returns the current globe orientation.
	Orientation() mgl64.Quat
}

// layoutSnapshot is everything derived from the item list and radius. It is replaced whole.
type layoutSnapshot struct {
	items  []common.Item
	points []common.Point
	edges  []common.Edge
	icons  []image.Image
}

type scene struct {
	mu *sync.Mutex
	// rebuildMu serializes layout rebuilds so they run outside mu without racing each other.
	rebuildMu *sync.Mutex

	id     uuid.UUID
	name   string
	active bool

	surface RenderSurface
	width   int
	height  int

	cfg    Config
	layout layoutSnapshot

	distributor layout.Distributor
	hull        wireframe.HullWireframeBuilder
	customHull  bool
	cam         camera.Camera
	rotation    rotation.RotationController
	compositor  depth.DepthCompositor
	resolver    loader.Resolver

	lineMaterial material.Material
	iconMaterial material.Material

	logger *zap.Logger

	// Per-frame scratch buffers.
	positions []mgl64.Vec3
	opacities []float64

	pendingItems []common.Item
}

var _ Scene = &scene{}

// NewScene creates a globe scene drawing into surface.
// Panics if surface is nil.
//
// Parameters:
//   - surface: the render surface whose pixel size frames the camera
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the scene
//   - error: an error if the initial configuration is invalid
func NewScene(surface RenderSurface, options ...SceneBuilderOption) (Scene, error) {
	if surface == nil {
		panic("scene: nil surface")
	}
	s := &scene{
		mu:          &sync.Mutex{},
		rebuildMu:   &sync.Mutex{},
		id:          uuid.New(),
		name:        "globe",
		active:      true,
		surface:     surface,
		cfg:         DefaultConfig(),
		distributor: layout.NewSphereDistributor(),
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(s)
	}

	if err := s.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene: initial config: %w", err)
	}

	if s.hull == nil {
		s.hull = wireframe.NewHullWireframeBuilder(wireframe.WithEpsilon(s.cfg.HullEpsilon))
	}
	s.compositor = newCompositor(s.cfg)
	s.rotation = rotation.NewRotationController(rotationOptions(s.cfg)...)
	s.cam = camera.NewCamera(camera.WithController(camera.NewCameraController(
		camera.WithAzimuth(mgl64.DegToRad(s.cfg.CameraAzimuth)),
		camera.WithElevation(mgl64.DegToRad(s.cfg.CameraElevation)),
	)))
	s.lineMaterial, s.iconMaterial = newMaterials(s.cfg, s.compositor)

	s.Resize()
	s.SetItems(s.pendingItems)
	s.pendingItems = nil

	s.logger.Info("scene ready",
		zap.String("component", "scene"),
		zap.String("id", s.id.String()),
		zap.Int("items", len(s.layout.items)),
		zap.Int("edges", len(s.layout.edges)),
	)
	return s, nil
}

func (s *scene) ID() uuid.UUID {
	return s.id
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Config() Config {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

func (s *scene) Configure(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scene: configure: %w", err)
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	s.mu.Lock()
	prev := s.cfg
	items := s.layout.items
	s.mu.Unlock()

	var hull wireframe.HullWireframeBuilder
	if !s.customHull && cfg.HullEpsilon != prev.HullEpsilon {
		hull = wireframe.NewHullWireframeBuilder(wireframe.WithEpsilon(cfg.HullEpsilon))
	}

	var next *layoutSnapshot
	if cfg.Radius != prev.Radius || hull != nil {
		h := hull
		if h == nil {
			h = s.hull
		}
		snap := s.buildLayout(items, cfg.Radius, h)
		next = &snap
	}
	compositor := newCompositor(cfg)
	lineMat, iconMat := newMaterials(cfg, compositor)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if hull != nil {
		s.hull = hull
	}
	if next != nil {
		s.layout = *next
	}
	s.compositor = compositor
	s.rotation.Reconfigure(rotationOptions(cfg)...)
	s.lineMaterial, s.iconMaterial = lineMat, iconMat
	ctrl := s.cam.Controller()
	ctrl.SetAzimuth(mgl64.DegToRad(cfg.CameraAzimuth))
	ctrl.SetElevation(mgl64.DegToRad(cfg.CameraElevation))
	s.reframe()

	s.logger.Debug("scene reconfigured",
		zap.String("component", "scene"),
		zap.Float64("radius", cfg.Radius),
		zap.Bool("relayout", next != nil),
	)
	return nil
}

func (s *scene) SetItems(items []common.Item) {
	owned := make([]common.Item, 0, len(items))
	if len(items) > 0 {
		owned = deepcopy.MustAnything(items).([]common.Item)
	}

	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	s.mu.Lock()
	radius := s.cfg.Radius
	hull := s.hull
	s.mu.Unlock()

	snap := s.buildLayout(owned, radius, hull)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout = snap
}

func (s *scene) SetRadius(radius float64) error {
	cfg := s.Config()
	cfg.Radius = radius
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scene: set radius: %w", err)
	}
	return s.Configure(cfg)
}

func (s *scene) SetPadding(padding float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.Padding = padding
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scene: set padding: %w", err)
	}
	s.cfg = cfg
	s.reframe()
	return nil
}

func (s *scene) SetFov(fovY float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg := s.cfg
	cfg.FovY = fovY
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("scene: set fov: %w", err)
	}
	s.cfg = cfg
	s.reframe()
	return nil
}

func (s *scene) Resize() {
	w, h := s.surface.Width(), s.surface.Height()

	s.mu.Lock()
	defer s.mu.Unlock()
	if w <= 0 || h <= 0 {
		return
	}
	s.width, s.height = w, h
	s.cam.SetAspect(float64(w) / float64(h))
	s.reframe()
}

func (s *scene) PointerDown(id int, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.PointerDown(id, s.normalize(x, y))
}

func (s *scene) PointerMove(id int, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.PointerMove(id, s.normalize(x, y))
}

func (s *scene) PointerUp(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.PointerUp(id)
}

func (s *scene) PointerCancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.PointerCancel(id)
}

func (s *scene) SetAutoRotate(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg.AutoRotate = enabled
	s.rotation.SetAutoRotate(enabled)
}

func (s *scene) AutoRotate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation.AutoRotate()
}

func (s *scene) ResetRotation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotation.Reset()
}

func (s *scene) Advance(dt float64) *renderer.Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	pose := s.cam.Controller().Pose()
	q := s.rotation.Advance(dt, pose)

	frame := &renderer.Frame{
		Camera:      s.cameraParams(pose),
		Orientation: q,
		Wireframe: renderer.Wireframe{
			Color:    toColor32(s.cfg.LineColor),
			Opacity:  s.cfg.LineOpacity,
			Width:    s.cfg.LineWidth,
			Material: s.lineMaterial,
		},
	}

	n := len(s.layout.points)
	if n == 0 {
		return frame
	}

	// One batch pass: line vertices on the sphere, then billboard centers lifted off it.
	lift := (s.cfg.Radius + s.cfg.IconOffset) / s.cfg.Radius
	s.positions = slices.Grow(s.positions[:0], 2*n)[:2*n]
	for i, p := range s.layout.points {
		world := q.Rotate(p.Position)
		s.positions[i] = world
		s.positions[n+i] = world.Mul(lift)
	}
	s.opacities = s.compositor.Compose(pose.Position, s.positions, s.opacities)

	frame.Wireframe.Segments = make([]renderer.Segment, len(s.layout.edges))
	for k, e := range s.layout.edges {
		frame.Wireframe.Segments[k] = renderer.Segment{
			A:        s.positions[e.I],
			B:        s.positions[e.J],
			OpacityA: s.opacities[e.I],
			OpacityB: s.opacities[e.J],
		}
	}

	frustum := s.cam.Frustum()
	cullRadius := s.cfg.IconSize * math.Sqrt2 / 2
	frame.Billboards = make([]renderer.Billboard, 0, n)
	for i, p := range s.layout.points {
		center := s.positions[n+i]
		if !frustum.IntersectsSphere(center, cullRadius) {
			frame.Culled++
			continue
		}
		icon := s.layout.icons[i]
		frame.Billboards = append(frame.Billboards, renderer.Billboard{
			Index:    i,
			Label:    p.Item.Label,
			Position: center,
			Icon:     icon,
			Tint:     itemTint(p.Item, icon != nil),
			Size:     s.cfg.IconSize,
			Opacity:  s.opacities[n+i],
			Depth:    pose.Position.Sub(center).Len(),
			Material: s.iconMaterial,
		})
	}
	slices.SortStableFunc(frame.Billboards, func(a, b renderer.Billboard) int {
		return cmp.Compare(b.Depth, a.Depth)
	})
	return frame
}

func (s *scene) Render(dt float64, backend renderer.Backend) error {
	frame := s.Advance(dt)
	if backend == nil {
		return nil
	}
	if err := backend.Render(frame); err != nil {
		return fmt.Errorf("scene: render: %w", err)
	}
	return nil
}

func (s *scene) Items() []common.Item {
	s.mu.Lock()
	items := s.layout.items
	s.mu.Unlock()
	if len(items) == 0 {
		return []common.Item{}
	}
	return deepcopy.MustAnything(items).([]common.Item)
}

func (s *scene) Points() []common.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.layout.points)
}

func (s *scene) Edges() []common.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.layout.edges)
}

func (s *scene) Frame() camera.Frame {
	return s.cam.Frame()
}

func (s *scene) Phase() rotation.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation.Phase()
}

func (s *scene) Orientation() mgl64.Quat {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotation.Orientation()
}

// buildLayout distributes items, builds the hull and resolves icons. It touches no scene
// state besides the resolver and logger, so it runs without mu.
func (s *scene) buildLayout(items []common.Item, radius float64, hull wireframe.HullWireframeBuilder) layoutSnapshot {
	points := s.distributor.Distribute(items, radius)
	edges := hull.BuildEdges(points)

	if crossings := wireframe.Crossings(points, edges); len(crossings) > 0 {
		first := crossings[0]
		s.logger.Warn("wireframe edges cross",
			zap.String("component", "scene"),
			zap.Int("pairs", len(crossings)),
			zap.Int("points", len(points)),
			zap.Float64("hullEpsilon", hull.Epsilon()),
			zap.String("first", fmt.Sprintf("(%d,%d)x(%d,%d)", first.A.I, first.A.J, first.B.I, first.B.J)),
		)
	}

	icons := make([]image.Image, len(items))
	if s.resolver != nil {
		missing := 0
		for i, item := range items {
			if item.Icon == "" {
				continue
			}
			icons[i] = s.resolver.Resolve(item.Icon)
			if icons[i] == nil {
				missing++
			}
		}
		if missing > 0 {
			s.logger.Info("icons unavailable, drawing placeholders",
				zap.String("component", "scene"),
				zap.Int("missing", missing),
			)
		}
	}

	return layoutSnapshot{items: items, points: points, edges: edges, icons: icons}
}

// reframe fits the camera to the configured sphere.
// Caller must hold the mutex.
func (s *scene) reframe() {
	f := camera.FrameFor(s.cfg.Radius, s.cfg.FovY, s.cam.Aspect(), s.cfg.Padding)
	s.cam.SetFrame(f)
}

// normalize converts surface pixels into units of the surface's shorter side.
// Caller must hold the mutex.
func (s *scene) normalize(x, y float64) mgl64.Vec2 {
	short := float64(min(s.width, s.height))
	if short <= 0 {
		short = 1
	}
	return mgl64.Vec2{x / short, y / short}
}

// cameraParams snapshots the camera for the backend.
// Caller must hold the mutex.
func (s *scene) cameraParams(pose camera.Pose) renderer.CameraParams {
	f := s.cam.Frame()
	return renderer.CameraParams{
		Position:   pose.Position,
		Target:     pose.Target,
		Up:         pose.Up,
		Right:      pose.Right,
		Distance:   f.Distance,
		FovY:       f.FovY,
		Aspect:     s.cam.Aspect(),
		Near:       f.Near,
		Far:        f.Far,
		View:       s.cam.ViewMatrix(),
		Projection: s.cam.ProjectionMatrix(),
	}
}

// newMaterials builds the wireframe and icon materials, marked translucent by the compositor.
func newMaterials(cfg Config, compositor depth.DepthCompositor) (lines, icons material.Material) {
	lines = material.NewMaterial(
		material.WithName("globe-wireframe"),
		material.WithPipelineKey(material.PipelineLines),
		material.WithBaseColor(toColor32(cfg.LineColor)),
	)
	icons = material.NewMaterial(
		material.WithName("globe-icons"),
		material.WithPipelineKey(material.PipelineBillboards),
	)
	compositor.Prepare(lines)
	compositor.Prepare(icons)
	return lines, icons
}

func newCompositor(cfg Config) depth.DepthCompositor {
	return depth.NewDepthCompositor(
		depth.WithMinOpacity(cfg.MinOpacity),
		depth.WithExponent(cfg.DepthExponent),
	)
}

func rotationOptions(cfg Config) []rotation.RotationControllerBuilderOption {
	return []rotation.RotationControllerBuilderOption{
		rotation.WithAutoRotate(cfg.AutoRotate),
		rotation.WithAutoRotateSpeed(cfg.AutoRotateSpeed),
		rotation.WithDragSensitivity(cfg.DragSensitivity),
		rotation.WithDecayRate(cfg.DecayRate),
		rotation.WithResumeDelay(cfg.ResumeDelay),
		rotation.WithReleaseThreshold(cfg.ReleaseThreshold),
	}
}

// itemTint is the item's color, or white over a real icon and the placeholder fill
// without one.
func itemTint(item common.Item, hasIcon bool) [4]float32 {
	c := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	switch {
	case item.Color != nil:
		c = *item.Color
	case !hasIcon:
		c = loader.DefaultPlaceholderTint
	}
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

func toColor32(c [4]float64) [4]float32 {
	return [4]float32{float32(c[0]), float32(c[1]), float32(c[2]), float32(c[3])}
}

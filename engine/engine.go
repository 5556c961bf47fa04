package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/profiler"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/scene"
	"github.com/Carmen-Shannon/oxy-globe/engine/window"
	"github.com/Carmen-Shannon/oxy-globe/engine/zoom"
	trylock "github.com/subchen/go-trylock/v2"
	"go.uber.org/zap"
)

// primaryPointer is the pointer id mouse input is reported under.
const primaryPointer = 0

// reloadingSuffix is appended to the window title while a reload holds the frame loop.
const reloadingSuffix = " (reloading)"

// resizer is implemented by backends that track the surface size.
type resizer interface {
	Resize(width, height int)
}

// engine implements the Engine interface.
// Drives the front scene from the window's message loop.
type engine struct {
	mu sync.RWMutex

	quitChannel chan struct{}
	quitOnce    sync.Once

	window  window.Window
	backend renderer.Backend
	zoom    zoom.Zoom
	logger  *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool

	// reloadLock is held for writing while a reload swaps scene state. Frames skip
	// rather than wait on it.
	reloadLock trylock.TryLocker
	reloading  bool
	title      string
	// zoomTarget is the padding a reload asked for, applied by the next frame.
	zoomTarget *float64

	frameCallback func(deltaTime float64)

	scenes map[int]scene.Scene
	// dragScene receives pointer input until the current drag ends.
	dragScene scene.Scene
	padding   float64

	now              func() time.Time
	lastFrame        time.Time
	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	renderFailing    bool
}

// Engine is the main entry point for a windowed globe.
// It routes window input to the front scene and renders it once per message loop iteration.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Zoom returns the spring that eases the front scene's padding.
	//
	// Returns:
	//   - zoom.Zoom: the zoom follower
	Zoom() zoom.Zoom

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetFrameCallback registers the function called after each rendered frame.
	//
	// Parameters:
	//   - callback: function receiving the frame's delta time in seconds
	SetFrameCallback(callback func(deltaTime float64))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// The active scene with the highest key is the front scene: it is rendered and receives input.
	//
	// Parameters:
	//   - key: the z-index of the scene
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Front returns the scene currently rendered, or nil when no scene is active.
	//
	// Returns:
	//   - scene.Scene: the front scene
	Front() scene.Scene

	// Reload applies a new configuration and item list to the front scene. Safe to call
	// from any goroutine; frames are skipped while the reload runs and the window title
	// says so.
	//
	// Parameters:
	//   - cfg: the new scene configuration
	//   - items: the new items
	//
	// Returns:
	//   - error: the configuration error, in which case neither cfg nor items are applied
	Reload(cfg scene.Config, items []common.Item) error

	// Run processes window messages and renders until the window closes.
	Run()

	// Quit closes the window at the next frame, which ends Run.
	// Safe to call multiple times and from any goroutine.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Panics if no window or backend is provided.
//
// Parameters:
//   - options: functional options for engine configuration (window, backend, scenes, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel: make(chan struct{}),
		scenes:      make(map[int]scene.Scene),
		logger:      zap.NewNop(),
		reloadLock:  trylock.New(),
		now:         time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		panic("engine: nil window")
	}
	if e.backend == nil {
		panic("engine: nil backend")
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	if e.zoom == nil {
		initial := scene.DefaultConfig().Padding
		if s := e.Front(); s != nil {
			initial = s.Config().Padding
		}
		e.zoom = zoom.NewZoom(zoom.WithInitial(initial))
	}
	e.padding = e.zoom.Value()
	e.title = e.windowTitle()

	e.window.SetResizeCallback(e.handleResize)
	e.window.SetScrollCallback(func(delta float32) {
		e.zoom.Scroll(float64(delta))
	})
	e.window.SetKeyDownCallback(e.handleKey)
	e.window.SetPointerDownCallback(func(x, y float64) {
		if s := e.Front(); s != nil {
			e.dragScene = s
			s.PointerDown(primaryPointer, x, y)
		}
	})
	e.window.SetPointerMoveCallback(func(x, y float64) {
		if e.dragScene != nil {
			e.dragScene.PointerMove(primaryPointer, x, y)
		}
	})
	e.window.SetPointerUpCallback(func(x, y float64) {
		if e.dragScene != nil {
			e.dragScene.PointerMove(primaryPointer, x, y)
			e.dragScene.PointerUp(primaryPointer)
			e.dragScene = nil
		}
	})
	e.window.SetPointerLeaveCallback(func() {
		if e.dragScene != nil {
			e.dragScene.PointerCancel(primaryPointer)
			e.dragScene = nil
		}
	})

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Zoom() zoom.Zoom {
	return e.zoom
}

func (e *engine) Run() {
	e.lastFrame = e.now()
	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
	e.signalQuit()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel; the next frame closes the window.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// frame runs one iteration of the render loop on the window's goroutine.
func (e *engine) frame() {
	select {
	case <-e.quitChannel:
		if err := e.window.Close(); err != nil {
			e.logger.Warn("window close failed", zap.String("component", "engine"), zap.Error(err))
		}
		return
	default:
	}

	start := e.now()
	dt := start.Sub(e.lastFrame).Seconds()
	e.lastFrame = start

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	locked := e.reloadLock.RTryLock(ctx)
	cancel()
	if !locked {
		e.setReloading(true)
		return
	}
	e.setReloading(false)

	if e.zoomTarget != nil {
		e.zoom.SetTarget(*e.zoomTarget)
		e.zoomTarget = nil
	}
	if s := e.Front(); s != nil {
		if p := e.zoom.Advance(dt); p != e.padding {
			if err := s.SetPadding(p); err == nil {
				e.padding = p
			}
		}
		e.render(s, dt)
	}
	e.reloadLock.RUnlock()

	if e.frameCallback != nil {
		e.frameCallback(dt)
	}

	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick()
	}

	// Frame rate limiting
	if e.renderFrameLimit > 0 {
		if remaining := e.renderFrameLimit - e.now().Sub(start); remaining > 0 {
			time.Sleep(remaining)
		}
	}
}

// render draws s and logs the first failure of each run of failed frames.
func (e *engine) render(s scene.Scene, dt float64) {
	err := s.Render(dt, e.backend)
	switch {
	case err != nil && !e.renderFailing:
		e.renderFailing = true
		e.logger.Warn("frame render failed", zap.String("component", "engine"), zap.Error(err))
	case err == nil && e.renderFailing:
		e.renderFailing = false
		e.logger.Info("frame render recovered", zap.String("component", "engine"))
	}
}

func (e *engine) setReloading(reloading bool) {
	if reloading == e.reloading {
		return
	}
	e.reloading = reloading
	if reloading {
		e.window.SetTitle(e.title + reloadingSuffix)
		return
	}
	e.window.SetTitle(e.title)
}

func (e *engine) handleResize(width, height int) {
	if r, ok := e.backend.(resizer); ok {
		r.Resize(width, height)
	}
	for _, s := range e.Scenes() {
		s.Resize()
	}
}

func (e *engine) handleKey(keyCode uint32) {
	s := e.Front()
	if s == nil {
		return
	}
	switch keyCode {
	case common.KeySpace:
		s.SetAutoRotate(!s.AutoRotate())
	case common.KeyR:
		s.ResetRotation()
		e.zoom.Reset()
	case common.KeyEqual:
		e.zoom.Scroll(1)
	case common.KeyMinus:
		e.zoom.Scroll(-1)
	}
}

func (e *engine) Reload(cfg scene.Config, items []common.Item) error {
	e.reloadLock.Lock()
	defer e.reloadLock.Unlock()

	s := e.Front()
	if s == nil {
		return nil
	}

	target := cfg.Padding
	cfg.Padding = e.padding
	if err := s.Configure(cfg); err != nil {
		return err
	}
	e.zoomTarget = &target
	s.SetItems(items)

	e.logger.Info("scene reloaded",
		zap.String("component", "engine"),
		zap.String("scene", s.Name()),
		zap.Int("items", len(items)),
	)
	return nil
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) SetFrameCallback(callback func(deltaTime float64)) {
	e.frameCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.scenes[key] == e.dragScene {
		e.dragScene = nil
	}
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}

func (e *engine) Front() scene.Scene {
	e.mu.RLock()
	defer e.mu.RUnlock()
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			return s
		}
	}
	return nil
}

// windowTitle returns the title set through the builder, falling back to the scene name.
func (e *engine) windowTitle() string {
	if e.title != "" {
		e.window.SetTitle(e.title)
		return e.title
	}
	if s := e.Front(); s != nil && s.Name() != "" {
		e.window.SetTitle(s.Name())
		return s.Name()
	}
	return "oxy-globe"
}

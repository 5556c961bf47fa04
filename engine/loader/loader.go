package loader

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// LoaderBackendType identifies where the Loader reads icons from.
type LoaderBackendType int

const (
	// BackendTypeFile reads icons from the filesystem.
	BackendTypeFile LoaderBackendType = iota

	// BackendTypeMemory reads icons from bytes registered with Register.
	BackendTypeMemory
)

const (
	// DefaultIconPixels is the edge length icons are scaled to.
	DefaultIconPixels = 64
	// DefaultMaxRetries bounds the attempts after the first failed read.
	DefaultMaxRetries = 3
	// DefaultRetryInterval is the first backoff interval between attempts.
	DefaultRetryInterval = 50 * time.Millisecond
)

var (
	// ErrIconMissing is returned for references whose previous load failed.
	ErrIconMissing = errors.New("icon missing")

	// ErrRegisterUnsupported is returned by Register on backends that do not hold bytes.
	ErrRegisterUnsupported = errors.New("backend does not accept registered icons")
)

// Resolver resolves an item's icon reference to a decoded image. A nil result means the
// icon is unavailable and the item is drawn with a placeholder.
type Resolver interface {
	// Resolve returns the icon for ref.
	//
	// Parameters:
	//   - ref: the icon reference
	//
	// Returns:
	//   - image.Image: the icon, or nil when unavailable
	Resolve(ref string) image.Image
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	// iconCache maps a reference to its scaled icon. A nil entry records a failed load.
	iconCache map[string]image.Image

	backendType LoaderBackendType
	backend     loaderBackend
	root        string

	iconPixels    int
	maxRetries    uint64
	retryInterval time.Duration

	workers  int
	poolOnce sync.Once
	pool     worker.DynamicWorkerPool

	logger *zap.Logger
}

// Loader defines the public-facing interface for loading and caching item icons.
// It abstracts the icon source behind a backend, scales every icon to a square of
// IconPixels, retries transient read errors and caches both hits and misses.
// Thread-safe for concurrent access.
type Loader interface {
	Resolver

	// Load reads, decodes and scales an icon and caches the result.
	// If the reference is already cached, the cached icon is returned. A cached miss
	// returns ErrIconMissing until Forget or Clear drops it.
	//
	// Parameters:
	//   - ref: the icon reference
	//
	// Returns:
	//   - image.Image: the scaled icon
	//   - error: error if loading fails
	Load(ref string) (image.Image, error)

	// LoadReader decodes an icon from a reader stream and caches it under ref.
	//
	// Parameters:
	//   - ref: the cache key for the icon
	//   - r: the reader providing encoded image data
	//
	// Returns:
	//   - image.Image: the scaled icon
	//   - error: error if decoding fails
	LoadReader(ref string, r io.Reader) (image.Image, error)

	// Register stores encoded icon bytes under ref for the memory backend.
	//
	// Parameters:
	//   - ref: the icon reference
	//   - data: encoded image bytes (png, jpeg, gif, tga or webp)
	//
	// Returns:
	//   - error: ErrRegisterUnsupported on other backends
	Register(ref string, data []byte) error

	// Prefetch loads every reference concurrently on the loader's worker pool and waits
	// for all of them. Failures are cached as misses and logged.
	//
	// Parameters:
	//   - refs: the icon references, duplicates and empty strings are skipped
	//
	// Returns:
	//   - int: the number of icons available after the prefetch
	Prefetch(refs ...string) int

	// Get retrieves a cached icon. Returns nil if not cached or cached as a miss.
	//
	// Parameters:
	//   - ref: the icon reference
	//
	// Returns:
	//   - image.Image: the cached icon or nil
	Get(ref string) image.Image

	// Icons returns a copy of every successfully loaded icon.
	//
	// Returns:
	//   - map[string]image.Image: icons keyed by reference
	Icons() map[string]image.Image

	// Forget drops one reference from the cache so the next Load reads it again.
	//
	// Parameters:
	//   - ref: the icon reference
	Forget(ref string)

	// Clear drops every cached icon and miss.
	Clear()

	// IconPixels returns the edge length icons are scaled to.
	//
	// Returns:
	//   - int: pixels
	IconPixels() int
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeFile)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		iconCache:     make(map[string]image.Image),
		backendType:   backendType,
		iconPixels:    DefaultIconPixels,
		maxRetries:    DefaultMaxRetries,
		retryInterval: DefaultRetryInterval,
		workers:       4,
		logger:        zap.NewNop(),
	}

	for _, option := range options {
		option(l)
	}

	switch backendType {
	case BackendTypeMemory:
		l.backend = newMemoryLoaderBackend()
	case BackendTypeFile:
		fallthrough
	default:
		l.backend = newFileLoaderBackend(l.root)
	}
	return l
}

func (l *loader) Resolve(ref string) image.Image {
	if ref == "" {
		return nil
	}
	img, err := l.Load(ref)
	if err != nil {
		return nil
	}
	return img
}

func (l *loader) Load(ref string) (image.Image, error) {
	l.mu.RLock()
	if cached, ok := l.iconCache[ref]; ok {
		l.mu.RUnlock()
		if cached == nil {
			return nil, fmt.Errorf("loader: %s: %w", ref, ErrIconMissing)
		}
		return cached, nil
	}
	l.mu.RUnlock()

	var decoded image.Image
	attempts := 0
	op := func() error {
		attempts++
		img, err := l.backend.Load(ref)
		if err != nil {
			return err
		}
		decoded = img
		return nil
	}
	if err := backoff.Retry(op, backoff.WithMaxRetries(l.newBackOff(), l.maxRetries)); err != nil {
		l.store(ref, nil)
		l.logger.Warn("icon load failed",
			zap.String("component", "loader"),
			zap.String("ref", ref),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
		return nil, fmt.Errorf("loader: load %s: %w", ref, err)
	}

	scaled := Fit(decoded, l.iconPixels)
	l.store(ref, scaled)
	return scaled, nil
}

func (l *loader) LoadReader(ref string, r io.Reader) (image.Image, error) {
	img, err := l.backend.LoadReader(r)
	if err != nil {
		return nil, fmt.Errorf("loader: decode %s: %w", ref, err)
	}
	scaled := Fit(img, l.iconPixels)
	l.store(ref, scaled)
	return scaled, nil
}

func (l *loader) Register(ref string, data []byte) error {
	mem, ok := l.backend.(*memoryLoaderBackend)
	if !ok {
		return fmt.Errorf("loader: register %s: %w", ref, ErrRegisterUnsupported)
	}
	mem.put(ref, bytes.Clone(data))
	l.Forget(ref)
	return nil
}

func (l *loader) Prefetch(refs ...string) int {
	l.poolOnce.Do(func() {
		l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)
	})

	seen := make(map[string]struct{}, len(refs))
	var wg sync.WaitGroup
	var loaded atomic.Int64
	for id, ref := range refs {
		if ref == "" {
			continue
		}
		if _, dup := seen[ref]; dup {
			continue
		}
		seen[ref] = struct{}{}

		wg.Add(1)
		r := ref
		l.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				img, err := l.Load(r)
				if err != nil {
					return nil, err
				}
				loaded.Add(1)
				return img, nil
			},
		})
	}
	wg.Wait()

	l.logger.Debug("icons prefetched",
		zap.String("component", "loader"),
		zap.Int("requested", len(seen)),
		zap.Int64("loaded", loaded.Load()),
	)
	return int(loaded.Load())
}

func (l *loader) Get(ref string) image.Image {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.iconCache[ref]
}

func (l *loader) Icons() map[string]image.Image {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := maps.Clone(l.iconCache)
	maps.DeleteFunc(out, func(_ string, img image.Image) bool { return img == nil })
	return out
}

func (l *loader) Forget(ref string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.iconCache, ref)
}

func (l *loader) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.iconCache)
}

func (l *loader) IconPixels() int {
	return l.iconPixels
}

func (l *loader) store(ref string, img image.Image) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.iconCache[ref] = img
}

func (l *loader) newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = l.retryInterval
	b.MaxInterval = 8 * l.retryInterval
	b.MaxElapsedTime = 0
	return b
}

// Fit scales img to fit inside a size x size square, keeping its aspect ratio and centering
// it on a transparent background. A non-positive size only converts the image.
//
// Parameters:
//   - img: the source image
//   - size: the edge length of the result in pixels
//
// Returns:
//   - *image.NRGBA: the scaled icon
func Fit(img image.Image, size int) *image.NRGBA {
	src := img.Bounds()
	if size <= 0 || src.Dx() == 0 || src.Dy() == 0 {
		out := image.NewNRGBA(image.Rect(0, 0, src.Dx(), src.Dy()))
		xdraw.Draw(out, out.Bounds(), img, src.Min, xdraw.Src)
		return out
	}

	w, h := size, size
	if src.Dx() > src.Dy() {
		h = max(1, size*src.Dy()/src.Dx())
	} else if src.Dy() > src.Dx() {
		w = max(1, size*src.Dx()/src.Dy())
	}
	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	x0, y0 := (size-w)/2, (size-h)/2
	xdraw.CatmullRom.Scale(out, image.Rect(x0, y0, x0+w, y0+h), img, src, xdraw.Over, nil)
	return out
}

package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is how long the watcher waits after the last change before reloading.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reloads a settings file when it changes on disk. The file's directory is
// watched rather than the file, so editors that save by renaming a temporary file over
// the original are seen.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	onChange func(Settings, error)
	debounce time.Duration
	logger   *zap.Logger
}

// WatcherBuilderOption is a functional option for configuring a Watcher.
type WatcherBuilderOption func(*Watcher)

// WithDebounce sets the quiet period before a reload. Non-positive values are ignored.
//
// Parameters:
//   - d: the debounce period
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithDebounce(d time.Duration) WatcherBuilderOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the watcher's logger.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) WatcherBuilderOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher starts watching path. Changes are only delivered once Run is called.
// Panics if onChange is nil.
//
// Parameters:
//   - path: the settings file
//   - onChange: called with each reload result, from Run's goroutine
//   - options: functional options to configure the watcher
//
// Returns:
//   - *Watcher: the watcher
//   - error: an error if the directory cannot be watched
func NewWatcher(path string, onChange func(Settings, error), options ...WatcherBuilderOption) (*Watcher, error) {
	if onChange == nil {
		panic("config: nil onChange")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: DefaultDebounce,
		logger:   zap.NewNop(),
	}
	for _, option := range options {
		option(w)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("config: watch %s: %w", path, err)
	}
	w.fs = fsw
	return w, nil
}

// Run delivers reloads until ctx is done, then closes the watcher.
//
// Parameters:
//   - ctx: cancels the watch
//
// Returns:
//   - error: nil when ctx ends the watch, or the error that stopped it
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			s, err := Load(w.path)
			if err != nil {
				w.logger.Warn("settings reload failed",
					zap.String("component", "config"),
					zap.String("path", w.path),
					zap.Error(err),
				)
			} else {
				w.logger.Info("settings reloaded",
					zap.String("component", "config"),
					zap.String("path", w.path),
					zap.Int("items", len(s.Items)),
				)
			}
			w.onChange(s, err)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.onChange(Settings{}, fmt.Errorf("config: watch %s: %w", w.path, err))
		}
	}
}

// Watch is NewWatcher followed by Run.
//
// Parameters:
//   - ctx: cancels the watch
//   - path: the settings file
//   - onChange: called with each reload result
//   - options: functional options to configure the watcher
//
// Returns:
//   - error: an error if the watch could not start
func Watch(ctx context.Context, path string, onChange func(Settings, error), options ...WatcherBuilderOption) error {
	w, err := NewWatcher(path, onChange, options...)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}

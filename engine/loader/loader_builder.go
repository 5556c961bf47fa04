package loader

import (
	"time"

	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithRoot sets the directory relative icon references resolve against for the file backend.
//
// Parameters:
//   - dir: the icon directory
//
// Returns:
//   - LoaderBuilderOption: a function that applies the root option to a loader
func WithRoot(dir string) LoaderBuilderOption {
	return func(l *loader) {
		l.root = dir
	}
}

// WithIconPixels sets the edge length icons are scaled to. Zero keeps the decoded size.
//
// Parameters:
//   - pixels: the icon edge length, must be >= 0
//
// Returns:
//   - LoaderBuilderOption: a function that applies the icon size option to a loader
func WithIconPixels(pixels int) LoaderBuilderOption {
	return func(l *loader) {
		if pixels >= 0 {
			l.iconPixels = pixels
		}
	}
}

// WithRetries sets how many times a failed read is retried and the first wait between attempts.
//
// Parameters:
//   - retries: the number of retries after the first attempt
//   - interval: the initial backoff interval, must be > 0
//
// Returns:
//   - LoaderBuilderOption: a function that applies the retry option to a loader
func WithRetries(retries uint64, interval time.Duration) LoaderBuilderOption {
	return func(l *loader) {
		l.maxRetries = retries
		if interval > 0 {
			l.retryInterval = interval
		}
	}
}

// WithWorkers sets the number of goroutines Prefetch loads icons on.
//
// Parameters:
//   - n: the worker count (minimum 1)
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		l.workers = max(n, 1)
	}
}

// WithLogger sets the logger used for load failures and prefetch summaries.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

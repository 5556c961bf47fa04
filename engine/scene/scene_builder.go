package scene

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/wireframe"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's display name.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithConfig replaces the default configuration. NewScene validates it and fails on an
// invalid one.
//
// Parameters:
//   - cfg: the initial configuration
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithConfig(cfg Config) SceneBuilderOption {
	return func(s *scene) {
		s.cfg = cfg
	}
}

// WithItems sets the initial item list.
//
// Parameters:
//   - items: the items to place on the globe
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithItems(items ...common.Item) SceneBuilderOption {
	return func(s *scene) {
		s.pendingItems = items
	}
}

// WithResolver sets the icon resolver. Without one every item is drawn as a placeholder.
//
// Parameters:
//   - resolver: the resolver that turns icon references into images
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithResolver(resolver loader.Resolver) SceneBuilderOption {
	return func(s *scene) {
		s.resolver = resolver
	}
}

// WithHullBuilder replaces the default brute-force hull builder. Config.HullEpsilon has no
// effect on a supplied builder.
//
// Parameters:
//   - builder: the hull builder
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithHullBuilder(builder wireframe.HullWireframeBuilder) SceneBuilderOption {
	return func(s *scene) {
		if builder != nil {
			s.hull = builder
			s.customHull = true
		}
	}
}

// WithLogger sets the scene's logger.
//
// Parameters:
//   - logger: the logger, nil keeps the no-op default
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}

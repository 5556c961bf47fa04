package depth

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
)

// DepthCompositorBuilderOption is a functional option for configuring a DepthCompositor.
type DepthCompositorBuilderOption func(c *depthCompositor)

// WithMinOpacity sets the opacity of elements at the far extent of the sphere.
// The value is clamped to [0, 1].
//
// Parameters:
//   - v: the opacity floor
//
// Returns:
//   - DepthCompositorBuilderOption: option function to apply
func WithMinOpacity(v float64) DepthCompositorBuilderOption {
	return func(c *depthCompositor) {
		if common.IsFinite(v) {
			c.minOpacity = common.Clamp(v, 0, 1)
		}
	}
}

// WithExponent sets the falloff exponent. Non-positive values are ignored.
//
// Parameters:
//   - v: the exponent applied to the normalized depth
//
// Returns:
//   - DepthCompositorBuilderOption: option function to apply
func WithExponent(v float64) DepthCompositorBuilderOption {
	return func(c *depthCompositor) {
		if v > 0 && common.IsFinite(v) {
			c.exponent = v
		}
	}
}

// WithEpsilon sets the smallest near-extent distance. Non-positive values are ignored.
//
// Parameters:
//   - v: the epsilon
//
// Returns:
//   - DepthCompositorBuilderOption: option function to apply
func WithEpsilon(v float64) DepthCompositorBuilderOption {
	return func(c *depthCompositor) {
		if v > 0 {
			c.epsilon = v
		}
	}
}

package wireframe

// HullWireframeBuilderOption is a functional option for configuring a HullWireframeBuilder.
// Use the With* functions to create options.
type HullWireframeBuilderOption func(b *bruteForceHull)

// WithEpsilon sets the plane-side tolerance used when deciding whether a triple is a hull
// face. Points closer to the plane than eps are treated as coplanar. Non-positive values
// are ignored.
//
// Parameters:
//   - eps: the tolerance in world units
//
// Returns:
//   - HullWireframeBuilderOption: option function to apply
func WithEpsilon(eps float64) HullWireframeBuilderOption {
	return func(b *bruteForceHull) {
		if eps > 0 {
			b.epsilon = eps
		}
	}
}

// WithAreaEpsilon sets the cross-product magnitude below which a triple is skipped as
// degenerate. Non-positive values are ignored.
//
// Parameters:
//   - eps: the minimum |(pj-pi)×(pk-pi)|
//
// Returns:
//   - HullWireframeBuilderOption: option function to apply
func WithAreaEpsilon(eps float64) HullWireframeBuilderOption {
	return func(b *bruteForceHull) {
		if eps > 0 {
			b.areaEpsilon = eps
		}
	}
}

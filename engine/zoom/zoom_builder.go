package zoom

// ZoomBuilderOption is a functional option for configuring a Zoom.
type ZoomBuilderOption func(z *springZoom)

// WithInitial sets the padding the zoom starts and resets to.
//
// Parameters:
//   - padding: the initial padding, must be > 0
//
// Returns:
//   - ZoomBuilderOption: option function to apply
func WithInitial(padding float64) ZoomBuilderOption {
	return func(z *springZoom) {
		if padding > 0 {
			z.initial = padding
		}
	}
}

// WithBounds sets the padding range scrolling can reach. Invalid ranges are ignored.
//
// Parameters:
//   - min: the smallest padding (closest camera)
//   - max: the largest padding
//
// Returns:
//   - ZoomBuilderOption: option function to apply
func WithBounds(min, max float64) ZoomBuilderOption {
	return func(z *springZoom) {
		if min > 0 && max >= min {
			z.min, z.max = min, max
		}
	}
}

// WithStep sets the padding factor per scroll notch.
//
// Parameters:
//   - step: the factor, must be > 1
//
// Returns:
//   - ZoomBuilderOption: option function to apply
func WithStep(step float64) ZoomBuilderOption {
	return func(z *springZoom) {
		if step > 1 {
			z.step = step
		}
	}
}

// WithSpring sets the spring's angular frequency and damping ratio.
//
// Parameters:
//   - frequency: angular frequency, must be > 0
//   - damping: damping ratio, must be > 0
//
// Returns:
//   - ZoomBuilderOption: option function to apply
func WithSpring(frequency, damping float64) ZoomBuilderOption {
	return func(z *springZoom) {
		if frequency > 0 && damping > 0 {
			z.frequency, z.damping = frequency, damping
		}
	}
}

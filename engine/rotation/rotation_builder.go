package rotation

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultAutoRotateSpeed is the idle spin rate in radians per second.
	DefaultAutoRotateSpeed = 0.25
	// DefaultDragSensitivity is the rotation, in radians, for a drag across the
	// surface's shorter side.
	DefaultDragSensitivity = math.Pi
	// DefaultDecayRate is the exponential momentum decay rate per second.
	DefaultDecayRate = 2.5
	// DefaultResumeDelay is how long the globe rests before spinning again, in seconds.
	DefaultResumeDelay = 1.0
	// DefaultReleaseThreshold is the angular speed, in radians per second, below which
	// the globe is considered at rest.
	DefaultReleaseThreshold = 0.05
	// DefaultMinDelta is the smallest pointer displacement that rotates the globe.
	DefaultMinDelta = 1e-6
)

// RotationControllerBuilderOption is a functional option for configuring a RotationController.
type RotationControllerBuilderOption func(rc *rotationController)

// WithAutoRotate enables or disables the idle spin.
//
// Parameters:
//   - enabled: whether the globe spins while idle
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithAutoRotate(enabled bool) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		rc.autoRotate = enabled
	}
}

// WithAutoRotateSpeed sets the idle spin rate. Negative values spin the other way.
//
// Parameters:
//   - speed: radians per second
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithAutoRotateSpeed(speed float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		rc.autoRotateSpeed = speed
	}
}

// WithDragSensitivity sets the rotation per unit of normalized pointer travel.
//
// Parameters:
//   - sensitivity: radians per normalized unit, must be > 0
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithDragSensitivity(sensitivity float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if sensitivity > 0 {
			rc.dragSensitivity = sensitivity
		}
	}
}

// WithDecayRate sets the exponential momentum decay rate.
//
// Parameters:
//   - rate: decay per second, must be >= 0
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithDecayRate(rate float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if rate >= 0 {
			rc.decayRate = rate
		}
	}
}

// WithResumeDelay sets how long the globe rests after a drag or momentum before the idle
// spin resumes.
//
// Parameters:
//   - seconds: the delay, must be >= 0
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithResumeDelay(seconds float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if seconds >= 0 {
			rc.resumeDelay = seconds
		}
	}
}

// WithReleaseThreshold sets the angular speed separating momentum from rest.
//
// Parameters:
//   - threshold: radians per second, must be >= 0
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithReleaseThreshold(threshold float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if threshold >= 0 {
			rc.releaseThreshold = threshold
		}
	}
}

// WithMinDelta sets the smallest pointer displacement that produces rotation.
//
// Parameters:
//   - delta: normalized units, must be >= 0
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithMinDelta(delta float64) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if delta >= 0 {
			rc.minDelta = delta
		}
	}
}

// WithInitialOrientation sets the orientation the controller starts from and returns to
// on Reset.
//
// Parameters:
//   - q: the orientation; it is normalized
//
// Returns:
//   - RotationControllerBuilderOption: option function to apply
func WithInitialOrientation(q mgl64.Quat) RotationControllerBuilderOption {
	return func(rc *rotationController) {
		if q.Len() > 0 {
			rc.initial = q.Normalize()
		}
	}
}

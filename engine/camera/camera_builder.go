package camera

import (
	"github.com/go-gl/mathgl/mgl64"
)

type CameraBuilderOption func(*cameraImpl)

// WithUp sets the camera's world up vector.
//
// Parameters:
//   - up: up vector
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's up vector
func WithUp(up mgl64.Vec3) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.up = up
	}
}

// WithFrame sets the camera's initial framing parameters.
//
// Parameters:
//   - frame: distance, field of view and clip planes
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's frame
func WithFrame(frame Frame) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.frame = frame
	}
}

// WithAspect sets the camera's aspect ratio.
//
// Parameters:
//   - aspect: the aspect ratio (width / height)
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float64) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithController sets the camera's controller.
//
// Parameters:
//   - ctrl: the CameraController to attach
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's controller
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}

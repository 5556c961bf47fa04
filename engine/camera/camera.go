package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/go-gl/mathgl/mgl64"
)

type cameraImpl struct {
	mu *sync.Mutex

	up mgl64.Vec3

	frame  Frame
	aspect float64

	viewMatrix           mgl64.Mat4
	projectionMatrix     mgl64.Mat4
	viewProjectionMatrix mgl64.Mat4

	controller CameraController
}

// Camera defines the interface for the camera system.
// The camera holds a Frame (distance, field of view, clip planes) and the viewport
// aspect ratio, and computes view/projection matrices from its CameraController.
type Camera interface {
	// Up returns the world up vector used to build the view matrix.
	//
	// Returns:
	//   - mgl64.Vec3: up vector
	Up() mgl64.Vec3

	// Frame returns the current framing parameters.
	//
	// Returns:
	//   - Frame: distance, field of view and clip planes
	Frame() Frame

	// SetFrame replaces the framing parameters, moves the controller to the frame's
	// distance and recomputes matrices.
	//
	// Parameters:
	//   - frame: the new frame
	SetFrame(frame Frame)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float64: the aspect ratio
	Aspect() float64

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Non-positive values are ignored.
	//
	// Parameters:
	//   - aspect: the aspect ratio
	SetAspect(aspect float64)

	// ViewMatrix returns the current view matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the view matrix
	ViewMatrix() mgl64.Mat4

	// ProjectionMatrix returns the current perspective projection matrix.
	//
	// Returns:
	//   - mgl64.Mat4: the projection matrix
	ProjectionMatrix() mgl64.Mat4

	// ViewProjectionMatrix returns projection * view.
	//
	// Returns:
	//   - mgl64.Mat4: the combined view-projection matrix
	ViewProjectionMatrix() mgl64.Mat4

	// Frustum returns the view frustum extracted from the view-projection matrix.
	//
	// Returns:
	//   - common.Frustum: the six normalized planes
	Frustum() common.Frustum

	// Controller returns the attached CameraController.
	//
	// Returns:
	//   - CameraController: the attached controller
	Controller() CameraController

	// Update re-reads the controller pose and recomputes matrices.
	Update()
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera. When no controller is supplied a default orbit
// controller is created.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		up:     mgl64.Vec3{0, 1, 0},
		frame:  Frame{Distance: 5, FovY: 45, Near: 0.1, Far: 100},
		aspect: 1.0,
	}
	for _, option := range options {
		option(c)
	}
	if c.controller == nil {
		c.controller = NewCameraController()
	}
	c.controller.SetDistance(c.frame.Distance)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Up() mgl64.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.up
}

func (c *cameraImpl) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frame
}

func (c *cameraImpl) SetFrame(frame Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frame = frame
	c.controller.SetDistance(frame.Distance)
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 || !common.IsFinite(aspect) {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() mgl64.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Frustum() common.Frustum {
	c.mu.Lock()
	defer c.mu.Unlock()
	return common.ExtractFrustumFromMatrix(c.viewProjectionMatrix)
}

func (c *cameraImpl) Controller() CameraController {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.controller
}

func (c *cameraImpl) Update() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateMatrices()
}

// updateMatrices recalculates the view, projection and view-projection matrices from the
// controller pose and the current frame.
// Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl64.LookAtV(c.controller.Position(), c.controller.Target(), c.up)
	c.projectionMatrix = mgl64.Perspective(mgl64.DegToRad(c.frame.FovY), c.aspect, c.frame.Near, c.frame.Far)
	c.viewProjectionMatrix = c.projectionMatrix.Mul4(c.viewMatrix)
}

package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/go-gl/mathgl/mgl64"
)

// cameraControllerImpl is the orbit implementation of CameraController.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + spherical coords)
	position mgl64.Vec3
	target   mgl64.Vec3

	// Spherical coordinates (offset from target)
	distance  float64
	azimuth   float64 // Horizontal angle around Y axis
	elevation float64 // Vertical angle from horizontal plane

	minElevation float64
	maxElevation float64
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates an orbit controller looking at the origin from +Z.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu: &sync.Mutex{},

		distance:  5.0,
		azimuth:   0.0,
		elevation: 0.0,

		minElevation: -math.Pi/2 + 0.05,
		maxElevation: math.Pi/2 - 0.05,
	}

	for _, option := range options {
		option(cc)
	}

	cc.elevation = common.Clamp(cc.elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
	return cc
}

// updatePosition recomputes the camera position from spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev, sinElev := math.Cos(cc.elevation), math.Sin(cc.elevation)
	cosAzim, sinAzim := math.Cos(cc.azimuth), math.Sin(cc.azimuth)

	cc.position = cc.target.Add(mgl64.Vec3{
		cc.distance * cosElev * sinAzim,
		cc.distance * sinElev,
		cc.distance * cosElev * cosAzim,
	})
}

// localAxes computes the camera's local coordinate axes consistent with the LookAt matrix.
// If position and target coincide, all returned vectors are zero.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) localAxes() (right, up, forward mgl64.Vec3) {
	backward := cc.position.Sub(cc.target)
	bLen := backward.Len()
	if bLen < 1e-12 {
		return
	}
	backward = backward.Mul(1 / bLen)

	// right = normalize(cross(worldUp, backward)) where worldUp = (0, 1, 0)
	right = mgl64.Vec3{0, 1, 0}.Cross(backward)
	rLen := right.Len()
	if rLen < 1e-12 {
		return mgl64.Vec3{}, mgl64.Vec3{}, mgl64.Vec3{}
	}
	right = right.Mul(1 / rLen)

	up = backward.Cross(right)
	forward = backward.Mul(-1)
	return
}

func (cc *cameraControllerImpl) Position() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position
}

func (cc *cameraControllerImpl) Target() mgl64.Vec3 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target
}

func (cc *cameraControllerImpl) Pose() Pose {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	right, up, forward := cc.localAxes()
	return Pose{
		Position: cc.position,
		Target:   cc.target,
		Right:    right,
		Up:       up,
		Forward:  forward,
	}
}

func (cc *cameraControllerImpl) Distance() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.distance
}

func (cc *cameraControllerImpl) SetDistance(distance float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	if distance <= 0 || !common.IsFinite(distance) {
		return
	}
	cc.distance = distance
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Azimuth() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.azimuth = azimuth
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Elevation() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float64) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.elevation = common.Clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.updatePosition()
}

func (cc *cameraControllerImpl) MinElevation() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minElevation
}

func (cc *cameraControllerImpl) MaxElevation() float64 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxElevation
}

package camera

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a snapshot of where the camera is and how it is oriented. Right, Up and
// Forward are unit vectors consistent with the LookAt view matrix.
type Pose struct {
	Position mgl64.Vec3
	Target   mgl64.Vec3
	Right    mgl64.Vec3
	Up       mgl64.Vec3
	Forward  mgl64.Vec3
}

// CameraController owns the camera's position relative to the globe. The globe itself
// turns in place, so the controller only orbits: it keeps the target at the globe center
// and places the camera from distance, azimuth and elevation.
type CameraController interface {
	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - mgl64.Vec3: world-space camera position
	Position() mgl64.Vec3

	// Target returns the look-at point.
	//
	// Returns:
	//   - mgl64.Vec3: world-space target position
	Target() mgl64.Vec3

	// Pose returns the position, target and local axes in one consistent snapshot.
	//
	// Returns:
	//   - Pose: the current pose
	Pose() Pose

	// Distance returns the current orbit distance from the target.
	//
	// Returns:
	//   - float64: current distance from target
	Distance() float64

	// SetDistance sets the orbit distance. Non-positive values are ignored.
	//
	// Parameters:
	//   - distance: new distance from target
	SetDistance(distance float64)

	// Azimuth returns the current horizontal angle around the Y axis.
	//
	// Returns:
	//   - float64: azimuth in radians
	Azimuth() float64

	// SetAzimuth sets the horizontal angle directly and recomputes position.
	//
	// Parameters:
	//   - azimuth: new horizontal angle in radians
	SetAzimuth(azimuth float64)

	// Elevation returns the current vertical angle from the horizontal plane.
	//
	// Returns:
	//   - float64: elevation in radians
	Elevation() float64

	// SetElevation sets the vertical angle directly, clamped to min/max bounds.
	//
	// Parameters:
	//   - elevation: new vertical angle in radians
	SetElevation(elevation float64)

	// MinElevation returns the minimum allowed elevation angle.
	//
	// Returns:
	//   - float64: minimum elevation in radians
	MinElevation() float64

	// MaxElevation returns the maximum allowed elevation angle.
	//
	// Returns:
	//   - float64: maximum elevation in radians
	MaxElevation() float64
}

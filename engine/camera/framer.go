package camera

import (
	"math"
)

const (
	// minNear is the smallest near-plane distance SuggestedNearFar returns.
	minNear = 0.01

	// spanFactor scales the sphere radius into the depth span kept around the camera
	// distance.
	spanFactor = 2.2
)

// Frame is the set of camera parameters needed to keep a sphere of a given radius fully
// visible. It changes only when the viewport aspect, the radius, the field of view or the
// padding factor changes.
type Frame struct {
	// Distance from the camera to the sphere center.
	Distance float64
	// FovY is the vertical field of view in degrees.
	FovY float64
	// Near and Far are the clip plane distances.
	Near float64
	Far  float64
}

// DistanceForFit returns the camera distance at which a sphere of radius*padding fills
// the field of view along its tighter axis. The vertical and horizontal half angles are
// fitted independently and the larger distance wins, so the sphere is visible on both
// axes for any aspect ratio. Non-positive aspect ratios are treated as square.
//
// Parameters:
//   - radius: sphere radius
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport width divided by height
//   - padding: multiplier applied to the radius before fitting
//
// Returns:
//   - float64: the camera distance from the sphere center
func DistanceForFit(radius, fovYDegrees, aspect, padding float64) float64 {
	if aspect <= 0 {
		aspect = 1
	}
	halfV := fovYDegrees * math.Pi / 180 / 2
	halfH := math.Atan(math.Tan(halfV) * aspect)

	padded := radius * padding
	return math.Max(padded/math.Tan(halfV), padded/math.Tan(halfH))
}

// SuggestedNearFar returns clip distances that bracket a sphere of the given radius seen
// from distance. The near plane never drops below 0.01 and the far plane always sits at
// least one unit past it.
//
// Parameters:
//   - radius: sphere radius
//   - distance: camera distance from the sphere center
//
// Returns:
//   - near: near clip distance
//   - far: far clip distance
func SuggestedNearFar(radius, distance float64) (near, far float64) {
	span := radius * spanFactor
	near = math.Max(minNear, distance-span)
	far = math.Max(near+1, distance+span)
	return near, far
}

// FrameFor computes the full Frame for a sphere.
//
// Parameters:
//   - radius: sphere radius
//   - fovYDegrees: vertical field of view in degrees
//   - aspect: viewport width divided by height
//   - padding: multiplier applied to the radius before fitting
//
// Returns:
//   - Frame: distance, field of view and clip planes
func FrameFor(radius, fovYDegrees, aspect, padding float64) Frame {
	d := DistanceForFit(radius, fovYDegrees, aspect, padding)
	near, far := SuggestedNearFar(radius, d)
	return Frame{Distance: d, FovY: fovYDegrees, Near: near, Far: far}
}

package renderer

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/go-gl/mathgl/mgl64"
)

// quadUVs are the texture coordinates of billboardCorners, v growing upward.
var quadUVs = [4][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

// quadTriangles indexes billboardCorners into two counter-clockwise triangles.
var quadTriangles = [6]int{0, 1, 2, 0, 2, 3}

// billboardCorners returns the world-space corners of a camera-facing quad, counter-clockwise
// from the bottom-left.
func billboardCorners(b Billboard, right, up mgl64.Vec3) [4]mgl64.Vec3 {
	half := b.Size / 2
	r := right.Mul(half)
	u := up.Mul(half)
	return [4]mgl64.Vec3{
		b.Position.Sub(r).Sub(u),
		b.Position.Add(r).Sub(u),
		b.Position.Add(r).Add(u),
		b.Position.Sub(r).Add(u),
	}
}

// segmentAlpha is the final alpha of a wireframe vertex.
func segmentAlpha(w Wireframe, vertexOpacity float64) float64 {
	return common.Clamp(float64(w.Color[3])*w.Opacity*vertexOpacity, 0, 1)
}

package camera

import (
	"fmt"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestDistanceForFitRoundTrip(t *testing.T) {
	const radius, fov, padding = 1.6, 45.0, 1.0
	half := fov * math.Pi / 180 / 2

	for _, tc := range []struct {
		name   string
		aspect float64
		// expected half angle subtended by the padded radius at the returned distance
		binding float64
	}{
		{"square", 1.0, half},
		{"landscape", 16.0 / 9.0, half},
		{"portrait", 0.5, math.Atan(math.Tan(half) * 0.5)},
		{"tall", 0.2, math.Atan(math.Tan(half) * 0.2)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			d := DistanceForFit(radius, fov, tc.aspect, padding)
			got := math.Atan(radius * padding / d)
			if math.Abs(got-tc.binding) > 1e-12 {
				t.Fatalf("atan(r/d) = %v, want %v", got, tc.binding)
			}
		})
	}
}

func TestDistanceForFitPicksLargerAxis(t *testing.T) {
	for _, aspect := range []float64{0.25, 0.5, 1, 1.5, 3} {
		half := 22.5 * math.Pi / 180
		vertical := 2 / math.Tan(half)
		horizontal := 2 / math.Tan(math.Atan(math.Tan(half)*aspect))
		want := math.Max(vertical, horizontal)
		if got := DistanceForFit(2, 45, aspect, 1); math.Abs(got-want) > 1e-12 {
			t.Errorf("aspect %v: got %v, want %v", aspect, got, want)
		}
	}
}

func TestDistanceForFitPaddingScales(t *testing.T) {
	base := DistanceForFit(1, 60, 1.3, 1)
	padded := DistanceForFit(1, 60, 1.3, 1.25)
	if math.Abs(padded-1.25*base) > 1e-12 {
		t.Fatalf("padding must scale distance linearly: %v vs %v", padded, 1.25*base)
	}
}

func TestSuggestedNearFarOrdering(t *testing.T) {
	for _, radius := range []float64{1e-4, 0.01, 0.5, 1.6, 10, 1e4} {
		for _, distance := range []float64{1e-4, 0.01, 0.5, 1, 3.86, 100, 1e5} {
			t.Run(fmt.Sprintf("r=%g/d=%g", radius, distance), func(t *testing.T) {
				near, far := SuggestedNearFar(radius, distance)
				if !(near < far) {
					t.Fatalf("near %v must be < far %v", near, far)
				}
				if near < 0.01 {
					t.Fatalf("near %v below 0.01", near)
				}
			})
		}
	}
}

func TestSuggestedNearFarValues(t *testing.T) {
	near, far := SuggestedNearFar(1, 10)
	if math.Abs(near-7.8) > 1e-12 || math.Abs(far-12.2) > 1e-12 {
		t.Fatalf("got (%v, %v), want (7.8, 12.2)", near, far)
	}
	near, far = SuggestedNearFar(1, 1)
	if near != 0.01 || math.Abs(far-3.2) > 1e-12 {
		t.Fatalf("got (%v, %v), want (0.01, 3.2)", near, far)
	}
}

func TestFrameBracketsSphere(t *testing.T) {
	f := FrameFor(1.6, 45, 1, 1)
	if f.Near > f.Distance-1.6 {
		t.Fatalf("near plane %v cuts the sphere at distance %v", f.Near, f.Distance)
	}
	if f.Far < f.Distance+1.6 {
		t.Fatalf("far plane %v cuts the sphere at distance %v", f.Far, f.Distance)
	}
}

func TestCameraProjectsRimToViewportEdge(t *testing.T) {
	const radius = 1.6
	f := FrameFor(radius, 45, 1, 1)
	c := NewCamera(WithFrame(f), WithAspect(1))

	// The point straight above the center, perpendicular to the view direction, lands on
	// the top edge of the viewport when the distance was fitted with the tangent rule.
	clip := c.ViewProjectionMatrix().Mul4x1(mgl64.Vec4{0, radius, 0, 1})
	if ndcY := clip.Y() / clip.W(); math.Abs(ndcY-1) > 1e-9 {
		t.Fatalf("rim projects to ndc y %v, want 1", ndcY)
	}
	clip = c.ViewProjectionMatrix().Mul4x1(mgl64.Vec4{radius, 0, 0, 1})
	if ndcX := clip.X() / clip.W(); math.Abs(ndcX-1) > 1e-9 {
		t.Fatalf("rim projects to ndc x %v, want 1", ndcX)
	}
}

func TestCameraFrustum(t *testing.T) {
	f := FrameFor(1, 45, 1.5, 1.1)
	c := NewCamera(WithFrame(f), WithAspect(1.5))
	fr := c.Frustum()
	if !fr.IntersectsSphere(mgl64.Vec3{}, 1) {
		t.Fatal("globe must be inside its own frustum")
	}
	if fr.IntersectsSphere(mgl64.Vec3{0, 0, f.Distance + f.Far}, 0.5) {
		t.Fatal("a sphere behind the camera must be culled")
	}
	if fr.IntersectsSphere(mgl64.Vec3{100, 0, 0}, 0.5) {
		t.Fatal("a sphere far to the side must be culled")
	}
}

func TestControllerAxes(t *testing.T) {
	cc := NewCameraController(WithDistance(4))
	pose := cc.Pose()
	if !pose.Position.ApproxEqual(mgl64.Vec3{0, 0, 4}) {
		t.Fatalf("default position %v, want (0,0,4)", pose.Position)
	}
	if !pose.Right.ApproxEqual(mgl64.Vec3{1, 0, 0}) || !pose.Up.ApproxEqual(mgl64.Vec3{0, 1, 0}) ||
		!pose.Forward.ApproxEqual(mgl64.Vec3{0, 0, -1}) {
		t.Fatalf("unexpected axes %+v", pose)
	}

	cc.SetElevation(math.Pi / 6)
	pose = cc.Pose()
	if math.Abs(pose.Up.Dot(pose.Forward)) > 1e-12 || math.Abs(pose.Up.Dot(pose.Right)) > 1e-12 {
		t.Fatalf("axes not orthogonal: %+v", pose)
	}
	if math.Abs(pose.Position.Len()-4) > 1e-12 {
		t.Fatalf("distance drifted to %v", pose.Position.Len())
	}
	if pose.Up.Y() >= 1 || pose.Up.Z() >= 0 {
		t.Fatalf("tilting the camera up must lean its up axis backwards, got %v", pose.Up)
	}
}

func TestControllerClampsElevation(t *testing.T) {
	cc := NewCameraController(WithElevationBounds(-0.5, 0.5), WithElevation(2))
	if cc.Elevation() != 0.5 {
		t.Fatalf("elevation %v, want clamp to 0.5", cc.Elevation())
	}
	cc.SetElevation(-3)
	if cc.Elevation() != -0.5 {
		t.Fatalf("elevation %v, want clamp to -0.5", cc.Elevation())
	}
	cc.SetDistance(-1)
	if cc.Distance() != 5 {
		t.Fatalf("negative distance must be ignored, got %v", cc.Distance())
	}
}

package depth

import (
	"math"
	"math/rand"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl64"
)

func TestOpacityExtremes(t *testing.T) {
	c := NewDepthCompositor()
	cam := mgl64.Vec3{0, 0, 4}

	if got := c.Opacity(cam, mgl64.Vec3{0, 0, 1}); math.Abs(got-1) > 1e-12 {
		t.Fatalf("nearest point opacity %v, want 1", got)
	}
	if got := c.Opacity(cam, mgl64.Vec3{0, 0, -1}); math.Abs(got-DefaultMinOpacity) > 1e-12 {
		t.Fatalf("farthest point opacity %v, want %v", got, DefaultMinOpacity)
	}
}

func TestOpacityExponent(t *testing.T) {
	cam := mgl64.Vec3{0, 0, 4}
	// On the unit sphere, z = 1/8 is exactly halfway between the near and far extents.
	elem := mgl64.Vec3{math.Sqrt(1 - 1.0/64), 0, 1.0 / 8}

	for _, exp := range []float64{0.5, 1, 1.5, 3} {
		c := NewDepthCompositor(WithExponent(exp), WithMinOpacity(0.2))
		want := 1 - 0.8*math.Pow(0.5, exp)
		if got := c.Opacity(cam, elem); math.Abs(got-want) > 1e-9 {
			t.Errorf("exponent %v: opacity %v, want %v", exp, got, want)
		}
	}
}

func TestOpacityBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for _, minOpacity := range []float64{0, 0.15, 0.5, 1} {
		c := NewDepthCompositor(WithMinOpacity(minOpacity))
		for range 2000 {
			cam := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(rng.Float64() * 20)
			elem := mgl64.Vec3{rng.NormFloat64(), rng.NormFloat64(), rng.NormFloat64()}.Mul(rng.Float64() * 5)
			got := c.Opacity(cam, elem)
			if got < minOpacity-1e-12 || got > 1+1e-12 {
				t.Fatalf("opacity %v outside [%v, 1] for cam %v elem %v", got, minOpacity, cam, elem)
			}
		}
	}
}

func TestOpacityMonotonic(t *testing.T) {
	c := NewDepthCompositor()
	cam := mgl64.Vec3{0, 0, 3.86}
	const radius = 1.6

	prevD, prevOpacity := -1.0, 2.0
	for step := 0; step <= 180; step++ {
		angle := float64(step) * math.Pi / 180
		elem := mgl64.Vec3{math.Sin(angle), 0, math.Cos(angle)}.Mul(radius)
		d := cam.Sub(elem).Len()
		o := c.Opacity(cam, elem)
		if d < prevD {
			t.Fatalf("test walk must move away from the camera")
		}
		if o > prevOpacity+1e-12 {
			t.Fatalf("opacity increased from %v to %v as distance grew to %v", prevOpacity, o, d)
		}
		prevD, prevOpacity = d, o
	}
}

func TestComposeMatchesOpacity(t *testing.T) {
	c := NewDepthCompositor()
	cam := mgl64.Vec3{1, 2, 5}
	positions := []mgl64.Vec3{{1, 0, 0}, {0, 1, 0}, {0, 0, -1}, {0.5, 0.5, 0.7}}

	buf := make([]float64, 0, 1)
	out := c.Compose(cam, positions, buf)
	if len(out) != len(positions) {
		t.Fatalf("got %d opacities, want %d", len(out), len(positions))
	}
	for i, p := range positions {
		if out[i] != c.Opacity(cam, p) {
			t.Fatalf("compose[%d] = %v, want %v", i, out[i], c.Opacity(cam, p))
		}
	}

	reused := c.Compose(cam, positions[:2], out)
	if &reused[0] != &out[0] {
		t.Fatal("compose must reuse a buffer with enough capacity")
	}
}

func TestOpacityDegenerate(t *testing.T) {
	c := NewDepthCompositor()
	if got := c.Opacity(mgl64.Vec3{}, mgl64.Vec3{}); got != 1 {
		t.Fatalf("coincident camera and element: opacity %v, want 1", got)
	}
	if got := c.Opacity(mgl64.Vec3{0, 0, 0.5}, mgl64.Vec3{0, 0, -1}); got < c.MinOpacity() || got > 1 {
		t.Fatalf("camera inside sphere: opacity %v out of range", got)
	}
}

func TestPrepareMarksMaterial(t *testing.T) {
	m := material.NewMaterial()
	if m.BlendEnabled() || !m.DepthTestEnabled() || !m.DepthWriteEnabled() {
		t.Fatal("new materials start opaque and depth tested")
	}
	NewDepthCompositor().Prepare(m)
	if !m.BlendEnabled() || m.DepthTestEnabled() || m.DepthWriteEnabled() {
		t.Fatal("prepared material must blend and skip the depth buffer")
	}
	NewDepthCompositor().Prepare(nil)
}

func TestOptionsValidation(t *testing.T) {
	c := NewDepthCompositor(WithMinOpacity(-2), WithExponent(0), WithExponent(math.NaN()))
	if c.MinOpacity() != 0 {
		t.Fatalf("min opacity %v, want clamp to 0", c.MinOpacity())
	}
	if c.Exponent() != DefaultExponent {
		t.Fatalf("invalid exponents must be ignored, got %v", c.Exponent())
	}
	if NewDepthCompositor(WithMinOpacity(7)).MinOpacity() != 1 {
		t.Fatal("min opacity must clamp to 1")
	}
}

package renderer

import (
	"image"
	"image/color"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl64"
)

func testCamera(aspect float64) CameraParams {
	eye := mgl64.Vec3{0, 0, 5}
	return CameraParams{
		Position:   eye,
		Up:         mgl64.Vec3{0, 1, 0},
		Right:      mgl64.Vec3{1, 0, 0},
		Distance:   5,
		FovY:       45,
		Aspect:     aspect,
		Near:       0.1,
		Far:        20,
		View:       mgl64.LookAtV(eye, mgl64.Vec3{}, mgl64.Vec3{0, 1, 0}),
		Projection: mgl64.Perspective(mgl64.DegToRad(45), aspect, 0.1, 20),
	}
}

func newSoftware(t *testing.T, w, h int) Renderer {
	t.Helper()
	r, err := NewRenderer(BackendTypeSoftware, Offscreen{w, h}, WithClearColor(color.Black))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	return r
}

func countLit(img image.Image) int {
	lit := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			if r|g|bl != 0 {
				lit++
			}
		}
	}
	return lit
}

func blendedMaterial() material.Material {
	m := material.NewMaterial()
	m.SetBlendEnabled(true)
	m.SetDepthTestEnabled(false)
	m.SetDepthWriteEnabled(false)
	return m
}

func TestSoftwareEmptyFrameIsBackground(t *testing.T) {
	r := newSoftware(t, 64, 48)
	if err := r.Render(&Frame{Camera: testCamera(64.0 / 48)}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := r.Image()
	if img == nil || img.Bounds().Dx() != 64 || img.Bounds().Dy() != 48 {
		t.Fatalf("unexpected image %v", img)
	}
	if n := countLit(img); n != 0 {
		t.Fatalf("empty frame lit %d pixels", n)
	}
	if err := r.Render(nil); err != nil {
		t.Fatalf("nil frame must be a no-op, got %v", err)
	}
}

func TestSoftwarePlaceholderBillboard(t *testing.T) {
	r := newSoftware(t, 64, 64)
	frame := &Frame{
		Camera: testCamera(1),
		Billboards: []Billboard{{
			Label:    "missing",
			Position: mgl64.Vec3{},
			Tint:     [4]float32{1, 1, 1, 1},
			Size:     1,
			Opacity:  1,
			Material: blendedMaterial(),
		}},
	}
	if err := r.Render(frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := r.Image()
	if n := countLit(img); n == 0 {
		t.Fatal("placeholder billboard drew nothing")
	}
	if _, g, _, _ := img.At(32, 32).RGBA(); g == 0 {
		t.Fatal("placeholder must cover the center of the view")
	}
	if _, g, _, _ := img.At(1, 1).RGBA(); g != 0 {
		t.Fatal("placeholder must not cover the corner of the view")
	}
}

func TestSoftwareIconBillboard(t *testing.T) {
	icon := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(icon.Pix); i += 4 {
		icon.Pix[i], icon.Pix[i+3] = 255, 255
	}
	r := newSoftware(t, 64, 64)
	frame := &Frame{
		Camera: testCamera(1),
		Billboards: []Billboard{{
			Position: mgl64.Vec3{},
			Icon:     icon,
			Tint:     [4]float32{1, 1, 1, 1},
			Size:     1,
			Opacity:  1,
			Material: blendedMaterial(),
		}},
	}
	if err := r.Render(frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	red, green, _, _ := r.Image().At(32, 32).RGBA()
	if red == 0 || green != 0 {
		t.Fatalf("center pixel should sample the red icon, got r=%d g=%d", red, green)
	}
}

func TestSoftwareWireframe(t *testing.T) {
	r := newSoftware(t, 64, 64)
	frame := &Frame{
		Camera: testCamera(1),
		Wireframe: Wireframe{
			Segments: []Segment{{A: mgl64.Vec3{-1, 0, 0}, B: mgl64.Vec3{1, 0, 0}, OpacityA: 1, OpacityB: 1}},
			Color:    [4]float32{1, 1, 1, 1},
			Opacity:  1,
			Width:    2,
			Material: blendedMaterial(),
		},
	}
	if err := r.Render(frame); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if n := countLit(r.Image()); n == 0 {
		t.Fatal("wireframe segment drew nothing")
	}
}

func TestSoftwareResize(t *testing.T) {
	r := newSoftware(t, 32, 32)
	r.Resize(80, 40)
	r.Resize(0, 10)
	if err := r.Render(&Frame{Camera: testCamera(2)}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if b := r.Image().Bounds(); b.Dx() != 80 || b.Dy() != 40 {
		t.Fatalf("image %v after resize, want 80x40", b)
	}
}

func TestWGPUNeedsSurfaceDescriptor(t *testing.T) {
	if _, err := NewRenderer(BackendTypeWGPU, Offscreen{10, 10}); err == nil {
		t.Fatal("wgpu backend without a surface descriptor must fail")
	}
	if _, err := NewRenderer(RendererBackendType(9), Offscreen{10, 10}); err == nil {
		t.Fatal("unknown backend type must fail")
	}
}

func TestBillboardCorners(t *testing.T) {
	b := Billboard{Position: mgl64.Vec3{1, 2, 3}, Size: 2}
	c := billboardCorners(b, mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 1, 0})
	want := [4]mgl64.Vec3{{0, 1, 3}, {2, 1, 3}, {2, 3, 3}, {0, 3, 3}}
	for i := range c {
		if !c[i].ApproxEqual(want[i]) {
			t.Fatalf("corner %d = %v, want %v", i, c[i], want[i])
		}
	}
}

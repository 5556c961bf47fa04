package main

import (
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/loader"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// ebitenBackend keeps the latest frame and draws it onto ebiten's screen. Render runs in
// Update and Draw runs in Draw, so the two are guarded by a mutex.
type ebitenBackend struct {
	mu    sync.Mutex
	frame *renderer.Frame

	iconPixels int
	background color.NRGBA

	// textures caches uploaded icons by source image; placeholders by label.
	textures     map[image.Image]*ebiten.Image
	placeholders map[string]*ebiten.Image
}

var _ renderer.Backend = &ebitenBackend{}

func newEbitenBackend(iconPixels int, background color.NRGBA) *ebitenBackend {
	return &ebitenBackend{
		iconPixels:   max(iconPixels, 8),
		background:   background,
		textures:     make(map[image.Image]*ebiten.Image),
		placeholders: make(map[string]*ebiten.Image),
	}
}

func (b *ebitenBackend) Render(frame *renderer.Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frame = frame
	return nil
}

// forget drops cached textures, for when the icons were reloaded.
func (b *ebitenBackend) forget() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.textures {
		t.Deallocate()
	}
	clear(b.textures)
}

func (b *ebitenBackend) Draw(screen *ebiten.Image) {
	b.mu.Lock()
	defer b.mu.Unlock()

	screen.Fill(b.background)
	f := b.frame
	if f == nil {
		return
	}
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()
	vp := f.Camera.ViewProjection()

	wf := f.Wireframe
	width := float32(max(wf.Width, 1))
	for _, seg := range wf.Segments {
		x0, y0, ok0 := project(vp, seg.A, w, h)
		x1, y1, ok1 := project(vp, seg.B, w, h)
		if !ok0 || !ok1 {
			continue
		}
		alpha := wf.Opacity * (seg.OpacityA + seg.OpacityB) / 2
		vector.StrokeLine(screen, x0, y0, x1, y1, width, tintColor(wf.Color, alpha), true)
	}

	// Pixels per world unit at distance 1.
	focal := float64(h) / (2 * math.Tan(mgl64.DegToRad(f.Camera.FovY)/2))
	for _, bb := range f.Billboards {
		x, y, ok := project(vp, bb.Position, w, h)
		if !ok || bb.Depth <= 0 {
			continue
		}
		tex, tinted := b.texture(bb)
		px := bb.Size * focal / bb.Depth
		tw := tex.Bounds().Dx()
		scale := px / float64(tw)

		op := &ebiten.DrawImageOptions{}
		op.Filter = ebiten.FilterLinear
		op.GeoM.Translate(-float64(tw)/2, -float64(tex.Bounds().Dy())/2)
		op.GeoM.Scale(scale, scale)
		op.GeoM.Translate(float64(x), float64(y))
		if tinted {
			op.ColorScale.Scale(bb.Tint[0], bb.Tint[1], bb.Tint[2], bb.Tint[3])
		}
		op.ColorScale.ScaleAlpha(float32(bb.Opacity))
		screen.DrawImage(tex, op)
	}
}

// texture returns the billboard's icon, uploading it on first use. Missing icons get a
// placeholder that already carries the tint.
func (b *ebitenBackend) texture(bb renderer.Billboard) (*ebiten.Image, bool) {
	if bb.Icon != nil {
		t, ok := b.textures[bb.Icon]
		if !ok {
			t = ebiten.NewImageFromImage(bb.Icon)
			b.textures[bb.Icon] = t
		}
		return t, true
	}
	t, ok := b.placeholders[bb.Label]
	if !ok {
		tint := color.NRGBA{
			R: uint8(bb.Tint[0] * 255),
			G: uint8(bb.Tint[1] * 255),
			B: uint8(bb.Tint[2] * 255),
			A: 0xff,
		}
		t = ebiten.NewImageFromImage(loader.Placeholder(bb.Label, tint, b.iconPixels))
		b.placeholders[bb.Label] = t
	}
	return t, false
}

// project maps a world position to screen pixels. ok is false behind the camera.
func project(vp mgl64.Mat4, p mgl64.Vec3, w, h int) (x, y float32, ok bool) {
	clip := common.TransformPoint(vp, p)
	if clip.W() <= 1e-9 {
		return 0, 0, false
	}
	ndcX, ndcY := clip.X()/clip.W(), clip.Y()/clip.W()
	return float32((ndcX + 1) / 2 * float64(w)), float32((1 - ndcY) / 2 * float64(h)), true
}

func tintColor(c [4]float32, alpha float64) color.NRGBA {
	a := float64(c[3]) * alpha
	return color.NRGBA{
		R: uint8(c[0] * 255),
		G: uint8(c[1] * 255),
		B: uint8(c[2] * 255),
		A: uint8(common.Clamp(a, 0, 1) * 255),
	}
}

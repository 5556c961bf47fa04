package scene

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/rotation"
	"github.com/go-gl/mathgl/mgl64"
)

const frame = 1.0 / 60

type surface struct {
	w, h int
}

func (s *surface) Width() int  { return s.w }
func (s *surface) Height() int { return s.h }

type mapResolver map[string]image.Image

func (m mapResolver) Resolve(ref string) image.Image {
	return m[ref]
}

type recordingBackend struct {
	frames []*renderer.Frame
	err    error
}

func (b *recordingBackend) Render(f *renderer.Frame) error {
	b.frames = append(b.frames, f)
	return b.err
}

func makeItems(n int) []common.Item {
	items := make([]common.Item, n)
	for i := range items {
		items[i] = common.Item{Label: fmt.Sprintf("item-%02d", i), Icon: fmt.Sprintf("icon-%02d", i)}
	}
	return items
}

func newTestScene(t *testing.T, options ...SceneBuilderOption) Scene {
	t.Helper()
	s, err := NewScene(&surface{w: 800, h: 600}, options...)
	if err != nil {
		t.Fatalf("NewScene: %v", err)
	}
	return s
}

func TestNewSceneBuildsLayout(t *testing.T) {
	s := newTestScene(t, WithItems(makeItems(12)...))
	cfg := s.Config()

	points := s.Points()
	if len(points) != 12 {
		t.Fatalf("points = %d, want 12", len(points))
	}
	for i, p := range points {
		if math.Abs(p.Position.Len()-cfg.Radius) > 1e-6*cfg.Radius {
			t.Errorf("point %d at |%v| = %g, want %g", i, p.Position, p.Position.Len(), cfg.Radius)
		}
	}
	if len(s.Edges()) == 0 {
		t.Fatal("no edges for 12 points")
	}

	f := s.Advance(frame)
	if len(f.Billboards) != 12 {
		t.Fatalf("billboards = %d, want 12", len(f.Billboards))
	}
	if len(f.Wireframe.Segments) != len(s.Edges()) {
		t.Fatalf("segments = %d, want %d", len(f.Wireframe.Segments), len(s.Edges()))
	}
	for i := 1; i < len(f.Billboards); i++ {
		if f.Billboards[i].Depth > f.Billboards[i-1].Depth {
			t.Fatalf("billboards not sorted back to front at %d", i)
		}
	}
	for _, b := range f.Billboards {
		if b.Opacity < cfg.MinOpacity-1e-12 || b.Opacity > 1 {
			t.Errorf("billboard %d opacity %g outside [%g, 1]", b.Index, b.Opacity, cfg.MinOpacity)
		}
		if b.Material == nil || !b.Material.BlendEnabled() || b.Material.DepthTestEnabled() || b.Material.DepthWriteEnabled() {
			t.Errorf("billboard %d material is not blended without depth", b.Index)
		}
	}
	if f.Camera.Near >= f.Camera.Far || f.Camera.Near < 0.01 {
		t.Errorf("near/far = %g/%g", f.Camera.Near, f.Camera.Far)
	}
	if math.Abs(f.Camera.Aspect-800.0/600.0) > 1e-12 {
		t.Errorf("aspect = %g", f.Camera.Aspect)
	}
}

func TestNewSceneRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Radius = 0
	_, err := NewScene(&surface{w: 10, h: 10}, WithConfig(cfg))
	if !errors.Is(err, ErrInvalidRadius) {
		t.Fatalf("err = %v, want ErrInvalidRadius", err)
	}
}

func TestNewSceneNilSurfacePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewScene(nil) did not panic")
		}
	}()
	_, _ = NewScene(nil)
}

func TestSetRadiusRejectsNonPositive(t *testing.T) {
	s := newTestScene(t, WithItems(makeItems(8)...))
	before := s.Points()

	for _, r := range []float64{0, -1, math.NaN()} {
		if err := s.SetRadius(r); err == nil {
			t.Errorf("SetRadius(%g) accepted", r)
		}
	}
	if s.Config().Radius != DefaultConfig().Radius {
		t.Fatalf("radius changed to %g", s.Config().Radius)
	}
	after := s.Points()
	for i := range before {
		if before[i].Position != after[i].Position {
			t.Fatalf("point %d moved after rejected radius", i)
		}
	}

	if err := s.SetRadius(3); err != nil {
		t.Fatalf("SetRadius(3): %v", err)
	}
	for i, p := range s.Points() {
		if math.Abs(p.Position.Len()-3) > 3e-6 {
			t.Errorf("point %d radius %g after SetRadius(3)", i, p.Position.Len())
		}
	}
}

func TestConfigureRejectsNonFinite(t *testing.T) {
	s := newTestScene(t)
	tests := map[string]func(*Config){
		"speed":     func(c *Config) { c.AutoRotateSpeed = math.NaN() },
		"opacity":   func(c *Config) { c.MinOpacity = math.Inf(1) },
		"lineColor": func(c *Config) { c.LineColor[2] = math.NaN() },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := DefaultConfig()
			mutate(&cfg)
			if err := s.Configure(cfg); !errors.Is(err, ErrNonFinite) {
				t.Fatalf("err = %v, want ErrNonFinite", err)
			}
			if s.Config() != DefaultConfig() {
				t.Fatal("prior config not kept")
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"defaults", func(*Config) {}, nil},
		{"negative radius", func(c *Config) { c.Radius = -2 }, ErrInvalidRadius},
		{"fov zero", func(c *Config) { c.FovY = 0 }, ErrInvalidConfig},
		{"fov straight", func(c *Config) { c.FovY = 180 }, ErrInvalidConfig},
		{"padding", func(c *Config) { c.Padding = 0 }, ErrInvalidConfig},
		{"exponent", func(c *Config) { c.DepthExponent = -1 }, ErrInvalidConfig},
		{"min opacity", func(c *Config) { c.MinOpacity = 1.5 }, ErrInvalidConfig},
		{"line color", func(c *Config) { c.LineColor[0] = 2 }, ErrInvalidConfig},
		{"hull epsilon", func(c *Config) { c.HullEpsilon = 0 }, ErrInvalidConfig},
		{"elevation", func(c *Config) { c.CameraElevation = 90 }, ErrInvalidConfig},
		{"reverse spin", func(c *Config) { c.AutoRotateSpeed = -0.5 }, nil},
		{"inf", func(c *Config) { c.Padding = math.Inf(-1) }, ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPlaceholderKeepsPosition(t *testing.T) {
	items := makeItems(6)
	icon := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	resolver := mapResolver{"icon-00": icon, "icon-02": icon, "icon-04": icon}

	s := newTestScene(t, WithItems(items...), WithResolver(resolver))
	cfg := s.Config()
	points := s.Points()
	lift := (cfg.Radius + cfg.IconOffset) / cfg.Radius

	f := s.Advance(0)
	if len(f.Billboards) != len(items) {
		t.Fatalf("billboards = %d, want %d", len(f.Billboards), len(items))
	}
	for _, b := range f.Billboards {
		want := points[b.Index].Position.Mul(lift)
		if !b.Position.ApproxEqualThreshold(want, 1e-9) {
			t.Errorf("billboard %d at %v, want %v", b.Index, b.Position, want)
		}
		hasIcon := b.Index%2 == 0
		if (b.Icon != nil) != hasIcon {
			t.Errorf("billboard %d icon present = %v, want %v", b.Index, b.Icon != nil, hasIcon)
		}
		if b.Label != items[b.Index].Label {
			t.Errorf("billboard %d label %q", b.Index, b.Label)
		}
	}
}

func TestItemColorTints(t *testing.T) {
	red := color.NRGBA{R: 255, A: 255}
	s := newTestScene(t, WithItems(common.Item{Label: "a", Color: &red}))
	f := s.Advance(0)
	if len(f.Billboards) != 1 {
		t.Fatalf("billboards = %d", len(f.Billboards))
	}
	if got := f.Billboards[0].Tint; got != [4]float32{1, 0, 0, 1} {
		t.Fatalf("tint = %v", got)
	}
}

func TestEmptyItems(t *testing.T) {
	s := newTestScene(t)
	f := s.Advance(frame)
	if len(f.Billboards) != 0 || len(f.Wireframe.Segments) != 0 {
		t.Fatalf("empty scene drew %d billboards and %d segments", len(f.Billboards), len(f.Wireframe.Segments))
	}
	if f.Camera.Distance <= 0 {
		t.Fatalf("camera distance = %g", f.Camera.Distance)
	}
	if len(s.Items()) != 0 || len(s.Points()) != 0 || len(s.Edges()) != 0 {
		t.Fatal("empty scene has layout")
	}
}

func TestSetItemsCopies(t *testing.T) {
	blue := color.NRGBA{B: 255, A: 255}
	items := []common.Item{{Label: "a", Color: &blue}, {Label: "b"}, {Label: "c"}}
	s := newTestScene(t)
	s.SetItems(items)

	items[0].Label = "changed"
	blue.R = 255

	got := s.Items()
	if got[0].Label != "a" || got[0].Color.R != 0 {
		t.Fatalf("scene item aliased caller data: %+v", got[0])
	}
	if len(s.Edges()) != 3 {
		t.Fatalf("edges = %d, want 3", len(s.Edges()))
	}

	got[1].Label = "mutated"
	if s.Items()[1].Label != "b" {
		t.Fatal("Items() returned the scene's own slice")
	}
}

func TestPointerDragInPixels(t *testing.T) {
	s := newTestScene(t, WithItems(makeItems(10)...))
	start := s.Orientation()

	s.PointerDown(1, 400, 300)
	if s.Phase() != rotation.PhaseDragging {
		t.Fatalf("phase = %s, want dragging", s.Phase())
	}
	for i := 1; i <= 3; i++ {
		s.Advance(frame)
		s.PointerMove(1, 400+float64(i)*30, 300)
	}
	if s.Orientation().ApproxEqualThreshold(start, 1e-9) {
		t.Fatal("drag did not rotate the globe")
	}

	// A horizontal drag turns the globe about the camera's up axis.
	x := s.Orientation().Rotate(mgl64.Vec3{1, 0, 0})
	if math.Abs(x.Y()) > 1e-9 {
		t.Errorf("horizontal drag tilted the globe: %v", x)
	}

	s.PointerUp(1)
	if s.Phase() != rotation.PhaseMomentum {
		t.Fatalf("phase = %s, want momentum", s.Phase())
	}
}

func TestSecondaryPointerIgnored(t *testing.T) {
	s := newTestScene(t)
	s.PointerDown(1, 100, 100)
	s.Advance(frame)
	before := s.Orientation()

	s.PointerDown(2, 300, 300)
	s.PointerMove(2, 500, 500)
	s.PointerUp(2)
	if s.Phase() != rotation.PhaseDragging {
		t.Fatalf("phase = %s after secondary pointer, want dragging", s.Phase())
	}
	if !s.Orientation().ApproxEqualThreshold(before, 1e-12) {
		t.Fatal("secondary pointer rotated the globe")
	}

	s.PointerCancel(1)
	if s.Phase() != rotation.PhasePaused {
		t.Fatalf("phase = %s after cancel, want paused", s.Phase())
	}
}

func TestAutoRotateToggle(t *testing.T) {
	s := newTestScene(t)
	s.SetAutoRotate(false)
	if s.AutoRotate() || s.Config().AutoRotate {
		t.Fatal("auto rotate still on")
	}
	start := s.Orientation()
	for range 30 {
		s.Advance(frame)
	}
	if !s.Orientation().ApproxEqualThreshold(start, 1e-12) {
		t.Fatal("globe spun with auto rotate off")
	}

	s.SetAutoRotate(true)
	for range 30 {
		s.Advance(frame)
	}
	if s.Orientation().ApproxEqualThreshold(start, 1e-9) {
		t.Fatal("globe did not spin with auto rotate on")
	}

	s.ResetRotation()
	if !s.Orientation().ApproxEqualThreshold(start, 1e-12) {
		t.Fatal("ResetRotation kept the spin")
	}
}

func TestResizeReframes(t *testing.T) {
	surf := &surface{w: 800, h: 400}
	s, err := NewScene(surf)
	if err != nil {
		t.Fatal(err)
	}
	wide := s.Frame().Distance

	surf.w, surf.h = 400, 800
	s.Resize()
	tall := s.Frame().Distance
	if tall <= wide {
		t.Fatalf("tall viewport distance %g not greater than wide %g", tall, wide)
	}

	surf.w, surf.h = 0, 0
	s.Resize()
	if s.Frame().Distance != tall {
		t.Fatal("zero-sized surface changed the framing")
	}
}

func TestPaddingAndFov(t *testing.T) {
	s := newTestScene(t)
	d := s.Frame().Distance

	if err := s.SetPadding(2 * s.Config().Padding); err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.Frame().Distance-2*d) > 1e-9 {
		t.Fatalf("distance = %g, want %g", s.Frame().Distance, 2*d)
	}
	if err := s.SetPadding(-1); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("SetPadding(-1) err = %v", err)
	}
	if err := s.SetFov(200); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("SetFov(200) err = %v", err)
	}
	if err := s.SetFov(60); err != nil || s.Frame().FovY != 60 {
		t.Fatalf("SetFov(60) err = %v, fov = %g", err, s.Frame().FovY)
	}
}

func TestCulledItemsAreCounted(t *testing.T) {
	const n = 60
	s := newTestScene(t, WithItems(makeItems(n)...))

	f := s.Advance(frame)
	if f.Culled != 0 || len(f.Billboards) != n {
		t.Fatalf("default padding: %d billboards, %d culled, want %d and 0", len(f.Billboards), f.Culled, n)
	}

	if err := s.SetPadding(0.5); err != nil {
		t.Fatal(err)
	}
	f = s.Advance(frame)
	if f.Culled == 0 {
		t.Fatal("nothing culled with the globe overflowing the view")
	}
	if len(f.Billboards)+f.Culled != n {
		t.Fatalf("%d billboards + %d culled, want %d items", len(f.Billboards), f.Culled, n)
	}
}

func TestRender(t *testing.T) {
	s := newTestScene(t, WithItems(makeItems(5)...))
	b := &recordingBackend{}
	if err := s.Render(frame, b); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(b.frames) != 1 || len(b.frames[0].Billboards) != 5 {
		t.Fatal("backend did not receive the frame")
	}

	b.err = errors.New("surface lost")
	if err := s.Render(frame, b); !errors.Is(err, b.err) {
		t.Fatalf("Render err = %v, want wrapped backend error", err)
	}
	if err := s.Render(frame, nil); err != nil {
		t.Fatalf("Render(nil backend): %v", err)
	}
}

func TestIDsDiffer(t *testing.T) {
	a, b := newTestScene(t), newTestScene(t)
	if a.ID() == b.ID() {
		t.Fatal("two scenes share an id")
	}
}

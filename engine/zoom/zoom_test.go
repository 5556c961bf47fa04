package zoom

import (
	"math"
	"testing"
)

func TestSpringConverges(t *testing.T) {
	z := NewZoom(WithInitial(1))
	z.SetTarget(2)
	if z.Settled() {
		t.Fatal("settled before moving")
	}

	prev := z.Value()
	for range 600 {
		v := z.Advance(1.0 / 60)
		if v < prev-1e-9 {
			t.Fatalf("critically damped spring moved backwards: %g after %g", v, prev)
		}
		prev = v
	}
	if !z.Settled() || z.Value() != 2 {
		t.Fatalf("value = %g settled = %v, want 2 and settled", z.Value(), z.Settled())
	}
}

func TestScrollDirection(t *testing.T) {
	z := NewZoom(WithInitial(1), WithStep(2))
	z.Scroll(1)
	if math.Abs(z.Target()-0.5) > 1e-12 {
		t.Fatalf("scroll up target = %g, want 0.5", z.Target())
	}
	z.Scroll(-2)
	if math.Abs(z.Target()-2) > 1e-12 {
		t.Fatalf("scroll down target = %g, want 2", z.Target())
	}
}

func TestBoundsClamp(t *testing.T) {
	tests := []struct {
		name   string
		scroll float64
		want   float64
	}{
		{"in", 100, 0.8},
		{"out", -100, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			z := NewZoom(WithInitial(1.2), WithBounds(0.8, 3))
			z.Scroll(tt.scroll)
			if z.Target() != tt.want {
				t.Fatalf("target = %g, want %g", z.Target(), tt.want)
			}
			for range 1000 {
				v := z.Advance(1.0 / 30)
				if v < 0.8 || v > 3 {
					t.Fatalf("value %g left bounds", v)
				}
			}
		})
	}
}

func TestIgnoresBadInput(t *testing.T) {
	z := NewZoom(WithInitial(1))
	z.Scroll(math.NaN())
	z.SetTarget(math.Inf(1))
	if z.Target() != 1 {
		t.Fatalf("target = %g after bad input", z.Target())
	}
	z.SetTarget(1.5)
	if v := z.Advance(0); v != 1 {
		t.Fatalf("zero step moved the value to %g", v)
	}
	if v := z.Advance(-1); v != 1 {
		t.Fatalf("negative step moved the value to %g", v)
	}
	z.Reset()
	if z.Value() != 1 || z.Target() != 1 || !z.Settled() {
		t.Fatal("Reset did not restore the initial padding")
	}
}

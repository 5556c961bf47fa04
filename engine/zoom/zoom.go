package zoom

import (
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/charmbracelet/harmonica"
)

const (
	// DefaultStep is the padding factor applied per scroll notch.
	DefaultStep = 1.12
	// DefaultFrequency is the spring's angular frequency.
	DefaultFrequency = 7.0
	// DefaultDamping is the spring's damping ratio; 1 is critically damped.
	DefaultDamping = 1.0
	// settleEpsilon is the distance and speed below which the spring snaps to its target.
	settleEpsilon = 1e-4
)

// Zoom eases the camera padding factor toward a target set by scroll input. Scrolling up
// shrinks the padding, which moves the camera closer.
type Zoom interface {
	// Scroll moves the target by whole or fractional notches. Positive delta zooms in.
	//
	// Parameters:
	//   - delta: scroll notches
	Scroll(delta float64)

	// Advance steps the spring by dt seconds.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - float64: the current padding
	Advance(dt float64) float64

	// Value returns the current padding.
	Value() float64

	// Target returns the padding the spring is moving toward.
	Target() float64

	// SetTarget sets the padding target, clamped to the bounds.
	SetTarget(padding float64)

	// Settled reports whether the spring has reached its target.
	Settled() bool

	// Reset jumps back to the initial padding with no motion.
	Reset()
}

type springZoom struct {
	value    float64
	velocity float64
	target   float64
	initial  float64

	min, max float64
	step     float64

	frequency float64
	damping   float64

	// spring is rebuilt when the frame step changes; harmonica precomputes per-step coefficients.
	spring   harmonica.Spring
	springDt float64
}

var _ Zoom = &springZoom{}

// NewZoom creates a Zoom resting at its initial padding.
//
// Parameters:
//   - options: functional options to configure the zoom
//
// Returns:
//   - Zoom: the zoom
func NewZoom(options ...ZoomBuilderOption) Zoom {
	z := &springZoom{
		initial:   1.15,
		min:       0.5,
		max:       4,
		step:      DefaultStep,
		frequency: DefaultFrequency,
		damping:   DefaultDamping,
	}
	for _, option := range options {
		option(z)
	}
	z.initial = common.Clamp(z.initial, z.min, z.max)
	z.Reset()
	return z
}

func (z *springZoom) Scroll(delta float64) {
	if delta == 0 || !common.IsFinite(delta) {
		return
	}
	z.SetTarget(z.target * math.Pow(z.step, -delta))
}

func (z *springZoom) Advance(dt float64) float64 {
	if dt <= 0 || !common.IsFinite(dt) || z.Settled() {
		return z.value
	}
	if dt != z.springDt {
		z.spring = harmonica.NewSpring(dt, z.frequency, z.damping)
		z.springDt = dt
	}
	z.value, z.velocity = z.spring.Update(z.value, z.velocity, z.target)
	if math.Abs(z.value-z.target) < settleEpsilon && math.Abs(z.velocity) < settleEpsilon {
		z.value, z.velocity = z.target, 0
	}
	z.value = common.Clamp(z.value, z.min, z.max)
	return z.value
}

func (z *springZoom) Value() float64 {
	return z.value
}

func (z *springZoom) Target() float64 {
	return z.target
}

func (z *springZoom) SetTarget(padding float64) {
	if !common.IsFinite(padding) {
		return
	}
	z.target = common.Clamp(padding, z.min, z.max)
}

func (z *springZoom) Settled() bool {
	return z.value == z.target && z.velocity == 0
}

func (z *springZoom) Reset() {
	z.value, z.target, z.velocity = z.initial, z.initial, 0
}

package depth

import (
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// DefaultMinOpacity is the opacity of an element on the far side of the sphere.
	DefaultMinOpacity = 0.15

	// DefaultExponent shapes the falloff; values above 1 keep the near hemisphere bright.
	DefaultExponent = 1.5

	// DefaultEpsilon is the smallest near-extent distance used in the falloff.
	DefaultEpsilon = 1e-6
)

// DepthCompositor fades elements by their distance from the camera relative to the
// near and far extent of the sphere they sit on. The sphere is centered at the origin.
type DepthCompositor interface {
	// Opacity returns the opacity of one element.
	//
	// Parameters:
	//   - cameraPos: the camera position in world space
	//   - elementPos: the element position in world space
	//
	// Returns:
	//   - float64: the opacity, within [MinOpacity(), 1]
	Opacity(cameraPos, elementPos mgl64.Vec3) float64

	// Compose evaluates Opacity for every position in one pass. The result is written
	// into out, which is grown as needed and returned.
	//
	// Parameters:
	//   - cameraPos: the camera position in world space
	//   - positions: element positions in world space
	//   - out: reusable destination buffer, may be nil
	//
	// Returns:
	//   - []float64: one opacity per position
	Compose(cameraPos mgl64.Vec3, positions []mgl64.Vec3, out []float64) []float64

	// Prepare marks a material as alpha-blended with depth test and depth write off, so
	// that faded elements on the far side are never hidden by nearer translucent ones.
	//
	// Parameters:
	//   - m: the material of an element this compositor fades
	Prepare(m material.Material)

	// MinOpacity returns the opacity floor.
	//
	// Returns:
	//   - float64: the floor in [0, 1]
	MinOpacity() float64

	// Exponent returns the falloff exponent.
	//
	// Returns:
	//   - float64: the exponent, always > 0
	Exponent() float64
}

type depthCompositor struct {
	minOpacity float64
	exponent   float64
	epsilon    float64
}

var _ DepthCompositor = &depthCompositor{}

// NewDepthCompositor creates a DepthCompositor.
//
// Parameters:
//   - options: functional options to configure the compositor
//
// Returns:
//   - DepthCompositor: the compositor
func NewDepthCompositor(options ...DepthCompositorBuilderOption) DepthCompositor {
	c := &depthCompositor{
		minOpacity: DefaultMinOpacity,
		exponent:   DefaultExponent,
		epsilon:    DefaultEpsilon,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *depthCompositor) Opacity(cameraPos, elementPos mgl64.Vec3) float64 {
	camDist := cameraPos.Len()
	rEff := elementPos.Len()
	d := cameraPos.Sub(elementPos).Len()

	minD := math.Max(c.epsilon, camDist-rEff)
	maxD := camDist + rEff
	span := maxD - minD
	if span <= c.epsilon || !common.IsFinite(d) {
		return 1
	}

	t := common.Clamp((d-minD)/span, 0, 1)
	t = math.Pow(t, c.exponent)
	return common.Clamp(common.Lerp(1, c.minOpacity, t), c.minOpacity, 1)
}

func (c *depthCompositor) Compose(cameraPos mgl64.Vec3, positions []mgl64.Vec3, out []float64) []float64 {
	if cap(out) < len(positions) {
		out = make([]float64, len(positions))
	}
	out = out[:len(positions)]
	for i, p := range positions {
		out[i] = c.Opacity(cameraPos, p)
	}
	return out
}

func (c *depthCompositor) Prepare(m material.Material) {
	if m == nil {
		return
	}
	m.SetBlendEnabled(true)
	m.SetDepthTestEnabled(false)
	m.SetDepthWriteEnabled(false)
}

func (c *depthCompositor) MinOpacity() float64 {
	return c.minOpacity
}

func (c *depthCompositor) Exponent() float64 {
	return c.exponent
}

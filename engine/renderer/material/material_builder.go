package material

import (
	"image/color"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithBaseColor is an option builder that sets the RGBA tint of the material.
//
// Parameters:
//   - color: the base color as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithBaseColor(color [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = color
	}
}

// WithColor is WithBaseColor for a non-premultiplied 8-bit color.
//
// Parameters:
//   - c: the tint
//
// Returns:
//   - MaterialBuilderOption: a function that applies the base color option to a material
func WithColor(c color.NRGBA) MaterialBuilderOption {
	return func(m *material) {
		m.baseColor = [4]float32{
			float32(c.R) / 255,
			float32(c.G) / 255,
			float32(c.B) / 255,
			float32(c.A) / 255,
		}
	}
}

// WithPipelineKey is an option builder that selects the draw path for the material.
//
// Parameters:
//   - key: the pipeline key
//
// Returns:
//   - MaterialBuilderOption: a function that applies the pipeline key to a material
func WithPipelineKey(key PipelineKey) MaterialBuilderOption {
	return func(m *material) {
		m.pipelineKey = key
	}
}

// WithBlendEnabled is an option builder that toggles alpha blending.
//
// Parameters:
//   - enabled: whether blending is on
//
// Returns:
//   - MaterialBuilderOption: a function that applies the blend state to a material
func WithBlendEnabled(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.blendEnabled = enabled
	}
}

package material

// PipelineKey names the draw path a material is rendered with.
type PipelineKey string

const (
	// PipelineLines draws wireframe segments.
	PipelineLines PipelineKey = "lines"
	// PipelineBillboards draws camera-facing icon quads.
	PipelineBillboards PipelineKey = "billboards"
)

// material is the implementation of the Material interface.
type material struct {
	name        string
	baseColor   [4]float32
	pipelineKey PipelineKey

	blendEnabled      bool
	depthTestEnabled  bool
	depthWriteEnabled bool
}

// Material defines the interface for a render material: the tint and the fixed-function
// state a backend needs to draw one class of element.
//
// The tint and pipeline key are set at construction. Render state is mutable so that
// passes such as depth compositing can mark an element translucent after it is built.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// BaseColor retrieves the RGBA tint of the material.
	//
	// Returns:
	//   - [4]float32: the base color as RGBA values in [0, 1]
	BaseColor() [4]float32

	// PipelineKey retrieves the key identifying the draw path this material uses.
	//
	// Returns:
	//   - PipelineKey: the pipeline key
	PipelineKey() PipelineKey

	// BlendEnabled reports whether fragments are alpha-blended over the target.
	//
	// Returns:
	//   - bool: true when alpha blending is on
	BlendEnabled() bool

	// DepthTestEnabled reports whether fragments are tested against the depth buffer.
	//
	// Returns:
	//   - bool: true when depth testing is on
	DepthTestEnabled() bool

	// DepthWriteEnabled reports whether fragments write to the depth buffer.
	//
	// Returns:
	//   - bool: true when depth writes are on
	DepthWriteEnabled() bool

	// SetBlendEnabled toggles alpha blending.
	//
	// Parameters:
	//   - enabled: whether blending is on
	SetBlendEnabled(enabled bool)

	// SetDepthTestEnabled toggles depth testing.
	//
	// Parameters:
	//   - enabled: whether depth testing is on
	SetDepthTestEnabled(enabled bool)

	// SetDepthWriteEnabled toggles depth writes.
	//
	// Parameters:
	//   - enabled: whether depth writes are on
	SetDepthWriteEnabled(enabled bool)
}

var _ Material = &material{}

// NewMaterial creates a new opaque, depth-tested Material configured with the provided
// options.
//
// Parameters:
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		baseColor:         [4]float32{1, 1, 1, 1},
		pipelineKey:       PipelineBillboards,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) BaseColor() [4]float32 {
	return m.baseColor
}

func (m *material) PipelineKey() PipelineKey {
	return m.pipelineKey
}

func (m *material) BlendEnabled() bool {
	return m.blendEnabled
}

func (m *material) DepthTestEnabled() bool {
	return m.depthTestEnabled
}

func (m *material) DepthWriteEnabled() bool {
	return m.depthWriteEnabled
}

func (m *material) SetBlendEnabled(enabled bool) {
	m.blendEnabled = enabled
}

func (m *material) SetDepthTestEnabled(enabled bool) {
	m.depthTestEnabled = enabled
}

func (m *material) SetDepthWriteEnabled(enabled bool) {
	m.depthWriteEnabled = enabled
}

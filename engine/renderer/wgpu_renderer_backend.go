package renderer

import (
	_ "embed"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl64"
)

//go:embed assets/globe.wgsl
var globeShaderSource string

// globeVertex is the single vertex layout shared by the line and billboard pipelines.
type globeVertex struct {
	Position [4]float32
	UV       [2]float32
	_        [2]float32
	Color    [4]float32
}

const globeVertexStride = 48

// pipelineState is the cache key for render pipelines: one per draw path and material state.
type pipelineState struct {
	key        material.PipelineKey
	blend      bool
	depthTest  bool
	depthWrite bool
}

// iconTexture is an uploaded icon and the bind group that samples it.
type iconTexture struct {
	source    image.Image
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
}

func (t *iconTexture) release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode wgpu.PresentMode // defaults to PresentModeImmediate (Uncapped)
	sampleCount MSAASampleCount  // MSAA sample count for the main render pass
	clearColor  wgpu.Color

	// Globe resources, created on first ConfigureSurface once the surface format is known
	shaderModule    *wgpu.ShaderModule
	iconLayout      *wgpu.BindGroupLayout
	lineLayout      *wgpu.PipelineLayout
	billboardLayout *wgpu.PipelineLayout
	sampler         *wgpu.Sampler
	placeholder     *iconTexture
	pipelines       map[pipelineState]*wgpu.RenderPipeline
	icons           map[string]*iconTexture

	vertexBuffer   *wgpu.Buffer
	vertexCapacity uint64
	vertices       []globeVertex

	// Frame state for batched rendering across multiple draw calls
	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clearColor [4]float64) (*wgpuRendererBackendImpl, error) {
	runtime.LockOSThread()
	w := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: sampleCount,
		clearColor:  wgpu.Color{R: clearColor[0], G: clearColor[1], B: clearColor[2], A: clearColor[3]},
		pipelines:   make(map[pipelineState]*wgpu.RenderPipeline),
		icons:       make(map[string]*iconTexture),
	}
	w.surface = w.instance.CreateSurface(surfaceDescriptor)

	a, err := w.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    w.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	w.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Globe Device",
	})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	w.device = d
	w.queue = d.GetQueue()

	return w, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	capabilities := b.surface.GetCapabilities(b.adapter)
	format := capabilities.Formats[0]
	if b.surfaceFormat != nil && *b.surfaceFormat != format {
		b.releasePipelines()
	}
	b.surfaceFormat = &format

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if msaaEnabled {
		// The render pass draws into the MSAA texture and resolves into the swapchain view.
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(err)
		}
	}

	// Depth texture sample count must match the color attachment.
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	// When MSAA is enabled, View is the MSAA texture and ResolveTarget is set per-frame to
	// the swapchain view. When disabled, View is set per-frame and ResolveTarget stays nil.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if err := b.initResources(); err != nil {
		panic(err)
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) Render(frame *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return fmt.Errorf("surface not configured")
	}

	lineCount, err := b.uploadVertices(frame)
	if err != nil {
		return err
	}

	if err := b.beginFrame(); err != nil {
		return err
	}

	if lineCount > 0 {
		p, err := b.pipeline(material.PipelineLines, frame.Wireframe.Material)
		if err != nil {
			b.abortFrame()
			return err
		}
		b.framePass.SetPipeline(p)
		b.framePass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
		b.framePass.Draw(lineCount, 1, 0, 0)
	}

	first := lineCount
	for _, bb := range frame.Billboards {
		p, err := b.pipeline(material.PipelineBillboards, bb.Material)
		if err != nil {
			b.abortFrame()
			return err
		}
		icon, err := b.iconFor(bb)
		if err != nil {
			b.abortFrame()
			return err
		}
		b.framePass.SetPipeline(p)
		b.framePass.SetBindGroup(0, icon.bindGroup, nil)
		b.framePass.SetVertexBuffer(0, b.vertexBuffer, 0, wgpu.WholeSize)
		b.framePass.Draw(uint32(len(quadTriangles)), 1, first, 0)
		first += uint32(len(quadTriangles))
	}

	if err := b.endFrame(); err != nil {
		return err
	}
	b.present()
	return nil
}

func (b *wgpuRendererBackendImpl) Image() image.Image {
	return nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releasePipelines()
	for label, icon := range b.icons {
		icon.release()
		delete(b.icons, label)
	}
	if b.placeholder != nil {
		b.placeholder.release()
		b.placeholder = nil
	}
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	if b.vertexBuffer != nil {
		b.vertexBuffer.Release()
		b.vertexBuffer = nil
		b.vertexCapacity = 0
	}
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	b.renderPassDescriptor = nil
	b.surface.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
	runtime.UnlockOSThread()
}

// initResources creates the shader module, layouts, sampler and placeholder texture once.
func (b *wgpuRendererBackendImpl) initResources() error {
	if b.shaderModule != nil {
		return nil
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Globe Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: globeShaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("create shader module: %w", err)
	}

	iconLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Icon Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler: wgpu.SamplerBindingLayout{
					Type: wgpu.SamplerBindingTypeFiltering,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create icon bind group layout: %w", err)
	}

	lineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: string(material.PipelineLines),
	})
	if err != nil {
		return fmt.Errorf("create line pipeline layout: %w", err)
	}
	billboardLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            string(material.PipelineBillboards),
		BindGroupLayouts: []*wgpu.BindGroupLayout{iconLayout},
	})
	if err != nil {
		return fmt.Errorf("create billboard pipeline layout: %w", err)
	}

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Icon Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeLinear,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("create icon sampler: %w", err)
	}

	b.shaderModule = module
	b.iconLayout = iconLayout
	b.lineLayout = lineLayout
	b.billboardLayout = billboardLayout
	b.sampler = samp

	white := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	copy(white.Pix, []byte{255, 255, 255, 255})
	b.placeholder, err = b.uploadIcon("placeholder", white)
	if err != nil {
		return err
	}
	return nil
}

// pipeline returns the cached render pipeline for a draw path and material, creating it on
// first use.
func (b *wgpuRendererBackendImpl) pipeline(key material.PipelineKey, m material.Material) (*wgpu.RenderPipeline, error) {
	state := pipelineState{key: key, blend: true}
	if m != nil {
		state.blend = m.BlendEnabled()
		state.depthTest = m.DepthTestEnabled()
		state.depthWrite = m.DepthWriteEnabled()
	}
	if p, ok := b.pipelines[state]; ok {
		return p, nil
	}

	layout := b.billboardLayout
	entryPoint := "fs_billboard"
	topology := wgpu.PrimitiveTopologyTriangleList
	if key == material.PipelineLines {
		layout = b.lineLayout
		entryPoint = "fs_line"
		topology = wgpu.PrimitiveTopologyLineList
	}

	target := wgpu.ColorTargetState{
		Format:    *b.surfaceFormat,
		WriteMask: wgpu.ColorWriteMaskAll,
	}
	if state.blend {
		target.Blend = &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		}
	}

	depthCompare := wgpu.CompareFunctionLess
	if !state.depthTest {
		depthCompare = wgpu.CompareFunctionAlways
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  string(key) + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     b.shaderModule,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: globeVertexStride,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x2, Offset: 16, ShaderLocation: 1},
						{Format: wgpu.VertexFormatFloat32x4, Offset: 32, ShaderLocation: 2},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     b.shaderModule,
			EntryPoint: entryPoint,
			Targets:    []wgpu.ColorTargetState{target},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: state.depthWrite,
			DepthCompare:      depthCompare,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create %s pipeline: %w", key, err)
	}
	b.pipelines[state] = created
	return created, nil
}

func (b *wgpuRendererBackendImpl) releasePipelines() {
	for state, p := range b.pipelines {
		p.Release()
		delete(b.pipelines, state)
	}
}

// iconFor returns the uploaded texture for a billboard, re-uploading when its image changed.
func (b *wgpuRendererBackendImpl) iconFor(bb Billboard) (*iconTexture, error) {
	if bb.Icon == nil {
		return b.placeholder, nil
	}
	if cached, ok := b.icons[bb.Label]; ok {
		if cached.source == bb.Icon {
			return cached, nil
		}
		cached.release()
		delete(b.icons, bb.Label)
	}
	icon, err := b.uploadIcon(bb.Label, bb.Icon)
	if err != nil {
		return nil, err
	}
	b.icons[bb.Label] = icon
	return icon, nil
}

func (b *wgpuRendererBackendImpl) uploadIcon(label string, img image.Image) (*iconTexture, error) {
	stagingData := common.StageImage(img)
	if stagingData.Width == 0 || stagingData.Height == 0 {
		return b.placeholder, nil
	}

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture for %q: %w", label, err)
	}

	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		stagingData.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  stagingData.Width * 4,
			RowsPerImage: stagingData.Height,
		},
		&wgpu.Extent3D{
			Width:              stagingData.Width,
			Height:             stagingData.Height,
			DepthOrArrayLayers: 1,
		},
	)

	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("create texture view for %q: %w", label, err)
	}

	bindGroup, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.iconLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return nil, fmt.Errorf("create bind group for %q: %w", label, err)
	}

	return &iconTexture{source: img, texture: tex, view: view, bindGroup: bindGroup}, nil
}

// uploadVertices writes the frame's lines followed by its billboard quads into the shared
// vertex buffer and returns the number of line vertices.
func (b *wgpuRendererBackendImpl) uploadVertices(frame *Frame) (uint32, error) {
	viewProj := frame.Camera.ViewProjection()
	b.vertices = b.vertices[:0]

	wire := frame.Wireframe
	for _, seg := range wire.Segments {
		b.vertices = append(b.vertices,
			lineVertex(viewProj, seg.A, wire, seg.OpacityA),
			lineVertex(viewProj, seg.B, wire, seg.OpacityB),
		)
	}
	lineCount := uint32(len(b.vertices))

	right, up := frame.Camera.Right, frame.Camera.Up
	for _, bb := range frame.Billboards {
		corners := billboardCorners(bb, right, up)
		color := [4]float32{bb.Tint[0], bb.Tint[1], bb.Tint[2], bb.Tint[3] * float32(common.Clamp(bb.Opacity, 0, 1))}
		for _, idx := range quadTriangles {
			b.vertices = append(b.vertices, globeVertex{
				Position: toClip(viewProj, corners[idx]),
				// Texture rows start at the top of the image.
				UV:    [2]float32{float32(quadUVs[idx][0]), float32(1 - quadUVs[idx][1])},
				Color: color,
			})
		}
	}

	if len(b.vertices) == 0 {
		return 0, nil
	}

	size := uint64(len(b.vertices)) * globeVertexStride
	if size > b.vertexCapacity {
		if b.vertexBuffer != nil {
			b.vertexBuffer.Release()
		}
		capacity := max(size*2, 64*globeVertexStride)
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label:            "Globe Vertex Buffer",
			Size:             capacity,
			Usage:            wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
			MappedAtCreation: false,
		})
		if err != nil {
			b.vertexBuffer = nil
			b.vertexCapacity = 0
			return 0, fmt.Errorf("create vertex buffer: %w", err)
		}
		b.vertexBuffer = buf
		b.vertexCapacity = capacity
	}
	b.queue.WriteBuffer(b.vertexBuffer, 0, common.SliceToBytes(b.vertices))
	return lineCount, nil
}

func (b *wgpuRendererBackendImpl) beginFrame() error {
	// A previous frame's surface texture must be presented before another is acquired.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

func (b *wgpuRendererBackendImpl) endFrame() error {
	b.framePass.End()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
		b.releaseFrameSurface()
		return err
	}

	b.queue.Submit(commandBuffer)

	commandBuffer.Release()
	b.frameEncoder.Release()
	b.frameEncoder = nil
	return nil
}

func (b *wgpuRendererBackendImpl) abortFrame() {
	if b.framePass != nil {
		b.framePass.End()
		b.framePass = nil
	}
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) present() {
	if b.frameSurface == nil {
		return
	}
	b.surface.Present()
	b.releaseFrameSurface()
}

func (b *wgpuRendererBackendImpl) releaseFrameSurface() {
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

func lineVertex(viewProj mgl64.Mat4, p mgl64.Vec3, w Wireframe, opacity float64) globeVertex {
	return globeVertex{
		Position: toClip(viewProj, p),
		Color:    [4]float32{w.Color[0], w.Color[1], w.Color[2], float32(segmentAlpha(w, opacity))},
	}
}

// toClip projects a world position and remaps z from the [-w, w] range of the projection
// matrix to the [0, w] range WebGPU clips against.
func toClip(viewProj mgl64.Mat4, p mgl64.Vec3) [4]float32 {
	c := common.TransformPoint(viewProj, p)
	return [4]float32{float32(c.X()), float32(c.Y()), float32((c.Z() + c.W()) / 2), float32(c.W())}
}

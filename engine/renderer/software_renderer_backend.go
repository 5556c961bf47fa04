package renderer

import (
	"image"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/material"
	"github.com/fogleman/fauxgl"
	"github.com/go-gl/mathgl/mgl64"
)

// placeholderRim is the fraction of a placeholder quad drawn as a darker border.
const placeholderRim = 0.08

type softwareRendererBackendImpl struct {
	context    *fauxgl.Context
	width      int
	height     int
	clearColor fauxgl.Color
	lineWidth  float64
}

var _ RendererBackend = &softwareRendererBackendImpl{}

func newSoftwareRendererBackend(clearColor [4]float64, lineWidth float64) *softwareRendererBackendImpl {
	return &softwareRendererBackendImpl{
		clearColor: fauxgl.Color{R: clearColor[0], G: clearColor[1], B: clearColor[2], A: clearColor[3]},
		lineWidth:  lineWidth,
	}
}

func (s *softwareRendererBackendImpl) ConfigureSurface(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if s.context != nil && s.width == width && s.height == height {
		return
	}
	s.context = fauxgl.NewContext(width, height)
	s.context.Cull = fauxgl.CullNone
	s.width, s.height = width, height
	s.context.ClearColorBufferWith(s.clearColor)
}

func (s *softwareRendererBackendImpl) SetPresentMode(PresentMode) {}

func (s *softwareRendererBackendImpl) Render(frame *Frame) error {
	if s.context == nil {
		return nil
	}
	dc := s.context
	dc.ClearColorBufferWith(s.clearColor)
	dc.ClearDepthBuffer()

	matrix := toFauxglMatrix(frame.Camera.ViewProjection())

	wire := frame.Wireframe
	if len(wire.Segments) > 0 {
		applyMaterial(dc, wire.Material)
		dc.LineWidth = common.Coalesce(wire.Width, s.lineWidth)
		dc.Shader = &lineShader{Matrix: matrix}
		for _, seg := range wire.Segments {
			dc.DrawLine(&fauxgl.Line{
				V1: fauxgl.Vertex{Position: toFauxglVector(seg.A), Color: lineColor(wire, seg.OpacityA)},
				V2: fauxgl.Vertex{Position: toFauxglVector(seg.B), Color: lineColor(wire, seg.OpacityB)},
			})
		}
	}

	right, up := frame.Camera.Right, frame.Camera.Up
	for _, b := range frame.Billboards {
		applyMaterial(dc, b.Material)
		shader := &billboardShader{
			Matrix:  matrix,
			Tint:    fauxgl.Color{R: float64(b.Tint[0]), G: float64(b.Tint[1]), B: float64(b.Tint[2]), A: float64(b.Tint[3])},
			Opacity: common.Clamp(b.Opacity, 0, 1),
		}
		if b.Icon != nil {
			shader.Texture = fauxgl.NewImageTexture(b.Icon)
		}
		dc.Shader = shader

		corners := billboardCorners(b, right, up)
		var vertices [4]fauxgl.Vertex
		for i, c := range corners {
			vertices[i] = fauxgl.Vertex{
				Position: toFauxglVector(c),
				Texture:  fauxgl.Vector{X: quadUVs[i][0], Y: quadUVs[i][1]},
			}
		}
		for t := 0; t < len(quadTriangles); t += 3 {
			dc.DrawTriangle(&fauxgl.Triangle{
				V1: vertices[quadTriangles[t]],
				V2: vertices[quadTriangles[t+1]],
				V3: vertices[quadTriangles[t+2]],
			})
		}
	}
	return nil
}

func (s *softwareRendererBackendImpl) Image() image.Image {
	if s.context == nil {
		return nil
	}
	return s.context.Image()
}

func (s *softwareRendererBackendImpl) Release() {
	s.context = nil
}

func applyMaterial(dc *fauxgl.Context, m material.Material) {
	if m == nil {
		dc.AlphaBlend = true
		dc.ReadDepth = false
		dc.WriteDepth = false
		return
	}
	dc.AlphaBlend = m.BlendEnabled()
	dc.ReadDepth = m.DepthTestEnabled()
	dc.WriteDepth = m.DepthWriteEnabled()
}

func lineColor(w Wireframe, vertexOpacity float64) fauxgl.Color {
	return fauxgl.Color{
		R: float64(w.Color[0]),
		G: float64(w.Color[1]),
		B: float64(w.Color[2]),
		A: segmentAlpha(w, vertexOpacity),
	}
}

func toFauxglVector(v mgl64.Vec3) fauxgl.Vector {
	return fauxgl.Vector{X: v.X(), Y: v.Y(), Z: v.Z()}
}

func toFauxglMatrix(m mgl64.Mat4) fauxgl.Matrix {
	return fauxgl.Matrix{
		X00: m.At(0, 0), X01: m.At(0, 1), X02: m.At(0, 2), X03: m.At(0, 3),
		X10: m.At(1, 0), X11: m.At(1, 1), X12: m.At(1, 2), X13: m.At(1, 3),
		X20: m.At(2, 0), X21: m.At(2, 1), X22: m.At(2, 2), X23: m.At(2, 3),
		X30: m.At(3, 0), X31: m.At(3, 1), X32: m.At(3, 2), X33: m.At(3, 3),
	}
}

// lineShader passes the interpolated vertex color through.
type lineShader struct {
	Matrix fauxgl.Matrix
}

func (shader *lineShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *lineShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	return v.Color
}

// billboardShader samples the icon texture, or fills a rimmed placeholder when there is none.
type billboardShader struct {
	Matrix  fauxgl.Matrix
	Texture fauxgl.Texture
	Tint    fauxgl.Color
	Opacity float64
}

func (shader *billboardShader) Vertex(v fauxgl.Vertex) fauxgl.Vertex {
	v.Output = shader.Matrix.MulPositionW(v.Position)
	return v
}

func (shader *billboardShader) Fragment(v fauxgl.Vertex) fauxgl.Color {
	var c fauxgl.Color
	if shader.Texture != nil {
		texel := shader.Texture.BilinearSample(v.Texture.X, v.Texture.Y)
		c = fauxgl.Color{
			R: texel.R * shader.Tint.R,
			G: texel.G * shader.Tint.G,
			B: texel.B * shader.Tint.B,
			A: texel.A * shader.Tint.A,
		}
	} else {
		c = shader.Tint
		u, w := v.Texture.X, v.Texture.Y
		if u < placeholderRim || u > 1-placeholderRim || w < placeholderRim || w > 1-placeholderRim {
			c.R, c.G, c.B = c.R*0.6, c.G*0.6, c.B*0.6
		}
	}
	c.A *= shader.Opacity
	return c
}

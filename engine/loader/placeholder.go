package loader

import (
	"image"
	"image/color"
	"unicode"
	"unicode/utf8"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultPlaceholderTint fills placeholders for items without a color.
var DefaultPlaceholderTint = color.NRGBA{R: 0x4a, G: 0x6f, B: 0xa5, A: 0xff}

// Placeholder draws the stand-in icon for an item whose icon is missing: a disc in the
// item's tint with a darker rim and the label's first letter in the middle.
//
// Parameters:
//   - label: the item label, its first rune is drawn
//   - tint: the disc color, the zero value selects DefaultPlaceholderTint
//   - size: the edge length of the result in pixels
//
// Returns:
//   - *image.NRGBA: the placeholder icon
func Placeholder(label string, tint color.NRGBA, size int) *image.NRGBA {
	if size <= 0 {
		size = DefaultIconPixels
	}
	if tint == (color.NRGBA{}) {
		tint = DefaultPlaceholderTint
	}

	out := image.NewNRGBA(image.Rect(0, 0, size, size))
	rim := color.NRGBA{R: darken(tint.R), G: darken(tint.G), B: darken(tint.B), A: tint.A}
	c := float64(size-1) / 2
	r := float64(size) / 2
	rimWidth := max(1, float64(size)/16)
	for y := range size {
		for x := range size {
			dx, dy := float64(x)-c, float64(y)-c
			d2 := dx*dx + dy*dy
			switch {
			case d2 > r*r:
			case d2 > (r-rimWidth)*(r-rimWidth):
				out.SetNRGBA(x, y, rim)
			default:
				out.SetNRGBA(x, y, tint)
			}
		}
	}

	glyph := initialGlyph(label, letterColor(tint))
	gb := glyph.Bounds()
	h := size / 2
	w := max(1, h*gb.Dx()/gb.Dy())
	x0, y0 := (size-w)/2, (size-h)/2
	xdraw.ApproxBiLinear.Scale(out, image.Rect(x0, y0, x0+w, y0+h), glyph, gb, xdraw.Over, nil)
	return out
}

// initialGlyph renders the label's first rune with the basic 7x13 face onto a glyph-sized canvas.
func initialGlyph(label string, ink color.Color) *image.NRGBA {
	letter := "?"
	if r, _ := utf8.DecodeRuneInString(label); r != utf8.RuneError && !unicode.IsSpace(r) {
		letter = string(unicode.ToUpper(r))
	}

	face := basicfont.Face7x13
	canvas := image.NewNRGBA(image.Rect(0, 0, face.Advance, face.Height))
	d := &font.Drawer{
		Dst:  canvas,
		Src:  image.NewUniform(ink),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(letter)
	return canvas
}

func darken(v uint8) uint8 {
	return uint8(float64(v) * 0.7)
}

// letterColor picks white on dark tints and near-black on light ones.
func letterColor(tint color.NRGBA) color.Color {
	lum := 0.2126*float64(tint.R) + 0.7152*float64(tint.G) + 0.0722*float64(tint.B)
	if lum > 150 {
		return color.NRGBA{R: 0x1a, G: 0x1a, B: 0x1a, A: 0xff}
	}
	return color.White
}

// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/ftrvxmtrx/tga"
	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/image/webp"
)

var (
	// ErrNoIconSource is returned when an ImportedIcon carries neither bytes nor a path.
	ErrNoIconSource = errors.New("icon has neither data nor path")

	// ErrIconDecode wraps every failure to decode icon bytes that were read successfully.
	// Reading the same bytes again cannot succeed.
	ErrIconDecode = errors.New("icon cannot be decoded")
)

// iconDecoders are matched against the leading bytes of an icon; '?' matches any byte.
// TGA has no signature and decodes whatever none of these claim. The tga package
// registers an empty magic string with image.RegisterFormat that matches every input,
// so icons must not go through image.Decode.
var iconDecoders = []struct {
	magic  string
	decode func(io.Reader) (image.Image, error)
}{
	{"\x89PNG\r\n\x1a\n", png.Decode},
	{"\xff\xd8", jpeg.Decode},
	{"GIF8", gif.Decode},
	{"RIFF????WEBP", webp.Decode},
}

// Item is one labeled entry placed on the globe. Items are supplied by the host and are
// read-only to the engine.
type Item struct {
	// Label is the unique key of the item.
	Label string `json:"label"`
	// Icon is an optional reference (file path or resolver key) to the item's image.
	Icon string `json:"icon,omitempty"`
	// Color optionally tints the item's billboard and placeholder.
	Color *color.NRGBA `json:"color,omitempty"`
}

// Point is the position assigned to an Item on the sphere surface.
type Point struct {
	// Position lies on the sphere of the configured radius.
	Position mgl64.Vec3
	// Index is the position of Item in the list the point set was built from.
	Index int
	// Item is the item this point represents.
	Item Item
}

// Edge is an undirected connection between two point indices. I is always less than J.
type Edge struct {
	I, J int
}

// NewEdge returns the canonical Edge for the unordered pair (a, b).
func NewEdge(a, b int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{I: a, J: b}
}

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// StageImage converts any image into tightly packed RGBA staging data.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - TextureStagingData: the pixel data ready for upload
func StageImage(img image.Image) TextureStagingData {
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return TextureStagingData{
		Pixels: rgba.Pix,
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
}

// ImportedIcon is an icon image that has not been decoded yet. Either Data or Path must
// be set; Data wins when both are.
type ImportedIcon struct {
	Path string
	Data []byte
}

// Decode decodes the icon into a non-premultiplied RGBA image. PNG, JPEG, GIF, TGA and
// WebP inputs are recognised.
//
// Returns:
//   - *image.NRGBA: the decoded image, origin at (0, 0)
//   - error: error if the source is missing or cannot be decoded
func (t ImportedIcon) Decode() (*image.NRGBA, error) {
	data := t.Data
	source := "embedded icon"
	if len(data) == 0 {
		if t.Path == "" {
			return nil, ErrNoIconSource
		}
		var err error
		if data, err = os.ReadFile(t.Path); err != nil {
			return nil, fmt.Errorf("failed to read icon file %s: %w", t.Path, err)
		}
		source = "icon file " + t.Path
	}

	img, err := decodeIcon(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w: %w", source, ErrIconDecode, err)
	}

	bounds := img.Bounds()
	nrgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(nrgba, nrgba.Bounds(), img, bounds.Min, draw.Src)

	return nrgba, nil
}

func decodeIcon(data []byte) (image.Image, error) {
	for _, d := range iconDecoders {
		if matchMagic(d.magic, data) {
			return d.decode(bytes.NewReader(data))
		}
	}
	return tga.Decode(bytes.NewReader(data))
}

func matchMagic(magic string, data []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i := range len(magic) {
		if magic[i] != '?' && magic[i] != data[i] {
			return false
		}
	}
	return true
}

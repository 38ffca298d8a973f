package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGBAColor represents an RGBA color with 8-bit components including alpha.
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"` // 0 = fully transparent, 255 = fully opaque
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees
	S int `json:"s"` // Saturation: 0-100 percent
	L int `json:"l"` // Lightness: 0-100 percent
}

// ColorResult contains a color value in several representations.
type ColorResult struct {
	Hex  string    `json:"hex"` // "#rrggbb", alpha excluded
	RGBA RGBAColor `json:"rgba"`
	HSL  HSLColor  `json:"hsl"`
}

// SampleColor extracts the color at (x, y), relative to the image's top-left
// corner.
//
// Hex and HSL describe the straight (non-premultiplied) color; a fully
// transparent pixel reports black.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || y < 0 || x >= bounds.Dx() || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds %dx%d",
			x, y, bounds.Dx(), bounds.Dy())
	}

	px := img.At(bounds.Min.X+x, bounds.Min.Y+y)
	_, _, _, a := px.RGBA()

	c, _ := colorful.MakeColor(px)
	r8, g8, b8 := c.RGB255()
	h, s, l := c.Hsl()

	return &ColorResult{
		Hex:  c.Hex(),
		RGBA: RGBAColor{R: r8, G: g8, B: b8, A: uint8(a >> 8)},
		HSL: HSLColor{
			H: int(math.Round(h)) % 360,
			S: int(math.Round(s * 100)),
			L: int(math.Round(l * 100)),
		},
	}, nil
}

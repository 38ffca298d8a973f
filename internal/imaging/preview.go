package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// PNGMimeType is the MIME type of preview resources.
const PNGMimeType = "image/png"

// PreviewOptions controls how RenderPreview marks a crop region.
type PreviewOptions struct {
	// ShowGrid draws rule-of-thirds lines inside the region.
	ShowGrid bool `json:"show_grid"`

	// ShowCoordinates labels the region's top-left and bottom-right corners.
	ShowCoordinates bool `json:"show_coordinates"`

	// Color of the outline, grid and labels as "#rrggbb". Default white.
	Color string `json:"color,omitempty"`

	// Shade darkens everything outside the region, from 0 (none) to 1
	// (black). Zero means 0.5.
	Shade float64 `json:"shade,omitempty"`
}

// RenderPreview returns a copy of img with region outlined and the area
// around it shaded, the way an interactive cropper shows a pending crop.
// The source is not modified and the result has the source's size.
func RenderPreview(img image.Image, region CropRegion, opts PreviewOptions) (*image.NRGBA, error) {
	bounds := img.Bounds()
	if err := region.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}

	lineColor := color.NRGBA{255, 255, 255, 255}
	if opts.Color != "" {
		c, err := colorful.Hex(opts.Color)
		if err != nil {
			return nil, fmt.Errorf("invalid color %q: %w", opts.Color, err)
		}
		r, g, b := c.RGB255()
		lineColor = color.NRGBA{r, g, b, 255}
	}

	shade := opts.Shade
	if shade == 0 {
		shade = 0.5
	}
	if shade < 0 || shade > 1 {
		return nil, fmt.Errorf("shade must be within [0, 1], got %g", shade)
	}

	// Clone rebases the copy at (0, 0), matching CropRegion coordinates.
	out := imaging.Clone(img)
	rect := region.Rect()
	keep := 1 - shade

	for y := 0; y < out.Rect.Dy(); y++ {
		for x := 0; x < out.Rect.Dx(); x++ {
			if (image.Point{x, y}).In(rect) {
				continue
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = uint8(float64(out.Pix[i+0]) * keep)
			out.Pix[i+1] = uint8(float64(out.Pix[i+1]) * keep)
			out.Pix[i+2] = uint8(float64(out.Pix[i+2]) * keep)
		}
	}

	x0, y0 := rect.Min.X, rect.Min.Y
	x1, y1 := rect.Max.X-1, rect.Max.Y-1

	hline(out, x0, x1, y0, lineColor)
	hline(out, x0, x1, y1, lineColor)
	vline(out, x0, y0, y1, lineColor)
	vline(out, x1, y0, y1, lineColor)

	if opts.ShowGrid {
		for _, f := range []int{1, 2} {
			vline(out, x0+region.Width*f/3, y0, y1, lineColor)
			hline(out, x0, x1, y0+region.Height*f/3, lineColor)
		}
	}

	if opts.ShowCoordinates {
		bg := color.NRGBA{0, 0, 0, 200}
		drawLabel(out, x0+2, y0+2, fmt.Sprintf("%d,%d", x0, y0), lineColor, bg)

		end := fmt.Sprintf("%d,%d", rect.Max.X, rect.Max.Y)
		drawLabel(out, rect.Max.X-len(end)*glyphAdvance-2, rect.Max.Y-glyphHeight-3, end, lineColor, bg)
	}

	return out, nil
}

// Preview decodes src, renders a preview of region and registers it as a
// PNG resource. Like Crop results, the handle must be released by the caller.
func (c *Cropper) Preview(ctx context.Context, src ImageSource, region CropRegion, opts PreviewOptions) (*EncodedImageResource, error) {
	img, err := c.decode(ctx, src)
	if err != nil {
		return nil, err
	}

	out, err := RenderPreview(img, region, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, &EncodeError{Err: err}
	}

	url := c.blobs.Register(buf.Bytes(), PNGMimeType)
	return &EncodedImageResource{
		URL:      url,
		Width:    out.Rect.Dx(),
		Height:   out.Rect.Dy(),
		MimeType: PNGMimeType,
		Size:     buf.Len(),
	}, nil
}

func hline(img *image.NRGBA, x0, x1, y int, c color.NRGBA) {
	for x := x0; x <= x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

func vline(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	for y := y0; y <= y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}

const (
	glyphAdvance = 4
	glyphHeight  = 5
)

// 3x5 pixel glyphs for coordinate labels.
var glyphs = map[rune][]string{
	'0': {"111", "101", "101", "101", "111"},
	'1': {"010", "110", "010", "010", "111"},
	'2': {"111", "001", "111", "100", "111"},
	'3': {"111", "001", "111", "001", "111"},
	'4': {"101", "101", "111", "001", "001"},
	'5': {"111", "100", "111", "001", "111"},
	'6': {"111", "100", "111", "101", "111"},
	'7': {"111", "001", "001", "001", "001"},
	'8': {"111", "101", "111", "101", "111"},
	'9': {"111", "101", "111", "001", "111"},
	',': {"000", "000", "000", "010", "010"},
}

// drawLabel draws text with a one pixel padded background box. Pixels
// outside img are clipped; unknown characters leave a gap.
func drawLabel(img *image.NRGBA, x, y int, text string, fg, bg color.NRGBA) {
	bounds := img.Bounds()
	set := func(px, py int, c color.NRGBA) {
		if (image.Point{px, py}).In(bounds) {
			img.SetNRGBA(px, py, c)
		}
	}

	width := len(text) * glyphAdvance
	for dy := -1; dy <= glyphHeight; dy++ {
		for dx := -1; dx < width; dx++ {
			set(x+dx, y+dy, bg)
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel == '1' {
					set(cx+col, y+row, fg)
				}
			}
		}
		cx += glyphAdvance
	}
}

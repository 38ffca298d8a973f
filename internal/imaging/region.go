package imaging

import (
	"fmt"
	"image"
)

// CropRegion is a rectangle in source-image pixel coordinates. (X, Y) is the
// top-left corner; Width and Height are the extent.
type CropRegion struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the region as an image.Rectangle anchored at the source origin.
func (r CropRegion) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Validate checks the region against a width x height source image.
//
// The returned error is an *InvalidRegionError naming the first violated
// constraint.
func (r CropRegion) Validate(width, height int) error {
	var reason string
	switch {
	case r.X < 0:
		reason = "x must be >= 0"
	case r.Y < 0:
		reason = "y must be >= 0"
	case r.Width <= 0:
		reason = "width must be > 0"
	case r.Height <= 0:
		reason = "height must be > 0"
	// Compare without adding so huge values cannot overflow.
	case r.Width > width || r.X > width-r.Width:
		reason = fmt.Sprintf("x+width exceeds image width %d", width)
	case r.Height > height || r.Y > height-r.Height:
		reason = fmt.Sprintf("y+height exceeds image height %d", height)
	default:
		return nil
	}
	return &InvalidRegionError{
		Region:       r,
		SourceWidth:  width,
		SourceHeight: height,
		Reason:       reason,
	}
}

// RegionNames lists the names accepted by RegionFor.
var RegionNames = []string{
	"top-left", "top-right", "bottom-left", "bottom-right",
	"top-half", "bottom-half", "left-half", "right-half",
	"center", "center-square",
}

// RegionFor computes a named region of a width x height image.
//
// "center" is the middle 50% of the image; "center-square" is the largest
// centered square, which is what a 1:1 avatar crop starts from.
func RegionFor(name string, width, height int) (CropRegion, error) {
	midX := width / 2
	midY := height / 2

	var x1, y1, x2, y2 int

	switch name {
	case "top-left":
		x1, y1, x2, y2 = 0, 0, midX, midY
	case "top-right":
		x1, y1, x2, y2 = midX, 0, width, midY
	case "bottom-left":
		x1, y1, x2, y2 = 0, midY, midX, height
	case "bottom-right":
		x1, y1, x2, y2 = midX, midY, width, height
	case "top-half":
		x1, y1, x2, y2 = 0, 0, width, midY
	case "bottom-half":
		x1, y1, x2, y2 = 0, midY, width, height
	case "left-half":
		x1, y1, x2, y2 = 0, 0, midX, height
	case "right-half":
		x1, y1, x2, y2 = midX, 0, width, height
	case "center":
		qW := width / 4
		qH := height / 4
		x1, y1, x2, y2 = qW, qH, width-qW, height-qH
	case "center-square":
		side := width
		if height < side {
			side = height
		}
		x1 = (width - side) / 2
		y1 = (height - side) / 2
		x2, y2 = x1+side, y1+side
	default:
		return CropRegion{}, fmt.Errorf("unknown region: %s", name)
	}

	return CropRegion{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, nil
}

package imaging

import (
	"errors"
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// Defaults for RasterFactory. MaxDimension matches the usual canvas limit.
const (
	DefaultMaxSurfacePixels = 64 << 20
	DefaultMaxDimension     = 32767
)

// Surface is an off-screen raster a crop is rendered onto before encoding.
type Surface interface {
	// CopyFrom copies the sr rectangle of src to the surface origin without
	// scaling.
	CopyFrom(src image.Image, sr image.Rectangle)

	// Image exposes the rendered pixels. It is only valid until Release.
	Image() image.Image

	// Release returns the surface's memory. Calling it twice is harmless.
	Release()
}

// SurfaceFactory allocates surfaces. The cropper never creates surfaces any
// other way.
type SurfaceFactory interface {
	NewSurface(width, height int) (Surface, error)
}

// RasterFactory allocates in-memory NRGBA surfaces within fixed limits.
type RasterFactory struct {
	// MaxPixels caps width*height. Zero means DefaultMaxSurfacePixels.
	MaxPixels int

	// MaxDimension caps each side. Zero means DefaultMaxDimension.
	MaxDimension int
}

// NewSurface implements SurfaceFactory.
func (f RasterFactory) NewSurface(width, height int) (Surface, error) {
	maxPixels := f.MaxPixels
	if maxPixels <= 0 {
		maxPixels = DefaultMaxSurfacePixels
	}
	maxDim := f.MaxDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxDimension
	}

	if width <= 0 || height <= 0 {
		return nil, &SurfaceUnavailableError{Width: width, Height: height,
			Err: errors.New("non-positive size")}
	}
	if width > maxDim || height > maxDim {
		return nil, &SurfaceUnavailableError{Width: width, Height: height,
			Err: fmt.Errorf("side exceeds %d pixels", maxDim)}
	}
	if width > maxPixels/height {
		return nil, &SurfaceUnavailableError{Width: width, Height: height,
			Err: fmt.Errorf("area exceeds %d pixels", maxPixels)}
	}

	return &rasterSurface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

type rasterSurface struct {
	img *image.NRGBA
}

func (s *rasterSurface) CopyFrom(src image.Image, sr image.Rectangle) {
	draw.Copy(s.img, image.Point{}, src, sr, draw.Src, nil)
}

func (s *rasterSurface) Image() image.Image {
	return s.img
}

func (s *rasterSurface) Release() {
	s.img = nil
}

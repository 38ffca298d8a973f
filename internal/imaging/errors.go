package imaging

import (
	"errors"
	"fmt"
)

// Error kinds returned by the crop pipeline. Every concrete error type below
// matches exactly one of these through errors.Is.
var (
	ErrDecode             = errors.New("decode failed")
	ErrInvalidRegion      = errors.New("invalid crop region")
	ErrSurfaceUnavailable = errors.New("raster surface unavailable")
	ErrEncode             = errors.New("encode failed")
	ErrBlobNotFound       = errors.New("blob not found")
)

// DecodeError reports a source that could not be read or decoded.
type DecodeError struct {
	Ref string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode image %q: %v", e.Ref, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

// InvalidRegionError carries the offending region and the source dimensions.
type InvalidRegionError struct {
	Region       CropRegion
	SourceWidth  int
	SourceHeight int
	Reason       string
}

func (e *InvalidRegionError) Error() string {
	return fmt.Sprintf("invalid crop region (%d,%d %dx%d) for %dx%d image: %s",
		e.Region.X, e.Region.Y, e.Region.Width, e.Region.Height,
		e.SourceWidth, e.SourceHeight, e.Reason)
}

func (e *InvalidRegionError) Is(target error) bool { return target == ErrInvalidRegion }

// SurfaceUnavailableError reports a raster surface that could not be allocated.
type SurfaceUnavailableError struct {
	Width  int
	Height int
	Err    error
}

func (e *SurfaceUnavailableError) Error() string {
	return fmt.Sprintf("cannot allocate %dx%d surface: %v", e.Width, e.Height, e.Err)
}

func (e *SurfaceUnavailableError) Unwrap() error { return e.Err }

func (e *SurfaceUnavailableError) Is(target error) bool { return target == ErrSurfaceUnavailable }

// EncodeError reports a JPEG encode that failed or produced no bytes.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("failed to encode cropped image: %v", e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

// ErrorKind returns a short machine-readable name for a crop pipeline error,
// or "" when err is not one of them.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrDecode):
		return "decode_error"
	case errors.Is(err, ErrInvalidRegion):
		return "invalid_region"
	case errors.Is(err, ErrSurfaceUnavailable):
		return "surface_unavailable"
	case errors.Is(err, ErrEncode):
		return "encode_error"
	case errors.Is(err, ErrBlobNotFound):
		return "blob_not_found"
	}
	return ""
}

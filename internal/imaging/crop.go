package imaging

import (
	"bytes"
	"context"
	"errors"
	"image"
	"io"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// JPEGMimeType is the MIME type of every resource the cropper produces.
const JPEGMimeType = "image/jpeg"

// ImageSource is either a reference the Decoder understands or an image that
// is already decoded. When Image is set, Ref is only used for diagnostics.
type ImageSource struct {
	Ref   string
	Image image.Image
}

// SourceRef is a convenience constructor for a reference-only source.
func SourceRef(ref string) ImageSource {
	return ImageSource{Ref: ref}
}

// SourceImage wraps an already decoded image.
func SourceImage(img image.Image) ImageSource {
	return ImageSource{Ref: "memory", Image: img}
}

// EncodedImageResource is a handle to JPEG bytes held by a BlobRegistry.
//
// The caller owns the handle and must release it with Cropper.Release (or the
// registry's Revoke) once it is no longer needed.
type EncodedImageResource struct {
	URL      string `json:"url"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	MimeType string `json:"mime_type"`
	Size     int    `json:"size"`
}

// Cropper cuts rectangular regions out of images and encodes them as JPEG.
//
// A Cropper holds no per-call state; concurrent Crop calls are independent.
type Cropper struct {
	decoder  Decoder
	surfaces SurfaceFactory
	encode   EncodeFunc
	blobs    *BlobRegistry
	logger   *zap.Logger
}

// EncodeFunc writes img to w in the output format.
type EncodeFunc func(w io.Writer, img image.Image) error

// EncodeJPEG encodes at maximum quality. It is the Cropper's default EncodeFunc.
func EncodeJPEG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(100))
}

// CropperOption configures a Cropper.
type CropperOption func(*Cropper)

// WithDecoder replaces the default Loader.
func WithDecoder(d Decoder) CropperOption {
	return func(c *Cropper) { c.decoder = d }
}

// WithSurfaceFactory replaces the default RasterFactory.
func WithSurfaceFactory(f SurfaceFactory) CropperOption {
	return func(c *Cropper) { c.surfaces = f }
}

// WithEncoder replaces EncodeJPEG. The output is still labelled image/jpeg.
func WithEncoder(fn EncodeFunc) CropperOption {
	return func(c *Cropper) { c.encode = fn }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) CropperOption {
	return func(c *Cropper) { c.logger = l }
}

// NewCropper creates a Cropper that registers its output in blobs. Without
// options it decodes with a Loader bound to the same registry and renders on
// a RasterFactory with default limits.
func NewCropper(blobs *BlobRegistry, opts ...CropperOption) *Cropper {
	c := &Cropper{
		blobs:    blobs,
		surfaces: RasterFactory{},
		encode:   EncodeJPEG,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.decoder == nil {
		c.decoder = NewLoader(blobs)
	}
	return c
}

// Blobs returns the registry resources are registered in.
func (c *Cropper) Blobs() *BlobRegistry {
	return c.blobs
}

// Crop decodes src, copies region onto a fresh surface of exactly
// region.Width x region.Height pixels, encodes it as JPEG at quality 100 and
// registers the bytes.
//
// Decoding is the only step that waits; if ctx is done before it completes
// Crop returns ctx.Err() and allocates nothing further. No handle is
// registered unless every step succeeds.
func (c *Cropper) Crop(ctx context.Context, src ImageSource, region CropRegion) (*EncodedImageResource, error) {
	img, err := c.decode(ctx, src)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	c.logger.Debug("cropping image",
		zap.String("source", src.Ref),
		zap.Int("image_width", bounds.Dx()),
		zap.Int("image_height", bounds.Dy()),
		zap.Int("x", region.X),
		zap.Int("y", region.Y),
		zap.Int("width", region.Width),
		zap.Int("height", region.Height),
	)

	if err := region.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}

	data, err := c.render(img, region)
	if err != nil {
		return nil, err
	}

	url := c.blobs.Register(data, JPEGMimeType)
	return &EncodedImageResource{
		URL:      url,
		Width:    region.Width,
		Height:   region.Height,
		MimeType: JPEGMimeType,
		Size:     len(data),
	}, nil
}

// CropNamed crops one of the RegionNames out of src.
func (c *Cropper) CropNamed(ctx context.Context, src ImageSource, name string) (*EncodedImageResource, error) {
	img, err := c.decode(ctx, src)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()
	region, err := RegionFor(name, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	return c.Crop(ctx, SourceImage(img), region)
}

// Release revokes the resource's handle. It reports whether the handle was
// still live.
func (c *Cropper) Release(res *EncodedImageResource) bool {
	if res == nil {
		return false
	}
	return c.blobs.Revoke(res.URL)
}

// Bytes returns the encoded bytes behind a live resource.
func (c *Cropper) Bytes(res *EncodedImageResource) ([]byte, error) {
	data, _, err := c.blobs.Resolve(res.URL)
	return data, err
}

type decodeResult struct {
	img image.Image
	err error
}

func (c *Cropper) decode(ctx context.Context, src ImageSource) (image.Image, error) {
	if src.Image != nil {
		return src.Image, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan decodeResult, 1)
	go func() {
		img, err := c.decoder.Decode(ctx, src.Ref)
		done <- decodeResult{img: img, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			var de *DecodeError
			if errors.As(res.err, &de) || errors.Is(res.err, context.Canceled) || errors.Is(res.err, context.DeadlineExceeded) {
				return nil, res.err
			}
			return nil, &DecodeError{Ref: src.Ref, Err: res.err}
		}
		if res.img == nil {
			return nil, &DecodeError{Ref: src.Ref, Err: errors.New("decoder returned no image")}
		}
		// A decode that raced with cancellation is discarded.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return res.img, nil
	}
}

func (c *Cropper) render(img image.Image, region CropRegion) ([]byte, error) {
	surface, err := c.surfaces.NewSurface(region.Width, region.Height)
	if err != nil {
		var sue *SurfaceUnavailableError
		if errors.As(err, &sue) {
			return nil, err
		}
		return nil, &SurfaceUnavailableError{Width: region.Width, Height: region.Height, Err: err}
	}
	defer surface.Release()

	surface.CopyFrom(img, region.Rect().Add(img.Bounds().Min))

	var buf bytes.Buffer
	if err := c.encode(&buf, surface.Image()); err != nil {
		return nil, &EncodeError{Err: err}
	}
	if buf.Len() == 0 {
		return nil, &EncodeError{Err: errors.New("encoder produced no data")}
	}
	return buf.Bytes(), nil
}

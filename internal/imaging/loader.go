package imaging

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF format decoder
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder
)

// DefaultMaxSourceBytes bounds how much a single source reference may read.
const DefaultMaxSourceBytes = 64 << 20

// DefaultCacheEntries is the ImageCache size when none is given.
const DefaultCacheEntries = 32

// Decoder turns an image reference into decoded pixels.
//
// Decode may block on I/O and must return promptly once ctx is done.
type Decoder interface {
	Decode(ctx context.Context, ref string) (image.Image, error)
}

// ImageCache holds recently decoded sources keyed by their reference string
// (file path or URL), evicting the least recently used entry when full.
//
// An entry is only served while its source is unchanged: files are checked
// by modification time and size, URLs by a conditional request against the
// ETag or Last-Modified the entry was fetched with. URLs that send neither
// are not cached.
//
// Blob handles and data URLs are never cached: their bytes already live in
// memory and blob handles may be revoked at any time.
type ImageCache struct {
	entries *lru.Cache[string, *decoded]
}

type decoded struct {
	img    image.Image
	format string
	size   int64

	modTime      time.Time
	etag         string
	lastModified string
}

// NewImageCache creates an empty cache holding at most maxEntries images.
// A non-positive maxEntries means DefaultCacheEntries.
func NewImageCache(maxEntries int) *ImageCache {
	if maxEntries <= 0 {
		maxEntries = DefaultCacheEntries
	}
	entries, _ := lru.New[string, *decoded](maxEntries)
	return &ImageCache{entries: entries}
}

func (c *ImageCache) get(ref string) (*decoded, bool) {
	return c.entries.Get(ref)
}

func (c *ImageCache) put(ref string, d *decoded) {
	c.entries.Add(ref, d)
}

func (c *ImageCache) remove(ref string) {
	c.entries.Remove(ref)
}

// Clear removes all images from the cache, freeing the associated memory.
func (c *ImageCache) Clear() {
	c.entries.Purge()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int {
	return c.entries.Len()
}

// Loader resolves image references and decodes them.
//
// Supported references:
//   - blob:<id>      a handle issued by the Loader's BlobRegistry
//   - data:...       an RFC 2397 data URL (base64 or percent-encoded)
//   - http(s)://...  fetched with the Loader's HTTP client
//   - file://...     or a plain filesystem path
//
// Supported formats are PNG, JPEG, GIF, BMP, TIFF and WebP. EXIF orientation
// is applied, so the decoded dimensions are the natural display dimensions.
//
// The declared image size is checked against the decode limits before any
// pixel buffer is allocated.
type Loader struct {
	blobs        *BlobRegistry
	cache        *ImageCache
	client       *http.Client
	maxBytes     int64
	maxDimension int
	maxPixels    int
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets the client used for http(s) references.
func WithHTTPClient(client *http.Client) LoaderOption {
	return func(l *Loader) { l.client = client }
}

// WithFetchTimeout sets the timeout of the default HTTP client.
func WithFetchTimeout(d time.Duration) LoaderOption {
	return func(l *Loader) { l.client = &http.Client{Timeout: d} }
}

// WithCache enables caching of path and URL sources.
func WithCache(cache *ImageCache) LoaderOption {
	return func(l *Loader) { l.cache = cache }
}

// WithMaxSourceBytes limits how many bytes one reference may read.
func WithMaxSourceBytes(n int64) LoaderOption {
	return func(l *Loader) { l.maxBytes = n }
}

// WithDecodeLimits rejects sources declaring a side longer than maxDimension
// or more than maxPixels pixels. Non-positive values keep the defaults.
func WithDecodeLimits(maxDimension, maxPixels int) LoaderOption {
	return func(l *Loader) {
		if maxDimension > 0 {
			l.maxDimension = maxDimension
		}
		if maxPixels > 0 {
			l.maxPixels = maxPixels
		}
	}
}

// NewLoader creates a Loader resolving blob: handles through blobs, which may
// be nil when blob references are not needed.
func NewLoader(blobs *BlobRegistry, opts ...LoaderOption) *Loader {
	l := &Loader{
		blobs:        blobs,
		client:       &http.Client{Timeout: 30 * time.Second},
		maxBytes:     DefaultMaxSourceBytes,
		maxDimension: DefaultMaxDimension,
		maxPixels:    DefaultMaxSurfacePixels,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Decode implements Decoder.
//
// Failures are reported as *DecodeError, except for cancellation which is
// returned as ctx.Err().
func (l *Loader) Decode(ctx context.Context, ref string) (image.Image, error) {
	d, err := l.load(ctx, ref)
	if err != nil {
		return nil, err
	}
	return d.img, nil
}

// payload is what read produced for a reference. notModified means the
// cached entry passed in is still current and data is empty.
type payload struct {
	data         []byte
	modTime      time.Time
	etag         string
	lastModified string
	notModified  bool
}

func (p *payload) cacheable() bool {
	return !p.modTime.IsZero() || p.etag != "" || p.lastModified != ""
}

func (l *Loader) load(ctx context.Context, ref string) (*decoded, error) {
	cacheable := l.cache != nil && !IsBlobURL(ref) && !strings.HasPrefix(ref, "data:")
	var cached *decoded
	if cacheable {
		cached, _ = l.cache.get(ref)
	}

	p, err := l.read(ctx, ref, cached)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if cached != nil {
			l.cache.remove(ref)
		}
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	if p.notModified {
		return cached, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(p.data))
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	if err := l.checkDimensions(cfg.Width, cfg.Height); err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}

	img, err := imaging.Decode(bytes.NewReader(p.data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Ref: ref, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d := &decoded{
		img:          img,
		format:       format,
		size:         int64(len(p.data)),
		modTime:      p.modTime,
		etag:         p.etag,
		lastModified: p.lastModified,
	}
	if cacheable {
		if p.cacheable() {
			l.cache.put(ref, d)
		} else if cached != nil {
			l.cache.remove(ref)
		}
	}
	return d, nil
}

func (l *Loader) checkDimensions(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image declares invalid size %dx%d", width, height)
	}
	if width > l.maxDimension || height > l.maxDimension {
		return fmt.Errorf("image is %dx%d, over the %d pixel side limit", width, height, l.maxDimension)
	}
	if int64(width)*int64(height) > int64(l.maxPixels) {
		return fmt.Errorf("image is %dx%d, over the %d pixel limit", width, height, l.maxPixels)
	}
	return nil
}

func (l *Loader) read(ctx context.Context, ref string, cached *decoded) (*payload, error) {
	switch {
	case ref == "":
		return nil, errors.New("empty image reference")
	case IsBlobURL(ref):
		if l.blobs == nil {
			return nil, fmt.Errorf("%w: no registry for %s", ErrBlobNotFound, ref)
		}
		data, _, err := l.blobs.Resolve(ref)
		if err != nil {
			return nil, err
		}
		return &payload{data: data}, nil
	case strings.HasPrefix(ref, "data:"):
		data, err := parseDataURL(ref)
		if err != nil {
			return nil, err
		}
		return &payload{data: data}, nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return l.fetch(ctx, ref, cached)
	case strings.HasPrefix(ref, "file://"):
		u, err := url.Parse(ref)
		if err != nil {
			return nil, fmt.Errorf("invalid file URL: %w", err)
		}
		return l.readFile(u.Path, cached)
	default:
		return l.readFile(ref, cached)
	}
}

func (l *Loader) readFile(path string, cached *decoded) (*payload, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat image: %w", err)
	}
	if cached != nil && cached.modTime.Equal(info.ModTime()) && cached.size == info.Size() {
		return &payload{notModified: true}, nil
	}

	data, err := l.readAll(f)
	if err != nil {
		return nil, err
	}
	return &payload{data: data, modTime: info.ModTime()}, nil
}

func (l *Loader) fetch(ctx context.Context, ref string, cached *decoded) (*payload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if cached != nil {
		if cached.etag != "" {
			req.Header.Set("If-None-Match", cached.etag)
		}
		if cached.lastModified != "" {
			req.Header.Set("If-Modified-Since", cached.lastModified)
		}
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return &payload{notModified: true}, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch image: status %s", resp.Status)
	}

	data, err := l.readAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &payload{
		data:         data,
		etag:         resp.Header.Get("ETag"),
		lastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, l.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > l.maxBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", l.maxBytes)
	}
	return data, nil
}

// parseDataURL decodes "data:[<mediatype>][;base64],<payload>".
func parseDataURL(ref string) ([]byte, error) {
	header, body, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data URL: missing ','")
	}
	if strings.HasSuffix(header, ";base64") {
		data, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("malformed data URL payload: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(body)
	if err != nil {
		return nil, fmt.Errorf("malformed data URL payload: %w", err)
	}
	return []byte(s), nil
}

// ImageInfo contains metadata about a decoded image source.
type ImageInfo struct {
	// Width is the natural image width in pixels.
	Width int `json:"width"`

	// Height is the natural image height in pixels.
	Height int `json:"height"`

	// Format is the format detected from the content: "png", "jpeg", "gif",
	// "bmp", "tiff" or "webp".
	Format string `json:"format"`

	// ColorDepth indicates the bit depth per channel: "8-bit" or "16-bit".
	ColorDepth string `json:"color_depth"`

	// HasAlpha indicates whether the decoded image carries an alpha channel.
	HasAlpha bool `json:"has_alpha"`

	// SizeBytes is the size of the encoded source in bytes.
	SizeBytes int64 `json:"size_bytes"`
}

// LoadImageInfo decodes ref and reports its metadata.
//
// Color depth is determined by the decoded Go image type:
//   - *image.RGBA64, *image.NRGBA64, *image.Gray16 -> "16-bit"
//   - All other types -> "8-bit"
func (l *Loader) LoadImageInfo(ctx context.Context, ref string) (*ImageInfo, error) {
	d, err := l.load(ctx, ref)
	if err != nil {
		return nil, err
	}

	bounds := d.img.Bounds()

	hasAlpha := false
	colorDepth := "8-bit"
	switch d.img.(type) {
	case *image.RGBA, *image.NRGBA:
		hasAlpha = true
	case *image.RGBA64, *image.NRGBA64:
		hasAlpha = true
		colorDepth = "16-bit"
	case *image.Gray16:
		colorDepth = "16-bit"
	}

	return &ImageInfo{
		Width:      bounds.Dx(),
		Height:     bounds.Dy(),
		Format:     d.format,
		ColorDepth: colorDepth,
		HasAlpha:   hasAlpha,
		SizeBytes:  d.size,
	}, nil
}

// Dimensions is the natural size of a source.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// GetDimensions decodes ref and reports only its size.
func (l *Loader) GetDimensions(ctx context.Context, ref string) (*Dimensions, error) {
	img, err := l.Decode(ctx, ref)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return &Dimensions{Width: b.Dx(), Height: b.Dy()}, nil
}

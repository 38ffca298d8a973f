package imaging

import (
	"fmt"
	"image"
	"math"

	"github.com/anthonynsimon/bild/clone"
	"github.com/lucasb-eyer/go-colorful"
)

// DefaultCompareTolerance is the per-channel difference (0-255) a JPEG
// re-encode at quality 100 stays within on photographic content.
const DefaultCompareTolerance = 16

// CompareResult reports how closely a cropped image reproduces a source region.
type CompareResult struct {
	Match           bool    `json:"match"`
	SameSize        bool    `json:"same_size"`
	TotalPixels     int     `json:"total_pixels"`
	PixelsDifferent int     `json:"pixels_different"`
	MaxChannelDiff  int     `json:"max_channel_diff"`
	MeanDistance    float64 `json:"mean_lab_distance"`
	Tolerance       int     `json:"tolerance"`
}

// CompareCrop compares cropped against the region of src it was cut from.
//
// Pixel (i, j) of cropped is compared with pixel (region.X+i, region.Y+j) of
// src. A pixel counts as different when any channel differs by more than
// tolerance; the result matches when sizes agree and no pixel differs.
func CompareCrop(src image.Image, region CropRegion, cropped image.Image, tolerance int) (*CompareResult, error) {
	sb := src.Bounds()
	if err := region.Validate(sb.Dx(), sb.Dy()); err != nil {
		return nil, err
	}
	if tolerance < 0 {
		return nil, fmt.Errorf("tolerance must be >= 0, got %d", tolerance)
	}

	a := clone.AsRGBA(src)
	b := clone.AsRGBA(cropped)
	ab, bb := a.Bounds(), b.Bounds()

	w := min(region.Width, bb.Dx())
	h := min(region.Height, bb.Dy())

	res := &CompareResult{
		SameSize:    bb.Dx() == region.Width && bb.Dy() == region.Height,
		TotalPixels: w * h,
		Tolerance:   tolerance,
	}

	var totalDist float64
	for j := 0; j < h; j++ {
		for i := 0; i < w; i++ {
			pa := a.RGBAAt(ab.Min.X+region.X+i, ab.Min.Y+region.Y+j)
			pb := b.RGBAAt(bb.Min.X+i, bb.Min.Y+j)

			diff := max(absDiff(pa.R, pb.R), absDiff(pa.G, pb.G), absDiff(pa.B, pb.B))
			if diff > res.MaxChannelDiff {
				res.MaxChannelDiff = diff
			}
			if diff > tolerance {
				res.PixelsDifferent++
			}

			ca, _ := colorful.MakeColor(pa)
			cb, _ := colorful.MakeColor(pb)
			totalDist += ca.DistanceLab(cb)
		}
	}

	if res.TotalPixels > 0 {
		res.MeanDistance = math.Round(totalDist/float64(res.TotalPixels)*1000) / 1000
	}
	res.Match = res.SameSize && res.PixelsDifferent == 0
	return res, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"
)

func TestCompareCrop_Identical(t *testing.T) {
	src := createGradientImage(40, 40)
	region := CropRegion{X: 10, Y: 5, Width: 20, Height: 20}

	cropped := image.NewRGBA(image.Rect(0, 0, 20, 20))
	draw.Draw(cropped, cropped.Bounds(), src, image.Pt(10, 5), draw.Src)

	res, err := CompareCrop(src, region, cropped, 0)
	if err != nil {
		t.Fatalf("CompareCrop failed: %v", err)
	}
	if !res.Match || res.MaxChannelDiff != 0 || res.MeanDistance != 0 {
		t.Errorf("exact copy should match with zero difference: %+v", res)
	}
	if res.TotalPixels != 400 {
		t.Errorf("TotalPixels: got %d, want 400", res.TotalPixels)
	}
}

func TestCompareCrop_Different(t *testing.T) {
	src := createPatternImage(100, 100)
	cropped := createInMemoryImage(50, 50, color.RGBA{0, 255, 0, 255})

	res, err := CompareCrop(src, CropRegion{Width: 50, Height: 50}, cropped, DefaultCompareTolerance)
	if err != nil {
		t.Fatalf("CompareCrop failed: %v", err)
	}
	if res.Match {
		t.Error("green image should not match the red quadrant")
	}
	if res.PixelsDifferent != 2500 || res.MaxChannelDiff != 255 {
		t.Errorf("got %+v", res)
	}
}

func TestCompareCrop_SizeMismatch(t *testing.T) {
	src := createPatternImage(100, 100)
	cropped := createInMemoryImage(40, 50, color.RGBA{255, 0, 0, 255})

	res, err := CompareCrop(src, CropRegion{Width: 50, Height: 50}, cropped, DefaultCompareTolerance)
	if err != nil {
		t.Fatalf("CompareCrop failed: %v", err)
	}
	if res.SameSize || res.Match {
		t.Errorf("size mismatch must not match: %+v", res)
	}
	if res.TotalPixels != 2000 || res.PixelsDifferent != 0 {
		t.Errorf("overlap comparison: got %+v", res)
	}
}

func TestCompareCrop_Errors(t *testing.T) {
	src := createPatternImage(10, 10)
	cropped := createInMemoryImage(5, 5, color.RGBA{255, 0, 0, 255})

	if _, err := CompareCrop(src, CropRegion{X: 8, Width: 5, Height: 5}, cropped, 0); !errors.Is(err, ErrInvalidRegion) {
		t.Errorf("invalid region: got %v", err)
	}
	if _, err := CompareCrop(src, CropRegion{Width: 5, Height: 5}, cropped, -1); err == nil {
		t.Error("negative tolerance should fail")
	}
}

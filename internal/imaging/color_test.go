package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestSampleColor(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 0, 0, 255})

	result, err := SampleColor(img, 5, 5)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}

	if result.Hex != "#ff0000" {
		t.Errorf("Hex: got %s, want #ff0000", result.Hex)
	}
	if result.RGBA != (RGBAColor{255, 0, 0, 255}) {
		t.Errorf("RGBA: got %+v, want {255 0 0 255}", result.RGBA)
	}
	if result.HSL != (HSLColor{0, 100, 50}) {
		t.Errorf("HSL: got %+v, want {0 100 50}", result.HSL)
	}
}

func TestSampleColor_KnownColors(t *testing.T) {
	tests := []struct {
		name    string
		color   color.RGBA
		wantHex string
		wantH   int
	}{
		{"green", color.RGBA{0, 255, 0, 255}, "#00ff00", 120},
		{"blue", color.RGBA{0, 0, 255, 255}, "#0000ff", 240},
		{"white", color.RGBA{255, 255, 255, 255}, "#ffffff", 0},
		{"black", color.RGBA{0, 0, 0, 255}, "#000000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := createInMemoryImage(3, 3, tt.color)
			result, err := SampleColor(img, 1, 1)
			if err != nil {
				t.Fatalf("SampleColor failed: %v", err)
			}
			if result.Hex != tt.wantHex {
				t.Errorf("Hex: got %s, want %s", result.Hex, tt.wantHex)
			}
			if result.HSL.H != tt.wantH {
				t.Errorf("Hue: got %d, want %d", result.HSL.H, tt.wantH)
			}
		})
	}
}

func TestSampleColor_OutOfBounds(t *testing.T) {
	img := createInMemoryImage(10, 10, color.RGBA{255, 0, 0, 255})

	for _, p := range []image.Point{{-1, 0}, {0, -1}, {10, 0}, {0, 10}} {
		if _, err := SampleColor(img, p.X, p.Y); err == nil {
			t.Errorf("SampleColor(%d,%d) should fail", p.X, p.Y)
		}
	}
}

func TestSampleColor_RelativeToOrigin(t *testing.T) {
	sub := createPatternImage(100, 100).SubImage(image.Rect(50, 0, 100, 50))

	result, err := SampleColor(sub, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.Hex != "#00ff00" {
		t.Errorf("Hex: got %s, want #00ff00 (top-right quadrant)", result.Hex)
	}
}

func TestSampleColor_Transparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))

	result, err := SampleColor(img, 0, 0)
	if err != nil {
		t.Fatalf("SampleColor failed: %v", err)
	}
	if result.RGBA.A != 0 || result.Hex != "#000000" {
		t.Errorf("transparent pixel: got %+v", result)
	}
}

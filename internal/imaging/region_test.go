package imaging

import (
	"errors"
	"image"
	"math"
	"testing"
)

func TestCropRegion_Validate(t *testing.T) {
	tests := []struct {
		name    string
		region  CropRegion
		wantErr bool
	}{
		{"top-left quadrant", CropRegion{0, 0, 50, 50}, false},
		{"full image", CropRegion{0, 0, 100, 100}, false},
		{"touching bottom-right edge", CropRegion{99, 99, 1, 1}, false},
		{"x negative", CropRegion{-1, 0, 10, 10}, true},
		{"y negative", CropRegion{0, -1, 10, 10}, true},
		{"zero width", CropRegion{0, 0, 0, 10}, true},
		{"zero height", CropRegion{0, 0, 10, 0}, true},
		{"x+width over edge", CropRegion{80, 0, 50, 10}, true},
		{"y+height over edge", CropRegion{0, 80, 10, 50}, true},
		{"origin past edge", CropRegion{100, 0, 1, 1}, true},
		{"overflowing width", CropRegion{10, 0, math.MaxInt, 10}, true},
		{"overflowing x", CropRegion{math.MaxInt, 0, 10, 10}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.region.Validate(100, 100)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%+v) = %v, wantErr %v", tt.region, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("error %v is not ErrInvalidRegion", err)
			}
		})
	}
}

func TestCropRegion_Rect(t *testing.T) {
	r := CropRegion{X: 10, Y: 20, Width: 30, Height: 40}
	if got, want := r.Rect(), image.Rect(10, 20, 40, 60); got != want {
		t.Errorf("Rect: got %v, want %v", got, want)
	}
}

func TestRegionFor(t *testing.T) {
	tests := []struct {
		name string
		w, h int
		want CropRegion
	}{
		{"top-left", 100, 100, CropRegion{0, 0, 50, 50}},
		{"bottom-right", 100, 100, CropRegion{50, 50, 50, 50}},
		{"center", 100, 100, CropRegion{25, 25, 50, 50}},
		{"center-square", 100, 60, CropRegion{20, 0, 60, 60}},
		{"center-square", 60, 100, CropRegion{0, 20, 60, 60}},
		// 101/2 = 50 (integer division)
		{"top-left", 101, 101, CropRegion{0, 0, 50, 50}},
		{"bottom-right", 101, 101, CropRegion{50, 50, 51, 51}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RegionFor(tt.name, tt.w, tt.h)
			if err != nil {
				t.Fatalf("RegionFor failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("RegionFor(%s, %d, %d) = %+v, want %+v", tt.name, tt.w, tt.h, got, tt.want)
			}
			if err := got.Validate(tt.w, tt.h); err != nil {
				t.Errorf("named region is invalid: %v", err)
			}
		})
	}
}

func TestRegionFor_AllNamesValid(t *testing.T) {
	for _, name := range RegionNames {
		r, err := RegionFor(name, 64, 48)
		if err != nil {
			t.Errorf("RegionFor(%s) failed: %v", name, err)
			continue
		}
		if err := r.Validate(64, 48); err != nil {
			t.Errorf("RegionFor(%s) produced invalid region: %v", name, err)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&DecodeError{Ref: "x", Err: errors.New("bad")}, "decode_error"},
		{&InvalidRegionError{}, "invalid_region"},
		{&SurfaceUnavailableError{Err: errors.New("oom")}, "surface_unavailable"},
		{&EncodeError{Err: errors.New("bad")}, "encode_error"},
		{ErrBlobNotFound, "blob_not_found"},
		{errors.New("other"), ""},
	}

	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

package imaging

import (
	"errors"
	"sync"
	"testing"
)

func TestBlobRegistry(t *testing.T) {
	r := NewBlobRegistry()

	url := r.Register([]byte{1, 2, 3}, "image/jpeg")
	if !IsBlobURL(url) {
		t.Fatalf("handle %q does not use the blob scheme", url)
	}
	if r.Len() != 1 {
		t.Errorf("Len: got %d, want 1", r.Len())
	}

	data, mime, err := r.Resolve(url)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(data) != 3 || mime != "image/jpeg" {
		t.Errorf("Resolve: got %v %q", data, mime)
	}

	if !r.Revoke(url) {
		t.Error("Revoke of a live handle should return true")
	}
	if r.Revoke(url) {
		t.Error("second Revoke should return false")
	}
	if _, _, err := r.Resolve(url); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Resolve after Revoke: got %v, want ErrBlobNotFound", err)
	}
	if r.Len() != 0 {
		t.Errorf("Len after Revoke: got %d, want 0", r.Len())
	}
}

func TestBlobRegistry_UniqueHandles(t *testing.T) {
	r := NewBlobRegistry()
	a := r.Register([]byte("a"), "text/plain")
	b := r.Register([]byte("a"), "text/plain")
	if a == b {
		t.Errorf("identical content received the same handle %q", a)
	}
}

func TestBlobRegistry_Concurrent(t *testing.T) {
	r := NewBlobRegistry()
	var wg sync.WaitGroup

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				url := r.Register([]byte{byte(j)}, "application/octet-stream")
				if _, _, err := r.Resolve(url); err != nil {
					t.Errorf("Resolve failed: %v", err)
				}
				r.Revoke(url)
			}
		}()
	}

	wg.Wait()
	if r.Len() != 0 {
		t.Errorf("Len after concurrent use: got %d, want 0", r.Len())
	}
}

func TestIsBlobURL(t *testing.T) {
	tests := map[string]bool{
		"blob:123":          true,
		"blob:":             true,
		"/tmp/a.png":        false,
		"https://x/blob:1":  false,
		"data:image/png,aa": false,
	}
	for ref, want := range tests {
		if got := IsBlobURL(ref); got != want {
			t.Errorf("IsBlobURL(%q) = %v, want %v", ref, got, want)
		}
	}
}

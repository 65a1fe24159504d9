package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func solid(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func createTestJPEG(w, h int) []byte {
	var buf bytes.Buffer
	jpeg.Encode(&buf, solid(w, h, color.RGBA{255, 0, 0, 255}), &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, solid(w, h, color.RGBA{0, 0, 255, 255}))
	return buf.Bytes()
}

func decodedBounds(t *testing.T, data []byte) image.Rectangle {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	return img.Bounds()
}

func TestProcessPNGOutputsJPEG(t *testing.T) {
	result, err := Process(bytes.NewReader(createTestPNG(100, 100)), ItemImage)
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if result.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", result.MIME)
	}
	if len(result.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessDownscalesPerKind(t *testing.T) {
	tests := []struct {
		kind  Kind
		w, h  int
		wantW int
		wantH int
	}{
		{ItemImage, 2048, 1024, 1024, 512},
		{ItemImage, 300, 600, 300, 600},
		{Avatar, 1000, 500, 256, 128},
		{Avatar, 100, 100, 100, 100},
	}

	for _, tt := range tests {
		result, err := Process(bytes.NewReader(createTestJPEG(tt.w, tt.h)), tt.kind)
		if err != nil {
			t.Fatalf("Process %dx%d: %v", tt.w, tt.h, err)
		}
		b := decodedBounds(t, result.Data)
		if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
			t.Errorf("kind %d %dx%d: expected %dx%d, got %dx%d", tt.kind, tt.w, tt.h, tt.wantW, tt.wantH, b.Dx(), b.Dy())
		}
	}
}

func TestProcessRejectsNonImage(t *testing.T) {
	_, err := Process(strings.NewReader("just some text, not an image"), ItemImage)
	if err == nil {
		t.Error("expected error for non-image data")
	}
}

func TestProcessRejectsOversizedUpload(t *testing.T) {
	big := bytes.Repeat([]byte{0xff}, MaxUploadSize+1)
	_, err := Process(bytes.NewReader(big), Avatar)
	if err == nil {
		t.Error("expected error for oversized upload")
	}
}

func TestObjectPath(t *testing.T) {
	if got := Avatar.ObjectPath("u1"); got != "u1/avatar.jpg" {
		t.Errorf("avatar path: got %q", got)
	}
	if got := ItemImage.ObjectPath("LAP-0001"); got != "LAP-0001/image.jpg" {
		t.Errorf("item path: got %q", got)
	}
	if Avatar.Bucket() != "avatars" || ItemImage.Bucket() != "item-images" {
		t.Error("unexpected buckets")
	}
}

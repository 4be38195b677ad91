package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func createTestJPEG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 0, 0, 255})
		}
	}
	var buf bytes.Buffer
	jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	return buf.Bytes()
}

func createTestPNG(w, h int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 0, 255, 255})
		}
	}
	var buf bytes.Buffer
	png.Encode(&buf, img)
	return buf.Bytes()
}

func TestProcessJPEG(t *testing.T) {
	data := createTestJPEG(100, 100)
	photo, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process JPEG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %s", photo.MIME)
	}
	if len(photo.Data) == 0 {
		t.Error("expected non-empty data")
	}
}

func TestProcessPNG(t *testing.T) {
	data := createTestPNG(100, 100)
	photo, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process PNG: %v", err)
	}
	if photo.MIME != "image/jpeg" {
		t.Errorf("expected image/jpeg (always outputs JPEG), got %s", photo.MIME)
	}
}

func TestProcessDownscale(t *testing.T) {
	data := createTestJPEG(2048, 2048)
	photo, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process large photo: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		t.Errorf("expected max %dx%d, got %dx%d", MaxDimension, MaxDimension, bounds.Dx(), bounds.Dy())
	}
}

func TestProcessSmallImageNotUpscaled(t *testing.T) {
	data := createTestJPEG(50, 50)
	photo, err := Process(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Process small photo: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(photo.Data))
	if err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 50 || bounds.Dy() != 50 {
		t.Errorf("small photo should not be resized: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnail(t *testing.T) {
	data := createTestJPEG(1000, 500)
	thumb, err := Thumbnail(data)
	if err != nil {
		t.Fatalf("Thumbnail: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(thumb.Data))
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() > ThumbDimension || bounds.Dy() > ThumbDimension {
		t.Errorf("expected max %dx%d, got %dx%d", ThumbDimension, ThumbDimension, bounds.Dx(), bounds.Dy())
	}
	if bounds.Dx() != 2*bounds.Dy() {
		t.Errorf("aspect ratio not preserved: got %dx%d", bounds.Dx(), bounds.Dy())
	}
}

func TestProcessInvalidFormat(t *testing.T) {
	_, err := Process(bytes.NewReader([]byte("not an image")))
	if err == nil {
		t.Error("expected error for invalid format")
	}
}

func TestProcessGIFRejected(t *testing.T) {
	// GIF magic bytes.
	_, err := Process(bytes.NewReader([]byte("GIF89a...")))
	if err == nil {
		t.Error("expected error for GIF")
	}
}

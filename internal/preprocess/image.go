// Package preprocess loads and prepares photos for face detection: decoding
// from a file path or an inline base64 payload, resizing, upscaling and
// contrast enhancement. Bounding boxes detected on a prepared image must be
// mapped back to original coordinates using the returned scale factor.
package preprocess

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
)

const (
	// DetectionMaxDim caps the working size for group-photo detection.
	DetectionMaxDim = 1600
	// EnrollmentMaxDim caps single-face enrollment images; smaller is
	// faster and a lone face survives the downscale.
	EnrollmentMaxDim = 800
)

// Decode decodes JPEG, PNG, GIF or BMP image bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	return img, nil
}

// DecodeBase64 decodes a base64-encoded image, accepting both raw payloads
// and data URLs ("data:image/jpeg;base64,...").
func DecodeBase64(encoded string) (image.Image, error) {
	if idx := strings.Index(encoded, ","); idx >= 0 {
		encoded = encoded[idx+1:]
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return Decode(data)
}

// DecodeFile reads and decodes an image from disk.
func DecodeFile(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image %s: %w", path, err)
	}
	img, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// EncodeJPEG encodes an image as JPEG for transport to the embedder.
func EncodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}

// MaxDim returns the larger of the image's width and height.
func MaxDim(img image.Image) int {
	b := img.Bounds()
	return max(b.Dx(), b.Dy())
}

// ResizeToFit scales the image down so neither dimension exceeds maxSize,
// keeping the aspect ratio. Returns the (possibly unchanged) image and the
// scale factor that was applied; 1.0 means no resize happened.
func ResizeToFit(img image.Image, maxSize int) (image.Image, float64) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxSize && height <= maxSize {
		return img, 1.0
	}

	scale := float64(maxSize) / float64(max(width, height))
	newWidth := int(float64(width) * scale)
	newHeight := int(float64(height) * scale)

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
	return resized, scale
}

// Upscale enlarges the image by the given factor. Used by the detection
// retry pass to recover small faces.
func Upscale(img image.Image, factor float64) image.Image {
	bounds := img.Bounds()
	newWidth := int(float64(bounds.Dx()) * factor)
	newHeight := int(float64(bounds.Dy()) * factor)

	upscaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(upscaled, upscaled.Bounds(), img, bounds, draw.Over, nil)
	return upscaled
}

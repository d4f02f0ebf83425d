package preprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Luma limits below which an image is considered too dark or too flat for
// reliable detection and gets contrast enhancement.
const (
	darkMeanLimit = 100.0
	flatStdLimit  = 40.0
)

// PrepareForDetection resizes a photo to the detection working size and
// applies contrast enhancement when the image is dark or low-contrast (the
// main recall failure modes for group photos). Returns the prepared image
// and the scale factor applied, so detected bounding boxes can be mapped
// back via coord_original = coord_prepared / scale.
func PrepareForDetection(img image.Image) (image.Image, float64) {
	img, scale := ResizeToFit(img, DetectionMaxDim)

	mean, std := lumaStats(img)
	if mean < darkMeanLimit || std < flatStdLimit {
		img = equalizeContrast(img)
	}
	return img, scale
}

// lumaStats computes the mean and standard deviation of the image's
// luminance, using the ITU-R BT.601 luma formula.
func lumaStats(img image.Image) (mean, std float64) {
	bounds := img.Bounds()
	count := float64(bounds.Dx() * bounds.Dy())
	if count == 0 {
		return 0, 0
	}

	var sum, sumSq float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			sum += luma
			sumSq += luma * luma
		}
	}

	mean = sum / count
	variance := sumSq/count - mean*mean
	if variance < 0 {
		variance = 0
	}
	std = math.Sqrt(variance)
	return mean, std
}

// equalizeContrast applies global histogram equalization on the luma
// channel, scaling each pixel's RGB by the luma gain so hue is preserved.
func equalizeContrast(img image.Image) image.Image {
	bounds := img.Bounds()

	// Normalize source access; also gives us a mutable copy.
	src := image.NewRGBA(bounds)
	draw.Copy(src, bounds.Min, img, bounds, draw.Src, nil)

	var histogram [256]int
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	lumaAt := func(i int) float64 {
		return 0.299*float64(src.Pix[i]) + 0.587*float64(src.Pix[i+1]) + 0.114*float64(src.Pix[i+2])
	}

	for i := 0; i < len(src.Pix); i += 4 {
		histogram[lumaIndex(lumaAt(i))]++
	}

	// Cumulative distribution mapped back to [0, 255].
	var cdf [256]float64
	cumulative := 0
	for v := 0; v < 256; v++ {
		cumulative += histogram[v]
		cdf[v] = float64(cumulative) / float64(total) * 255.0
	}

	out := image.NewRGBA(bounds)
	for i := 0; i < len(src.Pix); i += 4 {
		luma := lumaAt(i)
		gain := 1.0
		if luma > 0 {
			gain = cdf[lumaIndex(luma)] / luma
		}
		out.Pix[i] = clampByte(float64(src.Pix[i]) * gain)
		out.Pix[i+1] = clampByte(float64(src.Pix[i+1]) * gain)
		out.Pix[i+2] = clampByte(float64(src.Pix[i+2]) * gain)
		out.Pix[i+3] = src.Pix[i+3]
	}
	return out
}

func lumaIndex(luma float64) int {
	i := int(luma)
	if i < 0 {
		return 0
	}
	if i > 255 {
		return 255
	}
	return i
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

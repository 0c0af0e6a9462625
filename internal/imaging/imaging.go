// Package imaging handles the image work the runners do on the CPU side:
// probing source dimensions, deriving pipeline dimensions, and preparing
// resized init images for image-to-image and upscale calls.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Probe returns the pixel dimensions of a PNG without decoding the full image.
func Probe(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("decode image config: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// DeriveDimensions computes pipeline dimensions from a source image: if both
// sides fit within maxDim they are kept, otherwise the image is scaled so the
// larger side equals maxDim, preserving aspect ratio. Each axis is then
// floored to the nearest multiple of granularity, with granularity as the
// minimum. Unreadable images report an error; the caller falls back to its
// defaults.
func DeriveDimensions(path string, maxDim, granularity int) (int, int, error) {
	w, h, err := Probe(path)
	if err != nil {
		return 0, 0, err
	}

	if w > maxDim || h > maxDim {
		if w >= h {
			h = h * maxDim / w
			w = maxDim
		} else {
			w = w * maxDim / h
			h = maxDim
		}
	}

	w -= w % granularity
	h -= h % granularity
	if w < granularity {
		w = granularity
	}
	if h < granularity {
		h = granularity
	}
	return w, h, nil
}

// ResizePNG decodes a PNG, resamples it to width x height with Catmull-Rom
// interpolation, and re-encodes it. Used to prepare init images at the exact
// dimensions the pipeline will generate at.
func ResizePNG(path string, width, height int) ([]byte, error) {
	src, err := decode(path)
	if err != nil {
		return nil, err
	}
	return encode(resample(src, width, height))
}

// ScalePNG multiplies both source dimensions by scale and resamples. It
// returns the encoded image along with the original and scaled dimensions;
// upscale output dimensions are deliberately not rounded to any granularity.
func ScalePNG(path string, scale float64) (data []byte, origW, origH, newW, newH int, err error) {
	src, err := decode(path)
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}

	bounds := src.Bounds()
	origW, origH = bounds.Dx(), bounds.Dy()
	newW = int(float64(origW) * scale)
	newH = int(float64(origH) * scale)

	data, err = encode(resample(src, newW, newH))
	if err != nil {
		return nil, 0, 0, 0, 0, err
	}
	return data, origW, origH, newW, newH, nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode png: %w", err)
	}
	return img, nil
}

func resample(src image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)
	return dst
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

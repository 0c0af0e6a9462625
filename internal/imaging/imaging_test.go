package imaging_test

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"genforge/internal/imaging"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func decodeDims(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestProbe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "probe.png")
	writePNG(t, path, 320, 240)

	w, h, err := imaging.Probe(path)
	require.NoError(t, err)
	assert.Equal(t, 320, w)
	assert.Equal(t, 240, h)
}

func TestProbe_MissingFile(t *testing.T) {
	_, _, err := imaging.Probe(filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestProbe_NotAnImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	_, _, err := imaging.Probe(path)
	assert.Error(t, err)
}

func TestDeriveDimensions(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name         string
		srcW, srcH   int
		maxDim       int
		granularity  int
		wantW, wantH int
	}{
		{name: "landscape scaled down", srcW: 1440, srcH: 960, maxDim: 720, granularity: 16, wantW: 720, wantH: 480},
		{name: "portrait scaled down", srcW: 960, srcH: 1440, maxDim: 720, granularity: 16, wantW: 480, wantH: 720},
		{name: "small image kept", srcW: 640, srcH: 480, maxDim: 720, granularity: 16, wantW: 640, wantH: 480},
		{name: "floored to granularity", srcW: 700, srcH: 500, maxDim: 720, granularity: 16, wantW: 688, wantH: 496},
		{name: "granularity is the floor", srcW: 10, srcH: 10, maxDim: 720, granularity: 16, wantW: 16, wantH: 16},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name+".png")
			writePNG(t, path, tc.srcW, tc.srcH)

			w, h, err := imaging.DeriveDimensions(path, tc.maxDim, tc.granularity)
			require.NoError(t, err)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestDeriveDimensions_UnreadableImage(t *testing.T) {
	_, _, err := imaging.DeriveDimensions(filepath.Join(t.TempDir(), "missing.png"), 720, 16)
	assert.Error(t, err)
}

func TestResizePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	writePNG(t, path, 200, 100)

	data, err := imaging.ResizePNG(path, 96, 64)
	require.NoError(t, err)

	w, h := decodeDims(t, data)
	assert.Equal(t, 96, w)
	assert.Equal(t, 64, h)
}

func TestScalePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "src.png")
	writePNG(t, path, 100, 80)

	data, origW, origH, newW, newH, err := imaging.ScalePNG(path, 1.5)
	require.NoError(t, err)
	assert.Equal(t, 100, origW)
	assert.Equal(t, 80, origH)
	assert.Equal(t, 150, newW)
	assert.Equal(t, 120, newH)

	w, h := decodeDims(t, data)
	assert.Equal(t, 150, w)
	assert.Equal(t, 120, h)
}

func TestScalePNG_MissingFile(t *testing.T) {
	_, _, _, _, _, err := imaging.ScalePNG(filepath.Join(t.TempDir(), "missing.png"), 2)
	assert.Error(t, err)
}

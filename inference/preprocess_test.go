package inference

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

func uniformImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

const pad = float32(LetterboxGray) / 255

func TestPrepareInput(t *testing.T) {
	img := uniformImage(100, 50, color.RGBA{R: 255, G: 0, B: 51, A: 255})
	dst := make([]float32, 3*32*32)

	lb, err := PrepareInput(img, dst, 32, 32)
	require.NoError(t, err)
	assert.Equal(t, Letterbox{Scale: 0.32, PadLeft: 0, PadTop: 8}, lb)

	plane := 32 * 32
	for _, i := range []int{8 * 32, 16*32 + 5, 23*32 + 31} {
		assert.InDelta(t, 1.0, dst[i], 0.01, "red plane")
		assert.InDelta(t, 0.0, dst[plane+i], 0.01, "green plane")
		assert.InDelta(t, 0.2, dst[2*plane+i], 0.01, "blue plane")
	}
	for _, i := range []int{0, 7*32 + 31, 24 * 32, plane - 1} {
		for c := 0; c < 3; c++ {
			assert.InDelta(t, pad, dst[c*plane+i], 1e-6, "padding")
		}
	}
}

func TestPrepareInputSquare(t *testing.T) {
	img := uniformImage(64, 64, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	dst := make([]float32, 3*32*32)

	lb, err := PrepareInput(img, dst, 32, 32)
	require.NoError(t, err)
	assert.Equal(t, Letterbox{Scale: 0.5}, lb)
	for i := range dst {
		assert.InDelta(t, 1.0, dst[i], 0.01)
	}
}

func TestPrepareInputLetterboxRoundTrip(t *testing.T) {
	// White 200x100 block at (400,100) on a black 1280x320 frame.
	src := uniformImage(1280, 320, color.RGBA{A: 255})
	for y := 100; y < 200; y++ {
		for x := 400; x < 600; x++ {
			src.SetRGBA(x, y, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
	dst := make([]float32, 3*640*640)

	lb, err := PrepareInput(src, dst, 640, 640)
	require.NoError(t, err)
	assert.Equal(t, Letterbox{Scale: 0.5, PadLeft: 0, PadTop: 240}, lb)

	// The content keeps its aspect ratio: 640x160 rows 240..399.
	assert.InDelta(t, pad, dst[239*640+250], 1e-6, "above content")
	assert.InDelta(t, 0.0, dst[240*640+10], 0.01, "black frame")
	assert.InDelta(t, 1.0, dst[(240+75)*640+250], 0.01, "block centre")
	assert.InDelta(t, pad, dst[400*640+250], 1e-6, "below content")

	// A detection of the block in network space maps back onto the source.
	output := make([]float32, 5)
	output[0], output[1], output[2], output[3], output[4] = 250, 240+75, 100, 50, 0.9
	results, err := postprocess.DecodeYOLOv8(output, postprocess.YOLOv8Config{
		NumClasses: 1, InputWidth: 640, InputHeight: 640, SrcWidth: 1280, SrcHeight: 320,
		Scale: lb.Scale, PadLeft: lb.PadLeft, PadTop: lb.PadTop,
		ConfidenceThreshold: 0.5,
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, images.Box{X1: 400, Y1: 100, X2: 600, Y2: 200}, results[0].Box)
}

func TestPrepareInputErrors(t *testing.T) {
	img := uniformImage(10, 10, color.RGBA{A: 255})

	_, err := PrepareInput(img, make([]float32, 10), 32, 32)
	assert.Error(t, err, "tensor too small")
	_, err = PrepareInput(img, make([]float32, 3*32*32), 0, 32)
	assert.Error(t, err, "invalid size")
	_, err = PrepareInput(image.NewRGBA(image.Rect(0, 0, 0, 0)), make([]float32, 3*32*32), 32, 32)
	assert.Error(t, err)
}

package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

var gray = color.RGBA{R: 128, G: 128, B: 128, A: 255}

func grayImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, gray)
		}
	}
	return img
}

func countColor(img *image.RGBA, r image.Rectangle, c color.RGBA) int {
	n := 0
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if img.RGBAAt(x, y) == c {
				n++
			}
		}
	}
	return n
}

func TestAnnotateSingleDetection(t *testing.T) {
	src := grayImage(640, 480)
	before := images.Clone(src)

	ann := Annotate(src, []postprocess.Result{
		{Box: images.Box{X1: 10, Y1: 10, X2: 100, Y2: 100}, Score: 0.91, Class: 15},
	}, DefaultStyle())

	require.Len(t, ann.Markers, 1)
	m := ann.Markers[0]
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, "1", m.Label)
	assert.Equal(t, image.Rect(10, 10, 100, 100), m.Box)
	assert.Equal(t, image.Rect(10, 10, 40, 30), m.Badge)

	out := ann.Image
	assert.Equal(t, src.Bounds(), out.Bounds())

	// Outline edges.
	assert.Equal(t, Red, out.RGBAAt(100, 50), "right edge includes x2")
	assert.Equal(t, Red, out.RGBAAt(50, 100), "bottom edge includes y2")
	assert.Equal(t, Red, out.RGBAAt(99, 50))
	assert.Equal(t, Red, out.RGBAAt(10, 50), "left edge")
	assert.Equal(t, Red, out.RGBAAt(60, 10), "top edge")

	// Interior and exterior untouched.
	assert.Equal(t, gray, out.RGBAAt(50, 50))
	assert.Equal(t, gray, out.RGBAAt(5, 5))
	assert.Equal(t, gray, out.RGBAAt(101, 50))
	assert.Equal(t, gray, out.RGBAAt(101, 101))

	// Badge is filled and carries the index in a contrasting color.
	assert.Equal(t, Red, out.RGBAAt(39, 29))
	assert.Positive(t, countColor(out, m.Badge, White), "index text must be rendered")
	assert.Zero(t, countColor(out, out.Bounds(), White)-countColor(out, m.Badge, White),
		"text stays inside the badge")

	assert.True(t, images.Equal(before, src), "source image must not be modified")
}

func TestAnnotateNoDetections(t *testing.T) {
	src := grayImage(64, 48)

	ann := Annotate(src, nil, DefaultStyle())

	assert.Empty(t, ann.Markers)
	assert.True(t, images.Equal(src, ann.Image))
	assert.NotSame(t, src, ann.Image)
}

func TestAnnotateMarkerPerDetection(t *testing.T) {
	src := grayImage(800, 600)
	detections := make([]postprocess.Result, 12)
	for i := range detections {
		x := float32(i * 60)
		detections[i] = postprocess.Result{
			Box:   images.Box{X1: x, Y1: 100, X2: x + 50, Y2: 200},
			Score: 0.5,
			Class: i,
		}
	}

	ann := Annotate(src, detections, DefaultStyle())

	require.Len(t, ann.Markers, len(detections))
	for i, m := range ann.Markers {
		assert.Equal(t, i+1, m.Index)
		assert.Equal(t, detections[i].Box.ToRect().Min, m.Badge.Min, "badge anchored at top-left")
		assert.Positive(t, countColor(ann.Image, m.Badge, White))
	}
}

func TestAnnotateDoesNotMutateOnSubImage(t *testing.T) {
	base := grayImage(200, 200)
	src := base.SubImage(image.Rect(50, 50, 150, 150))
	before := images.Clone(base)

	ann := Annotate(src, []postprocess.Result{
		{Box: images.Box{X1: 60, Y1: 60, X2: 120, Y2: 120}, Score: 0.7},
	}, DefaultStyle())

	assert.Equal(t, src.Bounds(), ann.Image.Bounds())
	assert.Equal(t, Red, ann.Image.RGBAAt(60, 90))
	assert.True(t, images.Equal(before, base))
}

func TestBadgeGrowsWithLabel(t *testing.T) {
	dst := grayImage(200, 100)
	style := DefaultStyle()

	short := drawBadge(dst, image.Pt(0, 0), "7", style)
	assert.Equal(t, image.Pt(30, 20), short.Size())

	long := drawBadge(dst, image.Pt(0, 50), "12345", style)
	assert.Equal(t, 5*7+2*style.TextPad, long.Dx(), "marker sized to the text")
	assert.Equal(t, 20, long.Dy())
}

func TestAnnotateBadgeStaysOnCanvas(t *testing.T) {
	src := grayImage(640, 480)

	ann := Annotate(src, []postprocess.Result{
		{Box: images.Box{X1: 620, Y1: 470, X2: 639, Y2: 479}, Score: 0.6},
	}, DefaultStyle())

	require.Len(t, ann.Markers, 1)
	m := ann.Markers[0]
	assert.Equal(t, image.Rect(610, 460, 640, 480), m.Badge, "shifted back inside")
	assert.Positive(t, countColor(ann.Image, m.Badge, White), "index is drawn")
}

func TestAnnotateBadgeClippedOnTinyImage(t *testing.T) {
	src := grayImage(20, 10)

	ann := Annotate(src, []postprocess.Result{
		{Box: images.Box{X1: 0, Y1: 0, X2: 19, Y2: 9}, Score: 0.6},
	}, DefaultStyle())

	require.Len(t, ann.Markers, 1)
	assert.Equal(t, src.Bounds(), ann.Markers[0].Badge)
}

func TestStrokeRectDegenerate(t *testing.T) {
	dst := grayImage(20, 20)
	strokeRect(dst, image.Rect(5, 5, 5, 15), 2, image.NewUniform(Red))
	assert.Equal(t, Red, dst.RGBAAt(5, 10))
	assert.Equal(t, Red, dst.RGBAAt(5, 15))
	assert.Equal(t, gray, dst.RGBAAt(6, 10))
	assert.Equal(t, gray, dst.RGBAAt(5, 16))
}

package inference

import (
	"image"

	"github.com/nfnt/resize"
	"github.com/pkg/errors"
)

// LetterboxGray is the 8-bit value of the padding around a letterboxed input.
const LetterboxGray = 114

// Letterbox records where the source image sits inside the network input.
//
// Source pixels were multiplied by Scale and then shifted right by PadLeft
// and down by PadTop.
type Letterbox struct {
	Scale   float32
	PadLeft int
	PadTop  int
}

// PrepareInput letterboxes img into the network input and writes it into dst
// as planar RGB scaled to [0,1].
//
// The image is resized with its aspect ratio kept so that it fits the input,
// centred, and the remaining border is filled with LetterboxGray.
//
// Arguments:
//   - img: The image to prepare.
//   - dst: The destination tensor data, at least 3*width*height floats.
//   - width, height: The network input resolution.
//
// Returns:
//   - Letterbox: The scale and padding needed to map boxes back to img.
//   - error: If dst is too small or the dimensions are invalid.
//
// @example
// lb, err := PrepareInput(img, session.Input.GetData(), 640, 640)
// // 1280x320 source: lb.Scale == 0.5, lb.PadTop == 240
func PrepareInput(img image.Image, dst []float32, width, height int) (Letterbox, error) {
	if width <= 0 || height <= 0 {
		return Letterbox{}, errors.Errorf("invalid input dimensions: %dx%d", width, height)
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return Letterbox{}, errors.New("image is empty")
	}
	channelSize := width * height
	if len(dst) < channelSize*3 {
		return Letterbox{}, errors.Errorf("destination tensor only holds %d floats, needs %d",
			len(dst), channelSize*3)
	}

	srcW, srcH := bounds.Dx(), bounds.Dy()
	scale := min(float32(width)/float32(srcW), float32(height)/float32(srcH))
	newW := min(max(int(float32(srcW)*scale+0.5), 1), width)
	newH := min(max(int(float32(srcH)*scale+0.5), 1), height)
	lb := Letterbox{
		Scale:   scale,
		PadLeft: (width - newW) / 2,
		PadTop:  (height - newH) / 2,
	}

	fill := float32(LetterboxGray) / 255.0
	for i := range dst[:channelSize*3] {
		dst[i] = fill
	}
	red := dst[0:channelSize]
	green := dst[channelSize : channelSize*2]
	blue := dst[channelSize*2 : channelSize*3]

	resized := resize.Resize(uint(newW), uint(newH), img, resize.Bilinear)
	rb := resized.Bounds()

	for y := 0; y < newH; y++ {
		row := (y+lb.PadTop)*width + lb.PadLeft
		for x := 0; x < newW; x++ {
			r, g, bl, _ := resized.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			red[row+x] = float32(r>>8) / 255.0
			green[row+x] = float32(g>>8) / 255.0
			blue[row+x] = float32(bl>>8) / 255.0
		}
	}
	return lb, nil
}

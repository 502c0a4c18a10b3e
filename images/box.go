// Package images - Image and bounding box utilities.
package images

import (
	"fmt"
	"image"

	"github.com/chewxy/math32"
)

// Box is an axis-aligned bounding box in source image pixel space.
//
// X1,Y1 is the top-left corner and X2,Y2 the bottom-right corner. A well
// formed box has X1 <= X2 and Y1 <= Y2.
type Box struct {
	X1, Y1, X2, Y2 float32
}

// Width returns the horizontal extent of the box.
func (b Box) Width() float32 {
	return b.X2 - b.X1
}

// Height returns the vertical extent of the box.
func (b Box) Height() float32 {
	return b.Y2 - b.Y1
}

// Area returns the area of the box, or 0 for a degenerate box.
func (b Box) Area() float32 {
	w, h := b.Width(), b.Height()
	if w <= 0 || h <= 0 {
		return 0
	}
	return w * h
}

// Valid reports whether the corners are ordered.
func (b Box) Valid() bool {
	return b.X1 <= b.X2 && b.Y1 <= b.Y2
}

// String formats the box for logs.
func (b Box) String() string {
	return fmt.Sprintf("(%.1f, %.1f)-(%.1f, %.1f)", b.X1, b.Y1, b.X2, b.Y2)
}

// ToRect converts the box to an image.Rectangle.
//
// Fractional pixels are truncated, which only loses sub-pixel precision at the
// edges once the box has been scaled to the original image dimensions.
//
// Returns:
//   - image.Rectangle: The canonical integer rectangle.
//
// @example
// box := Box{X1: 100.5, Y1: 100.5, X2: 200.5, Y2: 300.5}
// rect := box.ToRect() // (100,100)-(200,300)
func (b Box) ToRect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2)).Canon()
}

// Clamp limits the box to the [0,width]x[0,height] frame.
func (b Box) Clamp(width, height int) Box {
	w, h := float32(width), float32(height)
	return Box{
		X1: math32.Min(math32.Max(b.X1, 0), w),
		Y1: math32.Min(math32.Max(b.Y1, 0), h),
		X2: math32.Min(math32.Max(b.X2, 0), w),
		Y2: math32.Min(math32.Max(b.Y2, 0), h),
	}
}

// IoU calculates the Intersection over Union between two boxes.
//
// The intersection corners are the maximum of the top-left corners and the
// minimum of the bottom-right corners. Non-overlapping boxes return 0.
//
// Arguments:
//   - o: The other box to compare against.
//
// Returns:
//   - float32: A value between 0.0 and 1.0.
//
// @example
// a := Box{0, 0, 100, 100}
// b := Box{50, 50, 150, 150}
// iou := a.IoU(b) // ~0.143 (2500/17500)
func (b Box) IoU(o Box) float32 {
	ix1 := math32.Max(b.X1, o.X1)
	iy1 := math32.Max(b.Y1, o.Y1)
	ix2 := math32.Min(b.X2, o.X2)
	iy2 := math32.Min(b.Y2, o.Y2)

	interW := ix2 - ix1
	interH := iy2 - iy1
	if interW <= 0 || interH <= 0 {
		return 0
	}
	inter := interW * interH

	union := b.Area() + o.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

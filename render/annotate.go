package render

import (
	"image"
	"image/draw"
	"strconv"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Marker records the overlay drawn for one detection.
type Marker struct {
	// Index is the 1-based position of the detection in the input list.
	Index int
	// Box is the outlined bounding box.
	Box image.Rectangle
	// Badge is the filled marker holding the index.
	Badge image.Rectangle
	// Label is the text rendered inside the badge.
	Label string
}

// Annotation is an annotated copy of an image.
type Annotation struct {
	// Image is the copy with overlays burned in.
	Image *image.RGBA
	// Markers lists what was drawn, one per detection, in input order.
	Markers []Marker
}

// Annotate draws every detection onto a copy of src.
//
// For each detection, in list order, it outlines the box and paints a filled
// marker anchored at the box's top-left corner containing the detection's
// 1-based index. src is never modified. With no detections the result is a
// pixel-identical copy.
//
// Arguments:
//   - src: The original image.
//   - detections: The ordered detections to draw.
//   - style: Colors, sizes and font.
//
// Returns:
//   - *Annotation: The new image and one Marker per detection.
func Annotate(src image.Image, detections []postprocess.Result, style Style) *Annotation {
	dst := images.Clone(src)
	markers := make([]Marker, 0, len(detections))

	// Boxes first so that no outline is painted over an earlier badge.
	for i, det := range detections {
		rect := det.Box.ToRect()
		strokeRect(dst, rect, style.Thickness, image.NewUniform(style.Outline))
		markers = append(markers, Marker{Index: i + 1, Box: rect, Label: strconv.Itoa(i + 1)})
	}

	for i := range markers {
		markers[i].Badge = drawBadge(dst, markers[i].Box.Min, markers[i].Label, style)
	}

	return &Annotation{Image: dst, Markers: markers}
}

// strokeRect draws the outline of r, thickness pixels wide, inside r.
//
// Both corners are inclusive: the right edge covers column r.Max.X and the
// bottom edge row r.Max.Y. A zero-width or zero-height r draws a 1px line.
func strokeRect(dst draw.Image, r image.Rectangle, thickness int, src image.Image) {
	if thickness <= 0 {
		thickness = 1
	}
	r.Max = r.Max.Add(image.Pt(1, 1))
	// Outlines thicker than half the box fill it.
	t := min(thickness, (r.Dx()+1)/2, (r.Dy()+1)/2)

	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+t), // top
		image.Rect(r.Min.X, r.Max.Y-t, r.Max.X, r.Max.Y), // bottom
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+t, r.Max.Y), // left
		image.Rect(r.Max.X-t, r.Min.Y, r.Max.X, r.Max.Y), // right
	}
	for _, e := range edges {
		draw.Draw(dst, e, src, image.Point{}, draw.Src)
	}
}

// drawBadge paints the index marker at anchor and returns its rectangle.
//
// A badge that would cross the right or bottom edge of dst is moved back
// inside so the index stays readable.
func drawBadge(dst *image.RGBA, anchor image.Point, label string, style Style) image.Rectangle {
	face := style.Face
	textWidth := font.MeasureString(face, label).Ceil()
	metrics := face.Metrics()
	textHeight := (metrics.Ascent + metrics.Descent).Ceil()

	size := image.Pt(
		max(style.BadgeSize.X, textWidth+2*style.TextPad),
		max(style.BadgeSize.Y, textHeight),
	)
	badge := fitInside(image.Rectangle{Min: anchor, Max: anchor.Add(size)}, dst.Bounds())
	draw.Draw(dst, badge, image.NewUniform(style.Badge), image.Point{}, draw.Src)

	// Center the text vertically; baseline sits Ascent below the text top.
	top := badge.Min.Y + (size.Y-textHeight)/2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(style.Text),
		Face: face,
		Dot:  fixed.P(badge.Min.X+style.TextPad, top+metrics.Ascent.Ceil()),
	}
	d.DrawString(label)

	return badge
}

// fitInside shifts r so that it lies within bounds, then clips it when r is
// larger than bounds.
func fitInside(r, bounds image.Rectangle) image.Rectangle {
	if over := r.Max.X - bounds.Max.X; over > 0 {
		r = r.Sub(image.Pt(over, 0))
	}
	if over := r.Max.Y - bounds.Max.Y; over > 0 {
		r = r.Sub(image.Pt(0, over))
	}
	if under := bounds.Min.X - r.Min.X; under > 0 {
		r = r.Add(image.Pt(under, 0))
	}
	if under := bounds.Min.Y - r.Min.Y; under > 0 {
		r = r.Add(image.Pt(0, under))
	}
	return r.Intersect(bounds)
}

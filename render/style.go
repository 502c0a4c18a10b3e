// Package render draws detection overlays onto image copies.
package render

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

var (
	// Red is the default outline and badge fill.
	Red = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	// White is the default index text color.
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// Style defines how boxes and index badges are painted.
type Style struct {
	// Outline is the bounding box color.
	Outline color.RGBA
	// Thickness is the outline width in pixels, drawn inward from the box edge.
	// Both box corners are inside the outline.
	Thickness int
	// Badge is the fill color of the index marker.
	Badge color.RGBA
	// Text is the index color; it should contrast with Badge.
	Text color.RGBA
	// BadgeSize is the minimum marker size. Wider labels grow the marker.
	BadgeSize image.Point
	// TextPad is the horizontal padding kept around the label inside the marker.
	TextPad int
	// Face renders the index.
	Face font.Face
}

// DefaultStyle returns red boxes with 30x20 red markers holding a white index.
func DefaultStyle() Style {
	return Style{
		Outline:   Red,
		Thickness: 2,
		Badge:     Red,
		Text:      White,
		BadgeSize: image.Pt(30, 20),
		TextPad:   3,
		Face:      basicfont.Face7x13,
	}
}

package images

import (
	"fmt"
	"image"
	"math"
)

// Resolution is a named frame size. Width is the long side.
type Resolution struct {
	Name   string `json:"name"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// MegaPixels returns the pixel count in millions, rounded to two decimals
// (2.07 for 1080p).
func (r Resolution) MegaPixels() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	mp := float64(r.Width*r.Height) / 1_000_000.0
	return math.Round(mp*100) / 100
}

// String returns a human-readable summary of the resolution.
func (r Resolution) String() string {
	return fmt.Sprintf("%s (%dx%d, %.2fMP)", r.Name, r.Width, r.Height, r.MegaPixels())
}

// Resolutions lists the common frame sizes, smallest first.
var Resolutions = []Resolution{
	{Name: "nHD", Width: 640, Height: 360},
	{Name: "FWVGA", Width: 854, Height: 480},
	{Name: "qHD 540p", Width: 960, Height: 540},
	{Name: "HD 720p", Width: 1280, Height: 720},
	{Name: "Full HD 1080p", Width: 1920, Height: 1080},
	{Name: "QHD 1440p", Width: 2560, Height: 1440},
	{Name: "4K UHD", Width: 3840, Height: 2160},
	{Name: "8K UHD", Width: 7680, Height: 4320},
}

// MinRecommendedSide is the smallest short side that detects small objects reliably.
const MinRecommendedSide = 720

// ClassifyResolution returns the largest listed resolution that fits inside
// the given dimensions, in either orientation.
//
// Arguments:
//   - width: The image width.
//   - height: The image height.
//
// Returns:
//   - Resolution: The matching resolution.
//   - bool: False when the image is smaller than every listed resolution.
//
// @example
// res, ok := ClassifyResolution(1080, 1920) // "Full HD 1080p", true
func ClassifyResolution(width, height int) (Resolution, bool) {
	long, short := max(width, height), min(width, height)

	var (
		best  Resolution
		found bool
	)
	for _, r := range Resolutions {
		if r.Width <= long && r.Height <= short {
			best, found = r, true
		}
	}
	return best, found
}

// QualityHints returns advice for images that are likely to detect poorly.
func QualityHints(bounds image.Rectangle) []string {
	var hints []string
	if short := min(bounds.Dx(), bounds.Dy()); short < MinRecommendedSide {
		hints = append(hints, fmt.Sprintf(
			"Image is %dx%d; use at least %dpx on the short side so small objects are not missed.",
			bounds.Dx(), bounds.Dy(), MinRecommendedSide))
	}
	if long, short := max(bounds.Dx(), bounds.Dy()), min(bounds.Dx(), bounds.Dy()); short > 0 && long/short >= 4 {
		hints = append(hints, "Image is very elongated; objects will be squeezed when resized for the model.")
	}
	return hints
}

//go:build !gocv

// Package preview - Desktop windows showing a run's original and annotated images.
//
// Windows need OpenCV; build with -tags gocv to enable them.
package preview

import "image"

// Available reports whether this build can open windows.
const Available = false

// Show always fails with ErrUnavailable.
func Show(_, _ image.Image) error {
	return ErrUnavailable
}

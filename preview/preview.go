//go:build gocv

// Package preview - Desktop windows showing a run's original and annotated images.
package preview

import (
	"image"

	"github.com/pkg/errors"
	"gocv.io/x/gocv"
)

// Available reports whether this build can open windows.
const Available = true

// Show opens the original and annotated images side by side and blocks until
// a key is pressed or both windows are closed.
//
// Arguments:
//   - original: The submitted image.
//   - annotated: The image with detections drawn.
//
// Returns:
//   - error: An error if either image cannot be converted for display.
func Show(original, annotated image.Image) error {
	left, err := toMat(original)
	if err != nil {
		return errors.Wrap(err, "original image")
	}
	defer left.Close()

	right, err := toMat(annotated)
	if err != nil {
		return errors.Wrap(err, "annotated image")
	}
	defer right.Close()

	origWindow := gocv.NewWindow(OriginalWindow)
	defer origWindow.Close()
	finalWindow := gocv.NewWindow(FinalWindow)
	defer finalWindow.Close()

	finalWindow.MoveWindow(left.Cols()+20, 0)
	origWindow.IMShow(left)
	finalWindow.IMShow(right)

	for origWindow.IsOpen() || finalWindow.IsOpen() {
		if origWindow.WaitKey(100) >= 0 {
			return nil
		}
	}
	return nil
}

// toMat converts an image to a BGR Mat for display.
func toMat(img image.Image) (gocv.Mat, error) {
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.Mat{}, err
	}
	return mat, nil
}

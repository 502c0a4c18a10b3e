// Package inference - Detection capability and ONNX runtime plumbing.
package inference

import (
	"context"
	"image"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// Detector is the narrow capability the annotation pipeline needs from a
// loaded model.
type Detector interface {
	// Detect returns the objects found in img scoring at least threshold.
	Detect(ctx context.Context, img image.Image, threshold float32) ([]postprocess.Result, error)
	// ResolveLabel maps a class index to its human-readable name.
	ResolveLabel(class int) (string, error)
}

// Package postprocess - Postprocessing utilities for models.
package postprocess

import (
	"fmt"

	"github.com/nvr-ai/go-detect/images"
)

// Result represents a single detection result.
type Result struct {
	// The bounding box of the result in source image pixels.
	Box images.Box
	// The confidence score of the result in [0,1].
	Score float32
	// The predicted class index of the result.
	Class int
}

func (r Result) String() string {
	return fmt.Sprintf("class %d (confidence %.4f): %s", r.Class, r.Score, r.Box)
}

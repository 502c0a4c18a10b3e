package pipeline

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidThreshold is returned for a confidence threshold outside (0, 1].
	ErrInvalidThreshold = errors.New("confidence threshold must be in (0, 1]")
	// ErrModelLoad is returned when the requested model cannot be loaded.
	ErrModelLoad = errors.New("model load failed")
	// ErrDetection is returned when inference fails on the uploaded image.
	ErrDetection = errors.New("detection failed")
	// ErrLabelResolution is returned when a detected class has no name.
	ErrLabelResolution = errors.New("label resolution failed")
	// ErrNoImage is returned for a request without an image.
	ErrNoImage = errors.New("no image provided")
)

// stageError tags err with the pipeline stage that produced it, keeping both
// reachable through errors.Is.
func stageError(stage, err error) error {
	return fmt.Errorf("%w: %w", stage, err)
}

// ValidateThreshold checks a user supplied confidence threshold.
func ValidateThreshold(threshold float32) error {
	if math32.IsNaN(threshold) || threshold <= 0 || threshold > 1 {
		return errors.Wrapf(ErrInvalidThreshold, "got %v", threshold)
	}
	return nil
}

package postprocess

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/images"
)

// YOLOv8Config describes how to decode a YOLOv8 detection head.
type YOLOv8Config struct {
	// NumClasses is the vocabulary size (80 for COCO).
	NumClasses int
	// InputWidth and InputHeight are the network input resolution.
	InputWidth, InputHeight int
	// SrcWidth and SrcHeight are the original image dimensions.
	SrcWidth, SrcHeight int
	// Scale, PadLeft and PadTop describe a letterboxed input: source pixels
	// were multiplied by Scale and shifted by the padding. A zero Scale means
	// the source was stretched to the input size on each axis.
	Scale           float32
	PadLeft, PadTop int
	// ConfidenceThreshold drops candidates scoring below it.
	ConfidenceThreshold float32
	// NMS configures overlap suppression of surviving candidates.
	NMS NMSConfig
}

// Candidates returns the number of anchor points of a YOLOv8 head with
// strides 8, 16 and 32 at the given square input size (8400 at 640).
func Candidates(inputSize int) int {
	n := 0
	for _, stride := range []int{8, 16, 32} {
		cells := inputSize / stride
		n += cells * cells
	}
	return n
}

// DecodeYOLOv8 converts the raw [1, 4+classes, candidates] output of a
// YOLOv8 model into detections in source image coordinates.
//
// Each candidate stores xc, yc, w, h in network input pixels followed by one
// score per class, channel-major. The best class per candidate is kept when
// its score reaches the threshold, boxes have the letterbox padding removed
// and are rescaled to the source image, and greedy NMS removes duplicates.
//
// Arguments:
//   - output: The flat output tensor data.
//   - cfg: Decode configuration.
//
// Returns:
//   - []Result: Detections sorted by descending confidence.
//   - error: If the output size does not match the configuration.
func DecodeYOLOv8(output []float32, cfg YOLOv8Config) ([]Result, error) {
	if cfg.NumClasses <= 0 || cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		return nil, errors.Errorf("invalid decode config: classes=%d input=%dx%d",
			cfg.NumClasses, cfg.InputWidth, cfg.InputHeight)
	}
	channels := 4 + cfg.NumClasses
	if len(output) == 0 || len(output)%channels != 0 {
		return nil, errors.Errorf("output has %d values, not a multiple of %d channels",
			len(output), channels)
	}
	n := len(output) / channels

	scaleX := float32(cfg.SrcWidth) / float32(cfg.InputWidth)
	scaleY := float32(cfg.SrcHeight) / float32(cfg.InputHeight)
	var padX, padY float32
	if cfg.Scale > 0 {
		scaleX, scaleY = 1/cfg.Scale, 1/cfg.Scale
		padX, padY = float32(cfg.PadLeft), float32(cfg.PadTop)
	}

	results := make([]Result, 0, 64)
	for idx := 0; idx < n; idx++ {
		classID := -1
		probability := math32.Inf(-1)
		for col := 0; col < cfg.NumClasses; col++ {
			if p := output[n*(col+4)+idx]; p > probability {
				probability = p
				classID = col
			}
		}
		if probability < cfg.ConfidenceThreshold {
			continue
		}

		xc, yc := output[idx], output[n+idx]
		w, h := output[2*n+idx], output[3*n+idx]
		box := images.Box{
			X1: (xc - w/2 - padX) * scaleX,
			Y1: (yc - h/2 - padY) * scaleY,
			X2: (xc + w/2 - padX) * scaleX,
			Y2: (yc + h/2 - padY) * scaleY,
		}.Clamp(cfg.SrcWidth, cfg.SrcHeight)

		results = append(results, Result{
			Box:   box,
			Score: math32.Min(probability, 1),
			Class: classID,
		})
	}

	SortByScore(results)
	return ApplyGreedyNMS(results, cfg.NMS), nil
}

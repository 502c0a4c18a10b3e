// Package detectors - Configuration for ONNX YOLOv8 inference.
package detectors

import "github.com/nvr-ai/go-detect/inference/providers"

// Config represents the configuration shared by every loaded ONNX detector.
type Config struct {
	// ModelDir holds the <model>.onnx files named in the model registry.
	ModelDir string `json:"model_dir" yaml:"model_dir"`

	// SharedLibPath is the onnxruntime library; empty picks the platform default.
	SharedLibPath string `json:"shared_lib_path" yaml:"shared_lib_path"`

	// NMSThreshold controls Non-Maximum Suppression IoU threshold.
	NMSThreshold float32 `json:"nms_threshold" yaml:"nms_threshold"`

	// ClassAwareNMS keeps overlapping boxes of different classes, e.g. a
	// person riding a horse.
	ClassAwareNMS bool `json:"class_aware_nms" yaml:"class_aware_nms"`

	// IntraOpThreads parallelizes execution within graph nodes. 0 uses the default.
	IntraOpThreads int `json:"intra_op_threads" yaml:"intra_op_threads"`

	// Provider selects CPU or an accelerator.
	Provider providers.Config `json:"provider" yaml:"provider"`

	// InputName and OutputName are the graph tensor names of exported YOLOv8 models.
	InputName  string `json:"input_name" yaml:"input_name"`
	OutputName string `json:"output_name" yaml:"output_name"`
}

// DefaultConfig returns the configuration for ultralytics YOLOv8 ONNX exports.
//
// Returns:
//   - Config: Defaults with models read from ./models.
//
// @example
// config := DefaultConfig()
// config.ModelDir = "/var/lib/go-detect/models"
// cache := NewCache(ONNXFactory(config, log), log)
func DefaultConfig() Config {
	return Config{
		ModelDir:      "./models",
		NMSThreshold:  0.7,
		ClassAwareNMS: true,
		InputName:     "images",
		OutputName:    "output0",
	}
}

// Package models - registry for models.
package models

import (
	"path/filepath"

	"github.com/pkg/errors"
)

// ErrUnknownModel is returned for a model name outside the registry.
var ErrUnknownModel = errors.New("unknown model")

// DefaultModel is selected when a request names no model.
const DefaultModel = ModelNameYOLOv8n

// Registry is the fixed menu of pretrained models, fastest first.
var Registry = []Spec{
	{
		Name:        ModelNameYOLOv8n,
		Family:      FamilyYOLO,
		File:        "yolov8n.onnx",
		Title:       "YOLOv8n",
		Description: "Fastest model, best for low-end devices. Good accuracy.",
		InputSize:   640,
	},
	{
		Name:        ModelNameYOLOv8s,
		Family:      FamilyYOLO,
		File:        "yolov8s.onnx",
		Title:       "YOLOv8s",
		Description: "Balanced speed and accuracy. Recommended for most users.",
		InputSize:   640,
	},
	{
		Name:        ModelNameYOLOv8m,
		Family:      FamilyYOLO,
		File:        "yolov8m.onnx",
		Title:       "YOLOv8m",
		Description: "Higher accuracy, slower. Use for detailed images.",
		InputSize:   640,
	},
}

// Lookup returns the registered spec for a model name.
//
// Arguments:
//   - name: The model identifier, e.g. "yolov8s".
//
// Returns:
//   - Spec: The model definition.
//   - error: ErrUnknownModel if the name is not registered.
//
// Example:
//
// ```go
//
//	spec, err := models.Lookup(models.ModelNameYOLOv8s)
//	if err != nil {
//	    log.Fatalf("Failed to find model: %v", err)
//	}
//	path := spec.Path("/var/lib/models")
//
// ```
func Lookup(name Name) (Spec, error) {
	for _, spec := range Registry {
		if spec.Name == name {
			return spec, nil
		}
	}
	return Spec{}, errors.Wrapf(ErrUnknownModel, "%q", name)
}

// Names lists the registered model names in menu order.
func Names() []Name {
	names := make([]Name, len(Registry))
	for i, spec := range Registry {
		names[i] = spec.Name
	}
	return names
}

// Path returns the model file location under dir.
func (s Spec) Path(dir string) string {
	return filepath.Join(dir, s.File)
}

// Classes returns the label vocabulary of the model.
func (s Spec) Classes() (*OutputClassSet, error) {
	return ClassSet(s.Family)
}

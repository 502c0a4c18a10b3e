// Package models - Pretrained detection model definitions.
package models

// Family identifies the naming convention / dataset of a model's outputs.
type Family string

const (
	// FamilyCOCO is the 80 COCO classes + background.
	FamilyCOCO Family = "coco"
	// FamilyYOLO is the 80 COCO classes, no background.
	FamilyYOLO Family = "yolo"
)

// Name is the unique identifier of a model.
type Name string

const (
	// ModelNameYOLOv8n is the nano YOLOv8 detector.
	ModelNameYOLOv8n Name = "yolov8n"
	// ModelNameYOLOv8s is the small YOLOv8 detector.
	ModelNameYOLOv8s Name = "yolov8s"
	// ModelNameYOLOv8m is the medium YOLOv8 detector.
	ModelNameYOLOv8m Name = "yolov8m"
)

// Spec describes one selectable pretrained model.
type Spec struct {
	// Name is the identifier used in requests and the cache.
	Name Name `json:"name" yaml:"name"`
	// Family selects the label vocabulary.
	Family Family `json:"family" yaml:"family"`
	// File is the ONNX file name relative to the model directory.
	File string `json:"file" yaml:"file"`
	// Title is the short display name.
	Title string `json:"title" yaml:"title"`
	// Description is the selection guidance shown to users.
	Description string `json:"description" yaml:"description"`
	// InputSize is the square network input resolution.
	InputSize int `json:"input_size" yaml:"input_size"`
}

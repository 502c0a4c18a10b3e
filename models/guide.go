package models

import (
	"fmt"
	"io"
)

// RecommendedConfidence is the suggested threshold range for everyday photos.
var RecommendedConfidence = [2]float32{0.35, 0.55}

// GuideSection is one heading of the settings guide.
type GuideSection struct {
	Title string
	Tips  []string
}

// Guide returns the recommended settings shown next to the upload form and
// printed by the CLI.
func Guide() []GuideSection {
	selection := GuideSection{Title: "Model Selection"}
	for _, spec := range Registry {
		selection.Tips = append(selection.Tips, spec.Title+": "+spec.Description)
	}

	return []GuideSection{
		selection,
		{
			Title: "Confidence Threshold",
			Tips: []string{
				"Controls how sure the model must be before detecting an object.",
				fmt.Sprintf("Recommended: %.2f - %.2f", RecommendedConfidence[0], RecommendedConfidence[1]),
				"Lower values give more detections but may include mistakes.",
				"Higher values give fewer detections but more accurate ones.",
			},
		},
		{
			Title: "Image Tips",
			Tips: []string{
				"Use clear, high-quality images (minimum 720px).",
				"Avoid blurry or low-light images.",
				"Prefer RGB photos instead of screenshots.",
				"Make sure the object is not too small in the image.",
			},
		},
		{
			Title: "Performance Tips",
			Tips: []string{
				"Small models (n, s) are faster and smoother.",
				"Large models give better accuracy but are slower.",
				"If detection is slow, use YOLOv8n and reduce image size.",
			},
		},
		{
			Title: "Before You Start",
			Tips: []string{
				"Check the image orientation.",
				"Set confidence to a comfortable value.",
				"Select the proper model based on your device.",
			},
		},
	}
}

// WriteGuide prints the guide as plain text.
func WriteGuide(w io.Writer) error {
	for i, section := range Guide() {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, section.Title); err != nil {
			return err
		}
		for _, tip := range section.Tips {
			if _, err := fmt.Fprintf(w, "  - %s\n", tip); err != nil {
				return err
			}
		}
	}
	return nil
}

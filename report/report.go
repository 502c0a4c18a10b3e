// Package report - Tabular summaries of detection results.
package report

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// LabelResolver maps a model class index to its human-readable name.
type LabelResolver interface {
	ResolveLabel(class int) (string, error)
}

// Record is one row of the detected objects table.
type Record struct {
	// ID is the 1-based position of the detection, matching the image marker.
	ID int `json:"ID"`
	// ObjectType is the resolved class name.
	ObjectType string `json:"Object Type"`
	// Confidence is the score formatted with two decimals.
	Confidence string `json:"Confidence"`
}

// Report is the ordered list of records for one run.
type Report struct {
	Records []Record `json:"records"`
	Summary Summary  `json:"summary"`
}

// FormatConfidence renders a score with exactly two decimal places.
//
// @example
// FormatConfidence(0.666) // "0.67"
func FormatConfidence(score float32) string {
	return strconv.FormatFloat(float64(score), 'f', 2, 32)
}

// Build converts detections into records in the same order and numbering as
// the annotated image.
//
// Every detection yields exactly one record. If any class index cannot be
// resolved the whole build fails and no records are returned.
//
// Arguments:
//   - detections: The ordered detections of one run.
//   - labels: The vocabulary of the model that produced them.
//
// Returns:
//   - *Report: The records, empty but non-nil when there are no detections.
//   - error: A wrapped models.ErrLabelOutOfRange for an unknown class.
func Build(detections []postprocess.Result, labels LabelResolver) (*Report, error) {
	records := make([]Record, 0, len(detections))
	for i, det := range detections {
		name, err := labels.ResolveLabel(det.Class)
		if err != nil {
			return nil, errors.Wrapf(err, "detection %d", i+1)
		}
		records = append(records, Record{
			ID:         i + 1,
			ObjectType: name,
			Confidence: FormatConfidence(det.Score),
		})
	}

	return &Report{
		Records: records,
		Summary: Summarize(records, detections),
	}, nil
}

// Empty reports whether the run found no objects.
func (r *Report) Empty() bool {
	return r == nil || len(r.Records) == 0
}

// Count returns the number of records.
func (r *Report) Count() int {
	if r == nil {
		return 0
	}
	return len(r.Records)
}

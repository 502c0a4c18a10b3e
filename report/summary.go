package report

import (
	"github.com/chewxy/math32"

	"github.com/nvr-ai/go-detect/models/postprocess"
)

// TypeCount is the number of detections of one object type.
type TypeCount struct {
	ObjectType string `json:"object_type"`
	Count      int    `json:"count"`
}

// Summary aggregates a report.
type Summary struct {
	// Total is the number of detections.
	Total int `json:"total"`
	// ByType counts detections per object type in order of first appearance.
	ByType []TypeCount `json:"by_type"`
	// MinConfidence, MaxConfidence and MeanConfidence are zero for an empty report.
	MinConfidence  float32 `json:"min_confidence"`
	MaxConfidence  float32 `json:"max_confidence"`
	MeanConfidence float32 `json:"mean_confidence"`
}

// Summarize counts records per type and computes confidence statistics over
// the raw detection scores.
func Summarize(records []Record, detections []postprocess.Result) Summary {
	s := Summary{Total: len(records)}
	if len(records) == 0 {
		return s
	}

	index := make(map[string]int)
	for _, r := range records {
		i, ok := index[r.ObjectType]
		if !ok {
			i = len(s.ByType)
			index[r.ObjectType] = i
			s.ByType = append(s.ByType, TypeCount{ObjectType: r.ObjectType})
		}
		s.ByType[i].Count++
	}

	s.MinConfidence = math32.Inf(1)
	s.MaxConfidence = math32.Inf(-1)
	var sum float32
	for _, d := range detections {
		s.MinConfidence = math32.Min(s.MinConfidence, d.Score)
		s.MaxConfidence = math32.Max(s.MaxConfidence, d.Score)
		sum += d.Score
	}
	s.MeanConfidence = sum / float32(len(detections))
	return s
}

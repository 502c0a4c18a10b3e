package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

type vocabulary struct {
	set *models.OutputClassSet
}

func (v vocabulary) ResolveLabel(class int) (string, error) {
	return v.set.Name(class)
}

var yolo = vocabulary{set: models.YOLOClasses}

func TestFormatConfidence(t *testing.T) {
	tests := []struct {
		score float32
		want  string
	}{
		{0.5, "0.50"},
		{1.0, "1.00"},
		{0.666, "0.67"},
		{0.8749, "0.87"},
		{0.8751, "0.88"},
		{0.91, "0.91"},
		{0, "0.00"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatConfidence(tt.score))
		})
	}
}

func TestBuildSingleDetection(t *testing.T) {
	dets := []postprocess.Result{
		{Box: images.Box{X1: 10, Y1: 10, X2: 100, Y2: 100}, Score: 0.91, Class: 15},
	}

	rep, err := Build(dets, yolo)
	require.NoError(t, err)

	assert.False(t, rep.Empty())
	assert.Equal(t, 1, rep.Count())
	assert.Equal(t, []Record{{ID: 1, ObjectType: "cat", Confidence: "0.91"}}, rep.Records)
}

func TestBuildPreservesOrder(t *testing.T) {
	dets := []postprocess.Result{
		{Score: 0.9, Class: 0},
		{Score: 0.8, Class: 2},
		{Score: 0.7, Class: 0},
	}

	rep, err := Build(dets, yolo)
	require.NoError(t, err)
	require.Len(t, rep.Records, len(dets))

	for i, r := range rep.Records {
		assert.Equal(t, i+1, r.ID)
	}
	assert.Equal(t, "person", rep.Records[0].ObjectType)
	assert.Equal(t, "car", rep.Records[1].ObjectType)
	assert.Equal(t, "person", rep.Records[2].ObjectType)

	assert.Equal(t, 3, rep.Summary.Total)
	assert.Equal(t, []TypeCount{{"person", 2}, {"car", 1}}, rep.Summary.ByType)
	assert.InDelta(t, 0.7, rep.Summary.MinConfidence, 1e-6)
	assert.InDelta(t, 0.9, rep.Summary.MaxConfidence, 1e-6)
	assert.InDelta(t, 0.8, rep.Summary.MeanConfidence, 1e-6)
}

func TestBuildEmpty(t *testing.T) {
	rep, err := Build(nil, yolo)
	require.NoError(t, err)
	require.NotNil(t, rep)

	assert.True(t, rep.Empty())
	assert.Zero(t, rep.Count())
	assert.Zero(t, rep.Summary.Total)
	assert.Zero(t, rep.Summary.MaxConfidence)
}

func TestBuildUnknownClass(t *testing.T) {
	dets := []postprocess.Result{
		{Score: 0.9, Class: 0},
		{Score: 0.8, Class: 80},
	}

	rep, err := Build(dets, yolo)
	require.Error(t, err)
	assert.Nil(t, rep, "no partial record list")
	assert.ErrorIs(t, err, models.ErrLabelOutOfRange)
}

func TestBuildDoesNotFilterLowScores(t *testing.T) {
	rep, err := Build([]postprocess.Result{{Score: 0.004, Class: 1}}, yolo)
	require.NoError(t, err)
	assert.Equal(t, "0.00", rep.Records[0].Confidence)
}

func TestRecordJSON(t *testing.T) {
	data, err := json.Marshal(Record{ID: 1, ObjectType: "cat", Confidence: "0.91"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ID":1,"Object Type":"cat","Confidence":"0.91"}`, string(data))
}

func TestNilReport(t *testing.T) {
	var rep *Report
	assert.True(t, rep.Empty())
	assert.Zero(t, rep.Count())
}

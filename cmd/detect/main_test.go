package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/preview"
	"github.com/nvr-ai/go-detect/report"
)

func TestPrintRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, []report.Record{
		{ID: 1, ObjectType: "cat", Confidence: "0.91"},
		{ID: 2, ObjectType: "traffic light", Confidence: "0.50"},
	}))

	assert.Equal(t, ""+
		"ID  Object Type    Confidence\n"+
		"1   cat            0.91\n"+
		"2   traffic light  0.50\n", buf.String())
}

func TestPrintRecordsEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRecords(&buf, nil))
	assert.Equal(t, "No Object Detected\n", buf.String())
}

func TestOutputPath(t *testing.T) {
	assert.Empty(t, outputPath(options{image: "cat.jpg"}, "cat.jpg"))
	assert.Equal(t, "out.png", outputPath(options{image: "cat.jpg", output: "out.png"}, "cat.jpg"))
	assert.Equal(t, filepath.Join("out", "annotated_cat.jpg"),
		outputPath(options{dir: "in", output: "out"}, filepath.Join("in", "cat.jpg")))
}

func TestJoinNames(t *testing.T) {
	assert.Equal(t, "yolov8n, yolov8s, yolov8m", joinNames(models.Names()))
}

func TestRunRequiresOneInput(t *testing.T) {
	assert.Error(t, run(options{}))
	assert.Error(t, run(options{image: "a.png", dir: "b"}))
}

func TestRunShowWindowNeedsOpenCV(t *testing.T) {
	if preview.Available {
		t.Skip("built with OpenCV")
	}
	assert.ErrorIs(t, run(options{image: "a.png", showWindow: true}), preview.ErrUnavailable)
}

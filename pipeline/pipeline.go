// Package pipeline - Runs detection, reporting and annotation for one image.
package pipeline

import (
	"context"
	"image"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/images"
	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
	"github.com/nvr-ai/go-detect/render"
	"github.com/nvr-ai/go-detect/report"
)

// Loader resolves a model name to a ready detector.
type Loader interface {
	Load(name models.Name) (inference.Detector, error)
}

// Recorder persists finished runs.
type Recorder interface {
	Save(ctx context.Context, result *Result) error
}

// Timer measures named pipeline stages.
type Timer interface {
	StartOperation(name string) func()
}

type noopTimer struct{}

func (noopTimer) StartOperation(string) func() { return func() {} }

// Stage names reported to the Timer.
const (
	StageLoad     = "load"
	StageDetect   = "detect"
	StageReport   = "report"
	StageAnnotate = "annotate"
	StageRun      = "run"
)

// Request is one user submission.
type Request struct {
	// Image is the decoded upload. It is never modified.
	Image image.Image
	// Model selects the detector.
	Model models.Name
	// Threshold is the minimum confidence score in (0, 1].
	Threshold float32
}

// Result is the outcome of a successful run.
type Result struct {
	RunID     uuid.UUID
	Model     models.Name
	Threshold float32
	// Original is the image as submitted.
	Original image.Image
	// Annotated is a copy of Original with boxes and index markers drawn.
	Annotated *image.RGBA
	// Detections are the raw detector outputs in display order.
	Detections []postprocess.Result
	// Records holds one row per detection, numbered like the markers.
	Records []report.Record
	Markers []render.Marker
	Summary report.Summary
	// Hints are image quality warnings; they never fail the run.
	Hints   []string
	Elapsed time.Duration
	// CreatedAt is when the run started.
	CreatedAt time.Time
}

// Empty reports whether the run detected nothing.
func (r *Result) Empty() bool {
	return len(r.Records) == 0
}

// Runner executes the detection to annotation pipeline.
//
// A Runner holds no per-run state and may be shared across goroutines as long
// as the detectors returned by its Loader are safe for concurrent use.
type Runner struct {
	loader   Loader
	style    render.Style
	recorder Recorder
	timer    Timer
	log      logrus.FieldLogger
}

// Option configures a Runner.
type Option func(*Runner)

// WithStyle overrides the annotation style.
func WithStyle(style render.Style) Option {
	return func(r *Runner) { r.style = style }
}

// WithRecorder saves every successful run.
func WithRecorder(rec Recorder) Option {
	return func(r *Runner) { r.recorder = rec }
}

// WithTimer reports stage durations to t.
func WithTimer(t Timer) Option {
	return func(r *Runner) { r.timer = t }
}

// WithLogger sets the logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(r *Runner) { r.log = log }
}

// NewRunner creates a Runner that loads models through loader.
func NewRunner(loader Loader, opts ...Option) *Runner {
	r := &Runner{
		loader: loader,
		style:  render.DefaultStyle(),
		timer:  noopTimer{},
		log:    logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.WithField("component", "pipeline")
	return r
}

// Run processes one request.
//
// The report is built before the image is annotated, so a class that cannot
// be named fails the run without producing an image. On any error the
// returned Result is nil.
//
// Arguments:
//   - ctx: Cancels inference and history persistence.
//   - req: The image, model and threshold.
//
// Returns:
//   - *Result: The annotated image and records; Empty() when nothing was found.
//   - error: One of ErrInvalidThreshold, ErrNoImage, ErrModelLoad, ErrDetection or ErrLabelResolution.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	if err := ValidateThreshold(req.Threshold); err != nil {
		return nil, err
	}
	if req.Image == nil {
		return nil, ErrNoImage
	}

	start := time.Now()
	// Failed runs are timed too.
	defer r.timer.StartOperation(StageRun)()
	runID := uuid.New()
	log := r.log.WithFields(logrus.Fields{"run_id": runID, "model": req.Model})

	done := r.timer.StartOperation(StageLoad)
	detector, err := r.loader.Load(req.Model)
	done()
	if err != nil {
		log.WithError(err).Error("model load failed")
		return nil, stageError(ErrModelLoad, err)
	}

	done = r.timer.StartOperation(StageDetect)
	detections, err := detector.Detect(ctx, req.Image, req.Threshold)
	done()
	if err != nil {
		log.WithError(err).Error("detection failed")
		return nil, stageError(ErrDetection, err)
	}

	done = r.timer.StartOperation(StageReport)
	rep, err := report.Build(detections, detector)
	done()
	if err != nil {
		log.WithError(err).Error("label resolution failed")
		return nil, stageError(ErrLabelResolution, err)
	}

	done = r.timer.StartOperation(StageAnnotate)
	ann := render.Annotate(req.Image, detections, r.style)
	done()

	result := &Result{
		RunID:      runID,
		Model:      req.Model,
		Threshold:  req.Threshold,
		Original:   req.Image,
		Annotated:  ann.Image,
		Detections: detections,
		Records:    rep.Records,
		Markers:    ann.Markers,
		Summary:    rep.Summary,
		Hints:      images.QualityHints(req.Image.Bounds()),
		Elapsed:    time.Since(start),
		CreatedAt:  start,
	}

	log.WithFields(logrus.Fields{
		"detections": len(result.Records),
		"elapsed":    result.Elapsed,
	}).Info("run complete")

	if r.recorder != nil {
		if err := r.recorder.Save(ctx, result); err != nil {
			log.WithError(err).Warn("failed to save run history")
		}
	}

	return result, nil
}

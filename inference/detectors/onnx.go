// Package detectors - ONNX model inference.
package detectors

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models"
	"github.com/nvr-ai/go-detect/models/postprocess"
)

// ONNXDetector runs a YOLOv8 model through onnxruntime.
//
// A detector owns a single session whose input and output tensors are reused
// between runs, so Detect calls are serialized.
type ONNXDetector struct {
	spec    models.Spec
	config  Config
	classes *models.OutputClassSet
	session *inference.Session
	log     logrus.FieldLogger
	mu      sync.Mutex
}

// NewONNXDetector loads the model described by spec.
//
// Arguments:
//   - spec: The registry entry of the model.
//   - config: Shared detector configuration.
//   - log: Logger for load and inference events.
//
// Returns:
//   - *ONNXDetector: The ready detector.
//   - error: An error if the runtime or the model cannot be loaded.
func NewONNXDetector(spec models.Spec, config Config, log logrus.FieldLogger) (*ONNXDetector, error) {
	classes, err := spec.Classes()
	if err != nil {
		return nil, err
	}

	if err := inference.InitializeEnvironment(config.SharedLibPath); err != nil {
		return nil, err
	}

	size := int64(spec.InputSize)
	session, err := inference.NewSession(inference.SessionArgs{
		ModelPath:      spec.Path(config.ModelDir),
		InputName:      config.InputName,
		OutputName:     config.OutputName,
		InputShape:     ort.NewShape(1, 3, size, size),
		OutputShape:    ort.NewShape(1, int64(4+classes.Len()), int64(postprocess.Candidates(spec.InputSize))),
		IntraOpThreads: config.IntraOpThreads,
		Provider:       config.Provider,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load %s", spec.Name)
	}

	log = log.WithField("model", spec.Name)
	log.WithFields(logrus.Fields{
		"path":     spec.Path(config.ModelDir),
		"provider": config.Provider,
	}).Info("model loaded")

	return &ONNXDetector{
		spec:    spec,
		config:  config,
		classes: classes,
		session: session,
		log:     log,
	}, nil
}

// Detect runs inference on the image.
//
// Arguments:
//   - ctx: Checked before the run starts; a started run is not interrupted.
//   - img: The image to detect objects in.
//   - threshold: Minimum confidence of returned detections.
//
// Returns:
//   - []postprocess.Result: Detections in img pixel space, highest confidence first.
//   - error: An error if preprocessing or inference fails.
func (d *ONNXDetector) Detect(ctx context.Context, img image.Image, threshold float32) ([]postprocess.Result, error) {
	if img == nil {
		return nil, errors.New("image is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil, errors.New("detector closed")
	}

	start := time.Now()
	size := d.spec.InputSize
	lb, err := inference.PrepareInput(img, d.session.Input.GetData(), size, size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to prepare input")
	}

	if err := d.session.Session.Run(); err != nil {
		return nil, errors.Wrap(err, "failed to run inference")
	}

	bounds := img.Bounds()
	results, err := postprocess.DecodeYOLOv8(d.session.Output.GetData(), postprocess.YOLOv8Config{
		NumClasses:          d.classes.Len(),
		InputWidth:          size,
		InputHeight:         size,
		SrcWidth:            bounds.Dx(),
		SrcHeight:           bounds.Dy(),
		Scale:               lb.Scale,
		PadLeft:             lb.PadLeft,
		PadTop:              lb.PadTop,
		ConfidenceThreshold: threshold,
		NMS: postprocess.NMSConfig{
			IoUThreshold: d.config.NMSThreshold,
			ClassAware:   d.config.ClassAwareNMS,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode output")
	}

	// Boxes are relative to the image origin; shift them for sub-images.
	if !bounds.Min.Eq(image.Point{}) {
		dx, dy := float32(bounds.Min.X), float32(bounds.Min.Y)
		for i := range results {
			results[i].Box.X1 += dx
			results[i].Box.X2 += dx
			results[i].Box.Y1 += dy
			results[i].Box.Y2 += dy
		}
	}

	d.log.WithFields(logrus.Fields{
		"detections": len(results),
		"threshold":  threshold,
		"elapsed":    time.Since(start),
	}).Debug("inference complete")

	return results, nil
}

// ResolveLabel returns the class name for a class index.
func (d *ONNXDetector) ResolveLabel(class int) (string, error) {
	return d.classes.Name(class)
}

// Spec returns the registry entry of the loaded model.
func (d *ONNXDetector) Spec() models.Spec {
	return d.spec
}

// Close releases the session.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return nil
	}
	err := d.session.Close()
	d.session = nil
	d.log.Info("model released")
	return err
}

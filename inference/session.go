// Package inference - Inference sessions.
package inference

import (
	"os"
	"runtime"
	"sync"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/nvr-ai/go-detect/inference/providers"
)

var (
	envOnce sync.Once
	envErr  error
)

// SharedLibPath returns the default onnxruntime library location for the
// current platform.
//
// Returns:
//   - string: The path to the shared library.
//   - error: If no build is known for this platform.
func SharedLibPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll", nil
		}
	case "darwin":
		return "./third_party/libonnxruntime.1.23.0.dylib", nil
	case "linux":
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so", nil
		}
		return "./third_party/onnxruntime.so", nil
	}
	return "", errors.Errorf("no onnxruntime library for %s/%s", runtime.GOOS, runtime.GOARCH)
}

// InitializeEnvironment loads the onnxruntime shared library once per process.
//
// Arguments:
//   - libPath: Library location; empty selects SharedLibPath.
//
// Returns:
//   - error: The first initialization error, returned on every call.
func InitializeEnvironment(libPath string) error {
	envOnce.Do(func() {
		if libPath == "" {
			libPath, envErr = SharedLibPath()
			if envErr != nil {
				return
			}
		}
		if _, err := os.Stat(libPath); err != nil {
			envErr = errors.Wrapf(err, "ONNX Runtime library not found at %s", libPath)
			return
		}

		ort.SetSharedLibraryPath(libPath)
		if err := ort.InitializeEnvironment(); err != nil {
			envErr = errors.Wrap(err, "error initializing ORT environment")
		}
	})
	return envErr
}

// Session represents a model session from the onnxruntime.
type Session struct {
	Session *ort.AdvancedSession
	Input   *ort.Tensor[float32]
	Output  *ort.Tensor[float32]
}

// SessionArgs describes a single-input single-output detection model.
type SessionArgs struct {
	// ModelPath is the ONNX file to load.
	ModelPath string
	// InputName and OutputName are the graph tensor names.
	InputName, OutputName string
	// InputShape is the NCHW input shape, e.g. 1x3x640x640.
	InputShape ort.Shape
	// OutputShape is the output shape, e.g. 1x84x8400.
	OutputShape ort.Shape
	// IntraOpThreads parallelizes execution within graph nodes. 0 uses the default.
	IntraOpThreads int
	// Provider selects the execution provider.
	Provider providers.Config
}

// NewSession creates the tensors and the ORT session for a model.
//
// Arguments:
//   - args: The model location, tensor names and shapes.
//
// Returns:
//   - *Session: The session, owning its tensors.
//   - error: An error if the model or tensors cannot be created.
func NewSession(args SessionArgs) (*Session, error) {
	if _, err := os.Stat(args.ModelPath); err != nil {
		return nil, errors.Wrapf(err, "model file %s", args.ModelPath)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](args.InputShape)
	if err != nil {
		return nil, errors.Wrap(err, "error creating input tensor")
	}

	outputTensor, err := ort.NewEmptyTensor[float32](args.OutputShape)
	if err != nil {
		inputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating output tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session options")
	}
	defer options.Destroy()

	if args.IntraOpThreads > 0 {
		if err := options.SetIntraOpNumThreads(args.IntraOpThreads); err != nil {
			inputTensor.Destroy()
			outputTensor.Destroy()
			return nil, errors.Wrap(err, "error setting intra-op threads")
		}
	}
	if err := options.SetGraphOptimizationLevel(ort.GraphOptimizationLevelEnableExtended); err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error setting optimization level")
	}

	if err := args.Provider.Apply(options); err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, err
	}

	session, err := ort.NewAdvancedSession(
		args.ModelPath,
		[]string{args.InputName},
		[]string{args.OutputName},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		options,
	)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, errors.Wrap(err, "error creating ORT session")
	}

	return &Session{
		Session: session,
		Input:   inputTensor,
		Output:  outputTensor,
	}, nil
}

// Close releases the resources associated with the Session.
func (s *Session) Close() error {
	var err error
	if s.Session != nil {
		err = s.Session.Destroy()
		s.Session = nil
	}
	if s.Input != nil {
		s.Input.Destroy()
		s.Input = nil
	}
	if s.Output != nil {
		s.Output.Destroy()
		s.Output = nil
	}
	return errors.Wrap(err, "error destroying ORT session")
}

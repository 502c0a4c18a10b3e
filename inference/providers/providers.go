// Package providers - ONNX Runtime execution provider selection.
package providers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
)

// Backend names an ONNX Runtime execution provider.
type Backend string

const (
	// CPU runs inference on the default CPU provider.
	CPU Backend = "cpu"
	// CUDA uses NVIDIA CUDA for GPU acceleration.
	CUDA Backend = "cuda"
	// CoreML uses Apple CoreML for macOS acceleration.
	CoreML Backend = "coreml"
	// OpenVINO uses Intel OpenVINO.
	OpenVINO Backend = "openvino"
)

// ErrUnknownBackend is returned for a provider name outside the supported set.
var ErrUnknownBackend = errors.New("unknown execution provider")

// Backends lists the supported providers.
var Backends = []Backend{CPU, CUDA, CoreML, OpenVINO}

// Config selects the execution provider of every model session.
type Config struct {
	// Backend is the provider. Empty means CPU.
	Backend Backend `json:"backend" yaml:"backend"`
	// Options are passed to the provider as-is.
	// See https://onnxruntime.ai/docs/execution-providers/ for the keys of each backend.
	// CoreML reads a single "flags" key holding the COREML_FLAG bitmask.
	Options map[string]string `json:"options,omitempty" yaml:"options,omitempty"`
}

// ParseBackend resolves a provider name, case-insensitively.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return CPU, nil
	}
	b := Backend(strings.ToLower(name))
	for _, known := range Backends {
		if b == known {
			return b, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownBackend, "%q", name)
}

// Validate checks the backend name and backend specific options.
func (c Config) Validate() error {
	b, err := ParseBackend(string(c.Backend))
	if err != nil {
		return err
	}
	if b == CoreML {
		if _, err := c.coreMLFlags(); err != nil {
			return err
		}
	}
	return nil
}

// Apply appends the configured provider to the session options.
//
// Arguments:
//   - options: The session options of a model being loaded.
//
// Returns:
//   - error: An error if the provider is unknown or unavailable in the loaded runtime.
func (c Config) Apply(options *ort.SessionOptions) error {
	b, err := ParseBackend(string(c.Backend))
	if err != nil {
		return err
	}

	switch b {
	case CUDA:
		cuda, err := ort.NewCUDAProviderOptions()
		if err != nil {
			return errors.Wrap(err, "error creating CUDA options")
		}
		defer cuda.Destroy()
		if len(c.Options) > 0 {
			if err := cuda.Update(c.Options); err != nil {
				return errors.Wrap(err, "error setting CUDA options")
			}
		}
		return errors.Wrap(options.AppendExecutionProviderCUDA(cuda), "error enabling CUDA")
	case CoreML:
		flags, err := c.coreMLFlags()
		if err != nil {
			return err
		}
		return errors.Wrap(options.AppendExecutionProviderCoreML(flags), "error enabling CoreML")
	case OpenVINO:
		return errors.Wrap(options.AppendExecutionProviderOpenVINO(c.Options), "error enabling OpenVINO")
	default:
		return nil
	}
}

func (c Config) coreMLFlags() (uint32, error) {
	v, ok := c.Options["flags"]
	if !ok {
		return 0, nil
	}
	flags, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, errors.Wrap(err, "invalid CoreML flags")
	}
	return uint32(flags), nil
}

// String formats the provider for logs.
func (c Config) String() string {
	if c.Backend == "" {
		return string(CPU)
	}
	if len(c.Options) == 0 {
		return string(c.Backend)
	}
	return fmt.Sprintf("%s %v", c.Backend, c.Options)
}

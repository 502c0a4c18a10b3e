package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackend(t *testing.T) {
	tests := []struct {
		name string
		want Backend
	}{
		{"", CPU},
		{"cpu", CPU},
		{"CUDA", CUDA},
		{"coreml", CoreML},
		{"OpenVINO", OpenVINO},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBackend(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseBackend("tpu")
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, Config{}.Validate())
	assert.NoError(t, Config{Backend: CoreML, Options: map[string]string{"flags": "1"}}.Validate())
	assert.Error(t, Config{Backend: CoreML, Options: map[string]string{"flags": "gpu"}}.Validate())
	assert.ErrorIs(t, Config{Backend: "metal"}.Validate(), ErrUnknownBackend)
}

func TestConfigApplyCPU(t *testing.T) {
	// The CPU provider needs no session options.
	assert.NoError(t, Config{}.Apply(nil))
	assert.NoError(t, Config{Backend: CPU}.Apply(nil))
	assert.ErrorIs(t, Config{Backend: "metal"}.Apply(nil), ErrUnknownBackend)
}

func TestConfigString(t *testing.T) {
	assert.Equal(t, "cpu", Config{}.String())
	assert.Equal(t, "cuda", Config{Backend: CUDA}.String())
	assert.Equal(t, "openvino map[device_type:CPU]", Config{Backend: OpenVINO, Options: map[string]string{"device_type": "CPU"}}.String())
}

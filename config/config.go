// Package config - Runtime settings for the detection server and CLI.
package config

import (
	"os"
	"strconv"

	"github.com/chewxy/math32"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-detect/inference/providers"
	"github.com/nvr-ai/go-detect/models"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "DETECT_"

// Config holds the settings shared by cmd/server and cmd/detect.
type Config struct {
	// Port is the HTTP listen port.
	Port int `yaml:"port"`
	// ModelDir holds the <model>.onnx files.
	ModelDir string `yaml:"model_dir"`
	// SharedLibPath points at libonnxruntime. Empty selects a platform default.
	SharedLibPath string `yaml:"shared_lib_path"`
	// DefaultModel is preselected in the model menu.
	DefaultModel models.Name `yaml:"default_model"`
	// DefaultThreshold is the initial confidence slider value.
	DefaultThreshold float32 `yaml:"default_threshold"`
	// NMSThreshold is the IoU above which overlapping boxes are suppressed.
	NMSThreshold float32 `yaml:"nms_threshold"`
	// ClassAwareNMS suppresses overlaps only between boxes of the same class.
	ClassAwareNMS bool `yaml:"class_aware_nms"`
	// IntraOpThreads limits onnxruntime threads per session. 0 uses the runtime default.
	IntraOpThreads int `yaml:"intra_op_threads"`
	// Provider is the onnxruntime execution provider: cpu, cuda, coreml or openvino.
	Provider string `yaml:"provider"`
	// ProviderOptions are passed to the execution provider.
	ProviderOptions map[string]string `yaml:"provider_options"`
	// HistoryPath is the sqlite database file. Empty disables history.
	HistoryPath string `yaml:"history_path"`
	LogLevel    string `yaml:"log_level"`
	// LogFile, when set, receives a copy of the log output.
	LogFile     string `yaml:"log_file"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Port:             8080,
		ModelDir:         "./models",
		DefaultModel:     models.DefaultModel,
		DefaultThreshold: 0.5,
		NMSThreshold:     0.7,
		ClassAwareNMS:    true,
		HistoryPath:      "",
		LogLevel:         "info",
		MaxUploadMB:      20,
	}
}

// Load builds the configuration.
//
// Sources are applied in order, each overriding the previous: built-in
// defaults, the YAML file at path (skipped when path is empty), a .env file in
// the working directory if present, then DETECT_* environment variables.
//
// Arguments:
//   - path: Optional YAML file.
//
// Returns:
//   - *Config: The validated settings.
//   - error: An error if the file cannot be read or a value is invalid.
//
// @example
// cfg, err := config.Load("detect.yaml")
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var err error
	c.Port, err = getEnvAsInt("PORT", c.Port)
	if err != nil {
		return err
	}
	c.ModelDir = getEnv("MODEL_DIR", c.ModelDir)
	c.SharedLibPath = getEnv("SHARED_LIB_PATH", c.SharedLibPath)
	c.DefaultModel = models.Name(getEnv("DEFAULT_MODEL", string(c.DefaultModel)))
	if c.DefaultThreshold, err = getEnvAsFloat32("DEFAULT_THRESHOLD", c.DefaultThreshold); err != nil {
		return err
	}
	if c.NMSThreshold, err = getEnvAsFloat32("NMS_THRESHOLD", c.NMSThreshold); err != nil {
		return err
	}
	if c.ClassAwareNMS, err = getEnvAsBool("CLASS_AWARE_NMS", c.ClassAwareNMS); err != nil {
		return err
	}
	if c.IntraOpThreads, err = getEnvAsInt("INTRA_OP_THREADS", c.IntraOpThreads); err != nil {
		return err
	}
	c.Provider = getEnv("PROVIDER", c.Provider)
	c.HistoryPath = getEnv("HISTORY_PATH", c.HistoryPath)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
	if c.MaxUploadMB, err = getEnvAsInt("MAX_UPLOAD_MB", c.MaxUploadMB); err != nil {
		return err
	}
	return nil
}

// Validate checks value ranges and that the default model is registered.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range", c.Port)
	}
	if _, err := models.Lookup(c.DefaultModel); err != nil {
		return errors.Wrap(err, "default_model")
	}
	if math32.IsNaN(c.DefaultThreshold) || c.DefaultThreshold <= 0 || c.DefaultThreshold > 1 {
		return errors.Errorf("default_threshold %v must be in (0, 1]", c.DefaultThreshold)
	}
	if math32.IsNaN(c.NMSThreshold) || c.NMSThreshold <= 0 || c.NMSThreshold > 1 {
		return errors.Errorf("nms_threshold %v must be in (0, 1]", c.NMSThreshold)
	}
	if c.IntraOpThreads < 0 {
		return errors.Errorf("intra_op_threads %d must not be negative", c.IntraOpThreads)
	}
	if err := c.ProviderConfig().Validate(); err != nil {
		return errors.Wrap(err, "provider")
	}
	if c.MaxUploadMB <= 0 {
		return errors.Errorf("max_upload_mb %d must be positive", c.MaxUploadMB)
	}
	return nil
}

// ProviderConfig returns the execution provider selection.
func (c *Config) ProviderConfig() providers.Config {
	return providers.Config{Backend: providers.Backend(c.Provider), Options: c.ProviderOptions}
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(EnvPrefix + key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s%s", EnvPrefix, key)
	}
	return v, nil
}

func getEnvAsFloat32(key string, defaultValue float32) (float32, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseFloat(value, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid %s%s", EnvPrefix, key)
	}
	return float32(v), nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(EnvPrefix + key)
	if value == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, errors.Wrapf(err, "invalid %s%s", EnvPrefix, key)
	}
	return v, nil
}

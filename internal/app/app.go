// Package app - Wiring shared by the server and CLI binaries.
package app

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/config"
	"github.com/nvr-ai/go-detect/history"
	"github.com/nvr-ai/go-detect/inference/detectors"
	"github.com/nvr-ai/go-detect/logger"
	"github.com/nvr-ai/go-detect/pipeline"
	"github.com/nvr-ai/go-detect/profiler"
)

// App holds the long lived components built from a Config.
type App struct {
	Config  *config.Config
	Log     *logrus.Logger
	Cache   *detectors.Cache
	History *history.Store
	Runner  *pipeline.Runner
	// Profiler collects pipeline stage timings.
	Profiler *profiler.Profiler

	closers []io.Closer
}

// New builds the logger, model cache, optional history store and runner.
//
// Arguments:
//   - cfg: The loaded configuration.
//
// Returns:
//   - *App: The wired components. Close releases them.
//   - error: An error if logging or the history database cannot be set up.
func New(cfg *config.Config) (*App, error) {
	log, logCloser, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return nil, err
	}
	a := &App{Config: cfg, Log: log}
	a.closers = append(a.closers, logCloser)

	dc := detectors.DefaultConfig()
	dc.ModelDir = cfg.ModelDir
	dc.SharedLibPath = cfg.SharedLibPath
	dc.NMSThreshold = cfg.NMSThreshold
	dc.ClassAwareNMS = cfg.ClassAwareNMS
	dc.IntraOpThreads = cfg.IntraOpThreads
	dc.Provider = cfg.ProviderConfig()
	a.Cache = detectors.NewCache(detectors.ONNXFactory(dc, log), log)

	a.Profiler = profiler.New(0)
	opts := []pipeline.Option{pipeline.WithLogger(log), pipeline.WithTimer(a.Profiler)}
	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.History = store
		opts = append(opts, pipeline.WithRecorder(store))
		log.WithField("path", cfg.HistoryPath).Info("run history enabled")
	}

	a.Runner = pipeline.NewRunner(a.Cache, opts...)
	return a, nil
}

// Close releases loaded models, the history database and the log file.
func (a *App) Close() error {
	var first error
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			first = err
		}
	}
	if a.History != nil {
		if err := a.History.Close(); err != nil && first == nil {
			first = err
		}
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

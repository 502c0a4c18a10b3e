package detectors

import (
	"io"
	"sync"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nvr-ai/go-detect/inference"
	"github.com/nvr-ai/go-detect/models"
)

// Factory constructs the detector for a registered model.
type Factory func(spec models.Spec) (inference.Detector, error)

// ONNXFactory returns a Factory that loads models with onnxruntime.
func ONNXFactory(config Config, log logrus.FieldLogger) Factory {
	return func(spec models.Spec) (inference.Detector, error) {
		return NewONNXDetector(spec, config, log)
	}
}

// entry is one cached model. ready is closed once detector or err is set.
type entry struct {
	ready    chan struct{}
	detector inference.Detector
	err      error
}

// Cache is a process-wide store of loaded detectors keyed by model name.
//
// Models are loaded lazily on first use and reused by every later run.
// Concurrent first loads of the same name construct the model once. A failed
// load is not cached, so the next Load retries it.
type Cache struct {
	factory Factory
	log     logrus.FieldLogger

	mu      sync.Mutex
	entries map[models.Name]*entry
}

// NewCache creates an empty cache.
func NewCache(factory Factory, log logrus.FieldLogger) *Cache {
	return &Cache{
		factory: factory,
		log:     log.WithField("component", "model-cache"),
		entries: make(map[models.Name]*entry),
	}
}

// Load returns the detector for name, constructing it on first use.
//
// Arguments:
//   - name: A registered model name.
//
// Returns:
//   - inference.Detector: The shared detector.
//   - error: models.ErrUnknownModel for names outside the registry, or the load error.
func (c *Cache) Load(name models.Name) (inference.Detector, error) {
	spec, err := models.Lookup(name)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	e, ok := c.entries[name]
	if !ok {
		e = &entry{ready: make(chan struct{})}
		c.entries[name] = e
	}
	c.mu.Unlock()

	if ok {
		<-e.ready
		return e.detector, e.err
	}

	c.log.WithField("model", name).Info("loading model")
	e.detector, e.err = c.factory(spec)
	if e.err != nil {
		e.err = errors.Wrapf(e.err, "load %s", name)
		c.mu.Lock()
		if c.entries[name] == e {
			delete(c.entries, name)
		}
		c.mu.Unlock()
	}
	close(e.ready)

	return e.detector, e.err
}

// Loaded lists the names of the models currently held.
func (c *Cache) Loaded() []models.Name {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]models.Name, 0, len(c.entries))
	for _, name := range models.Names() {
		if _, ok := c.entries[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// Evict drops one model so the next Load reloads it.
func (c *Cache) Evict(name models.Name) error {
	c.mu.Lock()
	e, ok := c.entries[name]
	delete(c.entries, name)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	<-e.ready
	c.log.WithField("model", name).Info("model evicted")
	return closeDetector(e.detector)
}

// Close releases every loaded model.
func (c *Cache) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[models.Name]*entry)
	c.mu.Unlock()

	var firstErr error
	for _, e := range entries {
		<-e.ready
		if err := closeDetector(e.detector); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func closeDetector(d inference.Detector) error {
	if closer, ok := d.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

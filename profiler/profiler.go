// Package profiler - Operation timing and runtime statistics.
package profiler

import (
	"runtime"
	"sort"
	"sync"
	"time"
)

// OperationStats summarizes the recorded durations of one operation.
type OperationStats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Avg   time.Duration `json:"avg"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Last  time.Duration `json:"last"`
}

// RuntimeStats is a snapshot of the Go runtime.
type RuntimeStats struct {
	Uptime     time.Duration `json:"uptime"`
	Goroutines int           `json:"goroutines"`
	CgoCalls   int64         `json:"cgo_calls"`
	HeapAlloc  uint64        `json:"heap_alloc"`
	GCCycles   uint32        `json:"gc_cycles"`
}

// Stats is the profiler report.
type Stats struct {
	Runtime    RuntimeStats     `json:"runtime"`
	Operations []OperationStats `json:"operations"`
}

// timeTracker tracks operation timing statistics over a sliding window.
type timeTracker struct {
	durations []time.Duration
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Profiler records how long named operations take.
//
// Min and Max cover every recorded sample; Avg covers the most recent
// maxSamples. Safe for concurrent use.
type Profiler struct {
	mu         sync.Mutex
	startTime  time.Time
	maxSamples int
	operations map[string]*timeTracker
}

// New creates a profiler keeping up to maxSamples durations per operation.
// A non-positive maxSamples keeps 600.
func New(maxSamples int) *Profiler {
	if maxSamples <= 0 {
		maxSamples = 600
	}
	return &Profiler{
		startTime:  time.Now(),
		maxSamples: maxSamples,
		operations: make(map[string]*timeTracker),
	}
}

// StartOperation begins timing an operation.
//
// Arguments:
// - name: The name of the operation to track
//
// Returns:
// - A function to call when the operation completes
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.Record(name, time.Since(start))
	}
}

// Record adds one duration sample for name.
func (p *Profiler) Record(name string, duration time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	tracker, exists := p.operations[name]
	if !exists {
		tracker = &timeTracker{
			minTime: duration,
			maxTime: duration,
		}
		p.operations[name] = tracker
	}

	tracker.durations = append(tracker.durations, duration)
	tracker.totalTime += duration
	if len(tracker.durations) > p.maxSamples {
		// Remove oldest sample
		tracker.totalTime -= tracker.durations[0]
		tracker.durations = tracker.durations[1:]
	}
	tracker.count++

	tracker.minTime = min(tracker.minTime, duration)
	tracker.maxTime = max(tracker.maxTime, duration)
}

// Stats returns the runtime snapshot and the operations sorted by name.
func (p *Profiler) Stats() Stats {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.Lock()
	defer p.mu.Unlock()

	stats := Stats{
		Runtime: RuntimeStats{
			Uptime:     time.Since(p.startTime),
			Goroutines: runtime.NumGoroutine(),
			CgoCalls:   runtime.NumCgoCall(),
			HeapAlloc:  mem.HeapAlloc,
			GCCycles:   mem.NumGC,
		},
		Operations: make([]OperationStats, 0, len(p.operations)),
	}

	for name, tracker := range p.operations {
		n := len(tracker.durations)
		stats.Operations = append(stats.Operations, OperationStats{
			Name:  name,
			Count: tracker.count,
			Avg:   tracker.totalTime / time.Duration(n),
			Min:   tracker.minTime,
			Max:   tracker.maxTime,
			Last:  tracker.durations[n-1],
		})
	}
	sort.Slice(stats.Operations, func(i, j int) bool {
		return stats.Operations[i].Name < stats.Operations[j].Name
	})
	return stats
}

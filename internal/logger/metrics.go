package logger

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap/zapcore"
)

// TimingStats aggregates the measurements recorded under one timing name
type TimingStats struct {
	Count int
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Average is Total divided by Count, or zero with no measurements
func (s TimingStats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

func (s TimingStats) add(d time.Duration) TimingStats {
	if s.Count == 0 || d < s.Min {
		s.Min = d
	}
	if d > s.Max {
		s.Max = d
	}
	s.Count++
	s.Total += d
	return s
}

// MarshalLogObject writes the stats with durations as strings
func (s TimingStats) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt("count", s.Count)
	enc.AddString("total", s.Total.String())
	enc.AddString("average", s.Average().String())
	enc.AddString("min", s.Min.String())
	enc.AddString("max", s.Max.String())
	return nil
}

// MetricsSnapshot is a copy of a Metrics at one point in time
type MetricsSnapshot struct {
	Counters map[string]int64
	Gauges   map[string]float64
	Timings  map[string]TimingStats
}

// MarshalLogObject writes counters, gauges and timings as nested objects in key order
func (s MetricsSnapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	if err := enc.AddObject("counters", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for _, k := range sortedKeys(s.Counters) {
			enc.AddInt64(k, s.Counters[k])
		}
		return nil
	})); err != nil {
		return err
	}
	if err := enc.AddObject("gauges", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for _, k := range sortedKeys(s.Gauges) {
			enc.AddFloat64(k, s.Gauges[k])
		}
		return nil
	})); err != nil {
		return err
	}
	return enc.AddObject("timings", zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		for _, k := range sortedKeys(s.Timings) {
			if err := enc.AddObject(k, s.Timings[k]); err != nil {
				return err
			}
		}
		return nil
	}))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Metrics tracks counters, gauges and timings for the life of the process. It is safe for
// concurrent use. Timings are folded into running stats as they are recorded, so a long
// watch run does not accumulate measurements.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string]TimingStats
}

var defaultMetrics = NewMetrics()

// NewMetrics creates an empty metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string]TimingStats),
	}
}

// DefaultMetrics returns the process-wide tracker
func DefaultMetrics() *Metrics {
	return defaultMetrics
}

// IncrCounter adds one to a counter
func (m *Metrics) IncrCounter(name string) {
	m.mu.Lock()
	m.counters[name]++
	m.mu.Unlock()
}

// Counter reads a counter; unknown names read 0
func (m *Metrics) Counter(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[name]
}

// SetGauge overwrites a gauge
func (m *Metrics) SetGauge(name string, value float64) {
	m.mu.Lock()
	m.gauges[name] = value
	m.mu.Unlock()
}

// RecordTiming folds one measurement into the named timing
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	m.timings[name] = m.timings[name].add(duration)
	m.mu.Unlock()
}

// Timing returns the stats recorded under name
func (m *Metrics) Timing(name string) TimingStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.timings[name]
}

// Snapshot copies the current values
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := MetricsSnapshot{
		Counters: make(map[string]int64, len(m.counters)),
		Gauges:   make(map[string]float64, len(m.gauges)),
		Timings:  make(map[string]TimingStats, len(m.timings)),
	}
	for k, v := range m.counters {
		snap.Counters[k] = v
	}
	for k, v := range m.gauges {
		snap.Gauges[k] = v
	}
	for k, v := range m.timings {
		snap.Timings[k] = v
	}
	return snap
}

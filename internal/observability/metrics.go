package observability

import (
	"maps"
	"strconv"
	"strings"
	"sync"
	"time"
)

// family is a set of counters keyed by pipe-joined labels.
type family map[string]int64

func (f family) clone() map[string]int64 {
	out := make(map[string]int64, len(f))
	maps.Copy(out, f)
	return out
}

func labels(parts ...string) string { return strings.Join(parts, "|") }

// Metrics keeps in-process counters for requests, error codes and degraded
// multi-step writes. A nil *Metrics discards everything.
type Metrics struct {
	mu       sync.Mutex
	requests family
	errors   family
	partial  family
	latency  map[string]time.Duration
}

// NewMetrics returns empty counters.
func NewMetrics() *Metrics {
	return &Metrics{
		requests: family{},
		errors:   family{},
		partial:  family{},
		latency:  map[string]time.Duration{},
	}
}

// RecordRequest counts one served request and its latency under
// route|method|status.
func (m *Metrics) RecordRequest(route, method string, status int, took time.Duration) {
	if m == nil {
		return
	}
	key := labels(route, method, strconv.Itoa(status))
	m.mu.Lock()
	m.requests[key]++
	m.latency[key] += took
	m.mu.Unlock()
}

// RecordError counts an error envelope under route|method|code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.errors[labels(route, method, code)]++
	m.mu.Unlock()
}

// RecordPartialFailure counts a secondary write that failed after the
// primary write of operation succeeded.
func (m *Metrics) RecordPartialFailure(operation, step string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.partial[labels(operation, step)]++
	m.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Requests        map[string]int64 `json:"requests"`
	Errors          map[string]int64 `json:"errors"`
	PartialFailures map[string]int64 `json:"partial_failures"`
	AvgLatencyMS    map[string]int64 `json:"avg_latency_ms"`
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{
			Requests:        map[string]int64{},
			Errors:          map[string]int64{},
			PartialFailures: map[string]int64{},
			AvgLatencyMS:    map[string]int64{},
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	avg := make(map[string]int64, len(m.requests))
	for key, n := range m.requests {
		if n > 0 {
			avg[key] = (m.latency[key] / time.Duration(n)).Milliseconds()
		}
	}
	return Snapshot{
		Requests:        m.requests.clone(),
		Errors:          m.errors.clone(),
		PartialFailures: m.partial.clone(),
		AvgLatencyMS:    avg,
	}
}

package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshot(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "GET", 200, 10*time.Millisecond)
	m.RecordRequest("/tickets", "GET", 200, 30*time.Millisecond)
	m.RecordError("/tickets/:id", "GET", "NOT_FOUND")
	m.RecordPartialFailure("update_status", "audit")
	m.RecordPartialFailure("update_status", "audit")

	s := m.Snapshot()
	if got := s.Requests["/tickets|GET|200"]; got != 2 {
		t.Errorf("requests = %d, want 2", got)
	}
	if got := s.AvgLatencyMS["/tickets|GET|200"]; got != 20 {
		t.Errorf("avg latency = %d, want 20", got)
	}
	if got := s.Errors["/tickets/:id|GET|NOT_FOUND"]; got != 1 {
		t.Errorf("errors = %d, want 1", got)
	}
	if got := s.PartialFailures["update_status|audit"]; got != 2 {
		t.Errorf("partial failures = %d, want 2", got)
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordPartialFailure("op", "step")
	if s := m.Snapshot(); len(s.Requests) != 0 {
		t.Errorf("nil metrics snapshot = %+v", s)
	}
}

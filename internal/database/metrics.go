package database

import (
	"sync/atomic"
	"time"
)

// Metrics tracks aggregate query counters. All counters are updated
// atomically so recording never takes a lock on the query path.
type Metrics struct {
	queryCount     int64
	errorCount     int64
	slowQueryCount int64
	totalDuration  int64 // nanoseconds

	slowQueryThreshold time.Duration
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	QueryCount     int64         `json:"query_count"`
	ErrorCount     int64         `json:"error_count"`
	SlowQueryCount int64         `json:"slow_query_count"`
	AvgQueryTime   time.Duration `json:"avg_query_time"`
	CollectedAt    time.Time     `json:"collected_at"`
}

// NewMetrics creates a metrics collector
func NewMetrics(slowQueryThreshold time.Duration) *Metrics {
	if slowQueryThreshold <= 0 {
		slowQueryThreshold = 100 * time.Millisecond
	}
	return &Metrics{slowQueryThreshold: slowQueryThreshold}
}

// RecordQuery records one query execution
func (m *Metrics) RecordQuery(queryType string, duration time.Duration, err error) {
	atomic.AddInt64(&m.queryCount, 1)
	atomic.AddInt64(&m.totalDuration, int64(duration))

	if err != nil {
		atomic.AddInt64(&m.errorCount, 1)
	}
	if duration > m.slowQueryThreshold {
		atomic.AddInt64(&m.slowQueryCount, 1)
	}
}

// Snapshot returns a consistent copy of the counters
func (m *Metrics) Snapshot() *MetricsSnapshot {
	count := atomic.LoadInt64(&m.queryCount)
	total := atomic.LoadInt64(&m.totalDuration)

	var avg time.Duration
	if count > 0 {
		avg = time.Duration(total / count)
	}

	return &MetricsSnapshot{
		QueryCount:     count,
		ErrorCount:     atomic.LoadInt64(&m.errorCount),
		SlowQueryCount: atomic.LoadInt64(&m.slowQueryCount),
		AvgQueryTime:   avg,
		CollectedAt:    time.Now(),
	}
}

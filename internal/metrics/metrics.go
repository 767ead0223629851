// Package metrics provides metrics collection and reporting for check
// execution.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds the check execution metrics.
type Metrics struct {
	// ChecksRun is the number of checks executed.
	ChecksRun int64
	// ChecksSucceeded is the number of checks that produced a price.
	ChecksSucceeded int64
	// ChecksFailed is the number of checks that exhausted their attempts.
	ChecksFailed int64
	// AlertsRaised is the number of alerts created.
	AlertsRaised int64
	// RateLimitWaitTime is the total time spent waiting on the
	// per-domain rate limiter.
	RateLimitWaitTime time.Duration
	// LastCheckTime is the time of the last successful check.
	LastCheckTime time.Time
	// CheckDuration is the total time spent running checks.
	CheckDuration time.Duration
	// StartTime is when the metrics collection began.
	StartTime time.Time
	// mu protects concurrent access to metrics.
	mu sync.Mutex
}

// NewMetrics creates a new Metrics instance.
func NewMetrics() *Metrics {
	return &Metrics{StartTime: time.Now()}
}

// RecordCheck updates the counters for one finished check.
func (m *Metrics) RecordCheck(success bool, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ChecksRun++
	m.CheckDuration += duration
	if success {
		m.ChecksSucceeded++
		m.LastCheckTime = time.Now()
	} else {
		m.ChecksFailed++
	}
}

// RecordAlert counts one raised alert.
func (m *Metrics) RecordAlert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AlertsRaised++
}

// RecordRateLimitWait accumulates time spent waiting for a fetch slot.
func (m *Metrics) RecordRateLimitWait(waited time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitWaitTime += waited
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	ChecksRun         int64         `json:"checks_run"`
	ChecksSucceeded   int64         `json:"checks_succeeded"`
	ChecksFailed      int64         `json:"checks_failed"`
	AlertsRaised      int64         `json:"alerts_raised"`
	RateLimitWaitTime time.Duration `json:"rate_limit_wait_time"`
	LastCheckTime     time.Time     `json:"last_check_time"`
	CheckDuration     time.Duration `json:"check_duration"`
	Uptime            time.Duration `json:"uptime"`
}

// Read returns a consistent copy of the counters.
func (m *Metrics) Read() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		ChecksRun:         m.ChecksRun,
		ChecksSucceeded:   m.ChecksSucceeded,
		ChecksFailed:      m.ChecksFailed,
		AlertsRaised:      m.AlertsRaised,
		RateLimitWaitTime: m.RateLimitWaitTime,
		LastCheckTime:     m.LastCheckTime,
		CheckDuration:     m.CheckDuration,
		Uptime:            time.Since(m.StartTime),
	}
}

package database

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Health status values
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus is the result of one database health probe
type HealthStatus struct {
	Status          string        `json:"status"`
	Timestamp       time.Time     `json:"timestamp"`
	ResponseTime    time.Duration `json:"response_time"`
	OpenConnections int           `json:"open_connections"`
	InUse           int           `json:"in_use"`
	Idle            int           `json:"idle"`
	Error           string        `json:"error,omitempty"`
}

// HealthChecker probes the database on an interval and caches the latest
// status so the health endpoint never hammers the pool.
type HealthChecker struct {
	manager  *Manager
	logger   *zap.Logger
	interval time.Duration

	mu     sync.RWMutex
	latest *HealthStatus

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewHealthChecker creates a checker and starts its background probe loop
func NewHealthChecker(manager *Manager, interval time.Duration, logger *zap.Logger) *HealthChecker {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	hc := &HealthChecker{
		manager:  manager,
		logger:   logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
	go hc.run()
	return hc
}

func (hc *HealthChecker) run() {
	ticker := time.NewTicker(hc.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			status := hc.probe(ctx)
			cancel()

			hc.mu.Lock()
			hc.latest = status
			hc.mu.Unlock()

			if status.Status != StatusHealthy {
				hc.logger.Warn("database health probe degraded",
					zap.String("status", status.Status),
					zap.String("error", status.Error),
				)
			}
		case <-hc.stopCh:
			return
		}
	}
}

// Check returns the cached status, probing immediately if none exists yet
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	hc.mu.RLock()
	latest := hc.latest
	hc.mu.RUnlock()

	if latest != nil {
		return latest
	}
	return hc.probe(ctx)
}

func (hc *HealthChecker) probe(ctx context.Context) *HealthStatus {
	start := time.Now()
	stats := hc.manager.Stats()

	status := &HealthStatus{
		Status:          StatusHealthy,
		Timestamp:       start,
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
	}

	if err := hc.manager.DB().PingContext(ctx); err != nil {
		status.Status = StatusUnhealthy
		status.Error = err.Error()
	}
	status.ResponseTime = time.Since(start)

	if status.Status == StatusHealthy && status.ResponseTime > time.Second {
		status.Status = StatusDegraded
	}
	return status
}

// Stop terminates the probe loop
func (hc *HealthChecker) Stop() {
	hc.stopOnce.Do(func() { close(hc.stopCh) })
}

// This file implements health monitoring for remote shards, adapted for
// shard endpoints instead of generic cluster nodes, and for zap structured
// logging instead of the package-level log.Printf the original used.
package coordinator

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ShardEndpoint names one remote shard's id and base address, the unit
// the health monitor polls.
type ShardEndpoint struct {
	ID   int
	Addr string
}

// ShardHealth tracks the health status of a single remote shard. It
// supplements the distilled algorithm (§9A): DBFS itself never retries or
// consults this state, it exists purely for operational visibility.
type ShardHealth struct {
	LastCheck        time.Time
	LastHealthy      time.Time
	ShardID          int
	Status           string // "healthy", "unhealthy", "unknown"
	ConsecutiveFails int
}

// HealthMonitor performs periodic health checks on a fleet of remote
// shards, tracking status and notifying a callback when a shard crosses
// the failure threshold. All methods are safe for concurrent access.
type HealthMonitor struct {
	shards      map[int]*ShardHealth
	httpClient  *http.Client
	checkFunc   func(addr string) error
	onUnhealthy func(shardID int)
	ctx         context.Context
	cancel      context.CancelFunc
	interval    time.Duration
	timeout     time.Duration
	mu          sync.RWMutex
	wg          sync.WaitGroup
	maxFailures int
	logger      *zap.Logger
}

// NewHealthMonitor creates a health monitor that checks every interval,
// marking a shard unhealthy after 3 consecutive failures.
func NewHealthMonitor(interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &HealthMonitor{
		interval:    interval,
		timeout:     2 * time.Second,
		maxFailures: 3,
		shards:      make(map[int]*ShardHealth),
		httpClient:  &http.Client{Timeout: 2 * time.Second},
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetOnUnhealthy sets the callback invoked when a shard becomes unhealthy.
func (h *HealthMonitor) SetOnUnhealthy(callback func(shardID int)) {
	h.onUnhealthy = callback
}

// SetCheckFunction overrides the default HTTP /health check, used in
// tests to avoid a real network call.
func (h *HealthMonitor) SetCheckFunction(checkFunc func(addr string) error) {
	h.checkFunc = checkFunc
}

// Start runs the monitoring loop until ctx (or the monitor's own Stop) is
// canceled. shardProvider is polled on every tick for the current fleet.
func (h *HealthMonitor) Start(ctx context.Context, shardProvider func() []ShardEndpoint) {
	h.wg.Add(1)
	defer h.wg.Done()

	if ctx == nil {
		ctx = h.ctx
	}
	if h.checkFunc == nil {
		h.checkFunc = h.defaultHealthCheck
	}

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	h.logger.Info("health monitor started", zap.Duration("interval", h.interval))
	h.checkAll(shardProvider())

	for {
		select {
		case <-ticker.C:
			h.checkAll(shardProvider())
		case <-ctx.Done():
			h.logger.Info("health monitor stopping", zap.String("reason", "context canceled"))
			return
		case <-h.ctx.Done():
			h.logger.Info("health monitor stopping", zap.String("reason", "internal cancellation"))
			return
		}
	}
}

// Stop cancels the monitoring goroutine and waits for it to exit.
func (h *HealthMonitor) Stop() {
	h.cancel()
	h.wg.Wait()
}

func (h *HealthMonitor) checkAll(shards []ShardEndpoint) {
	current := make(map[int]bool, len(shards))
	for _, s := range shards {
		current[s.ID] = true
		h.checkOne(s)
	}

	h.mu.Lock()
	for id := range h.shards {
		if !current[id] {
			delete(h.shards, id)
		}
	}
	h.mu.Unlock()
}

func (h *HealthMonitor) checkOne(s ShardEndpoint) {
	h.mu.Lock()
	health, exists := h.shards[s.ID]
	if !exists {
		health = &ShardHealth{ShardID: s.ID, Status: "unknown", LastCheck: time.Now(), LastHealthy: time.Now()}
		h.shards[s.ID] = health
	}
	h.mu.Unlock()

	err := h.checkFunc(s.Addr)

	h.mu.Lock()
	defer h.mu.Unlock()
	health.LastCheck = time.Now()

	if err != nil {
		health.ConsecutiveFails++
		h.logger.Warn("shard health check failed", zap.Int("shard", s.ID), zap.Int("attempt", health.ConsecutiveFails), zap.Int("maxFailures", h.maxFailures), zap.Error(err))
		if health.ConsecutiveFails >= h.maxFailures {
			previous := health.Status
			health.Status = "unhealthy"
			if previous != "unhealthy" && h.onUnhealthy != nil {
				h.logger.Error("shard marked unhealthy", zap.Int("shard", s.ID), zap.Int("consecutiveFails", health.ConsecutiveFails))
				go h.onUnhealthy(s.ID)
			}
		}
		return
	}

	if health.Status == "unhealthy" {
		h.logger.Info("shard recovered", zap.Int("shard", s.ID))
	}
	health.Status = "healthy"
	health.ConsecutiveFails = 0
	health.LastHealthy = time.Now()
}

func (h *HealthMonitor) defaultHealthCheck(addr string) error {
	url := addr
	if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
		url = fmt.Sprintf("http://%s", addr)
	}
	if !strings.HasSuffix(url, "/health") {
		url = strings.TrimRight(url, "/") + "/health"
	}

	resp, err := h.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// ShardHealthStatus returns the current health record for shardID, or nil
// if it is not being monitored.
func (h *HealthMonitor) ShardHealthStatus(shardID int) *ShardHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	health, ok := h.shards[shardID]
	if !ok {
		return nil
	}
	copy := *health
	return &copy
}

// AllShardHealth returns a snapshot of every monitored shard's health.
func (h *HealthMonitor) AllShardHealth() map[int]*ShardHealth {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make(map[int]*ShardHealth, len(h.shards))
	for id, health := range h.shards {
		copy := *health
		out[id] = &copy
	}
	return out
}

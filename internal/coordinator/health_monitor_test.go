package coordinator

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHealthMonitor(t *testing.T) {
	monitor := NewHealthMonitor(5*time.Second, nil)
	defer monitor.Stop()

	assert.NotNil(t, monitor)
	assert.Equal(t, 5*time.Second, monitor.interval)
	assert.Equal(t, 2*time.Second, monitor.timeout)
	assert.Equal(t, 3, monitor.maxFailures)
	assert.NotNil(t, monitor.shards)
	assert.Len(t, monitor.shards, 0)
}

func TestHealthMonitorStart(t *testing.T) {
	monitor := NewHealthMonitor(100*time.Millisecond, nil)
	defer monitor.Stop()

	checkCalls := 0
	var mu sync.Mutex
	monitor.SetCheckFunction(func(addr string) error {
		mu.Lock()
		checkCalls++
		mu.Unlock()
		return nil
	})

	shardProvider := func() []ShardEndpoint {
		return []ShardEndpoint{
			{ID: 0, Addr: "http://localhost:5001"},
			{ID: 1, Addr: "http://localhost:5002"},
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(350 * time.Millisecond)

	mu.Lock()
	calls := checkCalls
	mu.Unlock()
	assert.GreaterOrEqual(t, calls, 6, "expected at least 6 health checks")

	all := monitor.AllShardHealth()
	assert.Len(t, all, 2)
	assert.Contains(t, all, 0)
	assert.Contains(t, all, 1)
	assert.Equal(t, "healthy", all[0].Status)
	assert.Equal(t, "healthy", all[1].Status)
}

func TestHealthMonitorShardFailure(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)
	defer monitor.Stop()

	failing := make(map[int]bool)
	var mu sync.Mutex
	monitor.SetCheckFunction(func(addr string) error {
		mu.Lock()
		defer mu.Unlock()
		if addr == "http://localhost:5001" && failing[0] {
			return fmt.Errorf("shard is down")
		}
		return nil
	})

	var unhealthyCalls []int
	monitor.SetOnUnhealthy(func(shardID int) {
		mu.Lock()
		unhealthyCalls = append(unhealthyCalls, shardID)
		mu.Unlock()
	})

	shardProvider := func() []ShardEndpoint {
		return []ShardEndpoint{
			{ID: 0, Addr: "http://localhost:5001"},
			{ID: 1, Addr: "http://localhost:5002"},
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "healthy", monitor.ShardHealthStatus(0).Status)
	assert.Equal(t, "healthy", monitor.ShardHealthStatus(1).Status)

	mu.Lock()
	failing[0] = true
	mu.Unlock()

	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, "unhealthy", monitor.ShardHealthStatus(0).Status)
	assert.Equal(t, "healthy", monitor.ShardHealthStatus(1).Status)

	mu.Lock()
	assert.Contains(t, unhealthyCalls, 0)
	mu.Unlock()

	health := monitor.ShardHealthStatus(0)
	require.NotNil(t, health)
	assert.GreaterOrEqual(t, health.ConsecutiveFails, 3)
}

func TestHealthMonitorShardRecovery(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)
	defer monitor.Stop()

	healthy := true
	var mu sync.Mutex
	monitor.SetCheckFunction(func(addr string) error {
		mu.Lock()
		defer mu.Unlock()
		if addr == "http://localhost:5001" && !healthy {
			return fmt.Errorf("shard is down")
		}
		return nil
	})

	shardProvider := func() []ShardEndpoint {
		return []ShardEndpoint{{ID: 0, Addr: "http://localhost:5001"}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, "healthy", monitor.ShardHealthStatus(0).Status)

	mu.Lock()
	healthy = false
	mu.Unlock()
	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, "unhealthy", monitor.ShardHealthStatus(0).Status)

	mu.Lock()
	healthy = true
	mu.Unlock()
	time.Sleep(100 * time.Millisecond)

	health := monitor.ShardHealthStatus(0)
	require.NotNil(t, health)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 0, health.ConsecutiveFails)
}

func TestHealthMonitorShardRemoval(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)
	defer monitor.Stop()

	monitor.SetCheckFunction(func(addr string) error { return nil })

	var shards []ShardEndpoint
	var mu sync.Mutex
	shardProvider := func() []ShardEndpoint {
		mu.Lock()
		defer mu.Unlock()
		return shards
	}

	mu.Lock()
	shards = []ShardEndpoint{
		{ID: 0, Addr: "http://localhost:5001"},
		{ID: 1, Addr: "http://localhost:5002"},
	}
	mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(100 * time.Millisecond)
	assert.Len(t, monitor.AllShardHealth(), 2)

	mu.Lock()
	shards = []ShardEndpoint{{ID: 0, Addr: "http://localhost:5001"}}
	mu.Unlock()

	time.Sleep(100 * time.Millisecond)
	all := monitor.AllShardHealth()
	assert.Len(t, all, 1)
	assert.Contains(t, all, 0)
	assert.NotContains(t, all, 1)
}

func TestHealthMonitorStop(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)

	running := true
	checkCount := 0
	var mu sync.Mutex
	monitor.SetCheckFunction(func(addr string) error {
		mu.Lock()
		defer mu.Unlock()
		checkCount++
		return nil
	})

	shardProvider := func() []ShardEndpoint {
		mu.Lock()
		defer mu.Unlock()
		if running {
			return []ShardEndpoint{{ID: 0, Addr: "http://localhost:5001"}}
		}
		return nil
	}

	go monitor.Start(nil, shardProvider)
	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	before := checkCount
	mu.Unlock()

	mu.Lock()
	running = false
	mu.Unlock()
	monitor.Stop()

	time.Sleep(150 * time.Millisecond)

	mu.Lock()
	after := checkCount
	mu.Unlock()

	assert.Greater(t, before, 0)
	assert.Equal(t, before, after)
}

func TestHealthMonitorConcurrency(t *testing.T) {
	monitor := NewHealthMonitor(10*time.Millisecond, nil)
	defer monitor.Stop()

	monitor.SetCheckFunction(func(addr string) error { return nil })

	shardCount := 5
	shardProvider := func() []ShardEndpoint {
		shards := make([]ShardEndpoint, shardCount)
		for i := 0; i < shardCount; i++ {
			shards[i] = ShardEndpoint{ID: i, Addr: fmt.Sprintf("http://localhost:500%d", i)}
		}
		return shards
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				monitor.ShardHealthStatus(id % shardCount)
				monitor.AllShardHealth()
				time.Sleep(time.Millisecond)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, monitor.AllShardHealth(), shardCount)
}

func TestHealthMonitorShardHealthStatus(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)
	defer monitor.Stop()

	monitor.SetCheckFunction(func(addr string) error { return nil })

	shardProvider := func() []ShardEndpoint {
		return []ShardEndpoint{{ID: 0, Addr: "http://localhost:5001"}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(100 * time.Millisecond)

	health := monitor.ShardHealthStatus(0)
	require.NotNil(t, health)
	assert.Equal(t, 0, health.ShardID)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, 0, health.ConsecutiveFails)
	assert.False(t, health.LastCheck.IsZero())
	assert.False(t, health.LastHealthy.IsZero())

	assert.Nil(t, monitor.ShardHealthStatus(999))
}

func TestHealthMonitorUnhealthyCallback(t *testing.T) {
	monitor := NewHealthMonitor(50*time.Millisecond, nil)
	defer monitor.Stop()

	failCount := 0
	var mu sync.Mutex
	monitor.SetCheckFunction(func(addr string) error {
		mu.Lock()
		defer mu.Unlock()
		if failCount < 3 {
			failCount++
			return fmt.Errorf("failing")
		}
		return nil
	})

	callbackCount := 0
	var callbackMu sync.Mutex
	monitor.SetOnUnhealthy(func(shardID int) {
		callbackMu.Lock()
		callbackCount++
		callbackMu.Unlock()
	})

	shardProvider := func() []ShardEndpoint {
		return []ShardEndpoint{{ID: 0, Addr: "http://localhost:5001"}}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go monitor.Start(ctx, shardProvider)

	time.Sleep(250 * time.Millisecond)

	callbackMu.Lock()
	assert.Equal(t, 1, callbackCount)
	callbackMu.Unlock()

	time.Sleep(150 * time.Millisecond)

	callbackMu.Lock()
	assert.Equal(t, 1, callbackCount)
	callbackMu.Unlock()
}

package coordinator

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/dbfs/internal/dbfserr"
	"github.com/dreamware/dbfs/internal/metrics"
	"github.com/dreamware/dbfs/internal/proxy"
	"github.com/dreamware/dbfs/internal/shardgraph"
)

// healthCheckInterval is how often the coordinator polls a remote fleet's
// /health endpoints (§9A). DBFS correctness never depends on this; it is
// purely an operational signal.
const healthCheckInterval = 5 * time.Second

// Coordinator owns a fleet of shard proxies and the topology wired across
// them. It encapsulates what the distilled source kept as module-level
// globals (§9, Global mutable state note): role, fleet, and topology are
// all fields of one object instantiated per service process.
type Coordinator struct {
	mu      sync.RWMutex
	role    Role
	proxies map[int]proxy.ShardProxy
	// localShards holds the in-process shards backing proxies created by
	// CreateShards, so CreateRemoteShards/CreateShards can tear down a
	// prior fleet cleanly on role switch.
	localShards map[int]*shardgraph.Shard
	nshardsMax  int
	logger      *zap.Logger
	metrics     *metrics.Coordinator
	health      *HealthMonitor
	endpoints   []ShardEndpoint
}

// New builds an empty Coordinator in the Undecided role. nshardsMax bounds
// CreateRemoteShards' shard count (§6.2, §7 ConfigurationError).
func New(nshardsMax int, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		role:       RoleUndecided,
		proxies:    make(map[int]proxy.ShardProxy),
		logger:     logger,
		nshardsMax: nshardsMax,
		metrics:    metrics.NewCoordinator(),
	}
}

// Metrics returns the coordinator's Prometheus collector bundle, for
// mounting at /metrics by the owning HTTP server.
func (c *Coordinator) Metrics() *metrics.Coordinator {
	return c.metrics
}

// Role returns the coordinator's current operating mode.
func (c *Coordinator) Role() Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// reset discards the current fleet, called at the start of every
// fleet-creation endpoint so a role switch starts from a clean slate.
func (c *Coordinator) reset() {
	c.proxies = make(map[int]proxy.ShardProxy)
	c.localShards = make(map[int]*shardgraph.Shard)
	c.endpoints = nil
	if c.health != nil {
		c.health.Stop()
		c.health = nil
	}
}

// CreateShards builds an in-process fleet of numShards shards, each with
// nodesPerShard real nodes and the given edge probability, wires its
// toroidal topology with farNodes/2 mirror-edge pairs per neighbor pair
// (sampled from each shard's farNodes most distant nodes), and
// switches the coordinator into the Server role. It validates the
// perfect-square and nshardsMax constraints before mutating any state
// (§7 ConfigurationError).
func (c *Coordinator) CreateShards(numShards, nodesPerShard int, edgeProb float64, farNodes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validateFleetSize(numShards); err != nil {
		return err
	}
	c.reset()

	shards := make([]*shardgraph.Shard, numShards)
	for i := 0; i < numShards; i++ {
		shards[i] = shardgraph.NewShard(i, nodesPerShard, edgeProb, rand.New(rand.NewSource(int64(i)+1)))
		c.localShards[i] = shards[i]
		c.proxies[i] = proxy.NewLocalProxy(shards[i])
	}

	if err := wireTopology(shards, farNodes, rand.New(rand.NewSource(1))); err != nil {
		c.reset()
		return err
	}

	c.role = RoleServer
	c.logger.Info("in-process fleet created", zap.Int("shards", numShards), zap.Int("nodesPerShard", nodesPerShard), zap.Int("farNodes", farNodes))
	return nil
}

// CreateRemoteShards builds a fleet of numShards RemoteProxy handles
// pointing at shardsIP on contiguous ports starting at shardPortsStart,
// queries each shard's far nodes over the wire, and wires the same
// toroidal topology as CreateShards but via remote AddExternalEdge calls.
// Switches the coordinator into the MasterServer role.
func (c *Coordinator) CreateRemoteShards(ctx context.Context, numShards int, shardsIP string, shardPortsStart int, farNodes int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.validateFleetSize(numShards); err != nil {
		return err
	}
	c.reset()

	proxies := make([]proxy.ShardProxy, numShards)
	endpoints := make([]ShardEndpoint, numShards)
	for i := 0; i < numShards; i++ {
		base := remoteShardURL(shardsIP, shardPortsStart+i)
		p := proxy.NewRemoteProxy(base, i)
		proxies[i] = p
		c.proxies[i] = p
		endpoints[i] = ShardEndpoint{ID: i, Addr: base}
	}

	if err := wireRemoteTopology(ctx, proxies, farNodes, rand.New(rand.NewSource(1))); err != nil {
		c.reset()
		return err
	}

	c.endpoints = endpoints
	monitor := NewHealthMonitor(healthCheckInterval, c.logger)
	c.health = monitor
	// endpoints is fixed for the lifetime of this fleet, so the provider
	// closes over the local slice directly rather than re-acquiring c.mu
	// from the monitor's goroutine, which would deadlock against reset's
	// Stop-while-holding-Lock sequence.
	go monitor.Start(context.Background(), func() []ShardEndpoint { return endpoints })

	c.role = RoleMasterServer
	c.logger.Info("remote fleet created", zap.Int("shards", numShards), zap.String("ip", shardsIP), zap.Int("portsStart", shardPortsStart))
	return nil
}

// ShardHealth returns a snapshot of every monitored remote shard's health,
// or nil if the coordinator is not currently running a remote fleet.
func (c *Coordinator) ShardHealth() map[int]*ShardHealth {
	c.mu.RLock()
	h := c.health
	c.mu.RUnlock()
	if h == nil {
		return nil
	}
	return h.AllShardHealth()
}

func (c *Coordinator) validateFleetSize(numShards int) error {
	if !isPerfectSquare(numShards) {
		return dbfserr.Configuration("shards=%d is not a perfect square", numShards)
	}
	if numShards > c.nshardsMax {
		return dbfserr.Configuration("shards=%d exceeds the configured maximum of %d", numShards, c.nshardsMax)
	}
	return nil
}

// Proxy returns the shard proxy for shard id, or a NotFoundError if the
// fleet has no such shard.
func (c *Coordinator) Proxy(id int) (proxy.ShardProxy, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.proxies[id]
	if !ok {
		return nil, dbfserr.NotFound("shard %d is not part of the fleet", id)
	}
	return p, nil
}

// requireReady returns a NotReadyError unless the coordinator currently
// holds the given role with at least one shard wired, matching §7's
// NotReadyError ("operation requires a fleet that has not been
// constructed, or a role mismatch").
func (c *Coordinator) requireReady(want Role) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.role != want || len(c.proxies) == 0 {
		return dbfserr.NotReady("expected role %s with a constructed fleet, got role %s with %d shards", want, c.role, len(c.proxies))
	}
	return nil
}

// RunDBFS resolves the starting shard's center node and runs DBFS from
// it, requiring the coordinator to be in the Server role (an in-process
// fleet), matching the do-dbfs endpoint (§6.2).
func (c *Coordinator) RunDBFS(ctx context.Context, startShard int, verbose bool) (Stats, error) {
	if err := c.requireReady(RoleServer); err != nil {
		return Stats{}, err
	}
	return c.runDBFSFrom(ctx, startShard, verbose)
}

// RunDDBFS is the remote-fleet counterpart of RunDBFS, requiring the
// MasterServer role, matching the do-ddbfs endpoint (§6.2). The
// distilled source's ddbfs is a literal pass-through to the same
// algorithm as dbfs (proof of proxy uniformity, §9); this module reuses
// the identical DBFS implementation and differs only in the role it
// requires.
func (c *Coordinator) RunDDBFS(ctx context.Context, startShard int, verbose bool) (Stats, error) {
	if err := c.requireReady(RoleMasterServer); err != nil {
		return Stats{}, err
	}
	return c.runDBFSFrom(ctx, startShard, verbose)
}

func (c *Coordinator) runDBFSFrom(ctx context.Context, startShard int, verbose bool) (Stats, error) {
	p, err := c.Proxy(startShard)
	if err != nil {
		return Stats{}, err
	}
	center, err := p.CenterNode(ctx)
	if err != nil {
		return Stats{}, err
	}
	return c.DBFS(ctx, startShard, center, verbose)
}

func remoteShardURL(ip string, port int) string {
	return fmt.Sprintf("http://%s:%d", ip, port)
}

// squareSide returns the integer side length of a numShards-shard square
// grid; callers must have already validated numShards is a perfect
// square.
func squareSide(numShards int) int {
	return int(math.Sqrt(float64(numShards)) + 0.5)
}

package coordinator

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/dreamware/dbfs/internal/dbfserr"
)

// orderedShardQueue is the shard-indexed work queue described in §9's
// Design Notes: a map for O(1) piggyback membership checks, paired with a
// slice recording first-insertion order. This is the Go-idiomatic
// equivalent of the distilled source's reliance on Python's
// insertion-ordered dict.
type orderedShardQueue struct {
	pending map[int]map[int]struct{}
	order   []int
}

func newOrderedShardQueue() *orderedShardQueue {
	return &orderedShardQueue{pending: make(map[int]map[int]struct{})}
}

func (q *orderedShardQueue) len() int { return len(q.order) }

// insertOrMerge adds nodes to shard i's pending set. If i is not yet
// queued it is appended at the tail (a fresh cross-cut); if it is already
// queued, nodes are unioned into the existing entry without reordering
// (piggyback, no new cross-cut). Returns true if this was a fresh
// insertion.
func (q *orderedShardQueue) insertOrMerge(i int, nodes map[int]struct{}) (fresh bool) {
	existing, ok := q.pending[i]
	if !ok {
		q.pending[i] = nodes
		q.order = append(q.order, i)
		return true
	}
	for n := range nodes {
		existing[n] = struct{}{}
	}
	return false
}

// popFront removes and returns the first-inserted shard entry.
func (q *orderedShardQueue) popFront() (int, map[int]struct{}) {
	i := q.order[0]
	q.order = q.order[1:]
	nodes := q.pending[i]
	delete(q.pending, i)
	return i, nodes
}

// Stats is the outcome of a completed DBFS run (§4.3 step 3).
type Stats struct {
	CrossCuts        int
	CrossCutsPerShard map[int]int
	NodesVisited     int
	TimeInside       time.Duration
	TimeOutside      time.Duration
	// Trail records the per-shard-visit log used by the verbose
	// diagnostics supplement (§9A); empty unless verbose logging is
	// requested by the caller.
	Trail []VisitLogEntry
}

// VisitLogEntry is one line of the verbose trail: which shard was popped,
// how many new real nodes it contributed, and the running cross-cut
// total immediately after processing it.
type VisitLogEntry struct {
	ShardID          int
	NewNodesVisited  int
	CumulativeCuts   int
}

// DBFS drives a single global BFS run starting at shard beginShard, node
// beginNode, over the coordinator's fleet of proxies. It is the direct
// implementation of §4.3's algorithm: an insertion-ordered work queue,
// per-shard visited sets, and cross-cut counting with piggybacking.
//
// The run aborts on the first proxy error, discarding all partial state,
// per §4.3's failure semantics — no retries, no partial commits.
func (c *Coordinator) DBFS(ctx context.Context, beginShard, beginNode int, verbose bool) (Stats, error) {
	if _, ok := c.proxies[beginShard]; !ok {
		return Stats{}, dbfserr.NotFound("shard %d is not part of the fleet", beginShard)
	}

	queue := newOrderedShardQueue()
	visited := make(map[int]map[int]struct{})
	crossCutsPerShard := map[int]int{beginShard: 1}
	crossCuts := 0
	var insideTotal, outsideTotal time.Duration
	var trail []VisitLogEntry

	queue.insertOrMerge(beginShard, map[int]struct{}{beginNode: {}})

	for queue.len() > 0 {
		i, nodes := queue.popFront()

		shardProxy, ok := c.proxies[i]
		if !ok {
			return Stats{}, dbfserr.NotFound("shard %d is not part of the fleet", i)
		}

		insideStart := time.Now()
		result, err := shardProxy.BFSTreesWithRemoteNodes(ctx, nodes)
		insideTotal += time.Since(insideStart)
		if err != nil {
			c.metrics.ShardProxyErrors.WithLabelValues(strconv.Itoa(i)).Inc()
			c.logger.Error("dbfs run aborted", zap.Int("shard", i), zap.Error(err))
			return Stats{}, err
		}

		outsideStart := time.Now()
		bucket, ok := visited[i]
		if !ok {
			bucket = make(map[int]struct{})
			visited[i] = bucket
		}
		newCount := 0
		for n := range result.InternalReached {
			if _, already := bucket[n]; !already {
				bucket[n] = struct{}{}
				newCount++
			}
		}

		for foreignShard, foreignNodes := range result.Remote {
			already := visited[foreignShard]
			newWork := make(map[int]struct{})
			for n := range foreignNodes {
				if _, seen := already[n]; !seen {
					newWork[n] = struct{}{}
				}
			}
			if len(newWork) == 0 {
				continue
			}
			fresh := queue.insertOrMerge(foreignShard, newWork)
			if fresh {
				crossCuts++
				crossCutsPerShard[foreignShard]++
				c.logger.Debug("new cross-cut", zap.Int("fromShard", i), zap.Int("toShard", foreignShard), zap.Int("newNodes", len(newWork)))
			} else {
				c.logger.Debug("piggyback", zap.Int("fromShard", i), zap.Int("toShard", foreignShard), zap.Int("newNodes", len(newWork)))
			}
		}
		outsideTotal += time.Since(outsideStart)

		if verbose {
			trail = append(trail, VisitLogEntry{ShardID: i, NewNodesVisited: newCount, CumulativeCuts: crossCuts})
		}
	}

	totalVisited := 0
	for _, bucket := range visited {
		totalVisited += len(bucket)
	}

	stats := Stats{
		CrossCuts:         crossCuts,
		CrossCutsPerShard: crossCutsPerShard,
		NodesVisited:      totalVisited,
		TimeInside:        insideTotal,
		TimeOutside:       outsideTotal,
		Trail:             trail,
	}
	c.logger.Info("dbfs run complete",
		zap.Int("startShard", beginShard),
		zap.Int("crossCuts", crossCuts),
		zap.Int("nodesVisited", totalVisited),
		zap.Duration("timeInside", insideTotal),
		zap.Duration("timeOutside", outsideTotal),
	)

	c.metrics.CrossCutsTotal.Add(float64(crossCuts))
	c.metrics.NodesVisited.Add(float64(totalVisited))
	c.metrics.RunDuration.WithLabelValues("inside").Observe(insideTotal.Seconds())
	c.metrics.RunDuration.WithLabelValues("outside").Observe(outsideTotal.Seconds())

	return stats, nil
}
